package converter

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/bank-column-mapper/internal/dates"
	"github.com/ginjaninja78/bank-column-mapper/internal/types"
)

// Stats contains statistics about one run.
type Stats struct {
	// RowsProcessed is the number of rows normalized.
	RowsProcessed int

	// DatesNormalized counts rows whose date is now YYYY-MM-DD.
	DatesNormalized int

	// DatesPassedThrough counts non-empty dates kept in their raw form.
	DatesPassedThrough int

	// AmountTotal is the sum of every amount that reads as a number.
	AmountTotal decimal.Decimal

	// UnparsedAmounts counts non-empty amounts that do not read as a number.
	UnparsedAmounts int

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// Summarize computes statistics over normalized rows. Amounts stay strings in
// the rows; they are only read here for the total.
func Summarize(rows []types.CanonicalRow) Stats {
	stats := Stats{
		RowsProcessed: len(rows),
		AmountTotal:   decimal.Zero,
	}

	for _, row := range rows {
		switch {
		case row.Date == "":
		case dates.Parse(row.Date, "%Y-%m-%d").OK && len(row.Date) == len(dates.ISOLayout):
			stats.DatesNormalized++
		default:
			stats.DatesPassedThrough++
		}

		if strings.TrimSpace(row.Amount) == "" {
			continue
		}
		amount, ok := ParseAmount(row.Amount)
		if !ok {
			stats.UnparsedAmounts++
			continue
		}
		stats.AmountTotal = stats.AmountTotal.Add(amount)
	}

	return stats
}

// ParseAmount reads a bank amount such as "-42.50", "1,234.56", "$10" or
// "(12.00)". Thousands separators and a leading currency sign are ignored;
// parentheses mean a negative amount.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	if strings.HasPrefix(s, "-") {
		negative = !negative
		s = s[1:]
	} else {
		s = strings.TrimPrefix(s, "+")
	}
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || s[0] == '-' || s[0] == '+' {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}
