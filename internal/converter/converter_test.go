package converter

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/bank-column-mapper/internal/config"
	"github.com/ginjaninja78/bank-column-mapper/internal/profile"
	"github.com/ginjaninja78/bank-column-mapper/internal/resolver"
	"github.com/ginjaninja78/bank-column-mapper/internal/types"
)

// answerPrompter replays answers and counts prompts.
type answerPrompter struct {
	answers []string
	calls   int
}

func (a *answerPrompter) Prompt(string) (string, error) {
	a.calls++
	if len(a.answers) == 0 {
		return "", resolver.ErrNoInput
	}
	answer := a.answers[0]
	a.answers = a.answers[1:]
	return answer, nil
}

func newTestConverter(t *testing.T, profileDir string, answers ...string) (*Converter, *answerPrompter) {
	t.Helper()
	cfg := config.Default()
	cfg.ProfileDir = profileDir
	prompter := &answerPrompter{answers: answers}
	res := resolver.New(profile.NewStore(profileDir), prompter, &bytes.Buffer{}, zerolog.Nop())
	return New(cfg, res, zerolog.Nop()), prompter
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

const bankCSV = "Transaction Date,Memo,Amt\n01/15/2024,Coffee,-3.50\n01/20/2024,Salary,2500.00\n01/25/2024,Refund,n/a\n"

func TestRun_CSVElicitsThenReuses(t *testing.T) {
	profileDir := filepath.Join(t.TempDir(), "profiles")
	input := writeFile(t, "export.csv", bankCSV)

	conv, prompter := newTestConverter(t, profileDir, "0", "1", "2")
	result, err := conv.Run(input, Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if prompter.calls != 3 {
		t.Errorf("Expected 3 prompts, got %d", prompter.calls)
	}
	if result.Format != InputCSV || !result.Resolution.Created() {
		t.Errorf("Unexpected result: format=%s created=%v", result.Format, result.Resolution.Created())
	}

	want := []types.CanonicalRow{
		{Date: "2024-01-15", Description: "Coffee", Amount: "-3.50"},
		{Date: "2024-01-20", Description: "Salary", Amount: "2500.00"},
		{Date: "2024-01-25", Description: "Refund", Amount: "n/a"},
	}
	if len(result.Rows) != len(want) {
		t.Fatalf("Expected %d rows, got %d", len(want), len(result.Rows))
	}
	for i := range want {
		if result.Rows[i] != want[i] {
			t.Errorf("Row %d = %+v, want %+v", i, result.Rows[i], want[i])
		}
	}

	stats := result.Stats
	if stats.RowsProcessed != 3 || stats.DatesNormalized != 3 || stats.DatesPassedThrough != 0 {
		t.Errorf("Unexpected date stats: %+v", stats)
	}
	if stats.AmountTotal.String() != "2496.5" || stats.UnparsedAmounts != 1 {
		t.Errorf("Unexpected amount stats: total=%s unparsed=%d", stats.AmountTotal, stats.UnparsedAmounts)
	}

	again, prompter := newTestConverter(t, profileDir)
	if _, err := again.Run(input, Options{}); err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	if prompter.calls != 0 {
		t.Errorf("Expected zero prompts on second run, got %d", prompter.calls)
	}
}

func TestRun_QIFBypassesResolver(t *testing.T) {
	input := writeFile(t, "export.QIF", "!Type:Bank\nD03/04'24\nT-42.50\nP Coffee Shop\n^\n")

	conv, prompter := newTestConverter(t, filepath.Join(t.TempDir(), "profiles"))
	result, err := conv.Run(input, Options{BankName: "acme"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if prompter.calls != 0 || result.Resolution != nil {
		t.Error("QIF input should not consult the resolver")
	}
	want := types.CanonicalRow{Date: "2024-03-04", Description: "Coffee Shop", Amount: "-42.50"}
	if len(result.Rows) != 1 || result.Rows[0] != want {
		t.Errorf("Rows = %+v, want %+v", result.Rows, want)
	}
}

func TestRun_XLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range [][]interface{}{
		{"Posted", "Details", "Value"},
		{"2024-02-01", "Rent", "-900.00"},
	} {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("SetSheetRow failed: %v", err)
		}
	}
	input := filepath.Join(t.TempDir(), "export.xlsx")
	if err := f.SaveAs(input); err != nil {
		t.Fatalf("SaveAs failed: %v", err)
	}

	conv, _ := newTestConverter(t, filepath.Join(t.TempDir(), "profiles"), "Posted", "Details", "Value")
	result, err := conv.Run(input, Options{BankName: "acme"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	want := types.CanonicalRow{Date: "2024-02-01", Description: "Rent", Amount: "-900.00"}
	if len(result.Rows) != 1 || result.Rows[0] != want {
		t.Errorf("Rows = %+v, want %+v", result.Rows, want)
	}
	if result.Resolution.DateFormat != "%Y-%m-%d" {
		t.Errorf("DateFormat = %q", result.Resolution.DateFormat)
	}
}

func TestRun_Errors(t *testing.T) {
	conv, _ := newTestConverter(t, filepath.Join(t.TempDir(), "profiles"))

	if _, err := conv.Run(filepath.Join(t.TempDir(), "missing.csv"), Options{}); !errors.Is(err, ErrInputNotFound) {
		t.Errorf("Expected ErrInputNotFound, got %v", err)
	}

	txt := writeFile(t, "export.txt", "Date,Memo,Amt\n")
	if _, err := conv.Run(txt, Options{}); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}

	csv := writeFile(t, "export.csv", bankCSV)
	if _, err := conv.Run(csv, Options{}); !errors.Is(err, resolver.ErrNoInput) {
		t.Errorf("Expected ErrNoInput when prompts cannot be answered, got %v", err)
	}
}

func TestDetectFormat(t *testing.T) {
	tests := map[string]InputFormat{
		"a.csv":         InputCSV,
		"b.CSV":         InputCSV,
		"c.qif":         InputQIF,
		"dir/d.xlsx":    InputXLSX,
		"statement.pdf": "",
		"noext":         "",
	}
	for path, want := range tests {
		got, err := DetectFormat(path)
		if got != want {
			t.Errorf("DetectFormat(%q) = %q, want %q", path, got, want)
		}
		if want == "" && !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("DetectFormat(%q) error = %v", path, err)
		}
	}
}
