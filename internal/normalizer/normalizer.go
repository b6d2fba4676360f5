// Package normalizer turns source rows into canonical rows.
//
// Normalize is a pure function of its inputs, so NormalizeAll can spread rows
// across goroutines; it still returns rows in source order.
package normalizer

import (
	"golang.org/x/sync/errgroup"

	"github.com/ginjaninja78/bank-column-mapper/internal/dates"
	"github.com/ginjaninja78/bank-column-mapper/internal/types"
)

// minChunk keeps small files on a single goroutine.
const minChunk = 256

// Normalize maps one source row onto the canonical schema. Mapped headers
// missing from the row yield "". A non-empty date is rewritten as YYYY-MM-DD
// when dateFormat is set and the value parses under it; otherwise the raw
// value is kept. Normalize never fails.
func Normalize(row types.SourceRow, m types.Mapping, dateFormat string) types.CanonicalRow {
	out := types.CanonicalRow{
		Date:        row[m.Date],
		Description: row[m.Description],
		Amount:      row[m.Amount],
	}

	if out.Date != "" && dateFormat != "" {
		if r := dates.Parse(out.Date, dateFormat); r.OK {
			out.Date = r.ISO()
		}
	}

	return out
}

// NormalizeAll normalizes rows with up to workers goroutines. The result has
// the same length and order as rows.
func NormalizeAll(rows []types.SourceRow, m types.Mapping, dateFormat string, workers int) []types.CanonicalRow {
	out := make([]types.CanonicalRow, len(rows))
	if len(rows) == 0 {
		return out
	}

	chunk := chunkSize(len(rows), workers)
	if chunk >= len(rows) {
		for i, row := range rows {
			out[i] = Normalize(row, m, dateFormat)
		}
		return out
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < len(rows); start += chunk {
		end := start + chunk
		if end > len(rows) {
			end = len(rows)
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				out[i] = Normalize(rows[i], m, dateFormat)
			}
			return nil
		})
	}
	// Normalize cannot fail, so Wait only joins the goroutines.
	_ = g.Wait()

	return out
}

func chunkSize(n, workers int) int {
	if workers < 2 {
		return n
	}
	size := (n + workers - 1) / workers
	if size < minChunk {
		size = minChunk
	}
	return size
}
