package normalizer

import (
	"fmt"
	"testing"

	"github.com/ginjaninja78/bank-column-mapper/internal/types"
)

var testMapping = types.Mapping{Date: "Transaction Date", Description: "Memo", Amount: "Amt"}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name       string
		row        types.SourceRow
		dateFormat string
		want       types.CanonicalRow
	}{
		{
			name:       "date reformatted",
			row:        types.SourceRow{"Transaction Date": "01/15/2024", "Memo": "Coffee", "Amt": "-3.50"},
			dateFormat: "%m/%d/%Y",
			want:       types.CanonicalRow{Date: "2024-01-15", Description: "Coffee", Amount: "-3.50"},
		},
		{
			name:       "no date format passes date through",
			row:        types.SourceRow{"Transaction Date": "01/15/2024", "Memo": "Coffee", "Amt": "-3.50"},
			dateFormat: "",
			want:       types.CanonicalRow{Date: "01/15/2024", Description: "Coffee", Amount: "-3.50"},
		},
		{
			name:       "unparseable date kept raw",
			row:        types.SourceRow{"Transaction Date": "pending", "Memo": "Refund", "Amt": "12"},
			dateFormat: "%m/%d/%Y",
			want:       types.CanonicalRow{Date: "pending", Description: "Refund", Amount: "12"},
		},
		{
			name:       "missing mapped keys become empty",
			row:        types.SourceRow{"Memo": "Orphan"},
			dateFormat: "%m/%d/%Y",
			want:       types.CanonicalRow{Date: "", Description: "Orphan", Amount: ""},
		},
		{
			name:       "amount is not reformatted",
			row:        types.SourceRow{"Transaction Date": "2024-01-15", "Memo": "", "Amt": "1,234.50 USD"},
			dateFormat: "%Y-%m-%d",
			want:       types.CanonicalRow{Date: "2024-01-15", Description: "", Amount: "1,234.50 USD"},
		},
		{
			name: "empty row",
			row:  types.SourceRow{},
			want: types.CanonicalRow{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.row, testMapping, tt.dateFormat)
			if got != tt.want {
				t.Errorf("Normalize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNormalize_IdentityMapping(t *testing.T) {
	row := types.SourceRow{"date": "2024-03-04", "description": "Coffee Shop", "amount": "-42.50"}
	got := Normalize(row, types.IdentityMapping(), "")
	want := types.CanonicalRow{Date: "2024-03-04", Description: "Coffee Shop", Amount: "-42.50"}
	if got != want {
		t.Errorf("Normalize() = %+v, want %+v", got, want)
	}
}

func TestNormalizeAll_PreservesOrder(t *testing.T) {
	rows := make([]types.SourceRow, 2000)
	for i := range rows {
		rows[i] = types.SourceRow{
			"Transaction Date": fmt.Sprintf("01/%02d/2024", i%28+1),
			"Memo":             fmt.Sprintf("row-%d", i),
			"Amt":              fmt.Sprintf("%d", i),
		}
	}

	for _, workers := range []int{1, 3, 8} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			out := NormalizeAll(rows, testMapping, "%m/%d/%Y", workers)
			if len(out) != len(rows) {
				t.Fatalf("Expected %d rows, got %d", len(rows), len(out))
			}
			for i, r := range out {
				if r.Description != fmt.Sprintf("row-%d", i) {
					t.Fatalf("Row %d out of order: %+v", i, r)
				}
				if want := fmt.Sprintf("2024-01-%02d", i%28+1); r.Date != want {
					t.Fatalf("Row %d date = %q, want %q", i, r.Date, want)
				}
			}
		})
	}
}

func TestNormalizeAll_Empty(t *testing.T) {
	if out := NormalizeAll(nil, testMapping, "", 4); len(out) != 0 {
		t.Errorf("Expected no rows, got %d", len(out))
	}
}
