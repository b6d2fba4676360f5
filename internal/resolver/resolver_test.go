package resolver

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ginjaninja78/bank-column-mapper/internal/profile"
	"github.com/ginjaninja78/bank-column-mapper/internal/types"
)

// scriptedPrompter answers prompts from a fixed list and records every prompt.
type scriptedPrompter struct {
	answers []string
	prompts []string
}

func (s *scriptedPrompter) Prompt(prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if len(s.answers) == 0 {
		return "", ErrNoInput
	}
	answer := s.answers[0]
	s.answers = s.answers[1:]
	return answer, nil
}

var (
	bankHeaders = []string{"Transaction Date", "Memo", "Amt"}
	bankSamples = []types.SourceRow{
		{"Transaction Date": "01/15/2024", "Memo": "Coffee", "Amt": "-3.50"},
		{"Transaction Date": "01/20/2024", "Memo": "Salary", "Amt": "2500.00"},
	}
)

func newTestResolver(t *testing.T, answers ...string) (*Resolver, *scriptedPrompter, *profile.Store, *bytes.Buffer) {
	t.Helper()
	store := profile.NewStore(filepath.Join(t.TempDir(), "profiles"))
	prompter := &scriptedPrompter{answers: answers}
	out := &bytes.Buffer{}
	return New(store, prompter, out, zerolog.Nop()), prompter, store, out
}

func TestResolve_ElicitsByIndex(t *testing.T) {
	r, prompter, store, out := newTestResolver(t, "0", "1", "2")

	res, err := r.Resolve("", bankHeaders, bankSamples)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	want := types.Mapping{Date: "Transaction Date", Description: "Memo", Amount: "Amt"}
	if res.Mapping != want {
		t.Errorf("Mapping = %+v, want %+v", res.Mapping, want)
	}
	if res.DateFormat != "%m/%d/%Y" {
		t.Errorf("DateFormat = %q, want %%m/%%d/%%Y", res.DateFormat)
	}
	if !res.Created() {
		t.Error("Expected a newly created mapping")
	}
	if len(prompter.prompts) != 3 {
		t.Errorf("Expected 3 prompts, got %d", len(prompter.prompts))
	}
	if !strings.Contains(prompter.prompts[0], "'date'") || !strings.Contains(prompter.prompts[2], "'amount'") {
		t.Errorf("Prompts out of order: %v", prompter.prompts)
	}
	if !strings.Contains(out.String(), "Transaction Date e.g. '01/15/2024'") {
		t.Errorf("Header listing should show example values, got: %s", out.String())
	}

	saved, err := store.Find("", bankHeaders)
	if err != nil || saved == nil {
		t.Fatalf("Expected saved profile, got %v, %v", saved, err)
	}
	if saved.Mapping != want {
		t.Errorf("Saved mapping = %+v, want %+v", saved.Mapping, want)
	}
}

func TestResolve_ElicitsByName(t *testing.T) {
	r, _, _, _ := newTestResolver(t, "Transaction Date", " Memo ", "Amt")

	res, err := r.Resolve("acme", bankHeaders, bankSamples)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	want := types.Mapping{Date: "Transaction Date", Description: "Memo", Amount: "Amt"}
	if res.Mapping != want {
		t.Errorf("Mapping = %+v, want %+v", res.Mapping, want)
	}
	if res.Profile.Bank() != "acme" {
		t.Errorf("Profile bank = %q, want acme", res.Profile.Bank())
	}
}

func TestResolve_RejectsInvalidAnswers(t *testing.T) {
	r, prompter, _, out := newTestResolver(t, "7", "", "memo", "-1", "0", "Memo", "2")

	res, err := r.Resolve("", bankHeaders, bankSamples)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Mapping.Date != "Transaction Date" || res.Mapping.Description != "Memo" || res.Mapping.Amount != "Amt" {
		t.Errorf("Unexpected mapping: %+v", res.Mapping)
	}
	if len(prompter.prompts) != 7 {
		t.Errorf("Expected 7 prompts, got %d", len(prompter.prompts))
	}
	if got := strings.Count(out.String(), "Invalid selection, try again."); got != 4 {
		t.Errorf("Expected 4 rejections, got %d", got)
	}
}

func TestResolve_SecondRunDoesNotPrompt(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "profiles")
	store := profile.NewStore(dir)

	first := &scriptedPrompter{answers: []string{"0", "1", "2"}}
	if _, err := New(store, first, &bytes.Buffer{}, zerolog.Nop()).Resolve("", bankHeaders, bankSamples); err != nil {
		t.Fatalf("first Resolve failed: %v", err)
	}

	second := &scriptedPrompter{}
	res, err := New(store, second, &bytes.Buffer{}, zerolog.Nop()).Resolve("", bankHeaders, bankSamples)
	if err != nil {
		t.Fatalf("second Resolve failed: %v", err)
	}
	if len(second.prompts) != 0 {
		t.Errorf("Expected zero prompts on second run, got %d", len(second.prompts))
	}
	if res.Source != SourceSignature {
		t.Errorf("Source = %q, want %q", res.Source, SourceSignature)
	}
	if res.DateFormat != "%m/%d/%Y" {
		t.Errorf("DateFormat = %q", res.DateFormat)
	}
}

func TestResolve_BankProfileIgnoresHeaderChanges(t *testing.T) {
	r, _, store, _ := newTestResolver(t)
	mapping := types.Mapping{Date: "Transaction Date", Description: "Memo", Amount: "Amt"}
	if _, err := store.Save("acme", bankHeaders, mapping, "%m/%d/%Y"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	res, err := r.Resolve("acme", []string{"Posted", "Details", "Value"}, nil)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Source != SourceBankName || res.Mapping != mapping {
		t.Errorf("Expected stored bank mapping, got %+v from %s", res.Mapping, res.Source)
	}
}

func TestResolve_NoSamplesLeavesDateFormatAbsent(t *testing.T) {
	r, _, store, out := newTestResolver(t, "0", "1", "2")

	res, err := r.Resolve("", bankHeaders, nil)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.DateFormat != "" {
		t.Errorf("DateFormat = %q, want absent", res.DateFormat)
	}
	if !strings.Contains(out.String(), "Memo e.g. ''") {
		t.Errorf("Expected empty example values, got: %s", out.String())
	}

	saved, _ := store.Find("", bankHeaders)
	if saved == nil || saved.DateFormat != nil {
		t.Errorf("Expected saved profile with null date format, got %+v", saved)
	}
}

func TestResolve_InputExhausted(t *testing.T) {
	r, _, store, _ := newTestResolver(t, "0")

	_, err := r.Resolve("", bankHeaders, bankSamples)
	if !errors.Is(err, ErrNoInput) {
		t.Fatalf("Expected ErrNoInput, got %v", err)
	}
	if p, _ := store.Find("", bankHeaders); p != nil {
		t.Error("No profile should be saved when elicitation is aborted")
	}
}

func TestSelect(t *testing.T) {
	headers := []string{"Date", "5", "Amount"}
	tests := []struct {
		answer string
		want   string
		wantOK bool
	}{
		{answer: "0", want: "Date", wantOK: true},
		{answer: " 2 ", want: "Amount", wantOK: true},
		{answer: "Amount", want: "Amount", wantOK: true},
		{answer: "5", wantOK: false},
		{answer: "1", want: "5", wantOK: true},
		{answer: "amount", wantOK: false},
		{answer: "-1", wantOK: false},
		{answer: "99999999999999999999", wantOK: false},
		{answer: "", wantOK: false},
	}

	for _, tt := range tests {
		got, ok := Select(headers, tt.answer)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("Select(%q) = %q, %v, want %q, %v", tt.answer, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestSampleValues(t *testing.T) {
	rows := make([]types.SourceRow, 7)
	for i := range rows {
		rows[i] = types.SourceRow{"Date": "d"}
	}
	rows[1] = types.SourceRow{}

	values := SampleValues(rows, "Date")
	if len(values) != 5 {
		t.Fatalf("Expected 5 values, got %d", len(values))
	}
	if values[1] != "" {
		t.Errorf("Missing column should yield empty string, got %q", values[1])
	}
}

func TestConsolePrompter(t *testing.T) {
	out := &bytes.Buffer{}
	p := NewConsolePrompter(strings.NewReader("0\r\nMemo\nlast"), out)

	for _, want := range []string{"0", "Memo", "last"} {
		got, err := p.Prompt("> ")
		if err != nil {
			t.Fatalf("Prompt failed: %v", err)
		}
		if got != want {
			t.Errorf("Prompt() = %q, want %q", got, want)
		}
	}
	if _, err := p.Prompt("> "); !errors.Is(err, ErrNoInput) {
		t.Errorf("Expected ErrNoInput at EOF, got %v", err)
	}
	if strings.Count(out.String(), "> ") != 4 {
		t.Errorf("Expected 4 prompts written, got %q", out.String())
	}
}
