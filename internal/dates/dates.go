// Package dates parses transaction dates written in strptime-style patterns
// (%Y, %m, %d, %y) and infers which pattern a bank export uses.
//
// Patterns are stored in profiles in their strptime spelling so that profile
// files written by earlier versions of the tool keep working. Internally each
// pattern is translated to a time layout.
package dates

import (
	"strings"
	"time"
)

// ISOLayout is the output form of every normalized date.
const ISOLayout = "2006-01-02"

// SampleLimit is the number of sample rows consulted during inference.
const SampleLimit = 5

// Candidates is the ordered list tried by InferFormat. The first pattern that
// parses every non-empty sample wins, so ambiguous values such as 03/04/2024
// resolve to month-first. Do not reorder: stored profiles depend on it.
var Candidates = []string{
	"%Y-%m-%d",
	"%m/%d/%Y",
	"%d/%m/%Y",
	"%Y/%m/%d",
	"%d-%m-%Y",
	"%m-%d-%Y",
}

// QIFFormats is the per-record list tried for QIF dates. The trailing %m/%d/%y
// catches exports that write two-digit years with a slash instead of the
// Quicken apostrophe.
var QIFFormats = []string{
	"%m/%d'%y",
	"%m/%d/%Y",
	"%Y-%m-%d",
	"%m/%d/%y",
}

// directives maps the supported strptime directives to time layout tokens.
// %y uses the time package two-digit rule: 69-99 -> 19YY, 00-68 -> 20YY.
var directives = map[byte]string{
	'Y': "2006",
	'm': "1",
	'd': "2",
	'y': "06",
	'%': "%",
}

// Result is the outcome of a single parse attempt.
type Result struct {
	Time time.Time
	OK   bool
}

// ISO renders a successful result as YYYY-MM-DD. It returns "" when OK is false.
func (r Result) ISO() string {
	if !r.OK {
		return ""
	}
	return r.Time.Format(ISOLayout)
}

// Layout translates a strptime-style pattern into a time layout.
// The second return value is false when the pattern contains a directive
// outside %Y %m %d %y %%, or a literal letter, digit or underscore (the time
// package could read those as layout tokens).
func Layout(pattern string) (string, bool) {
	var b strings.Builder
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		if c != '%' {
			if isLayoutRune(c) {
				return "", false
			}
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(pattern) {
			return "", false
		}
		token, ok := directives[pattern[i]]
		if !ok {
			return "", false
		}
		b.WriteString(token)
	}
	return b.String(), true
}

func isLayoutRune(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

// Parse attempts value under pattern. It never panics and never returns an
// error: callers branch on Result.OK.
func Parse(value, pattern string) Result {
	layout, ok := Layout(pattern)
	if !ok {
		return Result{}
	}
	t, err := time.Parse(layout, value)
	if err != nil {
		return Result{}
	}
	return Result{Time: t, OK: true}
}

// InferFormat returns the first candidate that parses every non-empty value.
// Empty values are skipped and do not disqualify a candidate. The second
// return value is false when no candidate matches or when there is no
// non-empty value to judge by.
func InferFormat(values []string) (string, bool) {
	if len(values) > SampleLimit {
		values = values[:SampleLimit]
	}

	nonEmpty := 0
	for _, v := range values {
		if v != "" {
			nonEmpty++
		}
	}
	if nonEmpty == 0 {
		return "", false
	}

	for _, candidate := range Candidates {
		if matchesAll(values, candidate) {
			return candidate, true
		}
	}
	return "", false
}

func matchesAll(values []string, pattern string) bool {
	for _, v := range values {
		if v == "" {
			continue
		}
		if !Parse(v, pattern).OK {
			return false
		}
	}
	return true
}

// ParseQIF tries QIFFormats in order on a single QIF date. Quicken pads
// single-digit components with spaces ("3/ 4'24"), so embedded spaces are
// removed first. The raw value is returned unchanged when nothing parses.
func ParseQIF(raw string) string {
	if raw == "" {
		return raw
	}
	compact := strings.ReplaceAll(raw, " ", "")
	for _, pattern := range QIFFormats {
		if r := Parse(compact, pattern); r.OK {
			return r.ISO()
		}
	}
	return raw
}
