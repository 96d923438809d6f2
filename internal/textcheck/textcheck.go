// Package textcheck sanity-checks raw narrative text before any oracle call
// is made. It reports every violated rule so callers can surface complete
// diagnostics, not just the first failure.
package textcheck

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	// MinLength is the smallest text worth extracting from.
	MinLength = 100
	// MaxLength bounds a single run's input.
	MaxLength = 10_000_000
	// minReadableRatio is the readable-rune share below which text is
	// treated as garbled or binary.
	minReadableRatio = 0.5
)

// Rule identifies one validation rule.
type Rule string

const (
	RuleEmpty      Rule = "empty"
	RuleTooShort   Rule = "too_short"
	RuleTooLong    Rule = "too_long"
	RuleBinary     Rule = "binary_content"
	RuleUnreadable Rule = "unreadable"
	RuleNoAlnum    Rule = "no_alphanumeric"
)

// Violation is one failed rule with a human-readable detail.
type Violation struct {
	Rule   Rule   `json:"rule"`
	Detail string `json:"detail"`
}

// Report is the outcome of validating one input text.
type Report struct {
	Valid      bool        `json:"valid"`
	Violations []Violation `json:"violations,omitempty"`
}

// binarySignatures are magic sequences of common binary and container
// formats that occasionally leak through upstream text extraction.
var binarySignatures = []struct {
	marker string
	label  string
}{
	{"\x00", "null byte"},
	{"%PDF-", "PDF document marker"},
	{"PK\x03\x04", "zip container marker"},
	{"\x89PNG", "PNG image marker"},
	{"\xff\xd8\xff", "JPEG image marker"},
	{"GIF87a", "GIF image marker"},
	{"GIF89a", "GIF image marker"},
	{"\xd0\xcf\x11\xe0", "OLE compound document marker"},
}

// Validate checks text against every rule and returns the full set of
// violations.
func Validate(text string) Report {
	var violations []Violation
	add := func(rule Rule, format string, args ...any) {
		violations = append(violations, Violation{Rule: rule, Detail: fmt.Sprintf(format, args...)})
	}

	if strings.TrimSpace(text) == "" {
		add(RuleEmpty, "text is empty or whitespace-only")
	} else if len(text) < MinLength {
		add(RuleTooShort, "text is %d characters, minimum is %d", len(text), MinLength)
	}
	if len(text) > MaxLength {
		add(RuleTooLong, "text is %d characters, maximum is %d", len(text), MaxLength)
	}

	for _, sig := range binarySignatures {
		if strings.Contains(text, sig.marker) {
			add(RuleBinary, "binary content detected: %s", sig.label)
			break
		}
	}

	total, readable, alnum := 0, 0, 0
	for _, r := range text {
		total++
		if isReadable(r) {
			readable++
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			alnum++
		}
	}
	if total > 0 {
		if ratio := float64(readable) / float64(total); ratio < minReadableRatio {
			add(RuleUnreadable, "readable character ratio %.2f is below %.2f", ratio, minReadableRatio)
		}
		if alnum == 0 {
			add(RuleNoAlnum, "text contains no alphanumeric characters")
		}
	}

	return Report{Valid: len(violations) == 0, Violations: violations}
}

// Summary flattens the violation details into one diagnostic string.
func (r Report) Summary() string {
	if r.Valid {
		return ""
	}
	parts := make([]string, 0, len(r.Violations))
	for _, v := range r.Violations {
		parts = append(parts, v.Detail)
	}
	return strings.Join(parts, "; ")
}

// isReadable accepts letters (including accented Latin), digits, common
// punctuation and whitespace.
func isReadable(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) ||
		unicode.IsPunct(r) || r == '+' || r == '=' || r == '$' || r == '~' || r == '`' || r == '^' || r == '|' || r == '<' || r == '>'
}
