package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	issnPattern = regexp.MustCompile(`^\s*(\d{4})-?(\d{3}[\dxX])\s*$`)
	reNonISSN   = regexp.MustCompile(`[^0-9Xx]`)
	reNonAlnum  = regexp.MustCompile(`[^A-Z0-9 ]+`)
	reSpaces    = regexp.MustCompile(`\s+`)
)

// NormalizeISSN canonicalizes a serial number to NNNN-NNNN upper-case form.
// Inputs like "12345678" or "1234 567x" are accepted; anything else returns
// the empty string.
func NormalizeISSN(input string) string {
	s := strings.TrimSpace(input)
	if s == "" || s == "-" {
		return ""
	}
	if m := issnPattern.FindStringSubmatch(s); m != nil {
		return strings.ToUpper(m[1] + "-" + m[2])
	}
	digits := reNonISSN.ReplaceAllString(s, "")
	if len(digits) == 8 {
		return strings.ToUpper(digits[:4] + "-" + digits[4:])
	}
	return ""
}

// CleanJournalName reduces a journal title to the grouping key: upper-case,
// A-Z/0-9/space only, single spaces. This rule decides which rows denote the
// same journal, so it lives in exactly one place.
func CleanJournalName(input string) string {
	s := strings.ToUpper(strings.TrimSpace(input))
	s = reNonAlnum.ReplaceAllString(s, " ")
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// CleanAgreementKey folds an agreement label into a join key: NFKC
// normalization, all whitespace and control characters removed, upper-case.
func CleanAgreementKey(input string) string {
	s := norm.NFKC.String(input)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}

// IsBlank reports whether a value carries no information: empty or
// whitespace-only.
func IsBlank(value string) bool {
	return strings.TrimSpace(value) == ""
}

// IsSentinel reports whether a value is the "N/A" placeholder, case-insensitive
// after trimming.
func IsSentinel(value string) bool {
	return strings.EqualFold(strings.TrimSpace(value), "N/A")
}
