package util

import (
	"strconv"
	"strings"
)

// ParseNumber parses a metric value robustly across locales. The feeds use
// decimal commas (SCImago exports "3,917" for 3.917), so a comma without a
// dot is a decimal separator; when both appear the commas are group
// separators. Grouping spaces are removed. Returns false when the value is
// not numeric.
func ParseNumber(input string) (float64, bool) {
	s := strings.ReplaceAll(input, " ", " ")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	compact := strings.ReplaceAll(s, " ", "")
	hasComma := strings.Contains(compact, ",")
	hasDot := strings.Contains(compact, ".")
	switch {
	case hasComma && hasDot:
		compact = strings.ReplaceAll(compact, ",", "")
	case hasComma:
		compact = strings.ReplaceAll(compact, ",", ".")
	}
	parsed, err := strconv.ParseFloat(compact, 64)
	if err != nil {
		return 0, false
	}
	return parsed, true
}

// FormatNumber renders a reduced metric without trailing zeros.
func FormatNumber(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
