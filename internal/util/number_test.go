package util

import "testing"

func TestParseNumber(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  float64
		ok    bool
	}{
		{name: "plain", input: "3.917", want: 3.917, ok: true},
		{name: "decimal comma", input: "3,917", want: 3.917, ok: true},
		{name: "comma and dot", input: "1,234.5", want: 1234.5, ok: true},
		{name: "grouping space", input: "1 000", want: 1000, ok: true},
		{name: "nbsp group", input: "1 000", want: 1000, ok: true},
		{name: "integer", input: "42", want: 42, ok: true},
		{name: "blank", input: "  ", ok: false},
		{name: "text", input: "Q1", ok: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseNumber(tc.input)
			if ok != tc.ok {
				t.Fatalf("ok=%v want %v", ok, tc.ok)
			}
			if ok && got != tc.want {
				t.Fatalf("got %v want %v", got, tc.want)
			}
		})
	}
}

func TestFormatNumber(t *testing.T) {
	if got := FormatNumber(3.5); got != "3.5" {
		t.Fatalf("got %q", got)
	}
	if got := FormatNumber(1000); got != "1000" {
		t.Fatalf("got %q", got)
	}
}
