package core

import (
	"errors"
	"testing"
	"time"
)

func TestParseMonthLabelValid(t *testing.T) {
	cases := []struct {
		in    string
		year  int
		month time.Month
	}{
		{"Jul-25", 2025, time.July},
		{"jul-25", 2025, time.July},
		{"JUL-25", 2025, time.July},
		{" Jan-26 ", 2026, time.January},
		{"Dec-25", 2025, time.December},
		{"may-00", 2000, time.May},
	}
	for _, tc := range cases {
		got, err := ParseMonthLabel(tc.in)
		if err != nil {
			t.Fatalf("ParseMonthLabel(%q): %v", tc.in, err)
		}
		want := MonthKey{Year: tc.year, Month: tc.month}
		if got != want {
			t.Fatalf("ParseMonthLabel(%q) = %v, want %v", tc.in, got, want)
		}
	}
}

func TestParseMonthLabelInvalid(t *testing.T) {
	for _, in := range []string{"", "13-25", "Jul-2025", "Jul25", "July-25", "Jul-2a", "Jul-25-01", "-25", "Jul-"} {
		if _, err := ParseMonthLabel(in); !errors.Is(err, ErrInvalidMonthLabel) {
			t.Fatalf("ParseMonthLabel(%q): expected ErrInvalidMonthLabel, got %v", in, err)
		}
	}
}

func TestMonthKeyOrdering(t *testing.T) {
	labels := []string{"Jan-25", "Feb-25", "Jul-25", "Dec-25", "Jan-26"}
	var prev MonthKey
	for i, l := range labels {
		k, err := ParseMonthLabel(l)
		if err != nil {
			t.Fatalf("ParseMonthLabel(%q): %v", l, err)
		}
		if i > 0 && !prev.Before(k) {
			t.Fatalf("expected %v < %v", prev, k)
		}
		if i > 0 && k.Before(prev) {
			t.Fatalf("ordering not antisymmetric for %v, %v", prev, k)
		}
		prev = k
	}
}

func TestMonthKeyEqualLabelsEqualKeys(t *testing.T) {
	a, _ := ParseMonthLabel("Jul-25")
	b, _ := ParseMonthLabel("jUl-25")
	if a != b {
		t.Fatalf("case-insensitive labels should normalize to equal keys: %v vs %v", a, b)
	}
}

func TestMonthKeyStringAndLabel(t *testing.T) {
	k, _ := ParseMonthLabel("Jul-25")
	if k.String() != "2025-07" {
		t.Fatalf("String() = %q", k.String())
	}
	if k.Label() != "Jul-25" {
		t.Fatalf("Label() = %q", k.Label())
	}
}
