package util

import "testing"

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"$1,234.56", 1234.56, true},
		{"100.50", 100.5, true},
		{"USD 42", 42, true},
		{"n/a", 0, false},
		{"", 0, false},
		{"1.2.3", 0, false},
	}
	for _, c := range cases {
		got, ok := ParsePrice(c.in)
		if ok != c.ok || got != c.want {
			t.Fatalf("ParsePrice(%q) = %v, %v", c.in, got, ok)
		}
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(100.505); got != 100.51 {
		t.Fatalf("got %v", got)
	}
	if got := Round2(0.1 + 0.2); got != 0.3 {
		t.Fatalf("got %v", got)
	}
}
