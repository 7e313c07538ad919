package oracle

import (
	"testing"
)

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"0", 0},
		{"1", 100_000_000},
		{"61000.12345678", 6_100_012_345_678},
		{"61000.12", 6_100_012_000_000},
		{"0.00000001", 1},
		{".5", 50_000_000},
		{"61000.123456789999", 6_100_012_345_678}, // digits past the scale truncate
		{"-2.5", -250_000_000},
	}
	for _, tc := range cases {
		got, err := ParsePrice(tc.in)
		if err != nil {
			t.Fatalf("ParsePrice(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParsePrice(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestParsePriceRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "abc", "1.2.3", "1e5", "--2", "92233720368547758.08"} {
		if _, err := ParsePrice(in); err == nil {
			t.Fatalf("ParsePrice(%q) accepted invalid input", in)
		}
	}
}

func TestFormatPriceRoundTrip(t *testing.T) {
	for _, p := range []int64{0, 1, 100_000_000, 6_100_012_345_678, -250_000_000} {
		got, err := ParsePrice(FormatPrice(p))
		if err != nil {
			t.Fatalf("round trip %d: %v", p, err)
		}
		if got != p {
			t.Fatalf("round trip %d = %d", p, got)
		}
	}
}

func TestParsePriceOverflow(t *testing.T) {
	if _, err := ParsePrice("99999999999999999999"); err == nil {
		t.Fatal("overflowing price accepted")
	}
}
