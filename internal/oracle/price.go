package oracle

import (
	"fmt"
	"strings"
)

// PriceScale is the fixed-point scale shared with the escrow contract:
// 8 decimal places. Prices captured at join time and settlement time are
// directly comparable without rescaling.
const PriceScale int64 = 100_000_000

const priceDecimals = 8

// ParsePrice converts an upstream decimal string to the fixed-point
// representation without going through floats. Digits past the eighth
// decimal place are truncated.
func ParsePrice(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty price")
	}
	neg := false
	if s[0] == '+' || s[0] == '-' {
		neg = s[0] == '-'
		s = s[1:]
	}
	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > priceDecimals {
		frac = frac[:priceDecimals]
	}
	frac += strings.Repeat("0", priceDecimals-len(frac))

	var v int64
	for _, c := range whole + frac {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("malformed price %q", s)
		}
		d := int64(c - '0')
		if v > (1<<63-1-d)/10 {
			return 0, fmt.Errorf("price %q overflows fixed-point range", s)
		}
		v = v*10 + d
	}
	if neg {
		v = -v
	}
	return v, nil
}

// FormatPrice renders a fixed-point price back to a decimal string, mostly
// for logs and API payloads.
func FormatPrice(p int64) string {
	neg := p < 0
	if neg {
		p = -p
	}
	out := fmt.Sprintf("%d.%08d", p/PriceScale, p%PriceScale)
	if neg {
		return "-" + out
	}
	return out
}
