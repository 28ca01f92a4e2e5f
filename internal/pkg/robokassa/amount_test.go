package robokassa

import "testing"

func TestAmountsEqual_DifferentScale(t *testing.T) {
	a, _ := ParseAmount("2500.50")
	b, _ := ParseAmount("2500.500000")
	if !AmountsEqual(a, b) {
		t.Fatal("amounts should be numerically equal")
	}
}

func TestParseAmount_Invalid(t *testing.T) {
	if _, err := ParseAmount("not-a-number"); err == nil {
		t.Fatal("expected error for malformed amount")
	}
}
