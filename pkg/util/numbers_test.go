package util

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseDecimal(t *testing.T) {
	d, ok := ParseDecimal("16.25")
	if !ok || !d.Equal(decimal.RequireFromString("16.25")) {
		t.Fatalf("unexpected %s %v", d, ok)
	}
	for _, bad := range []string{"", "  ", "abc", "inf", "1,5"} {
		if _, ok := ParseDecimal(bad); ok {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

func TestParseDecimalAcceptsRealisticPrices(t *testing.T) {
	for _, in := range []string{"0.00000123", "65000", "1e5", "2.5E-8", "123456789.12345678"} {
		if _, ok := ParseDecimal(in); !ok {
			t.Fatalf("expected %q to be accepted", in)
		}
	}
}

func TestParseDecimalRejectsExtremeMagnitudes(t *testing.T) {
	cases := []string{
		"1e20000000",
		"1e-2000000000",
		"1e33",
		"1e-33",
		"1" + strings.Repeat("0", 60),
		"0." + strings.Repeat("1", 60),
	}
	for _, in := range cases {
		if _, ok := ParseDecimal(in); ok {
			t.Fatalf("expected %.20q to be rejected", in)
		}
	}
}

func TestParseDecimalDefault(t *testing.T) {
	def := decimal.NewFromInt(3)
	if got := ParseDecimalDefault("nope", def); !got.Equal(def) {
		t.Fatalf("expected default")
	}
	if got := ParseDecimalDefault("1e20000000", def); !got.Equal(def) {
		t.Fatalf("expected default for huge exponent, got exponent %d", got.Exponent())
	}
	if got := ParseDecimalDefault("0.5", def); !got.Equal(decimal.RequireFromString("0.5")) {
		t.Fatalf("expected 0.5, got %s", got)
	}
}
