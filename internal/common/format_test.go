package common

import "testing"

func TestFormatMoney(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "¥0.00"},
		{5.5, "¥5.50"},
		{1234.5, "¥1,234.50"},
		{100000, "¥100,000.00"},
		{1234567.89, "¥1,234,567.89"},
		{-9876.54, "¥-9,876.54"},
	}
	for _, c := range cases {
		if got := FormatMoney(c.in); got != c.want {
			t.Errorf("FormatMoney(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatSignedMoney(t *testing.T) {
	if got := FormatSignedMoney(1000); got != "+¥1,000.00" {
		t.Errorf("FormatSignedMoney(1000) = %q", got)
	}
	if got := FormatSignedMoney(-56.78); got != "-¥56.78" {
		t.Errorf("FormatSignedMoney(-56.78) = %q", got)
	}
}

func TestFormatSignedPct(t *testing.T) {
	if got := FormatSignedPct(2.777); got != "+2.78%" {
		t.Errorf("FormatSignedPct(2.777) = %q", got)
	}
	if got := FormatSignedPct(-8.0); got != "-8.00%" {
		t.Errorf("FormatSignedPct(-8.0) = %q", got)
	}
}

func TestSetCurrencySymbol(t *testing.T) {
	defer SetCurrencySymbol("¥")

	SetCurrencySymbol("$")
	if got := FormatMoney(1); got != "$1.00" {
		t.Errorf("FormatMoney(1) = %q after symbol change", got)
	}

	// Empty input leaves the symbol unchanged.
	SetCurrencySymbol("")
	if got := FormatMoney(1); got != "$1.00" {
		t.Errorf("FormatMoney(1) = %q, empty symbol should be ignored", got)
	}
}
