package ui

import "testing"

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"Chennai", 10, "Chennai"},
		{"Kanniyakumari", 6, "Kanni…"},
		{"Salem", 0, ""},
		{"சென்னை", 20, "சென்னை"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := truncate(tt.in, tt.max); got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}

func TestPadRightAndFit(t *testing.T) {
	if got := padRight("DMK", 6); got != "DMK   " {
		t.Errorf("padRight = %q", got)
	}
	if got := padRight("AIADMK", 3); got != "AIADMK" {
		t.Errorf("padRight should not truncate, got %q", got)
	}
	if got := fit("Tiruvallur", 5); got != "Tiru…" {
		t.Errorf("fit = %q", got)
	}
}

func TestFormatIndian(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{99999, "99,999"},
		{100000, "1,00,000"},
		{1234567, "12,34,567"},
		{123456789, "12,34,56,789"},
		{-4500, "-4,500"},
	}
	for _, tt := range tests {
		if got := formatIndian(tt.n); got != tt.want {
			t.Errorf("formatIndian(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := formatPercent(0); got != "N/A" {
		t.Errorf("formatPercent(0) = %q", got)
	}
	if got := formatPercent(72.456); got != "72.46%" {
		t.Errorf("formatPercent(72.456) = %q", got)
	}
}
