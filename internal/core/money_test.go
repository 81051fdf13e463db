package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{"integer", "150", 15000, false},
		{"dot decimal", "42.50", 4250, false},
		{"comma decimal", "42,50", 4250, false},
		{"one decimal digit", "9.9", 990, false},
		{"rounds half up", "1.005", 101, false},
		{"rounds down", "1.004", 100, false},
		{"leading dot", ".50", 50, false},
		{"whitespace trimmed", " 12.00 ", 1200, false},
		{"zero rejected", "0", 0, true},
		{"zero decimal rejected", "0.00", 0, true},
		{"negative rejected", "-5", 0, true},
		{"explicit plus rejected", "+5", 0, true},
		{"empty rejected", "", 0, true},
		{"letters rejected", "12a", 0, true},
		{"double separator rejected", "1.2.3", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDecimalToCents(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDecimalToCents(%q) = %d, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDecimalToCents(%q) failed: %v", tt.input, err)
			}
			if got != tt.want {
				t.Fatalf("ParseDecimalToCents(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseNonNegativeDecimalToCents(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{"zero", "0", 0, false},
		{"zero decimal", "0.00", 0, false},
		{"zero comma decimal", "0,00", 0, false},
		{"positive", "42.50", 4250, false},
		{"negative rejected", "-5", 0, true},
		{"empty rejected", "", 0, true},
		{"letters rejected", "12a", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseNonNegativeDecimalToCents(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseNonNegativeDecimalToCents(%q) = %d, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseNonNegativeDecimalToCents(%q) failed: %v", tt.input, err)
			}
			if got != tt.want {
				t.Fatalf("ParseNonNegativeDecimalToCents(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestMoneyString(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{150, "1.50"},
		{123456, "1234.56"},
		{-990, "-9.90"},
	}
	for _, tt := range tests {
		if got := (Money{Cents: tt.cents}).String(); got != tt.want {
			t.Fatalf("Money{%d}.String() = %s, want %s", tt.cents, got, tt.want)
		}
	}
}
