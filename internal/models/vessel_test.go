package models

import "testing"

func TestValidIMOChecksum(t *testing.T) {
	tests := []struct {
		imo   string
		valid bool
	}{
		{"9074729", true},
		{"9176187", true},
		{"1234567", true},
		{"1234568", false},
		{"9074720", false},
		{"907472", false},
		{"90747290", false},
		{"907472a", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidIMOChecksum(tt.imo); got != tt.valid {
			t.Errorf("ValidIMOChecksum(%q) = %v, want %v", tt.imo, got, tt.valid)
		}
	}
}
