package utils

import "testing"

func TestSanitizeShareName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain name", "Riverside 2LDK", "Riverside 2LDK"},
		{"strips pipes", "Riv|er|side", "Riverside"},
		{"strips semicolons", "Station;South", "StationSouth"},
		{"trims space", "  Meguro Flat  ", "Meguro Flat"},
		{"only delimiters", "|;|", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeShareName(tt.input); got != tt.want {
				t.Errorf("SanitizeShareName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
