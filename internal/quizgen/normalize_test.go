package quizgen

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"dot prefix", "1. hello", "hello"},
		{"paren prefix", "2) world", "world"},
		{"dash prefix", "3 - test", "test"},
		{"multiple lines", "1. alpha\n2) beta\n3 - gamma", "alpha\nbeta\ngamma"},
		{"indented", "   10.   indented item", "indented item"},
		{"no index", "Answer: 3 - 2", "Answer: 3 - 2"},
		{"mid-line numbers kept", "We know that 3 - 2 = 1 here.", "We know that 3 - 2 = 1 here."},
		{"remainder verbatim", "4. Keep  double  spaces", "Keep  double  spaces"},
		{"trims whole string", "\n\n  plain text  \n", "plain text"},
		{"empty", "", ""},
		{"number without punctuation", "2024 was a year", "2024 was a year"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
