package postgres

import "testing"

func TestFormatVector(t *testing.T) {
	tests := []struct {
		name string
		in   []float32
		want string
	}{
		{"empty", nil, "[]"},
		{"single", []float32{0.5}, "[0.5]"},
		{"multiple", []float32{0.1, -0.2, 1}, "[0.1,-0.2,1]"},
		{"zero", []float32{0, 0}, "[0,0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatVector(tt.in); got != tt.want {
				t.Errorf("formatVector(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
