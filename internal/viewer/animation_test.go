package viewer

import (
	"math"
	"testing"
)

func TestQuantizeSpeed(t *testing.T) {
	tests := []struct {
		in   float32
		want float32
	}{
		{0, 0},
		{-0.3, 0},
		{0.01, 0.01},
		{0.012, 0.01},
		{0.013, 0.015},
		{0.1, 0.1},
		{0.5, 0.1},
		{float32(math.NaN()), 0},
	}

	for _, tt := range tests {
		got := QuantizeSpeed(tt.in)
		if math.Abs(float64(got-tt.want)) > 1e-6 {
			t.Errorf("QuantizeSpeed(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
