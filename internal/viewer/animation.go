package viewer

import "math"

// Auto-rotation speeds, in radians per frame.
const (
	DefaultRotationSpeed float32 = 0.01
	MaxRotationSpeed     float32 = 0.1
	RotationSpeedStep    float32 = 0.005
)

// AnimationState is the auto-rotation applied to the displayed model.
type AnimationState struct {
	Playing bool
	Speed   float32 // radians per frame around +Y
}

// QuantizeSpeed bounds v to [0, MaxRotationSpeed] and snaps it to the nearest
// RotationSpeedStep, the way the speed slider does.
func QuantizeSpeed(v float32) float32 {
	if v != v || v <= 0 {
		return 0
	}
	if v >= MaxRotationSpeed {
		return MaxRotationSpeed
	}
	steps := math.Round(float64(v / RotationSpeedStep))
	return float32(steps) * RotationSpeedStep
}
