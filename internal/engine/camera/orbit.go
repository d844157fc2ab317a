package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const orbitEpsilon = 1e-6

// OrbitControls rotates, zooms and pans a camera around a target point.
// Input handlers only accumulate deltas; Update applies them, easing them
// out over several frames when damping is enabled.
type OrbitControls struct {
	Camera *PerspectiveCamera
	Target mgl32.Vec3

	EnableDamping bool
	DampingFactor float32

	RotateSpeed float32
	ZoomSpeed   float32
	PanSpeed    float32

	MinDistance   float32
	MaxDistance   float32
	MinPolarAngle float32 // radians from +Y
	MaxPolarAngle float32

	deltaTheta float32
	deltaPhi   float32
	scale      float32
	panOffset  mgl32.Vec3
}

// NewOrbitControls creates controls for cam orbiting the origin.
func NewOrbitControls(cam *PerspectiveCamera) *OrbitControls {
	return &OrbitControls{
		Camera:        cam,
		DampingFactor: 0.05,
		RotateSpeed:   1.0,
		ZoomSpeed:     1.0,
		PanSpeed:      1.0,
		MinDistance:   0,
		MaxDistance:   float32(math.Inf(1)),
		MinPolarAngle: 0,
		MaxPolarAngle: math.Pi,
		scale:         1,
	}
}

// HandleDrag rotates by a mouse drag of (dx, dy) pixels in a viewport of the
// given height. A drag across the full height turns a full circle.
func (o *OrbitControls) HandleDrag(dx, dy, viewportHeight float32) {
	if viewportHeight <= 0 {
		return
	}
	o.deltaTheta -= 2 * math.Pi * dx / viewportHeight * o.RotateSpeed
	o.deltaPhi -= 2 * math.Pi * dy / viewportHeight * o.RotateSpeed
}

// HandleZoom dollies towards the target for positive wheel deltas and away
// for negative ones.
func (o *OrbitControls) HandleZoom(wheel float32) {
	if wheel == 0 {
		return
	}
	step := float32(math.Pow(0.95, float64(o.ZoomSpeed)))
	if wheel > 0 {
		o.scale *= step
	} else {
		o.scale /= step
	}
}

// HandlePan moves the target in the view plane by a drag of (dx, dy) pixels.
func (o *OrbitControls) HandlePan(dx, dy, viewportHeight float32) {
	if viewportHeight <= 0 || o.Camera == nil {
		return
	}
	offset := o.Camera.Position.Sub(o.Target)
	distance := offset.Len() * float32(math.Tan(float64(mgl32.DegToRad(o.Camera.Fov))/2))

	forward := o.Camera.Forward()
	right := forward.Cross(o.Camera.Up)
	if right.Len() < orbitEpsilon {
		return
	}
	right = right.Normalize()
	up := right.Cross(forward).Normalize()

	left := right.Mul(-2 * dx * distance / viewportHeight * o.PanSpeed)
	upward := up.Mul(2 * dy * distance / viewportHeight * o.PanSpeed)
	o.panOffset = o.panOffset.Add(left).Add(upward)
}

// Stop drops any motion still being eased out.
func (o *OrbitControls) Stop() {
	o.deltaTheta = 0
	o.deltaPhi = 0
	o.scale = 1
	o.panOffset = mgl32.Vec3{}
}

// Update applies pending input to the camera and points it at the target.
// It returns true when the camera moved.
func (o *OrbitControls) Update() bool {
	if o.Camera == nil {
		return false
	}
	cam := o.Camera
	before := cam.Position

	offset := cam.Position.Sub(o.Target)
	radius, theta, phi := toSpherical(offset)

	weight := float32(1)
	if o.EnableDamping {
		weight = o.DampingFactor
	}

	theta += o.deltaTheta * weight
	phi += o.deltaPhi * weight
	phi = mgl32.Clamp(phi, o.MinPolarAngle, o.MaxPolarAngle)
	phi = mgl32.Clamp(phi, orbitEpsilon, math.Pi-orbitEpsilon)

	radius = mgl32.Clamp(radius*o.scale, o.MinDistance, o.MaxDistance)

	o.Target = o.Target.Add(o.panOffset.Mul(weight))

	cam.Position = o.Target.Add(fromSpherical(radius, theta, phi))
	cam.LookAt(o.Target)

	if o.EnableDamping {
		o.deltaTheta *= 1 - o.DampingFactor
		o.deltaPhi *= 1 - o.DampingFactor
		o.panOffset = o.panOffset.Mul(1 - o.DampingFactor)
	} else {
		o.deltaTheta = 0
		o.deltaPhi = 0
		o.panOffset = mgl32.Vec3{}
	}
	o.scale = 1

	moved := cam.Position.Sub(before)
	return moved.Dot(moved) > orbitEpsilon
}

// toSpherical converts a Y-up offset to radius, azimuth around +Y measured
// from +Z, and polar angle from +Y.
func toSpherical(v mgl32.Vec3) (radius, theta, phi float32) {
	radius = v.Len()
	if radius == 0 {
		return 0, 0, 0
	}
	theta = float32(math.Atan2(float64(v[0]), float64(v[2])))
	phi = float32(math.Acos(float64(mgl32.Clamp(v[1]/radius, -1, 1))))
	return radius, theta, phi
}

func fromSpherical(radius, theta, phi float32) mgl32.Vec3 {
	sinPhi := float32(math.Sin(float64(phi)))
	return mgl32.Vec3{
		radius * sinPhi * float32(math.Sin(float64(theta))),
		radius * float32(math.Cos(float64(phi))),
		radius * sinPhi * float32(math.Cos(float64(theta))),
	}
}
