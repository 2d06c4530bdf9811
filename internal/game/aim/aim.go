// Package aim turns a pointer ray into a facing direction for the
// player: while aiming, the body turns toward the point on the ground
// under the cursor and the camera eases to its aiming offset.
package aim

import (
	"math"

	"github.com/udisondev/ss3go/internal/model"
)

// DefaultRotationSpeed is the yaw interpolation rate per second.
const DefaultRotationSpeed = 25

// cameraRate is how fast the camera eases toward CameraTarget, per second.
const cameraRate = 10

// Ray is a half-line from Origin along Direction.
type Ray struct {
	Origin    model.Location
	Direction model.Location
}

// At returns the point at parameter t.
func (r Ray) At(t float64) model.Location {
	return r.Origin.Add(r.Direction.Scale(t))
}

// GroundHit intersects r with the ground plane y=0. It reports false
// when the ray is parallel to the ground or points away from it.
func GroundHit(r Ray) (model.Location, bool) {
	if r.Direction.Y == 0 {
		return model.Location{}, false
	}
	t := -r.Origin.Y / r.Direction.Y
	if t < 0 {
		return model.Location{}, false
	}
	return r.At(t), true
}

// Input is the pointer state for one frame.
type Input struct {
	SecondaryPressed  bool // went down this frame
	SecondaryReleased bool // went up this frame
	ExamineHeld       bool
}

// Aimer tracks aim mode, body yaw and camera position across frames.
type Aimer struct {
	rotationSpeed float64
	cameraTarget  model.Location

	aiming bool
	yaw    float64 // radians, 0 faces +Z
	camera model.Location
}

// NewAimer creates an aimer. rotationSpeed <= 0 selects DefaultRotationSpeed.
func NewAimer(rotationSpeed float64, camera, cameraTarget model.Location) *Aimer {
	if rotationSpeed <= 0 {
		rotationSpeed = DefaultRotationSpeed
	}
	return &Aimer{
		rotationSpeed: rotationSpeed,
		camera:        camera,
		cameraTarget:  cameraTarget,
	}
}

func (a *Aimer) Aiming() bool           { return a.aiming }
func (a *Aimer) Yaw() float64           { return a.yaw }
func (a *Aimer) SetYaw(yaw float64)     { a.yaw = wrapAngle(yaw) }
func (a *Aimer) Camera() model.Location { return a.camera }
func (a *Aimer) RotationSpeed() float64 { return a.rotationSpeed }

// Update advances one frame of dt seconds for a player standing at self
// with the pointer along ray. It returns the ground point being aimed
// at, if any.
func (a *Aimer) Update(in Input, dt float64, self model.Location, ray Ray) (model.Location, bool) {
	if in.SecondaryPressed && in.ExamineHeld {
		a.aiming = true
	}
	if in.SecondaryReleased {
		a.aiming = false
	}
	if !a.aiming {
		return model.Location{}, false
	}

	hit, ok := GroundHit(ray)
	if !ok {
		return model.Location{}, false
	}

	if want, ok := LookYaw(self, hit); ok {
		a.yaw = SlerpYaw(a.yaw, want, a.rotationSpeed*dt)
	}
	a.camera = a.camera.Lerp(a.cameraTarget, cameraRate*dt)

	return hit, true
}

// LookYaw returns the yaw that faces from toward to on the ground plane.
// It reports false when the points coincide horizontally.
func LookYaw(from, to model.Location) (float64, bool) {
	dx := to.X - from.X
	dz := to.Z - from.Z
	if dx == 0 && dz == 0 {
		return 0, false
	}
	return math.Atan2(dx, dz), true
}

// SlerpYaw rotates from a toward b along the shorter arc by fraction t,
// clamped to [0, 1].
func SlerpYaw(a, b, t float64) float64 {
	t = math.Max(0, math.Min(1, t))
	return wrapAngle(a + wrapAngle(b-a)*t)
}

// wrapAngle maps x into (-pi, pi].
func wrapAngle(x float64) float64 {
	x = math.Mod(x+math.Pi, 2*math.Pi)
	if x <= 0 {
		x += 2 * math.Pi
	}
	return x - math.Pi
}
