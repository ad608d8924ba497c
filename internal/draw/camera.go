package draw

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tomz197/starhero/internal/vehicle"
)

// Chase camera placement relative to the vehicle.
const (
	chaseDistance = 12.0
	chaseHeight   = 3.0
	nearPlane     = 0.5
	farPlane      = 400.0
)

// Camera is a pinhole projection onto the canvas.
type Camera struct {
	Eye     r3.Vec
	Forward r3.Vec
	Right   r3.Vec
	Up      r3.Vec

	Focal   float64 // pixels per unit at depth 1
	CenterX float64
	CenterY float64
}

// ChaseCamera sits behind and above v, pulled further back by pullback
// during a flip. It ignores bank so a roll spins the ship, not the world.
func ChaseCamera(v vehicle.Vehicle, pullback float64, width, height int) Camera {
	v.Bank = 0
	fwd := v.Forward()
	up := v.Up()
	eye := r3.Add(v.Position, r3.Scale(-(chaseDistance+pullback), fwd))
	eye = r3.Add(eye, r3.Scale(chaseHeight, up))
	return Camera{
		Eye:     eye,
		Forward: fwd,
		Right:   r3.Cross(fwd, up),
		Up:      up,
		Focal:   float64(width) / 2,
		CenterX: float64(width) / 2,
		CenterY: float64(height) / 2,
	}
}

// Project maps p to canvas pixels and returns its depth. ok is false for
// points behind the near plane or beyond the far plane.
func (c Camera) Project(p r3.Vec) (pt Point, depth float64, ok bool) {
	d := r3.Sub(p, c.Eye)
	depth = r3.Dot(d, c.Forward)
	if depth < nearPlane || depth > farPlane {
		return Point{}, depth, false
	}
	k := c.Focal / depth
	return Point{
		X: c.CenterX + r3.Dot(d, c.Right)*k,
		Y: c.CenterY - r3.Dot(d, c.Up)*k,
	}, depth, true
}

// Scale is the on-screen size in pixels of length units at depth.
func (c Camera) Scale(length, depth float64) float64 {
	return length * c.Focal / depth
}
