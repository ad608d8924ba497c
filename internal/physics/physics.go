// Package physics provides 3-D distance tests, the broad-phase grid and
// random placement helpers.
package physics

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"
)

// DistanceSquared calculates the squared distance between two points.
// Use this when comparing distances to avoid the sqrt cost.
func DistanceSquared(a, b r3.Vec) float64 {
	return r3.Norm2(r3.Sub(a, b))
}

// Distance calculates the Euclidean distance between two points.
func Distance(a, b r3.Vec) float64 {
	return math.Sqrt(DistanceSquared(a, b))
}

// PointInSphere checks if a point is within radius of a center.
func PointInSphere(p, center r3.Vec, radius float64) bool {
	return DistanceSquared(p, center) <= radius*radius
}

// SpheresOverlap checks if two spheres overlap.
func SpheresOverlap(a r3.Vec, ra float64, b r3.Vec, rb float64) bool {
	minDist := ra + rb
	return DistanceSquared(a, b) < minDist*minDist
}

// OnSphere returns a uniformly distributed point at distance r from center.
func OnSphere(rng *rand.Rand, center r3.Vec, r float64) r3.Vec {
	theta := rng.Float64() * 2 * math.Pi
	phi := math.Acos(2*rng.Float64() - 1)
	sp := math.Sin(phi)
	return r3.Add(center, r3.Vec{
		X: r * sp * math.Cos(theta),
		Y: r * sp * math.Sin(theta),
		Z: r * math.Cos(phi),
	})
}

// InShell returns a uniformly oriented point whose distance from center
// lies in [minR, maxR].
func InShell(rng *rand.Rand, center r3.Vec, minR, maxR float64) r3.Vec {
	return OnSphere(rng, center, Between(rng, minR, maxR))
}

// Between returns a uniform value in [lo, hi).
func Between(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// SafeUnit normalizes v, returning fallback for a zero vector.
func SafeUnit(v, fallback r3.Vec) r3.Vec {
	n := r3.Norm(v)
	if n == 0 {
		return fallback
	}
	return r3.Scale(1/n, v)
}

// EaseInOutCubic maps t in [0, 1] onto a smooth S curve.
func EaseInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := -2*t + 2
	return 1 - u*u*u/2
}
