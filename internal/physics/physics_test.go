package physics

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestDistances(t *testing.T) {
	a := r3.Vec{X: 1, Y: 2, Z: 3}
	b := r3.Vec{X: 4, Y: 6, Z: 3}
	assert.Equal(t, 25.0, DistanceSquared(a, b))
	assert.Equal(t, 5.0, Distance(a, b))
	assert.True(t, PointInSphere(b, a, 5))
	assert.False(t, PointInSphere(b, a, 4.99))
	assert.True(t, SpheresOverlap(a, 2, b, 3.1))
	assert.False(t, SpheresOverlap(a, 2, b, 3))
}

func TestInShell_StaysWithinBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	center := r3.Vec{X: 10, Y: -5, Z: 300}
	for i := 0; i < 5000; i++ {
		p := InShell(rng, center, 80, 150)
		d := Distance(p, center)
		assert.GreaterOrEqual(t, d, 80-1e-9)
		assert.LessOrEqual(t, d, 150+1e-9)
	}
}

func TestOnSphere_CoversBothHemispheres(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	var up, down int
	for i := 0; i < 2000; i++ {
		if OnSphere(rng, r3.Vec{}, 1).Z > 0 {
			up++
		} else {
			down++
		}
	}
	assert.InDelta(t, 1000, up, 150)
	assert.InDelta(t, 1000, down, 150)
}

func TestSafeUnit(t *testing.T) {
	fb := r3.Vec{Z: -1}
	assert.Equal(t, fb, SafeUnit(r3.Vec{}, fb))
	assert.InDelta(t, 1, r3.Norm(SafeUnit(r3.Vec{X: 3, Y: 4}, fb)), 1e-12)
}

func TestEaseInOutCubic(t *testing.T) {
	assert.Equal(t, 0.0, EaseInOutCubic(0))
	assert.Equal(t, 0.5, EaseInOutCubic(0.5))
	assert.Equal(t, 1.0, EaseInOutCubic(1))
	prev := 0.0
	for i := 1; i <= 100; i++ {
		v := EaseInOutCubic(float64(i) / 100)
		assert.GreaterOrEqual(t, v, prev)
		prev = v
	}
}

func TestSpatialGrid_FindsAllNeighbors(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	const cell = 10.0
	g := NewSpatialGrid(cell, 64)

	pts := make([]r3.Vec, 400)
	for i := range pts {
		pts[i] = r3.Vec{
			X: Between(rng, -200, 200),
			Y: Between(rng, -200, 200),
			Z: Between(rng, -200, 200),
		}
		g.Insert(pts[i], i)
	}

	for q := 0; q < 50; q++ {
		probe := pts[rng.Intn(len(pts))]
		var got []int
		g.QueryAround(probe, func(idx int) bool {
			got = append(got, idx)
			return false
		})
		// no duplicates despite hash collisions
		sorted := append([]int(nil), got...)
		sort.Ints(sorted)
		for i := 1; i < len(sorted); i++ {
			assert.NotEqual(t, sorted[i-1], sorted[i])
		}
		// every point within one cell size is reported
		seen := map[int]bool{}
		for _, idx := range got {
			seen[idx] = true
		}
		for i, p := range pts {
			if Distance(p, probe) <= cell {
				assert.True(t, seen[i], "missed neighbor %d", i)
			}
		}
	}
}

func TestSpatialGrid_StopEarlyAndClear(t *testing.T) {
	g := NewSpatialGrid(5, 8)
	for i := 0; i < 10; i++ {
		g.Insert(r3.Vec{X: float64(i) * 0.1}, i)
	}
	calls := 0
	g.QueryAround(r3.Vec{}, func(int) bool { calls++; return true })
	assert.Equal(t, 1, calls)

	g.Clear()
	calls = 0
	g.QueryAround(r3.Vec{}, func(int) bool { calls++; return false })
	assert.Zero(t, calls)
}

func TestSpatialGrid_NegativeCoordinates(t *testing.T) {
	g := NewSpatialGrid(4, 16)
	g.Insert(r3.Vec{X: -0.5, Y: -0.5, Z: -0.5}, 0)
	found := false
	g.QueryAround(r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}, func(int) bool { found = true; return true })
	assert.True(t, found)
	assert.False(t, math.IsNaN(Distance(r3.Vec{}, r3.Vec{X: -1})))
}
