package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// SpatialGrid is a hashed uniform grid for broad-phase collision detection
// in an unbounded world. Items are inserted by position and index, then
// nearby items can be queried via the 3x3x3 cell neighborhood.
//
// Cell size must be >= the maximum interaction distance between any two
// colliding objects so that all potential collisions are found within
// the neighborhood. Hash collisions only add candidates; callers always
// run the exact test.
type SpatialGrid struct {
	invCellSize float64
	buckets     []gridCell
	mask        uint64
	stamp       []uint32 // per-item visit marker, dedupes a query
	query       uint32
}

// gridCell stores the indices of objects hashed to a bucket.
// The slice is reused between frames (reset to [:0]) to avoid allocations.
type gridCell struct {
	items []int
}

// NewSpatialGrid creates a grid with at least minBuckets buckets (rounded
// up to a power of two).
func NewSpatialGrid(cellSize float64, minBuckets int) *SpatialGrid {
	n := 1
	for n < minBuckets {
		n <<= 1
	}
	return &SpatialGrid{
		invCellSize: 1.0 / cellSize,
		buckets:     make([]gridCell, n),
		mask:        uint64(n - 1),
	}
}

// Clear removes all items from the grid without deallocating cell memory.
func (g *SpatialGrid) Clear() {
	for i := range g.buckets {
		g.buckets[i].items = g.buckets[i].items[:0]
	}
}

// Insert adds an item (identified by a non-negative index) at a position.
func (g *SpatialGrid) Insert(p r3.Vec, index int) {
	b := g.bucket(g.cell(p))
	g.buckets[b].items = append(g.buckets[b].items, index)
	if index >= len(g.stamp) {
		g.stamp = append(g.stamp, make([]uint32, index-len(g.stamp)+1)...)
	}
}

// QueryAround calls fn once for each item index in the 27 cells around p.
// If fn returns true, iteration stops early (useful for "find first" queries).
func (g *SpatialGrid) QueryAround(p r3.Vec, fn func(index int) bool) {
	g.query++
	if g.query == 0 {
		clear(g.stamp)
		g.query = 1
	}
	c := g.cell(p)
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for dz := int64(-1); dz <= 1; dz++ {
				b := g.bucket([3]int64{c[0] + dx, c[1] + dy, c[2] + dz})
				for _, idx := range g.buckets[b].items {
					if g.stamp[idx] == g.query {
						continue
					}
					g.stamp[idx] = g.query
					if fn(idx) {
						return
					}
				}
			}
		}
	}
}

func (g *SpatialGrid) cell(p r3.Vec) [3]int64 {
	return [3]int64{
		int64(math.Floor(p.X * g.invCellSize)),
		int64(math.Floor(p.Y * g.invCellSize)),
		int64(math.Floor(p.Z * g.invCellSize)),
	}
}

func (g *SpatialGrid) bucket(c [3]int64) uint64 {
	h := uint64(c[0])*73856093 ^ uint64(c[1])*19349663 ^ uint64(c[2])*83492791
	return h & g.mask
}
