// Package draw renders simulation snapshots to an ANSI terminal.
package draw

import (
	"fmt"
	"io"
	"math"
	"strings"
)

// Point is a position in canvas pixels.
type Point struct {
	X, Y float64
}

// Block characters for half-block rendering.
const (
	BlockFull      = '█'
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
)

// Canvas is a pixel buffer with 2x vertical resolution: every terminal
// cell holds two pixels, drawn with half-block characters.
type Canvas struct {
	cols      int
	rows      int
	height    int    // rows * 2
	pixels    []bool // [y*cols + x]
	offsetRow int    // terminal rows above the canvas

	renderBuf strings.Builder
}

// NewCanvas creates a canvas covering cols x rows terminal cells.
func NewCanvas(cols, rows int) *Canvas {
	c := &Canvas{}
	c.Resize(cols, rows)
	return c
}

// Resize reallocates the buffer when the terminal changed size.
func (c *Canvas) Resize(cols, rows int) {
	cols, rows = max(cols, 0), max(rows, 0)
	if cols == c.cols && rows == c.rows {
		return
	}
	c.cols = cols
	c.rows = rows
	c.height = rows * 2
	c.pixels = make([]bool, c.height*cols)
}

// SetOffset moves the canvas down by row terminal rows, leaving room
// for the HUD.
func (c *Canvas) SetOffset(row int) {
	c.offsetRow = row
}

// Width in pixels.
func (c *Canvas) Width() int { return c.cols }

// Height in pixels.
func (c *Canvas) Height() int { return c.height }

// Clear resets all pixels.
func (c *Canvas) Clear() {
	clear(c.pixels)
}

// Set lights one pixel; out-of-range coordinates are ignored.
func (c *Canvas) Set(x, y int) {
	if x >= 0 && x < c.cols && y >= 0 && y < c.height {
		c.pixels[y*c.cols+x] = true
	}
}

// Lit reports whether a pixel is set.
func (c *Canvas) Lit(x, y int) bool {
	return x >= 0 && x < c.cols && y >= 0 && y < c.height && c.pixels[y*c.cols+x]
}

// SetPoint lights the pixel nearest to p.
func (c *Canvas) SetPoint(p Point) {
	c.Set(int(math.Round(p.X)), int(math.Round(p.Y)))
}

// DrawLine draws a line using Bresenham's algorithm.
func (c *Canvas) DrawLine(p1, p2 Point) {
	x1, y1 := int(math.Round(p1.X)), int(math.Round(p1.Y))
	x2, y2 := int(math.Round(p2.X)), int(math.Round(p2.Y))

	// Lines far off screen come from points just in front of the camera
	if !c.near(x1, y1) && !c.near(x2, y2) {
		return
	}

	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy

	for {
		c.Set(x1, y1)
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func (c *Canvas) near(x, y int) bool {
	return x > -c.cols && x < 2*c.cols && y > -c.height && y < 2*c.height
}

// DrawPolygon draws a closed outline through points.
func (c *Canvas) DrawPolygon(points []Point) {
	n := len(points)
	if n < 2 {
		return
	}
	for i := 0; i < n; i++ {
		c.DrawLine(points[i], points[(i+1)%n])
	}
}

// DrawCircle draws an outline of radius r pixels. Tiny circles become a dot.
func (c *Canvas) DrawCircle(center Point, r float64) {
	if r < 1 {
		c.SetPoint(center)
		return
	}
	segments := min(48, max(8, int(r*2)))
	prev := Point{X: center.X + r, Y: center.Y}
	for i := 1; i <= segments; i++ {
		a := 2 * math.Pi * float64(i) / float64(segments)
		next := Point{X: center.X + r*math.Cos(a), Y: center.Y + r*math.Sin(a)}
		c.DrawLine(prev, next)
		prev = next
	}
}

// FillCircle fills a disc of radius r pixels.
func (c *Canvas) FillCircle(center Point, r float64) {
	if r < 1 {
		c.SetPoint(center)
		return
	}
	y0 := int(math.Floor(center.Y - r))
	y1 := int(math.Ceil(center.Y + r))
	for y := max(y0, 0); y <= min(y1, c.height-1); y++ {
		dy := float64(y) - center.Y
		half := math.Sqrt(math.Max(0, r*r-dy*dy))
		for x := max(int(math.Ceil(center.X-half)), 0); x <= min(int(math.Floor(center.X+half)), c.cols-1); x++ {
			c.Set(x, y)
		}
	}
}

// Cell converts a pixel position to a 1-based terminal column and row.
func (c *Canvas) Cell(p Point) (col, row int) {
	return int(math.Round(p.X)) + 1, int(math.Round(p.Y))/2 + 1 + c.offsetRow
}

// Render writes the lit cells to w as cursor moves plus half blocks.
// Empty cells are skipped, so the screen must be cleared beforehand.
func (c *Canvas) Render(w io.Writer) {
	c.renderBuf.Reset()
	c.renderBuf.Grow(c.cols * c.rows * 4)

	for row := 0; row < c.rows; row++ {
		top := row * 2 * c.cols
		bottom := top + c.cols
		for col := 0; col < c.cols; col++ {
			var ch rune
			switch up, down := c.pixels[top+col], c.pixels[bottom+col]; {
			case up && down:
				ch = BlockFull
			case up:
				ch = BlockUpperHalf
			case down:
				ch = BlockLowerHalf
			default:
				continue
			}
			fmt.Fprintf(&c.renderBuf, "\033[%d;%dH%c", row+1+c.offsetRow, col+1, ch)
		}
	}
	_, _ = io.WriteString(w, c.renderBuf.String())
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
