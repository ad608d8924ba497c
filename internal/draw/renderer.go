package draw

import (
	"io"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tomz197/starhero/internal/sim"
	"github.com/tomz197/starhero/internal/vehicle"
)

// blinkRate is how often the ship flickers while invulnerable, in frames.
const blinkRate = 6

// label is text placed over the canvas after it is rendered.
type label struct {
	col, row int
	text     string
}

// Renderer draws snapshots as a chase view with a HUD on top.
type Renderer struct {
	out    *ChunkWriter
	canvas *Canvas
	cols   int
	rows   int
	labels []label
	ship   [4]Point
}

// NewRenderer renders into a terminal of cols x rows cells.
func NewRenderer(w io.Writer, cols, rows int) *Renderer {
	r := &Renderer{out: NewChunkWriter(w), canvas: NewCanvas(0, 0)}
	r.canvas.SetOffset(hudRows)
	r.Resize(cols, rows)
	return r
}

// Resize adapts to a new terminal size.
func (r *Renderer) Resize(cols, rows int) {
	r.cols, r.rows = cols, rows
	r.canvas.Resize(cols, rows-hudRows)
}

// Draw renders one snapshot and flushes it.
func (r *Renderer) Draw(s *sim.Snapshot) error {
	r.out.WriteString(clearScreen)
	r.canvas.Clear()
	r.labels = r.labels[:0]

	cam := ChaseCamera(s.Vehicle, s.Pullback, r.canvas.Width(), r.canvas.Height())
	for _, e := range s.Entities {
		r.drawEntity(cam, e)
	}
	for _, g := range s.Ghosts {
		r.drawGhost(cam, g.Position, g.Name, g.Downed)
	}
	if !s.Vehicle.Downed && (s.Vehicle.Invulnerable <= 0 || (s.Frame/blinkRate)%2 == 0) {
		r.drawShip(cam, s.Vehicle)
	}

	r.canvas.Render(r.out)
	for _, l := range r.labels {
		r.out.WriteAt(l.col, l.row, r.cols, l.text)
	}

	for i, line := range HUD(s) {
		r.out.WriteAt(1, i+1, r.cols, line)
	}
	for i, n := range s.Notices {
		text := n.Title
		if n.Text != "" {
			text += ": " + n.Text
		}
		r.out.WriteAt(max(1, (r.cols-len(text))/2), hudRows+2+i, r.cols, text)
	}
	return r.out.Flush()
}

func (r *Renderer) drawEntity(cam Camera, e sim.EntityView) {
	p, depth, ok := cam.Project(e.Position)
	if !ok {
		return
	}
	radius := cam.Scale(e.Radius, depth)
	switch e.Kind {
	case sim.EntityRock:
		r.canvas.DrawCircle(p, radius)
	case sim.EntityHazard:
		r.canvas.FillCircle(p, radius)
	case sim.EntityBoss:
		r.canvas.FillCircle(p, radius*0.6)
		r.canvas.DrawCircle(p, radius)
	case sim.EntityPickup:
		d := max(radius, 1.5)
		r.canvas.DrawPolygon([]Point{{p.X, p.Y - d}, {p.X + d, p.Y}, {p.X, p.Y + d}, {p.X - d, p.Y}})
	case sim.EntityExplosion:
		r.canvas.DrawCircle(p, radius*e.Fraction)
	case sim.EntityProjectile, sim.EntitySpark:
		r.canvas.SetPoint(p)
	}
}

func (r *Renderer) drawGhost(cam Camera, at r3.Vec, name string, downed bool) {
	p, depth, ok := cam.Project(at)
	if !ok {
		return
	}
	size := max(cam.Scale(1.5, depth), 1.5)
	if !downed {
		r.canvas.DrawPolygon([]Point{{p.X, p.Y - size}, {p.X + size, p.Y + size}, {p.X - size, p.Y + size}})
	}
	col, row := r.canvas.Cell(p)
	r.labels = append(r.labels, label{col: col - len(name)/2, row: row - 1, text: name})
}

// Ship outline in body space: nose, right wing, tail fin, left wing.
var shipOutline = [4]r3.Vec{
	{Z: -2},
	{X: 1.5, Z: 1},
	{Y: 0.6, Z: 0.8},
	{X: -1.5, Z: 1},
}

func (r *Renderer) drawShip(cam Camera, v vehicle.Vehicle) {
	for i, local := range shipOutline {
		p, _, ok := cam.Project(r3.Add(v.Position, v.Rotate(local)))
		if !ok {
			return
		}
		r.ship[i] = p
	}
	r.canvas.DrawPolygon(r.ship[:])
}
