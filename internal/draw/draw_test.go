package draw

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tomz197/starhero/internal/ability"
	"github.com/tomz197/starhero/internal/config"
	"github.com/tomz197/starhero/internal/ghost"
	"github.com/tomz197/starhero/internal/hazard"
	"github.com/tomz197/starhero/internal/sim"
	"github.com/tomz197/starhero/internal/vehicle"
)

func ship() vehicle.Vehicle {
	return vehicle.New(config.Default().Vehicle, vehicle.DefaultProfile())
}

func TestCanvas_HalfBlocks(t *testing.T) {
	c := NewCanvas(4, 2)
	c.Set(0, 0)
	c.Set(1, 1)
	c.Set(2, 0)
	c.Set(2, 1)
	c.Set(9, 9) // ignored

	var buf bytes.Buffer
	c.Render(&buf)
	out := buf.String()
	assert.Contains(t, out, "\033[1;1H▀")
	assert.Contains(t, out, "\033[1;2H▄")
	assert.Contains(t, out, "\033[1;3H█")
	assert.NotContains(t, out, "\033[1;4H")
}

func TestCanvas_OffsetShiftsRows(t *testing.T) {
	c := NewCanvas(2, 1)
	c.SetOffset(3)
	c.Set(0, 0)
	var buf bytes.Buffer
	c.Render(&buf)
	assert.Equal(t, "\033[4;1H▀", buf.String())

	col, row := c.Cell(Point{X: 0, Y: 1})
	assert.Equal(t, 1, col)
	assert.Equal(t, 4, row)
}

func TestCanvas_DrawLine(t *testing.T) {
	c := NewCanvas(10, 5)
	c.DrawLine(Point{X: 1, Y: 2}, Point{X: 8, Y: 2})
	for x := 1; x <= 8; x++ {
		assert.True(t, c.Lit(x, 2), "x=%d", x)
	}
	assert.False(t, c.Lit(0, 2))
	assert.False(t, c.Lit(9, 2))

	c.Clear()
	c.DrawLine(Point{X: 0, Y: 0}, Point{X: 4, Y: 4})
	for i := 0; i <= 4; i++ {
		assert.True(t, c.Lit(i, i))
	}
}

func TestCanvas_Circles(t *testing.T) {
	c := NewCanvas(40, 20)
	c.FillCircle(Point{X: 20, Y: 20}, 5)
	assert.True(t, c.Lit(20, 20))
	assert.True(t, c.Lit(24, 20))
	assert.False(t, c.Lit(26, 20))

	c.Clear()
	c.DrawCircle(Point{X: 20, Y: 20}, 8)
	assert.True(t, c.Lit(28, 20))
	assert.False(t, c.Lit(20, 20), "outline only")
}

func TestChaseCamera_Projection(t *testing.T) {
	v := ship()
	cam := ChaseCamera(v, 0, 100, 60)

	axis := r3.Add(r3.Add(v.Position, r3.Scale(chaseHeight, v.Up())), r3.Scale(50, v.Forward()))
	p, depth, ok := cam.Project(axis)
	require.True(t, ok)
	assert.InDelta(t, 50, p.X, 1e-9)
	assert.InDelta(t, 30, p.Y, 1e-9)
	assert.InDelta(t, 50+chaseDistance, depth, 1e-9)

	p, _, ok = cam.Project(v.Position)
	require.True(t, ok)
	assert.Greater(t, p.Y, 30.0, "ship sits below the horizon")

	_, _, ok = cam.Project(r3.Sub(v.Position, r3.Scale(50, v.Forward())))
	assert.False(t, ok, "behind the camera")

	pulled := ChaseCamera(v, 8, 100, 60)
	_, far, _ := pulled.Project(v.Position)
	assert.InDelta(t, chaseDistance+8, far, 1e-9)
}

func TestChaseCamera_IgnoresBank(t *testing.T) {
	v := ship()
	level := ChaseCamera(v, 0, 100, 60)
	v.Bank = 1.2
	assert.Equal(t, level, ChaseCamera(v, 0, 100, 60))
}

func TestBar(t *testing.T) {
	assert.Equal(t, "[#####-----]", Bar(0.5, 10))
	assert.Equal(t, "[----]", Bar(-1, 4))
	assert.Equal(t, "[####]", Bar(3, 4))
}

func TestHUD(t *testing.T) {
	s := &sim.Snapshot{Vehicle: ship(), Score: 120, HighScore: 900, Combo: 3, BPM: 128}
	s.Abilities[ability.KindNova] = ability.Status{Phase: ability.Charging, Fraction: 0.5}
	s.NextEpisode = 14

	lines := HUD(s)
	assert.Contains(t, lines[0], "HULL [##########] 100")
	assert.Contains(t, lines[0], "SCORE 120")
	assert.Contains(t, lines[0], "HI 900")
	assert.Contains(t, lines[1], "ROLL ready")
	assert.Contains(t, lines[1], "NOVA charging  50%")
	assert.Contains(t, lines[1], "COMBO x3")
	assert.True(t, strings.HasPrefix(lines[2], "next storm in 14s"))
	assert.NotContains(t, lines[2], "PROXIMITY")

	s.RockProximity = 0.8
	assert.Contains(t, HUD(s)[2], "PROXIMITY")

	s.Episode = hazard.Episode{Active: true, Number: 2, Remaining: 9}
	assert.True(t, strings.HasPrefix(HUD(s)[2], "METEOR STORM 2  9s left"))

	s.Vehicle.Downed = true
	s.RespawnIn = 2.5
	assert.True(t, strings.HasPrefix(HUD(s)[2], "DOWNED  respawn in 2.5s"))
}

func TestRenderer_Draw(t *testing.T) {
	v := ship()
	var buf bytes.Buffer
	r := NewRenderer(&buf, 80, 30)

	s := &sim.Snapshot{
		Vehicle: v,
		Entities: []sim.EntityView{
			{Kind: sim.EntityRock, Position: r3.Add(v.Position, r3.Scale(40, v.Forward())), Radius: 3},
		},
		Ghosts:  []ghost.Pose{{ID: "w", Name: "wing", Position: r3.Add(v.Position, r3.Scale(30, v.Forward()))}},
		Notices: []sim.Notice{{Title: "First Blood", Text: "Break your first rock", Remaining: 2}},
	}
	require.NoError(t, r.Draw(s))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, clearScreen))
	assert.Contains(t, out, "HULL")
	assert.Contains(t, out, "wing")
	assert.Contains(t, out, "First Blood: Break your first rock")
	assert.True(t, strings.ContainsAny(out, "▀▄█"), "scene pixels rendered")
}

func TestChunkWriter_FlushesEverything(t *testing.T) {
	var buf bytes.Buffer
	cw := NewChunkWriter(&buf)
	payload := strings.Repeat("x", 3*maxChunkSize+17)
	cw.WriteString(payload)
	cw.WriteAt(5, 2, 8, "clipped-text")

	require.NoError(t, cw.Flush())
	assert.Equal(t, payload+"\033[2;5Hclip", buf.String())
	assert.Zero(t, cw.Len())
}
