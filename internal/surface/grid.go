package surface

import (
	"math"

	"github.com/leandrodaf/gazeuke/sdk/contracts"
)

// GridLayout describes a grid of square cells. Each row is a string of the
// instrument and each column a fret.
type GridLayout struct {
	Rows     int     `yaml:"rows"`
	Cols     int     `yaml:"cols"`
	CellSize float64 `yaml:"cell_size"` // Side of a cell, in pixels.
	OffsetX  float64 `yaml:"offset_x"`  // Left edge of the grid.
	OffsetY  float64 `yaml:"offset_y"`  // Top edge of the grid.
}

// DefaultGridLayout spreads 4 strings by 8 frets across width, leaving a 20 px top margin.
func DefaultGridLayout(width float64) GridLayout {
	return GridLayout{Rows: 4, Cols: 8, CellSize: width / 8, OffsetY: 20}
}

// CenteredGridLayout places a 4 by 8 grid with fixed cells in the middle of the surface.
func CenteredGridLayout(width, height, cell float64) GridLayout {
	l := GridLayout{Rows: 4, Cols: 8, CellSize: cell}
	l.OffsetX = math.Floor((width - float64(l.Cols)*cell) / 2)
	l.OffsetY = math.Floor((height - float64(l.Rows)*cell) / 2)
	return l
}

// Grid is a surface of discrete note cells.
type Grid struct {
	layout GridLayout
	tuning []contracts.NoteID
}

// NewGrid creates a grid. Row r plays tuning[r] plus the column index.
// A nil tuning means UkuleleTuning.
func NewGrid(layout GridLayout, tuning []contracts.NoteID) *Grid {
	if tuning == nil {
		tuning = UkuleleTuning
	}
	return &Grid{layout: layout, tuning: tuning}
}

func (g *Grid) Name() string { return "grid" }

// Layout returns the grid geometry.
func (g *Grid) Layout() GridLayout { return g.layout }

// ResolveSelection returns the cell containing p.
func (g *Grid) ResolveSelection(p contracts.Point) (contracts.Selection, bool) {
	if g.layout.CellSize <= 0 {
		return contracts.Selection{}, false
	}
	col := int(math.Floor((p.X - g.layout.OffsetX) / g.layout.CellSize))
	row := int(math.Floor((p.Y - g.layout.OffsetY) / g.layout.CellSize))
	sel := contracts.Selection{Row: row, Col: col}
	if !g.contains(sel) {
		return contracts.Selection{}, false
	}
	return sel, true
}

// NoteFor returns the note of a cell.
func (g *Grid) NoteFor(sel contracts.Selection) (contracts.NoteID, bool) {
	if !g.contains(sel) || sel.Row >= len(g.tuning) {
		return 0, false
	}
	return stringNote(g.tuning[sel.Row], sel.Col)
}

// CellCenter returns the pixel center of a cell, used to aim the cursor.
func (g *Grid) CellCenter(sel contracts.Selection) contracts.Point {
	return contracts.Point{
		X: g.layout.OffsetX + (float64(sel.Col)+0.5)*g.layout.CellSize,
		Y: g.layout.OffsetY + (float64(sel.Row)+0.5)*g.layout.CellSize,
	}
}

func (g *Grid) contains(sel contracts.Selection) bool {
	return sel.Row >= 0 && sel.Row < g.layout.Rows && sel.Col >= 0 && sel.Col < g.layout.Cols
}
