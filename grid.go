package gridworld

import "gridworld/shared"

// Grid represents the 2D space where agents move. Cells and their adjacency
// are built once at construction and never mutated afterwards: an edge exists
// only towards a neighbour whose capacity is greater than zero, which walls
// zero-capacity cells off from every direction.
type Grid struct {
	width  int
	height int
	cells  [][]*Cell
}

// NewGrid builds a height x width grid. Capacities maps coordinates to
// per-cell capacity overrides; cells without an entry get defaultCapacity.
func NewGrid(height, width int, capacities map[shared.Position]int, defaultCapacity int) (*Grid, error) {
	if height <= 0 || width <= 0 {
		return nil, ErrCorruptTopology
	}
	g := &Grid{width: width, height: height}
	g.cells = make([][]*Cell, height)
	for y := 0; y < height; y++ {
		g.cells[y] = make([]*Cell, width)
		for x := 0; x < width; x++ {
			capacity := defaultCapacity
			if c, ok := capacities[shared.Position{X: x, Y: y}]; ok {
				capacity = c
			}
			g.cells[y][x] = newCell(g, x, y, capacity)
		}
	}
	if err := g.link(); err != nil {
		return nil, err
	}
	return g, nil
}

// link builds the adjacency record of every cell. Only neighbours with
// capacity > 0 are linked, so the resulting edges are symmetric wherever both
// endpoints are passable.
func (g *Grid) link() error {
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			cell := g.cells[y][x]
			if y > 0 && g.cells[y-1][x].capacity > 0 {
				if err := cell.AddNeighbour(North, g.cells[y-1][x]); err != nil {
					return err
				}
			}
			if x < g.width-1 && g.cells[y][x+1].capacity > 0 {
				if err := cell.AddNeighbour(East, g.cells[y][x+1]); err != nil {
					return err
				}
			}
			if y < g.height-1 && g.cells[y+1][x].capacity > 0 {
				if err := cell.AddNeighbour(South, g.cells[y+1][x]); err != nil {
					return err
				}
			}
			if x > 0 && g.cells[y][x-1].capacity > 0 {
				if err := cell.AddNeighbour(West, g.cells[y][x-1]); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Width returns the grid width.
func (g *Grid) Width() int { return g.width }

// Height returns the grid height.
func (g *Grid) Height() int { return g.height }

// Cell returns the cell at the specified position, or nil if it is out of
// bounds.
func (g *Grid) Cell(x, y int) *Cell {
	if x >= 0 && x < g.width && y >= 0 && y < g.height {
		return g.cells[y][x]
	}
	return nil
}
