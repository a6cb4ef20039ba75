package gridworld

import (
	"github.com/sirupsen/logrus"

	"gridworld/shared"
)

// Cell represents a single addressable location in the grid. A cell has a
// fixed capacity, a list of current occupants, and a neighbour record with
// exactly one slot per direction (a nil slot means no edge, not an error).
// A cell with capacity 0 is permanently impassable.
//
// Occupant membership is mutated only through the owning grid's world during
// action resolution; agents never touch it directly.
type Cell struct {
	owner      *Grid
	pos        shared.Position
	capacity   int
	occupants  []GridObject
	label      string
	neighbours []*Cell
}

func newCell(owner *Grid, x, y, capacity int) *Cell {
	return &Cell{
		owner:      owner,
		pos:        shared.Position{X: x, Y: y},
		capacity:   capacity,
		neighbours: make([]*Cell, numDirections),
	}
}

// Position returns the cell's grid coordinates.
func (c *Cell) Position() shared.Position { return c.pos }

// Capacity returns the maximum number of simultaneous occupants.
func (c *Cell) Capacity() int { return c.capacity }

// Occupants returns a copy of the current occupant list.
func (c *Cell) Occupants() []GridObject {
	out := make([]GridObject, len(c.occupants))
	copy(out, c.occupants)
	return out
}

// AtCapacity reports whether the cell cannot accept another occupant.
func (c *Cell) AtCapacity() bool {
	return len(c.occupants) >= c.capacity
}

// Label returns the cell's tag, or the empty string if none is set.
func (c *Cell) Label() string { return c.label }

// SetLabel tags the cell. A label can be a number, colour, or any other text
// used to identify the cell in some way.
func (c *Cell) SetLabel(label string) { c.label = label }

// ClearLabel removes the cell's tag.
func (c *Cell) ClearLabel() { c.label = "" }

// AddNeighbour links a neighbouring cell into the slot for the given
// direction. Called once per edge during grid construction.
func (c *Cell) AddNeighbour(d Direction, neighbour *Cell) error {
	if !d.Valid() {
		return ErrInvalidDirection
	}
	if len(c.neighbours) != numDirections {
		return ErrCorruptTopology
	}
	c.neighbours[d] = neighbour
	return nil
}

// Neighbour returns the cell linked in the given direction, or nil if there
// is no edge that way.
func (c *Cell) Neighbour(d Direction) *Cell {
	if !d.Valid() {
		return nil
	}
	return c.neighbours[d]
}

// CanGo reports whether a neighbour exists in the given direction and has
// room for another occupant.
func (c *Cell) CanGo(d Direction) bool {
	n := c.Neighbour(d)
	return n != nil && !n.AtCapacity()
}

// placeOccupant adds an occupant on behalf of the owning grid. It fails if
// the requester is not the owner or the cell is at capacity.
func (c *Cell) placeOccupant(requester *Grid, occupant GridObject) bool {
	if requester != c.owner || c.AtCapacity() {
		return false
	}
	c.occupants = append(c.occupants, occupant)
	return true
}

// removeOccupant removes an occupant on behalf of the owning grid, returning
// the removed object.
func (c *Cell) removeOccupant(requester *Grid, occupant GridObject) (GridObject, error) {
	if requester != c.owner {
		return nil, ErrNotFound
	}
	for i, o := range c.occupants {
		if o == occupant {
			c.occupants = append(c.occupants[:i], c.occupants[i+1:]...)
			return o, nil
		}
	}
	return nil, ErrNotFound
}

func (c *Cell) contains(occupant GridObject) bool {
	for _, o := range c.occupants {
		if o == occupant {
			return true
		}
	}
	return false
}

// Occupy is the entry point used during movement resolution. The occupant
// must arrive from an adjacent cell and the cell must have room; on success
// the cell returns itself as the now-occupied location, otherwise nil.
func (c *Cell) Occupy(occupant GridObject, origin shared.Position) *Cell {
	if abs(origin.X-c.pos.X) > 1 || abs(origin.Y-c.pos.Y) > 1 {
		return nil
	}
	if c.AtCapacity() {
		return nil
	}
	c.occupants = append(c.occupants, occupant)
	return c
}

// Vacate removes the occupant in the given direction and returns the cell
// occupied after the attempt. With direction Nowhere the occupant leaves the
// grid entirely and the result is nil. A blocked or full destination leaves
// the occupant here and returns the cell unchanged; the occupant is removed
// from this cell only once the destination has accepted it, so from the
// caller's point of view the move either fully succeeds or nothing changes.
func (c *Cell) Vacate(occupant GridObject, d Direction) *Cell {
	if !c.contains(occupant) {
		logrus.Errorf("cell (%d,%d): no such occupant %s", c.pos.X, c.pos.Y, occupant.ID())
		return nil
	}
	if d == Nowhere {
		c.occupants = removeObject(c.occupants, occupant)
		return nil
	}
	dest := c.Neighbour(d)
	if dest == nil || dest.AtCapacity() {
		return c
	}
	occupied := dest.Occupy(occupant, c.pos)
	if occupied == nil {
		return c
	}
	c.occupants = removeObject(c.occupants, occupant)
	return occupied
}

func removeObject(list []GridObject, obj GridObject) []GridObject {
	for i, o := range list {
		if o == obj {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
