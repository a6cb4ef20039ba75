package gridworld

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridworld/shared"
)

func mustGrid(t *testing.T, height, width int, capacities map[shared.Position]int) *Grid {
	t.Helper()
	g, err := NewGrid(height, width, capacities, 1)
	require.NoError(t, err)
	return g
}

func TestCellNeighbourRecord(t *testing.T) {
	g := mustGrid(t, 3, 3, nil)

	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			cell := g.Cell(x, y)
			require.Len(t, cell.neighbours, numDirections, "cell (%d,%d)", x, y)
		}
	}

	// Centre cell has all four edges; the corner has exactly two.
	centre := g.Cell(1, 1)
	for _, d := range []Direction{North, East, South, West} {
		assert.NotNil(t, centre.Neighbour(d))
	}
	corner := g.Cell(0, 0)
	assert.Nil(t, corner.Neighbour(North))
	assert.Nil(t, corner.Neighbour(West))
	assert.NotNil(t, corner.Neighbour(East))
	assert.NotNil(t, corner.Neighbour(South))
}

func TestAddNeighbourErrors(t *testing.T) {
	g := mustGrid(t, 2, 2, nil)
	cell := g.Cell(0, 0)

	assert.ErrorIs(t, cell.AddNeighbour(Direction(4), g.Cell(1, 0)), ErrInvalidDirection)
	assert.ErrorIs(t, cell.AddNeighbour(Nowhere, g.Cell(1, 0)), ErrInvalidDirection)

	corrupt := &Cell{} // never went through construction
	assert.ErrorIs(t, corrupt.AddNeighbour(North, cell), ErrCorruptTopology)
}

func TestPlaceAndRemoveOccupant(t *testing.T) {
	g := mustGrid(t, 2, 2, nil)
	cell := g.Cell(0, 0)
	obj := NewObject("thing")

	require.True(t, cell.placeOccupant(g, obj))
	assert.True(t, cell.AtCapacity())

	// A second occupant exceeds capacity 1.
	assert.False(t, cell.placeOccupant(g, NewObject("thing")))

	// Only the owning grid may place or remove.
	other := mustGrid(t, 2, 2, nil)
	assert.False(t, other.Cell(0, 0).placeOccupant(g, obj))
	_, err := cell.removeOccupant(other, obj)
	assert.ErrorIs(t, err, ErrNotFound)

	removed, err := cell.removeOccupant(g, obj)
	require.NoError(t, err)
	assert.Same(t, obj, removed.(*Object))
	assert.Empty(t, cell.Occupants())

	_, err = cell.removeOccupant(g, obj)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOccupyRequiresAdjacency(t *testing.T) {
	g := mustGrid(t, 5, 5, nil)
	obj := NewObject("thing")

	// Chebyshev distance 2 from the target.
	assert.Nil(t, g.Cell(2, 2).Occupy(obj, shared.Position{X: 0, Y: 2}))

	occupied := g.Cell(2, 2).Occupy(obj, shared.Position{X: 1, Y: 2})
	require.NotNil(t, occupied)
	assert.Equal(t, shared.Position{X: 2, Y: 2}, occupied.Position())

	// Full cell refuses the next arrival even from an adjacent origin.
	assert.Nil(t, g.Cell(2, 2).Occupy(NewObject("thing"), shared.Position{X: 2, Y: 1}))
}

func TestVacateAtomicity(t *testing.T) {
	g := mustGrid(t, 3, 3, nil)
	obj := NewObject("thing")
	from := g.Cell(1, 1)
	require.True(t, from.placeOccupant(g, obj))

	// Successful move: the occupant ends up in exactly the destination.
	dest := from.Vacate(obj, East)
	require.NotNil(t, dest)
	assert.Equal(t, shared.Position{X: 2, Y: 1}, dest.Position())
	assert.False(t, from.contains(obj))
	assert.True(t, dest.contains(obj))

	// Blocked destination: nothing changes.
	blocker := NewObject("thing")
	require.True(t, g.Cell(2, 0).placeOccupant(g, blocker))
	stay := dest.Vacate(obj, North)
	assert.Same(t, dest, stay)
	assert.True(t, dest.contains(obj))
	assert.False(t, g.Cell(2, 0).contains(obj))

	// No edge that way (east off the grid): nothing changes.
	stay = dest.Vacate(obj, East)
	assert.Same(t, dest, stay)
	assert.True(t, dest.contains(obj))

	// Vacate with no direction removes the occupant from the grid entirely.
	gone := dest.Vacate(obj, Nowhere)
	assert.Nil(t, gone)
	assert.False(t, dest.contains(obj))
}

func TestVacateUnknownOccupant(t *testing.T) {
	g := mustGrid(t, 2, 2, nil)
	assert.Nil(t, g.Cell(0, 0).Vacate(NewObject("thing"), East))
}

func TestCanGo(t *testing.T) {
	g := mustGrid(t, 3, 3, map[shared.Position]int{{X: 1, Y: 0}: 0})
	cell := g.Cell(1, 1)

	assert.False(t, cell.CanGo(North), "walled neighbour")
	assert.True(t, cell.CanGo(East))

	require.True(t, g.Cell(2, 1).placeOccupant(g, NewObject("thing")))
	assert.False(t, cell.CanGo(East), "full neighbour")
	assert.False(t, cell.CanGo(Nowhere))
}

func TestCellLabels(t *testing.T) {
	g := mustGrid(t, 2, 2, nil)
	cell := g.Cell(1, 1)

	assert.Empty(t, cell.Label())
	cell.SetLabel("exit")
	assert.Equal(t, "exit", cell.Label())
	cell.ClearLabel()
	assert.Empty(t, cell.Label())
}
