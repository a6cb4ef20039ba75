package gridworld

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"gridworld/shared"
)

// Actor is the interface every registered agent must implement. ChooseAction
// and ActionResult are synchronous, non-blocking calls that complete within
// the tick.
type Actor interface {
	GridObject
	Embed(w *World) error
	Place(w *World, x, y int) error
	ChooseAction(w *World, x, y int, occupants []GridObject) Action
	ActionResult(result any) error
}

// rosterEntry tracks an agent's actual position, separate from the agent's
// own believed position. This keeps room for probabilistic motion models.
type rosterEntry struct {
	pos        shared.Position
	actor      Actor
	lastAction string
}

// World owns the grid, the registered-agent roster, and the tick counter, and
// orchestrates the per-tick action-resolution protocol. The tick loop is
// strictly sequential: agents act one at a time in registration order, and no
// agent observes another agent's same-tick move before it is fully applied.
type World struct {
	grid            *Grid
	roster          []*rosterEntry
	byID            map[string]*rosterEntry
	tick            int
	maxTicks        int
	tickInterval    time.Duration
	rng             *rand.Rand
	capacities      map[shared.Position]int
	defaultCapacity int
	initialCounts   map[shared.Position]int

	observer func(shared.Snapshot)
	snapshot atomic.Pointer[shared.Snapshot]
}

// Option configures a world at construction time.
type Option func(*World)

// WithMaxTicks sets the maximum tick count; 0 means unbounded.
func WithMaxTicks(n int) Option {
	return func(w *World) { w.maxTicks = n }
}

// WithTickInterval sets the real-time pacing between ticks in Run.
func WithTickInterval(d time.Duration) Option {
	return func(w *World) { w.tickInterval = d }
}

// WithCapacities sets per-cell capacity overrides keyed by coordinate. Cells
// without an override default to capacity 1; a capacity of 0 walls the cell
// off entirely.
func WithCapacities(capacities map[shared.Position]int) Option {
	return func(w *World) { w.capacities = capacities }
}

// WithInitialOccupants pre-places the given number of passive objects on each
// listed coordinate.
func WithInitialOccupants(counts map[shared.Position]int) Option {
	return func(w *World) { w.initialCounts = counts }
}

// WithRand sets the world's random source, for reproducible runs.
func WithRand(rng *rand.Rand) Option {
	return func(w *World) { w.rng = rng }
}

// WithObserver registers a callback invoked with the snapshot published at
// the end of every tick. The callback runs inside the tick loop and must not
// block.
func WithObserver(fn func(shared.Snapshot)) Option {
	return func(w *World) { w.observer = fn }
}

// NewWorld creates a height x width world. Topology errors are fatal and
// abort construction.
func NewWorld(height, width int, opts ...Option) (*World, error) {
	w := &World{
		byID:            make(map[string]*rosterEntry),
		rng:             rand.New(rand.NewSource(time.Now().UnixNano())),
		defaultCapacity: 1,
	}
	for _, opt := range opts {
		opt(w)
	}
	grid, err := NewGrid(height, width, w.capacities, w.defaultCapacity)
	if err != nil {
		return nil, fmt.Errorf("building %dx%d grid: %w", height, width, err)
	}
	w.grid = grid
	for pos, count := range w.initialCounts {
		cell := grid.Cell(pos.X, pos.Y)
		if cell == nil {
			return nil, fmt.Errorf("initial occupant at (%d,%d): %w", pos.X, pos.Y, ErrNotFound)
		}
		for i := 0; i < count; i++ {
			obj := NewObject("object")
			_ = obj.Place(w, pos.X, pos.Y)
			if !cell.placeOccupant(grid, obj) {
				return nil, fmt.Errorf("initial occupant at (%d,%d): %w", pos.X, pos.Y, ErrWorldFull)
			}
		}
	}
	logrus.Infof("world initialized with %dx%d grid", width, height)
	w.publish()
	return w, nil
}

// Boundary returns the world's width and height.
func (w *World) Boundary() (width, height int) {
	return w.grid.Width(), w.grid.Height()
}

// Location returns the cell at (x, y), for observations. Nil if out of
// bounds.
func (w *World) Location(x, y int) *Cell {
	return w.grid.Cell(x, y)
}

// Time returns the current tick count.
func (w *World) Time() int { return w.tick }

// MaxTicks returns the configured maximum tick count (0 = unbounded).
func (w *World) MaxTicks() int { return w.maxTicks }

// Reset zeroes the tick counter.
func (w *World) Reset() { w.tick = 0 }

// PlaceOccupant puts a passive object on the cell at (x, y).
func (w *World) PlaceOccupant(obj GridObject, x, y int) bool {
	cell := w.grid.Cell(x, y)
	if cell == nil {
		return false
	}
	return cell.placeOccupant(w.grid, obj)
}

// RemoveOccupant takes a passive object off the cell at (x, y).
func (w *World) RemoveOccupant(obj GridObject, x, y int) (GridObject, error) {
	cell := w.grid.Cell(x, y)
	if cell == nil {
		return nil, ErrNotFound
	}
	return cell.removeOccupant(w.grid, obj)
}

// AddAgent embeds the agent in this world, places it on the cell at (x, y),
// and appends it to the roster. Registration order is the order agents act in
// every tick.
func (w *World) AddAgent(a Actor, x, y int) error {
	cell := w.grid.Cell(x, y)
	if cell == nil {
		return fmt.Errorf("agent start (%d,%d): %w", x, y, ErrNotFound)
	}
	if err := a.Place(w, x, y); err != nil {
		return err
	}
	if !cell.placeOccupant(w.grid, a) {
		return fmt.Errorf("agent start (%d,%d): %w", x, y, ErrWorldFull)
	}
	entry := &rosterEntry{pos: shared.Position{X: x, Y: y}, actor: a, lastAction: "--"}
	w.roster = append(w.roster, entry)
	w.byID[a.ID()] = entry
	logrus.Infof("agent %s registered at (%d, %d)", a.Name(), x, y)
	return nil
}

// RemoveAgent takes the agent off the grid and out of the roster.
func (w *World) RemoveAgent(a Actor) error {
	entry, ok := w.byID[a.ID()]
	if !ok {
		return ErrNotFound
	}
	if cell := w.grid.Cell(entry.pos.X, entry.pos.Y); cell != nil {
		cell.Vacate(a, Nowhere)
	}
	delete(w.byID, a.ID())
	for i, e := range w.roster {
		if e == entry {
			w.roster = append(w.roster[:i], w.roster[i+1:]...)
			break
		}
	}
	logrus.Infof("agent %s unregistered", a.Name())
	return nil
}

// RandomFreeCell picks a cell with room for another occupant, for placements
// with no configured start.
func (w *World) RandomFreeCell() (shared.Position, error) {
	for attempts := 0; attempts < 100; attempts++ {
		x := w.rng.Intn(w.grid.Width())
		y := w.rng.Intn(w.grid.Height())
		cell := w.grid.Cell(x, y)
		if cell != nil && !cell.AtCapacity() {
			return cell.Position(), nil
		}
	}
	return shared.Position{}, ErrWorldFull
}

// Tick advances the simulation by one step. It returns false without acting
// when the configured maximum tick count has been reached. Each registered
// agent, in registration order, is asked for an action given its current
// cell's occupants; the action is validated and applied, and the resulting
// observation is fed back to the agent. A malformed observation contract
// halts the offending agent and is returned as an error once the remaining
// agents have acted.
func (w *World) Tick() (bool, error) {
	if w.maxTicks > 0 && w.tick >= w.maxTicks {
		return false, nil
	}
	var firstErr error
	entries := make([]*rosterEntry, len(w.roster))
	copy(entries, w.roster)
	for _, entry := range entries {
		if _, ok := w.byID[entry.actor.ID()]; !ok {
			continue // halted earlier this tick
		}
		cell := w.grid.Cell(entry.pos.X, entry.pos.Y)
		action := entry.actor.ChooseAction(w, entry.pos.X, entry.pos.Y, cell.Occupants())
		entry.lastAction = action.Display()
		result := w.applyAction(entry, action)
		if err := entry.actor.ActionResult(result); err != nil {
			logrus.Errorf("agent %s halted: %v", entry.actor.Name(), err)
			_ = w.RemoveAgent(entry.actor)
			if firstErr == nil {
				firstErr = fmt.Errorf("agent %s: %w", entry.actor.Name(), err)
			}
		}
	}
	w.tick++
	w.publish()
	return true, firstErr
}

// applyAction resolves a single agent's proposal against the grid and returns
// the observation to feed back. A rejected move is a normal outcome: the
// observation is the agent's unchanged cell, never an error.
func (w *World) applyAction(entry *rosterEntry, action Action) any {
	if action.Agent() != nil && Actor(action.Agent()) != entry.actor {
		logrus.Debugf("agent %s proposed an action for a different agent, ignoring", entry.actor.Name())
		return nil
	}
	switch action.Kind() {
	case ActionMove:
		current := w.grid.Cell(entry.pos.X, entry.pos.Y)
		dest := action.Direction().Offset(entry.pos)
		if w.grid.Cell(dest.X, dest.Y) == nil {
			logrus.Debugf("agent %s move %s rejected: (%d,%d) out of bounds",
				entry.actor.Name(), action.Direction(), dest.X, dest.Y)
			return current
		}
		occupied := current.Vacate(entry.actor, action.Direction())
		if occupied == nil {
			logrus.Errorf("agent %s missing from cell (%d,%d)", entry.actor.Name(), entry.pos.X, entry.pos.Y)
			return current
		}
		entry.pos = occupied.Position()
		logrus.Debugf("agent %s moved %s to (%d,%d)",
			entry.actor.Name(), action.Direction(), entry.pos.X, entry.pos.Y)
		return occupied
	case ActionNone:
		return nil
	}
	return nil
}

// Run repeats the tick cycle. With ticks == 0 it runs until the max-tick
// guard halts the world. Cancellation is cooperative: the context is checked
// between ticks, never mid-tick.
func (w *World) Run(ctx context.Context, ticks int) error {
	for count := 0; ticks == 0 || count < ticks; count++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		ok, err := w.Tick()
		if err != nil {
			return err
		}
		if !ok {
			logrus.Infof("world halted at tick %d", w.tick)
			return nil
		}
		if w.tickInterval > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(w.tickInterval):
			}
		}
	}
	return nil
}

// publish stores the end-of-tick snapshot for concurrent readers and notifies
// the observer, if any.
func (w *World) publish() {
	snap := shared.Snapshot{
		Tick:      w.tick,
		Timestamp: time.Now(),
		Width:     w.grid.Width(),
		Height:    w.grid.Height(),
		Agents:    make([]shared.AgentState, 0, len(w.roster)),
	}
	for _, entry := range w.roster {
		snap.Agents = append(snap.Agents, shared.AgentState{
			ID:         entry.actor.ID(),
			Name:       entry.actor.Name(),
			Position:   entry.pos,
			LastAction: entry.lastAction,
		})
	}
	w.snapshot.Store(&snap)
	if w.observer != nil {
		w.observer(snap)
	}
}

// Snapshot returns the most recently published world snapshot. It is safe to
// call from a monitoring goroutine concurrently with the tick loop; the
// result may trail the live state by up to one tick.
func (w *World) Snapshot() shared.Snapshot {
	if snap := w.snapshot.Load(); snap != nil {
		return *snap
	}
	return shared.Snapshot{}
}
