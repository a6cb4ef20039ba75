package gridworld

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"gridworld/shared"
)

// Agent is an autonomous occupant of a world. Its policy maps the state it
// can see (the world it believes it is in, its believed position, and the
// occupants of its current cell) to exactly one action per tick. An agent
// built with exploration enabled runs the frontier-driven traversal until its
// map is complete and pruned, then falls back to the plain policy.
type Agent struct {
	Object
	owned    []GridObject
	rng      *rand.Rand
	explorer *explorer
	fallback Policy
	current  Action
}

// AgentOption configures an agent at construction time.
type AgentOption func(*Agent)

// WithExploration enables the exploration/mapping behaviour.
func WithExploration() AgentOption {
	return func(a *Agent) { a.explorer = newExplorer() }
}

// WithPolicy installs the fallback policy used when the agent has nothing
// left to explore.
func WithPolicy(p Policy) AgentOption {
	return func(a *Agent) { a.fallback = p }
}

// WithAgentRand sets the agent's random source, for reproducible runs.
func WithAgentRand(rng *rand.Rand) AgentOption {
	return func(a *Agent) { a.rng = rng }
}

// NewAgent creates an agent with the given name and a fresh identity.
func NewAgent(name string, opts ...AgentOption) *Agent {
	a := &Agent{
		Object:  *NewObject(name),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		current: Action{kind: ActionNone, direction: Nowhere},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Own records possession of an object.
func (a *Agent) Own(obj GridObject) {
	a.owned = append(a.owned, obj)
}

// Owned returns a copy of the agent's possession list.
func (a *Agent) Owned() []GridObject {
	out := make([]GridObject, len(a.owned))
	copy(out, a.owned)
	return out
}

// ChooseAction implements the agent's policy. An agent asked to act in a
// world it is not embedded in refuses with a no-action; this also prevents it
// from accidentally disturbing a foreign world.
func (a *Agent) ChooseAction(w *World, x, y int, occupants []GridObject) Action {
	if w != a.World() {
		logrus.Debugf("agent %s asked to act in a foreign world", a.Name())
		a.current = NoAction(a)
		return a.current
	}
	if a.explorer != nil && !a.explorer.done() {
		cell := w.Location(x, y)
		if cell == nil {
			a.current = NoAction(a)
			return a.current
		}
		if d, move := a.explorer.next(cell); move {
			a.current = NewAction(a, ActionMove, nil, d)
		} else {
			a.current = NoAction(a)
		}
		return a.current
	}
	d := a.fallbackDirection(x, y, occupants)
	if !d.Valid() {
		a.current = NoAction(a)
		return a.current
	}
	a.current = NewAction(a, ActionMove, nil, d)
	return a.current
}

// fallbackDirection consults the installed policy, defaulting to a uniformly
// random direction.
func (a *Agent) fallbackDirection(x, y int, occupants []GridObject) Direction {
	if a.fallback != nil {
		return a.fallback.ChooseDirection(x, y, occupants)
	}
	return Direction(a.rng.Intn(numDirections))
}

// ActionResult gives the agent its observation: what happened when it took
// its action. A move expects the resulting cell, whether the move succeeded
// (the new cell) or was rejected (the unchanged one); the agent updates its
// believed position from the observation, never from the proposal. A result
// of the wrong shape is a contract violation and is returned as an error.
func (a *Agent) ActionResult(result any) error {
	if a.current.Kind() == ActionNone {
		return nil
	}
	if a.current.Kind() == ActionMove {
		cell, ok := result.(*Cell)
		if !ok || cell == nil {
			return fmt.Errorf("%w: expected a cell for a move action, got %T", ErrUnexpectedObservation, result)
		}
		a.setPosition(cell.Position())
		if a.explorer != nil {
			a.explorer.observe(cell)
		}
	}
	return nil
}

// ExplorationDone reports whether the agent has finished exploring and
// pruned its map. Agents built without exploration report true.
func (a *Agent) ExplorationDone() bool {
	return a.explorer == nil || a.explorer.done()
}

// ExplorationMap returns a deep copy of the agent's exploration map: for each
// visited cell, the reachable neighbours and the traversal distance recorded
// when the edge was discovered (summed across pruned corridors).
func (a *Agent) ExplorationMap() map[shared.Position]map[shared.Position]int {
	if a.explorer == nil {
		return nil
	}
	return a.explorer.mapCopy()
}

// Frontier returns the visited cells that still have at least one
// unexplored, reachable neighbour.
func (a *Agent) Frontier() []shared.Position {
	if a.explorer == nil {
		return nil
	}
	out := make([]shared.Position, 0, len(a.explorer.frontier))
	for pos := range a.explorer.frontier {
		out = append(out, pos)
	}
	return out
}
