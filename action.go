package gridworld

import "gridworld/shared"

// Direction indexes the four neighbour slots of a cell.
type Direction int

const (
	Nowhere Direction = iota - 1
	North             // y-1
	East              // x+1
	South             // y+1
	West              // x-1
)

// numDirections is the size of every neighbour record.
const numDirections = 4

// Offset returns pos shifted one cell in direction d.
func (d Direction) Offset(pos shared.Position) shared.Position {
	switch d {
	case North:
		return shared.Position{X: pos.X, Y: pos.Y - 1}
	case East:
		return shared.Position{X: pos.X + 1, Y: pos.Y}
	case South:
		return shared.Position{X: pos.X, Y: pos.Y + 1}
	case West:
		return shared.Position{X: pos.X - 1, Y: pos.Y}
	}
	return pos
}

// Valid reports whether d indexes a neighbour slot.
func (d Direction) Valid() bool {
	return d >= North && d <= West
}

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	}
	return "nowhere"
}

// DirectionTo returns the direction of one orthogonal step from one position
// to an adjacent one, or Nowhere if the target is not exactly one such step
// away.
func DirectionTo(from, to shared.Position) Direction {
	if from.X == to.X {
		switch {
		case from.Y == to.Y:
			return Nowhere
		case to.Y == from.Y+1:
			return South
		case to.Y == from.Y-1:
			return North
		}
		return Nowhere
	}
	if from.Y != to.Y {
		return Nowhere
	}
	switch {
	case to.X == from.X+1:
		return East
	case to.X == from.X-1:
		return West
	}
	return Nowhere
}

// ActionKind defines the type of action an agent can take
type ActionKind int

const (
	ActionNone ActionKind = iota - 1
	ActionMove
)

// Action represents one agent's proposed move for one tick. It is a value:
// constructed once per tick and never mutated afterwards. The position is the
// agent's believed position at proposal time, which the world uses to resolve
// the move (the proposal may still be rejected).
type Action struct {
	agent     *Agent
	kind      ActionKind
	target    GridObject // reserved for future action kinds
	direction Direction
	pos       shared.Position
}

// NewAction builds an action for the given agent at its believed position.
func NewAction(agent *Agent, kind ActionKind, target GridObject, direction Direction) Action {
	var pos shared.Position
	if agent != nil {
		pos = agent.Position()
	}
	return Action{agent: agent, kind: kind, target: target, direction: direction, pos: pos}
}

// NoAction builds the do-nothing action for an agent.
func NoAction(agent *Agent) Action {
	return NewAction(agent, ActionNone, nil, Nowhere)
}

func (a Action) Agent() *Agent        { return a.agent }
func (a Action) Kind() ActionKind     { return a.kind }
func (a Action) Target() GridObject   { return a.target }
func (a Action) Direction() Direction { return a.direction }
func (a Action) Pos() shared.Position { return a.pos }

// Display converts an Action to a short string representation for monitors.
func (a Action) Display() string {
	switch a.kind {
	case ActionMove:
		switch a.direction {
		case North:
			return "UP"
		case South:
			return "DW"
		case West:
			return "LT"
		case East:
			return "RT"
		default:
			return "M?" // Unknown move direction
		}
	case ActionNone:
		return "ST" // Stay
	default:
		return "--" // Unknown action kind
	}
}
