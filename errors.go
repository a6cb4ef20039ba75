package gridworld

import "errors"

var (
	// ErrInvalidDirection reports a direction argument outside {North..West}.
	ErrInvalidDirection = errors.New("direction out of range")

	// ErrCorruptTopology reports a malformed neighbour record during grid
	// construction. Topology errors are fatal and abort world construction.
	ErrCorruptTopology = errors.New("corrupt grid topology")

	// ErrForeignWorld reports an object being attached to a second world.
	ErrForeignWorld = errors.New("object belongs to a different world")

	// ErrUnexpectedObservation reports an action result whose shape does not
	// match what the action kind requires. This is a contract violation: the
	// offending agent is halted, not retried.
	ErrUnexpectedObservation = errors.New("unexpected observation type")

	// ErrNotFound reports a missing occupant or agent.
	ErrNotFound = errors.New("not found")

	// ErrWorldFull reports that no cell could accept a new occupant.
	ErrWorldFull = errors.New("no free cell available")
)
