// Package shared contains the wire types exchanged between the simulation
// core and external monitoring collaborators. A monitor only ever receives
// read-only snapshots; it never feeds state back into the world.
package shared

import "time"

// Position represents a 2D coordinate on the grid
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// AgentState represents the published state of a single agent
type AgentState struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Position   Position `json:"position"`
	LastAction string   `json:"last_action"`
}

// Snapshot represents the world state published at the end of a tick
type Snapshot struct {
	Tick      int          `json:"tick"`
	Timestamp time.Time    `json:"timestamp"`
	Width     int          `json:"width"`
	Height    int          `json:"height"`
	Agents    []AgentState `json:"agents"`
}
