package gridworld

import "gridworld/shared"

// The explorer performs a frontier-driven depth-first traversal of unknown
// terrain. It only ever perceives the cell the agent stands on: which
// directions are navigable right now. From that it builds an internal map of
// reachable-neighbour edges with traversal distances, backtracks along its
// own path when a branch is exhausted, and finally prunes the map so that
// non-branching corridor cells collapse into direct edges between decision
// points.

type explorerState int

const (
	exploring explorerState = iota
	backtracking
	exhausted
)

// explorationOrder fixes the tie-break between unexplored directions so runs
// are deterministic.
var explorationOrder = [numDirections]Direction{North, East, South, West}

type pendingMove struct {
	from      shared.Position
	want      shared.Position
	dir       Direction
	backtrack bool
}

type explorer struct {
	state    explorerState
	edges    map[shared.Position]map[shared.Position]int
	frontier map[shared.Position]bool
	blocked  map[shared.Position]uint8
	stack    []shared.Position
	pending  *pendingMove
}

func newExplorer() *explorer {
	return &explorer{
		state:    exploring,
		edges:    make(map[shared.Position]map[shared.Position]int),
		frontier: make(map[shared.Position]bool),
		blocked:  make(map[shared.Position]uint8),
	}
}

func (e *explorer) done() bool { return e.state == exhausted }

// visit makes pos a map key, entering it into the frontier until every
// direction out of it has been explored or confirmed blocked.
func (e *explorer) visit(pos shared.Position) {
	if e.edges[pos] == nil {
		e.edges[pos] = make(map[shared.Position]int)
		e.frontier[pos] = true
	}
}

// link records an edge between two adjacent known cells, keeping the shorter
// distance if the edge is already present.
func (e *explorer) link(a, b shared.Position, dist int) {
	e.visit(a)
	e.visit(b)
	if cur, ok := e.edges[a][b]; !ok || dist < cur {
		e.edges[a][b] = dist
		e.edges[b][a] = dist
	}
}

func (e *explorer) block(pos shared.Position, d Direction) {
	e.blocked[pos] |= 1 << uint(d)
}

func (e *explorer) isBlocked(pos shared.Position, d Direction) bool {
	return e.blocked[pos]&(1<<uint(d)) != 0
}

// next decides the explorer's move from the agent's current cell. The second
// return is false when the explorer proposes no move this tick: it is waiting
// for a temporarily full neighbour, or it has finished and pruned its map.
func (e *explorer) next(cell *Cell) (Direction, bool) {
	pos := cell.Position()
	e.visit(pos)

	// Record what the current cell shows: walls are confirmed blocked, and
	// navigable neighbours already in the map gain a distance-1 edge. Without
	// these cross edges the map would degenerate to the traversal tree alone.
	for _, d := range explorationOrder {
		if cell.Neighbour(d) == nil {
			e.block(pos, d)
			continue
		}
		if !cell.CanGo(d) {
			continue
		}
		dest := d.Offset(pos)
		if e.edges[dest] != nil {
			e.link(pos, dest, 1)
		}
	}

	if e.state == backtracking && e.frontier[pos] {
		e.state = exploring
	}

	if e.state == exploring {
		waiting := false
		for _, d := range explorationOrder {
			if e.isBlocked(pos, d) {
				continue
			}
			dest := d.Offset(pos)
			if e.edges[dest] != nil {
				continue
			}
			n := cell.Neighbour(d)
			if n == nil {
				continue
			}
			if n.AtCapacity() {
				// Unexplored but temporarily full; try again next tick.
				waiting = true
				continue
			}
			e.pending = &pendingMove{from: pos, want: dest, dir: d}
			e.stack = append(e.stack, pos)
			return d, true
		}
		if waiting {
			return Nowhere, false
		}
		delete(e.frontier, pos)
		e.state = backtracking
	}

	for len(e.stack) > 0 {
		target := e.stack[len(e.stack)-1]
		e.stack = e.stack[:len(e.stack)-1]
		if target == pos {
			continue
		}
		d := DirectionTo(pos, target)
		if d == Nowhere {
			continue
		}
		e.pending = &pendingMove{from: pos, want: target, dir: d, backtrack: true}
		return d, true
	}

	// Stack empty with nothing left to explore: collapse corridors and stop.
	e.prune()
	e.state = exhausted
	return Nowhere, false
}

// observe feeds back the cell the world resolved the proposed move to. A
// result matching the proposal records the traversed edge; anything else
// means the move was rejected and the proposed direction is confirmed blocked
// (backtrack moves are retried instead, since the path there is known to be
// passable).
func (e *explorer) observe(cell *Cell) {
	p := e.pending
	if p == nil {
		return
	}
	e.pending = nil
	if cell.Position() == p.want {
		e.link(p.from, p.want, 1)
		return
	}
	if p.backtrack {
		e.stack = append(e.stack, p.want)
		return
	}
	e.block(p.from, p.dir)
	if n := len(e.stack); n > 0 && e.stack[n-1] == p.from {
		e.stack = e.stack[:n-1]
	}
}

// prune repeatedly removes corridor cells: map nodes of degree exactly two,
// whose incident edges are replaced by one direct edge carrying the summed
// distance. Branch points and dead ends are never pruned, so the total
// distance between any two remaining nodes is preserved. Pruning an already
// pruned map changes nothing.
func (e *explorer) prune() {
	for {
		pruned := false
		for node, nbrs := range e.edges {
			if len(nbrs) != 2 {
				continue
			}
			ends := make([]shared.Position, 0, 2)
			total := 0
			for n, d := range nbrs {
				ends = append(ends, n)
				total += d
			}
			a, b := ends[0], ends[1]
			delete(e.edges, node)
			delete(e.edges[a], node)
			delete(e.edges[b], node)
			if cur, ok := e.edges[a][b]; !ok || total < cur {
				e.edges[a][b] = total
				e.edges[b][a] = total
			}
			pruned = true
		}
		if !pruned {
			return
		}
	}
}

// mapCopy returns a deep copy of the exploration map.
func (e *explorer) mapCopy() map[shared.Position]map[shared.Position]int {
	out := make(map[shared.Position]map[shared.Position]int, len(e.edges))
	for node, nbrs := range e.edges {
		inner := make(map[shared.Position]int, len(nbrs))
		for n, d := range nbrs {
			inner[n] = d
		}
		out[node] = inner
	}
	return out
}
