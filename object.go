package gridworld

import (
	"github.com/google/uuid"

	"gridworld/shared"
)

// GridObject is anything that can occupy a cell: agents, and passive objects
// that never act.
type GridObject interface {
	Name() string
	ID() string
	Position() shared.Position
}

// Object is the base for everything that lives in a world. Name and ID are
// fixed at construction; the world reference is set exactly once through
// Embed, and re-embedding into a different world is rejected. The position is
// the object's believed position, which for agents tracks observations rather
// than proposals.
type Object struct {
	name  string
	id    string
	world *World
	pos   shared.Position
}

// NewObject creates a named object with a fresh unique identity.
func NewObject(name string) *Object {
	return &Object{name: name, id: uuid.NewString()}
}

// Name returns what kind of object this is.
func (o *Object) Name() string { return o.name }

// ID returns the object's unique identifier.
func (o *Object) ID() string { return o.id }

// Position returns the object's believed coordinates.
func (o *Object) Position() shared.Position { return o.pos }

// World returns the world the object is embedded in, or nil.
func (o *Object) World() *World { return o.world }

// Embed attaches the object to a world. It may be called once; attaching to
// a second world fails with ErrForeignWorld.
func (o *Object) Embed(w *World) error {
	if o.world != nil && o.world != w {
		return ErrForeignWorld
	}
	o.world = w
	return nil
}

// Place sets the object's believed coordinates within the given world,
// embedding the object first if it has no world yet.
func (o *Object) Place(w *World, x, y int) error {
	if err := o.Embed(w); err != nil {
		return err
	}
	o.pos = shared.Position{X: x, Y: y}
	return nil
}

func (o *Object) setPosition(pos shared.Position) { o.pos = pos }
