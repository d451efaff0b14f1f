package game

import "fmt"

// ComponentID is a handle to a piece of game content. Decks, sequences and
// rules refer to content by id only, so copying a state never has to chase
// pointers.
type ComponentID int

// NoComponent marks a slot whose identity is unknown to an observer.
const NoComponent ComponentID = -1

// Component is an immutable piece of game content.
type Component struct {
	ID    ComponentID
	Kind  string
	Owner int // -1 for shared components
}

// Registry is the id -> component table of a single game state. Ids are
// assigned monotonically and never reused.
type Registry struct {
	components []Component
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Create registers a new component and returns its id.
func (r *Registry) Create(kind string, owner int) ComponentID {
	id := ComponentID(len(r.components))
	r.components = append(r.components, Component{ID: id, Kind: kind, Owner: owner})
	return id
}

func (r *Registry) Get(id ComponentID) Component {
	if id < 0 || int(id) >= len(r.components) {
		panic(fmt.Sprintf("unknown component id %d", id))
	}
	return r.components[id]
}

// Kind returns the kind of the component, or "" for NoComponent.
func (r *Registry) Kind(id ComponentID) string {
	if id == NoComponent {
		return ""
	}
	return r.Get(id).Kind
}

func (r *Registry) Len() int {
	return len(r.components)
}

func (r *Registry) Copy() *Registry {
	components := make([]Component, len(r.components))
	copy(components, r.components)
	return &Registry{components: components}
}

func (r *Registry) Equal(other *Registry) bool {
	if len(r.components) != len(other.components) {
		return false
	}
	for i := range r.components {
		if r.components[i] != other.components[i] {
			return false
		}
	}
	return true
}
