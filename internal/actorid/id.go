// Package actorid provides the stable identity and envelope types shared by
// every actor and by the system model that lifts actors into a global
// transition system.
package actorid

import "fmt"

// Id uniquely identifies an actor within a single model's lifetime. Within a
// model-checked run the low bits are simply the actor's index in the
// system's actor vector, which gives O(1) lookup and routing arithmetic. A
// message addressed to an Id at or beyond the actor count is legal but
// undeliverable (see Deliver in the checker package).
type Id uint64

// String renders the Id the way the rest of the package's debug output does,
// e.g. when printing an Envelope or a discovered SystemAction path.
func (id Id) String() string {
	return fmt.Sprintf("Id(%d)", uint64(id))
}

// Index returns the actor-vector index this Id denotes.
func (id Id) Index() int {
	return int(id)
}

// FromIndex builds the Id for the actor at the given index.
func FromIndex(index int) Id {
	return Id(index)
}
