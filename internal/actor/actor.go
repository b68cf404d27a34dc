// Package actor defines the pure transition-function contract every
// model-checked actor implements. An actor initializes its internal state,
// optionally emitting commands, and thereafter reacts to delivered messages
// and timer firings by updating its state and/or emitting commands. The
// contract is deterministic: identical arguments must produce identical
// state and an identical command sequence. All nondeterminism belongs to
// the exploration engine, never to the actor.
package actor

import (
	"github.com/latticefoundry/actorcheck/internal/actorid"
	"github.com/latticefoundry/actorcheck/internal/state"
)

// Actor is the trio of pure functions over (id, event, state, out) that
// spec.md §4.2 calls the actor contract. M is the message type exchanged
// over the network; S is the actor's private state type. Both must be
// comparable so the checker can detect no-op transitions and compare
// snapshots structurally.
type Actor[M comparable, S comparable] interface {
	// OnStart runs exactly once per actor at init and must produce the
	// actor's initial state. It may emit commands (e.g. an actor that
	// bootstraps a protocol by sending the first message).
	OnStart(id actorid.Id, out *actorid.Out[M]) S

	// OnMsg runs once per delivered envelope. It may mutate state via
	// state.ToMut/Set and may emit commands.
	OnMsg(id actorid.Id, st *state.Handle[S], src actorid.Id, msg M, out *actorid.Out[M])

	// OnTimeout runs when the actor's timer fires.
	OnTimeout(id actorid.Id, st *state.Handle[S], out *actorid.Out[M])
}

// NoTimeout can be embedded by an Actor implementation that has no
// meaningful response to a timer firing, giving it the same no-op default
// stateright's Actor trait provides for on_timeout.
type NoTimeout[M comparable, S comparable] struct{}

// OnTimeout is a no-op: it neither mutates state nor emits commands, so a
// Timeout action against such an actor only clears that actor's timer.
func (NoTimeout[M, S]) OnTimeout(actorid.Id, *state.Handle[S], *actorid.Out[M]) {}

// IsNoOp reports whether a transition neither promoted its state handle to
// owned nor emitted any commands. The exploration engine uses this to avoid
// generating a successor state identical to the current one — the single
// largest pruning win described in spec.md §4.1.
func IsNoOp[M comparable, S comparable](st *state.Handle[S], out *actorid.Out[M]) bool {
	return !st.Owned() && out.Empty()
}
