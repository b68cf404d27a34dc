// Package checker lifts N actors into a single nondeterministic global
// transition system: the SystemModel. It defines how the network delivers,
// drops, duplicates, and times out messages; how auxiliary "history" state
// is threaded through; and how actions are enumerated so a generic
// state-space explorer can drive the model deterministically and
// reproducibly (spec.md §4.4).
package checker

import (
	"fmt"

	"github.com/latticefoundry/actorcheck/internal/actor"
	"github.com/latticefoundry/actorcheck/internal/actorid"
	"github.com/latticefoundry/actorcheck/internal/network"
)

// Cloneable is the capability every History type must provide. spec.md §3
// requires history to be cloneable, equality-comparable, debug-printable,
// and hashable; Clone is the one capability Go cannot synthesize for an
// arbitrary type parameter (a plain struct copy would alias any slice or
// map a richer history keeps, corrupting sibling snapshots), so it is the
// one constraint this package imposes. Equality and hashing fall back to
// reflection (see Equal and Fingerprint) since most History
// implementations are small value types for which that is perfectly cheap.
type Cloneable[H any] interface {
	Clone() H
}

// SystemState is a snapshot in time for the entire actor system: spec.md §3
// enumerates its four fields. actor_states is modeled as []*S (pointers,
// not values) so that cloning a snapshot only copies the slice of pointers
// — an O(actor_count) operation — rather than deep-copying every actor's
// state; a transition that actually mutates an actor's state replaces that
// one pointer, never the underlying value (structural sharing, spec.md §5,
// §9).
type SystemState[M comparable, S comparable, H Cloneable[H]] struct {
	ActorStates []*S
	Network     network.EnvelopeSet[M]
	IsTimerSet  []TimerState
	History     H
}

// timerSet reports whether actor i's timer is armed. Trailing entries are
// implicitly unset (spec.md §3 invariant 2), so an index beyond the slice's
// length is not an error.
func (s SystemState[M, S, H]) timerSet(i int) bool {
	if i < 0 || i >= len(s.IsTimerSet) {
		return false
	}
	return s.IsTimerSet[i] == TimerSet
}

// Clone returns an independent copy of the snapshot: the actor-state
// pointer slice and timer slice are copied (cheap), the network set is
// cloned, and the history is cloned via its Clone method.
func (s SystemState[M, S, H]) Clone() SystemState[M, S, H] {
	actorStates := make([]*S, len(s.ActorStates))
	copy(actorStates, s.ActorStates)
	timers := make([]TimerState, len(s.IsTimerSet))
	copy(timers, s.IsTimerSet)
	return SystemState[M, S, H]{
		ActorStates: actorStates,
		Network:     s.Network.Clone(),
		IsTimerSet:  timers,
		History:     s.History.Clone(),
	}
}

// Equal performs the structural equality spec.md §3 invariant 4 requires:
// two snapshots with the same (actor_states, network, is_timer_set,
// history) must be indistinguishable. Actor states compare by value
// (dereferencing the shared-immutable pointers) since S is comparable;
// history falls back to a debug-string comparison, which is sufficient for
// every History this package ships and for any value type a caller adds.
func (s SystemState[M, S, H]) Equal(other SystemState[M, S, H]) bool {
	if len(s.ActorStates) != len(other.ActorStates) {
		return false
	}
	for i := range s.ActorStates {
		if *s.ActorStates[i] != *other.ActorStates[i] {
			return false
		}
	}
	if !s.Network.Equal(other.Network) {
		return false
	}
	maxTimers := len(s.IsTimerSet)
	if len(other.IsTimerSet) > maxTimers {
		maxTimers = len(other.IsTimerSet)
	}
	for i := 0; i < maxTimers; i++ {
		if s.timerSet(i) != other.timerSet(i) {
			return false
		}
	}
	return fmt.Sprintf("%#v", s.History) == fmt.Sprintf("%#v", other.History)
}

// ActionKind tags which of the three moves a SystemAction represents.
type ActionKind int

const (
	ActionDeliver ActionKind = iota
	ActionDrop
	ActionTimeout
)

func (k ActionKind) String() string {
	switch k {
	case ActionDeliver:
		return "Deliver"
	case ActionDrop:
		return "Drop"
	case ActionTimeout:
		return "Timeout"
	default:
		return "Unknown"
	}
}

// SystemAction indicates a possible step the actor system can take as it
// evolves: a message can be delivered, a message can be dropped if the
// network is lossy, or an actor can be notified after a timeout.
type SystemAction[M comparable] struct {
	Kind    ActionKind
	Src     actorid.Id
	Dst     actorid.Id
	Msg     M
	Env     actorid.Envelope[M]
	Timeout actorid.Id
}

func (a SystemAction[M]) String() string {
	switch a.Kind {
	case ActionDeliver:
		return fmt.Sprintf("Deliver{src: %s, dst: %s, msg: %v}", a.Src, a.Dst, a.Msg)
	case ActionDrop:
		return fmt.Sprintf("Drop(%s)", a.Env)
	case ActionTimeout:
		return fmt.Sprintf("Timeout(%s)", a.Timeout)
	default:
		return "Unknown"
	}
}

// System describes how to build a model: the actors, the initial network,
// the delivery policy, the history-recording hooks, the properties to
// check, and the state-space fence. spec.md §4.3.
type System[M comparable, S comparable, H Cloneable[H]] interface {
	// Actors returns the total actor list; an actor's index is its Id.
	Actors() []actor.Actor[M, S]

	// InitNetwork returns any envelopes the system seeds before actors
	// start (e.g. pre-injected requests).
	InitNetwork() []actorid.Envelope[M]

	// LossyNetwork reports whether the network policy allows dropping.
	LossyNetwork() network.Lossy

	// DuplicatingNetwork reports whether delivered envelopes are retained.
	DuplicatingNetwork() network.Duplicating

	// RecordMsgIn folds an inbound delivery into history. ok is false if
	// the hook has nothing to update (spec.md's "None").
	RecordMsgIn(history H, src, dst actorid.Id, msg M) (next H, ok bool)

	// RecordMsgOut folds an outbound send into history before it is
	// inserted into the network.
	RecordMsgOut(history H, src, dst actorid.Id, msg M) (next H, ok bool)

	// Properties returns the safety/liveness predicates to check.
	Properties() []Property[M, S, H]

	// WithinBoundary fences the explored state space; the explorer must
	// not descend through a state for which this returns false.
	WithinBoundary(state SystemState[M, S, H]) bool
}

// BaseSystem supplies the same defaults stateright's System trait gives in
// Rust (init_network returns nothing, the network is reliable but
// duplicating by default, and the history hooks are no-ops) via Go's
// usual stand-in for default interface methods: struct embedding. A System
// implementation embeds BaseSystem and only overrides what it needs.
type BaseSystem[M comparable, S comparable, H Cloneable[H]] struct{}

func (BaseSystem[M, S, H]) InitNetwork() []actorid.Envelope[M] { return nil }
func (BaseSystem[M, S, H]) LossyNetwork() network.Lossy        { return network.LossyNo }
func (BaseSystem[M, S, H]) DuplicatingNetwork() network.Duplicating {
	return network.DuplicatingYes
}

func (BaseSystem[M, S, H]) RecordMsgIn(history H, _, _ actorid.Id, _ M) (H, bool) {
	var zero H
	_ = zero
	return history, false
}

func (BaseSystem[M, S, H]) RecordMsgOut(history H, _, _ actorid.Id, _ M) (H, bool) {
	return history, false
}

func (BaseSystem[M, S, H]) WithinBoundary(SystemState[M, S, H]) bool { return true }

// SystemModel is a model of an actor system: it wraps a System together
// with the actor list and network-policy values snapshotted at
// construction time, conforming to the Model interface the external
// exploration engine expects (spec.md §6).
type SystemModel[M comparable, S comparable, H Cloneable[H]] struct {
	Actors              []actor.Actor[M, S]
	InitNetworkEnvelope []actorid.Envelope[M]
	Lossy               network.Lossy
	Duplicating         network.Duplicating
	Sys                 System[M, S, H]
}

// NewSystemModel lowers a System into a checkable SystemModel, the
// equivalent of stateright's System::into_model().
func NewSystemModel[M comparable, S comparable, H Cloneable[H]](sys System[M, S, H]) *SystemModel[M, S, H] {
	return &SystemModel[M, S, H]{
		Actors:              sys.Actors(),
		InitNetworkEnvelope: sys.InitNetwork(),
		Lossy:               sys.LossyNetwork(),
		Duplicating:         sys.DuplicatingNetwork(),
		Sys:                 sys,
	}
}

// Model is the explorer-facing contract spec.md §6 describes: the narrow
// spec treats the exploration engine that consumes this interface as an
// out-of-scope external collaborator. internal/explore supplies a minimal
// conformant implementation of the consuming side so the core is
// exercisable end-to-end.
type Model[M comparable, S comparable, H Cloneable[H]] interface {
	InitStates() []SystemState[M, S, H]
	Actions(state SystemState[M, S, H], acc *[]SystemAction[M])
	NextState(state SystemState[M, S, H], action SystemAction[M]) (SystemState[M, S, H], bool)
	Properties() []Property[M, S, H]
	WithinBoundary(state SystemState[M, S, H]) bool
	DisplayOutcome(state SystemState[M, S, H], action SystemAction[M]) (string, bool)
}

var _ Model[int, int, NoHistory] = (*SystemModel[int, int, NoHistory])(nil)

func (m *SystemModel[M, S, H]) Properties() []Property[M, S, H] {
	return m.Sys.Properties()
}

func (m *SystemModel[M, S, H]) WithinBoundary(state SystemState[M, S, H]) bool {
	return m.Sys.WithinBoundary(state)
}
