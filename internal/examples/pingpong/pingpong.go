// Package pingpong is the canonical two-actor system used throughout this
// repository's tests: actor 0 sends Ping(0) on start, actor 1 replies
// Pong(n) to a Ping(n), and actor 0 replies Ping(m+1) to a Pong(m). Each
// actor counts the messages it has answered and only answers the message
// whose number equals its count, until its count reaches MaxNat.
package pingpong

import (
	"github.com/latticefoundry/actorcheck/internal/actor"
	"github.com/latticefoundry/actorcheck/internal/actorid"
	"github.com/latticefoundry/actorcheck/internal/checker"
	"github.com/latticefoundry/actorcheck/internal/network"
	"github.com/latticefoundry/actorcheck/internal/state"
)

// MsgKind distinguishes the two message shapes exchanged.
type MsgKind int

const (
	Ping MsgKind = iota
	Pong
)

// Msg is the sole message type pingpong actors exchange.
type Msg struct {
	Kind MsgKind
	N    int
}

// Node is the shared behavior for both actors in the system: an Initiator
// kicks things off with Ping(0); a non-initiator only ever responds.
// Counting halts once MaxNat is reached, bounding the otherwise-infinite
// ping-pong exchange to a finite, exhaustively explorable state space.
type Node struct {
	actor.NoTimeout[Msg, int]
	Peer      actorid.Id
	MaxNat    int
	Initiator bool
}

// OnStart seeds the exchange for the initiator and leaves the responder at
// rest until the first Ping arrives.
func (n Node) OnStart(id actorid.Id, out *actorid.Out[Msg]) int {
	if n.Initiator {
		out.Send(n.Peer, Msg{Kind: Ping, N: 0})
	}
	return 0
}

// OnMsg replies Pong(n) to a Ping(n), and Ping(m+1) to a Pong(m), and
// increments the actor's count, but only when the message's number equals
// the current count and the count is below MaxNat. Any other message (a
// stale or redelivered one, or any message once the count has reached
// MaxNat) is ignored, leaving the transition a no-op.
func (n Node) OnMsg(id actorid.Id, st *state.Handle[int], src actorid.Id, msg Msg, out *actorid.Out[Msg]) {
	count := st.Value()
	if msg.N != count || count >= n.MaxNat {
		return
	}
	switch msg.Kind {
	case Ping:
		out.Send(src, Msg{Kind: Pong, N: msg.N})
	case Pong:
		out.Send(src, Msg{Kind: Ping, N: msg.N + 1})
	}
	st.Set(count + 1)
}

// System wires two Nodes into a checker.System. Lossy and Duplicating let
// callers exercise every network-policy combination spec.md's E1-E4 test
// vectors require without duplicating this type per policy.
type System struct {
	checker.BaseSystem[Msg, int, checker.NoHistory]
	MaxNat      int
	Lossy       network.Lossy
	Duplicating network.Duplicating
	Props       []checker.Property[Msg, int, checker.NoHistory]
}

func (s System) Actors() []actor.Actor[Msg, int] {
	return []actor.Actor[Msg, int]{
		Node{Peer: actorid.FromIndex(1), MaxNat: s.MaxNat, Initiator: true},
		Node{Peer: actorid.FromIndex(0), MaxNat: s.MaxNat, Initiator: false},
	}
}

func (s System) LossyNetwork() network.Lossy { return s.Lossy }

func (s System) DuplicatingNetwork() network.Duplicating { return s.Duplicating }

func (s System) Properties() []checker.Property[Msg, int, checker.NoHistory] {
	return s.Props
}

// DeltaWithinOne is the safety property E2 checks: the two actors' counters
// never diverge by more than one step.
func DeltaWithinOne(_ *checker.SystemModel[Msg, int, checker.NoHistory], st checker.SystemState[Msg, int, checker.NoHistory]) bool {
	a, b := *st.ActorStates[0], *st.ActorStates[1]
	delta := a - b
	if delta < 0 {
		delta = -delta
	}
	return delta <= 1
}

// LessThanMax is the safety property E4 falsifies: both actors stay below
// MaxNat. It is parametrized since MaxNat is a scenario value, not a
// constant.
func LessThanMax(maxNat int) func(*checker.SystemModel[Msg, int, checker.NoHistory], checker.SystemState[Msg, int, checker.NoHistory]) bool {
	return func(_ *checker.SystemModel[Msg, int, checker.NoHistory], st checker.SystemState[Msg, int, checker.NoHistory]) bool {
		return *st.ActorStates[0] < maxNat && *st.ActorStates[1] < maxNat
	}
}

// ReachesMax is the liveness property E3/E4 check: some reachable state has
// both actors at MaxNat.
func ReachesMax(maxNat int) func(*checker.SystemModel[Msg, int, checker.NoHistory], checker.SystemState[Msg, int, checker.NoHistory]) bool {
	return func(_ *checker.SystemModel[Msg, int, checker.NoHistory], st checker.SystemState[Msg, int, checker.NoHistory]) bool {
		return *st.ActorStates[0] == maxNat && *st.ActorStates[1] == maxNat
	}
}
