// Package register implements the register test harness spec.md §4.6
// describes: a composite actor that is either a user-supplied server
// (validated as a black box) or a synthetic client that drives a Put/Get
// workload against the servers, with a linearizability tester threaded
// through as auxiliary history state.
package register

import (
	"fmt"

	"github.com/latticefoundry/actorcheck/internal/actor"
	"github.com/latticefoundry/actorcheck/internal/actorid"
	"github.com/latticefoundry/actorcheck/internal/checker"
	"github.com/latticefoundry/actorcheck/internal/history"
	"github.com/latticefoundry/actorcheck/internal/network"
	"github.com/latticefoundry/actorcheck/internal/state"
)

// MsgKind distinguishes the four register-protocol message shapes clients
// and servers exchange.
type MsgKind int

const (
	Put MsgKind = iota
	Get
	PutOk
	GetOk
)

func (k MsgKind) String() string {
	switch k {
	case Put:
		return "Put"
	case Get:
		return "Get"
	case PutOk:
		return "PutOk"
	case GetOk:
		return "GetOk"
	default:
		return "Unknown"
	}
}

// Msg is the sole wire message the register harness exchanges. ReqId lets
// a client match a reply to the request that produced it; Value is only
// meaningful on Put and GetOk.
type Msg struct {
	Kind  MsgKind
	ReqId uint64
	Value byte
}

func (m Msg) String() string {
	switch m.Kind {
	case Put:
		return fmt.Sprintf("Put(%d, %c)", m.ReqId, m.Value)
	case Get:
		return fmt.Sprintf("Get(%d)", m.ReqId)
	case PutOk:
		return fmt.Sprintf("PutOk(%d)", m.ReqId)
	case GetOk:
		return fmt.Sprintf("GetOk(%d, %c)", m.ReqId, m.Value)
	default:
		return "Unknown"
	}
}

// CompositeState is the register harness's actor state: either a wrapped
// server state or a client's outstanding-request bookkeeping. Go has no sum
// type, so — exactly as internal/actor.ORLink's LinkState does for its own
// composite — this is a tagged struct rather than two separate types.
type CompositeState[S comparable] struct {
	IsServer    bool
	Server      S
	Awaiting    uint64
	HasAwaiting bool
	OpCount     uint64
}

// CompositeActor wraps a user-supplied ServerActor so it can sit in the
// same actor vector as the harness's synthetic clients: ids below
// ServerCount run Server verbatim, ids at or above it run the client
// protocol. spec.md §4.6 requires servers to be addressable by arithmetic
// on the client's own id, which is why every CompositeActor instance
// carries ServerCount rather than a fixed peer list.
type CompositeActor[S comparable] struct {
	actor.NoTimeout[Msg, CompositeState[S]]
	Server      actor.Actor[Msg, S]
	ServerCount int
}

func (a CompositeActor[S]) isClient(id actorid.Id) bool {
	return id.Index() >= a.ServerCount
}

// OnStart runs the wrapped server's on_start verbatim for a server id,
// splicing its commands into the outer buffer unchanged (spec.md §9's
// composite-actor pattern). For a client id it sends the first Put: request
// id `1 * index`, value `'A' + (index - server_count)`, to server
// `index % server_count`.
func (a CompositeActor[S]) OnStart(id actorid.Id, out *actorid.Out[Msg]) CompositeState[S] {
	if a.isClient(id) {
		index := id.Index()
		reqID := uint64(index)
		value := byte('A' + byte(index-a.ServerCount))
		dst := actorid.FromIndex(index % a.ServerCount)
		out.Send(dst, Msg{Kind: Put, ReqId: reqID, Value: value})
		return CompositeState[S]{Awaiting: reqID, HasAwaiting: true, OpCount: 1}
	}
	serverOut := actorid.NewOut[Msg]()
	s := a.Server.OnStart(id, serverOut)
	out.Append(serverOut)
	return CompositeState[S]{IsServer: true, Server: s}
}

// OnMsg forwards verbatim to the wrapped server for a server id. For a
// client id it implements the protocol spec.md §4.6 specifies: a matching
// PutOk triggers either another Put (only the first client, up to
// op_count == 2) or a Get; a matching GetOk clears the awaiting request;
// anything else (unmatched request id, or a message while nothing is
// awaited) is ignored.
func (a CompositeActor[S]) OnMsg(id actorid.Id, st *state.Handle[CompositeState[S]], src actorid.Id, msg Msg, out *actorid.Out[Msg]) {
	cur := st.Value()
	if cur.IsServer {
		inner := state.Borrow(cur.Server)
		a.Server.OnMsg(id, inner, src, msg, out)
		if inner.Owned() {
			next := cur
			next.Server = inner.Value()
			st.Set(next)
		}
		return
	}
	if !cur.HasAwaiting {
		return
	}
	index := id.Index()
	switch msg.Kind {
	case PutOk:
		if msg.ReqId != cur.Awaiting {
			return
		}
		maxPutCount := uint64(1)
		if index == a.ServerCount {
			// The first client covers a longer Put sequence so the
			// harness exercises more than a single write before the
			// read that checks it.
			maxPutCount = 2
		}
		nextReqID := (cur.OpCount + 1) * uint64(index)
		dst := actorid.FromIndex((index + int(cur.OpCount)) % a.ServerCount)
		if cur.OpCount < maxPutCount {
			value := byte('Z' - byte(index-a.ServerCount))
			out.Send(dst, Msg{Kind: Put, ReqId: nextReqID, Value: value})
		} else {
			out.Send(dst, Msg{Kind: Get, ReqId: nextReqID})
		}
		st.Set(CompositeState[S]{Awaiting: nextReqID, HasAwaiting: true, OpCount: cur.OpCount + 1})
	case GetOk:
		if msg.ReqId != cur.Awaiting {
			return
		}
		st.Set(CompositeState[S]{HasAwaiting: false, OpCount: cur.OpCount + 1})
	}
}

// System composes a fixed list of server actors with ClientCount synthetic
// clients into a checker.System, threading a history.Tester through
// RecordMsgIn/RecordMsgOut so the "linearizable" and "value chosen"
// properties (spec.md §4.6) can be checked.
type System[S comparable] struct {
	checker.BaseSystem[Msg, CompositeState[S], history.Tester]
	Servers          []actor.Actor[Msg, S]
	ClientCount      int
	Lossy            network.Lossy
	Duplicating      network.Duplicating
	WithinBoundaryFn func(checker.SystemState[Msg, CompositeState[S], history.Tester]) bool
}

func (s System[S]) Actors() []actor.Actor[Msg, CompositeState[S]] {
	actors := make([]actor.Actor[Msg, CompositeState[S]], 0, len(s.Servers)+s.ClientCount)
	for _, srv := range s.Servers {
		actors = append(actors, CompositeActor[S]{Server: srv, ServerCount: len(s.Servers)})
	}
	for i := 0; i < s.ClientCount; i++ {
		actors = append(actors, CompositeActor[S]{ServerCount: len(s.Servers)})
	}
	return actors
}

func (s System[S]) LossyNetwork() network.Lossy             { return s.Lossy }
func (s System[S]) DuplicatingNetwork() network.Duplicating { return s.Duplicating }

func (s System[S]) WithinBoundary(st checker.SystemState[Msg, CompositeState[S], history.Tester]) bool {
	if s.WithinBoundaryFn == nil {
		return true
	}
	return s.WithinBoundaryFn(st)
}

// RecordMsgOut folds an outbound Get/Put from a client into the
// linearizability tester as an invocation; anything else (a server's own
// *Ok replies) leaves history untouched, matching spec.md §4.6.
func (s System[S]) RecordMsgOut(hist history.Tester, src, _ actorid.Id, msg Msg) (history.Tester, bool) {
	switch msg.Kind {
	case Get:
		return hist.OnInvoke(src, history.Op{Kind: history.Read}), true
	case Put:
		return hist.OnInvoke(src, history.Op{Kind: history.Write, Value: int(msg.Value)}), true
	default:
		return hist, false
	}
}

// RecordMsgIn folds an inbound GetOk/PutOk delivered to a client into the
// linearizability tester as a return.
func (s System[S]) RecordMsgIn(hist history.Tester, _, dst actorid.Id, msg Msg) (history.Tester, bool) {
	switch msg.Kind {
	case GetOk:
		return hist.OnReturn(dst, history.Ret{Kind: history.ReadOk, Value: int(msg.Value)}), true
	case PutOk:
		return hist.OnReturn(dst, history.Ret{Kind: history.WriteOk}), true
	default:
		return hist, false
	}
}

// Properties exposes the two properties spec.md §4.6 names: "linearizable"
// holds as long as the observed history always admits a serialization, and
// "value chosen" is witnessed once a GetOk carrying a non-default register
// value is on the network.
func (s System[S]) Properties() []checker.Property[Msg, CompositeState[S], history.Tester] {
	return []checker.Property[Msg, CompositeState[S], history.Tester]{
		checker.AlwaysProperty("linearizable", func(_ *checker.SystemModel[Msg, CompositeState[S], history.Tester], st checker.SystemState[Msg, CompositeState[S], history.Tester]) bool {
			_, ok := st.History.SerializedHistory()
			return ok
		}),
		checker.SometimesProperty("value chosen", func(_ *checker.SystemModel[Msg, CompositeState[S], history.Tester], st checker.SystemState[Msg, CompositeState[S], history.Tester]) bool {
			for _, env := range st.Network.Sorted() {
				if env.Msg.Kind == GetOk && env.Msg.Value != 0 {
					return true
				}
			}
			return false
		}),
	}
}
