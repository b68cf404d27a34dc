package checker

import (
	"github.com/latticefoundry/actorcheck/internal/actorid"
	"github.com/latticefoundry/actorcheck/internal/network"
	"github.com/latticefoundry/actorcheck/internal/state"
)

// InitStates produces exactly one snapshot (spec.md §4.4): an empty
// snapshot seeded from the system's init_network, then on_start run for
// every actor in order with its commands folded in immediately.
func (m *SystemModel[M, S, H]) InitStates() []SystemState[M, S, H] {
	var zeroHistory H
	initial := SystemState[M, S, H]{
		ActorStates: make([]*S, len(m.Actors)),
		Network:     network.NewEnvelopeSet(m.InitNetworkEnvelope...),
		IsTimerSet:  nil,
		History:     zeroHistory.Clone(),
	}
	for i, a := range m.Actors {
		id := actorid.FromIndex(i)
		out := actorid.NewOut[M]()
		s := a.OnStart(id, out)
		initial.ActorStates[i] = &s
		processCommands(m.Sys, &initial, id, out.Commands())
	}
	return []SystemState[M, S, H]{initial}
}

// Actions enumerates every legal move from state in the deterministic order
// spec.md §4.4 fixes: per envelope (in the network's sorted order), a
// lossy-drop action followed by a deliver action (deliver only if dst names
// a real actor); then a timeout action per actor with its timer armed, by
// ascending Id. This order is part of the reproducibility contract, not an
// implementation detail.
func (m *SystemModel[M, S, H]) Actions(st SystemState[M, S, H], acc *[]SystemAction[M]) {
	for _, env := range st.Network.Sorted() {
		if m.Lossy == network.LossyYes {
			*acc = append(*acc, SystemAction[M]{Kind: ActionDrop, Env: env})
		}
		if env.Dst.Index() < len(m.Actors) {
			*acc = append(*acc, SystemAction[M]{Kind: ActionDeliver, Src: env.Src, Dst: env.Dst, Msg: env.Msg, Env: env})
		}
	}
	for i := 0; i < len(st.IsTimerSet); i++ {
		if st.timerSet(i) {
			*acc = append(*acc, SystemAction[M]{Kind: ActionTimeout, Timeout: actorid.FromIndex(i)})
		}
	}
}

// NextState applies one action (spec.md §4.4). ok is false to signal "no
// successor": either the action is structurally impossible (undeliverable
// destination) or the underlying transition was a no-op, which the explorer
// must treat as a pruned self-loop for termination (§4.1, §8 invariant 2).
func (m *SystemModel[M, S, H]) NextState(st SystemState[M, S, H], action SystemAction[M]) (SystemState[M, S, H], bool) {
	switch action.Kind {
	case ActionDrop:
		next := st.Clone()
		next.Network.Remove(action.Env)
		return next, true
	case ActionDeliver:
		return m.nextStateDeliver(st, action)
	case ActionTimeout:
		return m.nextStateTimeout(st, action)
	default:
		return SystemState[M, S, H]{}, false
	}
}

func (m *SystemModel[M, S, H]) nextStateDeliver(st SystemState[M, S, H], action SystemAction[M]) (SystemState[M, S, H], bool) {
	dstIdx := action.Dst.Index()
	if dstIdx < 0 || dstIdx >= len(m.Actors) {
		return SystemState[M, S, H]{}, false
	}
	handle := state.Borrow(*st.ActorStates[dstIdx])
	out := actorid.NewOut[M]()
	m.Actors[dstIdx].OnMsg(action.Dst, handle, action.Src, action.Msg, out)

	isNoOp := !handle.Owned() && out.Empty()
	if isNoOp {
		return SystemState[M, S, H]{}, false
	}

	history, historyChanged := m.Sys.RecordMsgIn(st.History, action.Src, action.Dst, action.Msg)

	next := st.Clone()
	if m.Duplicating != network.DuplicatingYes {
		next.Network.Remove(action.Env)
	}
	if handle.Owned() {
		v := handle.Value()
		next.ActorStates[dstIdx] = &v
	}
	if historyChanged {
		next.History = history
	}
	processCommands(m.Sys, &next, action.Dst, out.Commands())
	return next, true
}

func (m *SystemModel[M, S, H]) nextStateTimeout(st SystemState[M, S, H], action SystemAction[M]) (SystemState[M, S, H], bool) {
	idx := action.Timeout.Index()
	if idx < 0 || idx >= len(m.Actors) {
		return SystemState[M, S, H]{}, false
	}
	handle := state.Borrow(*st.ActorStates[idx])
	out := actorid.NewOut[M]()
	m.Actors[idx].OnTimeout(action.Timeout, handle, out)

	next := st.Clone()
	if handle.Owned() {
		v := handle.Value()
		next.ActorStates[idx] = &v
	}
	growTimerSlice(&next, action.Timeout)
	next.IsTimerSet[idx] = TimerUnset
	processCommands(m.Sys, &next, action.Timeout, out.Commands())

	// The timer always clears first; a re-arming SetTimer is just another
	// command. So unlike Deliver (where the no-op check must run before the
	// network mutates), here the only way to tell a genuine no-op from a
	// state change is to compare the fully-applied successor against the
	// original: if on_timeout touched nothing and the timer ends up
	// re-armed to the same state it started in, this is the self-loop
	// spec.md §4.4 says must yield no successor.
	if st.Equal(next) {
		return SystemState[M, S, H]{}, false
	}
	return next, true
}
