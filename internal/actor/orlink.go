package actor

import (
	"github.com/latticefoundry/actorcheck/internal/actorid"
	"github.com/latticefoundry/actorcheck/internal/state"
)

// orLinkWindow bounds how many unacknowledged outgoing messages ORLink
// retains for retransmission. A fixed, small window keeps LinkState
// comparable (Go arrays of comparable elements are themselves comparable,
// unlike slices), which is what the exploration engine needs to compare
// snapshots structurally.
const orLinkWindow = 4

// LinkMsgKind tags a LinkMsg as carrying application data or an
// acknowledgement.
type LinkMsgKind int

const (
	LinkData LinkMsgKind = iota
	LinkAck
)

// LinkMsg is the wire message ORLink exchanges with its single peer: either
// a sequenced application payload or an acknowledgement of one.
type LinkMsg[M comparable] struct {
	Kind LinkMsgKind
	Seq  uint64
	Msg  M
}

type pendingMsg[M comparable] struct {
	seq    uint64
	msg    M
	active bool
}

// LinkState wraps an inner actor's state with the bookkeeping an
// ordered-reliable-link needs: the next outgoing sequence number, the
// highest sequence number delivered inbound (for dedup), and a
// small retransmission window of unacknowledged sends.
type LinkState[S comparable, M comparable] struct {
	Inner       S
	NextSendSeq uint64
	LastRecvSeq uint64
	HasRecvSeq  bool
	Pending     [orLinkWindow]pendingMsg[M]
}

// ORLink wraps a single-peer Actor so that every Send directed at peer is
// sequenced, retransmitted on timeout until acknowledged, and delivered to
// Inner in increasing sequence order with duplicates suppressed. Inbound
// data whose sequence number is not above the last one delivered is only
// re-acknowledged, never delivered. At most orLinkWindow unacknowledged
// sends are kept for retransmission; a send made while the window is full
// is transmitted once and not retransmitted. This is a Go-idiomatic
// reduction of stateright's ordered_reliable_link.rs, which models the same
// link as a BTreeMap of pending sends; ORLink uses a bounded array instead
// so that LinkState stays comparable.
type ORLink[S comparable, M comparable] struct {
	Inner  Actor[M, S]
	Peer   actorid.Id
	Period actorid.TimerRange
}

func (l ORLink[S, M]) onInnerStart(id actorid.Id) (S, []actorid.Command[M]) {
	out := actorid.NewOut[M]()
	inner := l.Inner.OnStart(id, out)
	return inner, out.Commands()
}

// OnStart runs the inner actor's start logic, then wraps every resulting
// Send to Peer as a sequenced LinkData message and arms the retransmit
// timer.
func (l ORLink[S, M]) OnStart(id actorid.Id, out *actorid.Out[LinkMsg[M]]) LinkState[S, M] {
	inner, cmds := l.onInnerStart(id)
	st := LinkState[S, M]{Inner: inner}
	applyInnerCommands(&st, cmds, out)
	out.SetTimer(l.Period)
	return st
}

// OnMsg handles an inbound LinkMsg: an Ack retires the matching pending
// send, while Data is acknowledged and — if not a duplicate — delivered to
// Inner in sequence.
func (l ORLink[S, M]) OnMsg(id actorid.Id, st *state.Handle[LinkState[S, M]], src actorid.Id, msg LinkMsg[M], out *actorid.Out[LinkMsg[M]]) {
	switch msg.Kind {
	case LinkAck:
		cur := st.Value()
		changed := false
		for i := range cur.Pending {
			if cur.Pending[i].active && cur.Pending[i].seq == msg.Seq {
				changed = true
			}
		}
		if !changed {
			return
		}
		next := cur
		for i := range next.Pending {
			if next.Pending[i].active && next.Pending[i].seq == msg.Seq {
				next.Pending[i] = pendingMsg[M]{}
			}
		}
		st.Set(next)
	case LinkData:
		out.Send(src, LinkMsg[M]{Kind: LinkAck, Seq: msg.Seq})
		cur := st.Value()
		if cur.HasRecvSeq && msg.Seq <= cur.LastRecvSeq {
			return // duplicate: already delivered, only the ack above is re-sent
		}
		innerHandle := state.Borrow(cur.Inner)
		innerOut := actorid.NewOut[M]()
		l.Inner.OnMsg(id, innerHandle, src, msg.Msg, innerOut)

		next := cur
		next.LastRecvSeq = msg.Seq
		next.HasRecvSeq = true
		if innerHandle.Owned() {
			next.Inner = innerHandle.Value()
		}
		applyInnerCommands(&next, innerOut.Commands(), out)
		st.Set(next)
	}
}

// OnTimeout retransmits every still-unacknowledged send and re-arms the
// timer.
func (l ORLink[S, M]) OnTimeout(id actorid.Id, st *state.Handle[LinkState[S, M]], out *actorid.Out[LinkMsg[M]]) {
	cur := st.Value()
	for _, p := range cur.Pending {
		if p.active {
			out.Send(l.Peer, LinkMsg[M]{Kind: LinkData, Seq: p.seq, Msg: p.msg})
		}
	}
	out.SetTimer(l.Period)
}

// applyInnerCommands folds the inner actor's emitted commands into the link
// state (timers pass through untouched; sends to Peer are sequenced and
// buffered for retransmission).
func applyInnerCommands[S comparable, M comparable](st *LinkState[S, M], cmds []actorid.Command[M], out *actorid.Out[LinkMsg[M]]) {
	for _, c := range cmds {
		switch c.Kind {
		case actorid.CommandSend:
			seq := st.NextSendSeq
			st.NextSendSeq++
			for i := range st.Pending {
				if !st.Pending[i].active {
					st.Pending[i] = pendingMsg[M]{seq: seq, msg: c.Msg, active: true}
					break
				}
			}
			out.Send(c.Dst, LinkMsg[M]{Kind: LinkData, Seq: seq, Msg: c.Msg})
		case actorid.CommandSetTimer:
			out.SetTimer(c.Duration)
		case actorid.CommandCancelTimer:
			out.CancelTimer()
		}
	}
}
