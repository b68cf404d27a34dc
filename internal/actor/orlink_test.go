package actor

import (
	"testing"

	"github.com/latticefoundry/actorcheck/internal/actorid"
	"github.com/latticefoundry/actorcheck/internal/state"
)

// echoActor immediately replies to any message with the same payload sent
// back to the peer it came from. Good enough to exercise ORLink mechanics.
type echoActor struct{ NoTimeout[string, int] }

func (echoActor) OnStart(actorid.Id, *actorid.Out[string]) int { return 0 }

func (echoActor) OnMsg(id actorid.Id, st *state.Handle[int], src actorid.Id, msg string, out *actorid.Out[string]) {
	st.Set(st.Value() + 1)
	out.Send(src, msg)
}

func TestORLinkSequencesAndAcksData(t *testing.T) {
	link := ORLink[int, string]{Inner: echoActor{}, Peer: 1, Period: actorid.ModelTimeout()}

	out := actorid.NewOut[LinkMsg[string]]()
	initial := link.OnStart(0, out)
	if startCmds := out.Commands(); len(startCmds) != 1 || startCmds[0].Kind != actorid.CommandSetTimer {
		t.Fatalf("echoActor.OnStart emits nothing, so ORLink.OnStart must only arm the retransmit timer, got %+v", startCmds)
	}
	_ = initial

	h := state.Borrow(initial)
	deliverOut := actorid.NewOut[LinkMsg[string]]()
	link.OnMsg(0, h, 1, LinkMsg[string]{Kind: LinkData, Seq: 0, Msg: "ping"}, deliverOut)

	cmds := deliverOut.Commands()
	if len(cmds) != 2 {
		t.Fatalf("expected an ack plus the echoed reply, got %+v", cmds)
	}
	if cmds[0].Kind != actorid.CommandSend || cmds[0].Msg.Kind != LinkAck || cmds[0].Msg.Seq != 0 {
		t.Errorf("first command should ack seq 0, got %+v", cmds[0])
	}
	if cmds[1].Msg.Kind != LinkData || cmds[1].Msg.Msg != "ping" {
		t.Errorf("second command should carry the echoed payload, got %+v", cmds[1])
	}
	if h.Value().Inner != 1 {
		t.Errorf("inner echo actor state should have advanced to 1, got %d", h.Value().Inner)
	}
}

func TestORLinkDropsDuplicateDelivery(t *testing.T) {
	link := ORLink[int, string]{Inner: echoActor{}, Peer: 1, Period: actorid.ModelTimeout()}
	out := actorid.NewOut[LinkMsg[string]]()
	initial := link.OnStart(0, out)
	h := state.Borrow(initial)

	first := actorid.NewOut[LinkMsg[string]]()
	link.OnMsg(0, h, 1, LinkMsg[string]{Kind: LinkData, Seq: 0, Msg: "ping"}, first)

	second := actorid.NewOut[LinkMsg[string]]()
	link.OnMsg(0, h, 1, LinkMsg[string]{Kind: LinkData, Seq: 0, Msg: "ping"}, second)

	cmds := second.Commands()
	if len(cmds) != 1 || cmds[0].Msg.Kind != LinkAck {
		t.Fatalf("duplicate delivery must only re-ack, got %+v", cmds)
	}
	if h.Value().Inner != 1 {
		t.Errorf("duplicate delivery must not re-invoke the inner actor, got inner=%d", h.Value().Inner)
	}
}

func TestORLinkRetransmitsOnTimeout(t *testing.T) {
	link := ORLink[int, string]{Inner: echoActor{}, Peer: 1, Period: actorid.ModelTimeout()}
	out := actorid.NewOut[LinkMsg[string]]()
	initial := link.OnStart(0, out)
	h := state.Borrow(initial)

	deliverOut := actorid.NewOut[LinkMsg[string]]()
	link.OnMsg(0, h, 1, LinkMsg[string]{Kind: LinkData, Seq: 0, Msg: "ping"}, deliverOut)

	timeoutOut := actorid.NewOut[LinkMsg[string]]()
	link.OnTimeout(0, h, timeoutOut)

	found := false
	for _, c := range timeoutOut.Commands() {
		if c.Kind == actorid.CommandSend && c.Msg.Kind == LinkData && c.Msg.Msg == "ping" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected unacked reply to be retransmitted on timeout, got %+v", timeoutOut.Commands())
	}

	ackOut := actorid.NewOut[LinkMsg[string]]()
	link.OnMsg(0, h, 1, LinkMsg[string]{Kind: LinkAck, Seq: 0}, ackOut)
	if !ackOut.Empty() {
		t.Errorf("acking a pending send should not itself emit commands, got %+v", ackOut.Commands())
	}

	timeoutOut2 := actorid.NewOut[LinkMsg[string]]()
	link.OnTimeout(0, h, timeoutOut2)
	for _, c := range timeoutOut2.Commands() {
		if c.Kind == actorid.CommandSend {
			t.Errorf("acked send must not be retransmitted again, got %+v", timeoutOut2.Commands())
		}
	}
}
