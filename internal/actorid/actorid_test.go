package actorid

import "testing"

func TestMajority(t *testing.T) {
	cases := map[int]int{1: 1, 2: 2, 3: 2, 4: 3, 5: 3}
	for size, want := range cases {
		if got := Majority(size); got != want {
			t.Errorf("Majority(%d) = %d, want %d", size, got, want)
		}
	}
}

func TestPeers(t *testing.T) {
	got := Peers(1, 4)
	want := []Id{0, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("Peers(1, 4) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Peers(1, 4) = %v, want %v", got, want)
		}
	}
}

func TestEnvelopeLess(t *testing.T) {
	a := Envelope[int]{Src: 0, Dst: 1, Msg: 5}
	b := Envelope[int]{Src: 0, Dst: 2, Msg: 1}
	if !a.Less(b) {
		t.Errorf("expected envelope with smaller dst to sort first")
	}
	if b.Less(a) {
		t.Errorf("Less must not be symmetric for distinct envelopes")
	}
}

func TestOutPreservesOrderAndAppend(t *testing.T) {
	out := NewOut[string]()
	out.SetTimer(ModelTimeout())
	out.Send(1, "hello")
	out.CancelTimer()

	cmds := out.Commands()
	if len(cmds) != 3 {
		t.Fatalf("expected 3 commands, got %d", len(cmds))
	}
	if cmds[0].Kind != CommandSetTimer || cmds[1].Kind != CommandSend || cmds[2].Kind != CommandCancelTimer {
		t.Fatalf("commands out of order: %+v", cmds)
	}

	other := NewOut[string]()
	other.Send(2, "world")
	out.Append(other)
	if !other.Empty() {
		t.Errorf("Append must drain the source buffer")
	}
	if len(out.Commands()) != 4 {
		t.Fatalf("expected 4 commands after append, got %d", len(out.Commands()))
	}
}

func TestBroadcastSendsToEveryRecipient(t *testing.T) {
	out := NewOut[int]()
	out.Broadcast([]Id{1, 2, 3}, 42)
	cmds := out.Commands()
	if len(cmds) != 3 {
		t.Fatalf("expected 3 sends, got %d", len(cmds))
	}
	for i, dst := range []Id{1, 2, 3} {
		if cmds[i].Dst != dst || cmds[i].Msg != 42 {
			t.Errorf("broadcast command %d = %+v, want dst=%v msg=42", i, cmds[i], dst)
		}
	}
}
