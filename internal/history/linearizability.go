package history

import (
	"math"

	"github.com/latticefoundry/actorcheck/internal/actorid"
)

// entry is one invoke or return event, tagged with a logical clock (its
// position in the global event log) so real-time ordering between
// operations from different actors can be recovered without wall-clock
// timestamps — appropriate since the model checker has no wall clock, only
// a sequence of transitions.
type entry struct {
	actor  actorid.Id
	clock  int
	invoke bool
	op     Op
	ret    Ret
}

// Tester is the black-box linearizability-tester History type the register
// harness threads through a model run via on_invoke/on_return. It is
// immutable: every mutating method returns a new value, matching the
// functional style spec.md §9 requires of auxiliary history state.
type Tester struct {
	events []entry
	clock  int
}

// Clone satisfies checker.Cloneable; the event log and clock are plain
// value types so a shallow slice copy is sufficient for independence
// across snapshots.
func (t Tester) Clone() Tester {
	events := make([]entry, len(t.events))
	copy(events, t.events)
	return Tester{events: events, clock: t.clock}
}

// OnInvoke records actorID beginning op.
func (t Tester) OnInvoke(actorID actorid.Id, op Op) Tester {
	next := t.Clone()
	next.events = append(next.events, entry{actor: actorID, clock: next.clock, invoke: true, op: op})
	next.clock++
	return next
}

// OnReturn records actorID completing its pending operation with ret.
func (t Tester) OnReturn(actorID actorid.Id, ret Ret) Tester {
	next := t.Clone()
	next.events = append(next.events, entry{actor: actorID, clock: next.clock, invoke: false, ret: ret})
	next.clock++
	return next
}

type interval struct {
	actor        actorid.Id
	op           Op
	ret          Ret
	invokeClock  int
	returnClock  int
	hasReturn    bool
	matchedRetOk bool
}

// intervals pairs each actor's invoke with its next return, in program
// order per actor (an actor never has two operations in flight at once in
// this harness, so program order alone determines pairing). A Write that
// has been invoked but not yet returned may already have taken effect, so
// it is included too, with no return (it never precedes another interval
// in real time); a Read still in flight constrains nothing and is left out.
func (t Tester) intervals() []interval {
	var out []interval
	pending := make(map[actorid.Id]*interval)
	for _, e := range t.events {
		if e.invoke {
			iv := &interval{actor: e.actor, op: e.op, invokeClock: e.clock}
			pending[e.actor] = iv
		} else if iv, ok := pending[e.actor]; ok {
			iv.ret = e.ret
			iv.returnClock = e.clock
			iv.hasReturn = true
			iv.matchedRetOk = matches(iv.op, iv.ret)
			out = append(out, *iv)
			delete(pending, e.actor)
		}
	}
	for _, e := range t.events {
		if iv, ok := pending[e.actor]; ok && e.invoke && e.clock == iv.invokeClock && iv.op.Kind == Write {
			iv.returnClock = math.MaxInt
			out = append(out, *iv)
		}
	}
	return out
}

// SerializedHistory reports whether the recorded history is linearizable
// with respect to a last-writer-wins register: it succeeds iff some
// permutation of the completed intervals and the still-pending writes,
// consistent with each interval's real-time order (an interval that
// returned before another invoked must precede it), reproduces every
// recorded return value when applied in order to a register starting at
// zero. On success it returns the witnessing sequential order of
// operations.
func (t Tester) SerializedHistory() ([]Op, bool) {
	ivs := t.intervals()
	for _, iv := range ivs {
		if iv.hasReturn && !iv.matchedRetOk {
			return nil, false
		}
	}
	order, ok := linearize(ivs, 0)
	return order, ok
}

func linearize(remaining []interval, regValue int) ([]Op, bool) {
	if len(remaining) == 0 {
		return nil, true
	}
	for i, candidate := range remaining {
		if !isMinimal(remaining, i) {
			continue
		}
		nextValue := regValue
		ok := true
		switch candidate.op.Kind {
		case Read:
			ok = candidate.ret.Value == regValue
		case Write:
			nextValue = candidate.op.Value
		}
		if !ok {
			continue
		}
		rest := make([]interval, 0, len(remaining)-1)
		rest = append(rest, remaining[:i]...)
		rest = append(rest, remaining[i+1:]...)
		if tail, ok := linearize(rest, nextValue); ok {
			return append([]Op{candidate.op}, tail...), true
		}
	}
	return nil, false
}

// isMinimal reports whether remaining[i] has no real-time predecessor still
// present in remaining: no other interval's return happened strictly
// before this one's invoke.
func isMinimal(remaining []interval, i int) bool {
	for j, other := range remaining {
		if j == i {
			continue
		}
		if other.returnClock < remaining[i].invokeClock {
			return false
		}
	}
	return true
}
