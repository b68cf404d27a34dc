package checker_test

import (
	"context"
	"testing"

	"github.com/latticefoundry/actorcheck/internal/actor"
	"github.com/latticefoundry/actorcheck/internal/actorid"
	"github.com/latticefoundry/actorcheck/internal/checker"
	"github.com/latticefoundry/actorcheck/internal/examples/pingpong"
	"github.com/latticefoundry/actorcheck/internal/explore"
	"github.com/latticefoundry/actorcheck/internal/network"
	"github.com/latticefoundry/actorcheck/internal/state"
)

func deltaProp() checker.Property[pingpong.Msg, int, checker.NoHistory] {
	return checker.AlwaysProperty("delta within 1", pingpong.DeltaWithinOne)
}

func reachesMaxProp(maxNat int) checker.Property[pingpong.Msg, int, checker.NoHistory] {
	return checker.SometimesProperty("reaches max", pingpong.ReachesMax(maxNat))
}

func lessThanMaxProp(maxNat int) checker.Property[pingpong.Msg, int, checker.NoHistory] {
	return checker.AlwaysProperty("less than max", pingpong.LessThanMax(maxNat))
}

// E1: lossy+duplicating, max_nat=1 reaches exactly 14 distinct snapshots.
func TestE1LossyDuplicatingMaxNatOneReaches14States(t *testing.T) {
	sys := pingpong.System{
		MaxNat:      1,
		Lossy:       network.LossyYes,
		Duplicating: network.DuplicatingYes,
		Props:       []checker.Property[pingpong.Msg, int, checker.NoHistory]{deltaProp()},
	}
	model := checker.NewSystemModel[pingpong.Msg, int, checker.NoHistory](sys)
	res, err := explore.Explore(context.Background(), model, explore.DefaultBudget())
	if err != nil {
		t.Fatalf("explore: %v", err)
	}
	if res.StatesVisited != 14 {
		t.Errorf("expected 14 distinct snapshots, got %d", res.StatesVisited)
	}
}

// E2: lossy+duplicating, max_nat=5 reaches 4094 snapshots with the delta
// safety property intact.
func TestE2LossyDuplicatingMaxNatFiveHoldsDelta(t *testing.T) {
	sys := pingpong.System{
		MaxNat:      5,
		Lossy:       network.LossyYes,
		Duplicating: network.DuplicatingYes,
		Props:       []checker.Property[pingpong.Msg, int, checker.NoHistory]{deltaProp()},
	}
	model := checker.NewSystemModel[pingpong.Msg, int, checker.NoHistory](sys)
	res, err := explore.Explore(context.Background(), model, explore.DefaultBudget())
	if err != nil {
		t.Fatalf("explore: %v", err)
	}
	if res.StatesVisited != 4094 {
		t.Errorf("expected 4094 distinct snapshots, got %d", res.StatesVisited)
	}
	for _, p := range res.Properties {
		if p.Name == "delta within 1" && !p.Holds {
			t.Errorf("delta within 1 must hold, counterexample: %v", p.Counterexample)
		}
	}
}

// E3: on a lossy network, "reaches max" is not guaranteed; Dropping the
// very first Ping is a one-step witness that the system can get stuck.
func TestE3MayNeverReachMaxOnLossyNetwork(t *testing.T) {
	sys := pingpong.System{
		MaxNat:      5,
		Lossy:       network.LossyYes,
		Duplicating: network.DuplicatingYes,
		Props:       []checker.Property[pingpong.Msg, int, checker.NoHistory]{reachesMaxProp(5)},
	}
	model := checker.NewSystemModel[pingpong.Msg, int, checker.NoHistory](sys)

	init := model.InitStates()[0]
	var actions []checker.SystemAction[pingpong.Msg]
	model.Actions(init, &actions)

	var dropFirstPing *checker.SystemAction[pingpong.Msg]
	for _, a := range actions {
		if a.Kind == checker.ActionDrop && a.Env.Src == actorid.FromIndex(0) && a.Env.Dst == actorid.FromIndex(1) {
			cp := a
			dropFirstPing = &cp
		}
	}
	if dropFirstPing == nil {
		t.Fatalf("expected a Drop action for the initial Ping(0) envelope")
	}
	stuck, ok := model.NextState(init, *dropFirstPing)
	if !ok {
		t.Fatalf("dropping the only envelope must yield a successor")
	}
	if stuck.Network.Len() != 0 {
		t.Errorf("network must be empty after dropping the only envelope")
	}
	if pingpong.ReachesMax(5)(model, stuck) {
		t.Errorf("a system with an empty network and zero counters cannot have reached max")
	}
}

// E4: a perfect (lossless, non-duplicating) network reaches exactly 11
// snapshots; "reaches max" holds, and "less than max" is falsified with
// final actor states (5, 5).
func TestE4PerfectNetworkReaches11StatesAndHitsMax(t *testing.T) {
	sys := pingpong.System{
		MaxNat:      5,
		Lossy:       network.LossyNo,
		Duplicating: network.DuplicatingNo,
		Props: []checker.Property[pingpong.Msg, int, checker.NoHistory]{
			reachesMaxProp(5),
			lessThanMaxProp(5),
		},
	}
	model := checker.NewSystemModel[pingpong.Msg, int, checker.NoHistory](sys)
	res, err := explore.Explore(context.Background(), model, explore.DefaultBudget())
	if err != nil {
		t.Fatalf("explore: %v", err)
	}
	if res.StatesVisited != 11 {
		t.Errorf("expected 11 distinct snapshots, got %d", res.StatesVisited)
	}

	var reachesMax, lessThanMax *explore.PropertyOutcome[pingpong.Msg]
	for i := range res.Properties {
		switch res.Properties[i].Name {
		case "reaches max":
			reachesMax = &res.Properties[i]
		case "less than max":
			lessThanMax = &res.Properties[i]
		}
	}
	if reachesMax == nil || !reachesMax.Holds {
		t.Errorf("reaches max must be witnessed on a perfect network")
	}
	if lessThanMax == nil || lessThanMax.Holds {
		t.Errorf("less than max must be falsified once both actors saturate at MaxNat")
	}
}

// E6: a single actor that arms a timer on start and does nothing on
// message or timeout produces exactly 2 snapshots.
type timerOnceMsg struct{}

type timerOnceActor struct{}

func (timerOnceActor) OnStart(id actorid.Id, out *actorid.Out[timerOnceMsg]) int {
	out.SetTimer(actorid.ModelTimeout())
	return 0
}

func (timerOnceActor) OnMsg(actorid.Id, *state.Handle[int], actorid.Id, timerOnceMsg, *actorid.Out[timerOnceMsg]) {
}

func (timerOnceActor) OnTimeout(actorid.Id, *state.Handle[int], *actorid.Out[timerOnceMsg]) {}

type timerOnceSystem struct {
	checker.BaseSystem[timerOnceMsg, int, checker.NoHistory]
}

func (timerOnceSystem) Actors() []actor.Actor[timerOnceMsg, int] {
	return []actor.Actor[timerOnceMsg, int]{timerOnceActor{}}
}

func (timerOnceSystem) Properties() []checker.Property[timerOnceMsg, int, checker.NoHistory] {
	return nil
}

func TestE6TimerResetProducesExactlyTwoStates(t *testing.T) {
	model := checker.NewSystemModel[timerOnceMsg, int, checker.NoHistory](timerOnceSystem{})
	res, err := explore.Explore(context.Background(), model, explore.DefaultBudget())
	if err != nil {
		t.Fatalf("explore: %v", err)
	}
	if res.StatesVisited != 2 {
		t.Errorf("expected exactly 2 snapshots (timer-set, timer-cleared), got %d", res.StatesVisited)
	}
}
