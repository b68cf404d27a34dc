// Command actorcheck is a thin CLI harness around the model-checking core:
// it loads a config.Scenario, builds the named built-in system, drives
// internal/explore's reference BFS explorer over it, and prints an
// ExplorationReport as JSON (or JUnit XML with -junit), exiting non-zero
// when a property fails. spec.md §1 names CLI wiring as out of scope
// for the core itself, so this binary is a demonstration harness in the
// style of the teacher's many single-purpose cmd/orizon-* binaries, not a
// feature surface of its own.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/latticefoundry/actorcheck/internal/actor"
	"github.com/latticefoundry/actorcheck/internal/checker"
	"github.com/latticefoundry/actorcheck/internal/config"
	"github.com/latticefoundry/actorcheck/internal/examples/pingpong"
	"github.com/latticefoundry/actorcheck/internal/examples/registerdemo"
	"github.com/latticefoundry/actorcheck/internal/explore"
	"github.com/latticefoundry/actorcheck/internal/history"
	"github.com/latticefoundry/actorcheck/internal/register"
)

func main() {
	scenarioPath := flag.String("scenario", "", "path to a scenario JSON file")
	junit := flag.Bool("junit", false, "emit the report as JUnit XML instead of JSON")
	flag.Parse()

	if *scenarioPath == "" {
		log.Fatal("actorcheck: -scenario is required")
	}
	f, err := os.Open(*scenarioPath)
	if err != nil {
		log.Fatalf("actorcheck: %v", err)
	}
	defer f.Close()

	scenario, err := config.Load(f)
	if err != nil {
		log.Fatalf("actorcheck: invalid scenario: %v", err)
	}

	report, err := run(context.Background(), scenario)
	if err != nil {
		log.Fatalf("actorcheck: %v", err)
	}

	if *junit {
		if err := report.WriteJUnitXML(os.Stdout); err != nil {
			log.Fatalf("actorcheck: writing report: %v", err)
		}
	} else if err := json.NewEncoder(os.Stdout).Encode(report); err != nil {
		log.Fatalf("actorcheck: writing report: %v", err)
	}
	if !report.Passed() {
		os.Exit(1)
	}
}

// run builds and explores the scenario's named system. It is factored out
// of main so the CLI's exit-code/output-format concerns stay separate from
// exploration itself.
func run(ctx context.Context, scenario config.Scenario) (*checker.ExplorationReport, error) {
	budget := explore.DefaultBudget()
	if scenario.MaxStates > 0 {
		budget.MaxStates = scenario.MaxStates
	}
	if scenario.MaxDepth > 0 {
		budget.MaxDepth = scenario.MaxDepth
	}

	start := time.Now()
	switch scenario.System {
	case "pingpong":
		sys := pingpong.System{
			MaxNat:      scenario.MaxNat,
			Lossy:       scenario.LossyPolicy(),
			Duplicating: scenario.DuplicatingPolicy(),
			Props: []checker.Property[pingpong.Msg, int, checker.NoHistory]{
				checker.AlwaysProperty("delta within 1", pingpong.DeltaWithinOne),
				checker.SometimesProperty("reaches max", pingpong.ReachesMax(scenario.MaxNat)),
			},
		}
		model := checker.NewSystemModel[pingpong.Msg, int, checker.NoHistory](sys)
		res, err := explore.Explore(ctx, model, budget)
		if err != nil {
			return nil, fmt.Errorf("exploring pingpong: %w", err)
		}
		return explore.ToReport(res, int64(time.Since(start))), nil

	case "register":
		servers := make([]actor.Actor[register.Msg, byte], scenario.ServerCount)
		for i := range servers {
			servers[i] = registerdemo.Server{}
		}
		sys := register.System[byte]{
			Servers:     servers,
			ClientCount: scenario.ClientCount,
			Lossy:       scenario.LossyPolicy(),
			Duplicating: scenario.DuplicatingPolicy(),
		}
		model := checker.NewSystemModel[register.Msg, register.CompositeState[byte], history.Tester](sys)
		res, err := explore.Explore(ctx, model, budget)
		if err != nil {
			return nil, fmt.Errorf("exploring register: %w", err)
		}
		return explore.ToReport(res, int64(time.Since(start))), nil

	default:
		return nil, fmt.Errorf("unknown system %q", scenario.System)
	}
}
