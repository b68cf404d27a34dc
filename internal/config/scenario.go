// Package config loads the JSON scenario files the cmd/actorcheck binary
// feeds to the reference explorer. The core model checker has no file
// format of its own (spec.md §6: "CLI / env / file formats: none"), but the
// ambient stack around it needs one to describe an exploration run
// declaratively rather than only as Go literals. Grounded on the teacher's
// packagemanager lockfile loading (internal/packagemanager/lockfile.go),
// which validates a loaded document against a semver constraint before use.
package config

import (
	"encoding/json"
	"io"

	"github.com/Masterminds/semver/v3"

	"github.com/latticefoundry/actorcheck/internal/errs"
	"github.com/latticefoundry/actorcheck/internal/network"
)

// MinEngineVersion is the lowest Scenario.SchemaVersion this build accepts.
// Bumped whenever a Scenario field's meaning changes incompatibly.
const MinEngineVersion = "1.0.0"

// Scenario describes one exploration run: which built-in system to build,
// its sizing knobs, and the network policy to explore it under.
type Scenario struct {
	SchemaVersion string `json:"schema_version"`
	System        string `json:"system"`
	MaxNat        int    `json:"max_nat,omitempty"`
	ServerCount   int    `json:"server_count,omitempty"`
	ClientCount   int    `json:"client_count,omitempty"`
	Lossy         bool   `json:"lossy"`
	Duplicating   bool   `json:"duplicating"`
	MaxStates     int    `json:"max_states,omitempty"`
	MaxDepth      int    `json:"max_depth,omitempty"`
}

// Load decodes a Scenario from r and validates it: SchemaVersion must
// satisfy MinEngineVersion, System must name a built-in system, and every
// sizing knob that applies to it must be positive.
func Load(r io.Reader) (Scenario, error) {
	var s Scenario
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return Scenario{}, errs.New(errs.CategoryConfig, "DECODE_FAILED", err.Error(), nil)
	}
	if err := s.Validate(); err != nil {
		return Scenario{}, err
	}
	return s, nil
}

// Validate checks schema compatibility and field ranges without
// constructing a model. It is exported separately from Load so that a
// Scenario built programmatically (e.g. in tests) can be validated the
// same way a file-loaded one is.
func (s Scenario) Validate() error {
	if err := checkSchemaVersion(s.SchemaVersion); err != nil {
		return err
	}
	switch s.System {
	case "pingpong":
		if s.MaxNat <= 0 {
			return errs.InvalidScenario("max_nat", s.MaxNat, "must be positive for the pingpong system")
		}
	case "register":
		if s.ServerCount <= 0 {
			return errs.InvalidScenario("server_count", s.ServerCount, "must be positive for the register system")
		}
		if s.ClientCount <= 0 {
			return errs.InvalidScenario("client_count", s.ClientCount, "must be positive for the register system")
		}
	default:
		return errs.InvalidScenario("system", s.System, `must be one of "pingpong", "register"`)
	}
	return nil
}

func checkSchemaVersion(raw string) error {
	got, err := semver.NewVersion(raw)
	if err != nil {
		return errs.InvalidScenario("schema_version", raw, "not a valid semantic version")
	}
	constraint, err := semver.NewConstraint(">= " + MinEngineVersion)
	if err != nil {
		// MinEngineVersion is a package constant; a parse failure here is
		// a programming error in this package, not user input.
		panic("config: MinEngineVersion is not a valid semver constraint: " + err.Error())
	}
	if !constraint.Check(got) {
		return errs.UnsupportedSchemaVersion(raw, MinEngineVersion)
	}
	return nil
}

// LossyPolicy and DuplicatingPolicy translate the scenario's plain booleans
// into the checker's network policy enums.
func (s Scenario) LossyPolicy() network.Lossy {
	if s.Lossy {
		return network.LossyYes
	}
	return network.LossyNo
}

func (s Scenario) DuplicatingPolicy() network.Duplicating {
	if s.Duplicating {
		return network.DuplicatingYes
	}
	return network.DuplicatingNo
}
