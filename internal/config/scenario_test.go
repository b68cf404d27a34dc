package config_test

import (
	"strings"
	"testing"

	"github.com/latticefoundry/actorcheck/internal/config"
)

func TestLoadValidPingpongScenario(t *testing.T) {
	body := `{"schema_version":"1.0.0","system":"pingpong","max_nat":5,"lossy":true,"duplicating":true}`
	s, err := config.Load(strings.NewReader(body))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.System != "pingpong" || s.MaxNat != 5 {
		t.Fatalf("unexpected scenario: %+v", s)
	}
}

func TestLoadRejectsOldSchemaVersion(t *testing.T) {
	body := `{"schema_version":"0.1.0","system":"pingpong","max_nat":5}`
	if _, err := config.Load(strings.NewReader(body)); err == nil {
		t.Fatalf("expected an error for a schema_version below MinEngineVersion")
	}
}

func TestLoadRejectsUnknownSystem(t *testing.T) {
	body := `{"schema_version":"1.0.0","system":"nonexistent"}`
	if _, err := config.Load(strings.NewReader(body)); err == nil {
		t.Fatalf("expected an error for an unknown system name")
	}
}

func TestLoadRejectsNonPositiveMaxNat(t *testing.T) {
	body := `{"schema_version":"1.0.0","system":"pingpong","max_nat":0}`
	if _, err := config.Load(strings.NewReader(body)); err == nil {
		t.Fatalf("expected an error for a non-positive max_nat")
	}
}

func TestLoadValidRegisterScenario(t *testing.T) {
	body := `{"schema_version":"1.0.0","system":"register","server_count":1,"client_count":2}`
	s, err := config.Load(strings.NewReader(body))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.ServerCount != 1 || s.ClientCount != 2 {
		t.Fatalf("unexpected scenario: %+v", s)
	}
}
