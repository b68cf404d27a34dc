package checker

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"time"
)

// ExplorationReport summarizes one run of an explorer over a SystemModel:
// how many states and actions were visited and the verdict for every
// property the system declared. Adapted from the teacher's compiler test
// reporting (internal/testing/report.go) for a model-checking run instead
// of a compiler test suite: a PropertyResult plays the role of a TestCase,
// and a counterexample trace plays the role of a test failure's content.
type ExplorationReport struct {
	Timestamp       time.Time         `json:"timestamp" xml:"timestamp,attr"`
	Duration        time.Duration     `json:"duration" xml:"duration,attr"`
	StatesExplored  int               `json:"states_explored" xml:"states_explored,attr"`
	ActionsExplored int               `json:"actions_explored" xml:"actions_explored,attr"`
	MaxDepth        int               `json:"max_depth" xml:"max_depth,attr"`
	Properties      []*PropertyResult `json:"properties" xml:"property"`
}

// PropertyResult is the verdict for a single named property: Always
// properties hold unless Counterexample is populated; Sometimes properties
// hold once Witnessed is true.
type PropertyResult struct {
	Name           string   `json:"name" xml:"name,attr"`
	Kind           string   `json:"kind" xml:"kind,attr"`
	Holds          bool     `json:"holds" xml:"holds,attr"`
	Witnessed      bool     `json:"witnessed" xml:"witnessed,attr"`
	Counterexample []string `json:"counterexample,omitempty" xml:"counterexample>step,omitempty"`
}

// Passed reports whether this property's run produced no failure: an
// Always property with no counterexample, or a Sometimes property that was
// witnessed.
func (p *PropertyResult) Passed() bool {
	if p.Kind == Sometimes.String() {
		return p.Witnessed
	}
	return len(p.Counterexample) == 0
}

// Passed reports whether every property in the report passed.
func (r *ExplorationReport) Passed() bool {
	for _, p := range r.Properties {
		if !p.Passed() {
			return false
		}
	}
	return true
}

// WriteJSON writes the report as indented JSON.
func (r *ExplorationReport) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteJUnitXML writes the report as a JUnit-style testsuite document, one
// testcase per property, so exploration runs can be consumed by the same
// CI tooling that ingests unit test reports.
func (r *ExplorationReport) WriteJUnitXML(w io.Writer) error {
	if _, err := w.Write([]byte(xml.Header)); err != nil {
		return err
	}
	failures := 0
	for _, p := range r.Properties {
		if !p.Passed() {
			failures++
		}
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	start := xml.StartElement{
		Name: xml.Name{Local: "testsuite"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "name"}, Value: "actorcheck"},
			{Name: xml.Name{Local: "tests"}, Value: fmt.Sprintf("%d", len(r.Properties))},
			{Name: xml.Name{Local: "failures"}, Value: fmt.Sprintf("%d", failures)},
			{Name: xml.Name{Local: "time"}, Value: fmt.Sprintf("%.3f", r.Duration.Seconds())},
			{Name: xml.Name{Local: "timestamp"}, Value: r.Timestamp.Format(time.RFC3339)},
		},
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	for _, p := range r.Properties {
		caseStart := xml.StartElement{
			Name: xml.Name{Local: "testcase"},
			Attr: []xml.Attr{
				{Name: xml.Name{Local: "name"}, Value: p.Name},
				{Name: xml.Name{Local: "classname"}, Value: p.Kind},
			},
		}
		if err := enc.EncodeToken(caseStart); err != nil {
			return err
		}
		if !p.Passed() {
			failStart := xml.StartElement{Name: xml.Name{Local: "failure"}}
			if err := enc.EncodeToken(failStart); err != nil {
				return err
			}
			for _, step := range p.Counterexample {
				if err := enc.EncodeToken(xml.CharData(step + "\n")); err != nil {
					return err
				}
			}
			if err := enc.EncodeToken(failStart.End()); err != nil {
				return err
			}
		}
		if err := enc.EncodeToken(caseStart.End()); err != nil {
			return err
		}
	}
	if err := enc.EncodeToken(start.End()); err != nil {
		return err
	}
	return enc.Flush()
}
