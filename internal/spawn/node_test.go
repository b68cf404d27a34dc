package spawn

import (
	"bytes"
	"encoding/gob"
	"testing"

	"github.com/latticefoundry/actorcheck/internal/actorid"
)

func TestWireEnvelopeGobRoundTrip(t *testing.T) {
	type payload struct {
		Kind int
		N    int
	}
	original := wireEnvelope[payload]{Src: actorid.FromIndex(0), Dst: actorid.FromIndex(1), Msg: payload{Kind: 1, N: 5}}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(original); err != nil {
		t.Fatalf("encode: %v", err)
	}
	var decoded wireEnvelope[payload]
	if err := gob.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded != original {
		t.Fatalf("round-trip mismatch: got %+v, want %+v", decoded, original)
	}
}
