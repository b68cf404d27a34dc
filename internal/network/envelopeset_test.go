package network

import (
	"testing"

	"github.com/latticefoundry/actorcheck/internal/actorid"
)

func TestInsertCollapsesDuplicates(t *testing.T) {
	s := NewEnvelopeSet[string]()
	env := actorid.Envelope[string]{Src: 0, Dst: 1, Msg: "hi"}
	s.Insert(env)
	s.Insert(env)
	if s.Len() != 1 {
		t.Fatalf("inserting an equal envelope twice must not grow the set, got len=%d", s.Len())
	}
}

func TestCloneIsIndependent(t *testing.T) {
	s := NewEnvelopeSet[string](actorid.Envelope[string]{Src: 0, Dst: 1, Msg: "a"})
	clone := s.Clone()
	clone.Insert(actorid.Envelope[string]{Src: 0, Dst: 1, Msg: "b"})
	if s.Len() != 1 {
		t.Fatalf("mutating a clone must not affect the original, original len=%d", s.Len())
	}
}

func TestSortedIsDeterministic(t *testing.T) {
	s := NewEnvelopeSet[int](
		actorid.Envelope[int]{Src: 1, Dst: 0, Msg: 2},
		actorid.Envelope[int]{Src: 0, Dst: 1, Msg: 1},
		actorid.Envelope[int]{Src: 0, Dst: 0, Msg: 3},
	)
	for i := 0; i < 5; i++ {
		got := s.Sorted()
		if len(got) != 3 {
			t.Fatalf("expected 3 envelopes, got %d", len(got))
		}
		if got[0].Dst != 0 || got[0].Src != 0 {
			t.Fatalf("expected (0,0) first, got %+v", got[0])
		}
		if got[1].Src != 0 || got[1].Dst != 1 {
			t.Fatalf("expected (0,1) second, got %+v", got[1])
		}
		if got[2].Src != 1 {
			t.Fatalf("expected src=1 last, got %+v", got[2])
		}
	}
}

func TestEqualIgnoresOrder(t *testing.T) {
	a := NewEnvelopeSet[int](
		actorid.Envelope[int]{Src: 0, Dst: 1, Msg: 1},
		actorid.Envelope[int]{Src: 1, Dst: 0, Msg: 2},
	)
	b := NewEnvelopeSet[int](
		actorid.Envelope[int]{Src: 1, Dst: 0, Msg: 2},
		actorid.Envelope[int]{Src: 0, Dst: 1, Msg: 1},
	)
	if !a.Equal(b) {
		t.Errorf("sets with the same envelopes in different insertion order must be equal")
	}
	b.Remove(actorid.Envelope[int]{Src: 1, Dst: 0, Msg: 2})
	if a.Equal(b) {
		t.Errorf("sets with different contents must not be equal")
	}
}
