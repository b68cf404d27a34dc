package actorid

import "fmt"

// Envelope is the immutable (src, dst, msg) triple carried on the network.
// Two envelopes with equal fields are indistinguishable: a duplicating
// network can redeliver either one, so the network models them as a set,
// never a multiset.
type Envelope[M comparable] struct {
	Src Id
	Dst Id
	Msg M
}

// String gives a stable rendering used for debug output (e.g. when printing
// a Drop action). Ordering does not use it; see Less.
func (e Envelope[M]) String() string {
	return fmt.Sprintf("%s->%s: %v", e.Src, e.Dst, e.Msg)
}

// Less provides the total order spec.md §3 requires for deterministic
// enumeration: by source, then destination, then a stable string rendering
// of the message (messages are opaque to this package, so a generic
// comparison has no other stable handle to use).
func (e Envelope[M]) Less(other Envelope[M]) bool {
	if e.Src != other.Src {
		return e.Src < other.Src
	}
	if e.Dst != other.Dst {
		return e.Dst < other.Dst
	}
	return fmt.Sprintf("%#v", e.Msg) < fmt.Sprintf("%#v", other.Msg)
}
