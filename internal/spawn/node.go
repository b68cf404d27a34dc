// Package spawn is the real-network runtime spec.md §1 names as an
// out-of-scope external collaborator ("The real-network 'spawn' runtime
// that runs actors over datagram sockets"). original_source/src/actor.rs
// documents its Rust counterpart as communicating over a UDP socket; this
// package supplies a genuinely runnable substitute over QUIC (a real,
// idiomatic modern replacement for raw UDP framing, grounded on the
// teacher's internal/runtime/netstack QUIC/HTTP3 usage) without changing
// the deterministic core's semantics — a Node runs the exact same
// actor.Actor[M, S] contract the checker model-checks, just once, for
// real, instead of exhaustively.
package spawn

import (
	"context"
	"encoding/gob"
	"fmt"
	"sync"
	"time"

	quic "github.com/quic-go/quic-go"

	"github.com/latticefoundry/actorcheck/internal/actor"
	"github.com/latticefoundry/actorcheck/internal/actorid"
	"github.com/latticefoundry/actorcheck/internal/errs"
	"github.com/latticefoundry/actorcheck/internal/state"
)

const alpn = "actorcheck/1"

// PeerTable maps every actor Id in a deployment to the QUIC address it is
// reachable at, the network-topology counterpart of the model checker's
// actor vector (spec.md §3: "Id(i) maps to actor i").
type PeerTable map[actorid.Id]string

// wireEnvelope is the gob-serialized form of an actorid.Envelope (spec.md
// §6: "messages must be serializable").
type wireEnvelope[M any] struct {
	Src actorid.Id
	Dst actorid.Id
	Msg M
}

// Node runs a single actor over a real transport. Unlike the
// model-checking core, a Node's transitions are not replayed for
// exploration: it runs once, driven by whatever messages and timer
// firings actually occur, with the same infallible-by-type transition
// functions spec.md §4.2 defines.
type Node[M comparable, S comparable] struct {
	ID    actorid.Id
	Actor actor.Actor[M, S]
	Peers PeerTable

	mu      sync.Mutex
	current S
	timer   *time.Timer
	conns   map[actorid.Id]quic.Connection
	ln      *quic.Listener
	tlsConf *tlsBundle
}

// Run starts the node: it begins listening at its own peer address, runs
// on_start, applies its commands, and then serves inbound connections
// until ctx is cancelled. Run blocks until ctx is done or an unrecoverable
// transport error occurs.
func (n *Node[M, S]) Run(ctx context.Context) error {
	addr, ok := n.Peers[n.ID]
	if !ok {
		return errs.OutOfRangeID(uint64(n.ID), len(n.Peers))
	}
	bundle, err := newTLSBundle()
	if err != nil {
		return errs.TransportFailure(addr, err)
	}
	n.tlsConf = bundle
	n.conns = make(map[actorid.Id]quic.Connection)

	ln, err := quic.ListenAddr(addr, bundle.server, &quic.Config{MaxIdleTimeout: 30 * time.Second})
	if err != nil {
		return errs.TransportFailure(addr, err)
	}
	n.ln = ln
	defer ln.Close()

	out := actorid.NewOut[M]()
	n.current = n.Actor.OnStart(n.ID, out)
	if err := n.applyCommands(ctx, out); err != nil {
		return err
	}

	acceptErrs := make(chan error, 1)
	go func() {
		for {
			conn, err := ln.Accept(ctx)
			if err != nil {
				select {
				case acceptErrs <- err:
				default:
				}
				return
			}
			go n.serveConn(ctx, conn)
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-acceptErrs:
		if ctx.Err() != nil {
			return nil
		}
		return errs.TransportFailure(addr, err)
	}
}

// serveConn accepts every stream of one inbound QUIC connection in turn
// (send opens a fresh stream per envelope) and reads the gob-encoded
// envelopes on each, running on_msg for each and applying its commands in
// order.
func (n *Node[M, S]) serveConn(ctx context.Context, conn quic.Connection) {
	for {
		stream, err := conn.AcceptStream(ctx)
		if err != nil {
			return
		}
		dec := gob.NewDecoder(stream)
		for {
			var env wireEnvelope[M]
			// A decode error (including io.EOF on a closed stream) just ends
			// this stream's loop; it is not a node failure.
			if err := dec.Decode(&env); err != nil {
				break
			}
			n.deliver(ctx, env)
		}
	}
}

func (n *Node[M, S]) deliver(ctx context.Context, env wireEnvelope[M]) {
	n.mu.Lock()
	handle := state.Borrow(n.current)
	out := actorid.NewOut[M]()
	n.Actor.OnMsg(n.ID, handle, env.Src, env.Msg, out)
	if handle.Owned() {
		n.current = handle.Value()
	}
	n.mu.Unlock()
	_ = n.applyCommands(ctx, out)
}

// applyCommands runs an actor's emitted commands against the real
// transport: Send dials (or reuses) a connection to the destination and
// writes the envelope, SetTimer/CancelTimer arm or disarm a real
// time.Timer that fires on_timeout. Durations are taken at face value here
// — unlike the model checker, a spawned deployment has real wall-clock
// time to model.
func (n *Node[M, S]) applyCommands(ctx context.Context, out *actorid.Out[M]) error {
	for _, cmd := range out.Commands() {
		switch cmd.Kind {
		case actorid.CommandSend:
			if err := n.send(ctx, cmd.Dst, cmd.Msg); err != nil {
				return err
			}
		case actorid.CommandSetTimer:
			n.armTimer(ctx, cmd.Duration)
		case actorid.CommandCancelTimer:
			n.cancelTimer()
		}
	}
	return nil
}

func (n *Node[M, S]) armTimer(ctx context.Context, d actorid.TimerRange) {
	n.mu.Lock()
	if n.timer != nil {
		n.timer.Stop()
	}
	dur := d.Max
	if dur <= 0 {
		dur = d.Min
	}
	if dur <= 0 {
		dur = 100 * time.Millisecond
	}
	n.timer = time.AfterFunc(dur, func() { n.fireTimeout(ctx) })
	n.mu.Unlock()
}

func (n *Node[M, S]) cancelTimer() {
	n.mu.Lock()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.mu.Unlock()
}

func (n *Node[M, S]) fireTimeout(ctx context.Context) {
	n.mu.Lock()
	handle := state.Borrow(n.current)
	out := actorid.NewOut[M]()
	n.Actor.OnTimeout(n.ID, handle, out)
	if handle.Owned() {
		n.current = handle.Value()
	}
	n.mu.Unlock()
	_ = n.applyCommands(ctx, out)
}

// send opens (or reuses) a QUIC connection to dst and writes one
// gob-encoded envelope on a fresh stream.
func (n *Node[M, S]) send(ctx context.Context, dst actorid.Id, msg M) error {
	addr, ok := n.Peers[dst]
	if !ok {
		// Undeliverable destination: spec.md §7 treats this as "not an
		// error", the same as the model checker's unreachable-dst rule.
		return nil
	}
	n.mu.Lock()
	conn, cached := n.conns[dst]
	n.mu.Unlock()
	if !cached {
		var err error
		conn, err = quic.DialAddr(ctx, addr, n.tlsConf.client, &quic.Config{MaxIdleTimeout: 30 * time.Second})
		if err != nil {
			return errs.TransportFailure(addr, err)
		}
		n.mu.Lock()
		n.conns[dst] = conn
		n.mu.Unlock()
	}
	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		return errs.TransportFailure(addr, err)
	}
	defer stream.Close()
	enc := gob.NewEncoder(stream)
	if err := enc.Encode(wireEnvelope[M]{Src: n.ID, Dst: dst, Msg: msg}); err != nil {
		return fmt.Errorf("spawn: encode envelope to %s: %w", addr, err)
	}
	return nil
}
