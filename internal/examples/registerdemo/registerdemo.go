// Package registerdemo is the canonical register-harness server used by
// cmd/actorcheck's "register" scenario: a single-register server that
// acknowledges a Put/Get in the same transition it arrives in, so it is
// trivially linearizable against any number of clients.
package registerdemo

import (
	"github.com/latticefoundry/actorcheck/internal/actor"
	"github.com/latticefoundry/actorcheck/internal/actorid"
	"github.com/latticefoundry/actorcheck/internal/register"
	"github.com/latticefoundry/actorcheck/internal/state"
)

// Server is a single-register, immediate-acknowledgement server actor: its
// state is simply the last-written value.
type Server struct {
	actor.NoTimeout[register.Msg, byte]
}

func (Server) OnStart(actorid.Id, *actorid.Out[register.Msg]) byte { return 0 }

func (Server) OnMsg(_ actorid.Id, st *state.Handle[byte], src actorid.Id, msg register.Msg, out *actorid.Out[register.Msg]) {
	switch msg.Kind {
	case register.Put:
		st.Set(msg.Value)
		out.Send(src, register.Msg{Kind: register.PutOk, ReqId: msg.ReqId})
	case register.Get:
		out.Send(src, register.Msg{Kind: register.GetOk, ReqId: msg.ReqId, Value: st.Value()})
	}
}
