package checker

import "github.com/latticefoundry/actorcheck/internal/actorid"

// processCommands applies id's emitted commands to state in emission order
// (spec.md §4.5). Send folds through record_msg_out before insertion so
// history can observe a message exactly once, at the point it enters the
// network; SetTimer/CancelTimer grow the timer slice lazily since
// is_timer_set may have fewer entries than actor_count (spec.md §3
// invariant 2).
func processCommands[M comparable, S comparable, H Cloneable[H]](
	sys System[M, S, H],
	state *SystemState[M, S, H],
	id actorid.Id,
	commands []actorid.Command[M],
) {
	for _, cmd := range commands {
		switch cmd.Kind {
		case actorid.CommandSend:
			if next, ok := sys.RecordMsgOut(state.History, id, cmd.Dst, cmd.Msg); ok {
				state.History = next
			}
			state.Network.Insert(actorid.Envelope[M]{Src: id, Dst: cmd.Dst, Msg: cmd.Msg})
		case actorid.CommandSetTimer:
			growTimerSlice(state, id)
			state.IsTimerSet[id.Index()] = TimerSet
		case actorid.CommandCancelTimer:
			growTimerSlice(state, id)
			state.IsTimerSet[id.Index()] = TimerUnset
		}
	}
}

func growTimerSlice[M comparable, S comparable, H Cloneable[H]](state *SystemState[M, S, H], id actorid.Id) {
	for len(state.IsTimerSet) <= id.Index() {
		state.IsTimerSet = append(state.IsTimerSet, TimerUnset)
	}
}
