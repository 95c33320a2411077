package engine

import (
	"log/slog"
	"time"

	"github.com/prakash-kavi/Triggers/trigger"
)

// Player starts a pre-loaded sound and returns without waiting for it.
type Player interface {
	Play(role StimulusRole)
}

// AbortSource is polled for the operator's abort request.
type AbortSource interface {
	Aborted() bool
}

type Timing struct {
	SOA           time.Duration
	PulseDuration time.Duration
	PollTick      time.Duration
}

// BlockRunner plays one sequence against its schedule. It is the only writer
// of Channel.
type BlockRunner struct {
	Timing  Timing
	Codes   TriggerCodes
	Names   StimulusNames
	Player  Player
	Channel trigger.Channel
	Abort   AbortSource
	Clock   Clock
	Logger  *slog.Logger
}

// RunBlock plays seq from position 0. After each event the abort source is
// checked; when it fires the entries played so far are returned with
// cancelled set, and the rest of the sequence is never played.
func (r *BlockRunner) RunBlock(block int, seq Sequence, subject string) (entries []LogEntry, cancelled bool) {
	log := r.logger().With("block", block)
	log.Info("block start", "sequence", seq.String())

	entries = make([]LogEntry, 0, len(seq))
	start := r.Clock.Now()
	for _, ev := range Schedule(seq, r.Timing.SOA) {
		WaitUntil(r.Clock, start.Add(ev.Onset), r.Timing.PollTick)

		onset := r.Clock.Now()
		r.Player.Play(ev.Role)
		r.pulse(r.Codes.For(ev.Role))

		entry := LogEntry{
			Subject:  subject,
			Stimulus: r.Names.For(ev.Role),
			Role:     ev.Role,
			Block:    block,
			Position: ev.Position,
			Intended: ev.Onset,
			Actual:   onset.Sub(start),
		}
		entries = append(entries, entry)

		late := entry.Lateness()
		log.Debug("stimulus", "position", ev.Position+1, "of", len(seq), "role", ev.Role, "lateness", late)
		if late > r.Timing.PollTick {
			log.Warn("late onset", "position", ev.Position, "lateness", late)
		}

		if r.Abort.Aborted() {
			log.Info("abort during block", "played", len(entries))
			return entries, true
		}
	}
	return entries, false
}

// pulse raises the line, holds it for the pulse duration and drops it.
func (r *BlockRunner) pulse(code trigger.Code) {
	r.Channel.SetLevel(code)
	WaitFor(r.Clock, r.Timing.PulseDuration, r.Timing.PollTick)
	r.Channel.SetLevel(trigger.Idle)
}

func (r *BlockRunner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}
