package engine

import (
	"strings"
	"time"

	"github.com/prakash-kavi/Triggers/trigger"
)

type StimulusRole int

const (
	Standard StimulusRole = iota
	Deviant
)

func (r StimulusRole) String() string {
	switch r {
	case Standard:
		return "standard"
	case Deviant:
		return "deviant"
	}
	return "unknown"
}

// Sequence is one block's ordered list of roles.
type Sequence []StimulusRole

// Deviants returns the indices holding Deviant, in order.
func (s Sequence) Deviants() []int {
	var idx []int
	for i, r := range s {
		if r == Deviant {
			idx = append(idx, i)
		}
	}
	return idx
}

// String renders the sequence as digits, 0 for standard and 1 for deviant.
func (s Sequence) String() string {
	var b strings.Builder
	for _, r := range s {
		b.WriteByte('0' + byte(r))
	}
	return b.String()
}

type ScheduledEvent struct {
	Position int
	Onset    time.Duration
	Role     StimulusRole
}

// Schedule lays a sequence out at a fixed SOA, relative to block start.
func Schedule(seq Sequence, soa time.Duration) []ScheduledEvent {
	events := make([]ScheduledEvent, len(seq))
	for i, r := range seq {
		events[i] = ScheduledEvent{Position: i, Onset: time.Duration(i) * soa, Role: r}
	}
	return events
}

type TriggerCodes struct {
	Standard trigger.Code
	Deviant  trigger.Code
}

func (c TriggerCodes) For(r StimulusRole) trigger.Code {
	if r == Deviant {
		return c.Deviant
	}
	return c.Standard
}

// StimulusNames are the names written to the event log for each role,
// normally the sound file names.
type StimulusNames struct {
	Standard string
	Deviant  string
}

func (n StimulusNames) For(r StimulusRole) string {
	if r == Deviant {
		return n.Deviant
	}
	return n.Standard
}

// LogEntry is one played stimulus. Only Subject and Stimulus are persisted
// to the results file; the rest feeds the timing log and diagnostics.
type LogEntry struct {
	Subject  string
	Stimulus string

	Role     StimulusRole
	Block    int
	Position int
	Intended time.Duration
	Actual   time.Duration
}

func (e LogEntry) Lateness() time.Duration {
	return e.Actual - e.Intended
}
