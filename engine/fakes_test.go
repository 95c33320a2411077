package engine

import (
	"math/rand/v2"
	"time"

	"github.com/prakash-kavi/Triggers/trigger"
)

var epoch = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

// fakeClock only moves when slept on.
type fakeClock struct {
	now    time.Time
	sleeps int
}

func newFakeClock() *fakeClock { return &fakeClock{now: epoch} }

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(d time.Duration) {
	c.sleeps++
	c.now = c.now.Add(d)
}

type play struct {
	role StimulusRole
	at   time.Time
}

type recordingPlayer struct {
	clock *fakeClock
	plays []play
	// delays[i] simulates a slow dispatch of the i-th play.
	delays []time.Duration
}

func (p *recordingPlayer) Play(role StimulusRole) {
	p.plays = append(p.plays, play{role: role, at: p.clock.Now()})
	if n := len(p.plays) - 1; n < len(p.delays) {
		p.clock.now = p.clock.now.Add(p.delays[n])
	}
}

type levelWrite struct {
	code trigger.Code
	at   time.Time
}

type recordingChannel struct {
	clock  *fakeClock
	writes []levelWrite
}

func (c *recordingChannel) SetLevel(code trigger.Code) {
	c.writes = append(c.writes, levelWrite{code: code, at: c.clock.Now()})
}

// abortFunc adapts a predicate to AbortSource.
type abortFunc func() bool

func (f abortFunc) Aborted() bool { return f() }

var neverAbort = abortFunc(func() bool { return false })

// abortAfterPlays fires once the player has dispatched n stimuli.
func abortAfterPlays(p *recordingPlayer, n int) AbortSource {
	return abortFunc(func() bool { return len(p.plays) >= n })
}

type scriptedConfirmer struct {
	answers []bool
	calls   []int
}

func (c *scriptedConfirmer) Confirm(set, total int) bool {
	c.calls = append(c.calls, set)
	if len(c.answers) == 0 {
		return true
	}
	a := c.answers[0]
	c.answers = c.answers[1:]
	return a
}

func testRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func testTiming() Timing {
	return Timing{SOA: 2 * time.Second, PulseDuration: 10 * time.Millisecond, PollTick: time.Millisecond}
}

func testRunner(clock *fakeClock, player *recordingPlayer, ch *recordingChannel, abort AbortSource) *BlockRunner {
	return &BlockRunner{
		Timing:  testTiming(),
		Codes:   TriggerCodes{Standard: 1, Deviant: 2},
		Names:   StimulusNames{Standard: "std.wav", Deviant: "dev.wav"},
		Player:  player,
		Channel: ch,
		Abort:   abort,
		Clock:   clock,
	}
}
