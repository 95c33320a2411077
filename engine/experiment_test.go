package engine

import (
	"testing"
	"time"
)

type experimentFixture struct {
	clock   *fakeClock
	player  *recordingPlayer
	channel *recordingChannel
	confirm *scriptedConfirmer
}

func newFixture() *experimentFixture {
	clock := newFakeClock()
	return &experimentFixture{
		clock:   clock,
		player:  &recordingPlayer{clock: clock},
		channel: &recordingChannel{clock: clock},
		confirm: &scriptedConfirmer{},
	}
}

func (f *experimentFixture) experiment(cfg *Config, abort AbortSource) *Experiment {
	return NewExperiment(cfg, Collaborators{
		Player:  f.player,
		Channel: f.channel,
		Abort:   abort,
		Confirm: f.confirm,
		Clock:   f.clock,
		Rand:    testRand(),
	})
}

func testConfig(auto, sets, perSet int) *Config {
	cfg := DefaultConfig()
	cfg.Subject = "S01"
	cfg.InitialDelay = 5 * time.Second
	cfg.InterBlockDelay = 3 * time.Second
	cfg.AutoBlocks = auto
	cfg.ManualSets = sets
	cfg.BlocksPerSet = perSet
	return cfg
}

// abortAt fires once the clock reaches t.
func abortAt(c *fakeClock, t time.Time) AbortSource {
	return abortFunc(func() bool { return !c.now.Before(t) })
}

func TestExperiment_AutomaticOnly_BlockMajorLog(t *testing.T) {
	f := newFixture()
	res := f.experiment(testConfig(3, 0, 5), neverAbort).Run()

	if res.State.Outcome != Completed {
		t.Fatalf("expected completed, got %s", res.State.Outcome)
	}
	if res.Log.Len() != 30 {
		t.Fatalf("expected 30 entries, got %d", res.Log.Len())
	}
	for n, e := range res.Log.Entries {
		if e.Block != n/10+1 || e.Position != n%10 {
			t.Fatalf("entry %d: expected block %d position %d, got block %d position %d", n, n/10+1, n%10, e.Block, e.Position)
		}
		if e.Subject != "S01" {
			t.Fatalf("entry %d: expected subject S01, got %q", n, e.Subject)
		}
	}
	if res.State.BlocksRun != 3 {
		t.Fatalf("expected 3 blocks run, got %d", res.State.BlocksRun)
	}
	if len(f.confirm.calls) != 0 {
		t.Fatalf("expected no confirmation requests, got %v", f.confirm.calls)
	}
}

func TestExperiment_DelaysOnlyBetweenBlocks(t *testing.T) {
	f := newFixture()
	f.experiment(testConfig(3, 0, 5), neverAbort).Run()

	// 5s initial delay, three blocks of 9 SOAs plus one pulse, two gaps of 3s.
	want := 5*time.Second + 3*(18*time.Second+10*time.Millisecond) + 2*3*time.Second
	if got := f.clock.now.Sub(epoch); got != want {
		t.Fatalf("expected run to take %v, got %v", want, got)
	}
	if first := f.player.plays[0].at.Sub(epoch); first != 5*time.Second {
		t.Fatalf("expected first stimulus after initial delay, got %v", first)
	}
}

func TestExperiment_CancelInSecondAutomaticBlock(t *testing.T) {
	f := newFixture()
	res := f.experiment(testConfig(3, 2, 5), abortAfterPlays(f.player, 14)).Run()

	if res.State.Outcome != Aborted {
		t.Fatalf("expected aborted, got %s", res.State.Outcome)
	}
	if res.Log.Len() != 14 {
		t.Fatalf("expected 14 entries, got %d", res.Log.Len())
	}
	if len(f.player.plays) != 14 {
		t.Fatalf("expected 14 plays, got %d", len(f.player.plays))
	}
	last := res.Log.Entries[13]
	if last.Block != 2 || last.Position != 3 {
		t.Fatalf("expected last entry at block 2 position 3, got %+v", last)
	}
	if len(f.confirm.calls) != 0 {
		t.Fatalf("expected manual stage to be skipped, got confirmations %v", f.confirm.calls)
	}
	if res.State.Stage != StageFinalize || res.State.BlocksRun != 2 {
		t.Fatalf("unexpected final state %+v", res.State)
	}
}

func TestExperiment_AbortBeforeFirstBlock(t *testing.T) {
	f := newFixture()
	res := f.experiment(testConfig(3, 2, 5), abortFunc(func() bool { return true })).Run()

	if res.State.Outcome != Aborted || res.Log.Len() != 0 || len(f.player.plays) != 0 {
		t.Fatalf("expected nothing played, got outcome %s and %d entries", res.State.Outcome, res.Log.Len())
	}
	if len(f.channel.writes) != 0 {
		t.Fatalf("expected no trigger writes, got %d", len(f.channel.writes))
	}
}

func TestExperiment_DeclinedSetStopsRun(t *testing.T) {
	f := newFixture()
	f.confirm.answers = []bool{false, true}
	res := f.experiment(testConfig(2, 2, 2), neverAbort).Run()

	if res.State.Outcome != Declined {
		t.Fatalf("expected declined, got %s", res.State.Outcome)
	}
	if res.Log.Len() != 20 {
		t.Fatalf("expected only the automatic stage's 20 entries, got %d", res.Log.Len())
	}
	if len(f.confirm.calls) != 1 || f.confirm.calls[0] != 1 {
		t.Fatalf("expected a single confirmation for set 1, got %v", f.confirm.calls)
	}
}

func TestExperiment_DeclineSecondSetKeepsFirst(t *testing.T) {
	f := newFixture()
	f.confirm.answers = []bool{true, false}
	res := f.experiment(testConfig(1, 3, 2), neverAbort).Run()

	if res.State.Outcome != Declined {
		t.Fatalf("expected declined, got %s", res.State.Outcome)
	}
	if res.Log.Len() != 30 {
		t.Fatalf("expected 10 automatic + 20 manual entries, got %d", res.Log.Len())
	}
	if len(f.confirm.calls) != 2 {
		t.Fatalf("expected confirmations for sets 1 and 2, got %v", f.confirm.calls)
	}
}

func TestExperiment_ManualSetsComplete(t *testing.T) {
	f := newFixture()
	res := f.experiment(testConfig(1, 2, 2), neverAbort).Run()

	if res.State.Outcome != Completed {
		t.Fatalf("expected completed, got %s", res.State.Outcome)
	}
	if res.Log.Len() != 50 {
		t.Fatalf("expected 50 entries, got %d", res.Log.Len())
	}
	if len(f.confirm.calls) != 2 || f.confirm.calls[0] != 1 || f.confirm.calls[1] != 2 {
		t.Fatalf("expected confirmations [1 2], got %v", f.confirm.calls)
	}
	for n, e := range res.Log.Entries {
		if e.Block != n/10+1 {
			t.Fatalf("entry %d: expected block %d, got %d", n, n/10+1, e.Block)
		}
	}
}

func TestExperiment_AbortBeforeManualSet(t *testing.T) {
	f := newFixture()
	// The poll after the tenth stimulus belongs to the block; the next one
	// is the check before manual set 1.
	polls := 0
	abort := abortFunc(func() bool {
		if len(f.player.plays) < 10 {
			return false
		}
		polls++
		return polls > 1
	})
	res := f.experiment(testConfig(1, 2, 2), abort).Run()

	if res.State.Outcome != Aborted {
		t.Fatalf("expected aborted, got %s", res.State.Outcome)
	}
	if res.Log.Len() != 10 {
		t.Fatalf("expected 10 entries, got %d", res.Log.Len())
	}
	if len(f.confirm.calls) != 0 {
		t.Fatalf("expected no confirmation, got %v", f.confirm.calls)
	}
	if res.State.Set != 1 {
		t.Fatalf("expected abort recorded at set 1, got %+v", res.State)
	}
}

func TestExperiment_CancelInManualSetAbortsRemainingSets(t *testing.T) {
	f := newFixture()
	res := f.experiment(testConfig(1, 3, 2), abortAfterPlays(f.player, 25)).Run()

	if res.State.Outcome != Aborted {
		t.Fatalf("expected aborted, got %s", res.State.Outcome)
	}
	if res.Log.Len() != 25 {
		t.Fatalf("expected 25 entries, got %d", res.Log.Len())
	}
	if len(f.confirm.calls) != 1 {
		t.Fatalf("expected only set 1 to be confirmed, got %v", f.confirm.calls)
	}
}

func TestExperiment_NoAutomaticBlocks(t *testing.T) {
	f := newFixture()
	res := f.experiment(testConfig(0, 1, 1), neverAbort).Run()

	if res.State.Outcome != Completed || res.Log.Len() != 10 {
		t.Fatalf("expected one manual block, got outcome %s and %d entries", res.State.Outcome, res.Log.Len())
	}
}

func TestExperiment_ReportsStateTransitions(t *testing.T) {
	f := newFixture()
	exp := f.experiment(testConfig(2, 1, 1), neverAbort)
	var states []RunState
	exp.OnState = func(s RunState) { states = append(states, s) }

	exp.Run()

	if len(states) == 0 || states[0].Stage != StageInitialDelay {
		t.Fatalf("expected first state to be the initial delay, got %+v", states)
	}
	last := states[len(states)-1]
	if last.Stage != StageFinalize || last.Outcome != Completed || last.BlocksRun != 3 {
		t.Fatalf("unexpected final state %+v", last)
	}

	var blocks []RunState
	for _, s := range states {
		if s.Block > 0 && s.Stage != StageFinalize {
			blocks = append(blocks, s)
		}
	}
	if len(blocks) != 3 {
		t.Fatalf("expected 3 block starts, got %+v", blocks)
	}
	if blocks[2].Stage != StageManual || blocks[2].Set != 1 || blocks[2].Block != 1 {
		t.Fatalf("expected third block in manual set 1, got %+v", blocks[2])
	}
}

func TestExperiment_AbortDuringInterBlockDelay(t *testing.T) {
	f := newFixture()
	// Block 1 ends at 5s + 18.01s; the 3s delay runs until 26.01s.
	at := epoch.Add(24*time.Second + 510*time.Millisecond)
	res := f.experiment(testConfig(3, 2, 5), abortAt(f.clock, at)).Run()

	if res.State.Outcome != Aborted {
		t.Fatalf("expected aborted, got %s", res.State.Outcome)
	}
	if res.Log.Len() != 10 || len(f.player.plays) != 10 {
		t.Fatalf("expected only block 1, got %d entries and %d plays", res.Log.Len(), len(f.player.plays))
	}
	if late := f.clock.now.Sub(at); late < 0 || late > time.Millisecond {
		t.Fatalf("expected run to end within one tick of the abort, ended %v after it", late)
	}
	if res.State.BlocksRun != 1 || len(f.confirm.calls) != 0 {
		t.Fatalf("unexpected final state %+v, confirmations %v", res.State, f.confirm.calls)
	}
}

func TestExperiment_AbortDuringInitialDelay(t *testing.T) {
	f := newFixture()
	at := epoch.Add(2 * time.Second)
	res := f.experiment(testConfig(3, 2, 5), abortAt(f.clock, at)).Run()

	if res.State.Outcome != Aborted || res.Log.Len() != 0 || len(f.player.plays) != 0 {
		t.Fatalf("expected nothing played, got outcome %s and %d entries", res.State.Outcome, res.Log.Len())
	}
	if late := f.clock.now.Sub(at); late < 0 || late > time.Millisecond {
		t.Fatalf("expected run to end within one tick of the abort, ended %v after it", late)
	}
	if res.State.Stage != StageFinalize {
		t.Fatalf("expected finalize, got %s", res.State.Stage)
	}
}

func TestExperiment_DelaysPollAbortEveryTick(t *testing.T) {
	f := newFixture()
	polls := 0
	abort := abortFunc(func() bool { polls++; return false })
	f.experiment(testConfig(1, 0, 0), abort).Run()

	// 5000 ticks of initial delay, one check before the block, ten in it.
	if polls != 5011 {
		t.Fatalf("expected 5011 abort polls, got %d", polls)
	}
}
