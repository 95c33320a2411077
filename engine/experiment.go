package engine

import (
	"log/slog"
	"time"
)

type Stage int

const (
	StageInitialDelay Stage = iota
	StageAutomatic
	StageManual
	StageFinalize
)

func (s Stage) String() string {
	switch s {
	case StageInitialDelay:
		return "initial-delay"
	case StageAutomatic:
		return "automatic"
	case StageManual:
		return "manual"
	case StageFinalize:
		return "finalize"
	}
	return "unknown"
}

type Outcome int

const (
	Running Outcome = iota
	Completed
	Aborted
	Declined
)

func (o Outcome) String() string {
	switch o {
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Aborted:
		return "aborted"
	case Declined:
		return "declined"
	}
	return "unknown"
}

// RunState is the controller's progress. Set and Block are 1-based within
// their stage; zero means none has started yet.
type RunState struct {
	Stage     Stage
	Set       int
	Block     int
	BlocksRun int
	Outcome   Outcome
}

// Plan is the block structure of a run.
type Plan struct {
	InitialDelay    time.Duration
	InterBlockDelay time.Duration
	AutoBlocks      int
	ManualSets      int
	BlocksPerSet    int
}

// Confirmer asks the operator whether manual set n of total may start. It
// may block; it is never called while a block is running.
type Confirmer interface {
	Confirm(set, total int) bool
}

type Result struct {
	Log   *EventLog
	State RunState
}

// Experiment runs the initial delay, the automatic blocks and the manual
// sets in order, stopping at the first abort or declined set.
type Experiment struct {
	Plan      Plan
	Subject   string
	Generator *SequenceGenerator
	Runner    *BlockRunner
	Confirm   Confirmer
	Abort     AbortSource
	Clock     Clock
	PollTick  time.Duration
	Logger    *slog.Logger

	// OnState, if set, is called at every stage and block transition.
	OnState func(RunState)

	state RunState
	log   *EventLog
}

// Run executes the whole plan. The returned log holds every entry played,
// including those of a block cut short by an abort.
func (e *Experiment) Run() Result {
	e.state = RunState{}
	e.log = NewEventLog(e.Subject)
	log := e.logger()

	e.enter(StageInitialDelay)
	log.Info("initial delay", "duration", e.Plan.InitialDelay)
	if e.idle(e.Plan.InitialDelay) {
		e.enter(StageAutomatic)
		if e.runBlocks(e.Plan.AutoBlocks) {
			e.enter(StageManual)
			e.runManualSets()
		}
	}

	if e.state.Outcome == Running {
		e.state.Outcome = Completed
	}
	e.state.Stage = StageFinalize
	e.notify()
	log.Info("experiment finished", "outcome", e.state.Outcome, "blocks", e.state.BlocksRun, "events", e.log.Len())
	return Result{Log: e.log, State: e.state}
}

func (e *Experiment) runManualSets() {
	log := e.logger()
	for set := 1; set <= e.Plan.ManualSets; set++ {
		e.state.Set = set
		e.state.Block = 0
		if e.Abort.Aborted() {
			log.Info("abort before manual set", "set", set)
			e.state.Outcome = Aborted
			return
		}
		if !e.Confirm.Confirm(set, e.Plan.ManualSets) {
			log.Info("manual set declined", "set", set)
			e.state.Outcome = Declined
			return
		}
		log.Info("manual set start", "set", set, "of", e.Plan.ManualSets)
		if !e.runBlocks(e.Plan.BlocksPerSet) {
			return
		}
	}
}

// runBlocks runs n blocks of the current stage and reports whether the run
// may continue.
func (e *Experiment) runBlocks(n int) bool {
	log := e.logger()
	for b := 1; b <= n; b++ {
		if e.Abort.Aborted() {
			log.Info("abort before block", "stage", e.state.Stage, "block", b)
			e.state.Outcome = Aborted
			return false
		}
		e.state.Block = b
		e.notify()

		log.Info("presenting block", "stage", e.state.Stage, "set", e.state.Set, "block", b, "of", n)
		entries, cancelled := e.Runner.RunBlock(e.state.BlocksRun+1, e.Generator.Generate(), e.Subject)
		e.log.Append(entries...)
		e.state.BlocksRun++
		if cancelled {
			e.state.Outcome = Aborted
			return false
		}
		if b < n && !e.idle(e.Plan.InterBlockDelay) {
			return false
		}
	}
	return true
}

// idle waits d outside any block, polling the abort source on every tick so the
// window keeps receiving events. It reports whether the run may continue.
func (e *Experiment) idle(d time.Duration) bool {
	if WaitUntilOr(e.Clock, e.Clock.Now().Add(d), e.PollTick, e.Abort.Aborted) {
		e.logger().Info("abort during delay", "stage", e.state.Stage, "block", e.state.Block)
		e.state.Outcome = Aborted
		return false
	}
	return true
}

func (e *Experiment) enter(s Stage) {
	e.state.Stage = s
	e.state.Set = 0
	e.state.Block = 0
	e.notify()
}

func (e *Experiment) notify() {
	if e.OnState != nil {
		e.OnState(e.state)
	}
}

func (e *Experiment) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}
