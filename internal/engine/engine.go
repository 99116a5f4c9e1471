package engine

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/lowaak/smart-trainer/workout-runner/internal/checkpoint"
	"github.com/lowaak/smart-trainer/workout-runner/internal/clock"
	"github.com/lowaak/smart-trainer/workout-runner/internal/events"
	"github.com/lowaak/smart-trainer/workout-runner/internal/feedback"
	"github.com/lowaak/smart-trainer/workout-runner/internal/go_func_utils"
	"github.com/lowaak/smart-trainer/workout-runner/internal/timeline"
	"github.com/lowaak/smart-trainer/workout-runner/internal/transition"
)

// Engine runs one workout session at a time.
//
// Every mutation of the execution state happens on a single goroutine:
// commands and timer callbacks are posted to it as closures and the caller
// waits for them to be applied. Clock and Scheduler timers are delivered the
// same way, so a callback made stale by a pause, skip or stop is dropped
// before it can touch the state.
type Engine struct {
	source   clock.Source
	feedback FeedbackDispatcher
	progress ProgressSink
	settings Settings
	logger   *log.Logger

	clock     *clock.Clock
	scheduler *transition.Scheduler
	snapshots *events.ChannelEvent[Snapshot]

	// Owned by the loop goroutine
	tl                *timeline.Timeline
	state             ExecutionState
	setStartSec       int
	blockStartSec     int
	setsDone          int
	lastCheckpointSec int
	finalized         bool
	// set the pointers designate has not started yet (cold resume)
	setPending bool

	// Goroutine management
	cmdChan      chan func()
	doneChan     chan struct{} // Closed to signal shutdown
	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

// NewEngine creates an idle engine and starts its loop
func NewEngine(source clock.Source, dispatcher FeedbackDispatcher, progress ProgressSink, settings Settings, logger *log.Logger) *Engine {
	if source == nil {
		panic("Engine: source cannot be nil")
	}
	if dispatcher == nil {
		panic("Engine: dispatcher cannot be nil")
	}
	if progress == nil {
		panic("Engine: progress cannot be nil")
	}
	if logger == nil {
		panic("Engine: logger cannot be nil")
	}

	e := &Engine{
		source:    source,
		feedback:  dispatcher,
		progress:  progress,
		settings:  settings.normalized(),
		logger:    logger,
		snapshots: events.NewChannelEvent[Snapshot](true),
		state:     ExecutionState{Phase: PhaseIdle},
		cmdChan:   make(chan func()),
		doneChan:  make(chan struct{}),
	}
	e.clock = clock.New(source, e.runOnLoop, e.onClockTick, logger)
	e.scheduler = transition.NewScheduler(source, e.runOnLoop, logger)

	e.wg.Add(1)
	go_func_utils.SafeGo(logger, func() { e.runEngineLoop() })

	return e
}

// StartWorkout validates the routine and opens a new session in Preparing.
// Returns *timeline.InvalidTimelineError for routines that cannot run and
// ErrSessionActive while another session is still going.
func (e *Engine) StartWorkout(ctx context.Context, routine timeline.Routine) (string, error) {
	tl, err := timeline.New(routine, timeline.WithSecondsPerRep(e.settings.SecondsPerRep))
	if err != nil {
		e.logger.Printf("Engine: rejected routine %q: %v", routine.ID, err)
		return "", err
	}

	var sessionID string
	ok := e.mutate(func() {
		if e.sessionRunning() {
			err = ErrSessionActive
			return
		}
		sessionID = e.progress.CreateSession(ctx, tl.RoutineID(), tl)
		e.resetSession(tl, sessionID)
		e.state.Phase = PhasePreparing
		e.logger.Printf("Engine: session %s started for %q (%d blocks, ~%ds)",
			sessionID, tl.Name(), tl.Len(), tl.EstimatedTotalDurationSec())
		e.startTransition(transition.KindPreparation, e.settings.PreparationSec, e.enterActive)
	})
	if !ok {
		return "", ErrShutdown
	}
	if err != nil {
		return "", err
	}
	return sessionID, nil
}

// ResumeSession restores an interrupted session from its last checkpoint.
// The session comes back Paused with an open pause interval; Resume starts
// the clock again.
func (e *Engine) ResumeSession(ctx context.Context, rec *checkpoint.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rec == nil || rec.SessionID == "" || rec.Timeline == nil || rec.Timeline.Len() == 0 {
		return ErrNoSession
	}
	if rec.Finalized() {
		return fmt.Errorf("%w: session %s is already finalized", ErrNoSession, rec.SessionID)
	}

	var err error
	ok := e.mutate(func() {
		if e.sessionRunning() {
			err = ErrSessionActive
			return
		}
		e.resetSession(rec.Timeline, rec.SessionID)
		e.restore(rec.Progress)
	})
	if !ok {
		return ErrShutdown
	}
	return err
}

// BeginActive ends the preparation countdown early
func (e *Engine) BeginActive() {
	e.mutate(func() {
		if e.state.Phase != PhasePreparing {
			e.ignore("BeginActive")
			return
		}
		e.scheduler.Cancel()
		e.enterActive()
	})
}

// Pause suspends the clock and any pending transition. The clock is
// stopped before Pause returns.
func (e *Engine) Pause() {
	e.mutate(func() {
		if e.state.Phase != PhaseActive {
			e.ignore("Pause")
			return
		}
		// Apply a second the clock has reached but not yet delivered, so a
		// set whose target passed completes before the pause.
		if e.clock.Started() {
			e.onClockTick(e.clock.ElapsedSeconds())
			if e.state.Phase != PhaseActive {
				return
			}
		}
		e.clock.Suspend()
		e.scheduler.Pause()

		e.state.PauseIntervals = append(e.state.PauseIntervals, checkpoint.PauseInterval{PausedAt: e.source.Now()})
		e.state.Phase = PhasePaused
		e.logger.Printf("Engine: paused at %ds", e.state.TotalElapsedSec)
		e.emit(feedback.EventPaused, 0)
		e.checkpoint()
	})
}

// Resume continues a paused session
func (e *Engine) Resume() {
	e.mutate(func() {
		if e.state.Phase != PhasePaused {
			e.ignore("Resume")
			return
		}
		e.closePause()
		e.state.Phase = PhaseActive
		e.logger.Printf("Engine: resumed at %ds", e.state.TotalElapsedSec)
		e.emit(feedback.EventResumed, 0)

		if e.setPending {
			e.beginSet()
			return
		}
		// Inter-block countdowns run with the clock suspended
		if !e.state.Transition.Kind.IsCountdown() {
			e.runClock()
		}
		if e.state.Transition.Pending() {
			e.scheduler.Resume()
		}
		e.checkpoint()
	})
}

// CompleteSet finishes the current set by hand. Rep-based sets only end
// this way; on time-based sets it is an early finish.
func (e *Engine) CompleteSet() {
	e.mutate(func() {
		if e.state.Phase != PhaseActive || e.state.Transition.Pending() {
			e.ignore("CompleteSet")
			return
		}
		e.syncTotal()
		e.state.ElapsedInSetSec = max(0, e.state.TotalElapsedSec-e.setStartSec)
		e.completeSet()
	})
}

// SkipSet moves straight to the next set. A pending rest or next-exercise
// countdown is cancelled and its destination entered immediately.
func (e *Engine) SkipSet() {
	e.mutate(func() {
		if e.state.Phase != PhaseActive && e.state.Phase != PhasePaused {
			e.ignore("SkipSet")
			return
		}
		pending := e.state.Transition.Kind
		e.scheduler.Cancel()
		e.state.Transition = TransitionState{}
		e.leavePause()

		switch pending {
		case transition.KindRest:
			e.advanceSet()
			return
		case transition.KindNextExercise:
			e.advanceBlock()
			return
		}

		block := e.currentBlock()
		e.logger.Printf("Engine: skipping set %d/%d of %q", e.state.CurrentSet, block.Sets, block.DisplayName())
		if e.state.CurrentSet < block.Sets {
			e.advanceSet()
			return
		}
		if e.setsDone > 0 {
			e.recordBlock(&e.state.CompletedBlocks)
		} else {
			e.recordBlock(&e.state.SkippedBlocks)
		}
		if e.tl.IsLast(e.state.CurrentBlockIndex) {
			e.finish(PhaseCompleted)
			return
		}
		e.advanceBlock()
	})
}

// SkipExercise abandons the current block and starts the next one
func (e *Engine) SkipExercise() {
	e.mutate(func() {
		if e.state.Phase != PhaseActive && e.state.Phase != PhasePaused {
			e.ignore("SkipExercise")
			return
		}
		pending := e.state.Transition.Kind
		e.scheduler.Cancel()
		e.state.Transition = TransitionState{}
		e.leavePause()

		// The finished block was already logged when its countdown started
		if pending == transition.KindNextExercise {
			e.advanceBlock()
			return
		}

		e.logger.Printf("Engine: skipping block %d (%q)", e.state.CurrentBlockIndex, e.currentBlock().DisplayName())
		e.recordBlock(&e.state.SkippedBlocks)
		if e.tl.IsLast(e.state.CurrentBlockIndex) {
			e.finish(PhaseCompleted)
			return
		}
		e.advanceBlock()
	})
}

// Stop ends the session. Calling it again, or after completion, does nothing.
func (e *Engine) Stop() {
	e.mutate(func() {
		switch e.state.Phase {
		case PhasePreparing, PhaseActive, PhasePaused:
			e.finish(PhaseStopped)
		default:
			e.ignore("Stop")
		}
	})
}

// Snapshot returns the current read-only view
func (e *Engine) Snapshot() Snapshot {
	snap := Snapshot{Phase: PhaseIdle}
	e.exec(func() { snap = e.buildSnapshot() })
	return snap
}

// State returns a deep copy of the execution state
func (e *Engine) State() ExecutionState {
	state := ExecutionState{Phase: PhaseIdle}
	e.exec(func() { state = e.state.clone() })
	return state
}

// ListenToSnapshots registers ch for a snapshot after every state change.
// The latest snapshot is sent immediately. Returns a deregistration function.
func (e *Engine) ListenToSnapshots(ch chan<- Snapshot) func() {
	return e.snapshots.Listen(ch)
}

// Shutdown stops the engine loop and silences its timers. A running session
// is left as is so it can be resumed from its last checkpoint.
// Safe to call multiple times - only the first call has effect
func (e *Engine) Shutdown() {
	e.shutdownOnce.Do(func() {
		e.logger.Printf("Engine: Shutting down")
		close(e.doneChan)
		e.wg.Wait()
		e.clock.Stop()
		e.scheduler.Cancel()
		e.logger.Printf("Engine: Shutdown complete")
	})
}

// --- Loop plumbing ---

func (e *Engine) runEngineLoop() {
	defer e.wg.Done()
	for {
		select {
		case <-e.doneChan:
			e.logger.Printf("Engine: Goroutine exiting")
			return
		case job := <-e.cmdChan:
			job()
		}
	}
}

// exec runs fn on the loop and waits for it. Returns false if the engine
// has shut down.
func (e *Engine) exec(fn func()) bool {
	done := make(chan struct{})
	select {
	case e.cmdChan <- func() {
		defer close(done)
		fn()
	}:
	case <-e.doneChan:
		return false
	}
	<-done
	return true
}

// mutate is exec followed by a snapshot notification
func (e *Engine) mutate(fn func()) bool {
	return e.exec(func() {
		fn()
		e.snapshots.Notify(e.buildSnapshot())
	})
}

// runOnLoop is the executor handed to the clock and the scheduler
func (e *Engine) runOnLoop(fn func()) {
	e.mutate(fn)
}

// --- State machine (loop goroutine only) ---

func (e *Engine) sessionRunning() bool {
	return e.tl != nil && !e.state.Phase.IsTerminal()
}

func (e *Engine) resetSession(tl *timeline.Timeline, sessionID string) {
	e.scheduler.Cancel()
	e.clock.Stop()

	e.tl = tl
	e.state = ExecutionState{
		SessionID:         sessionID,
		Phase:             PhasePreparing,
		CurrentBlockIndex: 0,
		CurrentSet:        1,
	}
	e.setStartSec = 0
	e.blockStartSec = 0
	e.setsDone = 0
	e.lastCheckpointSec = 0
	e.finalized = false
	e.setPending = false
}

func (e *Engine) enterActive() {
	e.state.Phase = PhaseActive
	e.state.Transition = TransitionState{}
	e.logger.Printf("Engine: session %s active", e.state.SessionID)
	e.beginSet()
}

func (e *Engine) currentBlock() timeline.Block {
	block, _ := e.tl.Block(e.state.CurrentBlockIndex)
	return block
}

// onClockTick receives the whole seconds of active time since the session
// went Active.
func (e *Engine) onClockTick(total int) {
	if e.state.Phase != PhaseActive || total <= e.state.TotalElapsedSec {
		return
	}
	e.state.TotalElapsedSec = total

	if !e.state.Transition.Pending() {
		e.state.ElapsedInSetSec = max(0, total-e.setStartSec)
		block := e.currentBlock()
		if !block.IsRepBased() && e.state.ElapsedInSetSec >= block.TargetDurationSec {
			e.state.ElapsedInSetSec = block.TargetDurationSec
			e.completeSet()
			return
		}
	}

	if total-e.lastCheckpointSec >= e.settings.CheckpointEverySec {
		e.checkpoint()
	}
}

// completeSet applies the advancement rule after a set ends
func (e *Engine) completeSet() {
	block := e.currentBlock()
	e.setsDone++
	e.logger.Printf("Engine: set %d/%d of %q complete at %ds",
		e.state.CurrentSet, block.Sets, block.DisplayName(), e.state.TotalElapsedSec)
	e.emit(feedback.EventSetComplete, 0)

	switch {
	case e.state.CurrentSet < block.Sets:
		if block.RestBetweenSetsSec > 0 {
			e.emit(feedback.EventRestStart, block.RestBetweenSetsSec)
			e.startTransition(transition.KindRest, block.RestBetweenSetsSec, e.advanceSet)
			return
		}
		e.advanceSet()

	case !e.tl.IsLast(e.state.CurrentBlockIndex):
		e.recordBlock(&e.state.CompletedBlocks)
		e.clock.Suspend()
		e.startTransition(transition.KindNextExercise, e.settings.NextExerciseSec, e.advanceBlock)

	default:
		e.recordBlock(&e.state.CompletedBlocks)
		e.finish(PhaseCompleted)
	}
}

func (e *Engine) startTransition(kind transition.Kind, sec int, then func()) {
	e.syncTotal()
	e.state.Transition = TransitionState{Kind: kind, RemainingSec: sec}
	e.checkpoint()

	e.scheduler.Schedule(kind, time.Duration(sec)*time.Second, transition.Callbacks{
		OnTick: func(remaining int) { e.onTransitionTick(kind, remaining) },
		OnComplete: func() {
			e.state.Transition = TransitionState{}
			then()
		},
	})
}

func (e *Engine) onTransitionTick(kind transition.Kind, remaining int) {
	e.state.Transition.RemainingSec = remaining
	if kind == transition.KindRest && remaining > e.settings.RestCueWindowSec {
		return
	}
	e.emit(feedback.EventCountdownTick, remaining)
}

func (e *Engine) advanceSet() {
	e.state.CurrentSet++
	e.beginSet()
}

func (e *Engine) advanceBlock() {
	e.state.CurrentBlockIndex++
	e.state.CurrentSet = 1
	e.setsDone = 0
	e.syncTotal()
	e.blockStartSec = e.state.TotalElapsedSec
	e.beginSet()
}

// beginSet starts the set the pointers designate, with the clock running
func (e *Engine) beginSet() {
	e.syncTotal()
	e.setStartSec = e.state.TotalElapsedSec
	e.state.ElapsedInSetSec = 0
	e.state.Transition = TransitionState{}
	e.setPending = false
	e.runClock()

	block := e.currentBlock()
	e.logger.Printf("Engine: block %d (%q) set %d/%d started at %ds",
		e.state.CurrentBlockIndex, block.DisplayName(), e.state.CurrentSet, block.Sets, e.state.TotalElapsedSec)
	if block.Type == timeline.BlockTypeExercise {
		e.emit(feedback.EventExerciseStart, 0)
	} else {
		e.emit(feedback.EventRestStart, block.TargetDurationSec)
	}
	e.checkpoint()
}

func (e *Engine) runClock() {
	if !e.clock.Started() {
		e.clock.Start(time.Duration(e.state.TotalElapsedSec) * time.Second)
		return
	}
	e.clock.Resume()
}

// syncTotal catches the total up with the clock between ticks, e.g. when a
// transition completes just before the tick of the same second is applied.
func (e *Engine) syncTotal() {
	if !e.clock.Started() {
		return
	}
	if sec := e.clock.ElapsedSeconds(); sec > e.state.TotalElapsedSec {
		e.state.TotalElapsedSec = sec
		if !e.state.Transition.Pending() {
			e.state.ElapsedInSetSec = max(0, sec-e.setStartSec)
		}
	}
}

func (e *Engine) leavePause() {
	if e.state.Phase != PhasePaused {
		return
	}
	e.closePause()
	e.state.Phase = PhaseActive
}

func (e *Engine) closePause() {
	n := len(e.state.PauseIntervals)
	if n == 0 || e.state.PauseIntervals[n-1].ResumedAt != nil {
		return
	}
	now := e.source.Now()
	e.state.PauseIntervals[n-1].ResumedAt = &now
}

func (e *Engine) recordBlock(entries *[]checkpoint.BlockRecord) {
	e.syncTotal()
	*entries = append(*entries, checkpoint.BlockRecord{
		BlockIndex:    e.state.CurrentBlockIndex,
		Name:          e.currentBlock().DisplayName(),
		SetsCompleted: e.setsDone,
		ElapsedSec:    e.state.TotalElapsedSec - e.blockStartSec,
		At:            e.source.Now(),
	})
}

func (e *Engine) finish(phase Phase) {
	e.scheduler.Cancel()
	e.syncTotal()
	e.clock.Stop()
	e.closePause()

	e.state.Phase = phase
	e.state.Transition = TransitionState{}
	if phase == PhaseCompleted {
		e.logger.Printf("Engine: Workout complete! %ds", e.state.TotalElapsedSec)
		e.emit(feedback.EventWorkoutComplete, 0)
	} else {
		e.logger.Printf("Engine: workout stopped at %ds", e.state.TotalElapsedSec)
		e.emit(feedback.EventWorkoutStopped, 0)
	}
	e.finalize()
}

func (e *Engine) finalize() {
	if e.finalized {
		return
	}
	e.finalized = true

	summary := checkpoint.Summary{
		Phase:           string(e.state.Phase),
		Completed:       e.state.Phase == PhaseCompleted,
		TotalElapsedSec: e.state.TotalElapsedSec,
		CompletedAt:     e.source.Now(),
		CompletedBlocks: append([]checkpoint.BlockRecord(nil), e.state.CompletedBlocks...),
		SkippedBlocks:   append([]checkpoint.BlockRecord(nil), e.state.SkippedBlocks...),
	}
	sessionID := e.state.SessionID
	go_func_utils.SafeCall(e.logger, "Engine", func() { e.progress.Finalize(sessionID, summary) })
}

func (e *Engine) checkpoint() {
	e.lastCheckpointSec = e.state.TotalElapsedSec
	progress := checkpoint.Progress{
		BlockIndex:             e.state.CurrentBlockIndex,
		Set:                    e.state.CurrentSet,
		ElapsedSec:             e.state.ElapsedInSetSec,
		TotalElapsedSec:        e.state.TotalElapsedSec,
		Phase:                  string(e.state.Phase),
		Transition:             string(e.state.Transition.Kind),
		TransitionRemainingSec: e.state.Transition.RemainingSec,
		PauseIntervals:         clonePauses(e.state.PauseIntervals),
		CompletedBlocks:        append([]checkpoint.BlockRecord(nil), e.state.CompletedBlocks...),
		SkippedBlocks:          append([]checkpoint.BlockRecord(nil), e.state.SkippedBlocks...),
		UpdatedAt:              e.source.Now(),
	}
	sessionID := e.state.SessionID
	go_func_utils.SafeCall(e.logger, "Engine", func() { e.progress.UpdateProgress(sessionID, progress) })
}

func (e *Engine) emit(kind feedback.EventKind, remainingSec int) {
	event := feedback.Event{
		Kind:         kind,
		BlockIndex:   e.state.CurrentBlockIndex,
		BlockName:    e.currentBlock().DisplayName(),
		Set:          e.state.CurrentSet,
		RemainingSec: remainingSec,
		At:           e.source.Now(),
	}
	go_func_utils.SafeCall(e.logger, "Engine", func() { e.feedback.Dispatch(event) })
}

func (e *Engine) ignore(command string) {
	e.logger.Printf("Engine: %s ignored in phase %s", command, e.state.Phase)
}

// restore positions a freshly reset session at a checkpoint. A rest or
// next-exercise countdown in progress is treated as finished.
func (e *Engine) restore(p *checkpoint.Progress) {
	pausedAt := e.source.Now()
	idx, set, elapsed := 0, 1, 0
	e.setPending = p == nil

	if p != nil {
		idx = min(max(p.BlockIndex, 0), e.tl.Len()-1)
		block, _ := e.tl.Block(idx)
		set = min(max(p.Set, 1), block.Sets)
		elapsed = max(p.ElapsedSec, 0)

		e.setPending = p.Transition != string(transition.KindNone)
		switch transition.Kind(p.Transition) {
		case transition.KindRest:
			if set < block.Sets {
				set++
			}
			elapsed = 0
		case transition.KindNextExercise:
			if !e.tl.IsLast(idx) {
				idx++
				set = 1
			}
			elapsed = 0
		case transition.KindPreparation:
			elapsed = 0
		}

		block, _ = e.tl.Block(idx)
		if !block.IsRepBased() {
			elapsed = min(elapsed, block.TargetDurationSec)
		}

		e.state.TotalElapsedSec = max(p.TotalElapsedSec, elapsed)
		e.state.PauseIntervals = clonePauses(p.PauseIntervals)
		e.state.CompletedBlocks = append([]checkpoint.BlockRecord(nil), p.CompletedBlocks...)
		e.state.SkippedBlocks = append([]checkpoint.BlockRecord(nil), p.SkippedBlocks...)
		if !p.UpdatedAt.IsZero() {
			pausedAt = p.UpdatedAt
		}
	}

	e.state.CurrentBlockIndex = idx
	e.state.CurrentSet = set
	e.state.ElapsedInSetSec = elapsed
	e.setStartSec = e.state.TotalElapsedSec - elapsed
	e.blockStartSec = e.setStartSec
	e.setsDone = set - 1
	e.lastCheckpointSec = e.state.TotalElapsedSec

	// A session interrupted while paused keeps its open pause
	if n := len(e.state.PauseIntervals); n == 0 || e.state.PauseIntervals[n-1].ResumedAt != nil {
		e.state.PauseIntervals = append(e.state.PauseIntervals, checkpoint.PauseInterval{PausedAt: pausedAt})
	}
	e.state.Phase = PhasePaused

	e.logger.Printf("Engine: session %s restored at block %d set %d (%ds in set, %ds total)",
		e.state.SessionID, idx, set, elapsed, e.state.TotalElapsedSec)
	e.checkpoint()
}

func (e *Engine) buildSnapshot() Snapshot {
	snap := Snapshot{
		SessionID:         e.state.SessionID,
		Phase:             e.state.Phase,
		CurrentBlockIndex: e.state.CurrentBlockIndex,
		CurrentSet:        e.state.CurrentSet,
		ElapsedInSetSec:   e.state.ElapsedInSetSec,
		TotalElapsedSec:   e.state.TotalElapsedSec,
		Transition:        e.state.Transition,
	}
	if e.tl == nil {
		return snap
	}
	block := e.currentBlock()
	snap.RoutineName = e.tl.Name()
	snap.CurrentBlock = block
	snap.BlockCount = e.tl.Len()
	snap.TotalSets = block.Sets
	snap.ProgressPercent = e.progressPercent(block)
	return snap
}

// progressPercent counts the sets behind the current position, with
// fractional credit for the set in progress.
func (e *Engine) progressPercent(block timeline.Block) float64 {
	if e.state.Phase == PhaseCompleted {
		return 100
	}
	totalSets := e.tl.TotalSets()
	if totalSets == 0 {
		return 0
	}

	done := float64(e.tl.SetsBefore(e.state.CurrentBlockIndex) + e.state.CurrentSet - 1)
	switch e.state.Transition.Kind {
	case transition.KindRest, transition.KindNextExercise:
		done++
	case transition.KindNone:
		if e.state.Phase != PhasePreparing {
			if target := block.SetEstimateSec(e.tl.SecondsPerRep()); target > 0 {
				done += min(1, float64(e.state.ElapsedInSetSec)/float64(target))
			}
		}
	}
	return min(100, done/float64(totalSets)*100)
}
