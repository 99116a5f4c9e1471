package feedback

import "time"

// EventKind is a state-machine event that may produce a cue
type EventKind string

const (
	EventCountdownTick   EventKind = "countdown_tick"
	EventExerciseStart   EventKind = "exercise_start"
	EventRestStart       EventKind = "rest_start"
	EventSetComplete     EventKind = "set_complete"
	EventWorkoutComplete EventKind = "workout_complete"
	EventPaused          EventKind = "paused"
	EventResumed         EventKind = "resumed"
	EventWorkoutStopped  EventKind = "workout_stopped"
)

// Event is what the engine hands to the coordinator
type Event struct {
	Kind         EventKind
	BlockIndex   int
	BlockName    string
	Set          int
	RemainingSec int // countdown ticks only
	At           time.Time
}

type SoundID string

type HapticPattern string

type FlashToken string

const (
	SoundCountdownBeep SoundID = "countdown_beep"
	SoundStartWhistle  SoundID = "start_whistle"
	SoundRestChime     SoundID = "rest_chime"
	SoundSetDing       SoundID = "set_ding"
	SoundFanfare       SoundID = "fanfare"
	SoundPauseTone     SoundID = "pause_tone"
	SoundResumeTone    SoundID = "resume_tone"
	SoundStopTone      SoundID = "stop_tone"

	HapticTick        HapticPattern = "tick"
	HapticLong        HapticPattern = "long"
	HapticDouble      HapticPattern = "double"
	HapticTriple      HapticPattern = "triple"
	HapticCelebration HapticPattern = "celebration"

	FlashGo     FlashToken = "go"
	FlashRest   FlashToken = "rest"
	FlashDone   FlashToken = "done"
	FlashPaused FlashToken = "paused"
)

// Cue is the side-effect bundle for one event. Empty fields are skipped.
type Cue struct {
	Sound  SoundID
	Haptic HapticPattern
	Flash  FlashToken
}

// DefaultCues maps every engine event to its cue bundle
var DefaultCues = map[EventKind]Cue{
	EventCountdownTick:   {Sound: SoundCountdownBeep, Haptic: HapticTick},
	EventExerciseStart:   {Sound: SoundStartWhistle, Haptic: HapticLong, Flash: FlashGo},
	EventRestStart:       {Sound: SoundRestChime, Haptic: HapticDouble, Flash: FlashRest},
	EventSetComplete:     {Sound: SoundSetDing, Haptic: HapticDouble},
	EventWorkoutComplete: {Sound: SoundFanfare, Haptic: HapticCelebration, Flash: FlashDone},
	EventPaused:          {Sound: SoundPauseTone, Haptic: HapticTick, Flash: FlashPaused},
	EventResumed:         {Sound: SoundResumeTone, Haptic: HapticTick, Flash: FlashGo},
	EventWorkoutStopped:  {Sound: SoundStopTone, Haptic: HapticTriple},
}

// Lookup returns the cue for kind from table
func Lookup(table map[EventKind]Cue, kind EventKind) (Cue, bool) {
	cue, ok := table[kind]
	if !ok || cue == (Cue{}) {
		return Cue{}, false
	}
	return cue, true
}
