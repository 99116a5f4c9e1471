package player

import (
	"fmt"
	"strings"

	"github.com/lowaak/smart-trainer/workout-runner/internal/engine"
	"github.com/lowaak/smart-trainer/workout-runner/internal/feedback"
	"github.com/lowaak/smart-trainer/workout-runner/internal/transition"
)

// formatMMSS formats seconds as MM:SS
func formatMMSS(totalSeconds int) string {
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	return fmt.Sprintf("%02d:%02d", totalSeconds/60, totalSeconds%60)
}

func progressBar(percent float64, width int) string {
	filled := int(percent / 100 * float64(width))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return "[green]" + strings.Repeat("█", filled) + "[gray]" + strings.Repeat("░", width-filled) + "[white]"
}

func transitionLabel(kind transition.Kind) string {
	switch kind {
	case transition.KindPreparation:
		return "Get ready"
	case transition.KindRest:
		return "Rest"
	case transition.KindNextExercise:
		return "Next exercise in"
	}
	return string(kind)
}

// formatSnapshot renders the session panel
func formatSnapshot(snap engine.Snapshot) string {
	var b strings.Builder
	b.WriteString("\n")

	switch snap.Phase {
	case engine.PhaseIdle:
		b.WriteString("  [gray]No workout loaded[white]\n")
		return b.String()
	case engine.PhaseCompleted:
		fmt.Fprintf(&b, "  [yellow]%s[white] [green](COMPLETE)[white]\n\n", snap.RoutineName)
		fmt.Fprintf(&b, "  [gray]Total time:[white] %s\n\n", formatMMSS(snap.TotalElapsedSec))
		b.WriteString("  [yellow]Esc[white] Quit\n")
		return b.String()
	case engine.PhaseStopped:
		fmt.Fprintf(&b, "  [yellow]%s[white] [red](STOPPED)[white]\n\n", snap.RoutineName)
		fmt.Fprintf(&b, "  [gray]Total time:[white] %s\n\n", formatMMSS(snap.TotalElapsedSec))
		b.WriteString("  [yellow]Esc[white] Quit\n")
		return b.String()
	case engine.PhasePaused:
		fmt.Fprintf(&b, "  [yellow]%s[white] [gray](PAUSED)[white]\n\n", snap.RoutineName)
	default:
		fmt.Fprintf(&b, "  [yellow]%s[white]\n\n", snap.RoutineName)
	}

	fmt.Fprintf(&b, "  [gray]Elapsed:[white]  %s\n", formatMMSS(snap.TotalElapsedSec))
	fmt.Fprintf(&b, "  [gray]Progress:[white] %s %3.0f%%\n\n", progressBar(snap.ProgressPercent, 20), snap.ProgressPercent)

	block := snap.CurrentBlock
	fmt.Fprintf(&b, "  [cyan]%s[white] (%d/%d)\n", block.DisplayName(), snap.CurrentBlockIndex+1, snap.BlockCount)
	fmt.Fprintf(&b, "  [gray]Set:[white] %d/%d\n", snap.CurrentSet, snap.TotalSets)
	if block.IsRepBased() {
		fmt.Fprintf(&b, "  [gray]Target:[white] [yellow]%d[white] reps  [gray]%s[white]\n", block.TargetReps, formatMMSS(snap.ElapsedInSetSec))
	} else {
		fmt.Fprintf(&b, "  [gray]Set time:[white] %s / %s\n", formatMMSS(snap.ElapsedInSetSec), formatMMSS(block.TargetDurationSec))
	}

	if snap.Transition.Pending() {
		fmt.Fprintf(&b, "\n  [yellow]%s %d[white]\n", transitionLabel(snap.Transition.Kind), snap.Transition.RemainingSec)
	}

	b.WriteString("\n  [gray]─────────────────────────[white]\n")
	if snap.Phase == engine.PhasePaused {
		b.WriteString("  [yellow]Space[white] Resume  |  [yellow]S[white] Stop\n")
	} else {
		b.WriteString("  [yellow]Space[white] Pause  |  [yellow]S[white] Stop\n")
	}
	return b.String()
}

// flashColor maps a flash cue to a border color name
func flashColor(token feedback.FlashToken) string {
	switch token {
	case feedback.FlashGo:
		return "green"
	case feedback.FlashRest:
		return "blue"
	case feedback.FlashDone:
		return "yellow"
	case feedback.FlashPaused:
		return "gray"
	}
	return "white"
}
