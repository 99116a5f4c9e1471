package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/lowaak/smart-trainer/workout-runner/internal/checkpoint"
	"github.com/lowaak/smart-trainer/workout-runner/internal/clock"
	"github.com/lowaak/smart-trainer/workout-runner/internal/config"
	"github.com/lowaak/smart-trainer/workout-runner/internal/engine"
	"github.com/lowaak/smart-trainer/workout-runner/internal/feedback"
	"github.com/lowaak/smart-trainer/workout-runner/internal/logging"
	"github.com/lowaak/smart-trainer/workout-runner/internal/player"
	"github.com/lowaak/smart-trainer/workout-runner/internal/timeline"
)

const resumeLatest = "latest"

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, config.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "workout-player: %v\n\n%s", err, config.Usage())
		os.Exit(2)
	}

	// the terminal belongs to tview, so logs default to a file next to the sessions
	if cfg.Log.File == "" {
		cfg.Log.File = filepath.Join(filepath.Dir(cfg.StoreDir), "workout-player.log")
	}
	uiLogChan := make(chan string, 256)
	logger, closeLog := logging.New(cfg.Log, logging.NewChanWriter(uiLogChan))
	defer closeLog()

	if err := run(cfg, logger, uiLogChan); err != nil {
		logger.Printf("Main: %v", err)
		fmt.Fprintf(os.Stderr, "workout-player: %v\n", err)
		closeLog()
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *log.Logger, uiLogChan <-chan string) error {
	ctx := context.Background()

	store, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	writer := checkpoint.NewWriter(store, logger, checkpoint.WriterOptions{})
	defer writer.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("opening terminal: %w", err)
	}
	app := tview.NewApplication().SetScreen(screen)

	model := player.NewModel(logger, uiLogChan)
	defer model.Shutdown()

	coordinator := feedback.NewCoordinator(player.NewTerminalSink(screen, model, logger), logger,
		feedback.CoordinatorOptions{QueueSize: cfg.FeedbackQueueSize})
	defer coordinator.Shutdown()

	eng := engine.NewEngine(clock.System(), coordinator, writer, cfg.EngineSettings(), logger)
	defer eng.Shutdown()

	controller := player.NewController(model, eng, logger)
	view := player.NewBaseView(player.NewBaseViewArg{
		Impl:       player.NewCursesView(logger, app),
		Model:      model,
		Controller: controller,
		Snapshots:  eng,
		Logger:     logger,
	})
	defer view.Shutdown()

	if err := startSession(ctx, cfg, store, eng, logger); err != nil {
		return err
	}

	return view.Run()
}

func openStore(cfg config.Config, logger *log.Logger) (checkpoint.ReadWriter, error) {
	switch cfg.StoreKind {
	case config.StoreSQLite:
		return checkpoint.OpenSQLiteStore(cfg.SQLitePath(), logger)
	default:
		return checkpoint.NewFileStore(cfg.StoreDir, logger)
	}
}

// startSession resumes the requested session or starts the routine file
func startSession(ctx context.Context, cfg config.Config, store checkpoint.Reader, eng *engine.Engine, logger *log.Logger) error {
	if cfg.ResumeSessionID != "" {
		rec, err := findSession(ctx, store, cfg.ResumeSessionID)
		if err != nil {
			return err
		}
		if err := eng.ResumeSession(ctx, rec); err != nil {
			return fmt.Errorf("resuming session %s: %w", rec.SessionID, err)
		}
		logger.Printf("Main: resumed session %s, press Space to continue", rec.SessionID)
		return nil
	}

	routine, err := timeline.LoadFile(cfg.RoutinePath)
	if err != nil {
		return err
	}
	if _, err := eng.StartWorkout(ctx, routine); err != nil {
		return fmt.Errorf("starting %s: %w", cfg.RoutinePath, err)
	}
	return nil
}

func findSession(ctx context.Context, store checkpoint.Reader, id string) (*checkpoint.Record, error) {
	if id != resumeLatest {
		return store.Load(ctx, id)
	}
	unfinished, err := store.Unfinished(ctx)
	if err != nil {
		return nil, err
	}
	if len(unfinished) == 0 {
		return nil, engine.ErrNoSession
	}
	return &unfinished[0], nil
}
