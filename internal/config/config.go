package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/lowaak/smart-trainer/workout-runner/internal/checkpoint"
	"github.com/lowaak/smart-trainer/workout-runner/internal/engine"
	"github.com/lowaak/smart-trainer/workout-runner/internal/timeline"
)

// EnvPrefix is prepended to every environment override, e.g.
// WORKOUT_PREPARATION_SEC=5
const EnvPrefix = "WORKOUT"

// Store kinds
const (
	StoreJSON   = "json"
	StoreSQLite = "sqlite"
)

// ErrHelp is returned by Load when --help was given
var ErrHelp = pflag.ErrHelp

const (
	keyConfig          = "config"
	keyRoutine         = "routine"
	keyResume          = "resume"
	keyPreparationSec  = "preparation-sec"
	keyNextExerciseSec = "next-exercise-sec"
	keySecondsPerRep   = "seconds-per-rep"
	keyCheckpointSec   = "checkpoint-sec"
	keyRestCueWindow   = "rest-cue-window-sec"
	keyFeedbackQueue   = "feedback-queue"
	keyStore           = "store"
	keyStoreDir        = "store-dir"
	keyLogFile         = "log-file"
	keyLogMaxSizeMB    = "log-max-size-mb"
	keyLogMaxBackups   = "log-max-backups"
	keyLogMaxAgeDays   = "log-max-age-days"
)

// LogConfig controls where logs go and how they rotate
type LogConfig struct {
	File       string // empty logs to stderr
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Config is everything the player needs to run a session
type Config struct {
	RoutinePath string
	// ResumeSessionID picks a saved session to continue. "latest" picks the
	// most recently touched unfinished one.
	ResumeSessionID string

	PreparationSec     int
	NextExerciseSec    int
	SecondsPerRep      int
	CheckpointEverySec int
	RestCueWindowSec   int
	FeedbackQueueSize  int

	StoreKind string
	StoreDir  string

	Log LogConfig
}

// EngineSettings returns the engine timings from c
func (c Config) EngineSettings() engine.Settings {
	return engine.Settings{
		PreparationSec:     c.PreparationSec,
		NextExerciseSec:    c.NextExerciseSec,
		CheckpointEverySec: c.CheckpointEverySec,
		RestCueWindowSec:   c.RestCueWindowSec,
		SecondsPerRep:      c.SecondsPerRep,
	}
}

// SQLitePath is the database file used by the sqlite store
func (c Config) SQLitePath() string {
	return filepath.Join(c.StoreDir, "sessions.db")
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("workout-player", pflag.ContinueOnError)
	fs.String(keyConfig, "", "config file (yaml, json or toml)")
	fs.StringP(keyRoutine, "r", "", "routine file to run (yaml or json)")
	fs.String(keyResume, "", `session id to resume, or "latest"`)
	fs.Int(keyPreparationSec, engine.DefaultPreparationSec, "countdown before the first set, 0 to skip")
	fs.Int(keyNextExerciseSec, engine.DefaultNextExerciseSec, "countdown between exercises, 0 to skip")
	fs.Int(keySecondsPerRep, timeline.DefaultSecondsPerRep, "estimated seconds per rep for rep-based sets")
	fs.Int(keyCheckpointSec, engine.DefaultCheckpointEverySec, "seconds between progress saves during a set")
	fs.Int(keyRestCueWindow, engine.DefaultRestCueWindowSec, "only cue the last N seconds of a rest")
	fs.Int(keyFeedbackQueue, 64, "pending cue limit before cues are dropped")
	fs.String(keyStore, StoreJSON, "session store: json or sqlite")
	fs.String(keyStoreDir, checkpoint.DefaultDir(), "directory for saved sessions")
	fs.String(keyLogFile, "", "log file, stderr when empty")
	fs.Int(keyLogMaxSizeMB, 10, "rotate the log file after this many megabytes")
	fs.Int(keyLogMaxBackups, 3, "rotated log files to keep")
	fs.Int(keyLogMaxAgeDays, 28, "days to keep rotated log files")
	return fs
}

// Load parses args (without the program name), then applies the config
// file and WORKOUT_* environment variables. Flags given on the command
// line win over the environment, which wins over the file.
func Load(args []string) (Config, error) {
	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return Config{}, fmt.Errorf("binding flags: %w", err)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path := v.GetString(keyConfig); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	// a positional argument is taken as the routine path
	if v.GetString(keyRoutine) == "" && fs.NArg() > 0 {
		v.Set(keyRoutine, fs.Arg(0))
	}

	cfg := Config{
		RoutinePath:        v.GetString(keyRoutine),
		ResumeSessionID:    v.GetString(keyResume),
		PreparationSec:     v.GetInt(keyPreparationSec),
		NextExerciseSec:    v.GetInt(keyNextExerciseSec),
		SecondsPerRep:      v.GetInt(keySecondsPerRep),
		CheckpointEverySec: v.GetInt(keyCheckpointSec),
		RestCueWindowSec:   v.GetInt(keyRestCueWindow),
		FeedbackQueueSize:  v.GetInt(keyFeedbackQueue),
		StoreKind:          strings.ToLower(v.GetString(keyStore)),
		StoreDir:           v.GetString(keyStoreDir),
		Log: LogConfig{
			File:       v.GetString(keyLogFile),
			MaxSizeMB:  v.GetInt(keyLogMaxSizeMB),
			MaxBackups: v.GetInt(keyLogMaxBackups),
			MaxAgeDays: v.GetInt(keyLogMaxAgeDays),
		},
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings the player cannot run with
func (c Config) Validate() error {
	var errs []error
	if c.RoutinePath == "" && c.ResumeSessionID == "" {
		errs = append(errs, errors.New("either a routine file or --resume is required"))
	}
	if c.StoreKind != StoreJSON && c.StoreKind != StoreSQLite {
		errs = append(errs, fmt.Errorf("unknown store %q, want %s or %s", c.StoreKind, StoreJSON, StoreSQLite))
	}
	if c.StoreDir == "" {
		errs = append(errs, errors.New("store-dir cannot be empty"))
	}
	if c.PreparationSec < 0 || c.NextExerciseSec < 0 || c.RestCueWindowSec < 0 {
		errs = append(errs, errors.New("countdowns cannot be negative"))
	}
	if c.SecondsPerRep <= 0 {
		errs = append(errs, errors.New("seconds-per-rep must be positive"))
	}
	if c.CheckpointEverySec <= 0 {
		errs = append(errs, errors.New("checkpoint-sec must be positive"))
	}
	return errors.Join(errs...)
}

// Usage returns the flag help text
func Usage() string {
	return newFlagSet().FlagUsages()
}
