package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"
)

const (
	logFilePrefix = "meshwork-"
	logFileLayout = "2006-01-02T15-04-05"
)

// NewLogger builds the JSON slog logger used by every binary, at debug level
// in dev and info otherwise. With LogDir set, output is teed into a new
// timestamped file there and only the newest LogMaxFiles files are kept.
// The returned closer releases the file.
func NewLogger(cfg *Config) (*slog.Logger, func() error, error) {
	level := slog.LevelInfo
	if cfg.Environment == "dev" {
		level = slog.LevelDebug
	}

	var out io.Writer = os.Stdout
	closer := func() error { return nil }

	var pruneErr error
	if cfg.LogDir != "" {
		if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}

		name := filepath.Join(cfg.LogDir, logFilePrefix+time.Now().Format(logFileLayout)+".log")
		f, err := os.Create(name)
		if err != nil {
			return nil, nil, fmt.Errorf("create log file: %w", err)
		}
		out = io.MultiWriter(os.Stdout, f)
		closer = f.Close

		pruneErr = pruneLogFiles(cfg.LogDir, cfg.LogMaxFiles)
	}

	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level}))
	if pruneErr != nil {
		logger.Warn("failed to prune old log files", "dir", cfg.LogDir, "error", pruneErr)
	}
	return logger, closer, nil
}

// pruneLogFiles removes the oldest log files in dir beyond keep. File names
// embed their creation time, so name order is age order.
func pruneLogFiles(dir string, keep int) error {
	files, err := filepath.Glob(filepath.Join(dir, logFilePrefix+"*.log"))
	if err != nil {
		return err
	}
	if len(files) <= keep {
		return nil
	}

	slices.Sort(files)
	for _, name := range files[:len(files)-keep] {
		if err := os.Remove(name); err != nil {
			return fmt.Errorf("remove %s: %w", name, err)
		}
	}
	return nil
}
