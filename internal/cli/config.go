package cli

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/roach88/clartest/internal/manifest"
	"github.com/roach88/clartest/internal/store"
)

// loadManifest loads the --manifest file, or the embedded devnet manifest
// when the flag is empty.
func loadManifest(opts *RootOptions) (*manifest.Manifest, error) {
	if opts.Manifest == "" {
		m, err := manifest.Default()
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to load embedded manifest", err)
		}
		return m, nil
	}

	m, err := manifest.Load(opts.Manifest)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, WrapExitError(ExitCommandError, "manifest not found", err)
	}
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid manifest", err)
	}
	return m, nil
}

// newLogger returns a text logger on stderr, Debug when verbose.
func newLogger(opts *RootOptions) *slog.Logger {
	logLevel := slog.LevelWarn
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	return slog.New(handler)
}

// openStore opens the chain log at path. With mustExist, a missing file is
// a command error instead of a new database.
func openStore(path string, mustExist bool) (*store.Store, error) {
	if mustExist {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return nil, NewExitError(ExitCommandError, "database not found: "+path)
		}
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}
