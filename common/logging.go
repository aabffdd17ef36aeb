// Package common holds shared service plumbing: logger setup and version
// information.
package common

import (
	"log/slog"
	"os"
)

// PackageName tags metrics and logs emitted by this service.
const PackageName = "deed-escrow-backend"

// LoggingOpts configures SetupLogger.
type LoggingOpts struct {
	// Debug enables debug-level logging.
	Debug bool

	// JSON switches from text to JSON output.
	JSON bool

	// Service is added as a "service" attribute to all records if set.
	Service string

	// Version is added as a "version" attribute to all records if set.
	Version string
}

// SetupLogger creates a configured slog logger writing to stderr.
func SetupLogger(opts *LoggingOpts) *slog.Logger {
	logLevel := slog.LevelInfo
	if opts.Debug {
		logLevel = slog.LevelDebug
	}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	}

	log := slog.New(handler)
	if opts.Service != "" {
		log = log.With("service", opts.Service)
	}
	if opts.Version != "" {
		log = log.With("version", opts.Version)
	}
	return log
}
