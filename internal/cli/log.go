// Package cli implements the groupfit command-line interface.
//
// The CLI fits groups in diagram files, renders them to image and exchange
// formats, keeps versioned snapshots, and serves the same operations over
// HTTP. It is built with cobra and logs through charmbracelet/log.
//
// # Commands
//
//   - fit: resize one group, or every group, of a diagram file
//   - render: fit and write svg, png, pdf, dot, drawio, json or yaml outputs
//   - snapshot: save, list, show, restore and delete stored diagrams
//   - serve: run the HTTP API
//   - cache: manage the fit/render cache
//
// # Logging
//
// Every command supports --verbose (-v) for debug-level logging, which also
// logs pipeline, cache and store events. Loggers travel through
// context.Context so helpers can report progress.
//
// # Example
//
//	c := cli.New(os.Stderr, cli.LogInfo)
//	if err := c.RootCommand().ExecuteContext(ctx); err != nil {
//	    os.Exit(1)
//	}
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger writing to w at level, with "HH:MM:SS.ms"
// timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs the elapsed time of an operation when it completes.
// It is not safe for concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Rendered 3 outputs (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a copy of ctx carrying l.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached to ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
