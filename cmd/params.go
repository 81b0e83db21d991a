package cmd

import (
	"io"
	"log"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// startupParams is the resolved config plus the outputs a command writes to
type startupParams struct {
	cfg   *Config
	out   *log.Logger // Human readable progress and results
	trace *log.Logger // Sample trace, nil when no trace file was requested
	log   *zap.Logger // Structured diagnostics

	closers []io.Closer
}

func newStartupParams(cfg *Config) (*startupParams, error) {
	sp := &startupParams{
		cfg: cfg,
		out: log.New(os.Stdout, "", 0),
	}

	var err error
	if cfg.Verbose {
		sp.log, err = zap.NewDevelopment()
	} else {
		sp.log, err = zap.NewProduction()
	}
	if err != nil {
		return nil, errors.Wrap(err, "Could not create logger")
	}

	if len(cfg.Trace) > 0 {
		f, err := os.Create(cfg.Trace)
		if err != nil {
			return nil, errors.Wrapf(err, "Could not create trace file %s", cfg.Trace)
		}
		sp.trace = log.New(f, "", 0)
		sp.closers = append(sp.closers, f)
	}

	return sp, nil
}

// Close flushes the logger and closes any output files
func (sp *startupParams) Close() {
	for _, c := range sp.closers {
		if err := c.Close(); err != nil {
			sp.log.Warn("close failed", zap.Error(err))
		}
	}
	sp.closers = nil
	_ = sp.log.Sync()
}
