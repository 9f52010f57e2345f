package main

import (
	"log/slog"

	"github.com/c360/semunits/unit"
)

// LogKind is the built-in unit kind that logs its lifecycle. It lets
// resources be exercised from the command line without custom kinds.
const LogKind = "log"

type logCapability struct {
	logger *slog.Logger
	name   string
}

func (l *logCapability) Initialize(cfg *unit.Config) error {
	l.name = cfg.Name
	l.logger.Info("Unit initialized", "unit", cfg.Name, "params", len(cfg.Params))
	return nil
}

func (l *logCapability) Shutdown() error {
	l.logger.Info("Unit shut down", "unit", l.name)
	return nil
}

func registerKinds(r *unit.Registry, logger *slog.Logger) error {
	return r.Capabilities().Register(LogKind, func() unit.Capability {
		return &logCapability{logger: logger}
	})
}
