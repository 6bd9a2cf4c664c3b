// Package logging provides component-aware loggers with consistent field
// naming. Every subsystem asks the factory for its own logger instead of
// using the global default, so log output can be filtered per component.
package logging

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// Factory hands out loggers scoped to a component, with per-component log
// levels loadable from the environment.
type Factory struct {
	baseLogger *log.Logger

	mu     sync.RWMutex
	levels map[string]log.Level
}

// NewFactory creates a logger factory around a base logger.
func NewFactory(baseLogger *log.Logger) *Factory {
	return &Factory{
		baseLogger: baseLogger,
		levels:     map[string]log.Level{},
	}
}

// ForComponent creates a logger for a specific component.
func (lf *Factory) ForComponent(id string) *log.Logger {
	logger := lf.baseLogger.With("component", id)
	lf.mu.RLock()
	level, ok := lf.levels[id]
	lf.mu.RUnlock()
	if ok {
		logger.SetLevel(level)
	}
	return logger
}

// ForService creates a logger for service components.
func (lf *Factory) ForService(id string) *log.Logger {
	return lf.ForComponent("service." + id)
}

// ForHandler creates a logger for HTTP handler components.
func (lf *Factory) ForHandler(id string) *log.Logger {
	return lf.ForComponent("handler." + id)
}

// ForRepository creates a logger for storage components.
func (lf *Factory) ForRepository(id string) *log.Logger {
	return lf.ForComponent("repository." + id)
}

// ForClient creates a logger for external-client components.
func (lf *Factory) ForClient(id string) *log.Logger {
	return lf.ForComponent("client." + id)
}

// WithSessionID adds session correlation to a logger.
func (lf *Factory) WithSessionID(logger *log.Logger, sessionID string) *log.Logger {
	return logger.With("session_id", sessionID)
}

// WithError adds error context to a logger.
func (lf *Factory) WithError(logger *log.Logger, err error) *log.Logger {
	if err != nil {
		return logger.With("error", err.Error())
	}
	return logger
}

// SetComponentLogLevel sets the logging level for a specific component.
// It affects loggers created after the call.
func (lf *Factory) SetComponentLogLevel(id string, level log.Level) {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	lf.levels[id] = level
}

// LoadLogLevelsFromEnv reads LOG_LEVEL_<COMPONENT> variables, e.g.
// LOG_LEVEL_SERVICE_ASSISTANT=debug.
func (lf *Factory) LoadLogLevelsFromEnv() {
	for _, entry := range os.Environ() {
		key, value, found := strings.Cut(entry, "=")
		if !found || !strings.HasPrefix(key, "LOG_LEVEL_") {
			continue
		}
		level, err := log.ParseLevel(value)
		if err != nil {
			lf.baseLogger.Warn("Invalid component log level", "key", key, "value", value)
			continue
		}
		component := strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(key, "LOG_LEVEL_"), "_", "."))
		lf.SetComponentLogLevel(component, level)
	}
}

// NewBaseLogger builds the process-wide base logger.
func NewBaseLogger(level string) (*log.Logger, error) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
	})
	if level == "" {
		return logger, nil
	}
	parsed, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger.SetLevel(parsed)
	return logger, nil
}
