package driver

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]func(Config, *slog.Logger) (Driver, error))
)

// Register adds a driver factory to the registry.
// Called by driver implementations in their init() functions.
func Register(name string, factory func(Config, *slog.Logger) (Driver, error)) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// Get retrieves a driver factory by name.
func Get(name string) (func(Config, *slog.Logger) (Driver, error), bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[name]
	return f, ok
}

// Open creates and connects a driver based on config type.
// The logger parameter is passed to the driver constructor (nil uses a
// discard logger).
func Open(cfg Config, logger *slog.Logger) (Driver, error) {
	if cfg.Type == "" {
		return nil, fmt.Errorf("driver type not specified")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	factory, ok := Get(cfg.Type)
	if !ok {
		return nil, &UnknownDriverError{
			Type:      cfg.Type,
			Available: List(),
		}
	}
	return factory(cfg, logger)
}

// List returns all registered driver names (sorted).
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a driver type is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[name]
	return ok
}

// UnknownDriverError is returned when an unknown driver type is requested.
type UnknownDriverError struct {
	Type      string
	Available []string
}

func (e *UnknownDriverError) Error() string {
	return fmt.Sprintf("unknown driver type %q\nAvailable drivers: %v", e.Type, e.Available)
}
