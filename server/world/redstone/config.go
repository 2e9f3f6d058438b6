package redstone

import (
	"log/slog"
)

// Config holds the tunable parameters for the redstone execution system.
// The zero value is usable; sensible defaults are applied by withDefaults.
type Config struct {
	// Enabled toggles the entire subsystem on or off.
	Enabled bool
	// InboxSize controls the bounded inbox channel size for cross-chunk events.
	InboxSize int
	// BudgetPerTick caps the amount of work a chunk worker may do per world tick.
	BudgetPerTick int
	// ProcessorFactory produces per-chunk processors responsible for evaluating local graphs.
	ProcessorFactory ProcessorFactory
}

func (c Config) withDefaults() Config {
	if !c.Enabled {
		return c
	}
	if c.InboxSize <= 0 {
		c.InboxSize = 4096
	}
	if c.BudgetPerTick <= 0 {
		c.BudgetPerTick = 8192
	}
	if c.ProcessorFactory == nil {
		c.ProcessorFactory = ProcessorFactoryFunc(func(_ ChunkID) Processor { return NewGraphProcessor() })
	}
	return c
}

// NewSystem logs a warning that the redstone subsystem is disabled and returns a nil *System. The configuration is
// not applied. A nil System reports Enabled as false and ignores every call.
func (c Config) NewSystem(log *slog.Logger) *System {
	log.Warn("redstone subsystem disabled", "status", "WIP", "help", "needed")
	return nil
}
