package scheduler

import "log/slog"

// Config holds the tunable collaborators and parameters for a Scheduler. The
// zero value is usable; sensible defaults are applied by New, the same
// pattern server/world/redstone.Config and SchedulerConfig use.
type Config struct {
	// Log receives diagnostic output from the engine. Defaults to
	// slog.Default().
	Log *slog.Logger
	// Timer arms wall-clock callbacks for Duration schedules. Defaults to
	// RealTimer{}.
	Timer TimerService
	// Pool runs Async task bodies off the processing thread. Defaults to a
	// Pool sized to runtime.GOMAXPROCS(0).
	Pool WorkerPool
	// Sink receives errors from Futures that resolve with failure. Defaults
	// to a SlogSink wrapping Log.
	Sink ExceptionSink
}

func (c Config) withDefaults() Config {
	if c.Log == nil {
		c.Log = slog.Default()
	}
	if c.Timer == nil {
		c.Timer = RealTimer{}
	}
	if c.Pool == nil {
		c.Pool = NewPool(0)
	}
	if c.Sink == nil {
		c.Sink = SlogSink{Log: c.Log}
	}
	return c
}

// New constructs a Scheduler from the configuration passed.
func New(cfg Config) *Scheduler {
	cfg = cfg.withDefaults()
	return &Scheduler{
		log:    cfg.Log,
		timer:  cfg.Timer,
		pool:   cfg.Pool,
		sink:   cfg.Sink,
		live:   newLiveness(),
		wheel:  newWheel(),
		ready:  newReadyQueue(),
		parked: newParkedSet(),
	}
}
