// Package vmconfig loads the small set of environment-driven knobs that
// tune the compiler/VM/collector without a command-line flag for each one:
// GC stress-testing and GC logging are developer and CI concerns, not
// something a script author should need to pass on the command line.
package vmconfig

import "github.com/caarlos0/env/v6"

// Config holds every environment-configurable runtime knob. Zero values are
// sensible defaults: GC runs on its normal schedule, nothing is overridden.
type Config struct {
	// GCStress forces a full collection on every single allocation instead of
	// only once the heap threshold is exceeded, trading performance for
	// maximum exposure to GC-correctness bugs (spec §4.5's stress-testing
	// mode).
	GCStress bool `env:"EMBER_GC_STRESS" envDefault:"false"`

	// LogGC, when set, makes the collector log a one-line summary (bytes
	// freed, next threshold) to stderr after every cycle.
	LogGC bool `env:"EMBER_LOG_GC" envDefault:"false"`
}

// Load reads Config from the process environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
