package config

import "runtime"

const (
	defaultMode          = "move"
	defaultEarliestYear  = 1990
	defaultFFprobeBinary = "ffprobe"
	defaultProbeTimeout  = 30
	defaultSniffBytes    = 64
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Organize: Organize{
			Mode:        defaultMode,
			Concurrency: defaultConcurrency(),
		},
		Dates: Dates{
			EarliestYear: defaultEarliestYear,
		},
		Probe: Probe{
			FFprobeBinary:  defaultFFprobeBinary,
			TimeoutSeconds: defaultProbeTimeout,
			SniffBytes:     defaultSniffBytes,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

func defaultConcurrency() int {
	n := runtime.NumCPU()
	if n < 1 {
		return 1
	}
	if n > 8 {
		return 8
	}
	return n
}
