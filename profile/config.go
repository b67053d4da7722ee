package profile

// Tag is the build tag that enables profiling. It also names the default
// profile output directory.
const Tag = "pprof"

// Config functions return all supported pprof configuration parameters.
type Config func() (mode, path string, quiet bool)

// Start initializes the profiler and returns an interface for stopping it.
//
// If the pprof build tag or the mode is unset, Start returns a no-op.
// Both Start and Stop are always safely callable.
func (c Config) Start() interface{ Stop() } {
	if c == nil {
		return ignore{}
	}

	mode, path, quiet := c()
	if mode == "" {
		return ignore{}
	}

	return start(mode, path, quiet)
}

// WithMode returns a functional option for setting a profiler's mode.
func WithMode(mode string) func(Config) Config {
	return func(c Config) Config {
		_, path, quiet := c.values()

		return func() (string, string, bool) { return mode, path, quiet }
	}
}

// WithPath returns a functional option for setting a profiler's output path.
func WithPath(path string) func(Config) Config {
	return func(c Config) Config {
		mode, _, quiet := c.values()

		return func() (string, string, bool) { return mode, path, quiet }
	}
}

// WithQuiet returns a functional option for setting a profiler's quiet flag.
func WithQuiet(quiet bool) func(Config) Config {
	return func(c Config) Config {
		mode, path, _ := c.values()

		return func() (string, string, bool) { return mode, path, quiet }
	}
}

func (c Config) values() (string, string, bool) {
	if c == nil {
		return "", "", false
	}

	return c()
}

type ignore struct{}

func (ignore) Stop() {}
