// Package profile provides optional runtime profiling for stencil.
//
// Profiling wraps [github.com/pkg/profile] and is compiled in only with the
// "pprof" build tag:
//
//	go build -tags pprof .
//
// Without the tag, [Modes] is empty and [Config.Start] returns a no-op.
//
// Supported modes: allocs, block, clock, cpu, goroutine, heap, mem, mutex,
// thread, trace.
//
//	cfg := profile.Config(func() (string, string, bool) { return "", "", false })
//	cfg = profile.WithMode("cpu")(cfg)
//	cfg = profile.WithPath("/tmp/profiles")(cfg)
//	defer cfg.Start().Stop()
package profile
