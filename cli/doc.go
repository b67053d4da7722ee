// Package cli contains the command line interface for stencil.
//
// # Usage
//
//	stencil [flags] [render] <dir>     expand a template tree in place
//	stencil expand [file|-]            expand one template to stdout
//	stencil repl                       expand templates interactively
//
// Variables are declared before processing with --vars (YAML, JSON or HCL
// files) and --set NAME=VALUE, and are visible to every template:
//
//	stencil render --set version=1.2.0 -f vars.yaml ./templates
//
// # Configuration
//
// Flag defaults are read from $XDG_CONFIG_HOME/stencil/config.json and
// config.yaml. The YAML file is a flat mapping of flag names, with either
// hyphens or underscores:
//
//	log-level: debug
//	max_passes: 4
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize text output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof .
//	stencil --pprof-mode=cpu render ./templates
package cli
