// Package cmd implements the stencil subcommands.
//
// Each command is a kong command struct whose Run method receives the
// process [context.Context]. Commands share flag groups for declaring
// variables ([Declare]) and tuning the expansion engine ([Expansion]).
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the base
	// path of the configuration file.
	ConfigIdentifier = "config"
)
