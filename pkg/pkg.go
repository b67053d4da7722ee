//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

// version is the semantic version of the stencil module embedded at build
// time.
//
//go:embed VERSION
var version string

// Version is the trimmed semantic version printed by the CLI.
var Version = strings.TrimSpace(version)

const (
	// Name is the canonical command and module identifier used across the
	// project. It appears in help text and default config paths.
	Name = "stencil"
	// Description is a short, human-readable summary of the project used in
	// help output and documentation.
	Description = "Hierarchical macro template processor"
)
