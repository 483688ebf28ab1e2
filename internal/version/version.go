// Package version provides version information for the binary.
package version

import (
	"fmt"
	"runtime"
)

// Version, Commit and BuildTime are set at build time using -ldflags, e.g.
//
//	-X github.com/matiasleandrokruk/soksol/internal/version.Version=v0.3.0
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

// String returns the formatted version information.
func String() string {
	return fmt.Sprintf("soksol version %s (commit %s, built %s, %s)", Version, Commit, BuildTime, runtime.Version())
}
