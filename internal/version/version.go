package version

import (
	"strings"

	"github.com/fatih/color"
)

// Version information for the surgelint CLI.
// These variables can be overridden at build time via -ldflags.

var (
	// Number is the plain semantic version. Keep it undecorated: it is what
	// required_version constraints in surgelint.toml are checked against.
	Number = "0.1.0"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)
)

// Colored renders Number with per-component colors for terminal display.
// Anything after the patch component (pre-release, build metadata) is left
// uncolored.
func Colored() string {
	parts := strings.SplitN(Number, ".", 3)
	if len(parts) != 3 {
		return Number
	}
	return majorColor.Sprint(parts[0]) + "." + minorColor.Sprint(parts[1]) + "." + patchColor.Sprint(parts[2])
}
