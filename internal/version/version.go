// Package version holds build information for the irforge CLI.
// The variables can be overridden at build time via -ldflags.
package version

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

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

// Colored paints the major, minor and patch parts of Version. Colors
// follow color.NoColor, so the result is plain text when output is not
// a terminal.
func Colored() string {
	core, suffix, _ := strings.Cut(Version, "-")
	parts := strings.SplitN(core, ".", 3)
	if len(parts) != 3 {
		return Version
	}
	out := majorColor.Sprint(parts[0]) + "." + minorColor.Sprint(parts[1]) + "." + patchColor.Sprint(parts[2])
	if suffix != "" {
		out += "-" + suffix
	}
	return out
}

// Info is the text printed by `irforge version`. dialects lists the IR
// versions the writer supports.
func Info(dialects []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "irforge %s\n", Colored())
	if GitCommit != "" {
		fmt.Fprintf(&sb, "commit:   %s\n", GitCommit)
	}
	if BuildDate != "" {
		fmt.Fprintf(&sb, "built:    %s\n", BuildDate)
	}
	if len(dialects) > 0 {
		fmt.Fprintf(&sb, "dialects: %s\n", strings.Join(dialects, ", "))
	}
	return sb.String()
}
