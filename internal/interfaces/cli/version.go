package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// BuildInfo holds version information injected at build time.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

func (b BuildInfo) String() string {
	return fmt.Sprintf("epiannotate %s (commit: %s, built: %s, %s)", b.Version, b.Commit, b.BuildDate, b.GoVersion)
}

// CurrentBuildInfo returns the injected build variables.
func CurrentBuildInfo() BuildInfo {
	return BuildInfo{Version: Version, Commit: GitCommit, BuildDate: BuildDate, GoVersion: runtime.Version()}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return PrintResult(cmd, CurrentBuildInfo())
		},
	}
}

//Personal.AI order the ending
