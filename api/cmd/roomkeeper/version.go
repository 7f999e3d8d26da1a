package roomkeeper

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Version returns the build's vcs revision, falling back to "<unknown>"
// outside a module build (e.g. `go run`).
func Version() string {
	version := "<unknown>"
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, kv := range info.Settings {
			if kv.Key == "vcs.revision" && kv.Value != "" {
				version = kv.Value
			}
		}
	}
	return version
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(Version())
		},
	}
}
