// Package roomkeeper is the cobra CLI entrypoint: serve, retrain, version.
package roomkeeper

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// Fatal is the process-exit handler used by Execute on a top-level error,
// exported so it can be swapped out in tests.
var Fatal = FatalErrorHandler

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "roomkeeper",
		Short: "roomkeeper",
		Long:  "Room-allocation decision engine: idle-probability prediction, constrained allocation, and what-if simulation.",
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newRetrainCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// Execute runs the root command, exiting the process on error.
func Execute() {
	rootCmd := NewRootCmd()
	rootCmd.SetContext(context.Background())
	rootCmd.SetOutput(os.Stdout)
	if err := rootCmd.Execute(); err != nil {
		Fatal(rootCmd, err.Error(), 1)
	}
}

// FatalErrorHandler prints msg to the command's output and exits with code.
func FatalErrorHandler(cmd *cobra.Command, msg string, code int) {
	if len(msg) > 0 {
		if !strings.HasSuffix(msg, "\n") {
			msg += "\n"
		}
		cmd.Print(msg)
	}
	os.Exit(code)
}
