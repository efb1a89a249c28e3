// Package cli implements the warden command line. verify runs the full
// verification pipeline locally against a file and reports the decision.
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// Exit codes returned by Execute.
const (
	ExitApproved = 0
	ExitFault    = 1
	ExitRejected = 2
	ExitReview   = 3
)

// ExitError carries a process exit code out of a command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

type options struct {
	configPath string
	version    string
}

// NewRootCmd builds the warden command tree.
func NewRootCmd(version string) *cobra.Command {
	opts := &options{version: version}

	root := &cobra.Command{
		Use:           "warden",
		Short:         "Verify content before it is published",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "config.toml", "Path to the TOML config file")

	root.AddCommand(newVerifyCmd(opts))
	root.AddCommand(newVersionCmd(opts))
	return root
}

// Execute runs the command tree with args and returns the process exit code.
// Errors other than decisions are written to stderr.
func Execute(version string, args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd(version)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err == nil {
		return ExitApproved
	}

	var exit *ExitError
	if errors.As(err, &exit) {
		if exit.Code == ExitFault && exit.Err != nil {
			fmt.Fprintln(stderr, "error:", exit.Err)
		}
		return exit.Code
	}

	fmt.Fprintln(stderr, "error:", err)
	return ExitFault
}
