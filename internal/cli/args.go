package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vvka-141/egresos/pkg/egresos"
)

// usageError marks err as a command-line mistake so the process exits with code 2.
func usageError(cmd *cobra.Command, err error) error {
	return fmt.Errorf("%w: %v\n\nUsage: %s\nRun '%s --help' for details.", egresos.ErrUsage, err, cmd.UseLine(), cmd.CommandPath())
}

// NoArgs rejects positional arguments. The pipeline takes its inputs from
// flags and configuration only.
func NoArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usageError(cmd, fmt.Errorf("unexpected argument %q", args[0]))
	}
	return nil
}
