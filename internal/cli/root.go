package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vvka-141/egresos/internal/metrics"
	"github.com/vvka-141/egresos/pkg/egresos"
)

const rootLong = `egresos loads the yearly hospital discharge extracts (EGRE_DATOS_ABIERTOS_<year>.csv)
from the data directory into a single database table, one year at a time.

Years already present in the table are skipped, so the command is safe to re-run.
After every run the number of records per year is printed.

Configuration is read from egresos.yaml in the base directory (or --config),
then from EGRESOS_* environment variables (a .env file is loaded first), then flags.

Exit Codes:
  0  - Success (per-file failures are logged and do not change the exit code)
  1  - Fatal error (invalid configuration, database unavailable, data directory missing)
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error`

type rootOptions struct {
	globalFlags
	file string
}

// NewRootCommand builds the egresos command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "egresos",
		Short: "Load yearly hospital discharge extracts into a database",
		Long:  rootLong,
		Example: `  egresos
  egresos --data-dir ./data --database ./database/egresos.db
  egresos -f ./incoming/EGRE_DATOS_ABIERTOS_2023.csv
  egresos report --xlsx egresos.xlsx`,
		Args:          NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Process a single file instead of scanning the data directory")
	cmd.SetFlagErrorFunc(usageError)

	cmd.AddCommand(
		newReportCommand(&opts.globalFlags),
		newStatusCommand(&opts.globalFlags),
		newVersionCommand(),
	)
	return cmd
}

// Execute runs the command tree against os.Args and prints any error to stderr.
func Execute() error {
	cmd := NewRootCommand()
	err := cmd.Execute()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	}
	return err
}

// signalContext cancels on Ctrl+C or SIGTERM so the file in flight can roll back.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func runIngest(cmd *cobra.Command, opts *rootOptions) error {
	if cmd.Flags().Changed("file") && opts.file == "" {
		return usageError(cmd, fmt.Errorf("--file requires a non-empty path"))
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	sess, err := openSession(ctx, cmd, &opts.globalFlags, false)
	if err != nil {
		return err
	}
	defer sess.Close()

	recorder := metrics.NewRecorder()
	svc, err := sess.ingestionService(recorder)
	if err != nil {
		return err
	}

	var summary egresos.RunSummary
	if opts.file != "" {
		summary, err = svc.RunFile(ctx, sess.ingestConfig(), opts.file)
	} else {
		summary, err = svc.Run(ctx, sess.ingestConfig())
	}
	summarize(sess.logger, summary)
	sess.writeMetrics(recorder)

	if err != nil {
		return fmt.Errorf("ingestion stopped: %w", err)
	}
	return nil
}
