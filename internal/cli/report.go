package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vvka-141/egresos/internal/report"
)

func newReportCommand(flags *globalFlags) *cobra.Command {
	var xlsx string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the number of records per year without loading anything",
		Example: `  egresos report
  egresos report --xlsx egresos.xlsx`,
		Args:         NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd)
			defer cancel()

			sess, err := openSession(ctx, cmd, flags, true)
			if err != nil || sess == nil {
				return err
			}
			defer sess.Close()

			counts := sess.validator().Validate(ctx, sess.cfg.Table)
			if xlsx == "" {
				return nil
			}

			manifest, err := sess.store.Manifest(ctx)
			if err != nil {
				return err
			}
			if err := report.WriteWorkbook(xlsx, counts, manifest); err != nil {
				return fmt.Errorf("export report: %w", err)
			}
			sess.logger.Info("Report written to %s", xlsx)
			return nil
		},
	}

	cmd.Flags().StringVar(&xlsx, "xlsx", "", "Also write the report and the load manifest to an Excel workbook")
	return cmd
}
