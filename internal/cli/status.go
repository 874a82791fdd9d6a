package cli

import (
	"github.com/spf13/cobra"

	"github.com/vvka-141/egresos/internal/report"
	"github.com/vvka-141/egresos/internal/tui"
)

func newStatusCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:          "status",
		Short:        "List the files whose data has been committed to the database",
		Args:         NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd)
			defer cancel()

			sess, err := openSession(ctx, cmd, flags, true)
			if err != nil {
				return err
			}
			if sess == nil {
				out := cmd.OutOrStdout()
				report.NewRenderer(out, tui.DetectMode(out)).Manifest(nil)
				return nil
			}
			defer sess.Close()

			entries, err := sess.store.Manifest(ctx)
			if err != nil {
				return err
			}
			sess.renderer.Manifest(entries)
			return nil
		},
	}
}
