package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"simview/internal/cmdlog"
	"simview/internal/jobs"
)

func newReportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render the audit report and save it under the report directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			logLimit, _ := cmd.Flags().GetInt("logs")
			if !cmd.Flags().Changed("logs") {
				logLimit = a.cfg.Render.LogLimit
			}
			out, _ := cmd.Flags().GetString("out")
			noSave, _ := cmd.Flags().GetBool("no-save")
			watch, _ := cmd.Flags().GetBool("watch")
			interval, _ := cmd.Flags().GetDuration("interval")
			if out == "" {
				out = a.cfg.Report.OutDir
			}
			if interval <= 0 {
				interval = a.cfg.Report.WatchInterval
			}
			return cmdlog.Run("report", func() error {
				db, err := a.openDB()
				if err != nil {
					return err
				}
				defer db.Close()
				r := a.renderer(db)

				if watch {
					err := jobs.WatchReports(cmd.Context(), r, out, logLimit, interval, nil)
					if errors.Is(err, context.Canceled) {
						return nil
					}
					return err
				}
				text, err := r.Report(cmd.Context(), logLimit)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), text)
				if noSave {
					return nil
				}
				path, err := jobs.WriteReport(out, text, time.Now())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.ErrOrStderr(), "Report saved to:", path)
				return nil
			})
		},
	}
	cmd.Flags().Int("logs", 0, "number of recent action-log rows (default: from config)")
	cmd.Flags().String("out", "", "report directory (default: from config)")
	cmd.Flags().Bool("no-save", false, "print only, do not write a file")
	cmd.Flags().Bool("watch", false, "save a report periodically until interrupted")
	cmd.Flags().Duration("interval", 0, "watch interval (default: from config)")
	return cmd
}
