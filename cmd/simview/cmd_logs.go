package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"simview/internal/actionlog"
	"simview/internal/cmdlog"
)

func newLogsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the most recent action-log rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			if !cmd.Flags().Changed("limit") {
				limit = a.cfg.Render.LogLimit
			}
			return cmdlog.Run("logs", func() error {
				db, err := a.openDB()
				if err != nil {
					return err
				}
				defer db.Close()
				snap, err := db.Snapshot(cmd.Context())
				if err != nil {
					return err
				}
				defer snap.Close()
				entries, err := snap.RecentActions(cmd.Context(), limit)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), actionlog.Format(entries, a.cfg.Render.FrameWidth))
				return nil
			})
		},
	}
	cmd.Flags().Int("limit", 0, "number of rows (default: from config)")
	return cmd
}
