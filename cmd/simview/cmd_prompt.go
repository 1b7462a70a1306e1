package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"simview/internal/cmdlog"
	"simview/internal/jobs"
	"simview/internal/prompt"
)

// promptOptions applies the --no-* flags on top of the configured toggles.
func (a *app) promptOptions(cmd *cobra.Command) prompt.Options {
	opts := prompt.FromConfig(a.cfg.Prompt)
	if v, _ := cmd.Flags().GetBool("no-posts"); v {
		opts.IncludePosts = false
	}
	if v, _ := cmd.Flags().GetBool("no-followers"); v {
		opts.IncludeFollowers = false
	}
	if v, _ := cmd.Flags().GetBool("no-follows"); v {
		opts.IncludeFollows = false
	}
	return opts
}

func addPromptFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("no-posts", false, "omit the timeline")
	cmd.Flags().Bool("no-followers", false, "hide the follower count")
	cmd.Flags().Bool("no-follows", false, "hide the following count")
}

func newPromptCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompt <agent-id>",
		Short: "Render the perception text of one agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			agentID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid agent id %q", args[0])
			}
			return cmdlog.Run("prompt", func() error {
				db, err := a.openDB()
				if err != nil {
					return err
				}
				defer db.Close()
				text, err := a.renderer(db).Perception(cmd.Context(), agentID, a.promptOptions(cmd))
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			})
		},
	}
	addPromptFlags(cmd)
	return cmd
}

func newPromptsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompts",
		Short: "Render the perception texts of many agents",
		RunE: func(cmd *cobra.Command, args []string) error {
			agents, _ := cmd.Flags().GetInt64Slice("agent")
			return cmdlog.Run("prompts", func() error {
				db, err := a.openDB()
				if err != nil {
					return err
				}
				defer db.Close()
				if len(agents) == 0 {
					snap, err := db.Snapshot(cmd.Context())
					if err != nil {
						return err
					}
					agents, err = snap.AgentIDs(cmd.Context())
					_ = snap.Close()
					if err != nil {
						return err
					}
				}
				out, err := jobs.RenderPrompts(cmd.Context(), a.renderer(db), agents, a.promptOptions(cmd), a.cfg.Jobs)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				for i, p := range out {
					if i > 0 {
						fmt.Fprintln(w)
					}
					fmt.Fprintf(w, "===== agent %d =====\n%s\n", p.AgentID, p.Text)
				}
				return nil
			})
		},
	}
	cmd.Flags().Int64Slice("agent", nil, "agent ids to render (default: every agent)")
	addPromptFlags(cmd)
	return cmd
}
