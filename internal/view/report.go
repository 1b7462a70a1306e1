package view

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"simview/internal/actionlog"
	"simview/internal/analytics"
	"simview/internal/classify"
	"simview/internal/logging"
	"simview/internal/metrics"
	"simview/internal/model"
	"simview/internal/prompt"
	"simview/internal/thread"
	"simview/internal/util"
)

const (
	reportTitle = "SIMULATION AUDIT REPORT"
	// LogsUnavailable replaces the action log when the trace cannot be read.
	LogsUnavailable = "Failed to load the action log."
)

// Report renders the audit report: every post with every comment, a category
// summary, an action histogram and the logLimit most recent trace rows.
// A negative logLimit uses the configured limit; 0 shows no rows. Failing to open the snapshot or to
// list posts is returned; other failures degrade their section.
func (r *Renderer) Report(ctx context.Context, logLimit int) (out string, err error) {
	start := time.Now()
	renderID := uuid.NewString()
	defer func() { metrics.ObserveRender(modeReport, start, err) }()

	if logLimit < 0 {
		logLimit = r.cfg.LogLimit
	}
	snap, err := r.src.Snapshot(ctx)
	if err != nil {
		return "", fmt.Errorf("open snapshot: %w", err)
	}
	defer snap.Close()

	posts, err := snap.Posts(ctx)
	if err != nil {
		return "", fmt.Errorf("list posts: %w", err)
	}
	threads := r.threads(ctx, snap, posts, thread.Limits{})

	var logs prompt.Section
	var histogram []string
	entries, err := snap.RecentActions(ctx, logLimit)
	if err != nil {
		logs = prompt.Degrade("action_log", LogsUnavailable, err)
		histogram = []string{LogsUnavailable}
	} else {
		logs = prompt.Rendered("action_log", actionlog.Format(entries, r.width()))
		histogram = histogramLines(entries)
	}

	w := r.width()
	parts := []string{
		banner(reportTitle, w),
		"",
		heading("Summary", w),
	}
	parts = append(parts, summaryLines(threads)...)
	parts = append(parts, "", heading("Timeline", w))
	if len(threads) == 0 {
		parts = append(parts, "(no posts)")
	}
	for _, th := range threads {
		parts = append(parts, framedThread(th, w))
	}
	parts = append(parts, "", heading(fmt.Sprintf("Actions (latest %d)", logLimit), w))
	parts = append(parts, histogram...)
	parts = append(parts, "", heading("Action log", w), logs.Text)
	out = strings.Join(parts, "\n")

	logging.Info("report_rendered", map[string]any{
		"render_id": renderID, "posts": len(threads), "log_rows": len(entries), "log_degraded": logs.Degraded,
	})
	return out, nil
}

func (r *Renderer) width() int {
	if r.cfg.FrameWidth > 0 {
		return r.cfg.FrameWidth
	}
	return actionlog.DefaultWidth
}

// banner draws title in a double-line box width columns wide.
func banner(title string, width int) string {
	inner := width - 2
	return "╔" + strings.Repeat("═", inner) + "╗\n" +
		"║ " + util.PadRight(title, inner-1, ' ') + "║\n" +
		"╚" + strings.Repeat("═", inner) + "╝"
}

// heading draws "══ title ═══" width columns wide.
func heading(title string, width int) string {
	fill := width - 4 - util.DisplayWidth(title)
	if fill < 3 {
		fill = 3
	}
	return "══ " + title + " " + strings.Repeat("═", fill)
}

func summaryLines(threads []thread.Thread) []string {
	counts := make(map[classify.Category]int)
	comments := 0
	for _, th := range threads {
		counts[th.Class.Category]++
		comments += len(th.Comments)
	}
	out := []string{fmt.Sprintf("Posts: %d | Comments: %d", len(threads), comments)}
	for _, c := range classify.Categories {
		out = append(out, fmt.Sprintf("  %-14s %d", c.String(), counts[c]))
	}
	return out
}

func histogramLines(entries []model.ActionLogEntry) []string {
	if len(entries) == 0 {
		return []string{actionlog.NoLogs}
	}
	var out []string
	for _, ac := range analytics.SortedActions(analytics.ActionCounts(entries)) {
		out = append(out, fmt.Sprintf("  %-20s %d", ac.Action, ac.Count))
	}
	agents := analytics.ActiveAgents(entries)
	ids := make([]string, len(agents))
	for i, id := range agents {
		ids[i] = fmt.Sprint(id)
	}
	return append(out, fmt.Sprintf("Active agents: %d [%s]", len(agents), strings.Join(ids, ", ")))
}

// framedThread renders one post and all its comments in a box.
func framedThread(th thread.Thread, width int) string {
	p := th.Post
	title := fmt.Sprintf("post %d · user %d · %s · %s", p.ID, p.UserID, th.Class.Category, p.CreatedAt)
	lines := classify.Lines(th.Class)
	if p.Likes != nil {
		lines = append(lines, fmt.Sprintf("likes: %d", *p.Likes))
	}
	for _, c := range th.Comments {
		lines = append(lines, fmt.Sprintf("  ↳ comment %d · user %d · %s", c.ID, c.UserID, c.CreatedAt))
		body := classify.NoBody
		if !util.IsBlank(c.Content) {
			body = c.Content
		}
		for _, l := range util.SplitLines(body) {
			lines = append(lines, "    "+l)
		}
	}
	return actionlog.Frame(title, lines, width)
}
