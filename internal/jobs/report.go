package jobs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"simview/internal/logging"
)

// Reporter renders an audit report.
type Reporter interface {
	Report(ctx context.Context, logLimit int) (string, error)
}

// ReportName is the file name of a report generated at t.
func ReportName(t time.Time) string {
	return "audit_report_" + t.Format("20060102_150405") + ".txt"
}

// SaveReport renders a report and writes it to dir, returning its path.
func SaveReport(ctx context.Context, r Reporter, dir string, logLimit int, now time.Time) (string, error) {
	text, err := r.Report(ctx, logLimit)
	if err != nil {
		return "", err
	}
	return WriteReport(dir, text, now)
}

// WriteReport writes a rendered report to dir under ReportName(now). The file
// appears complete or not at all.
func WriteReport(dir, text string, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	path := filepath.Join(dir, ReportName(now))
	tmp, err := os.CreateTemp(dir, ".report-*")
	if err != nil {
		return "", fmt.Errorf("create report: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(text + "\n"); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	logging.Info("report_saved", map[string]any{"path": path, "bytes": len(text)})
	return path, nil
}

// WatchReports saves a report right away and then on every tick until ctx is
// cancelled. Failed ticks are logged and the loop goes on.
func WatchReports(ctx context.Context, r Reporter, dir string, logLimit int, interval time.Duration, now func() time.Time) error {
	if interval <= 0 {
		return fmt.Errorf("watch interval must be positive, got %s", interval)
	}
	if now == nil {
		now = time.Now
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	if _, err := SaveReport(ctx, r, dir, logLimit, now()); err != nil {
		logging.Error("report_tick_error", map[string]any{"error": err})
	}
	for {
		select {
		case <-ctx.Done():
			logging.Info("report_watch_stop", nil)
			return ctx.Err()
		case <-t.C:
			if _, err := SaveReport(ctx, r, dir, logLimit, now()); err != nil {
				logging.Error("report_tick_error", map[string]any{"error": err})
			}
		}
	}
}
