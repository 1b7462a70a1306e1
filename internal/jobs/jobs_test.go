package jobs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"simview/internal/config"
	"simview/internal/prompt"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakePerceiver struct {
	mu      sync.Mutex
	active  int
	maxSeen int
	failOn  int64
}

func (f *fakePerceiver) Perception(ctx context.Context, agentID int64, opts prompt.Options) (string, error) {
	f.mu.Lock()
	f.active++
	if f.active > f.maxSeen {
		f.maxSeen = f.active
	}
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.active--
		f.mu.Unlock()
	}()
	time.Sleep(2 * time.Millisecond)
	if f.failOn != 0 && agentID == f.failOn {
		return "", errors.New("database is locked")
	}
	return fmt.Sprintf("prompt for %d", agentID), nil
}

func TestRenderPromptsKeepsOrderAndBoundsConcurrency(t *testing.T) {
	p := &fakePerceiver{}
	agents := []int64{5, 3, 9, 1, 7, 2, 8}
	cfg := config.JobsConfig{RendersPerSecond: 0, Concurrency: 2}
	out, err := RenderPrompts(context.Background(), p, agents, prompt.DefaultOptions(), cfg)
	require.NoError(t, err)
	require.Len(t, out, len(agents))
	for i, id := range agents {
		assert.Equal(t, id, out[i].AgentID)
		assert.Equal(t, fmt.Sprintf("prompt for %d", id), out[i].Text)
	}
	assert.LessOrEqual(t, p.maxSeen, 2)
}

func TestRenderPromptsFailure(t *testing.T) {
	p := &fakePerceiver{failOn: 3}
	_, err := RenderPrompts(context.Background(), p, []int64{1, 2, 3, 4}, prompt.DefaultOptions(), config.JobsConfig{Concurrency: 1})
	assert.ErrorContains(t, err, "agent 3")
}

func TestRenderPromptsPaced(t *testing.T) {
	cfg := config.JobsConfig{RendersPerSecond: 100, Burst: 1, Concurrency: 4}
	start := time.Now()
	_, err := RenderPrompts(context.Background(), &fakePerceiver{}, []int64{1, 2, 3, 4, 5}, prompt.DefaultOptions(), cfg)
	require.NoError(t, err)
	// one token every 10ms after the first
	assert.GreaterOrEqual(t, time.Since(start), 35*time.Millisecond)
}

func TestRenderPromptsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := config.JobsConfig{RendersPerSecond: 1, Burst: 1}
	_, err := RenderPrompts(ctx, &fakePerceiver{}, []int64{1, 2}, prompt.DefaultOptions(), cfg)
	assert.Error(t, err)
}

type fakeReporter struct {
	calls atomic.Int32
	err   error
}

func (f *fakeReporter) Report(ctx context.Context, logLimit int) (string, error) {
	f.calls.Add(1)
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("report with %d logs", logLimit), nil
}

func TestSaveReport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	at := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	path, err := SaveReport(context.Background(), &fakeReporter{}, dir, 20, at)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "audit_report_20240309_140507.txt"), path)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "report with 20 logs\n", string(b))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestSaveReportFailureWritesNothing(t *testing.T) {
	dir := t.TempDir()
	_, err := SaveReport(context.Background(), &fakeReporter{err: errors.New("list posts: no such table: post")}, dir, 5, time.Now())
	assert.Error(t, err)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWatchReports(t *testing.T) {
	dir := t.TempDir()
	r := &fakeReporter{}
	var tick atomic.Int64
	now := func() time.Time {
		return time.Date(2024, 1, 1, 0, 0, int(tick.Add(1)), 0, time.UTC)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- WatchReports(ctx, r, dir, 5, 5*time.Millisecond, now) }()

	require.Eventually(t, func() bool { return r.calls.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(entries), 3)
}

func TestWatchReportsSurvivesFailures(t *testing.T) {
	r := &fakeReporter{err: errors.New("unable to open database file")}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- WatchReports(ctx, r, t.TempDir(), 5, 5*time.Millisecond, nil) }()
	require.Eventually(t, func() bool { return r.calls.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWatchReportsRejectsZeroInterval(t *testing.T) {
	assert.Error(t, WatchReports(context.Background(), &fakeReporter{}, t.TempDir(), 5, 0, nil))
}
