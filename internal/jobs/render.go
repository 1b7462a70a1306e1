// Package jobs runs renders in bulk and on a schedule.
package jobs

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"simview/internal/config"
	"simview/internal/logging"
	"simview/internal/prompt"
)

// Perceiver renders one agent's perception text.
type Perceiver interface {
	Perception(ctx context.Context, agentID int64, opts prompt.Options) (string, error)
}

// Prompt is the rendered perception text of one agent.
type Prompt struct {
	AgentID int64
	Text    string
}

// RenderPrompts renders the perception text of every agent. Renders start at
// most cfg.RendersPerSecond per second and at most cfg.Concurrency run at
// once. The result follows the order of agents; the first failure cancels the
// rest.
func RenderPrompts(ctx context.Context, p Perceiver, agents []int64, opts prompt.Options, cfg config.JobsConfig) ([]Prompt, error) {
	start := time.Now()
	lim := limiter(cfg)
	g, gctx := errgroup.WithContext(ctx)
	if cfg.Concurrency > 0 {
		g.SetLimit(cfg.Concurrency)
	}

	out := make([]Prompt, len(agents))
	var waitErr error
	for i, id := range agents {
		if err := lim.Wait(gctx); err != nil {
			waitErr = err
			break
		}
		i, id := i, id
		g.Go(func() error {
			text, err := p.Perception(gctx, id, opts)
			if err != nil {
				return fmt.Errorf("agent %d: %w", id, err)
			}
			out[i] = Prompt{AgentID: id, Text: text}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logging.Error("render_prompts_error", map[string]any{"error": err})
		return nil, err
	}
	if waitErr != nil {
		return nil, waitErr
	}
	logging.Info("render_prompts", map[string]any{"agents": len(agents), "elapsed_ms": time.Since(start).Milliseconds()})
	return out, nil
}

func limiter(cfg config.JobsConfig) *rate.Limiter {
	if cfg.RendersPerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(cfg.RendersPerSecond), burst)
}
