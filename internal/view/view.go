// Package view turns one snapshot of the simulation database into either the
// perception text an agent reads or the audit report a human reads. Both share
// classification and thread assembly; they differ in bounds and framing.
package view

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"simview/internal/classify"
	"simview/internal/config"
	"simview/internal/logging"
	"simview/internal/metrics"
	"simview/internal/model"
	"simview/internal/prompt"
	"simview/internal/store/simdb"
	"simview/internal/thread"
)

// Snapshot is a consistent read view of the simulation state.
type Snapshot interface {
	Posts(ctx context.Context) ([]model.Post, error)
	PostByID(ctx context.Context, id int64) (model.Post, bool, error)
	Comments(ctx context.Context) ([]model.Comment, error)
	RecentActions(ctx context.Context, limit int) ([]model.ActionLogEntry, error)
	UserCounts(ctx context.Context, agentID int64) (model.UserSnapshot, bool, error)
	Groups(ctx context.Context, agentID int64) (model.GroupState, error)
	VisiblePosts(ctx context.Context, agentID int64) ([]int64, error)
	Close() error
}

// Source opens snapshots. Every render takes its own and releases it before
// returning.
type Source interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}

// FromDB adapts a simulation database to Source.
func FromDB(db *simdb.DB) Source { return dbSource{db: db} }

type dbSource struct{ db *simdb.DB }

func (s dbSource) Snapshot(ctx context.Context) (Snapshot, error) {
	snap, err := s.db.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Refresher decides which posts an agent currently sees.
type Refresher interface {
	Visible(ctx context.Context, snap Snapshot, agentID int64, posts []model.Post) ([]model.Post, error)
}

// RecRefresher keeps the posts the recommender pushed to the agent. When the
// platform keeps no recommendation table every post is visible.
type RecRefresher struct{}

func (RecRefresher) Visible(ctx context.Context, snap Snapshot, agentID int64, posts []model.Post) ([]model.Post, error) {
	ids, err := snap.VisiblePosts(ctx, agentID)
	if errors.Is(err, simdb.ErrNoRelation) {
		return posts, nil
	}
	if err != nil {
		return nil, fmt.Errorf("refresh agent %d: %w", agentID, err)
	}
	keep := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		keep[id] = struct{}{}
	}
	out := make([]model.Post, 0, len(ids))
	for _, p := range posts {
		if _, ok := keep[p.ID]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// Renderer produces perception texts and audit reports.
type Renderer struct {
	src Source
	cfg config.RenderConfig
	// Refresher defaults to RecRefresher.
	Refresher Refresher
}

func New(src Source, cfg config.RenderConfig) *Renderer {
	return &Renderer{src: src, cfg: cfg, Refresher: RecRefresher{}}
}

const (
	modePerception = "perception"
	modeReport     = "report"
)

// Perception renders the text agentID reads before choosing its next action.
// Only a failure to open the snapshot is returned; failing sections are
// replaced by placeholders.
func (r *Renderer) Perception(ctx context.Context, agentID int64, opts prompt.Options) (out string, err error) {
	start := time.Now()
	renderID := uuid.NewString()
	defer func() { metrics.ObserveRender(modePerception, start, err) }()

	snap, err := r.src.Snapshot(ctx)
	if err != nil {
		return "", fmt.Errorf("open snapshot: %w", err)
	}
	defer snap.Close()

	var feed prompt.Section
	if opts.IncludePosts {
		feed = r.feed(ctx, snap, agentID)
	}
	out = prompt.Composer{Counts: snap, Groups: snap}.Compose(ctx, agentID, opts, feed)
	logging.Debug("perception_rendered", map[string]any{
		"render_id": renderID, "agent_id": agentID, "feed_degraded": feed.Degraded, "bytes": len(out),
	})
	return out, nil
}

// threads classifies posts and attaches their comments. posts are sorted in
// place; with lim.MaxPosts set only the most recent ones are classified.
func (r *Renderer) threads(ctx context.Context, snap Snapshot, posts []model.Post, lim thread.Limits) []thread.Thread {
	thread.SortPosts(posts)
	if lim.MaxPosts > 0 && len(posts) > lim.MaxPosts {
		posts = posts[len(posts)-lim.MaxPosts:]
	}
	classified := make([]thread.Classified, 0, len(posts))
	for _, p := range posts {
		parent, err := classify.ResolveParent(ctx, snap, p)
		if err != nil {
			logging.Warn("parent_lookup_failed", map[string]any{"post_id": p.ID, "error": err})
		}
		res := classify.Classify(p, parent)
		metrics.IncClassified(res.Category.String())
		classified = append(classified, thread.Classified{Post: p, Class: res})
	}

	comments, err := snap.Comments(ctx)
	if err != nil {
		if !errors.Is(err, simdb.ErrNoRelation) {
			logging.Warn("comments_unavailable", map[string]any{"error": err})
		}
		comments = nil
	}
	return thread.Assemble(classified, comments, lim)
}
