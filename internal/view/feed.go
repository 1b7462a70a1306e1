package view

import (
	"context"
	"fmt"
	"strings"

	"simview/internal/classify"
	"simview/internal/model"
	"simview/internal/prompt"
	"simview/internal/thread"
	"simview/internal/util"
)

const (
	feedHeader = "[Timeline]"
	// FeedUnavailable replaces the feed when posts cannot be read.
	FeedUnavailable = "Failed to load the timeline."
	// NoPosts is the feed of an agent who sees nothing.
	NoPosts = "No new posts."
)

func (r *Renderer) feed(ctx context.Context, snap Snapshot, agentID int64) prompt.Section {
	posts, err := snap.Posts(ctx)
	if err != nil {
		return prompt.Degrade("feed", feedHeader+"\n"+FeedUnavailable, err)
	}
	refresher := r.Refresher
	if refresher == nil {
		refresher = RecRefresher{}
	}
	visible, err := refresher.Visible(ctx, snap, agentID, posts)
	if err != nil {
		return prompt.Degrade("feed", feedHeader+"\n"+FeedUnavailable, err)
	}
	lim := thread.Limits{MaxPosts: r.cfg.MaxFeedPosts, MaxComments: r.cfg.MaxFeedComments}
	threads := r.threads(ctx, snap, visible, lim)
	if len(threads) == 0 {
		return prompt.Rendered("feed", feedHeader+"\n"+NoPosts)
	}
	lines := []string{feedHeader}
	for _, th := range threads {
		lines = append(lines, compactThread(th)...)
	}
	return prompt.Rendered("feed", strings.Join(lines, "\n"))
}

// compactThread renders one post and its comments for an agent:
//
//	- PostID: 3 | User: 2 | Likes: 5
//	  body
//	  Comments:
//	    - User 4: text
func compactThread(th thread.Thread) []string {
	head := fmt.Sprintf("- PostID: %d | User: %d", th.Post.ID, th.Post.UserID)
	if th.Post.Likes != nil {
		head += fmt.Sprintf(" | Likes: %d", *th.Post.Likes)
	}
	out := []string{head}
	for _, l := range classify.Lines(th.Class) {
		out = append(out, "  "+l)
	}
	if len(th.Comments) == 0 {
		return out
	}
	out = append(out, "  Comments:")
	for _, c := range th.Comments {
		out = append(out, fmt.Sprintf("    - User %d: %s", c.UserID, commentText(c)))
	}
	if th.Omitted > 0 {
		out = append(out, fmt.Sprintf("    (%d more)", th.Omitted))
	}
	return out
}

func commentText(c model.Comment) string {
	if util.IsBlank(c.Content) {
		return classify.NoBody
	}
	return util.NormalizeWhitespace(c.Content)
}
