package thread

import (
	"sort"

	"simview/internal/classify"
	"simview/internal/model"
)

// Classified is a post with its resolved category.
type Classified struct {
	Post  model.Post
	Class classify.Result
}

// Thread is a post followed by its comments, oldest first.
type Thread struct {
	Classified
	Comments []model.Comment
	// Omitted counts comments dropped by Limits.MaxComments.
	Omitted int
}

// Limits bound how much of the timeline is rendered. Zero means unbounded.
type Limits struct {
	MaxPosts    int
	MaxComments int
}

// SortPosts orders posts by created_at; equal timestamps keep their input order.
func SortPosts(posts []model.Post) {
	sort.SliceStable(posts, func(i, j int) bool { return posts[i].CreatedAt.Before(posts[j].CreatedAt) })
}

// GroupComments buckets comments by post id, each bucket ordered by created_at
// with ties kept in input order.
func GroupComments(comments []model.Comment) map[int64][]model.Comment {
	out := make(map[int64][]model.Comment)
	for _, c := range comments {
		out[c.PostID] = append(out[c.PostID], c)
	}
	for id := range out {
		bucket := out[id]
		sort.SliceStable(bucket, func(i, j int) bool { return bucket[i].CreatedAt.Before(bucket[j].CreatedAt) })
	}
	return out
}

// Assemble attaches comments to posts. posts must already be in chronological
// order; with MaxPosts set only the most recent posts are kept.
func Assemble(posts []Classified, comments []model.Comment, lim Limits) []Thread {
	if lim.MaxPosts > 0 && len(posts) > lim.MaxPosts {
		posts = posts[len(posts)-lim.MaxPosts:]
	}
	byPost := GroupComments(comments)
	out := make([]Thread, 0, len(posts))
	for _, p := range posts {
		th := Thread{Classified: p, Comments: byPost[p.Post.ID]}
		if lim.MaxComments > 0 && len(th.Comments) > lim.MaxComments {
			th.Omitted = len(th.Comments) - lim.MaxComments
			th.Comments = th.Comments[:lim.MaxComments]
		}
		out = append(out, th)
	}
	return out
}
