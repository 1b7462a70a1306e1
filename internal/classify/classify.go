// Package classify resolves a post row, plus its optional parent, into exactly
// one render category. The rules are priority ordered and shared by every
// output mode, so a post gets the same category in a perception text and in an
// audit report.
package classify

import (
	"context"
	"fmt"

	"simview/internal/model"
	"simview/internal/util"
)

// Category is the semantic kind of a post.
type Category int

const (
	Empty Category = iota
	Original
	Repost
	QuoteRepost
)

// Categories lists every category in summary order.
var Categories = []Category{Original, Repost, QuoteRepost, Empty}

func (c Category) String() string {
	switch c {
	case Original:
		return "ORIGINAL"
	case Repost:
		return "REPOST"
	case QuoteRepost:
		return "QUOTE_REPOST"
	default:
		return "EMPTY"
	}
}

// NoBody is shown in place of a post without renderable text.
const NoBody = "(no body)"

// Result is a classified post: its category and the text to render.
type Result struct {
	Category Category
	// Body is authored text: the content of an original post or the
	// commentary of a quote-repost.
	Body string
	// QuotedAuthor and QuotedText attribute reposted material.
	QuotedAuthor int64
	QuotedText   string
}

// Classify applies the category rules in order; the first match wins.
// parent is nil when the post references nothing, or when the reference
// could not be resolved; both cases classify identically.
func Classify(p model.Post, parent *model.Parent) Result {
	switch {
	case parent != nil && !util.IsBlank(p.QuoteContent):
		quoted := parent.Content
		if util.IsBlank(quoted) {
			quoted = p.Content
		}
		return Result{Category: QuoteRepost, Body: p.QuoteContent, QuotedAuthor: parent.UserID, QuotedText: quoted}
	case util.IsBlank(p.QuoteContent) && !util.IsBlank(p.Content):
		return Result{Category: Original, Body: p.Content}
	case util.IsBlank(p.Content) && parent != nil && !util.IsBlank(parent.Content):
		return Result{Category: Repost, QuotedAuthor: parent.UserID, QuotedText: parent.Content}
	default:
		return Result{Category: Empty}
	}
}

// Lines returns the body lines of r, without any framing.
func Lines(r Result) []string {
	switch r.Category {
	case Original:
		return util.SplitLines(r.Body)
	case Repost:
		out := []string{fmt.Sprintf("[Repost] originally posted by user %d:", r.QuotedAuthor)}
		return append(out, quoteLines(r.QuotedText)...)
	case QuoteRepost:
		out := util.SplitLines(r.Body)
		out = append(out, fmt.Sprintf("[Quote] of a post by user %d:", r.QuotedAuthor))
		return append(out, quoteLines(r.QuotedText)...)
	default:
		return []string{NoBody}
	}
}

func quoteLines(s string) []string {
	if util.IsBlank(s) {
		return []string{"> " + NoBody}
	}
	lines := util.SplitLines(s)
	for i, l := range lines {
		lines[i] = "> " + l
	}
	return lines
}

// Lookup finds a post by id. A post that does not exist is reported with
// ok=false and a nil error.
type Lookup interface {
	PostByID(ctx context.Context, id int64) (post model.Post, ok bool, err error)
}

// ResolveParent loads the parent of p. Missing references and lookup errors
// both yield nil; the error, if any, is returned for the caller to log.
func ResolveParent(ctx context.Context, lookup Lookup, p model.Post) (*model.Parent, error) {
	if !p.HasOriginal() {
		return nil, nil
	}
	parent, ok, err := lookup.PostByID(ctx, *p.OriginalPostID)
	if err != nil {
		return nil, fmt.Errorf("resolve parent %d of post %d: %w", *p.OriginalPostID, p.ID, err)
	}
	if !ok {
		return nil, nil
	}
	return &model.Parent{UserID: parent.UserID, Content: parent.Content}, nil
}
