// Package prompt composes the perception text an agent reads before it picks
// its next action.
package prompt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"simview/internal/config"
	"simview/internal/model"
)

// Options toggles the sections of the perception text.
type Options struct {
	IncludePosts     bool
	IncludeFollowers bool
	IncludeFollows   bool
}

// DefaultOptions renders every section.
func DefaultOptions() Options {
	return Options{IncludePosts: true, IncludeFollowers: true, IncludeFollows: true}
}

// FromConfig maps the prompt config to Options.
func FromConfig(c config.PromptConfig) Options {
	return Options{IncludePosts: c.IncludePosts, IncludeFollowers: c.IncludeFollowers, IncludeFollows: c.IncludeFollows}
}

const (
	situationHeader = "# CURRENT SITUATION"
	instruction     = "# INSTRUCTION\n" +
		"Based on the situation above and on your profile, personality and past posts, " +
		"choose exactly one action that fits best and perform it. " +
		"Consider active actions such as posting or commenting, not only liking."

	followersHidden = "Follower count: not shown."
	followsHidden   = "Following count: not shown."
	// NoGroups replaces the group section when group chats cannot be read.
	NoGroups = "No group chats available."
)

// Counts looks up an agent's follower counters.
type Counts interface {
	UserCounts(ctx context.Context, agentID int64) (model.UserSnapshot, bool, error)
}

// Groups reports the group chats visible to an agent.
type Groups interface {
	Groups(ctx context.Context, agentID int64) (model.GroupState, error)
}

// Composer builds perception texts from its collaborators.
type Composer struct {
	Counts Counts
	Groups Groups
}

// Compose assembles the situational summary (followers, following, groups),
// the feed section and the instruction suffix, in that order. The feed is
// rendered by the caller and is only used when opts.IncludePosts is set.
func (c Composer) Compose(ctx context.Context, agentID int64, opts Options, feed Section) string {
	followers := Rendered("followers", followersHidden)
	if opts.IncludeFollowers {
		followers = c.Followers(ctx, agentID)
	}
	follows := Rendered("follows", followsHidden)
	if opts.IncludeFollows {
		follows = c.Follows(ctx, agentID)
	}
	groups := c.GroupSection(ctx, agentID)

	parts := []string{situationHeader, followers.Text, follows.Text, groups.Text}
	if opts.IncludePosts && feed.Text != "" {
		parts = append(parts, "", feed.Text)
	}
	parts = append(parts, "", instruction)
	return strings.Join(parts, "\n")
}

// Followers renders the follower count; a miss or a failed lookup shows 0.
func (c Composer) Followers(ctx context.Context, agentID int64) Section {
	u := c.lookup(ctx, agentID, "followers")
	return Rendered("followers", fmt.Sprintf("You currently have %d followers.", u.NumFollowers))
}

// Follows renders the following count; a miss or a failed lookup shows 0.
func (c Composer) Follows(ctx context.Context, agentID int64) Section {
	u := c.lookup(ctx, agentID, "follows")
	return Rendered("follows", fmt.Sprintf("You are currently following %d users.", u.NumFollowings))
}

func (c Composer) lookup(ctx context.Context, agentID int64, section string) model.UserSnapshot {
	if c.Counts == nil {
		return model.UserSnapshot{AgentID: agentID}
	}
	u, ok, err := c.Counts.UserCounts(ctx, agentID)
	if err != nil {
		Degrade(section, "", err)
		return model.UserSnapshot{AgentID: agentID}
	}
	if !ok {
		return model.UserSnapshot{AgentID: agentID}
	}
	return u
}

// GroupSection renders the group chats, or NoGroups if they cannot be read.
func (c Composer) GroupSection(ctx context.Context, agentID int64) Section {
	if c.Groups == nil {
		return Degrade("groups", NoGroups, errors.New("no group source"))
	}
	st, err := c.Groups.Groups(ctx, agentID)
	if err != nil {
		return Degrade("groups", NoGroups, err)
	}
	all, err := marshal(nonNil(st.All))
	if err != nil {
		return Degrade("groups", NoGroups, err)
	}
	joined, err := marshal(nonNil(st.Joined))
	if err != nil {
		return Degrade("groups", NoGroups, err)
	}
	msgs, err := marshal(nonNil(st.Messages))
	if err != nil {
		return Degrade("groups", NoGroups, err)
	}
	return Rendered("groups", "[Group chats]\n"+
		"Available groups: "+all+"\n"+
		"Groups you joined: "+joined+"\n"+
		"Messages received: "+msgs+"\n"+
		"(You can join groups that interest you or send messages, but you can only send messages to groups you have joined.)")
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// marshal encodes v as compact JSON with non-ASCII and HTML characters kept literal.
func marshal(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
