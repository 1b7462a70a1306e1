package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"simview/internal/model"
)

func TestSortedActions(t *testing.T) {
	entries := []model.ActionLogEntry{
		{UserID: 2, Action: "like_post"},
		{UserID: 1, Action: "create_post"},
		{UserID: 2, Action: "repost"},
		{UserID: 1, Action: "like_post"},
		{UserID: 3, Action: "create_post"},
		{UserID: 3, Action: "do_nothing"},
	}
	got := SortedActions(ActionCounts(entries))
	assert.Equal(t, []ActionCount{
		{Action: "create_post", Count: 2},
		{Action: "like_post", Count: 2},
		{Action: "do_nothing", Count: 1},
		{Action: "repost", Count: 1},
	}, got)
	assert.Equal(t, []int64{1, 2, 3}, ActiveAgents(entries))
}

func TestSortedActionsEmpty(t *testing.T) {
	assert.Empty(t, SortedActions(ActionCounts(nil)))
	assert.Empty(t, ActiveAgents(nil))
}
