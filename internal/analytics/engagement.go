package analytics

import (
	"sort"

	"simview/internal/model"
)

// ActionCount is how often one action appears in a window of the trace.
type ActionCount struct {
	Action string
	Count  int
}

// ActionCounts aggregates trace entries per action.
func ActionCounts(entries []model.ActionLogEntry) map[string]int {
	counts := make(map[string]int)
	for _, e := range entries {
		counts[e.Action]++
	}
	return counts
}

// SortedActions returns counts, most frequent first, ties by action name.
func SortedActions(m map[string]int) []ActionCount {
	out := make([]ActionCount, 0, len(m))
	for k, v := range m {
		out = append(out, ActionCount{Action: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Action < out[j].Action
	})
	return out
}

// ActiveAgents returns the distinct user ids in the entries, ascending.
func ActiveAgents(entries []model.ActionLogEntry) []int64 {
	seen := make(map[int64]struct{})
	for _, e := range entries {
		seen[e.UserID] = struct{}{}
	}
	out := make([]int64, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
