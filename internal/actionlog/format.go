// Package actionlog renders trace rows as framed, chronological blocks.
package actionlog

import (
	"fmt"
	"strings"

	"simview/internal/model"
	"simview/internal/util"
)

// NoLogs is rendered when there is nothing to show.
const NoLogs = "(no action logs)"

// DefaultWidth is the frame width used when none is configured.
const DefaultWidth = 60

const minWidth = 20

// Format renders entries, which arrive newest first, oldest first.
// Every block is width display columns wide; payload lines are each prefixed
// so multi-line payloads stay inside the frame.
func Format(entries []model.ActionLogEntry, width int) string {
	if len(entries) == 0 {
		return NoLogs
	}
	blocks := make([]string, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		blocks = append(blocks, block(entries[i], width))
	}
	return strings.Join(blocks, "\n")
}

func block(e model.ActionLogEntry, width int) string {
	payload := FormatPayload(e.Payload)
	if util.IsBlank(payload) {
		payload = "(no payload)"
	}
	return Frame(Title(e), util.SplitLines(payload), width)
}

// Frame draws lines inside a box with title in its top edge. The top and
// bottom edges are exactly width display columns; body lines carry only a
// left border so long content is never cut.
func Frame(title string, lines []string, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	if width < minWidth {
		width = minWidth
	}
	var b strings.Builder
	b.WriteString(header(title, width))
	for _, l := range lines {
		b.WriteString("\n│ ")
		b.WriteString(l)
	}
	b.WriteString("\n└" + strings.Repeat("─", width-2) + "┘")
	return b.String()
}

// Title is the one-line summary of an entry used in block headers.
func Title(e model.ActionLogEntry) string {
	return fmt.Sprintf("#%d · user %d · %s · %s", e.RowID, e.UserID, e.Action, e.CreatedAt)
}

// header draws "┌─ title ───┐" exactly width columns wide.
func header(title string, width int) string {
	title = util.Truncate(title, width-6)
	fill := width - 3 - util.DisplayWidth(title) - 1 - 1
	return "┌─ " + title + " " + strings.Repeat("─", fill) + "┐"
}
