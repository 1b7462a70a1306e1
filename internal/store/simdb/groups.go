package simdb

import (
	"context"
	"fmt"

	"simview/internal/model"
)

// Groups reads the group chats visible to an agent: every group, the groups
// it joined and the messages posted to those.
func (s *Snapshot) Groups(ctx context.Context, agentID int64) (model.GroupState, error) {
	var st model.GroupState
	for _, t := range []string{"chat_group", "group_members", "group_messages"} {
		if _, err := s.requireTable(ctx, t); err != nil {
			return st, err
		}
	}

	rows, err := s.tx.QueryContext(ctx, `SELECT group_id, name FROM chat_group ORDER BY group_id`)
	if err != nil {
		return st, fmt.Errorf("query groups: %w", err)
	}
	for rows.Next() {
		var g model.Group
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			rows.Close()
			return st, err
		}
		st.All = append(st.All, g)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return st, err
	}

	rows, err = s.tx.QueryContext(ctx, `SELECT group_id FROM group_members WHERE agent_id = ? ORDER BY group_id`, agentID)
	if err != nil {
		return st, fmt.Errorf("query memberships: %w", err)
	}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return st, err
		}
		st.Joined = append(st.Joined, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return st, err
	}

	rows, err = s.tx.QueryContext(ctx, `
		SELECT m.group_id, m.sender_id, m.content, m.sent_at
		FROM group_messages m
		JOIN group_members gm ON gm.group_id = m.group_id
		WHERE gm.agent_id = ?
		ORDER BY m.message_id`, agentID)
	if err != nil {
		return st, fmt.Errorf("query group messages: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var m model.GroupMessage
		var sent model.Timestamp
		if err := rows.Scan(&m.GroupID, &m.SenderID, &m.Content, &sent); err != nil {
			return st, err
		}
		m.SentAt = sent.String()
		st.Messages = append(st.Messages, m)
	}
	return st, rows.Err()
}
