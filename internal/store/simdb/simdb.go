package simdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	_ "modernc.org/sqlite"

	"simview/internal/model"
)

// ErrNoRelation is returned when an optional table does not exist.
var ErrNoRelation = errors.New("relation not present")

// PayloadColumns are the accepted names of the trace payload column, in
// lookup order.
var PayloadColumns = []string{"info", "action_params"}

// DB wraps the simulation database. It only ever reads.
type DB struct{ sql *sql.DB }

func Open(path string) (*DB, error) {
	if path == "" {
		return nil, errors.New("empty database path")
	}
	// sqlite would create a missing file; a reader has no business doing that.
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
	}
	d, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := d.Ping(); err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &DB{sql: d}, nil
}

func (d *DB) Close() error { return d.sql.Close() }

// Snapshot starts a read transaction. Everything read through the snapshot
// sees one consistent state of the database; Close releases it.
func (d *DB) Snapshot(ctx context.Context) (*Snapshot, error) {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin snapshot: %w", err)
	}
	return &Snapshot{tx: tx, cols: make(map[string]map[string]bool)}, nil
}

// Snapshot is a point-in-time read view. It is not safe for concurrent use.
type Snapshot struct {
	tx   *sql.Tx
	cols map[string]map[string]bool
}

// Close ends the read transaction.
func (s *Snapshot) Close() error {
	err := s.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

// columns returns the column set of table; empty when the table is absent.
func (s *Snapshot) columns(ctx context.Context, table string) (map[string]bool, error) {
	if c, ok := s.cols[table]; ok {
		return c, nil
	}
	rows, err := s.tx.QueryContext(ctx, `SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", table, err)
	}
	defer rows.Close()
	out := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out[strings.ToLower(name)] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	s.cols[table] = out
	return out, nil
}

func (s *Snapshot) requireTable(ctx context.Context, table string) (map[string]bool, error) {
	cols, err := s.columns(ctx, table)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%s: %w", table, ErrNoRelation)
	}
	return cols, nil
}

// optional selects name when the column exists and NULL otherwise.
func optional(cols map[string]bool, name string) string {
	if cols[name] {
		return name
	}
	return "NULL"
}

func (s *Snapshot) postQuery(ctx context.Context) (string, map[string]bool, error) {
	cols, err := s.requireTable(ctx, "post")
	if err != nil {
		return "", nil, err
	}
	q := fmt.Sprintf(`SELECT post_id, user_id, %s, %s, %s, %s, %s FROM post`,
		optional(cols, "content"), optional(cols, "quote_content"), optional(cols, "original_post_id"),
		optional(cols, "created_at"), optional(cols, "num_likes"))
	return q, cols, nil
}

func scanPost(sc interface{ Scan(...any) error }, cols map[string]bool) (model.Post, error) {
	var p model.Post
	var content, quote sql.NullString
	var orig, likes sql.NullInt64
	if err := sc.Scan(&p.ID, &p.UserID, &content, &quote, &orig, &p.CreatedAt, &likes); err != nil {
		return p, err
	}
	p.Content = content.String
	p.QuoteContent = quote.String
	if orig.Valid {
		p.OriginalPostID = model.ID(orig.Int64)
	}
	if cols["num_likes"] {
		n := int(likes.Int64)
		p.Likes = &n
	}
	return p, nil
}

// Posts returns every post in post_id order.
func (s *Snapshot) Posts(ctx context.Context) ([]model.Post, error) {
	q, cols, err := s.postQuery(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.tx.QueryContext(ctx, q+` ORDER BY post_id`)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()
	var out []model.Post
	for rows.Next() {
		p, err := scanPost(rows, cols)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// PostByID looks up one post; ok is false when it does not exist.
func (s *Snapshot) PostByID(ctx context.Context, id int64) (model.Post, bool, error) {
	q, cols, err := s.postQuery(ctx)
	if err != nil {
		return model.Post{}, false, err
	}
	p, err := scanPost(s.tx.QueryRowContext(ctx, q+` WHERE post_id = ?`, id), cols)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Post{}, false, nil
	}
	if err != nil {
		return model.Post{}, false, fmt.Errorf("query post %d: %w", id, err)
	}
	return p, true, nil
}

// Comments returns every comment in insertion order, or ErrNoRelation when
// the platform keeps no comments.
func (s *Snapshot) Comments(ctx context.Context) ([]model.Comment, error) {
	cols, err := s.requireTable(ctx, "comment")
	if err != nil {
		return nil, err
	}
	q := fmt.Sprintf(`SELECT comment_id, post_id, user_id, %s, %s FROM comment ORDER BY comment_id`,
		optional(cols, "content"), optional(cols, "created_at"))
	rows, err := s.tx.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()
	var out []model.Comment
	for rows.Next() {
		var c model.Comment
		var content sql.NullString
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		c.Content = content.String
		out = append(out, c)
	}
	return out, rows.Err()
}

// payloadExpr picks the payload from the first accepted column that is
// present and non-NULL.
func payloadExpr(cols map[string]bool) string {
	var present []string
	for _, name := range PayloadColumns {
		if cols[name] {
			present = append(present, name)
		}
	}
	switch len(present) {
	case 0:
		return "NULL"
	case 1:
		return present[0]
	default:
		return "COALESCE(" + strings.Join(present, ", ") + ")"
	}
}

// RecentActions returns up to limit trace rows, newest first.
func (s *Snapshot) RecentActions(ctx context.Context, limit int) ([]model.ActionLogEntry, error) {
	if limit <= 0 {
		return nil, nil
	}
	cols, err := s.requireTable(ctx, "trace")
	if err != nil {
		return nil, err
	}
	q := fmt.Sprintf(`SELECT rowid, %s, %s, %s, %s FROM trace ORDER BY rowid DESC LIMIT ?`,
		optional(cols, "user_id"), optional(cols, "action"), optional(cols, "created_at"), payloadExpr(cols))
	rows, err := s.tx.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("query trace: %w", err)
	}
	defer rows.Close()
	var out []model.ActionLogEntry
	for rows.Next() {
		var e model.ActionLogEntry
		var user sql.NullInt64
		var action, payload sql.NullString
		if err := rows.Scan(&e.RowID, &user, &action, &e.CreatedAt, &payload); err != nil {
			return nil, fmt.Errorf("scan trace: %w", err)
		}
		e.UserID = user.Int64
		e.Action = action.String
		e.Payload = payload.String
		out = append(out, e)
	}
	return out, rows.Err()
}

// UserCounts looks up the follower counters of an agent; ok is false when
// the agent has no user row.
func (s *Snapshot) UserCounts(ctx context.Context, agentID int64) (model.UserSnapshot, bool, error) {
	u := model.UserSnapshot{AgentID: agentID}
	row := s.tx.QueryRowContext(ctx, `SELECT COALESCE(num_followers, 0), COALESCE(num_followings, 0) FROM "user" WHERE agent_id = ?`, agentID)
	err := row.Scan(&u.NumFollowers, &u.NumFollowings)
	if errors.Is(err, sql.ErrNoRows) {
		return u, false, nil
	}
	if err != nil {
		return u, false, fmt.Errorf("query user %d: %w", agentID, err)
	}
	return u, true, nil
}

// AgentIDs lists every registered agent, ascending.
func (s *Snapshot) AgentIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.tx.QueryContext(ctx, `SELECT agent_id FROM "user" ORDER BY agent_id`)
	if err != nil {
		return nil, fmt.Errorf("query agents: %w", err)
	}
	defer rows.Close()
	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// VisiblePosts returns the post ids the recommender last pushed to the agent,
// from the rec table. ErrNoRelation means the platform keeps no such table.
func (s *Snapshot) VisiblePosts(ctx context.Context, agentID int64) ([]int64, error) {
	if _, err := s.requireTable(ctx, "rec"); err != nil {
		return nil, err
	}
	rows, err := s.tx.QueryContext(ctx, `SELECT post_id FROM rec WHERE user_id = ? ORDER BY rowid`, agentID)
	if err != nil {
		return nil, fmt.Errorf("query rec: %w", err)
	}
	defer rows.Close()
	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
