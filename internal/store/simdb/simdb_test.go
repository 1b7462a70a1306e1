package simdb

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simview/internal/model"
)

const twitterSchema = `
CREATE TABLE user (user_id INTEGER PRIMARY KEY, agent_id INTEGER, user_name TEXT, num_followings INTEGER DEFAULT 0, num_followers INTEGER DEFAULT 0);
CREATE TABLE post (post_id INTEGER PRIMARY KEY AUTOINCREMENT, user_id INTEGER, original_post_id INTEGER, content TEXT DEFAULT '', quote_content TEXT, created_at DATETIME, num_likes INTEGER DEFAULT 0);
CREATE TABLE comment (comment_id INTEGER PRIMARY KEY AUTOINCREMENT, post_id INTEGER, user_id INTEGER, content TEXT, created_at DATETIME);
CREATE TABLE trace (user_id INTEGER, created_at DATETIME, action TEXT, info TEXT);
CREATE TABLE rec (user_id INTEGER, post_id INTEGER);
`

// seed creates a database file with schema and rows, and opens it for reading.
func seed(t *testing.T, stmts ...string) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sim.db")
	w, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	for _, s := range stmts {
		_, err := w.Exec(s)
		require.NoError(t, err, s)
	}
	require.NoError(t, w.Close())
	db, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func snapshot(t *testing.T, db *DB) *Snapshot {
	t.Helper()
	s, err := db.Snapshot(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenMissingFileDoesNotCreateIt(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.db"))
	assert.Error(t, err)
	_, err = Open("")
	assert.Error(t, err)
}

func TestPostsAndLookup(t *testing.T) {
	db := seed(t, twitterSchema,
		`INSERT INTO post (post_id, user_id, content, created_at, num_likes) VALUES (1, 0, 'Hello', 100, 2)`,
		`INSERT INTO post (post_id, user_id, content, original_post_id, created_at) VALUES (2, 1, NULL, 1, 101)`,
		`INSERT INTO post (post_id, user_id, content, quote_content, original_post_id, created_at) VALUES (3, 2, 'nice point', 'totally agree', 1, '2024-01-01 00:00:00')`,
	)
	s := snapshot(t, db)
	ctx := context.Background()

	posts, err := s.Posts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, "Hello", posts[0].Content)
	require.NotNil(t, posts[0].Likes)
	assert.Equal(t, 2, *posts[0].Likes)
	assert.Nil(t, posts[0].OriginalPostID)
	assert.Equal(t, "", posts[1].Content)
	require.NotNil(t, posts[1].OriginalPostID)
	assert.Equal(t, int64(1), *posts[1].OriginalPostID)
	assert.Equal(t, "totally agree", posts[2].QuoteContent)
	assert.True(t, posts[0].CreatedAt.Before(posts[1].CreatedAt))

	p, ok, err := s.PostByID(ctx, 3)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(2), p.UserID)

	_, ok, err = s.PostByID(ctx, 99)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPostsWithoutOptionalColumns(t *testing.T) {
	db := seed(t,
		`CREATE TABLE post (post_id INTEGER PRIMARY KEY, user_id INTEGER, content TEXT, created_at INTEGER)`,
		`INSERT INTO post VALUES (1, 0, 'Hi', 5)`,
	)
	posts, err := snapshot(t, db).Posts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Nil(t, posts[0].Likes)
	assert.Nil(t, posts[0].OriginalPostID)
	assert.Equal(t, "", posts[0].QuoteContent)
}

func TestMissingPostRelation(t *testing.T) {
	db := seed(t, `CREATE TABLE other (x INTEGER)`)
	_, err := snapshot(t, db).Posts(context.Background())
	assert.True(t, errors.Is(err, ErrNoRelation))
}

func TestCommentsInsertionOrderAndMissingRelation(t *testing.T) {
	db := seed(t, twitterSchema,
		`INSERT INTO comment (post_id, user_id, content, created_at) VALUES (1, 1, 'first', 10)`,
		`INSERT INTO comment (post_id, user_id, content, created_at) VALUES (1, 2, 'second', 5)`,
	)
	cs, err := snapshot(t, db).Comments(context.Background())
	require.NoError(t, err)
	require.Len(t, cs, 2)
	assert.Equal(t, "first", cs[0].Content)
	assert.Equal(t, "second", cs[1].Content)

	bare := seed(t, `CREATE TABLE post (post_id INTEGER PRIMARY KEY, user_id INTEGER)`)
	_, err = snapshot(t, bare).Comments(context.Background())
	assert.True(t, errors.Is(err, ErrNoRelation))
}

func TestRecentActionsNewestFirstAndLimit(t *testing.T) {
	db := seed(t, twitterSchema,
		`INSERT INTO trace VALUES (0, 1, 'sign_up', '{"name":"alice"}')`,
		`INSERT INTO trace VALUES (1, 2, 'create_post', '{not json')`,
		`INSERT INTO trace VALUES (2, 3, 'like_post', NULL)`,
	)
	s := snapshot(t, db)
	ctx := context.Background()

	got, err := s.RecentActions(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "like_post", got[0].Action)
	assert.Equal(t, "create_post", got[1].Action)
	assert.Equal(t, "{not json", got[1].Payload)

	all, err := s.RecentActions(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := s.RecentActions(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRecentActionsActionParamsColumn(t *testing.T) {
	db := seed(t,
		`CREATE TABLE trace (user_id INTEGER, created_at INTEGER, action TEXT, info TEXT, action_params TEXT)`,
		`INSERT INTO trace VALUES (1, 1, 'a', NULL, '{"k":1}')`,
		`INSERT INTO trace VALUES (1, 2, 'b', 'from info', 'ignored')`,
	)
	got, err := snapshot(t, db).RecentActions(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "from info", got[0].Payload)
	assert.Equal(t, `{"k":1}`, got[1].Payload)

	only := seed(t,
		`CREATE TABLE trace (user_id INTEGER, created_at INTEGER, action TEXT, action_params TEXT)`,
		`INSERT INTO trace VALUES (1, 1, 'a', 'p')`,
	)
	got, err = snapshot(t, only).RecentActions(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p", got[0].Payload)
}

func TestUserCountsAndAgents(t *testing.T) {
	db := seed(t, twitterSchema,
		`INSERT INTO user (user_id, agent_id, user_name, num_followings, num_followers) VALUES (0, 0, 'alice', 4, 9)`,
		`INSERT INTO user (user_id, agent_id, user_name) VALUES (1, 1, 'bob')`,
	)
	s := snapshot(t, db)
	ctx := context.Background()

	u, ok, err := s.UserCounts(ctx, 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, model.UserSnapshot{AgentID: 0, NumFollowers: 9, NumFollowings: 4}, u)

	_, ok, err = s.UserCounts(ctx, 7)
	require.NoError(t, err)
	assert.False(t, ok)

	ids, err := s.AgentIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 1}, ids)
}

func TestVisiblePosts(t *testing.T) {
	db := seed(t, twitterSchema,
		`INSERT INTO rec VALUES (1, 3)`, `INSERT INTO rec VALUES (1, 2)`, `INSERT INTO rec VALUES (2, 1)`,
	)
	ids, err := snapshot(t, db).VisiblePosts(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 2}, ids)

	bare := seed(t, `CREATE TABLE post (post_id INTEGER PRIMARY KEY, user_id INTEGER)`)
	_, err = snapshot(t, bare).VisiblePosts(context.Background(), 1)
	assert.True(t, errors.Is(err, ErrNoRelation))
}

func TestGroups(t *testing.T) {
	db := seed(t,
		`CREATE TABLE chat_group (group_id INTEGER PRIMARY KEY, name TEXT)`,
		`CREATE TABLE group_members (group_id INTEGER, agent_id INTEGER)`,
		`CREATE TABLE group_messages (message_id INTEGER PRIMARY KEY, group_id INTEGER, sender_id INTEGER, content TEXT, sent_at TEXT)`,
		`INSERT INTO chat_group VALUES (1, 'tech'), (2, 'coffee')`,
		`INSERT INTO group_members VALUES (2, 5)`,
		`INSERT INTO group_messages VALUES (1, 1, 4, 'not visible', '2024-01-01'), (2, 2, 6, 'hi', '2024-01-02')`,
	)
	st, err := snapshot(t, db).Groups(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, []model.Group{{ID: 1, Name: "tech"}, {ID: 2, Name: "coffee"}}, st.All)
	assert.Equal(t, []int64{2}, st.Joined)
	assert.Equal(t, []model.GroupMessage{{GroupID: 2, SenderID: 6, Content: "hi", SentAt: "2024-01-02"}}, st.Messages)

	bare := seed(t, `CREATE TABLE post (post_id INTEGER PRIMARY KEY, user_id INTEGER)`)
	_, err = snapshot(t, bare).Groups(context.Background(), 5)
	assert.True(t, errors.Is(err, ErrNoRelation))
}

func TestSnapshotCloseIsIdempotent(t *testing.T) {
	db := seed(t, twitterSchema)
	s, err := db.Snapshot(context.Background())
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}
