package model

// Post is one row of the simulator's post relation.
// Content and QuoteContent are "" when NULL in the store.
type Post struct {
	ID             int64
	UserID         int64
	Content        string
	QuoteContent   string
	OriginalPostID *int64
	CreatedAt      Timestamp
	Likes          *int // nil when the num_likes column is absent
}

// HasOriginal reports whether the post references another post.
func (p Post) HasOriginal() bool { return p.OriginalPostID != nil }

// Parent is the subset of a referenced post needed to attribute a repost.
type Parent struct {
	UserID  int64
	Content string
}

// Comment is one row of the optional comment relation.
type Comment struct {
	ID        int64
	PostID    int64
	UserID    int64
	Content   string
	CreatedAt Timestamp
}

// ActionLogEntry is one row of the trace relation.
type ActionLogEntry struct {
	RowID     int64
	UserID    int64
	Action    string
	CreatedAt Timestamp
	Payload   string
}

// UserSnapshot holds the follower counters of one agent.
type UserSnapshot struct {
	AgentID       int64
	NumFollowers  int
	NumFollowings int
}

// Group is a chat group known to the platform.
type Group struct {
	ID   int64  `json:"group_id"`
	Name string `json:"name"`
}

// GroupMessage is a message posted to a group chat.
type GroupMessage struct {
	GroupID  int64  `json:"group_id"`
	SenderID int64  `json:"sender_id"`
	Content  string `json:"content"`
	SentAt   string `json:"sent_at"`
}

// GroupState is what an agent can see of the group chats.
type GroupState struct {
	All      []Group
	Joined   []int64
	Messages []GroupMessage
}

// ID returns a pointer to v, for optional id fields.
func ID(v int64) *int64 { return &v }
