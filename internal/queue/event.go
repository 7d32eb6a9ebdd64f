// Package queue defines message payloads exchanged over the message broker
// together with the publisher and the background consumer.
package queue

// CommentCreatedQueue is the durable queue comment events are routed to.
const CommentCreatedQueue = "comment.created"

// CommentCreatedEvent is published after a visitor comment is stored.  It
// carries enough information for downstream consumers to log, notify or
// moderate without querying the primary database.  Email and password are
// deliberately absent.
type CommentCreatedEvent struct {
	CommentID uint64 `json:"comment_id"`
	GameID    uint64 `json:"game_id"`
	GameTitle string `json:"game_title"`
	Nickname  string `json:"nickname"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}
