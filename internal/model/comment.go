package model

import "time"

// Comment is a note left by a visitor on a game page.  Comments are only
// ever inserted; CreatedAt is set once when the row is created.
//
// Fields:
//  ID           – primary key identifier.
//  GameID       – game the comment belongs to.
//  Nickname     – display name chosen by the visitor.
//  Email        – contact address, never rendered publicly.
//  PasswordHash – bcrypt hash of the password supplied with the comment.
//  Text         – comment body.
//  CreatedAt    – creation timestamp (UTC).
type Comment struct {
	ID           uint64    // comments.id
	GameID       uint64    // comments.game_id
	Nickname     string    // comments.nickname
	Email        string    // comments.email
	PasswordHash string    // comments.password_hash
	Text         string    // comments.text
	CreatedAt    time.Time // comments.created_at
}
