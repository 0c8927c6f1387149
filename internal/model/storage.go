package model

import (
	"time"
)

// Storage is a bookmark linking a user to a post they saved.
type Storage struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	PostID    string    `db:"post_id" json:"postId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
