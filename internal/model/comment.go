package model

import (
	"time"
)

type Comment struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	PostID    string    `db:"post_id" json:"postId"`
	Contents  string    `db:"contents" json:"contents"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
