package model

import (
	"time"
)

type Post struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	Title     string    `db:"title" json:"title"`
	Contents  string    `db:"contents" json:"contents"`
	ImagePath *string   `db:"image_path" json:"imagePath"`
	Address   *string   `db:"address" json:"address"`
	DueDate   *string   `db:"due_date" json:"dueDate"`
	Latitude  *float64  `db:"latitude" json:"latitude"`
	Longitude *float64  `db:"longitude" json:"longitude"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
