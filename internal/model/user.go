package model

import (
	"time"
)

type User struct {
	ID        string    `db:"id" json:"id"`
	Nickname  string    `db:"nickname" json:"nickname"`
	Email     string    `db:"email" json:"email"`
	Salt      string    `db:"salt" json:"-"`
	Password  string    `db:"password" json:"-"`
	UserArea  *string   `db:"user_area" json:"userArea"`
	ImagePath *string   `db:"image_path" json:"imagePath"`
	LoginType bool      `db:"login_type" json:"loginType"` // false = local credentials, true = OAuth-linked
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

func (u *User) HasPhoto() bool {
	return u.ImagePath != nil && *u.ImagePath != ""
}
