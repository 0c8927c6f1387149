package model

// PostCategory links a post to a two-level category code.
type PostCategory struct {
	ID        string `db:"id" json:"id"`
	PostID    string `db:"post_id" json:"postId"`
	Category1 int    `db:"category1" json:"category1"`
	Category2 int    `db:"category2" json:"category2"`
}
