package repository

import (
	"github.com/jmoiron/sqlx"
	"github.com/maeulhub/maeulhub-api/internal/model"
)

type CommentRepository interface {
	Create(comment *model.Comment) error
	CountByUser(userID string) (int, error)
}

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(comment *model.Comment) error {
	query := `INSERT INTO comments (id, user_id, post_id, contents, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(query,
		comment.ID,
		comment.UserID,
		comment.PostID,
		comment.Contents,
		comment.CreatedAt,
		comment.UpdatedAt,
	)
	return err
}

func (r *commentRepository) CountByUser(userID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM comments WHERE user_id = $1`

	err := r.db.Get(&count, query, userID)
	return count, err
}
