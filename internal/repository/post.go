package repository

import (
	"github.com/jmoiron/sqlx"
	"github.com/maeulhub/maeulhub-api/internal/model"
)

type PostRepository interface {
	Create(post *model.Post) error
	IDsByUser(userID string) ([]string, error)
	CountByUser(userID string) (int, error)
}

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(post *model.Post) error {
	query := `INSERT INTO posts (id, user_id, title, contents, image_path, address, due_date, latitude, longitude, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.Exec(query,
		post.ID,
		post.UserID,
		post.Title,
		post.Contents,
		post.ImagePath,
		post.Address,
		post.DueDate,
		post.Latitude,
		post.Longitude,
		post.CreatedAt,
		post.UpdatedAt,
	)
	return err
}

func (r *postRepository) IDsByUser(userID string) ([]string, error) {
	var ids []string
	query := `SELECT id FROM posts WHERE user_id = $1`

	err := r.db.Select(&ids, query, userID)
	return ids, err
}

func (r *postRepository) CountByUser(userID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM posts WHERE user_id = $1`

	err := r.db.Get(&count, query, userID)
	return count, err
}
