package repository

import (
	"github.com/jmoiron/sqlx"
	"github.com/maeulhub/maeulhub-api/internal/model"
)

type StorageRepository interface {
	Create(storage *model.Storage) error
	CountByUser(userID string) (int, error)
}

type storageRepository struct {
	db *sqlx.DB
}

func NewStorageRepository(db *sqlx.DB) StorageRepository {
	return &storageRepository{db: db}
}

func (r *storageRepository) Create(storage *model.Storage) error {
	query := `INSERT INTO storages (id, user_id, post_id, created_at)
	          VALUES ($1, $2, $3, $4)`

	_, err := r.db.Exec(query,
		storage.ID,
		storage.UserID,
		storage.PostID,
		storage.CreatedAt,
	)
	return err
}

func (r *storageRepository) CountByUser(userID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM storages WHERE user_id = $1`

	err := r.db.Get(&count, query, userID)
	return count, err
}
