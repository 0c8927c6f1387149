package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/maeulhub/maeulhub-api/internal/model"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrDuplicateNickname = errors.New("nickname already exists")
)

type UserRepository interface {
	Create(user *model.User) error
	ByID(id string) (*model.User, error)
	ByEmail(email string) (*model.User, error)
	ByNickname(nickname string) (*model.User, error)
	FindOrCreateByEmail(email string, defaults *model.User) (*model.User, bool, error)
	UpdateNickname(id, nickname string) error
	UpdatePassword(id, salt, password string) error
	UpdateArea(id, userArea string) error
	UpdatePhoto(id string, imagePath *string) error
	DeleteAccount(id string) error
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	query := `INSERT INTO users (id, nickname, email, salt, password, user_area, image_path, login_type, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(query,
		user.ID,
		user.Nickname,
		user.Email,
		user.Salt,
		user.Password,
		user.UserArea,
		user.ImagePath,
		user.LoginType,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return translateUniqueViolation(err)
	}

	return nil
}

// translateUniqueViolation maps driver unique-constraint errors onto sentinel
// errors, keyed by the violated column (works for both SQLite and PostgreSQL).
func translateUniqueViolation(err error) error {
	errStr := err.Error()
	if !strings.Contains(errStr, "UNIQUE constraint failed") && !strings.Contains(errStr, "duplicate key value") {
		return err
	}
	if strings.Contains(errStr, "nickname") {
		return ErrDuplicateNickname
	}
	return ErrDuplicateEmail
}

func (r *userRepository) ByID(id string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT * FROM users WHERE id = $1`

	err := r.db.Get(user, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}

	return user, err
}

func (r *userRepository) ByEmail(email string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT * FROM users WHERE email = $1`

	err := r.db.Get(user, query, email)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}

	return user, err
}

func (r *userRepository) ByNickname(nickname string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT * FROM users WHERE nickname = $1`

	err := r.db.Get(user, query, nickname)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}

	return user, err
}

// FindOrCreateByEmail returns the user matching email, creating one from
// defaults when no match exists. The bool reports whether a row was created.
func (r *userRepository) FindOrCreateByEmail(email string, defaults *model.User) (*model.User, bool, error) {
	user, err := r.ByEmail(email)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, false, err
	}

	err = r.Create(defaults)
	if err != nil {
		// Lost a race with a concurrent callback for the same email
		if errors.Is(err, ErrDuplicateEmail) {
			user, err = r.ByEmail(email)
			return user, false, err
		}
		return nil, false, err
	}

	return defaults, true, nil
}

func (r *userRepository) UpdateNickname(id, nickname string) error {
	query := `UPDATE users SET nickname = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`

	_, err := r.db.Exec(query, nickname, id)
	if err != nil {
		return translateUniqueViolation(err)
	}
	return nil
}

func (r *userRepository) UpdatePassword(id, salt, password string) error {
	query := `UPDATE users SET salt = $1, password = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $3`

	_, err := r.db.Exec(query, salt, password, id)
	return err
}

func (r *userRepository) UpdateArea(id, userArea string) error {
	query := `UPDATE users SET user_area = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`

	_, err := r.db.Exec(query, userArea, id)
	return err
}

func (r *userRepository) UpdatePhoto(id string, imagePath *string) error {
	query := `UPDATE users SET image_path = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`

	_, err := r.db.Exec(query, imagePath, id)
	return err
}

// DeleteAccount removes the user and every dependent row in one transaction:
// per-post comments, storages and category links, the user's posts, then the
// user's own comments and storages. All-or-nothing; a missing user rolls back
// with ErrUserNotFound.
func (r *userRepository) DeleteAccount(id string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var postIDs []string
	err = tx.Select(&postIDs, `SELECT id FROM posts WHERE user_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to list user posts: %w", err)
	}

	for _, postID := range postIDs {
		_, err = tx.Exec(`DELETE FROM comments WHERE post_id = $1`, postID)
		if err != nil {
			return fmt.Errorf("failed to delete post comments: %w", err)
		}
		_, err = tx.Exec(`DELETE FROM storages WHERE post_id = $1`, postID)
		if err != nil {
			return fmt.Errorf("failed to delete post storages: %w", err)
		}
		_, err = tx.Exec(`DELETE FROM post_categories WHERE post_id = $1`, postID)
		if err != nil {
			return fmt.Errorf("failed to delete post categories: %w", err)
		}
	}

	_, err = tx.Exec(`DELETE FROM posts WHERE user_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete posts: %w", err)
	}
	_, err = tx.Exec(`DELETE FROM comments WHERE user_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete comments: %w", err)
	}
	_, err = tx.Exec(`DELETE FROM storages WHERE user_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete storages: %w", err)
	}

	result, err := tx.Exec(`DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	return tx.Commit()
}
