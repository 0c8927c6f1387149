package service

import (
	"io"
	"sync"

	"github.com/maeulhub/maeulhub-api/internal/model"
	"github.com/maeulhub/maeulhub-api/internal/repository"
)

// fakeUserRepository is an in-memory UserRepository with the same sentinel
// behavior as the SQL-backed one.
type fakeUserRepository struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: map[string]*model.User{}}
}

func (r *fakeUserRepository) Create(user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
		if u.Nickname == user.Nickname {
			return repository.ErrDuplicateNickname
		}
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepository) ByID(id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *fakeUserRepository) ByEmail(email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepository) ByNickname(nickname string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Nickname == nickname {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepository) FindOrCreateByEmail(email string, defaults *model.User) (*model.User, bool, error) {
	u, err := r.ByEmail(email)
	if err == nil {
		return u, false, nil
	}
	err = r.Create(defaults)
	if err != nil {
		return nil, false, err
	}
	return defaults, true, nil
}

func (r *fakeUserRepository) UpdateNickname(id, nickname string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID != id && u.Nickname == nickname {
			return repository.ErrDuplicateNickname
		}
	}
	if u, ok := r.users[id]; ok {
		u.Nickname = nickname
	}
	return nil
}

func (r *fakeUserRepository) UpdatePassword(id, salt, password string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.Salt = salt
		u.Password = password
	}
	return nil
}

func (r *fakeUserRepository) UpdateArea(id, userArea string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.UserArea = &userArea
	}
	return nil
}

func (r *fakeUserRepository) UpdatePhoto(id string, imagePath *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.ImagePath = imagePath
	}
	return nil
}

func (r *fakeUserRepository) DeleteAccount(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

type fakePostRepository struct {
	counts map[string]int
}

func (r *fakePostRepository) Create(post *model.Post) error {
	r.counts[post.UserID]++
	return nil
}

func (r *fakePostRepository) IDsByUser(userID string) ([]string, error) { return nil, nil }

func (r *fakePostRepository) CountByUser(userID string) (int, error) {
	return r.counts[userID], nil
}

type fakeCommentRepository struct {
	counts map[string]int
}

func (r *fakeCommentRepository) Create(comment *model.Comment) error {
	r.counts[comment.UserID]++
	return nil
}

func (r *fakeCommentRepository) CountByUser(userID string) (int, error) {
	return r.counts[userID], nil
}

type fakeStorageRepository struct {
	counts map[string]int
}

func (r *fakeStorageRepository) Create(storage *model.Storage) error {
	r.counts[storage.UserID]++
	return nil
}

func (r *fakeStorageRepository) CountByUser(userID string) (int, error) {
	return r.counts[userID], nil
}

// fakePhotoStorage records saved and deleted object paths.
type fakePhotoStorage struct {
	saved   map[string][]byte
	deleted []string
}

func newFakePhotoStorage() *fakePhotoStorage {
	return &fakePhotoStorage{saved: map[string][]byte{}}
}

func (s *fakePhotoStorage) Save(path string, file io.Reader) error {
	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	s.saved[path] = data
	return nil
}

func (s *fakePhotoStorage) Delete(path string) error {
	s.deleted = append(s.deleted, path)
	delete(s.saved, path)
	return nil
}

func (s *fakePhotoStorage) URL(path string) string {
	return "https://cdn.test/" + path
}
