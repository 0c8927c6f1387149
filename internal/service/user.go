package service

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/maeulhub/maeulhub-api/internal/model"
	"github.com/maeulhub/maeulhub-api/internal/repository"
	"github.com/maeulhub/maeulhub-api/internal/storage"
	"github.com/maeulhub/maeulhub-api/internal/validation"
)

// UserService covers the profile surface: aggregate reads, conditional field
// updates, photo handling and account deletion.
type UserService struct {
	userRepository    repository.UserRepository
	postRepository    repository.PostRepository
	commentRepository repository.CommentRepository
	storageRepository repository.StorageRepository
	photoStorage      storage.Storage
}

func NewUserService(
	userRepository repository.UserRepository,
	postRepository repository.PostRepository,
	commentRepository repository.CommentRepository,
	storageRepository repository.StorageRepository,
	photoStorage storage.Storage,
) *UserService {
	return &UserService{
		userRepository:    userRepository,
		postRepository:    postRepository,
		commentRepository: commentRepository,
		storageRepository: storageRepository,
		photoStorage:      photoStorage,
	}
}

// ProfileCounts aggregates how many comments, posts and saved posts a user owns.
type ProfileCounts struct {
	MyComment int `json:"myComment"`
	MyPost    int `json:"myPost"`
	MyStorage int `json:"myStorage"`
}

// Profile returns the user record plus counts from the three collaborator stores.
func (s *UserService) Profile(userID string) (*model.User, *ProfileCounts, error) {
	user, err := s.userRepository.ByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}

	counts := &ProfileCounts{}
	counts.MyComment, err = s.commentRepository.CountByUser(userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to count comments: %w", err)
	}
	counts.MyPost, err = s.postRepository.CountByUser(userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to count posts: %w", err)
	}
	counts.MyStorage, err = s.storageRepository.CountByUser(userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to count storages: %w", err)
	}

	return user, counts, nil
}

// UpdateParams carries the optional profile fields of an update request. Nil
// means "leave unchanged".
type UpdateParams struct {
	Nickname *string
	Password *string
	UserArea *string
	Photo    multipart.File
	PhotoHdr *multipart.FileHeader
}

// Update applies each supplied field independently. A new password gets a
// fresh salt; a new photo replaces the stored one, deleting the old object
// best-effort.
func (s *UserService) Update(userID string, params UpdateParams) error {
	user, err := s.userRepository.ByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if params.Nickname != nil {
		nickname := strings.TrimSpace(*params.Nickname)
		err = validation.ValidateNickname(nickname)
		if err != nil {
			return err
		}
		err = s.userRepository.UpdateNickname(userID, nickname)
		if err != nil {
			if errors.Is(err, repository.ErrDuplicateNickname) {
				return ErrNicknameTaken
			}
			return fmt.Errorf("failed to update nickname: %w", err)
		}
	}

	if params.Password != nil {
		err = validation.ValidatePassword(*params.Password)
		if err != nil {
			return err
		}
		salt, err := NewSalt()
		if err != nil {
			return fmt.Errorf("failed to generate salt: %w", err)
		}
		err = s.userRepository.UpdatePassword(userID, salt, HashPassword(*params.Password, salt))
		if err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}
	}

	if params.UserArea != nil {
		err = s.userRepository.UpdateArea(userID, *params.UserArea)
		if err != nil {
			return fmt.Errorf("failed to update area: %w", err)
		}
	}

	if params.Photo != nil && params.PhotoHdr != nil {
		err = s.replacePhoto(user, params.Photo, params.PhotoHdr)
		if err != nil {
			return err
		}
	}

	return nil
}

// replacePhoto uploads the new photo under a unique name, points the user at
// it and drops the old object. Cleanup failures are logged, never surfaced.
func (s *UserService) replacePhoto(user *model.User, photo multipart.File, hdr *multipart.FileHeader) error {
	ext := filepath.Ext(hdr.Filename)
	path := filepath.Join("photos", uuid.New().String()+ext)

	err := s.photoStorage.Save(path, photo)
	if err != nil {
		return fmt.Errorf("failed to save photo: %w", err)
	}

	err = s.userRepository.UpdatePhoto(user.ID, &path)
	if err != nil {
		delErr := s.photoStorage.Delete(path)
		if delErr != nil {
			slog.Error("failed to delete photo during cleanup", "error", delErr, "path", path)
		}
		return fmt.Errorf("failed to update photo: %w", err)
	}

	s.deleteStoredPhoto(user)
	return nil
}

// DeletePhoto nulls out the user's photo and deletes the stored object
// best-effort. A missing user or photo is a no-op, not an error.
func (s *UserService) DeletePhoto(userID string) error {
	user, err := s.userRepository.ByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if !user.HasPhoto() {
		return nil
	}

	s.deleteStoredPhoto(user)

	err = s.userRepository.UpdatePhoto(userID, nil)
	if err != nil {
		return fmt.Errorf("failed to clear photo: %w", err)
	}

	return nil
}

// DeleteAccount removes the user and all dependent rows in one transaction,
// then drops the photo object best-effort.
func (s *UserService) DeleteAccount(userID string) error {
	user, err := s.userRepository.ByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	err = s.userRepository.DeleteAccount(userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete account: %w", err)
	}

	s.deleteStoredPhoto(user)

	slog.Info("account deleted", "user_id", userID)
	return nil
}

// deleteStoredPhoto removes the photo object if the user has one we store
// ourselves. Provider-hosted picture URLs (OAuth accounts) are left alone.
func (s *UserService) deleteStoredPhoto(user *model.User) {
	if !user.HasPhoto() || strings.HasPrefix(*user.ImagePath, "http") {
		return
	}
	err := s.photoStorage.Delete(*user.ImagePath)
	if err != nil {
		slog.Warn("failed to delete old photo", "error", err, "user_id", user.ID, "path", *user.ImagePath)
	}
}
