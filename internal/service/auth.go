package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/maeulhub/maeulhub-api/internal/model"
	"github.com/maeulhub/maeulhub-api/internal/repository"
	"github.com/maeulhub/maeulhub-api/internal/validation"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrWrongPassword = errors.New("wrong password")
	ErrNicknameTaken = errors.New("nickname already in use")
	ErrEmailTaken    = errors.New("email already in use")
)

// AuthService orchestrates local signup/login and OAuth account linking.
// Each call is a stateless transaction against the user store.
type AuthService struct {
	userRepository repository.UserRepository
}

func NewAuthService(userRepository repository.UserRepository) *AuthService {
	return &AuthService{
		userRepository: userRepository,
	}
}

// Signup creates a locally-credentialed account: fresh salt, PBKDF2 hash,
// login_type=false. Uniqueness violations surface as ErrNicknameTaken /
// ErrEmailTaken.
func (s *AuthService) Signup(nickname, email, password string) (*model.User, error) {
	nickname = strings.TrimSpace(nickname)
	email = strings.TrimSpace(strings.ToLower(email))

	err := validation.ValidateNickname(nickname)
	if err != nil {
		return nil, err
	}
	err = validation.ValidateEmail(email)
	if err != nil {
		return nil, err
	}
	err = validation.ValidatePassword(password)
	if err != nil {
		return nil, err
	}

	salt, err := NewSalt()
	if err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:        uuid.New().String(),
		Nickname:  nickname,
		Email:     email,
		Salt:      salt,
		Password:  HashPassword(password, salt),
		LoginType: false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.userRepository.Create(user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateNickname) {
			return nil, ErrNicknameTaken
		}
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user signed up", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// Login looks the user up by email and verifies the password by recomputing
// the hash with the stored salt.
func (s *AuthService) Login(email, password string) (*model.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.userRepository.ByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !VerifyPassword(password, user.Salt, user.Password) {
		return nil, ErrWrongPassword
	}

	return user, nil
}

// NicknameAvailable reports whether no user holds the nickname.
func (s *AuthService) NicknameAvailable(nickname string) (bool, error) {
	_, err := s.userRepository.ByNickname(nickname)
	if errors.Is(err, repository.ErrUserNotFound) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check nickname: %w", err)
	}
	return false, nil
}

// EmailAvailable reports whether no user holds the email.
func (s *AuthService) EmailAvailable(email string) (bool, error) {
	_, err := s.userRepository.ByEmail(strings.TrimSpace(strings.ToLower(email)))
	if errors.Is(err, repository.ErrUserNotFound) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return false, nil
}

// AuthenticateOAuth finds or creates the user matching the provider profile's
// email. New accounts default the nickname to the email's local part and take
// the provider's opaque user id as both salt and password placeholder, so no
// real credential property holds for OAuth accounts.
func (s *AuthService) AuthenticateOAuth(profile *OAuthProfile) (*model.User, error) {
	if profile.Email == "" {
		return nil, fmt.Errorf("provider %s returned no email", profile.Provider)
	}

	email := strings.TrimSpace(strings.ToLower(profile.Email))
	now := time.Now()
	defaults := &model.User{
		ID:        uuid.New().String(),
		Nickname:  strings.SplitN(email, "@", 2)[0],
		Email:     email,
		Salt:      profile.ID,
		Password:  profile.ID,
		ImagePath: profile.Picture,
		LoginType: true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	user, created, err := s.userRepository.FindOrCreateByEmail(email, defaults)
	if err != nil {
		return nil, fmt.Errorf("failed to find or create user: %w", err)
	}

	if created {
		slog.Info("new OAuth user created", "user_id", user.ID, "email", user.Email, "provider", profile.Provider)
	} else {
		slog.Info("user authenticated via OAuth", "user_id", user.ID, "email", user.Email, "provider", profile.Provider)
	}

	return user, nil
}
