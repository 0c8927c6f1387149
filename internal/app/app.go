package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/maeulhub/maeulhub-api/internal/config"
	"github.com/maeulhub/maeulhub-api/internal/db"
	"github.com/maeulhub/maeulhub-api/internal/repository"
	"github.com/maeulhub/maeulhub-api/internal/service"
	"github.com/maeulhub/maeulhub-api/internal/storage"
)

type App struct {
	Cfg          *config.Config
	DB           *sqlx.DB
	AuthService  *service.AuthService
	TokenService *service.TokenService
	OAuthService *service.OAuthService
	UserService  *service.UserService
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	postRepository := repository.NewPostRepository(database)
	commentRepository := repository.NewCommentRepository(database)
	storageRepository := repository.NewStorageRepository(database)

	// Storage
	photoStorage, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %v", err)
	}

	// Services
	authService := service.NewAuthService(userRepository)
	tokenService := service.NewTokenService(
		cfg.AccessTokenSecret,
		cfg.RefreshTokenSecret,
		cfg.AccessTokenExpiry,
		cfg.RefreshTokenExpiry,
	)
	oauthService := service.NewOAuthService(cfg)
	userService := service.NewUserService(
		userRepository,
		postRepository,
		commentRepository,
		storageRepository,
		photoStorage,
	)

	return &App{
		Cfg:          cfg,
		DB:           database,
		AuthService:  authService,
		TokenService: tokenService,
		OAuthService: oauthService,
		UserService:  userService,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
