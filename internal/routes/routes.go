package routes

import (
	"net/http"

	"github.com/maeulhub/maeulhub-api/internal/app"
	"github.com/maeulhub/maeulhub-api/internal/handler"
	"github.com/maeulhub/maeulhub-api/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	auth := handler.NewAuthHandler(app.AuthService, app.TokenService, app.OAuthService, app.Cfg)
	account := handler.NewAccountHandler(app.UserService)

	mux := http.NewServeMux()

	// Auth - credential flow (rate limited)
	rateLimiter := middleware.RateLimitAuth()

	mux.HandleFunc("POST /users/signup", rateLimiter(auth.Signup))
	mux.HandleFunc("POST /users/login", rateLimiter(auth.Login))
	mux.HandleFunc("POST /users/logout", auth.Logout)
	mux.HandleFunc("GET /users/check-nickname", auth.CheckNickname)
	mux.HandleFunc("GET /users/check-email", auth.CheckEmail)

	// OAuth
	mux.HandleFunc("GET /auth/google", rateLimiter(auth.GoogleLogin))
	mux.HandleFunc("GET /auth/google/callback", rateLimiter(auth.GoogleCallback))
	mux.HandleFunc("GET /auth/kakao", rateLimiter(auth.KakaoLogin))
	mux.HandleFunc("GET /auth/kakao/callback", rateLimiter(auth.KakaoCallback))

	// Account (session cookie identifies the user)
	mux.HandleFunc("GET /users", account.Profile)
	mux.HandleFunc("PUT /users", account.Update)
	mux.HandleFunc("DELETE /users", account.Delete)
	mux.HandleFunc("DELETE /users/photo", account.DeletePhoto)

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.RequestLogging,
		middleware.Session,
	)

	return handler
}
