package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/maeulhub/maeulhub-api/internal/config"
	"github.com/maeulhub/maeulhub-api/internal/model"
	"github.com/maeulhub/maeulhub-api/internal/service"
)

type authHandler struct {
	authService  *service.AuthService
	tokenService *service.TokenService
	oauthService *service.OAuthService
	clientOrigin string
	isProduction bool
}

func NewAuthHandler(authService *service.AuthService, tokenService *service.TokenService, oauthService *service.OAuthService, cfg *config.Config) *authHandler {
	return &authHandler{
		authService:  authService,
		tokenService: tokenService,
		oauthService: oauthService,
		clientOrigin: cfg.ClientOrigin,
		isProduction: cfg.IsProduction(),
	}
}

type signupRequest struct {
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *authHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.authService.Signup(req.Nickname, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrNicknameTaken) || errors.Is(err, service.ErrEmailTaken) {
			respondMessage(w, http.StatusConflict, err.Error())
			return
		}
		slog.Warn("signup failed", "error", err, "email", req.Email)
		respondMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"userId":   user.ID,
		"nickname": user.Nickname,
		"email":    user.Email,
		"message":  "signup completed",
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *authHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondMessage(w, http.StatusNotFound, "user does not exist")
			return
		}
		if errors.Is(err, service.ErrWrongPassword) {
			respondMessage(w, http.StatusForbidden, "wrong password")
			return
		}
		slog.Error("login failed", "error", err, "email", req.Email)
		respondMessage(w, http.StatusInternalServerError, "login failed")
		return
	}

	accessToken, _, err := h.issueTokens(w, user)
	if err != nil {
		slog.Error("failed to issue tokens", "error", err, "user_id", user.ID)
		respondMessage(w, http.StatusInternalServerError, "login failed")
		return
	}

	slog.Info("user logged in", "user_id", user.ID, "email", user.Email)
	respondJSON(w, http.StatusOK, map[string]any{
		"accessToken": accessToken,
		"id":          user.ID,
		"message":     "login succeeded",
	})
}

// Logout clears the refresh-token cookie. Access tokens are stateless and
// stay valid until natural expiry; nothing is invalidated server-side.
func (h *authHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") == "" && len(r.Cookies()) == 0 {
		respondMessage(w, http.StatusUnauthorized, "already logged out")
		return
	}

	h.clearRefreshCookie(w)
	respondMessage(w, http.StatusOK, "logged out")
}

func (h *authHandler) CheckNickname(w http.ResponseWriter, r *http.Request) {
	nickname := r.URL.Query().Get("nickname")

	available, err := h.authService.NicknameAvailable(nickname)
	if err != nil {
		slog.Error("nickname check failed", "error", err)
		respondMessage(w, http.StatusInternalServerError, "nickname check failed")
		return
	}

	if available {
		respondMessage(w, http.StatusOK, "nickname is available")
		return
	}
	respondMessage(w, http.StatusOK, "nickname is already in use")
}

func (h *authHandler) CheckEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")

	available, err := h.authService.EmailAvailable(email)
	if err != nil {
		slog.Error("email check failed", "error", err)
		respondMessage(w, http.StatusInternalServerError, "email check failed")
		return
	}

	if available {
		respondMessage(w, http.StatusOK, "email is available")
		return
	}
	respondMessage(w, http.StatusOK, "email is already in use")
}

// GoogleLogin redirects to the Google consent screen
func (h *authHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	h.providerRedirect(w, r, service.ProviderGoogle)
}

// KakaoLogin redirects to the Kakao consent screen
func (h *authHandler) KakaoLogin(w http.ResponseWriter, r *http.Request) {
	h.providerRedirect(w, r, service.ProviderKakao)
}

func (h *authHandler) providerRedirect(w http.ResponseWriter, r *http.Request, provider service.Provider) {
	authURL, err := h.oauthService.AuthCodeURL(provider)
	if err != nil {
		slog.Error("oauth redirect failed", "error", err, "provider", provider)
		respondMessage(w, http.StatusInternalServerError, "oauth login failed")
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

// GoogleCallback handles the OAuth callback from Google
func (h *authHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	h.providerCallback(w, r, service.ProviderGoogle)
}

// KakaoCallback handles the OAuth callback from Kakao
func (h *authHandler) KakaoCallback(w http.ResponseWriter, r *http.Request) {
	h.providerCallback(w, r, service.ProviderKakao)
}

// providerCallback exchanges the authorization code, finds or creates the
// matching user and hands the access token to the client via a redirect
// query parameter. The refresh token travels as a cookie.
func (h *authHandler) providerCallback(w http.ResponseWriter, r *http.Request, provider service.Provider) {
	code := r.URL.Query().Get("code")
	if code == "" {
		slog.Warn("oauth callback missing code", "provider", provider)
		h.loginRedirect(w, r, "error=oauth_failed")
		return
	}

	profile, err := h.oauthService.Exchange(r.Context(), provider, code)
	if err != nil {
		slog.Error("oauth exchange failed", "error", err, "provider", provider)
		h.loginRedirect(w, r, "error=oauth_failed")
		return
	}

	user, err := h.authService.AuthenticateOAuth(profile)
	if err != nil {
		slog.Error("oauth authentication failed", "error", err, "provider", provider)
		h.loginRedirect(w, r, "error=oauth_failed")
		return
	}

	accessToken, _, err := h.issueTokens(w, user)
	if err != nil {
		slog.Error("failed to issue tokens", "error", err, "user_id", user.ID)
		h.loginRedirect(w, r, "error=oauth_failed")
		return
	}

	slog.Info("user logged in via oauth", "user_id", user.ID, "provider", provider)
	h.loginRedirect(w, r, "access_token="+url.QueryEscape(accessToken))
}

func (h *authHandler) loginRedirect(w http.ResponseWriter, r *http.Request, query string) {
	http.Redirect(w, r, h.clientOrigin+"/login?"+query, http.StatusFound)
}

// issueTokens signs both session tokens and sets the refresh-token cookie.
// The access token goes back to the caller for the response body or redirect.
func (h *authHandler) issueTokens(w http.ResponseWriter, user *model.User) (string, string, error) {
	accessToken, err := h.tokenService.IssueAccessToken(user)
	if err != nil {
		return "", "", err
	}
	refreshToken, err := h.tokenService.IssueRefreshToken(user)
	if err != nil {
		return "", "", err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "refreshToken",
		Value:    refreshToken,
		Path:     "/",
		Expires:  time.Now().Add(h.tokenService.RefreshExpiry()),
		HttpOnly: true,
		Secure:   h.isProduction,
		SameSite: http.SameSiteNoneMode,
	})

	return accessToken, refreshToken, nil
}

func (h *authHandler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "refreshToken",
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.isProduction,
		SameSite: http.SameSiteNoneMode,
	})
}
