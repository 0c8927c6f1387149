package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/maeulhub/maeulhub-api/internal/app"
	"github.com/maeulhub/maeulhub-api/internal/config"
	"github.com/maeulhub/maeulhub-api/internal/db"
	"github.com/maeulhub/maeulhub-api/internal/repository"
	"github.com/maeulhub/maeulhub-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStorage keeps photo objects in memory for tests.
type memStorage struct {
	objects map[string][]byte
}

func (s *memStorage) Save(path string, file io.Reader) error {
	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	s.objects[path] = data
	return nil
}

func (s *memStorage) Delete(path string) error {
	delete(s.objects, path)
	return nil
}

func (s *memStorage) URL(path string) string {
	return "https://cdn.test/" + path
}

type testServer struct {
	router   http.Handler
	database *sqlx.DB
	photos   *memStorage
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	database, err := sqlx.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	database.SetMaxOpenConns(1)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, db.RunMigrations(database.DB, "sqlite"))

	cfg := &config.Config{
		AppEnv:             "development",
		ClientOrigin:       "http://localhost:3000",
		AccessTokenSecret:  "test-access-secret",
		RefreshTokenSecret: "test-refresh-secret",
		AccessTokenExpiry:  12 * time.Hour,
		RefreshTokenExpiry: 50 * 24 * time.Hour,
		OAuthTimeout:       time.Second,
	}

	userRepo := repository.NewUserRepository(database)
	photos := &memStorage{objects: map[string][]byte{}}

	a := &app.App{
		Cfg:          cfg,
		DB:           database,
		AuthService:  service.NewAuthService(userRepo),
		TokenService: service.NewTokenService(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenExpiry, cfg.RefreshTokenExpiry),
		OAuthService: service.NewOAuthService(cfg),
		UserService: service.NewUserService(
			userRepo,
			repository.NewPostRepository(database),
			repository.NewCommentRepository(database),
			repository.NewStorageRepository(database),
			photos,
		),
	}

	return &testServer{router: SetupRoutes(a), database: database, photos: photos}
}

func (ts *testServer) doJSON(t *testing.T, method, target string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// signup registers a user through the API and returns their id.
func (ts *testServer) signup(t *testing.T, nickname, email, password string) string {
	t.Helper()
	rec := ts.doJSON(t, http.MethodPost, "/users/signup", map[string]string{
		"nickname": nickname,
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody(t, rec)["userId"].(string)
}

func sessionCookie(userID string) *http.Cookie {
	return &http.Cookie{Name: "id", Value: userID}
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestSignupEndpoint(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.doJSON(t, http.MethodPost, "/users/signup", map[string]string{
		"nickname": "alice", "email": "alice@example.com", "password": "supersecret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["userId"])
	assert.Equal(t, "alice", body["nickname"])
	assert.Equal(t, "alice@example.com", body["email"])

	// Same email again
	rec = ts.doJSON(t, http.MethodPost, "/users/signup", map[string]string{
		"nickname": "alice2", "email": "alice@example.com", "password": "supersecret1",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Same nickname again
	rec = ts.doJSON(t, http.MethodPost, "/users/signup", map[string]string{
		"nickname": "alice", "email": "alice2@example.com", "password": "supersecret1",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Invalid payloads
	rec = ts.doJSON(t, http.MethodPost, "/users/signup", map[string]string{
		"nickname": "bob", "email": "not-an-email", "password": "supersecret1",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginEndpoint(t *testing.T) {
	ts := newTestServer(t)
	userID := ts.signup(t, "alice", "alice@example.com", "supersecret1")

	rec := ts.doJSON(t, http.MethodPost, "/users/login", map[string]string{
		"email": "alice@example.com", "password": "supersecret1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, userID, body["id"])
	assert.NotEmpty(t, body["accessToken"])

	refresh := findCookie(rec, "refreshToken")
	require.NotNil(t, refresh)
	assert.NotEmpty(t, refresh.Value)
	assert.True(t, refresh.HttpOnly)

	// Access token verifies against the signing secret
	claims, err := service.Verify(body["accessToken"].(string), "test-access-secret")
	require.NoError(t, err)
	assert.Equal(t, userID, claims["user_id"])

	rec = ts.doJSON(t, http.MethodPost, "/users/login", map[string]string{
		"email": "alice@example.com", "password": "wrong password",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.doJSON(t, http.MethodPost, "/users/login", map[string]string{
		"email": "nobody@example.com", "password": "supersecret1",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLogoutEndpoint(t *testing.T) {
	ts := newTestServer(t)

	// Nothing identifying a session at all
	req := httptest.NewRequest(http.MethodPost, "/users/logout", nil)
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Result().Cookies())

	// Any cookie counts as a session to clear
	rec = ts.doJSON(t, http.MethodPost, "/users/logout", nil, &http.Cookie{Name: "refreshToken", Value: "token"})
	require.Equal(t, http.StatusOK, rec.Code)

	cleared := findCookie(rec, "refreshToken")
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.True(t, cleared.Expires.Before(time.Now()))
}

func TestAvailabilityEndpoints(t *testing.T) {
	ts := newTestServer(t)
	ts.signup(t, "alice", "alice@example.com", "supersecret1")

	rec := ts.doJSON(t, http.MethodGet, "/users/check-nickname?nickname=alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["message"], "already in use")

	rec = ts.doJSON(t, http.MethodGet, "/users/check-nickname?nickname=bob", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["message"], "available")

	rec = ts.doJSON(t, http.MethodGet, "/users/check-email?email=alice@example.com", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["message"], "already in use")

	rec = ts.doJSON(t, http.MethodGet, "/users/check-email?email=bob@example.com", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["message"], "available")
}

func TestProfileEndpoint(t *testing.T) {
	ts := newTestServer(t)
	userID := ts.signup(t, "alice", "alice@example.com", "supersecret1")

	// No session cookie
	rec := ts.doJSON(t, http.MethodGet, "/users", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.doJSON(t, http.MethodGet, "/users", nil, sessionCookie(userID))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	data := body["data"].(map[string]any)
	assert.Equal(t, "alice", data["nickname"])
	assert.Equal(t, float64(0), body["myComment"])
	assert.Equal(t, float64(0), body["myPost"])
	assert.Equal(t, float64(0), body["myStorage"])

	// Credentials never serialize
	_, hasSalt := data["salt"]
	_, hasPassword := data["password"]
	assert.False(t, hasSalt)
	assert.False(t, hasPassword)
}

func TestUpdateEndpoint_FormFields(t *testing.T) {
	ts := newTestServer(t)
	userID := ts.signup(t, "alice", "alice@example.com", "supersecret1")

	form := url.Values{}
	form.Set("nickname", "alice2")
	form.Set("userArea", "Mapo-gu")

	req := httptest.NewRequest(http.MethodPut, "/users", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(sessionCookie(userID))
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.doJSON(t, http.MethodGet, "/users", nil, sessionCookie(userID))
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]any)
	assert.Equal(t, "alice2", data["nickname"])
	assert.Equal(t, "Mapo-gu", data["userArea"])
}

func TestUpdateEndpoint_PhotoUpload(t *testing.T) {
	ts := newTestServer(t)
	userID := ts.signup(t, "alice", "alice@example.com", "supersecret1")

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("photo", "avatar.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("jpeg bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPut, "/users", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.AddCookie(sessionCookie(userID))
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	require.Len(t, ts.photos.objects, 1)

	rec = ts.doJSON(t, http.MethodGet, "/users", nil, sessionCookie(userID))
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]any)
	imagePath, ok := data["imagePath"].(string)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(imagePath, "photos/"))
	assert.Contains(t, ts.photos.objects, imagePath)
}

func TestDeletePhotoEndpoint(t *testing.T) {
	ts := newTestServer(t)
	userID := ts.signup(t, "alice", "alice@example.com", "supersecret1")

	path := "photos/avatar.jpg"
	ts.photos.objects[path] = []byte("jpeg bytes")
	require.NoError(t, repository.NewUserRepository(ts.database).UpdatePhoto(userID, &path))

	// Body without an imagePath key is a no-op but still succeeds
	rec := ts.doJSON(t, http.MethodDelete, "/users/photo", map[string]string{}, sessionCookie(userID))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, ts.photos.objects, path)

	rec = ts.doJSON(t, http.MethodDelete, "/users/photo", map[string]string{"imagePath": path}, sessionCookie(userID))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, ts.photos.objects, path)

	rec = ts.doJSON(t, http.MethodGet, "/users", nil, sessionCookie(userID))
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]any)
	assert.Nil(t, data["imagePath"])
}

func TestDeleteAccountEndpoint(t *testing.T) {
	ts := newTestServer(t)
	userID := ts.signup(t, "alice", "alice@example.com", "supersecret1")

	rec := ts.doJSON(t, http.MethodDelete, "/users", nil, sessionCookie(userID))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	cleared := findCookie(rec, "refreshToken")
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)

	// The account is gone
	rec = ts.doJSON(t, http.MethodGet, "/users", nil, sessionCookie(userID))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.doJSON(t, http.MethodDelete, "/users", nil, sessionCookie(userID))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOAuthRedirects(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.doJSON(t, http.MethodGet, "/auth/google", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "accounts.google.com")

	rec = ts.doJSON(t, http.MethodGet, "/auth/kakao", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "kauth.kakao.com")

	// Callback without a code bounces back to the client login page
	rec = ts.doJSON(t, http.MethodGet, "/auth/google/callback", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "http://localhost:3000/login?error=oauth_failed", rec.Header().Get("Location"))
}

func TestRateLimitOnLogin(t *testing.T) {
	ts := newTestServer(t)

	var lastCode int
	for i := 0; i < 11; i++ {
		rec := ts.doJSON(t, http.MethodPost, "/users/login", map[string]string{
			"email": "nobody@example.com", "password": "supersecret1",
		})
		lastCode = rec.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, lastCode)
}
