package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/maeulhub/maeulhub-api/internal/ctxkeys"
	"github.com/maeulhub/maeulhub-api/internal/service"
)

const maxPhotoUploadBytes = 10 << 20 // 10 MB

type accountHandler struct {
	userService *service.UserService
}

func NewAccountHandler(userService *service.UserService) *accountHandler {
	return &accountHandler{
		userService: userService,
	}
}

// Profile returns the session user plus counts of their comments, posts and
// saved posts.
func (h *accountHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	user, counts, err := h.userService.Profile(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondMessage(w, http.StatusNotFound, "user does not exist")
			return
		}
		slog.Error("profile lookup failed", "error", err, "user_id", userID)
		respondMessage(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"data":      user,
		"myComment": counts.MyComment,
		"myPost":    counts.MyPost,
		"myStorage": counts.MyStorage,
	})
}

// Update applies whichever of nickname, password, userArea and photo the
// multipart request carries. Absent fields stay untouched.
func (h *accountHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	err := r.ParseMultipartForm(maxPhotoUploadBytes)
	if err != nil {
		// Fall back to urlencoded bodies without a photo part
		err = r.ParseForm()
		if err != nil {
			respondMessage(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	params := service.UpdateParams{
		Nickname: formValue(r, "nickname"),
		Password: formValue(r, "password"),
		UserArea: formValue(r, "userArea"),
	}

	photo, photoHdr, err := r.FormFile("photo")
	if err == nil {
		defer photo.Close()
		params.Photo = photo
		params.PhotoHdr = photoHdr
	} else if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		respondMessage(w, http.StatusBadRequest, "invalid photo upload")
		return
	}

	err = h.userService.Update(userID, params)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondMessage(w, http.StatusNotFound, "user does not exist")
			return
		}
		if errors.Is(err, service.ErrNicknameTaken) {
			respondMessage(w, http.StatusConflict, err.Error())
			return
		}
		slog.Warn("profile update failed", "error", err, "user_id", userID)
		respondMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	respondMessage(w, http.StatusOK, "profile updated")
}

// Delete removes the account and every dependent row, then clears the
// session cookies.
func (h *accountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	// Weak guard carried over from the original API contract
	if len(r.Header) == 0 {
		respondMessage(w, http.StatusForbidden, "invalid request")
		return
	}

	userID := ctxkeys.UserID(r.Context())

	err := h.userService.DeleteAccount(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondMessage(w, http.StatusNotFound, "user does not exist")
			return
		}
		slog.Error("account deletion failed", "error", err, "user_id", userID)
		respondMessage(w, http.StatusInternalServerError, "failed to delete account")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:   "refreshToken",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	w.Header().Set("Authorization", "")
	respondMessage(w, http.StatusOK, "account deleted")
}

type deletePhotoRequest struct {
	ImagePath *string `json:"imagePath"`
}

// DeletePhoto nulls the stored photo when the body carries an imagePath key.
// Always answers 200; a missing user or photo is a no-op.
func (h *accountHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	var req deletePhotoRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		// Empty or malformed body means no imagePath key: no-op
		req.ImagePath = nil
	}

	if req.ImagePath != nil {
		err = h.userService.DeletePhoto(userID)
		if err != nil {
			slog.Error("photo deletion failed", "error", err, "user_id", userID)
			respondMessage(w, http.StatusInternalServerError, "failed to delete photo")
			return
		}
	}

	respondMessage(w, http.StatusOK, "photo deleted")
}

// formValue returns a pointer to the form field value when the key is
// present, nil otherwise. Presence drives the conditional update semantics.
func formValue(r *http.Request, key string) *string {
	values, ok := r.Form[key]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}
