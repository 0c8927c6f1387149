package middleware

import (
	"net/http"

	"github.com/maeulhub/maeulhub-api/internal/ctxkeys"
)

// Session extracts the user id from the session cookie into the request
// context. Requests without the cookie continue unauthenticated; lookups
// with an empty user id come back not-found downstream.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("id")
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := ctxkeys.WithUserID(r.Context(), cookie.Value)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
