package middleware

import (
	"context"
	"net/http"

	"github.com/pliu/socialite/internal/auth"
	"github.com/pliu/socialite/internal/models"
)

type contextKey string

const AccountKey contextKey = "account"

// AuthMiddleware resolves the caller's account from the signed session
// cookie and puts it on the request context.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("account")
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		account, err := auth.VerifyCookie(cookie.Value)
		if err != nil || account == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), AccountKey, models.Account(account))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CallerAccount returns the authenticated account from the context, or ""
// when the request did not pass AuthMiddleware.
func CallerAccount(r *http.Request) models.Account {
	account, _ := r.Context().Value(AccountKey).(models.Account)
	return account
}
