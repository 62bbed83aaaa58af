package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/zilix-space/adapix-backend/internal/api/httpx"
	"github.com/zilix-space/adapix-backend/internal/auth"
)

type ctxUserKey struct{}
type ctxRoleKey struct{}

func UserID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxUserKey{}).(string)
	return v, ok
}

func Role(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxRoleKey{}).(string)
	return v, ok
}

type AuthMiddleware struct {
	TM *auth.TokenManager
}

func NewAuthMiddleware(tm *auth.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{TM: tm}
}

func (m *AuthMiddleware) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ah := r.Header.Get("Authorization")
		if ah == "" || !strings.HasPrefix(strings.ToLower(ah), "bearer ") {
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token", nil)
			return
		}
		token := strings.TrimSpace(ah[len("Bearer "):])

		claims, err := m.TM.Parse(token)
		if err != nil {
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid access token", nil)
			return
		}
		ctx := context.WithValue(r.Context(), ctxUserKey{}, claims.UserID)
		ctx = context.WithValue(ctx, ctxRoleKey{}, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
