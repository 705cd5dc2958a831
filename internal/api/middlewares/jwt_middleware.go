package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// AdminJWT validates the Authorization header and requires the admin role
// claim before letting staff endpoints through.
func AdminJWT(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				http.Error(w, "missing or invalid token", http.StatusUnauthorized)
				return
			}

			tokenStr := strings.TrimPrefix(auth, "Bearer ")
			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			if role, ok := claims["role"].(string); !ok || role != "admin" {
				http.Error(w, "invalid token claims", http.StatusUnauthorized)
				return
			}
			email, _ := claims["sub"].(string)

			ctx := context.WithValue(r.Context(), "admin_email", email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
