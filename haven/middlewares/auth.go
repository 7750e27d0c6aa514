// haven/middlewares/auth.go
package middlewares

import (
	"context"
	"net/http"
	"strings"

	"haven/haven/config"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const StaffKey contextKey = "staff"

const StaffRole = "staff"

// StaffAuthMiddleware guards conversation history. Without a configured
// secret every request is let through.
func StaffAuthMiddleware(cfg config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !cfg.StaffAuthEnabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				unauthorized(w)
				return
			}
			parts := strings.Split(auth, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				unauthorized(w)
				return
			}
			tokenStr := parts[1]
			token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(cfg.JWTSecret), nil
			})
			if err != nil || !token.Valid {
				unauthorized(w)
				return
			}
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				unauthorized(w)
				return
			}
			if role, _ := claims["role"].(string); role != StaffRole {
				unauthorized(w)
				return
			}
			staff, _ := claims["sub"].(string)
			ctx := context.WithValue(r.Context(), StaffKey, staff)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error": "unauthorized"}`))
}
