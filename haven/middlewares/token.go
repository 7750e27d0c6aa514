// haven/middlewares/token.go
package middlewares

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// IssueStaffToken signs a staff token accepted by StaffAuthMiddleware.
func IssueStaffToken(secret, staff string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("JWT_SECRET is not set")
	}
	claims := jwt.MapClaims{
		"sub":  staff,
		"role": StaffRole,
		"exp":  time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
