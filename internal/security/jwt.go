package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/emergent-labs/emergent-server/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token verification failures. A token stays valid until expiry regardless
// of later role or password changes; there is no revocation list.
var (
	// ErrExpiredToken marks a structurally valid token past its expiry.
	ErrExpiredToken = errors.New("security: token expired")
	// ErrMalformedToken marks a token with a bad signature or structure.
	ErrMalformedToken = errors.New("security: malformed token")
)

// UserClaims is the session payload carried by a signed token.
type UserClaims struct {
	Email string          `json:"email"`
	Role  models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// UserID parses the token subject back into a user ID.
func (c *UserClaims) UserID() (uint64, error) {
	id, errParse := strconv.ParseUint(c.Subject, 10, 64)
	if errParse != nil {
		return 0, fmt.Errorf("security: bad subject: %w", errParse)
	}
	return id, nil
}

// IssueUserToken signs a session token for a user.
func IssueUserToken(secret string, expiry time.Duration, user *models.User) (string, error) {
	if secret == "" {
		return "", errors.New("security: empty signing secret")
	}
	if user == nil {
		return "", errors.New("security: nil user")
	}
	now := time.Now().UTC()
	claims := UserClaims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(user.ID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseUserToken verifies a session token and returns its claims.
func ParseUserToken(secret, token string) (*UserClaims, error) {
	claims := &UserClaims{}
	parsed, errParse := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if errParse != nil {
		if errors.Is(errParse, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrMalformedToken
	}
	if !parsed.Valid {
		return nil, ErrMalformedToken
	}
	return claims, nil
}
