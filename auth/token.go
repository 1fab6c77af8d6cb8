package auth

import (
	"fmt"
	"time"

	"social-chat/domain/chat"
	"social-chat/errors"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleAdmin     = "admin"
	DefaultIssuer = "social-chat"
)

// CustomClaims defines the structure of the data stored inside the JWT.
type CustomClaims struct {
	UserID string   `json:"user_id"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

// TokenAuthority signs and verifies HS256 tokens with a shared secret.
// Credentials are checked upstream; this only carries the resulting identity.
type TokenAuthority struct {
	secret   []byte
	issuer   string
	duration time.Duration
	now      func() time.Time
}

func NewTokenAuthority(secret string, issuer string, duration time.Duration) *TokenAuthority {
	if issuer == "" {
		issuer = DefaultIssuer
	}
	return &TokenAuthority{
		secret:   []byte(secret),
		issuer:   issuer,
		duration: duration,
		now:      time.Now,
	}
}

// GenerateToken creates a signed JWT for a specific user.
func (a *TokenAuthority) GenerateToken(userID chat.UserID, roles []string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("%w: empty user id", errors.ErrInvalidAction)
	}
	issuedAt := a.now()
	claims := &CustomClaims{
		UserID: string(userID),
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(userID),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(a.duration)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			Issuer:    a.issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// ValidateToken parses and validates the signature and expiration of a JWT string.
// Every failure is reported as errors.ErrInvalidToken.
func (a *TokenAuthority) ValidateToken(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	},
		jwt.WithIssuer(a.issuer),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, errors.ErrInvalidToken
	}
	return claims, nil
}

// HasRole reports whether role is part of roles.
func HasRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
