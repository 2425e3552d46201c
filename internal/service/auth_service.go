package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"vocabbattle/internal/model"
)

var (
	ErrMissingToken = errors.New("missing access token")
	ErrInvalidToken = errors.New("invalid or expired token")
)

const defaultDisplayName = "Player"

// AuthService verifies access tokens issued by the account service
type AuthService struct {
	jwtSecret []byte
}

// NewAuthService creates a new auth service
func NewAuthService(secret string) *AuthService {
	return &AuthService{
		jwtSecret: []byte(secret),
	}
}

// ValidateAccessToken verifies a bearer token and returns the identity it carries
func (s *AuthService) ValidateAccessToken(tokenString string) (*model.Identity, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &model.UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.UserClaims)
	if !ok || !token.Valid || claims.ID == "" {
		return nil, ErrInvalidToken
	}

	return &model.Identity{
		UserID:      claims.ID,
		DisplayName: displayName(claims),
		Email:       claims.Email,
		Role:        claims.Role,
	}, nil
}

// IssueAccessToken signs a token the way the account service does. Used by tooling and tests.
func (s *AuthService) IssueAccessToken(userID, email, userName, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &model.UserClaims{
		ID:       userID,
		Email:    email,
		UserName: userName,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func displayName(c *model.UserClaims) string {
	switch {
	case c.UserName != "":
		return c.UserName
	case c.Email != "":
		return c.Email
	default:
		return defaultDisplayName
	}
}
