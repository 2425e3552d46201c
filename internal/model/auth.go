package model

import "github.com/golang-jwt/jwt/v5"

// UserClaims are the access token claims issued by the account service
type UserClaims struct {
	ID       string `json:"id"`
	Email    string `json:"email,omitempty"`
	UserName string `json:"userName,omitempty"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Identity is a verified user
type Identity struct {
	UserID      string
	DisplayName string
	Email       string
	Role        string
}

// Session is the per-connection context produced once by the identity gate
type Session struct {
	ConnectionID string `json:"connectionId"`
	UserID       string `json:"userId"`
	DisplayName  string `json:"displayName"`
	Email        string `json:"email,omitempty"`
	Role         string `json:"role,omitempty"`
}

// NewSession binds an identity to a connection
func NewSession(connectionID string, id *Identity) *Session {
	return &Session{
		ConnectionID: connectionID,
		UserID:       id.UserID,
		DisplayName:  id.DisplayName,
		Email:        id.Email,
		Role:         id.Role,
	}
}
