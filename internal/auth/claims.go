package auth

import "github.com/golang-jwt/jwt/v5"

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims are the only supported JWT claims shape for this service.
// Extension is the agent's PBX extension and is empty for back-office
// users who never take calls. Private broadcast channels (user.{id})
// are gated on UserID.
type Claims struct {
	jwt.RegisteredClaims

	UserID    string    `json:"user_id"`
	Extension string    `json:"extension,omitempty"`
	Role      string    `json:"role"`
	TokenType TokenType `json:"token_type"`
}
