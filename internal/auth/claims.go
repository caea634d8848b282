package auth

import "time"

// TokenKind separates API bearer tokens from web session cookies.
// Each kind has its own audience so one cannot be replayed as the other.
type TokenKind string

const (
	TokenKindAPI     TokenKind = "api"
	TokenKindSession TokenKind = "session"
)

func (k TokenKind) audience() string {
	return "mybooks-" + string(k)
}

// Claims are the decrypted contents of a v4.local token.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`

	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}
