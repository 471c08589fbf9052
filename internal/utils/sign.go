package utils

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const TokenTypeAccess = "access"

var (
	ErrMissingToken      = errors.New("missing token")
	ErrInvalidToken      = errors.New("invalid token")
	ErrMissingSubject    = errors.New("token has no subject")
	ErrNotAccessToken    = errors.New("token is not an access token")
	ErrNoVerificationKey = errors.New("no token verification key configured")
)

// Claims mirrors the access tokens issued by the accounts service. The
// subject is usually "sub" but older tokens carry "user_id" instead, either
// as a string or a number.
type Claims struct {
	UserID    any    `json:"user_id,omitempty"`
	TokenType string `json:"token_type,omitempty"`
	jwt.RegisteredClaims
}

// SubjectID returns sub, falling back to user_id.
func (c *Claims) SubjectID() string {
	if c.RegisteredClaims.Subject != "" {
		return c.RegisteredClaims.Subject
	}

	switch v := c.UserID.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}

// TokenVerifier checks HS256 tokens against the shared signing key and RS256
// tokens against the public key. Either key may be absent.
type TokenVerifier struct {
	signingKey []byte
	publicKey  *rsa.PublicKey
}

func NewTokenVerifier(signingKey []byte, publicKey *rsa.PublicKey) *TokenVerifier {
	return &TokenVerifier{signingKey: signingKey, publicKey: publicKey}
}

func (v *TokenVerifier) keyFunc(token *jwt.Token) (any, error) {
	switch token.Method.(type) {
	case *jwt.SigningMethodHMAC:
		if token.Method.Alg() == jwt.SigningMethodHS256.Alg() && len(v.signingKey) > 0 {
			return v.signingKey, nil
		}
	case *jwt.SigningMethodRSA:
		if token.Method.Alg() == jwt.SigningMethodRS256.Alg() && v.publicKey != nil {
			return v.publicKey, nil
		}
	}
	return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
}

// Verify parses token and returns its claims. exp is mandatory.
func (v *TokenVerifier) Verify(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	if len(v.signingKey) == 0 && v.publicKey == nil {
		return nil, ErrNoVerificationKey
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, v.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg(), jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}

	if claims.TokenType != "" && claims.TokenType != TokenTypeAccess {
		return nil, ErrNotAccessToken
	}
	if claims.SubjectID() == "" {
		return nil, ErrMissingSubject
	}

	return claims, nil
}

// IssueAccessToken signs an HS256 access token for userID. Tokens are minted
// by the accounts service in production; this is used by tooling and tests.
func IssueAccessToken(userID string, signingKey []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		TokenType: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
}
