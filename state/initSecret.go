package state

import (
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

// InitSecret loads the token verification material. The HMAC key verifies
// HS256 tokens; the optional PEM public key verifies RS256 tokens.
func InitSecret(signingKey, publicKeyPath string) (*JwtSecret, error) {
	secret := &JwtSecret{}

	if signingKey != "" {
		secret.SigningKey = []byte(signingKey)
	}

	if publicKeyPath != "" {
		pubKeyBytes, err := os.ReadFile(publicKeyPath)
		if err != nil {
			return nil, err
		}

		pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubKeyBytes)
		if err != nil {
			return nil, fmt.Errorf("invalid public key: %w", err)
		}
		secret.Public = pubKey
	}

	if secret.SigningKey == nil && secret.Public == nil {
		return nil, fmt.Errorf("no token verification key configured")
	}

	log.Info().Bool("hmac", secret.SigningKey != nil).Bool("rsa", secret.Public != nil).Msg("JWT secret initialized successfully")
	return secret, nil
}
