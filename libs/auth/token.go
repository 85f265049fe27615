package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

const issuer = "ai-sales-agent"

// GenerateCallToken creates an HMAC-SHA256 access token for one call session.
// The call id is carried in the 'sub' claim so the API can match a bearer
// token against the call it was minted for.
func GenerateCallToken(secret, callID string, ttlSeconds int) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("call token secret required")
	}
	if callID == "" {
		return "", fmt.Errorf("call id required")
	}
	if ttlSeconds <= 0 {
		ttlSeconds = 3600
	}

	now := time.Now()

	// random jti
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate jti: %w", err)
	}
	jti := hex.EncodeToString(b)

	claims := jwt.MapClaims{
		"jti": jti,
		"iss": issuer,
		"sub": callID,
		"nbf": now.Unix(),
		"exp": now.Add(time.Duration(ttlSeconds) * time.Second).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyCallToken validates a token and returns the call id it was minted for.
func VerifyCallToken(secret, tokenString string) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("call token secret required")
	}
	tok, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok || !tok.Valid {
		return "", fmt.Errorf("invalid token")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", fmt.Errorf("token missing call id")
	}
	return sub, nil
}
