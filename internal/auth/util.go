package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

var ErrTokenInvalid = errors.New("invalid token")

// SignToken returns the cookie value "raw.signature" for a raw session token.
func SignToken(raw string, secret []byte) string {
	sig := hmacSHA256(secret, []byte(raw))
	return raw + "." + base64URL(sig)
}

// VerifyToken checks the signature of a cookie value and returns the raw token.
func VerifyToken(value string, secret []byte) (string, error) {
	raw, sigB64, ok := strings.Cut(value, ".")
	if !ok || raw == "" || sigB64 == "" {
		return "", ErrTokenInvalid
	}
	sig, err := base64.RawURLEncoding.DecodeString(sigB64)
	if err != nil {
		return "", fmt.Errorf("decode signature: %w", ErrTokenInvalid)
	}
	if !hmac.Equal(sig, hmacSHA256(secret, []byte(raw))) {
		return "", ErrTokenInvalid
	}
	return raw, nil
}

func GenerateRawToken(nBytes int) (raw string, err error) {
	b := make([]byte, nBytes)
	if _, err = rand.Read(b); err != nil {
		return "", err
	}
	raw = base64.RawURLEncoding.EncodeToString(b)
	return raw, nil
}

// GenerateSecret is used when no session secret is configured.
func GenerateSecret() ([]byte, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}
	return b, nil
}

func HashToken(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return base64.RawURLEncoding.EncodeToString(h[:])
}

func base64URL(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

func hmacSHA256(secret, message []byte) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write(message)
	return mac.Sum(nil)
}
