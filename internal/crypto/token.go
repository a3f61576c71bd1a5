package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	SigningKeySize    = 32
	fingerprintLength = 12
	signingKeyInfo    = "tagora admin token signing key"
)

var ErrEmptySecret = errors.New("secret must not be empty")

func GenerateSecret() (string, error) {
	bytes := make([]byte, SigningKeySize)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// DeriveSigningKey stretches an operator supplied secret into a fixed size
// HMAC key so short or low-entropy values are never used as the key itself.
func DeriveSigningKey(secret string) ([]byte, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}

	reader := hkdf.New(sha256.New, []byte(secret), nil, []byte(signingKeyInfo))
	key := make([]byte, SigningKeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, err
	}
	return key, nil
}

// Fingerprint identifies a token in logs without revealing it.
func Fingerprint(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])[:fingerprintLength]
}
