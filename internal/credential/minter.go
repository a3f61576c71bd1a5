package credential

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tagora/backend/internal/domain"
)

const (
	ClaimTokenType = "tokenType"
	DefaultIssuer  = "tagora-admin-auth"
)

var (
	ErrInvalidSigningKey = errors.New("signing key must be at least 32 bytes")
	ErrInvalidToken      = errors.New("invalid admin credential")
)

var reservedClaims = map[string]struct{}{
	"iss": {}, "sub": {}, "iat": {}, "nbf": {}, "exp": {}, "jti": {}, ClaimTokenType: {},
}

// Minter signs admin credentials as HS256 JWTs. The claims of the admin
// identity ride inside the token, so the broker never stores them.
type Minter struct {
	key    []byte
	issuer string
}

func NewMinter(key []byte, issuer string) (*Minter, error) {
	if len(key) < 32 {
		return nil, ErrInvalidSigningKey
	}
	if issuer == "" {
		issuer = DefaultIssuer
	}
	return &Minter{key: key, issuer: issuer}, nil
}

func (m *Minter) Mint(ctx context.Context, input domain.MintInput) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if input.Identity.UID == "" {
		return "", fmt.Errorf("mint admin credential: empty subject")
	}

	claims := jwt.MapClaims{}
	for k, v := range input.Identity.Claims {
		if _, reserved := reservedClaims[k]; reserved {
			continue
		}
		claims[k] = v
	}
	claims["iss"] = m.issuer
	claims["sub"] = input.Identity.UID
	claims["iat"] = input.IssuedAt.Unix()
	claims["exp"] = input.ExpiresAt.Unix()
	claims["jti"] = uuid.NewString()
	claims[ClaimTokenType] = domain.AdminTokenType

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("sign admin credential: %w", err)
	}
	return signed, nil
}

type Verified struct {
	Subject   string
	ExpiresAt time.Time
	Claims    jwt.MapClaims
}

// Parse checks the signature, issuer, token type and expiry of a minted
// credential. Single-use enforcement is the broker's job, not Parse's.
func (m *Minter) Parse(raw string) (*Verified, error) {
	return m.parse(raw,
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
	)
}

// Inspect verifies the signature, issuer and token type but accepts expired
// credentials, so callers can report the expiry instead of failing on it.
func (m *Minter) Inspect(raw string) (*Verified, error) {
	verified, err := m.parse(raw, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, err
	}
	if issuer, _ := verified.Claims.GetIssuer(); issuer != m.issuer {
		return nil, fmt.Errorf("%w: unexpected issuer", ErrInvalidToken)
	}
	return verified, nil
}

func (m *Minter) parse(raw string, opts ...jwt.ParserOption) (*Verified, error) {
	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return m.key, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if tokenType, _ := claims[ClaimTokenType].(string); tokenType != domain.AdminTokenType {
		return nil, fmt.Errorf("%w: unexpected token type", ErrInvalidToken)
	}

	subject, err := claims.GetSubject()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, fmt.Errorf("%w: missing expiry", ErrInvalidToken)
	}

	return &Verified{
		Subject:   subject,
		ExpiresAt: exp.Time,
		Claims:    claims,
	}, nil
}
