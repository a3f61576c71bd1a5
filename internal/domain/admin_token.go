package domain

import (
	"context"
	"time"
)

const (
	DefaultAdminTokenTTL   = 2 * time.Minute
	DefaultAdminTokenGrace = time.Second
	AdminTokenType         = "out-of-band-admin"
)

type AdminToken struct {
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
	Used      bool
	UsedAt    time.Time
}

func (t *AdminToken) IsActive(now time.Time) bool {
	return !t.Used && now.Before(t.ExpiresAt)
}

// AdminIdentity is the privilege a redeemed token grants. It is embedded in
// the token's signed representation and never stored by the broker.
type AdminIdentity struct {
	UID    string
	Claims map[string]any
}

type MintInput struct {
	Identity  AdminIdentity
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type CredentialMinter interface {
	Mint(ctx context.Context, input MintInput) (string, error)
}
