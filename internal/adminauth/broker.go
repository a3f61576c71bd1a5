// Package adminauth issues and redeems short-lived, single-use admin tokens
// for the out-of-band admin login flow.
//
// Every token lives only in process memory. A record can be redeemed once,
// and only before it expires; a single sweeper removes expired records and
// consumed records once their grace period has passed.
package adminauth

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tagora/backend/internal/clock"
	"github.com/tagora/backend/internal/crypto"
	"github.com/tagora/backend/internal/domain"
	"github.com/tagora/backend/internal/metrics"
)

const DefaultSweepInterval = time.Second

// Deliverer hands a freshly issued token to an out-of-band channel. It must
// not report failures back; the broker calls it off the request path.
type Deliverer interface {
	Deliver(ctx context.Context, token string, expiresAt time.Time)
}

type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

type Stats struct {
	Active      int
	TotalIssued int64
}

type BrokerConfig struct {
	Identity      domain.AdminIdentity
	TTL           time.Duration
	Grace         time.Duration
	SweepInterval time.Duration
	Minter        domain.CredentialMinter
	Deliverer     Deliverer
	Clock         clock.Clock
	Metrics       *metrics.Registry
	Logger        *slog.Logger
}

type Broker struct {
	identity      domain.AdminIdentity
	ttl           time.Duration
	grace         time.Duration
	sweepInterval time.Duration
	minter        domain.CredentialMinter
	deliverer     Deliverer
	clock         clock.Clock
	metrics       *metrics.Registry
	logger        *slog.Logger

	mu          sync.Mutex
	tokens      map[string]*domain.AdminToken
	totalIssued int64

	deliveries sync.WaitGroup
}

func NewBroker(cfg BrokerConfig) *Broker {
	if cfg.TTL <= 0 {
		cfg.TTL = domain.DefaultAdminTokenTTL
	}
	if cfg.Grace <= 0 {
		cfg.Grace = domain.DefaultAdminTokenGrace
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Broker{
		identity:      cfg.Identity,
		ttl:           cfg.TTL,
		grace:         cfg.Grace,
		sweepInterval: cfg.SweepInterval,
		minter:        cfg.Minter,
		deliverer:     cfg.Deliverer,
		clock:         cfg.Clock,
		metrics:       cfg.Metrics,
		logger:        cfg.Logger.With("component", "admin_token_broker"),
		tokens:        make(map[string]*domain.AdminToken),
	}
}

func (b *Broker) Issue(ctx context.Context) (*IssuedToken, error) {
	now := b.clock.Now()
	expiresAt := now.Add(b.ttl)

	token, err := b.minter.Mint(ctx, domain.MintInput{
		Identity:  b.identity,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		b.metrics.IncIssueFailure()
		return nil, fmt.Errorf("%w: %w", domain.ErrTokenGeneration, err)
	}
	if token == "" {
		b.metrics.IncIssueFailure()
		return nil, fmt.Errorf("%w: minter returned an empty token", domain.ErrTokenGeneration)
	}

	b.mu.Lock()
	if _, exists := b.tokens[token]; exists {
		b.mu.Unlock()
		b.metrics.IncIssueFailure()
		return nil, fmt.Errorf("%w: duplicate token", domain.ErrTokenGeneration)
	}
	b.tokens[token] = &domain.AdminToken{
		Token:     token,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}
	b.totalIssued++
	b.mu.Unlock()

	b.metrics.IncIssued()
	b.logger.Info("Admin token issued",
		"fingerprint", crypto.Fingerprint(token),
		"expiresAt", expiresAt,
	)

	b.deliver(ctx, token, expiresAt)

	return &IssuedToken{Token: token, ExpiresAt: expiresAt}, nil
}

// deliver runs outside the lock and outlives the caller's request.
func (b *Broker) deliver(ctx context.Context, token string, expiresAt time.Time) {
	if b.deliverer == nil {
		return
	}

	deliveryCtx := context.WithoutCancel(ctx)
	b.deliveries.Add(1)
	go func() {
		defer b.deliveries.Done()
		b.deliverer.Deliver(deliveryCtx, token, expiresAt)
	}()
}

// Validate redeems token. The lookup and the transition to used happen in a
// single critical section, so concurrent callers cannot both see Valid.
func (b *Broker) Validate(token string) Outcome {
	if token == "" {
		b.metrics.ObserveValidation(string(OutcomeMissing))
		return OutcomeMissing
	}

	outcome := b.validate(token)

	b.metrics.ObserveValidation(string(outcome))
	b.logger.Info("Admin token validation",
		"fingerprint", crypto.Fingerprint(token),
		"outcome", outcome,
	)
	return outcome
}

func (b *Broker) validate(token string) Outcome {
	b.mu.Lock()
	defer b.mu.Unlock()

	record, ok := b.tokens[token]
	if !ok {
		return OutcomeNotFound
	}
	if record.Used {
		return OutcomeAlreadyUsed
	}

	now := b.clock.Now()
	if !now.Before(record.ExpiresAt) {
		delete(b.tokens, token)
		b.metrics.AddSwept(metrics.SweepReasonExpired, 1)
		return OutcomeExpired
	}

	record.Used = true
	record.UsedAt = now
	return OutcomeValid
}

// Stats recounts live records on every call.
func (b *Broker) Stats() Stats {
	now := b.clock.Now()

	b.mu.Lock()
	defer b.mu.Unlock()

	active := 0
	for _, record := range b.tokens {
		if record.IsActive(now) {
			active++
		}
	}
	return Stats{Active: active, TotalIssued: b.totalIssued}
}

// Sweep drops expired records and consumed records whose grace period has
// elapsed. It returns how many records were removed.
func (b *Broker) Sweep() int {
	now := b.clock.Now()

	b.mu.Lock()
	expired, consumed := 0, 0
	for token, record := range b.tokens {
		switch {
		case record.Used && !now.Before(record.UsedAt.Add(b.grace)):
			delete(b.tokens, token)
			consumed++
		case !record.Used && !now.Before(record.ExpiresAt):
			delete(b.tokens, token)
			expired++
		}
	}
	b.mu.Unlock()

	b.metrics.AddSwept(metrics.SweepReasonExpired, expired)
	b.metrics.AddSwept(metrics.SweepReasonConsumed, consumed)
	if expired+consumed > 0 {
		b.logger.Debug("Swept admin tokens", "expired", expired, "consumed", consumed)
	}
	return expired + consumed
}

// Run sweeps on every tick until ctx is cancelled.
func (b *Broker) Run(ctx context.Context) {
	ticker := b.clock.NewTicker(b.sweepInterval)
	defer ticker.Stop()

	b.logger.Info("Admin token sweeper started", "interval", b.sweepInterval)
	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Admin token sweeper stopped")
			return
		case <-ticker.C:
			b.Sweep()
		}
	}
}

// WaitForDeliveries blocks until in-flight deliveries finish or ctx ends.
func (b *Broker) WaitForDeliveries(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.deliveries.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
