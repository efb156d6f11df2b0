package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cruiserex/site/libs/auth"
)

const adminRole = "admin"

var ErrRevoked = errors.New("session revoked or expired")

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Manager issues signed admin session tokens backed by a revocable session record.
type Manager struct {
	store      Store
	signingKey string
	ttl        time.Duration
	now        func() time.Time
}

func NewManager(store Store, signingKey string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Manager{store: store, signingKey: signingKey, ttl: ttl, now: time.Now}
}

func (m *Manager) Issue(ctx context.Context) (Session, error) {
	now := m.now().UTC()
	claims := auth.Claims{
		Sub:  adminRole,
		Role: adminRole,
		Sid:  uuid.NewString(),
		Iat:  now.Unix(),
		Exp:  now.Add(m.ttl).Unix(),
	}
	token, err := auth.SignHS256(claims, m.signingKey)
	if err != nil {
		return Session{}, err
	}
	if err := m.store.Add(ctx, claims.Sid, m.ttl); err != nil {
		return Session{}, fmt.Errorf("store session: %w", err)
	}
	return Session{Token: token, ExpiresAt: claims.ExpiresAt()}, nil
}

// Verify returns the claims of a live admin session token.
func (m *Manager) Verify(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := auth.ParseAndVerifyHS256(token, m.signingKey)
	if err != nil {
		return nil, err
	}
	if claims.Role != adminRole || claims.Sid == "" {
		return nil, auth.ErrInvalidToken
	}
	ok, err := m.store.Exists(ctx, claims.Sid)
	if err != nil {
		return nil, fmt.Errorf("lookup session: %w", err)
	}
	if !ok {
		return nil, ErrRevoked
	}
	return claims, nil
}

func (m *Manager) Revoke(ctx context.Context, token string) error {
	claims, err := m.Verify(ctx, token)
	if err != nil {
		return err
	}
	return m.store.Remove(ctx, claims.Sid)
}
