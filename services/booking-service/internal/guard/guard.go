package guard

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/cruiserex/site/libs/auth"
	"github.com/cruiserex/site/services/booking-service/internal/sessions"
)

// SessionVerifier validates admin session tokens.
type SessionVerifier interface {
	Verify(ctx context.Context, token string) (*auth.Claims, error)
}

type Config struct {
	// Secret is compared verbatim against the bearer token.
	Secret string
	// SecretHash is a bcrypt hash of the secret; either form may be set.
	SecretHash string
	Sessions   SessionVerifier
	Logger     *slog.Logger
}

// Guard decides whether a request carries admin credentials. With neither a
// secret nor a hash configured every request is denied.
type Guard struct {
	secret     []byte
	secretHash []byte
	sessions   SessionVerifier
	logger     *slog.Logger
}

func New(cfg Config) *Guard {
	g := &Guard{sessions: cfg.Sessions, logger: cfg.Logger}
	if s := strings.TrimSpace(cfg.Secret); s != "" {
		g.secret = []byte(s)
	}
	if h := strings.TrimSpace(cfg.SecretHash); h != "" {
		g.secretHash = []byte(h)
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	return g
}

// BearerToken extracts the token from "Authorization: Bearer <token>". The
// scheme is matched exactly and the token is the word after a single space.
func BearerToken(r *http.Request) (string, bool) {
	scheme, rest, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || scheme != "Bearer" {
		return "", false
	}
	token, _, _ := strings.Cut(rest, " ")
	return token, token != ""
}

// CheckSecret reports whether candidate is the admin secret.
func (g *Guard) CheckSecret(candidate string) bool {
	if candidate == "" {
		return false
	}
	if g.secret != nil && subtle.ConstantTimeCompare([]byte(candidate), g.secret) == 1 {
		return true
	}
	if g.secretHash != nil && bcrypt.CompareHashAndPassword(g.secretHash, []byte(candidate)) == nil {
		return true
	}
	return false
}

func (g *Guard) Authorized(r *http.Request) bool {
	token, ok := BearerToken(r)
	if !ok {
		return false
	}
	if g.CheckSecret(token) {
		return true
	}
	if g.sessions == nil || !auth.LooksLikeJWT(token) {
		return false
	}
	_, err := g.sessions.Verify(r.Context(), token)
	if err == nil {
		return true
	}
	if !errors.Is(err, auth.ErrInvalidToken) && !errors.Is(err, sessions.ErrRevoked) {
		g.logger.Error("session lookup failed", "err", err)
	}
	return false
}
