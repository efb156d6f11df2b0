package guard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/cruiserex/site/services/booking-service/internal/sessions"
)

func request(authz string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/api/appointment-admin", nil)
	if authz != "" {
		r.Header.Set("Authorization", authz)
	}
	return r
}

func TestAuthorizedSecret(t *testing.T) {
	g := New(Config{Secret: "s3cret"})
	tests := []struct {
		header string
		want   bool
	}{
		{"", false},
		{"Bearer wrong", false},
		{"Bearer s3cret", true},
		{"Bearer ", false},
		{"Bearer  s3cret", false},
		{"Bearer s3cret ", true},
		{"bearer s3cret", false},
		{"Basic s3cret", false},
		{"s3cret", false},
	}
	for _, tt := range tests {
		if got := g.Authorized(request(tt.header)); got != tt.want {
			t.Fatalf("Authorized(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}

func TestUnconfiguredGuardDeniesAll(t *testing.T) {
	g := New(Config{})
	if g.Authorized(request("Bearer anything")) {
		t.Fatalf("expected denial without configured secret")
	}
	if g.CheckSecret("") {
		t.Fatalf("empty candidate accepted")
	}
}

func TestBcryptSecret(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	g := New(Config{SecretHash: string(hash)})
	if !g.Authorized(request("Bearer s3cret")) {
		t.Fatalf("hashed secret rejected")
	}
	if g.Authorized(request("Bearer other")) {
		t.Fatalf("wrong secret accepted")
	}
}

func TestSessionTokens(t *testing.T) {
	ctx := context.Background()
	m := sessions.NewManager(sessions.NewMemoryStore(), "key", time.Hour)
	g := New(Config{Secret: "s3cret", Sessions: m})

	s, err := m.Issue(ctx)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !g.Authorized(request("Bearer " + s.Token)) {
		t.Fatalf("session token rejected")
	}
	if err := m.Revoke(ctx, s.Token); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if g.Authorized(request("Bearer " + s.Token)) {
		t.Fatalf("revoked token accepted")
	}
}

func TestBearerTokenTakesSingleWord(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"Bearer abc def", "abc", true},
		{"Bearer  abc", "", false},
		{"Bearer", "", false},
	}
	for _, tt := range tests {
		token, ok := BearerToken(request(tt.header))
		if token != tt.token || ok != tt.ok {
			t.Fatalf("BearerToken(%q) = %q, %v", tt.header, token, ok)
		}
	}
}
