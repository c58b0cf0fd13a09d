package http

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/olegsm/talkie-server/internal/auth"
	"github.com/olegsm/talkie-server/internal/config"
	"github.com/olegsm/talkie-server/internal/core"
	"github.com/olegsm/talkie-server/internal/store"
	"github.com/olegsm/talkie-server/internal/store/sqlite"
)

// createTestStore creates an in-memory SQLite store with schema applied.
func createTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	return st
}

// createTestAuthService creates an auth service for testing.
func createTestAuthService(t *testing.T, st store.Store, jwtSecret string) *auth.Service {
	t.Helper()

	jwtConfig := &auth.JWTConfig{
		Secret:   []byte(jwtSecret),
		Issuer:   "test",
		Audience: "test",
		TTL:      24 * time.Hour,
	}

	return auth.NewService(st, jwtConfig)
}

func testLogger() *zerolog.Logger {
	lg := zerolog.Nop()
	return &lg
}

type testEnv struct {
	ts          *httptest.Server
	store       store.Store
	authService *auth.Service
}

// startTestServer wires a full server around an in-memory store and returns
// the running test instance.
func startTestServer(t *testing.T) *testEnv {
	t.Helper()

	st := createTestStore(t)
	authService := createTestAuthService(t, st, "test-secret-change-me")

	registry := core.NewRegistry()
	hub := core.NewHub(registry, st, nil, 0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.ReadHeaderTimeout = time.Second

	server := NewServer(hub, authService, st, nil, &cfg, testLogger())

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return &testEnv{ts: ts, store: st, authService: authService}
}

// registerTestUser creates a user and returns it with a valid session token.
func registerTestUser(t *testing.T, env *testEnv, name, username string) (*store.User, string) {
	t.Helper()

	user, token, err := env.authService.Register(context.Background(), name, username, username+"@example.com", "password123")
	if err != nil {
		t.Fatalf("failed to register test user %s: %v", username, err)
	}
	return user, token
}
