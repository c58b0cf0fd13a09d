package http

import (
	"bytes"
	"encoding/json"
	"io"
	stdhttp "net/http"
	"testing"
)

func doJSON(t *testing.T, env *testEnv, method, path, token string, body any) (*stdhttp.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := stdhttp.NewRequest(method, env.ts.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := env.ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	return resp, data
}

func TestRegisterAndLogin(t *testing.T) {
	env := startTestServer(t)

	resp, body := doJSON(t, env, stdhttp.MethodPost, "/api/user/new", "", map[string]any{
		"name":     "Alice A",
		"username": "alice",
		"email":    "alice@example.com",
		"password": "password123",
	})
	if resp.StatusCode != stdhttp.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, body)
	}

	var authResp AuthResponse
	if err := json.Unmarshal(body, &authResp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if authResp.Token == "" {
		t.Fatalf("expected a session token")
	}
	if authResp.User.Username != "alice" || authResp.User.Status != "Available" {
		t.Fatalf("unexpected user: %+v", authResp.User)
	}

	// The response must set the session cookie.
	var foundCookie bool
	for _, cookie := range resp.Cookies() {
		if cookie.Name == TokenCookieName && cookie.Value != "" {
			foundCookie = true
		}
	}
	if !foundCookie {
		t.Fatalf("expected %s cookie on register", TokenCookieName)
	}

	// Duplicate username conflicts.
	resp, body = doJSON(t, env, stdhttp.MethodPost, "/api/user/new", "", map[string]any{
		"name":     "Alice B",
		"username": "alice",
		"email":    "alice2@example.com",
		"password": "password123",
	})
	if resp.StatusCode != stdhttp.StatusConflict {
		t.Fatalf("expected 409 for duplicate username, got %d: %s", resp.StatusCode, body)
	}

	resp, body = doJSON(t, env, stdhttp.MethodPost, "/api/user/login", "", map[string]any{
		"username": "alice",
		"password": "password123",
	})
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("expected 200 on login, got %d: %s", resp.StatusCode, body)
	}

	resp, body = doJSON(t, env, stdhttp.MethodPost, "/api/user/login", "", map[string]any{
		"username": "alice",
		"password": "wrong-password",
	})
	if resp.StatusCode != stdhttp.StatusUnauthorized {
		t.Fatalf("expected 401 on bad password, got %d: %s", resp.StatusCode, body)
	}
}

func TestRegisterValidation(t *testing.T) {
	env := startTestServer(t)

	cases := []map[string]any{
		{"name": "A", "username": "ab", "email": "a@example.com", "password": "password123"},
		{"name": "A", "username": "alice", "email": "not-an-email", "password": "password123"},
		{"name": "A", "username": "alice", "email": "a@example.com", "password": "short"},
		{"username": "alice", "email": "a@example.com", "password": "password123"},
	}
	for _, body := range cases {
		resp, data := doJSON(t, env, stdhttp.MethodPost, "/api/user/new", "", body)
		if resp.StatusCode != stdhttp.StatusBadRequest {
			t.Errorf("expected 400 for %v, got %d: %s", body, resp.StatusCode, data)
		}
	}
}

func TestLogoutRequiresAuthAndClearsCookie(t *testing.T) {
	env := startTestServer(t)

	resp, _ := doJSON(t, env, stdhttp.MethodGet, "/api/user/logout", "", nil)
	if resp.StatusCode != stdhttp.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}

	_, token := registerTestUser(t, env, "Alice", "alice")

	resp, _ = doJSON(t, env, stdhttp.MethodGet, "/api/user/logout", token, nil)
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var cleared bool
	for _, cookie := range resp.Cookies() {
		if cookie.Name == TokenCookieName && cookie.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatalf("expected logout to expire the session cookie")
	}
}
