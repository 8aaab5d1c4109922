// Copyright (c) 2025 Support AutoPilot
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/supportautopilot/autopilot-tui/internal/auth"
)

func newTestClient(t *testing.T, serverURL string) (*Client, *auth.Store) {
	t.Helper()
	store := auth.NewStoreWithPath(filepath.Join(t.TempDir(), "token"))
	return NewClient(serverURL, store), store
}

func TestLoginSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/login" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("missing X-Request-ID header")
		}
		// Login must never carry a stale credential.
		if r.Header.Get("Authorization") != "" {
			t.Error("login request carried an Authorization header")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token": "tok-xyz", "token_type": "bearer"}`))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL)
	token, err := client.Login(context.Background(), "admin@example.com", "hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token != "tok-xyz" {
		t.Errorf("token = %q, want tok-xyz", token)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "Incorrect email or password"}`))
	}))
	defer server.Close()

	client, store := newTestClient(t, server.URL)
	if err := store.Set("existing-token"); err != nil {
		t.Fatal(err)
	}

	_, err := client.Login(context.Background(), "admin@example.com", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("error = %v, want ErrInvalidCredentials", err)
	}
	if !strings.Contains(err.Error(), "Incorrect email or password") {
		t.Errorf("backend detail not surfaced: %v", err)
	}

	// A failed login leaves the stored credential untouched.
	got, err := store.Get()
	if err != nil || got != "existing-token" {
		t.Errorf("stored credential changed after failed login: %q, %v", got, err)
	}
}

func TestMeAttachesBearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-me" {
			t.Errorf("Authorization = %q, want Bearer tok-me", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": 7, "email": "admin@example.com", "full_name": "Admin User", "role": "admin"}`))
	}))
	defer server.Close()

	client, store := newTestClient(t, server.URL)
	if err := store.Set("tok-me"); err != nil {
		t.Fatal(err)
	}

	user, err := client.Me(context.Background())
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if user.ID != 7 || user.Email != "admin@example.com" || user.FullName != "Admin User" || user.Role != "admin" {
		t.Errorf("unexpected user: %+v", user)
	}
}

func TestUnauthorizedForcesSignOut(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "Could not validate credentials"}`))
	}))
	defer server.Close()

	client, store := newTestClient(t, server.URL)
	if err := store.Set("expired-token"); err != nil {
		t.Fatal(err)
	}

	signedOut := false
	client.OnForcedSignOut(func() { signedOut = true })

	// Any authenticated call triggers the same centralized policy.
	_, err := client.Chat(context.Background(), "hello")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("error = %v, want ErrUnauthorized", err)
	}
	if !signedOut {
		t.Error("forced sign-out listener was not invoked")
	}
	if store.Present() {
		t.Error("credential should be cleared on 401")
	}
}

func TestChatSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response": "hi there"}`))
	}))
	defer server.Close()

	client, store := newTestClient(t, server.URL)
	if err := store.Set("tok"); err != nil {
		t.Fatal(err)
	}

	reply, err := client.Chat(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if reply != "hi there" {
		t.Errorf("reply = %q, want %q", reply, "hi there")
	}
}

func TestNetworkFailure(t *testing.T) {
	// Point at a closed port.
	client, _ := newTestClient(t, "http://127.0.0.1:1")
	client.WithTimeout(500 * time.Millisecond)

	_, err := client.Chat(context.Background(), "hello")
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("error = %v, want ErrNetwork", err)
	}
}

func TestServerErrorCarriesDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"detail": "maintenance window"}`))
	}))
	defer server.Close()

	client, store := newTestClient(t, server.URL)
	if err := store.Set("tok"); err != nil {
		t.Fatal(err)
	}

	_, err := client.Chat(context.Background(), "hello")
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *api.Error", err)
	}
	if apiErr.Status != http.StatusServiceUnavailable || apiErr.Detail != "maintenance window" {
		t.Errorf("unexpected error: %+v", apiErr)
	}
	// Non-401 errors never clear the credential.
	if !store.Present() {
		t.Error("credential cleared on a non-401 failure")
	}
}

func TestMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json at all`))
	}))
	defer server.Close()

	client, store := newTestClient(t, server.URL)
	if err := store.Set("tok"); err != nil {
		t.Fatal(err)
	}

	_, err := client.Chat(context.Background(), "hello")
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("error = %v, want ErrMalformed", err)
	}
}

func TestResponseAtSizeLimitAccepted(t *testing.T) {
	// A body of exactly MaxResponseSize is complete, not truncated.
	reply := strings.Repeat("a", MaxResponseSize-len(`{"response": ""}`))
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response": "` + reply + `"}`))
	}))
	defer server.Close()

	client, store := newTestClient(t, server.URL)
	if err := store.Set("tok"); err != nil {
		t.Fatal(err)
	}

	got, err := client.Chat(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if got != reply {
		t.Errorf("reply length = %d, want %d", len(got), len(reply))
	}
}

func TestResponseOverSizeLimitRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("a", MaxResponseSize+1)))
	}))
	defer server.Close()

	client, store := newTestClient(t, server.URL)
	if err := store.Set("tok"); err != nil {
		t.Fatal(err)
	}

	_, err := client.Chat(context.Background(), "hello")
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("error = %v, want ErrMalformed", err)
	}
}

func TestLogoutBestEffort(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/logout" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, store := newTestClient(t, server.URL)
	if err := store.Set("tok"); err != nil {
		t.Fatal(err)
	}
	if err := client.Logout(context.Background()); err != nil {
		t.Errorf("Logout: %v", err)
	}
}
