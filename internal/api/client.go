// Copyright (c) 2025 Support AutoPilot
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the HTTP client for the Support AutoPilot backend.
//
// The client is the single choke point for outbound calls: it attaches the
// stored bearer credential, enforces the request timeout, and maps every
// failure onto a small error taxonomy that callers match with errors.Is /
// errors.As. It performs exactly one attempt per call; retry policy, if
// any, belongs to the caller.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/supportautopilot/autopilot-tui/internal/auth"
)

// Configuration constants for the backend API.
const (
	// DefaultTimeout is the default timeout for API requests.
	DefaultTimeout = 30 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	MaxResponseSize = 1 * 1024 * 1024
)

// Error variables for the request taxonomy.
var (
	// ErrUnauthorized indicates the backend rejected the credential (HTTP 401)
	// on an authenticated call. The client has already cleared the stored
	// credential and notified forced sign-out listeners by the time this is
	// returned.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidCredentials indicates a login attempt was rejected. Unlike
	// ErrUnauthorized it does not touch the stored credential.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNetwork indicates no response reached the client.
	ErrNetwork = errors.New("network failure")

	// ErrMalformed indicates the response body failed to parse as expected.
	ErrMalformed = errors.New("malformed response")
)

// Error represents a non-2xx backend response other than 401.
type Error struct {
	Status int
	Detail string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("server error (HTTP %d): %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("server error (HTTP %d)", e.Status)
}

// =============================================================================
// WIRE TYPES
// =============================================================================

// User is the backend's current-user record.
type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// errorResponse is the backend's error body shape.
type errorResponse struct {
	Detail string `json:"detail"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the Support AutoPilot backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      *auth.Store
	limiter    *rate.Limiter

	mu        sync.Mutex
	signOutFn []func()
}

// NewClient creates a client for the given base URL. The store provides the
// bearer credential for authenticated calls and is cleared on 401.
func NewClient(baseURL string, store *auth.Store) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		store: store,
		// A console drives requests at human speed; the limiter only
		// guards against runaway loops.
		limiter: rate.NewLimiter(rate.Limit(10), 20),
	}
}

// WithTimeout sets the request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.httpClient.Timeout = timeout
	return c
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// OnForcedSignOut registers a listener invoked whenever an authenticated
// call comes back 401. The credential is already cleared when listeners
// run. Listeners are invoked on the goroutine that issued the failing call.
func (c *Client) OnForcedSignOut(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.signOutFn = append(c.signOutFn, fn)
}

// forcedSignOut clears the credential and notifies listeners. The policy is
// centralized here so no caller needs its own 401 handling.
func (c *Client) forcedSignOut() {
	if c.store != nil {
		_ = c.store.Clear()
	}

	c.mu.Lock()
	fns := make([]func(), len(c.signOutFn))
	copy(fns, c.signOutFn)
	c.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// =============================================================================
// ENDPOINTS
// =============================================================================

// Login exchanges credentials for a bearer token. The token is returned to
// the caller, not stored; ownership of storage belongs to the session layer.
// A 401 here means bad credentials, not an expired session, so the stored
// credential is left untouched.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp loginResponse
	err := c.do(ctx, http.MethodPost, "/api/login", loginRequest{Email: email, Password: password}, &resp, false)
	if err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			if apiErr.Detail != "" {
				return "", fmt.Errorf("%w: %s", ErrInvalidCredentials, apiErr.Detail)
			}
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if resp.AccessToken == "" {
		return "", fmt.Errorf("%w: login response missing access_token", ErrMalformed)
	}
	return resp.AccessToken, nil
}

// Me fetches the current user record for the stored credential.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/api/users/me", nil, &user, true); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout notifies the backend that the session is ending. Best-effort: the
// caller clears local state regardless of the outcome.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/logout", nil, nil, true)
}

// Chat sends one user message and returns the assistant reply.
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	var resp chatResponse
	if err := c.do(ctx, http.MethodPost, "/api/chat", chatRequest{Message: message}, &resp, true); err != nil {
		return "", err
	}
	return resp.Response, nil
}

// =============================================================================
// TRANSPORT
// =============================================================================

// do performs a single HTTP request. authed selects whether the bearer
// credential is attached and whether a 401 triggers the process-wide forced
// sign-out.
func (c *Client) do(ctx context.Context, method, path string, body, out any, authed bool) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req, authed)

	logRequest(req)
	start := time.Now()
	resp, err := c.httpClient.Do(req)

	// Never leave the credential on a request object that may get logged.
	req.Header.Del("Authorization")

	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()
	logResponse(resp, time.Since(start))

	respBody, err := readResponse(resp)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized && authed {
		c.forcedSignOut()
		if detail := parseDetail(respBody); detail != "" {
			return fmt.Errorf("%w: %s", ErrUnauthorized, detail)
		}
		return ErrUnauthorized
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Status: resp.StatusCode, Detail: parseDetail(respBody)}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}
	return nil
}

// setHeaders sets the required headers for backend requests.
func (c *Client) setHeaders(req *http.Request, authed bool) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "autopilot/0.1.0")
	req.Header.Set("X-Request-ID", uuid.NewString())

	if authed && c.store != nil {
		if token, err := c.store.Get(); err == nil {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
}

// readResponse reads the response body with a size limit. One byte past
// the limit is read so a body of exactly MaxResponseSize is still accepted.
func readResponse(resp *http.Response) ([]byte, error) {
	limited := io.LimitReader(resp.Body, MaxResponseSize+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrNetwork, err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, fmt.Errorf("%w: response exceeded %d bytes", ErrMalformed, MaxResponseSize)
	}
	return body, nil
}

// parseDetail extracts the backend's human-readable detail field, if any.
func parseDetail(body []byte) string {
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		return errResp.Detail
	}
	return ""
}

// logRequest logs an API request without exposing sensitive data.
// Headers (may contain auth) and bodies (may contain credentials or
// message text) are never logged.
func logRequest(req *http.Request) {
	log.Printf("API Request: %s %s", req.Method, req.URL.Path)
}

// logResponse logs an API response with duration. Status and timing only.
func logResponse(resp *http.Response, duration time.Duration) {
	log.Printf("API Response: %d %s (%v)", resp.StatusCode, resp.Status, duration)
}
