// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend is the HTTP client for the storefront backend endpoints
// the chat consumes: session-identity resolution, the client roster, and
// media upload.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Configuration constants for the backend API.
const (
	// DefaultBaseURL is where the storefront backend listens in development.
	DefaultBaseURL = "http://localhost:8000"

	// DefaultTimeout is the default timeout for API requests. Uploads get
	// their own, longer bound.
	DefaultTimeout = 10 * time.Second

	// UploadTimeout bounds a media upload.
	UploadTimeout = 60 * time.Second

	// MaxResponseSize caps response bodies read into memory.
	MaxResponseSize = 1 * 1024 * 1024

	// SessionCookieName is the cookie the backend resolves identities from.
	SessionCookieName = "session_id"
)

// sharedHTTPClient is the pooled client for all backend requests.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
	},
}

// Error variables for common backend failures.
var (
	// ErrIdentity indicates the session token could not be resolved to a
	// username. The channel open must be aborted.
	ErrIdentity = errors.New("unable to resolve session user")

	// ErrNoToken indicates no session token is stored locally.
	ErrNoToken = errors.New("no session token; run login first")

	// ErrUpload indicates a media upload failed on the server or
	// transport side.
	ErrUpload = errors.New("media upload failed")
)

// APIError carries an HTTP status from the backend.
type APIError struct {
	Status int
	Detail string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend error (HTTP %d): %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("backend error (HTTP %d)", e.Status)
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the storefront backend. The zero value is not usable;
// construct with NewClient.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration

	// token supplies the current session token, mirrored into the
	// session cookie on every request. Nil means unauthenticated.
	token func() (string, error)
}

// NewClient creates a backend client for the given base URL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: sharedHTTPClient,
		timeout:    DefaultTimeout,
	}
}

// WithTimeout sets the request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.timeout = timeout
	return c
}

// WithTokenSource sets the session-token source mirrored into the request
// cookie.
func (c *Client) WithTokenSource(fn func() (string, error)) *Client {
	c.token = fn
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// newRequest builds a request with the session cookie attached.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.token != nil {
		tok, err := c.token()
		if err != nil {
			return nil, err
		}
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tok})
	}
	return req, nil
}

// do executes a request and logs it without bodies or credentials.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("backend: %s %s failed: %v", req.Method, req.URL.Path, err)
		return nil, err
	}
	log.Printf("backend: %s %s -> %d (%v)", req.Method, req.URL.Path, resp.StatusCode, time.Since(start))
	return resp, nil
}

// readJSON decodes a bounded response body.
func readJSON(resp *http.Response, v any) error {
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}

// errorDetail extracts the backend's error detail field, if any.
func errorDetail(resp *http.Response) string {
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	var payload struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Detail != "" {
		return payload.Detail
	}
	return ""
}

// =============================================================================
// IDENTITY RESOLUTION
// =============================================================================

// ResolveUser resolves the stored session token to a username via
// GET /auth/user-by-cookie. This runs before the client channel opens; a
// failure aborts the connect and surfaces as ErrIdentity.
func (c *Client) ResolveUser(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := c.newRequest(ctx, http.MethodGet, "/auth/user-by-cookie", nil)
	if err != nil {
		if errors.Is(err, ErrNoToken) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrIdentity, err)
	}

	resp, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrIdentity, err)
	}
	if resp.StatusCode != http.StatusOK {
		detail := errorDetail(resp)
		if detail == "" {
			detail = resp.Status
		}
		return "", fmt.Errorf("%w: %s", ErrIdentity, detail)
	}

	var payload struct {
		Username string `json:"username"`
	}
	if err := readJSON(resp, &payload); err != nil {
		return "", fmt.Errorf("%w: %v", ErrIdentity, err)
	}
	if payload.Username == "" {
		return "", ErrIdentity
	}
	return payload.Username, nil
}

// =============================================================================
// ROSTER
// =============================================================================

// Roster fetches the backend's current client identity list via
// GET /get-clients.
func (c *Client) Roster(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := c.newRequest(ctx, http.MethodGet, "/get-clients", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &APIError{Status: resp.StatusCode}
	}

	// The endpoint returns either a bare list or {"clients": [...]}.
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, err
	}

	var ids []string
	if err := json.Unmarshal(body, &ids); err == nil {
		return ids, nil
	}
	var wrapped struct {
		Clients []string `json:"clients"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("roster: unexpected response shape: %w", err)
	}
	return wrapped.Clients, nil
}

// =============================================================================
// MEDIA UPLOAD
// =============================================================================

// UploadResult is the backend's reference to an uploaded file.
type UploadResult struct {
	FileURL  string `json:"file_url"`
	MimeType string `json:"mime_type"`
}

// UploadFile uploads a local file via POST /media/upload-file (multipart)
// and returns the reference to embed in an outgoing message. Any failure
// wraps ErrUpload; the caller must abort the enclosing send entirely.
func (c *Client) UploadFile(ctx context.Context, path string) (*UploadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpload, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpload, err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpload, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpload, err)
	}

	ctx, cancel := context.WithTimeout(ctx, UploadTimeout)
	defer cancel()

	req, err := c.newRequest(ctx, http.MethodPost, "/media/upload-file", &buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpload, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpload, err)
	}
	if resp.StatusCode != http.StatusOK {
		detail := errorDetail(resp)
		if detail == "" {
			detail = resp.Status
		}
		return nil, fmt.Errorf("%w: %s", ErrUpload, detail)
	}

	var result UploadResult
	if err := readJSON(resp, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpload, err)
	}
	if result.FileURL == "" {
		return nil, fmt.Errorf("%w: response missing file_url", ErrUpload)
	}
	return &result, nil
}
