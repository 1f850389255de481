package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/julianstephens/mealplanner/internal/logger"
	"github.com/julianstephens/mealplanner/internal/session"
)

type authMode int

const (
	authNone authMode = iota
	// authOptional attaches a bearer token only when a valid one exists.
	authOptional
	// authRequired fails before any request when there is no valid token.
	authRequired
)

const maxErrorBody = 512

// Error is a failed call to the remote API. Callers show a generic message
// and keep the details for the log.
type Error struct {
	Op     string
	Method string
	Path   string
	Status int
	Body   string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %s %s: %v", e.Op, e.Method, e.Path, e.Err)
	case e.Body != "":
		return fmt.Sprintf("%s: %s %s: status %d: %s", e.Op, e.Method, e.Path, e.Status, e.Body)
	default:
		return fmt.Sprintf("%s: %s %s: status %d", e.Op, e.Method, e.Path, e.Status)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status of a remote error, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Client talks to the meal planner REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *session.Manager
}

// New creates a client for baseURL, e.g. http://localhost:5000/api.
func New(baseURL string, timeout time.Duration, sess *session.Manager) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		session: sess,
	}
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// Session returns the session manager used for bearer tokens.
func (c *Client) Session() *session.Manager { return c.session }

// Auth returns the account endpoints.
func (c *Client) Auth() *AuthClient { return &AuthClient{c: c} }

// Recipes returns the recipe search endpoints.
func (c *Client) Recipes() *RecipeClient { return &RecipeClient{c: c} }

// Ingredients returns the pantry and family size endpoints.
func (c *Client) Ingredients() *IngredientClient { return &IngredientClient{c: c} }

// Calendar returns the weekly calendar endpoints.
func (c *Client) Calendar() *CalendarClient { return &CalendarClient{c: c} }

// Analytics returns the report endpoints.
func (c *Client) Analytics() *AnalyticsClient { return &AnalyticsClient{c: c} }

// Ping checks that the API host answers HTTP at all. Any status counts.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/WeeklyCalendar", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("api unreachable: %w", err)
	}
	resp.Body.Close()
	return nil
}

func (c *Client) do(ctx context.Context, op, method, path string, auth authMode, body, out interface{}) error {
	var token string
	switch auth {
	case authRequired:
		t, err := c.session.Token()
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		token = t
	case authOptional:
		if c.session != nil {
			token = c.session.OptionalToken()
		}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &Error{Op: op, Method: method, Path: path, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	log := logger.With("op", op, "method", method, "path", path)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("API request failed", "error", err, "duration", time.Since(start))
		return &Error{Op: op, Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()
	log.Debug("API request", "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		log.Warn("API returned error status", "status", resp.StatusCode)
		return &Error{Op: op, Method: method, Path: path, Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Error("Failed to decode API response", "error", err)
		return &Error{Op: op, Method: method, Path: path, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
