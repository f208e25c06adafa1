// Package client is a Go HTTP client for the surrealfocus API.
//
// It mirrors the server routes one method per endpoint and is used by the
// end-to-end tests and by tools that drive a running server.
//
//	c := client.NewClient("http://localhost:8080")
//	if _, err := c.StartSession(ctx, userID); err != nil {
//		return err
//	}
//	_, _ = c.Navigate(ctx, "/dashboard")
//	if err := c.SaveEnvironment(ctx, models.EnvironmentLibrary); err != nil {
//		return err
//	}
//	status, err := c.Status(ctx)
//
// Every non-2xx answer is returned as an *APIError carrying the status code
// and the server's error message.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/models"
)

// Client provides typed access to the surrealfocus API. It is safe for
// concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for baseURL, such as "http://localhost:8080",
// without a trailing slash.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError is a non-2xx answer.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: status=%d, message=%s", e.StatusCode, e.Message)
}

// Status is the answer of the status endpoint.
type Status struct {
	models.SyncStatus
	Route      string `json:"route"`
	Themed     bool   `json:"themed"`
	Previewing bool   `json:"previewing"`
}

// CheckResult is the answer of the check endpoint.
type CheckResult struct {
	Outcome   string             `json:"outcome"`
	Heal      bool               `json:"heal"`
	Target    models.Environment `json:"target"`
	Reason    string             `json:"reason"`
	AllInSync bool               `json:"all_in_sync"`
}

// Notification is a queued user-visible notification.
type Notification struct {
	Level   string    `json:"level"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	Reload  bool      `json:"reload"`
	At      time.Time `json:"at"`
}

type environmentBody struct {
	UserID      string             `json:"user_id,omitempty"`
	Environment models.Environment `json:"environment,omitempty"`
}

// doRequest performs an HTTP request with a JSON body.
func (c *Client) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.httpClient.Do(req)
}

// do performs a request and decodes the JSON answer into target.
func (c *Client) do(ctx context.Context, method, path string, body, target any) error {
	resp, err := c.doRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	return decodeResponse(resp, target)
}

func decodeResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: string(data)}
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
			apiErr.Message = payload.Error
		}
		return apiErr
	}

	if target != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// Health checks the health status of the server.
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	var result map[string]any
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// StartSession signs userID in and returns the restored environment.
func (c *Client) StartSession(ctx context.Context, userID models.UserID) (models.Environment, error) {
	var result environmentBody
	if err := c.do(ctx, http.MethodPost, "/api/session", environmentBody{UserID: userID.String()}, &result); err != nil {
		return "", err
	}
	return result.Environment, nil
}

// EndSession signs the user out.
func (c *Client) EndSession(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/session", nil, nil)
}

// VisibilityRegained reports that the view is visible again.
func (c *Client) VisibilityRegained(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/session/visibility", nil, nil)
}

// Navigate sets the current view and returns whether it is themed.
func (c *Client) Navigate(ctx context.Context, path string) (bool, error) {
	var result struct {
		Themed bool `json:"themed"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/route", map[string]string{"path": path}, &result); err != nil {
		return false, err
	}
	return result.Themed, nil
}

// Status returns what every store holds.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	var result Status
	if err := c.do(ctx, http.MethodGet, "/api/environment/status", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SaveEnvironment commits env for the signed-in user.
func (c *Client) SaveEnvironment(ctx context.Context, env models.Environment) error {
	return c.do(ctx, http.MethodPut, "/api/environment", environmentBody{Environment: env}, nil)
}

// Preview shows env without committing it.
func (c *Client) Preview(ctx context.Context, env models.Environment) error {
	return c.do(ctx, http.MethodPost, "/api/environment/preview", environmentBody{Environment: env}, nil)
}

// ResetPreview ends a preview.
func (c *Client) ResetPreview(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/environment/preview", nil, nil)
}

// ForceSync reconciles every store and returns the environment used.
func (c *Client) ForceSync(ctx context.Context) (models.Environment, error) {
	var result environmentBody
	if err := c.do(ctx, http.MethodPost, "/api/environment/sync", nil, &result); err != nil {
		return "", err
	}
	return result.Environment, nil
}

// Check runs the automatic check now.
func (c *Client) Check(ctx context.Context) (*CheckResult, error) {
	var result CheckResult
	if err := c.do(ctx, http.MethodPost, "/api/environment/check", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Notifications takes the pending notifications.
func (c *Client) Notifications(ctx context.Context) ([]Notification, error) {
	var result []Notification
	if err := c.do(ctx, http.MethodGet, "/api/notifications", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// SetReadOnly toggles read-only mode on the server.
func (c *Client) SetReadOnly(ctx context.Context, readOnly bool) error {
	return c.do(ctx, http.MethodPost, "/api/admin/read-only", map[string]bool{"read_only": readOnly}, nil)
}

// DebugPanel returns the text debug panel.
func (c *Client) DebugPanel(ctx context.Context) (string, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/debug/environment", nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 {
		return "", &APIError{StatusCode: resp.StatusCode, Message: string(data)}
	}
	return string(data), nil
}
