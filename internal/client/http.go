package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/alfredjeanlab/quotewidget/internal/model"
	"github.com/alfredjeanlab/quotewidget/internal/render"
)

// HTTPClient implements WidgetClient using the quotewidget HTTP/JSON REST API.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

var _ WidgetClient = (*HTTPClient)(nil)

// NewHTTPClient creates a new HTTP client targeting the given base URL
// (e.g. "http://localhost:8080"). When token is non-empty, an Authorization
// header is set on every request.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

func widgetPath(id int, suffix string) string {
	return "/v1/widgets/" + strconv.Itoa(id) + suffix
}

// --- Widgets ---

func (c *HTTPClient) ListWidgets(ctx context.Context) ([]int, error) {
	var resp struct {
		WidgetIDs []int `json:"widget_ids"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/widgets", nil, &resp); err != nil {
		return nil, err
	}
	return resp.WidgetIDs, nil
}

func (c *HTTPClient) PlaceWidget(ctx context.Context, id int) (*model.Widget, error) {
	var w model.Widget
	if err := c.doJSON(ctx, http.MethodPost, widgetPath(id, ""), nil, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (c *HTTPClient) DeleteWidget(ctx context.Context, id int) error {
	return c.doJSON(ctx, http.MethodDelete, widgetPath(id, ""), nil, nil)
}

func (c *HTTPClient) RefreshWidget(ctx context.Context, id int) ([]*model.RenderParams, error) {
	var resp struct {
		Renders []*model.RenderParams `json:"renders"`
	}
	if err := c.doJSON(ctx, http.MethodPost, widgetPath(id, "/refresh"), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Renders, nil
}

func (c *HTTPClient) GetView(ctx context.Context, id int) (*render.View, error) {
	var v render.View
	if err := c.doJSON(ctx, http.MethodGet, widgetPath(id, "/view"), nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *HTTPClient) GetSchedule(ctx context.Context, id int) (*Schedule, error) {
	var s Schedule
	if err := c.doJSON(ctx, http.MethodGet, widgetPath(id, "/schedule"), nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// --- Settings ---

func (c *HTTPClient) GetSettings(ctx context.Context, id int) (*model.WidgetSettings, error) {
	var s model.WidgetSettings
	if err := c.doJSON(ctx, http.MethodGet, widgetPath(id, "/settings"), nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) UpdateSettings(ctx context.Context, id int, patch *model.SettingsPatch) (*model.WidgetSettings, error) {
	var s model.WidgetSettings
	if err := c.doJSON(ctx, http.MethodPatch, widgetPath(id, "/settings"), patch, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) GetDefaults(ctx context.Context) (*model.WidgetSettings, error) {
	var s model.WidgetSettings
	if err := c.doJSON(ctx, http.MethodGet, "/v1/defaults", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) UpdateDefaults(ctx context.Context, patch *model.SettingsPatch) (*model.WidgetSettings, error) {
	var s model.WidgetSettings
	if err := c.doJSON(ctx, http.MethodPatch, "/v1/defaults", patch, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// --- Health ---

func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/health", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// --- internal helpers ---

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.StatusCode == http.StatusNotFound
}

// doJSON performs an HTTP request with optional JSON body and decodes the JSON response.
// If result is nil, the response body is discarded (for DELETE/204 responses).
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	// 204 No Content: success with no body.
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
