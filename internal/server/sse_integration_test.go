package server

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// sseEventParsed represents a single parsed SSE event from the stream.
type sseEventParsed struct {
	ID    string
	Event string
	Data  string
}

// sseReader reads SSE events from an HTTP response body using a bufio.Scanner.
// It sends parsed events to the returned channel and stops when the context is cancelled
// or the body is closed.
func sseReader(ctx context.Context, resp *http.Response) <-chan sseEventParsed {
	ch := make(chan sseEventParsed, 32)
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(resp.Body)
		var current sseEventParsed
		for scanner.Scan() {
			select {
			case <-ctx.Done():
				return
			default:
			}

			line := scanner.Text()
			switch {
			case strings.HasPrefix(line, "id:"):
				current.ID = strings.TrimPrefix(line, "id:")
			case strings.HasPrefix(line, "event:"):
				current.Event = strings.TrimPrefix(line, "event:")
			case strings.HasPrefix(line, "data:"):
				current.Data = strings.TrimPrefix(line, "data:")
			case line == "":
				// Empty line marks end of SSE event block.
				if current.Event != "" || current.Data != "" {
					ch <- current
					current = sseEventParsed{}
				}
			}
		}
	}()
	return ch
}

// waitForEvent reads from the SSE event channel until an event with the given
// topic is received, or the timeout expires.
func waitForEvent(t *testing.T, ch <-chan sseEventParsed, topic string, timeout time.Duration) sseEventParsed {
	t.Helper()
	timer := time.After(timeout)
	for {
		select {
		case evt, ok := <-ch:
			if !ok {
				t.Fatalf("SSE channel closed before receiving event %q", topic)
			}
			if evt.Event == topic {
				return evt
			}
			// Keep reading; may receive other events first.
		case <-timer:
			t.Fatalf("timed out waiting for SSE event %q", topic)
		}
	}
}

// startSSEClient opens an SSE connection to the test server and returns a channel
// of parsed events plus a cancel function. The caller must call cancel when done.
func startSSEClient(t *testing.T, serverURL string, queryParams string) (<-chan sseEventParsed, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	url := serverURL + "/v1/events/stream"
	if queryParams != "" {
		url += "?" + queryParams
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		cancel()
		t.Fatalf("failed to create SSE request: %v", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		cancel()
		t.Fatalf("failed to connect to SSE stream: %v", err)
	}

	if resp.Header.Get("Content-Type") != "text/event-stream" {
		resp.Body.Close()
		cancel()
		t.Fatalf("expected Content-Type=text/event-stream, got %q", resp.Header.Get("Content-Type"))
	}

	ch := sseReader(ctx, resp)

	// Return a wrapped cancel that also closes the body.
	cleanup := func() {
		cancel()
		resp.Body.Close()
	}

	return ch, cleanup
}

// startIntegrationServer creates a test server with a real TCP listener for
// integration tests, returning the server URL and HTTP handler for direct calls.
func startIntegrationServer(t *testing.T) (string, http.Handler, func()) {
	t.Helper()
	_, _, handler := newTestServer(t)
	ts := httptest.NewServer(handler)
	return ts.URL, handler, ts.Close
}

// doHTTPJSON performs an HTTP request with an optional JSON body against a real server URL.
func doHTTPJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		b, _ := json.Marshal(body)
		req, err = http.NewRequest(method, url, strings.NewReader(string(b)))
		if err != nil {
			t.Fatalf("failed to create request: %v", err)
		}
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, err = http.NewRequest(method, url, nil)
		if err != nil {
			t.Fatalf("failed to create request: %v", err)
		}
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("HTTP request failed: %v", err)
	}
	return resp
}

// requireHTTPStatus asserts the response has the expected status code.
func requireHTTPStatus(t *testing.T, resp *http.Response, code int) {
	t.Helper()
	if resp.StatusCode != code {
		t.Fatalf("expected status %d, got %d", code, resp.StatusCode)
	}
}

// decodeHTTPJSON decodes the response body JSON into v.
func decodeHTTPJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
}

// --- Integration Tests ---

func TestSSEIntegration_PlaceWidgetTriggersEvents(t *testing.T) {
	serverURL, _, cleanup := startIntegrationServer(t)
	defer cleanup()

	sseEvents, sseCancel := startSSEClient(t, serverURL, "")
	defer sseCancel()

	// Give the SSE subscription time to register.
	time.Sleep(50 * time.Millisecond)

	resp := doHTTPJSON(t, "POST", serverURL+"/v1/widgets/11", nil)
	requireHTTPStatus(t, resp, 201)
	resp.Body.Close()

	evt := waitForEvent(t, sseEvents, "quotewidget.widget.placed", 2*time.Second)
	if evt.ID == "" {
		t.Fatal("expected SSE event to have a non-empty ID")
	}

	evt = waitForEvent(t, sseEvents, "quotewidget.widget.rendered", 2*time.Second)
	var payload struct {
		WidgetID    int    `json:"widget_id"`
		RenderID    string `json:"render_id"`
		Assignments []struct {
			View     string `json:"view"`
			Property string `json:"property"`
		} `json:"assignments"`
	}
	if err := json.Unmarshal([]byte(evt.Data), &payload); err != nil {
		t.Fatalf("failed to parse SSE data: %v", err)
	}
	if payload.WidgetID != 11 || payload.RenderID == "" {
		t.Fatalf("unexpected render payload: %s", evt.Data)
	}
	if len(payload.Assignments) == 0 {
		t.Fatal("expected view assignments in render event")
	}

	waitForEvent(t, sseEvents, "quotewidget.refresh.scheduled", 2*time.Second)
}

func TestSSEIntegration_DefaultsUpdateRerendersWidgets(t *testing.T) {
	serverURL, _, cleanup := startIntegrationServer(t)
	defer cleanup()

	for _, id := range []string{"1", "2"} {
		resp := doHTTPJSON(t, "POST", serverURL+"/v1/widgets/"+id, nil)
		requireHTTPStatus(t, resp, 201)
		resp.Body.Close()
	}

	sseEvents, sseCancel := startSSEClient(t, serverURL, "topics=quotewidget.widget.rendered")
	defer sseCancel()
	time.Sleep(50 * time.Millisecond)

	resp := doHTTPJSON(t, "PATCH", serverURL+"/v1/defaults", map[string]any{"fontSize": 18})
	requireHTTPStatus(t, resp, 200)
	var defaults struct {
		FontSize int `json:"fontSize"`
	}
	decodeHTTPJSON(t, resp, &defaults)
	if defaults.FontSize != 18 {
		t.Fatalf("expected fontSize=18, got %d", defaults.FontSize)
	}

	seen := map[int]bool{}
	for len(seen) < 2 {
		evt := waitForEvent(t, sseEvents, "quotewidget.widget.rendered", 2*time.Second)
		var payload struct {
			WidgetID int `json:"widget_id"`
		}
		if err := json.Unmarshal([]byte(evt.Data), &payload); err != nil {
			t.Fatalf("failed to parse SSE data: %v", err)
		}
		seen[payload.WidgetID] = true
	}
}

func TestSSEIntegration_TopicFilterOnlyReceivesMatching(t *testing.T) {
	serverURL, _, cleanup := startIntegrationServer(t)
	defer cleanup()

	sseEvents, sseCancel := startSSEClient(t, serverURL, "topics=quotewidget.widget.deleted")
	defer sseCancel()
	time.Sleep(50 * time.Millisecond)

	resp := doHTTPJSON(t, "POST", serverURL+"/v1/widgets/6", nil)
	requireHTTPStatus(t, resp, 201)
	resp.Body.Close()

	resp = doHTTPJSON(t, "DELETE", serverURL+"/v1/widgets/6", nil)
	requireHTTPStatus(t, resp, 204)
	resp.Body.Close()

	evt := waitForEvent(t, sseEvents, "quotewidget.widget.deleted", 2*time.Second)
	var payload struct {
		WidgetID int `json:"widget_id"`
	}
	if err := json.Unmarshal([]byte(evt.Data), &payload); err != nil {
		t.Fatalf("failed to parse SSE data: %v", err)
	}
	if payload.WidgetID != 6 {
		t.Fatalf("expected widget_id=6, got %d", payload.WidgetID)
	}

	select {
	case extra, ok := <-sseEvents:
		if ok {
			t.Fatalf("unexpected event %q after filter", extra.Event)
		}
	case <-time.After(100 * time.Millisecond):
	}
}
