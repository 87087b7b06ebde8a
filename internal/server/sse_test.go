package server

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alfredjeanlab/quotewidget/internal/events"
)

func TestSSEHub_BroadcastAndReceive(t *testing.T) {
	hub := NewHub()

	client := hub.subscribe(nil) // all topics
	defer hub.unsubscribe(client)

	hub.broadcast("quotewidget.widget.rendered", []byte(`{"widget_id":1}`))

	select {
	case evt := <-client.ch:
		if evt.Topic != "quotewidget.widget.rendered" {
			t.Fatalf("expected topic=%q, got %q", "quotewidget.widget.rendered", evt.Topic)
		}
		if string(evt.Data) != `{"widget_id":1}` {
			t.Fatalf("expected data=%q, got %q", `{"widget_id":1}`, string(evt.Data))
		}
		if evt.ID != 1 {
			t.Fatalf("expected id=1, got %d", evt.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestSSEHub_TopicFiltering(t *testing.T) {
	hub := NewHub()

	// Client only wants render events.
	client := hub.subscribe([]string{"quotewidget.widget.*"})
	defer hub.unsubscribe(client)

	hub.broadcast("quotewidget.settings.updated", []byte(`{"widget_id":0}`))
	hub.broadcast("quotewidget.widget.rendered", []byte(`{"widget_id":1}`))

	select {
	case evt := <-client.ch:
		if evt.Topic != "quotewidget.widget.rendered" {
			t.Fatalf("expected topic=%q, got %q", "quotewidget.widget.rendered", evt.Topic)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}

	// Ensure no more events (settings.updated should have been filtered).
	select {
	case evt := <-client.ch:
		t.Fatalf("unexpected event: topic=%q", evt.Topic)
	case <-time.After(50 * time.Millisecond):
		// Good - no extra events.
	}
}

func TestSSEHub_MultipleTopicFilters(t *testing.T) {
	hub := NewHub()

	client := hub.subscribe([]string{"quotewidget.widget.*", "quotewidget.settings.*"})
	defer hub.unsubscribe(client)

	hub.broadcast("quotewidget.widget.rendered", []byte(`{}`))
	hub.broadcast("quotewidget.settings.updated", []byte(`{}`))
	hub.broadcast("quotewidget.refresh.scheduled", []byte(`{}`)) // should be filtered

	received := 0
	timeout := time.After(time.Second)
	for received < 2 {
		select {
		case <-client.ch:
			received++
		case <-timeout:
			t.Fatalf("expected 2 events, got %d", received)
		}
	}

	select {
	case <-client.ch:
		t.Fatal("unexpected third event")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSSEHub_Unsubscribe(t *testing.T) {
	hub := NewHub()

	client := hub.subscribe(nil)
	hub.unsubscribe(client)

	hub.broadcast("quotewidget.widget.rendered", []byte(`{}`))

	select {
	case <-client.ch:
		t.Fatal("should not receive events after unsubscribe")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSSEHub_EventsSince(t *testing.T) {
	hub := NewHub()

	// Broadcast 5 events.
	for i := range 5 {
		hub.broadcast("quotewidget.widget.rendered", []byte(`{"n":`+string(rune('0'+i))+`}`))
	}

	// Get events after ID 2 (should return IDs 3, 4, 5).
	evts := hub.eventsSince(2)
	if len(evts) != 3 {
		t.Fatalf("expected 3 events, got %d", len(evts))
	}
	if evts[0].ID != 3 || evts[1].ID != 4 || evts[2].ID != 5 {
		t.Fatalf("expected IDs [3,4,5], got [%d,%d,%d]", evts[0].ID, evts[1].ID, evts[2].ID)
	}
}

func TestSSEHub_EventsSince_Empty(t *testing.T) {
	hub := NewHub()
	evts := hub.eventsSince(0)
	if len(evts) != 0 {
		t.Fatalf("expected 0 events, got %d", len(evts))
	}
}

func TestSSEHub_EventsSince_AllNew(t *testing.T) {
	hub := NewHub()
	hub.broadcast("quotewidget.widget.rendered", []byte(`{}`))
	hub.broadcast("quotewidget.widget.placed", []byte(`{}`))

	evts := hub.eventsSince(0)
	if len(evts) != 2 {
		t.Fatalf("expected 2 events, got %d", len(evts))
	}
}

func TestSSEHub_RingBufferWrap(t *testing.T) {
	hub := NewHub()

	// Fill the ring buffer and then some to force wrap.
	for range sseRingBufferSize + 100 {
		hub.broadcast("quotewidget.widget.rendered", []byte(`{}`))
	}

	// The oldest event in the buffer should have ID = 101 (100 were evicted).
	evts := hub.eventsSince(0)
	if len(evts) != sseRingBufferSize {
		t.Fatalf("expected %d events, got %d", sseRingBufferSize, len(evts))
	}
	if evts[0].ID != 101 {
		t.Fatalf("expected oldest event ID=101, got %d", evts[0].ID)
	}
}

func TestMatchTopicPattern(t *testing.T) {
	for _, tc := range []struct {
		pattern string
		topic   string
		want    bool
	}{
		{"quotewidget.widget.rendered", "quotewidget.widget.rendered", true},
		{"quotewidget.widget.rendered", "quotewidget.widget.placed", false},
		{"quotewidget.widget.*", "quotewidget.widget.rendered", true},
		{"quotewidget.widget.*", "quotewidget.widget.placed", true},
		{"quotewidget.widget.*", "quotewidget.settings.updated", false},
		{"quotewidget.>", "quotewidget.widget.rendered", true},
		{"quotewidget.>", "quotewidget.settings.updated", true},
		{"quotewidget.>", "other.topic", false},
		{"*.*.*", "quotewidget.widget.rendered", true},
		{"*.*.*", "quotewidget.widget", false},
	} {
		t.Run(tc.pattern+"_"+tc.topic, func(t *testing.T) {
			got := matchTopicPattern(tc.pattern, tc.topic)
			if got != tc.want {
				t.Fatalf("matchTopicPattern(%q, %q) = %v, want %v", tc.pattern, tc.topic, got, tc.want)
			}
		})
	}
}

// TestHandleEventStream_SSE tests the full HTTP SSE endpoint.
func TestHandleEventStream_SSE(t *testing.T) {
	srv, _, handler := newTestServer(t)

	// Start the SSE request in a goroutine.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest("GET", "/v1/events/stream", nil)
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		handler.ServeHTTP(rec, req)
	}()

	// Give the handler time to register the subscription.
	time.Sleep(50 * time.Millisecond)

	// Broadcast an event.
	srv.hub.broadcast("quotewidget.widget.rendered", []byte(`{"id":"rn-sse1"}`))

	// Give it time to be written.
	time.Sleep(50 * time.Millisecond)

	// Cancel the context to end the stream.
	cancel()
	<-done

	// Check response headers.
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("expected Content-Type=text/event-stream, got %q", ct)
	}

	// Parse the SSE output.
	body := rec.Body.String()
	if !strings.Contains(body, "event:quotewidget.widget.rendered") {
		t.Fatalf("expected event:quotewidget.widget.rendered in body, got:\n%s", body)
	}
	if !strings.Contains(body, `data:{"id":"rn-sse1"}`) {
		t.Fatalf("expected data with rn-sse1 in body, got:\n%s", body)
	}
	if !strings.Contains(body, "id:") {
		t.Fatalf("expected id: field in body, got:\n%s", body)
	}
}

// TestHandleEventStream_TopicFilter tests the ?topics= query param.
func TestHandleEventStream_TopicFilter(t *testing.T) {
	srv, _, handler := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest("GET", "/v1/events/stream?topics=quotewidget.settings.*", nil)
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		handler.ServeHTTP(rec, req)
	}()

	time.Sleep(50 * time.Millisecond)

	// Broadcast a render event (should be filtered) and a settings event (should pass).
	srv.hub.broadcast("quotewidget.widget.rendered", []byte(`{"widget_id":1}`))
	srv.hub.broadcast("quotewidget.settings.updated", []byte(`{"widget_id":0}`))

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	body := rec.Body.String()
	if strings.Contains(body, "quotewidget.widget.rendered") {
		t.Fatalf("expected render event to be filtered out, got:\n%s", body)
	}
	if !strings.Contains(body, "quotewidget.settings.updated") {
		t.Fatalf("expected settings event in body, got:\n%s", body)
	}
}

// TestHandleEventStream_LastEventID tests reconnection with Last-Event-ID.
func TestHandleEventStream_LastEventID(t *testing.T) {
	srv, _, handler := newTestServer(t)

	// Pre-broadcast 3 events before connecting.
	srv.hub.broadcast("quotewidget.widget.rendered", []byte(`{"n":1}`))
	srv.hub.broadcast("quotewidget.widget.placed", []byte(`{"n":2}`))
	srv.hub.broadcast("quotewidget.widget.deleted", []byte(`{"n":3}`))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest("GET", "/v1/events/stream", nil)
	req.Header.Set("Last-Event-ID", "1") // Should replay events 2 and 3.
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		handler.ServeHTTP(rec, req)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	body := rec.Body.String()
	// Should contain events 2 and 3 but not event 1.
	if strings.Contains(body, `data:{"n":1}`) {
		t.Fatalf("expected event 1 to be skipped, got:\n%s", body)
	}
	if !strings.Contains(body, `data:{"n":2}`) {
		t.Fatalf("expected event 2 in body, got:\n%s", body)
	}
	if !strings.Contains(body, `data:{"n":3}`) {
		t.Fatalf("expected event 3 in body, got:\n%s", body)
	}
}

// TestHandleEventStream_Publish tests that events published through the hub
// reach stream clients.
func TestHandleEventStream_Publish(t *testing.T) {
	srv, _, handler := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest("GET", "/v1/events/stream", nil)
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		handler.ServeHTTP(rec, req)
	}()

	time.Sleep(50 * time.Millisecond)

	if err := srv.hub.Publish(context.Background(), events.TopicWidgetDeleted,
		events.WidgetDeleted{WidgetID: 7, KeysRemoved: 12}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	body := rec.Body.String()
	if !strings.Contains(body, "event:quotewidget.widget.deleted") {
		t.Fatalf("expected SSE event from Publish, got:\n%s", body)
	}
	if !strings.Contains(body, `"keys_removed":12`) {
		t.Fatalf("expected payload in body, got:\n%s", body)
	}
}

// TestHandleEventStream_MultipleClients verifies fan-out to multiple clients.
func TestHandleEventStream_MultipleClients(t *testing.T) {
	srv, _, handler := newTestServer(t)

	startClient := func() (*httptest.ResponseRecorder, context.CancelFunc, <-chan struct{}) {
		ctx, cancel := context.WithCancel(context.Background())
		req := httptest.NewRequest("GET", "/v1/events/stream", nil)
		req = req.WithContext(ctx)
		rec := httptest.NewRecorder()
		done := make(chan struct{})
		go func() {
			defer close(done)
			handler.ServeHTTP(rec, req)
		}()
		return rec, cancel, done
	}

	rec1, cancel1, done1 := startClient()
	defer cancel1()
	rec2, cancel2, done2 := startClient()
	defer cancel2()

	time.Sleep(50 * time.Millisecond)

	srv.hub.broadcast("quotewidget.widget.rendered", []byte(`{"id":"rn-multi"}`))

	time.Sleep(50 * time.Millisecond)
	cancel1()
	cancel2()
	<-done1
	<-done2

	for i, rec := range []*httptest.ResponseRecorder{rec1, rec2} {
		body := rec.Body.String()
		if !strings.Contains(body, "quotewidget.widget.rendered") {
			t.Fatalf("client %d: expected render event, got:\n%s", i+1, body)
		}
	}
}

// TestSSEEventFormat verifies the exact SSE wire format.
func TestSSEEventFormat(t *testing.T) {
	srv, _, handler := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest("GET", "/v1/events/stream", nil)
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		handler.ServeHTTP(rec, req)
	}()

	time.Sleep(50 * time.Millisecond)
	srv.hub.broadcast("quotewidget.widget.rendered", []byte(`{"id":"rn-fmt"}`))
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	// Parse SSE events from body.
	scanner := bufio.NewScanner(strings.NewReader(rec.Body.String()))
	var id, event, data string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "id:") {
			id = strings.TrimPrefix(line, "id:")
		} else if strings.HasPrefix(line, "event:") {
			event = strings.TrimPrefix(line, "event:")
		} else if strings.HasPrefix(line, "data:") {
			data = strings.TrimPrefix(line, "data:")
		}
	}

	if id == "" {
		t.Fatal("expected non-empty id field")
	}
	if event != "quotewidget.widget.rendered" {
		t.Fatalf("expected event=quotewidget.widget.rendered, got %q", event)
	}
	if !json.Valid([]byte(data)) {
		t.Fatalf("expected valid JSON data, got %q", data)
	}
	if data != `{"id":"rn-fmt"}` {
		t.Fatalf("expected data=%q, got %q", `{"id":"rn-fmt"}`, data)
	}
}
