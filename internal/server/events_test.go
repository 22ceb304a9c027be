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

func TestDocumentEventsPublishesToOwner(t *testing.T) {
	events := NewDocumentEvents()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mine, cleanup := events.Subscribe(ctx, "owner-1")
	defer cleanup()
	theirs, otherCleanup := events.Subscribe(ctx, "owner-2")
	defer otherCleanup()

	events.Publish(DocumentEvent{OwnerID: "owner-1", EventType: EventDocumentSaved, TemplateID: "tpl-1", Timestamp: time.Now()})

	select {
	case received := <-mine:
		if received.TemplateID != "tpl-1" {
			t.Fatalf("unexpected template id %q", received.TemplateID)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected event within deadline")
	}
	select {
	case <-theirs:
		t.Fatal("did not expect an event for another owner")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDocumentEventsDropsWhenBufferFull(t *testing.T) {
	events := NewDocumentEvents()
	stream, cleanup := events.Subscribe(context.Background(), "owner-1")
	defer cleanup()

	for index := 0; index < eventBufferSize*2; index++ {
		events.Publish(DocumentEvent{OwnerID: "owner-1", EventType: EventDocumentSaved})
	}
	if len(stream) != eventBufferSize {
		t.Fatalf("expected a full buffer of %d, got %d", eventBufferSize, len(stream))
	}
}

func TestDocumentEventsReleasesOnCancel(t *testing.T) {
	events := NewDocumentEvents()
	ctx, cancel := context.WithCancel(context.Background())
	_, cleanup := events.Subscribe(ctx, "owner-1")
	if events.Subscribers("owner-1") != 1 {
		t.Fatalf("expected one subscriber")
	}
	cancel()
	deadline := time.Now().Add(time.Second)
	for events.Subscribers("owner-1") != 0 {
		if time.Now().After(deadline) {
			t.Fatal("expected subscriber to be released after cancel")
		}
		time.Sleep(5 * time.Millisecond)
	}
	cleanup()
}

func TestDocumentStreamEmitsSavedEvents(t *testing.T) {
	server := newTestServer(t, nil)
	httpServer := httptest.NewServer(server.handler)
	t.Cleanup(httpServer.Close)
	cookie := sessionCookie(t, "owner-1")

	streamRequest, err := http.NewRequest(http.MethodGet, httpServer.URL+"/documents/events", http.NoBody)
	if err != nil {
		t.Fatalf("failed to build stream request: %v", err)
	}
	streamRequest.AddCookie(cookie)
	streamResponse, err := http.DefaultClient.Do(streamRequest)
	if err != nil {
		t.Fatalf("failed to open stream: %v", err)
	}
	t.Cleanup(func() { _ = streamResponse.Body.Close() })
	if streamResponse.StatusCode != http.StatusOK {
		t.Fatalf("unexpected stream status %d", streamResponse.StatusCode)
	}

	saveRequest, err := http.NewRequest(http.MethodPost, httpServer.URL+"/documents", strings.NewReader(string(documentBody(t, "Streamed"))))
	if err != nil {
		t.Fatalf("failed to build save request: %v", err)
	}
	saveRequest.AddCookie(cookie)
	saveRequest.Header.Set("Content-Type", "application/json")
	saveResponse, err := http.DefaultClient.Do(saveRequest)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	var saved documentIDResponse
	if err := json.NewDecoder(saveResponse.Body).Decode(&saved); err != nil {
		t.Fatalf("failed to decode save response: %v", err)
	}
	_ = saveResponse.Body.Close()

	type readResult struct {
		line string
		err  error
	}
	reader := bufio.NewReader(streamResponse.Body)
	currentEvent := ""
	deadline := time.After(5 * time.Second)
	for {
		resultCh := make(chan readResult, 1)
		go func() {
			line, err := reader.ReadString('\n')
			resultCh <- readResult{line: line, err: err}
		}()
		select {
		case <-deadline:
			t.Fatal("timed out waiting for document-saved event")
		case result := <-resultCh:
			if result.err != nil {
				t.Fatalf("failed to read stream: %v", result.err)
			}
			line := strings.TrimSpace(result.line)
			if strings.HasPrefix(line, "event:") {
				currentEvent = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
				continue
			}
			if !strings.HasPrefix(line, "data:") || currentEvent != EventDocumentSaved {
				continue
			}
			var payload documentEventPayload
			if err := json.Unmarshal([]byte(strings.TrimSpace(strings.TrimPrefix(line, "data:"))), &payload); err != nil {
				t.Fatalf("failed to decode event payload: %v", err)
			}
			if payload.TemplateID != saved.ID {
				t.Fatalf("expected event for %q, got %q", saved.ID, payload.TemplateID)
			}
			return
		}
	}
}
