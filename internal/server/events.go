package server

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/MarcoPoloResearchLab/mailcanvas/internal/documents"
	"github.com/gin-gonic/gin"
)

const (
	EventDocumentSaved = "document-saved"
	eventHeartbeat     = "heartbeat"
	eventBufferSize    = 16
)

// DocumentEvent notifies an owner's open streams that a template changed.
type DocumentEvent struct {
	OwnerID    documents.OwnerID
	EventType  string
	TemplateID string
	Timestamp  time.Time
}

type documentEventPayload struct {
	TemplateID string `json:"templateId,omitempty"`
	Timestamp  string `json:"timestamp"`
}

// DocumentEvents fans events out to subscribers per owner. Slow subscribers drop
// events rather than block publishers.
type DocumentEvents struct {
	mu          sync.RWMutex
	subscribers map[documents.OwnerID]map[int64]chan DocumentEvent
	nextID      int64
}

func NewDocumentEvents() *DocumentEvents {
	return &DocumentEvents{subscribers: make(map[documents.OwnerID]map[int64]chan DocumentEvent)}
}

// Subscribe registers a stream for owner that is released when ctx ends or the
// returned cleanup runs.
func (d *DocumentEvents) Subscribe(ctx context.Context, owner documents.OwnerID) (<-chan DocumentEvent, func()) {
	if owner == "" {
		closed := make(chan DocumentEvent)
		close(closed)
		return closed, func() {}
	}

	stream := make(chan DocumentEvent, eventBufferSize)
	d.mu.Lock()
	d.nextID++
	id := d.nextID
	if d.subscribers[owner] == nil {
		d.subscribers[owner] = make(map[int64]chan DocumentEvent)
	}
	d.subscribers[owner][id] = stream
	d.mu.Unlock()

	var once sync.Once
	cleanup := func() {
		once.Do(func() { d.unsubscribe(owner, id) })
	}
	go func() {
		<-ctx.Done()
		cleanup()
	}()
	return stream, cleanup
}

func (d *DocumentEvents) Publish(event DocumentEvent) {
	if event.OwnerID == "" || event.EventType == "" {
		return
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, stream := range d.subscribers[event.OwnerID] {
		select {
		case stream <- event:
		default:
		}
	}
}

// Subscribers reports how many streams owner has open.
func (d *DocumentEvents) Subscribers(owner documents.OwnerID) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.subscribers[owner])
}

func (d *DocumentEvents) unsubscribe(owner documents.OwnerID, id int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	streams := d.subscribers[owner]
	delete(streams, id)
	if len(streams) == 0 {
		delete(d.subscribers, owner)
	}
}

func (h *httpHandler) handleDocumentEvents(c *gin.Context) {
	ctx := c.Request.Context()
	owner, _ := documents.OwnerFrom(ctx)
	stream, cleanup := h.events.Subscribe(ctx, owner)
	defer cleanup()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent(eventHeartbeat, heartbeatPayload())
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	c.Stream(func(io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case event, ok := <-stream:
			if !ok {
				return false
			}
			c.SSEvent(event.EventType, documentEventPayload{
				TemplateID: event.TemplateID,
				Timestamp:  event.Timestamp.UTC().Format(time.RFC3339),
			})
			return true
		case <-ticker.C:
			c.SSEvent(eventHeartbeat, heartbeatPayload())
			return true
		}
	})
}

func heartbeatPayload() documentEventPayload {
	return documentEventPayload{Timestamp: time.Now().UTC().Format(time.RFC3339)}
}
