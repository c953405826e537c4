package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/colorkeep/colorkeep/pkg/catalog"
	"github.com/colorkeep/colorkeep/pkg/logger"
	"github.com/colorkeep/colorkeep/pkg/models"
	"github.com/colorkeep/colorkeep/pkg/settings"
)

// Event represents a Server-Sent Event.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// EventBroker fans settings and catalog changes out to connected SSE clients.
// It maintains a list of connected clients and broadcasts events to all of
// them.
type EventBroker struct {
	mu         sync.RWMutex
	clients    map[chan Event]struct{}
	bufferSize int

	cancel context.CancelFunc
}

// NewEventBroker creates a new SSE broker.
func NewEventBroker() *EventBroker {
	return &EventBroker{
		clients:    make(map[chan Event]struct{}),
		bufferSize: 64,
	}
}

// Start begins forwarding settings, deleted-color and catalog updates to all
// connected SSE clients. Call this after the store and catalog are ready.
func (b *EventBroker) Start(settingsRepo *settings.Repository, catalogSvc *catalog.Service) {
	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel

	go b.forwardSettings(ctx, settingsRepo.WatchSettings(ctx))
	go b.forwardDeletedColors(ctx, settingsRepo.WatchDeletedColors(ctx))
	go b.forwardColors(ctx, catalogSvc.ListAll(ctx))
}

// Stop cancels all background goroutines.
func (b *EventBroker) Stop() {
	if b.cancel != nil {
		b.cancel()
	}
}

func (b *EventBroker) forwardSettings(ctx context.Context, sub <-chan models.Settings) {
	for {
		select {
		case s, ok := <-sub:
			if !ok {
				return
			}
			b.Broadcast(Event{Type: "settings.update", Data: s})
		case <-ctx.Done():
			return
		}
	}
}

func (b *EventBroker) forwardDeletedColors(ctx context.Context, sub <-chan []models.ColorRecord) {
	for {
		select {
		case list, ok := <-sub:
			if !ok {
				return
			}
			b.Broadcast(Event{Type: "deleted-colors.update", Data: list})
		case <-ctx.Done():
			return
		}
	}
}

func (b *EventBroker) forwardColors(ctx context.Context, sub <-chan []models.ColorRecord) {
	for {
		select {
		case list, ok := <-sub:
			if !ok {
				return
			}
			b.Broadcast(Event{Type: "colors.update", Data: list})
		case <-ctx.Done():
			return
		}
	}
}

// Subscribe creates a new client channel and registers it with the broker.
func (b *EventBroker) Subscribe() chan Event {
	ch := make(chan Event, b.bufferSize)
	b.mu.Lock()
	b.clients[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a client channel from the broker and closes it.
func (b *EventBroker) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	delete(b.clients, ch)
	b.mu.Unlock()
	close(ch)
}

// Broadcast sends an event to all connected clients.
// Non-blocking: if a client channel is full, the event is dropped for that client.
func (b *EventBroker) Broadcast(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.clients {
		select {
		case ch <- event:
		default:
			logger.Warnf("SSE: dropping event %s for slow client", event.Type)
		}
	}
}

// ClientCount returns the number of connected clients.
func (b *EventBroker) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// SSEHandler is the HTTP handler for the SSE endpoint.
// It streams events to connected clients using the text/event-stream format.
func (h *Handler) SSEHandler(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // for nginx proxy

	events := h.events.Subscribe()
	defer h.events.Unsubscribe(events)

	// Send initial connection event
	fmt.Fprintf(w, "event: connected\ndata: {}\n\n")
	flusher.Flush()

	for {
		select {
		case event := <-events:
			data, err := json.Marshal(event.Data)
			if err != nil {
				logger.Errorf("SSE: error marshaling event data: %v", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, string(data))
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}
