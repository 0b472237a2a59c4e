package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"eyerest/internal/core/timekeeper"
)

const clientBuffer = 32

// Client is one connected event stream.
type Client struct {
	ID       string
	messages chan []byte
	done     chan struct{}
	once     sync.Once
}

func (client *Client) close() {
	client.once.Do(func() { close(client.done) })
}

// Broadcaster fans timer events out to Server-Sent Events clients. Each
// client has its own buffer; a client that falls behind loses messages
// instead of stalling the others.
type Broadcaster struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewBroadcaster creates an empty Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{clients: make(map[string]*Client)}
}

// AddClient registers a new client.
func (b *Broadcaster) AddClient() *Client {
	client := &Client{
		ID:       uuid.NewString(),
		messages: make(chan []byte, clientBuffer),
		done:     make(chan struct{}),
	}

	b.mu.Lock()
	b.clients[client.ID] = client
	count := len(b.clients)
	b.mu.Unlock()

	log.Debug().Str("client_id", client.ID).Int("total_clients", count).Msg("SSE client connected")
	return client
}

// RemoveClient unregisters client.
func (b *Broadcaster) RemoveClient(client *Client) {
	b.mu.Lock()
	delete(b.clients, client.ID)
	count := len(b.clients)
	b.mu.Unlock()

	client.close()
	log.Debug().Str("client_id", client.ID).Int("total_clients", count).Msg("SSE client disconnected")
}

// ClientCount returns the number of connected clients.
func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// Broadcast encodes event once and queues it for every client.
func (b *Broadcaster) Broadcast(event timekeeper.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("type", string(event.Type)).Msg("Failed to marshal SSE event")
		return
	}
	message := []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, data))

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, client := range b.clients {
		select {
		case client.messages <- message:
		default:
			log.Debug().Str("client_id", client.ID).Msg("SSE client buffer full, dropping event")
		}
	}
}

// Pump broadcasts events until ctx is done or the channel closes.
func (b *Broadcaster) Pump(ctx context.Context, events <-chan timekeeper.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			b.Broadcast(event)
		}
	}
}

// CloseAll ends every open stream.
func (b *Broadcaster) CloseAll() {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, client := range b.clients {
		client.close()
	}
}

// HandleSSE streams events to one client until it disconnects.
func (b *Broadcaster) HandleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, fmt.Errorf("streaming not supported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	client := b.AddClient()
	defer b.RemoveClient(client)

	fmt.Fprintf(w, "event: connected\ndata: {\"client_id\":%q}\n\n", client.ID)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-client.done:
			return
		case message := <-client.messages:
			if _, err := w.Write(message); err != nil {
				log.Debug().Err(err).Str("client_id", client.ID).Msg("SSE write failed")
				return
			}
			flusher.Flush()
		}
	}
}
