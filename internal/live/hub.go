// Package live pushes ledger updates to connected admin consoles and scoreboards.
// Clients subscribe per league; whenever a write to that league commits, the ledger
// publishes a small JSON event and the Hub fans it out to every subscriber, so screens
// refresh their standings without polling the API.
package live

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// clientBuffer is how many undelivered messages a client may queue before it is
// considered too slow and dropped.
const clientBuffer = 16

// Client represents a single subscriber watching one league.
type Client struct {
	LeagueID string      // Which league this client is watching
	Send     chan []byte // Outgoing messages; closed by the Hub when the client is removed
}

// NewClient returns a client for leagueID with a buffered Send channel.
func NewClient(leagueID string) *Client {
	return &Client{LeagueID: leagueID, Send: make(chan []byte, clientBuffer)}
}

// Message is a unit of data to deliver to every client of a league.
type Message struct {
	LeagueID string
	Data     []byte
}

// Hub manages all subscribers, grouped by league id.
// Registration, removal and fan-out all happen on the Run goroutine, which owns
// the clients map; the mutex only guards reads from Subscribers.
type Hub struct {
	clients map[string]map[*Client]bool

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu  sync.RWMutex
	log logrus.FieldLogger
}

// NewHub creates a Hub. The broadcast channel is buffered so a publishing request
// doesn't wait on the Hub goroutine.
func NewHub(log logrus.FieldLogger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run is the Hub's event loop. Start it with "go hub.Run(ctx)"; it returns when ctx
// is cancelled, closing every remaining client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for _, clients := range h.clients {
				for client := range clients {
					close(client.Send)
				}
			}
			h.clients = make(map[string]map[*Client]bool)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.LeagueID] == nil {
				h.clients[client.LeagueID] = make(map[*Client]bool)
			}
			h.clients[client.LeagueID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.remove(client)

		case msg := <-h.broadcast:
			var slow []*Client
			for client := range h.clients[msg.LeagueID] {
				select {
				case client.Send <- msg.Data:
				default:
					slow = append(slow, client)
				}
			}
			for _, client := range slow {
				h.log.WithField("league_id", client.LeagueID).Warn("dropping slow live client")
				h.remove(client)
			}
		}
	}
}

// remove deletes a client and closes its Send channel. Removing a client twice is a no-op.
func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients, ok := h.clients[client.LeagueID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	close(client.Send)
	if len(clients) == 0 {
		delete(h.clients, client.LeagueID)
	}
}

// BroadcastToLeague queues data for every client watching the league.
// It never blocks: if the queue is full the message is dropped, since the next
// update carries the same information.
func (h *Hub) BroadcastToLeague(leagueID string, data []byte) {
	select {
	case h.broadcast <- &Message{LeagueID: leagueID, Data: data}:
	default:
		h.log.WithField("league_id", leagueID).Warn("live broadcast queue full, dropping update")
	}
}

// Register starts delivering a league's messages to client.
// It returns false if the Hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister stops delivery to client and closes its Send channel.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Subscribers reports how many clients are watching a league.
func (h *Hub) Subscribers(leagueID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[leagueID])
}
