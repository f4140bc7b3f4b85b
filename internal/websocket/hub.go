package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"ai-synthesis-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	hubModule = "Hub"

	// DefaultClusterChannel is the Redis pub/sub channel shared by all instances
	DefaultClusterChannel = "synthesis_cluster_events"
)

// clusterEnvelope wraps a broadcast for other instances.
// Origin lets an instance skip the copy of its own broadcast.
type clusterEnvelope struct {
	Origin string `json:"origin"`
	Frame  Frame  `json:"frame"`
}

type Hub struct {
	// Registered clients
	clients map[*Client]struct{}

	register   chan *Client
	unregister chan *Client

	// closed when Run returns so pumps never block on a stopped hub
	done chan struct{}

	mu sync.RWMutex

	// Redis connection for cross-instance communication, nil when running alone
	rdb            *redis.Client
	clusterChannel string
	instanceID     string

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		clients:        make(map[*Client]struct{}),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		done:           make(chan struct{}),
		rdb:            rdb,
		clusterChannel: DefaultClusterChannel,
		instanceID:     uuid.NewString(),
		logger:         log,
	}
}

// Run owns client registration until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Info(hubModule, "Client registered", map[string]interface{}{"client_id": client.ID, "clients": total})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Info(hubModule, "Client unregistered", map[string]interface{}{"client_id": client.ID, "clients": total})
		}
	}
}

// ClientCount returns the number of locally connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends the frame to every matching local client and to the other instances
func (h *Hub) Broadcast(ctx context.Context, frame Frame) {
	h.deliverLocal(frame)

	if h.rdb == nil {
		return
	}
	payload, err := json.Marshal(clusterEnvelope{Origin: h.instanceID, Frame: frame})
	if err != nil {
		h.logger.Error(hubModule, "Failed to encode cluster envelope", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := h.rdb.Publish(ctx, h.clusterChannel, payload).Err(); err != nil {
		h.logger.Warn(hubModule, "Failed to publish to cluster channel", map[string]interface{}{"error": err.Error()})
	}
}

func (h *Hub) deliverLocal(frame Frame) {
	var slow []*Client

	h.mu.RLock()
	for client := range h.clients {
		if !client.accepts(frame) {
			continue
		}
		select {
		case client.Send <- frame.Data:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	// unregistering is done by Run, which needs the write lock
	for _, client := range slow {
		h.logger.Warn(hubModule, "Client send buffer full, dropping client", map[string]interface{}{"client_id": client.ID})
		go h.leave(client)
	}
}

func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, h.clusterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env clusterEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				h.logger.Warn(hubModule, "Cluster message parse error", map[string]interface{}{"error": err.Error()})
				continue
			}
			if env.Origin == h.instanceID {
				continue
			}
			h.deliverLocal(env.Frame)
		}
	}
}
