package notification

import (
	"context"
	"encoding/json"
	"expvar"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Redis channel for cross-instance fan-out
const alertEventsChannel = "alerts:events"

var (
	wsConnectionsGauge   = expvar.NewInt("alert_ws_connections")
	wsEventsSentTotal    = expvar.NewInt("alert_ws_events_sent_total")
	wsEventsDroppedTotal = expvar.NewInt("alert_ws_events_dropped_total")
)

type alertEventMessage struct {
	MerchantID       string          `json:"merchant_id"`
	Payload          json.RawMessage `json:"payload"`
	SenderInstanceID string          `json:"sender_instance_id"`
}

// Connection represents one merchant dashboard WebSocket connection
type Connection struct {
	MerchantID uuid.UUID
	Conn       *websocket.Conn
	Send       chan []byte
}

// Hub delivers dashboard alerts to connected merchants. Redis Pub/Sub fans
// events out across server instances; without Redis the hub is local-only.
type Hub struct {
	connections map[uuid.UUID]map[*Connection]bool
	redis       *redis.Client
	pubsub      *redis.PubSub

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection

	ctx    context.Context
	cancel context.CancelFunc

	instanceID string
}

// NewHub creates the alert hub
func NewHub(redisClient *redis.Client) *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	h := &Hub{
		connections: make(map[uuid.UUID]map[*Connection]bool),
		redis:       redisClient,
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		ctx:         ctx,
		cancel:      cancel,
		instanceID:  uuid.NewString(),
	}

	if redisClient != nil {
		h.pubsub = redisClient.Subscribe(ctx, alertEventsChannel)
	}

	return h
}

// Run starts the hub (call in goroutine)
func (h *Hub) Run() {
	if h.pubsub != nil {
		go h.runRedisSubscriber()
	}

	for {
		select {
		case <-h.ctx.Done():
			return

		case conn := <-h.register:
			h.mu.Lock()
			if h.connections[conn.MerchantID] == nil {
				h.connections[conn.MerchantID] = make(map[*Connection]bool)
			}
			h.connections[conn.MerchantID][conn] = true
			h.mu.Unlock()
			wsConnectionsGauge.Add(1)
			log.Debug().Str("merchant_id", conn.MerchantID.String()).Msg("merchant connected to alert stream")

		case conn := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.connections[conn.MerchantID]; ok {
				if _, exists := conns[conn]; exists {
					delete(conns, conn)
					close(conn.Send)
					wsConnectionsGauge.Add(-1)
				}
				if len(conns) == 0 {
					delete(h.connections, conn.MerchantID)
				}
			}
			h.mu.Unlock()
			log.Debug().Str("merchant_id", conn.MerchantID.String()).Msg("merchant disconnected from alert stream")
		}
	}
}

func (h *Hub) runRedisSubscriber() {
	ch := h.pubsub.Channel()

	for {
		select {
		case <-h.ctx.Done():
			return

		case msg, ok := <-ch:
			if !ok {
				return
			}

			var event alertEventMessage
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue
			}
			if event.SenderInstanceID == h.instanceID {
				continue
			}
			merchantID, err := uuid.Parse(event.MerchantID)
			if err != nil {
				continue
			}
			h.sendLocal(merchantID, []byte(event.Payload))
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// Publish delivers a payload to every connection of the merchant, on this
// instance directly and on the others via Redis.
func (h *Hub) Publish(merchantID uuid.UUID, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	h.sendLocal(merchantID, data)

	if h.redis == nil {
		return nil
	}
	event := alertEventMessage{
		MerchantID:       merchantID.String(),
		Payload:          data,
		SenderInstanceID: h.instanceID,
	}
	raw, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return h.redis.Publish(h.ctx, alertEventsChannel, raw).Err()
}

func (h *Hub) sendLocal(merchantID uuid.UUID, data []byte) {
	h.mu.RLock()
	conns, ok := h.connections[merchantID]
	h.mu.RUnlock()

	if !ok {
		return
	}

	for conn := range conns {
		select {
		case conn.Send <- data:
			wsEventsSentTotal.Add(1)
		default:
			// Buffer full, skip this message
			wsEventsDroppedTotal.Add(1)
			log.Warn().Str("merchant_id", merchantID.String()).Msg("alert WebSocket send buffer full")
		}
	}
}

// GetConnectionCount returns number of local connections
func (h *Hub) GetConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, conns := range h.connections {
		total += len(conns)
	}
	return total
}

// Shutdown gracefully shuts down the hub
func (h *Hub) Shutdown() {
	h.cancel()
	if h.pubsub != nil {
		h.pubsub.Close()
	}
}
