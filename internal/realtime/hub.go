package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Event is the wire format pushed to subscribed clients whenever a phase or
// sub-phase changes state.
type Event struct {
	Type            string                 `json:"type"`
	ProjectID       string                 `json:"projectId"`
	EntityType      string                 `json:"entityType,omitempty"`
	EntityID        string                 `json:"entityId,omitempty"`
	PreviousStatus  *string                `json:"previousStatus,omitempty"`
	NewStatus       string                 `json:"newStatus,omitempty"`
	OverallProgress int                    `json:"overallProgress"`
	Timestamp       time.Time              `json:"timestamp"`
	Payload         map[string]interface{} `json:"payload,omitempty"`
}

const (
	EventStatusChanged    = "STATUS_CHANGED"
	EventProgressUpdated  = "PROGRESS_UPDATED"
	EventApprovalUpdated  = "APPROVAL_UPDATED"
	EventCommentAdded     = "COMMENT_ADDED"
	EventChecklistToggled = "CHECKLIST_TOGGLED"
)

// Client is a single websocket subscriber scoped to one project.
type Client struct {
	conn      *websocket.Conn
	send      chan []byte
	projectID uuid.UUID
	userID    uuid.UUID
	hub       *Hub
}

// Hub fans project events out to all websocket clients watching that project.
type Hub struct {
	clients    map[uuid.UUID]map[*Client]bool
	clientsMu  sync.RWMutex
	register   chan *Client
	unregister chan *Client
	logger     *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	hub := &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
	}

	go hub.run()

	return hub
}

func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.clientsMu.Lock()
			if h.clients[client.projectID] == nil {
				h.clients[client.projectID] = make(map[*Client]bool)
			}
			h.clients[client.projectID][client] = true
			h.clientsMu.Unlock()

			h.logger.Info("Realtime client registered",
				zap.String("projectId", client.projectID.String()),
				zap.String("userId", client.userID.String()))

		case client := <-h.unregister:
			h.clientsMu.Lock()
			if clients, ok := h.clients[client.projectID]; ok {
				if _, exists := clients[client]; exists {
					delete(clients, client)
					close(client.send)
					if len(clients) == 0 {
						delete(h.clients, client.projectID)
					}
				}
			}
			h.clientsMu.Unlock()

			h.logger.Info("Realtime client unregistered",
				zap.String("projectId", client.projectID.String()),
				zap.String("userId", client.userID.String()))
		}
	}
}

// Broadcast delivers an event to every client watching the project. Slow
// clients are dropped rather than blocking the caller.
func (h *Hub) Broadcast(projectID uuid.UUID, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	event.ProjectID = projectID.String()

	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Warn("Failed to marshal realtime event", zap.Error(err))
		return
	}

	// Sends happen under the read lock: run() closes a client's send
	// channel only while holding the write lock, so no channel can be
	// closed mid-send and the map cannot change during iteration. Slow
	// clients are collected and dropped after the lock is released,
	// since unregister needs the write lock to proceed.
	h.clientsMu.RLock()
	var dropped []*Client
	for client := range h.clients[projectID] {
		select {
		case client.send <- payload:
		default:
			dropped = append(dropped, client)
		}
	}
	h.clientsMu.RUnlock()

	for _, client := range dropped {
		h.unregister <- client
	}
}

// SubscriberCount returns the number of clients watching the project.
func (h *Hub) SubscriberCount(projectID uuid.UUID) int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients[projectID])
}

// Register attaches an upgraded websocket connection to the hub and starts
// its read and write pumps.
func (h *Hub) Register(conn *websocket.Conn, projectID, userID uuid.UUID) {
	client := &Client{
		conn:      conn,
		send:      make(chan []byte, 256),
		projectID: projectID,
		userID:    userID,
		hub:       h,
	}

	h.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// Subscribers are read-only; inbound frames only keep the connection alive
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("WebSocket error", zap.Error(err))
			}
			break
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
