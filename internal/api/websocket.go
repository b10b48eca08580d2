package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/gray-logic-tuya/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-tuya/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-tuya/internal/platform"
)

// Message types exchanged on the select feed.
const (
	WSTypeSubscribe    = "subscribe"
	WSTypeUnsubscribe  = "unsubscribe"
	WSTypeSelectOption = "select_option"
	WSTypePing         = "ping"
	WSTypePong         = "pong"
	WSTypeSnapshot     = "snapshot"
	WSTypeEvent        = "event"
	WSTypeResponse     = "response"
	WSTypeError        = "error"
)

// EventSelectStateChanged is the event type of select state updates.
const EventSelectStateChanged = "select.state_changed"

const (
	wsSendBufferSize = 256
	wsCommandTimeout = 5 * time.Second
)

// WSMessage is the envelope of every feed message in both directions.
type WSMessage struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	EventType string          `json:"event_type,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// WSSubscribePayload narrows the feed. Empty lists match everything; a
// state matches when it passes both lists.
type WSSubscribePayload struct {
	DeviceIDs []string `json:"device_ids,omitempty"`
	UniqueIDs []string `json:"unique_ids,omitempty"`
}

func (p WSSubscribePayload) matches(state platform.SelectState) bool {
	if len(p.DeviceIDs) > 0 && !slices.Contains(p.DeviceIDs, state.DeviceID) {
		return false
	}
	if len(p.UniqueIDs) > 0 && !slices.Contains(p.UniqueIDs, state.UniqueID) {
		return false
	}
	return true
}

// WSSelectOptionPayload is the payload of a select_option request.
type WSSelectOptionPayload struct {
	UniqueID string `json:"unique_id" validate:"required"`
	Option   string `json:"option" validate:"required"`
}

// WSErrorPayload is the payload of an error message.
type WSErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Hub tracks feed clients and fans select state out to them.
type Hub struct {
	cfg      config.WebSocketConfig
	logger   *logging.Logger
	host     SelectHost
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*WSClient]struct{}
}

// WSClient is one feed connection. A client receives nothing until it
// subscribes.
type WSClient struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	filter *WSSubscribePayload
}

// NewHub creates a hub serving states from host. Upgrades from a browser
// are accepted only from allowedOrigins, or from the serving host itself
// when the list is empty.
func NewHub(cfg config.WebSocketConfig, allowedOrigins []string, logger *logging.Logger, host SelectHost) *Hub {
	return &Hub{
		cfg:    cfg,
		logger: logger,
		host:   host,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
		clients: make(map[*WSClient]struct{}),
	}
}

// checkOrigin admits requests without an Origin header, which browsers
// always send on upgrades.
func checkOrigin(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if len(allowed) > 0 {
			return originAllowed(allowed, origin)
		}
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}

// Run blocks until ctx is done, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		if client.conn != nil {
			client.conn.Close()
		}
		delete(h.clients, client)
	}
}

// Register adds a client.
func (h *Hub) Register(client *WSClient) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("websocket client connected", "clients", n)
}

// Unregister removes a client. Only the call that removes it closes its
// send channel.
func (h *Hub) Unregister(client *WSClient) {
	h.mu.Lock()
	_, existed := h.clients[client]
	delete(h.clients, client)
	n := len(h.clients)
	h.mu.Unlock()

	if existed {
		close(client.send)
	}
	h.logger.Debug("websocket client disconnected", "clients", n)
}

// Broadcast sends state to every subscribed client whose filter matches.
func (h *Hub) Broadcast(state platform.SelectState) {
	data, err := encodeMessage(WSTypeEvent, "", EventSelectStateChanged, state)
	if err != nil {
		h.logger.Error("failed to marshal select state", "unique_id", state.UniqueID, "error", err)
		return
	}

	h.mu.RLock()
	clients := make([]*WSClient, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		if client.wants(state) {
			client.trySend(data)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.hub.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed",
			"origin", r.Header.Get("Origin"),
			"request_id", requestID(r),
			"error", err,
		)
		return
	}

	client := &WSClient{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, wsSendBufferSize),
	}
	s.hub.Register(client)

	go client.writePump()
	go client.readPump()
}

func (c *WSClient) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	cfg := c.hub.cfg
	deadline := time.Duration(cfg.PingInterval+cfg.PongTimeout) * time.Second
	extend := func() error { return c.conn.SetReadDeadline(time.Now().Add(deadline)) }

	c.conn.SetReadLimit(int64(cfg.MaxMessageSize))
	//nolint:errcheck // a failed deadline surfaces as a read error
	extend()
	c.conn.SetPongHandler(func(string) error { return extend() })

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("websocket read error", "error", err)
			}
			return
		}
		// Browsers may not answer protocol pings, so any message counts.
		//nolint:errcheck // a failed deadline surfaces as a read error
		extend()
		c.handleMessage(data)
	}
}

func (c *WSClient) writePump() {
	cfg := c.hub.cfg
	ticker := time.NewTicker(time.Duration(cfg.PingInterval) * time.Second)
	writeWait := time.Duration(cfg.PongTimeout) * time.Second
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		kind := websocket.TextMessage
		var data []byte
		select {
		case msg, ok := <-c.send:
			if !ok {
				//nolint:errcheck // connection is going away either way
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			data = msg
		case <-ticker.C:
			kind = websocket.PingMessage
		}

		//nolint:errcheck // write error is caught below
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(kind, data); err != nil {
			return
		}
	}
}

func (c *WSClient) handleMessage(data []byte) {
	var msg WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError("", ErrCodeBadRequest, "invalid JSON message")
		return
	}

	switch msg.Type {
	case WSTypeSubscribe:
		c.handleSubscribe(msg)
	case WSTypeUnsubscribe:
		c.setFilter(nil)
		c.reply(msg.ID, WSTypeResponse, map[string]bool{"subscribed": false})
	case WSTypeSelectOption:
		c.handleSelectOption(msg)
	case WSTypePing:
		c.reply(msg.ID, WSTypePong, nil)
	default:
		c.sendError(msg.ID, ErrCodeBadRequest, "unknown message type: "+msg.Type)
	}
}

// handleSubscribe replaces the client's filter, then sends the current
// state of every matching select so the client starts consistent.
func (c *WSClient) handleSubscribe(msg WSMessage) {
	var filter WSSubscribePayload
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &filter); err != nil {
			c.sendError(msg.ID, ErrCodeBadRequest, "invalid subscribe payload")
			return
		}
	}
	c.setFilter(&filter)
	c.reply(msg.ID, WSTypeResponse, map[string]any{
		"subscribed": true,
		"filter":     filter,
	})

	states := make([]platform.SelectState, 0)
	for _, st := range c.hub.host.List() {
		if filter.matches(st) {
			states = append(states, st)
		}
	}
	c.reply(msg.ID, WSTypeSnapshot, map[string]any{
		"selects": states,
		"count":   len(states),
	})
}

func (c *WSClient) handleSelectOption(msg WSMessage) {
	var req WSSelectOptionPayload
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		c.sendError(msg.ID, ErrCodeBadRequest, "invalid select_option payload")
		return
	}
	if err := validate.Struct(req); err != nil {
		c.sendError(msg.ID, ErrCodeValidation, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), wsCommandTimeout)
	defer cancel()

	if err := c.hub.host.SelectOption(ctx, req.UniqueID, req.Option); err != nil {
		if _, code, message, ok := platformError(err); ok {
			c.sendError(msg.ID, code, message)
			return
		}
		c.hub.logger.Error("websocket select failed", "unique_id", req.UniqueID, "error", err)
		c.sendError(msg.ID, ErrCodeInternal, "internal server error")
		return
	}

	c.reply(msg.ID, WSTypeResponse, map[string]string{
		"unique_id": req.UniqueID,
		"option":    req.Option,
		"status":    "accepted",
	})
}

func (c *WSClient) setFilter(filter *WSSubscribePayload) {
	c.mu.Lock()
	c.filter = filter
	c.mu.Unlock()
}

func (c *WSClient) wants(state platform.SelectState) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filter != nil && c.filter.matches(state)
}

// trySend queues data without blocking. Messages to a full buffer are
// dropped, as are sends racing a close.
func (c *WSClient) trySend(data []byte) {
	defer func() {
		recover() //nolint:errcheck // send on a channel closed by Unregister
	}()

	select {
	case c.send <- data:
	default:
	}
}

func (c *WSClient) reply(id, msgType string, payload any) {
	data, err := encodeMessage(msgType, id, "", payload)
	if err != nil {
		c.hub.logger.Error("failed to marshal websocket reply", "type", msgType, "error", err)
		return
	}
	c.trySend(data)
}

func (c *WSClient) sendError(id, code, message string) {
	c.reply(id, WSTypeError, WSErrorPayload{Code: code, Message: message})
}

func encodeMessage(msgType, id, eventType string, payload any) ([]byte, error) {
	msg := WSMessage{
		Type:      msgType,
		ID:        id,
		EventType: eventType,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		msg.Payload = raw
	}
	return json.Marshal(msg)
}
