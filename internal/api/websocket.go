package api

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/propulsa/docview-backend/internal/notify"
)

// WebSocket message types for the notification protocol
const (
	// Client -> Server messages
	MsgTypePing = "ping"

	// Server -> Client messages
	MsgTypePong         = "pong"
	MsgTypeConnected    = "connected"
	MsgTypeNotification = "notification"
)

// WSMessage is the envelope for all notification traffic
type WSMessage struct {
	Type      string `json:"type"`
	Level     string `json:"level,omitempty"`
	Message   string `json:"message,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// NotificationHub pushes render and upload status messages to connected
// clients. It implements notify.Sink so the core can emit directly
// into it.
type NotificationHub struct {
	upgrader  websocket.Upgrader
	clientsMu sync.Mutex
	clients   map[*websocket.Conn]bool
}

// NewNotificationHub creates a hub with no connected clients
func NewNotificationHub() *NotificationHub {
	return &NotificationHub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Allow connections from dev server
				return true
			},
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 4 * 1024,
		},
		clients: make(map[*websocket.Conn]bool),
	}
}

// Notify implements notify.Sink by broadcasting to every client.
// Clients whose connection fails are dropped.
func (hub *NotificationHub) Notify(level notify.Level, message string) {
	msg := WSMessage{
		Type:      MsgTypeNotification,
		Level:     string(level),
		Message:   message,
		Timestamp: time.Now().UnixMilli(),
	}

	hub.clientsMu.Lock()
	defer hub.clientsMu.Unlock()

	for ws := range hub.clients {
		if err := ws.WriteJSON(msg); err != nil {
			fmt.Printf("[WebSocket] Dropping client after write error: %v\n", err)
			ws.Close()
			delete(hub.clients, ws)
		}
	}
}

// HandleNotifications upgrades the connection and keeps it registered
// until the client goes away
func (hub *NotificationHub) HandleNotifications(c echo.Context) error {
	ws, err := hub.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	fmt.Println("[WebSocket] Client connected for notifications")

	hub.clientsMu.Lock()
	hub.clients[ws] = true
	hub.clientsMu.Unlock()

	hub.send(ws, WSMessage{
		Type:      MsgTypeConnected,
		Timestamp: time.Now().UnixMilli(),
	})

	// Main message loop; clients only ever send pings
	for {
		var msg WSMessage
		err := ws.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				fmt.Printf("[WebSocket] Connection error: %v\n", err)
			}
			break
		}

		if msg.Type == MsgTypePing {
			hub.send(ws, WSMessage{Type: MsgTypePong, Timestamp: time.Now().UnixMilli()})
		}
	}

	hub.clientsMu.Lock()
	delete(hub.clients, ws)
	hub.clientsMu.Unlock()

	fmt.Println("[WebSocket] Client disconnected")
	return nil
}

// ClientCount returns the number of connected clients
func (hub *NotificationHub) ClientCount() int {
	hub.clientsMu.Lock()
	defer hub.clientsMu.Unlock()
	return len(hub.clients)
}

func (hub *NotificationHub) send(ws *websocket.Conn, msg WSMessage) {
	hub.clientsMu.Lock()
	defer hub.clientsMu.Unlock()
	if err := ws.WriteJSON(msg); err != nil {
		fmt.Printf("[WebSocket] Failed to send message: %v\n", err)
	}
}
