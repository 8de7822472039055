package websocket

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/camview/agent/src/log"
	"github.com/camview/agent/src/models"
)

type Message struct {
	ClientID    string `json:"client_id"`
	MessageType string `json:"message_type"`
}

type Connection struct {
	Socket *websocket.Conn
	mu     sync.Mutex
}

// Concurrency handling - sending messages
func (c *Connection) WriteJson(value interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Socket.WriteJSON(value)
}

var socketsMu sync.Mutex
var sockets = make(map[string]*Connection)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebsocketHandler registers a dashboard client for the live motion event
// feed. The client announces itself with a single json message holding its
// client id, then just keeps the socket open.
func WebsocketHandler(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Log.Error("routers.websocket.WebsocketHandler(): upgrade failed: " + err.Error())
		return
	}
	defer conn.Close()

	var message Message
	if err := conn.ReadJSON(&message); err != nil || message.ClientID == "" {
		return
	}
	clientID := message.ClientID

	socketsMu.Lock()
	sockets[clientID] = &Connection{Socket: conn}
	socketsMu.Unlock()
	log.Log.Info("routers.websocket.WebsocketHandler(): client " + clientID + " connected")

	// Block until the client goes away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	socketsMu.Lock()
	delete(sockets, clientID)
	socketsMu.Unlock()
	log.Log.Info("routers.websocket.WebsocketHandler(): client " + clientID + " disconnected")
}

// BroadcastMotion pushes a motion event to all connected dashboard
// clients. A client that fails to accept the write is dropped.
func BroadcastMotion(event models.MotionEvent) {
	socketsMu.Lock()
	defer socketsMu.Unlock()
	for clientID, connection := range sockets {
		if err := connection.WriteJson(event); err != nil {
			connection.Socket.Close()
			delete(sockets, clientID)
		}
	}
}
