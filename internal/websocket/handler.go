package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs registers the connection and blocks until it closes.
func ServeWs(hub *Hub, c *websocket.Conn, userID string) {
	client := &Client{Hub: hub, Conn: c, UserID: userID, Send: make(chan []byte, sendBuffer)}
	client.Hub.register <- client

	go client.writePump()
	client.readPump()
}
