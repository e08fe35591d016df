package ws

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/quizwhiz/quizwhiz-backend/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func sendJSON(client *Client, data interface{}) {
	msg, err := json.Marshal(data)
	if err != nil {
		log.Println("ws: marshal:", err)
		return
	}
	select {
	case client.Send <- msg:
	default:
	}
}

// HandleResultsWebSocket streams result events for the user owning ?token=.
func HandleResultsWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing token"})
		return
	}
	claims, err := utils.VerifyToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}
	userID := claims.UserID

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("ws: upgrade failed:", err)
		return
	}
	log.Printf("Results WS connected: userID=%s\n", userID)

	client := H.Register(userID, conn)
	go client.writePump()
	defer H.Unregister(userID, conn)

	sendJSON(client, Event{Type: "connected"})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	log.Printf("Results WS disconnected: userID=%s\n", userID)
}
