package handler

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/quocanhngo/agrosynth/internal/middleware"
	"github.com/quocanhngo/agrosynth/internal/model"
	"github.com/quocanhngo/agrosynth/internal/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // the feed only carries public alert data
	},
}

// WSHandler serves the live alert feed
type WSHandler struct {
	hub *ws.Hub
}

func NewWSHandler(hub *ws.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// HandleWebSocket upgrades HTTP to WebSocket and registers the connection.
// Client connects with: ws://host/ws?device_id=<id>
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	// Browsers cannot set headers on WebSocket requests, so the query wins
	deviceID := strings.TrimSpace(c.Query("device_id"))
	if deviceID == "" {
		deviceID = strings.TrimSpace(c.GetHeader(middleware.DeviceIDHeader))
	}
	if deviceID == "" || len(deviceID) > 64 {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: model.ErrDeviceIDRequired.Error()})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := ws.NewClient(h.hub, conn, deviceID)
	if !h.hub.Register(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}
