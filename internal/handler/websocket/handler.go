package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"chatroom-sync/internal/hub"
	"chatroom-sync/internal/service"
)

// WebSocketHandler 负责把实时订阅者升级为 WebSocket 并注册到 Hub。
// 订阅者随后收到该房间的领域事件流（与总线载荷相同的 JSON）。
type WebSocketHandler struct {
	upgrader websocket.Upgrader
	hub      *hub.Hub
}

// NewWebSocketHandler 创建 WebSocketHandler 实例
func NewWebSocketHandler(h *hub.Hub) *WebSocketHandler {
	if h == nil {
		panic("Hub cannot be nil for WebSocketHandler")
	}
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// TODO: restrict origins via config before exposing publicly
			return true
		},
	}
	return &WebSocketHandler{upgrader: upgrader, hub: h}
}

// HandleConnection 处理 GET /ws/rooms/:room 的 WebSocket 连接请求
func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	room := service.NormalizeRoom(c.Param("room"))
	if room == "" {
		ErrorJSON(c, http.StatusBadRequest, "Room name required")
		return
	}
	logCtx := logrus.WithField("room", room)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade 失败时已自动写入 HTTP 错误响应，这里只记录日志
		logCtx.WithError(err).Error("WS Handler: failed to upgrade connection")
		return
	}
	logCtx.Info("WS Handler: connection upgraded to WebSocket")

	client := hub.NewClient(h.hub, conn, room)
	registerMsg := hub.HubMessage{Type: "register", Room: room, Client: client}
	if !h.hub.QueueMessage(registerMsg) {
		logCtx.Error("WS Handler: hub message channel full, failed to register client")
		client.CloseConn()
		return
	}

	client.Run()
	logCtx.Info("WS Handler: client registered and pumps started")
}

// ErrorJSON 在升级前返回一个 JSON 错误响应
func ErrorJSON(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"error": message})
}
