package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"chatroom-sync/internal/domain"
	"chatroom-sync/internal/service"
)

// RoomHandler 封装了房间相关的 HTTP 处理逻辑。
// 写操作（join/leave/send）走 SyncService，只读视图走 RoomService。
type RoomHandler struct {
	syncService *service.SyncService
	roomService *service.RoomService
}

// NewRoomHandler 创建 RoomHandler 实例
func NewRoomHandler(syncService *service.SyncService, roomService *service.RoomService) *RoomHandler {
	if syncService == nil {
		panic("SyncService cannot be nil for RoomHandler")
	}
	if roomService == nil {
		panic("RoomService cannot be nil for RoomHandler")
	}
	return &RoomHandler{syncService: syncService, roomService: roomService}
}

// JoinRoomRequest 定义加入/离开房间请求的结构体
type JoinRoomRequest struct {
	Username string `json:"username"`
}

// SendMessageRequest 定义发送消息请求的结构体
type SendMessageRequest struct {
	Username string `json:"username"`
	Content  string `json:"content"`
}

// userView 是在场用户在响应里的形状
type userView struct {
	Username string    `json:"username"`
	JoinedAt time.Time `json:"joinedAt"`
}

func toUserViews(entries []domain.PresenceEntry) []userView {
	users := make([]userView, 0, len(entries))
	for _, entry := range entries {
		users = append(users, userView{Username: entry.Username, JoinedAt: entry.JoinedAt})
	}
	return users
}

// JoinRoom 处理 POST /api/rooms/:room/join
func (h *RoomHandler) JoinRoom(c *gin.Context) {
	room := c.Param("room")

	var req JoinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.JoinRoom: invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Username and room name required")
		return
	}

	entry, err := h.syncService.Join(c.Request.Context(), room, req.Username)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, gin.H{
		"success": true,
		"userId":  entry.ID,
		"room":    entry.Room,
	})
}

// LeaveRoom 处理 POST /api/rooms/:room/leave
// 离开一个没加入过的房间也是成功（no-op，不发事件，不动计数）。
func (h *RoomHandler) LeaveRoom(c *gin.Context) {
	room := c.Param("room")

	var req JoinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.LeaveRoom: invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Username and room name required")
		return
	}

	if _, err := h.syncService.Leave(c.Request.Context(), room, req.Username); err != nil {
		HandleServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, gin.H{"success": true})
}

// SendMessage 处理 POST /api/rooms/:room/messages
func (h *RoomHandler) SendMessage(c *gin.Context) {
	room := c.Param("room")

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.SendMessage: invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Username, content, and room name required")
		return
	}

	if _, err := h.syncService.SendMessage(c.Request.Context(), room, req.Username, req.Content); err != nil {
		HandleServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, gin.H{"success": true})
}

// GetMessages 处理 GET /api/rooms/:room/messages
func (h *RoomHandler) GetMessages(c *gin.Context) {
	messages, err := h.roomService.RecentMessages(c.Request.Context(), c.Param("room"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	SuccessResponse(c, http.StatusOK, gin.H{"messages": messages})
}

// GetUsers 处理 GET /api/rooms/:room/users
func (h *RoomHandler) GetUsers(c *gin.Context) {
	entries, err := h.roomService.ActiveUsers(c.Request.Context(), c.Param("room"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"users": toUserViews(entries)})
}

// ListRooms 处理 GET /api/rooms?sort&order&limit
func (h *RoomHandler) ListRooms(c *gin.Context) {
	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			ErrorResponse(c, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		limit = parsed
	}

	rooms, total, err := h.roomService.ListRooms(c.Request.Context(), c.Query("sort"), c.Query("order"), limit)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	if rooms == nil {
		rooms = []domain.Room{}
	}
	SuccessResponse(c, http.StatusOK, gin.H{
		"rooms":      rooms,
		"totalRooms": total,
	})
}

// GetRoomDetails 处理 GET /api/rooms/:room/details
func (h *RoomHandler) GetRoomDetails(c *gin.Context) {
	roomData, entries, err := h.roomService.RoomDetails(c.Request.Context(), c.Param("room"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	users := toUserViews(entries)
	SuccessResponse(c, http.StatusOK, gin.H{
		"room":            roomData,
		"activeUsers":     users,
		"activeUserCount": len(users),
	})
}
