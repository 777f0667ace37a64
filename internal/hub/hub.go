package hub

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"chatroom-sync/internal/domain"
)

// 包级别的 WebSocket 常量，供 hub 和 client 使用
const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// HubMessage 定义了在 Hub 内部通道传递的消息类型
type HubMessage struct {
	Type    string  // "register", "unregister", "broadcast"
	Room    string  // 房间名（小写键）
	Client  *Client // 关联的客户端（register/unregister）
	Payload []byte  // 广播载荷（broadcast）
}

// Hub 是本地的实时订阅者投影：维护按房间组织的 WebSocket 客户端集合，
// 并把引擎转发来的总线事件原样广播给对应房间的所有客户端。
// Hub 自己不持有任何领域状态，总线事件是它唯一的输入。
//
// 注册、注销和广播全部经由 messageChan 在 Run 循环里串行处理：
// rooms 只被 Run goroutine 触碰，close(client.send) 和向 client.send
// 发送永远不会并发（向已关闭通道发送会 panic，select/default 也挡不住）。
type Hub struct {
	// 内部通道，Run 循环的唯一输入
	messageChan chan HubMessage

	// 客户端集合，按房间名组织，仅 Run goroutine 访问
	// map[room]map[*Client]bool
	rooms map[string]map[*Client]bool
}

// NewHub 创建并返回一个新的 Hub 实例
func NewHub() *Hub {
	return &Hub{
		messageChan: make(chan HubMessage, 512),
		rooms:       make(map[string]map[*Client]bool),
	}
}

// Run 启动 Hub 的主事件处理循环，ctx 取消时退出。
// 它应该在一个单独的 goroutine 中运行。
func (h *Hub) Run(ctx context.Context) {
	log := logrus.WithField("component", "hub")
	log.Info("Hub is running...")

	for {
		select {
		case <-ctx.Done():
			log.Info("Hub is shutting down...")
			h.closeAllClients()
			return
		case msg := <-h.messageChan:
			switch msg.Type {
			case "register":
				h.registerClient(msg.Client)
			case "unregister":
				h.unregisterClient(msg.Client)
			case "broadcast":
				h.broadcastToRoom(msg.Room, msg.Payload)
			default:
				log.Warnf("Hub: received unknown message type: %s for room %s", msg.Type, msg.Room)
			}
		}
	}
}

// BroadcastEvent 把一条领域事件广播给其房间的所有客户端。
// 由引擎的总线消费 goroutine 调用；这里只做编码和入队，
// 实际的扇出在 Run 循环里执行，与客户端注销串行化。
func (h *Hub) BroadcastEvent(event domain.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"event_type": event.Type,
			"room":       event.Room,
		}).Error("Hub: failed to marshal event for broadcast")
		return
	}
	h.QueueMessage(HubMessage{Type: "broadcast", Room: event.Room, Payload: payload})
}

// QueueMessage 将消息放入 Hub 的处理队列 (非阻塞)。
// 返回 true 如果消息成功入队，false 如果队列已满。
func (h *Hub) QueueMessage(msg HubMessage) bool {
	select {
	case h.messageChan <- msg:
		return true
	default:
		logrus.WithFields(logrus.Fields{
			"message_type": msg.Type,
			"room":         msg.Room,
		}).Warn("Hub message channel full, dropping message")
		return false
	}
}

// broadcastToRoom 把载荷扇出给房间的所有客户端，仅在 Run 循环里调用
func (h *Hub) broadcastToRoom(room string, payload []byte) {
	roomClients, ok := h.rooms[room]
	if !ok || len(roomClients) == 0 {
		return
	}

	logCtx := logrus.WithFields(logrus.Fields{
		"room":            room,
		"recipient_count": len(roomClients),
	})
	logCtx.Debug("Broadcasting event to clients")

	for client := range roomClients {
		// 非阻塞发送，避免单个慢客户端阻塞广播
		select {
		case client.send <- payload:
		default:
			logCtx.Warn("Client send channel full during broadcast, skipping this client")
		}
	}
}

// registerClient 处理客户端注册逻辑，仅在 Run 循环里调用
func (h *Hub) registerClient(client *Client) {
	if client == nil {
		logrus.Error("Hub: attempted to register a nil client")
		return
	}
	room := client.Room()
	logCtx := logrus.WithField("room", room)

	if _, ok := h.rooms[room]; !ok {
		h.rooms[room] = make(map[*Client]bool)
		logCtx.Info("Client list created for new room")
	}
	h.rooms[room][client] = true
	logCtx.Info("Client registered to Hub")
}

// unregisterClient 处理客户端注销逻辑，仅在 Run 循环里调用
func (h *Hub) unregisterClient(client *Client) {
	if client == nil {
		logrus.Error("Hub: attempted to unregister a nil client")
		return
	}
	room := client.Room()
	logCtx := logrus.WithField("room", room)

	if roomClients, roomExists := h.rooms[room]; roomExists {
		if _, clientExists := roomClients[client]; clientExists {
			delete(roomClients, client)
			close(client.send)
			if len(roomClients) == 0 {
				delete(h.rooms, room)
				logCtx.Info("Room empty, removed from Hub")
			}
		}
	}
	logCtx.Info("Client unregistered from Hub")
}

// closeAllClients 在关闭时断开所有连接
func (h *Hub) closeAllClients() {
	for room, roomClients := range h.rooms {
		for client := range roomClients {
			close(client.send)
			client.CloseConn()
		}
		delete(h.rooms, room)
	}
}
