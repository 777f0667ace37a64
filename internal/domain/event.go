package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType 是领域事件的封闭标签集合。
// 事件是在场/消息变更到达实时订阅者的唯一通道；它们不做持久化（无事件日志/回放）。
type EventType string

const (
	EventMessageSent EventType = "message_sent"
	EventUserJoined  EventType = "user_joined"
	EventUserLeft    EventType = "user_left"
)

// Event 是总线载荷的带标签变体 {MessageSent, UserJoined, UserLeft}。
// Content 仅在 MessageSent 时携带。
// Origin 是产生该事件的引擎实例 ID，接收端用它区分本地回流和远端事件。
type Event struct {
	Type      EventType `json:"type"`
	Room      string    `json:"room"`
	Username  string    `json:"username"`
	Content   string    `json:"content,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Origin    string    `json:"origin,omitempty"`
}

// Validate 对标签做穷举匹配，未知的事件类型必须大声失败而不是被静默忽略。
func (e Event) Validate() error {
	switch e.Type {
	case EventMessageSent:
		if e.Content == "" {
			return fmt.Errorf("domain: %s event requires content", e.Type)
		}
	case EventUserJoined, EventUserLeft:
		// 只携带 room/username/timestamp
	default:
		return fmt.Errorf("domain: unknown event type %q", e.Type)
	}
	if e.Room == "" || e.Username == "" {
		return fmt.Errorf("domain: %s event requires room and username", e.Type)
	}
	return nil
}

// EncodeEvent 将事件序列化为总线载荷。
func EncodeEvent(e Event) ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(e)
}

// DecodeEvent 反序列化总线载荷并校验标签。
// expected 非空时，载荷的类型必须与主题推导出的类型一致。
func DecodeEvent(payload []byte, expected EventType) (Event, error) {
	var e Event
	if err := json.Unmarshal(payload, &e); err != nil {
		return Event{}, fmt.Errorf("domain: failed to unmarshal event payload: %w", err)
	}
	if e.Type == "" {
		e.Type = expected
	}
	if expected != "" && e.Type != expected {
		return Event{}, fmt.Errorf("domain: event type %q does not match topic type %q", e.Type, expected)
	}
	if err := e.Validate(); err != nil {
		return Event{}, err
	}
	return e, nil
}
