package redisbus

import (
	"fmt"
	"strings"

	"chatroom-sync/internal/domain"
)

// 主题方案：
//	chat/{room}/messages
//	chat/{room}/users/join
//	chat/{room}/users/leave
// 事件类型和主题之间是穷举的双向映射，未知主题在解码时大声失败。
const topicRoot = "chat"

// TopicFor 返回事件类型在给定房间下的主题名。
func TopicFor(eventType domain.EventType, room string) (string, error) {
	switch eventType {
	case domain.EventMessageSent:
		return fmt.Sprintf("%s/%s/messages", topicRoot, room), nil
	case domain.EventUserJoined:
		return fmt.Sprintf("%s/%s/users/join", topicRoot, room), nil
	case domain.EventUserLeft:
		return fmt.Sprintf("%s/%s/users/leave", topicRoot, room), nil
	default:
		return "", fmt.Errorf("bus: no topic for event type %q", eventType)
	}
}

// RoomTopics 返回一个房间全部三个主题。
func RoomTopics(room string) []string {
	return []string{
		fmt.Sprintf("%s/%s/messages", topicRoot, room),
		fmt.Sprintf("%s/%s/users/join", topicRoot, room),
		fmt.Sprintf("%s/%s/users/leave", topicRoot, room),
	}
}

// WildcardPatterns 返回匹配所有房间全部主题的订阅模式。
func WildcardPatterns() []string {
	return []string{
		topicRoot + "/*/messages",
		topicRoot + "/*/users/join",
		topicRoot + "/*/users/leave",
	}
}

// ParseTopic 从主题名解析出房间和事件类型。
func ParseTopic(topic string) (room string, eventType domain.EventType, err error) {
	parts := strings.Split(topic, "/")
	switch {
	case len(parts) == 3 && parts[0] == topicRoot && parts[2] == "messages":
		return parts[1], domain.EventMessageSent, nil
	case len(parts) == 4 && parts[0] == topicRoot && parts[2] == "users" && parts[3] == "join":
		return parts[1], domain.EventUserJoined, nil
	case len(parts) == 4 && parts[0] == topicRoot && parts[2] == "users" && parts[3] == "leave":
		return parts[1], domain.EventUserLeft, nil
	default:
		return "", "", fmt.Errorf("bus: unknown topic %q", topic)
	}
}
