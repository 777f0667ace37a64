package repository

import (
	"context"

	"chatroom-sync/internal/domain"
)

// 房间列表允许的排序键（白名单，未知键必须被拒绝而不是静默回退）。
const (
	SortByLastMessageAt = "lastMessageAt"
	SortByUserCount     = "userCount"
	SortByCreatedAt     = "createdAt"
	SortByMessageCount  = "messageCount"
)

// ListOptions 描述房间列表查询的排序和分页参数。
type ListOptions struct {
	SortKey string // SortBy* 常量之一
	Order   string // "asc" 或 "desc"
	Limit   int
}

// RoomRepository 定义了房间聚合的存储和检索操作。
// 计数器的增减必须是存储层的原子操作，而不是引擎侧的读-改-写：
// 多个引擎实例可能并发更新同一个房间。
type RoomRepository interface {
	// EnsureExists 按唯一房间名做 upsert：不存在则用默认值创建（creator 为首个加入者），
	// 已存在则原样返回。并发的重复创建必须只产生一行（first-join-wins）。
	EnsureExists(ctx context.Context, name, creator string) (*domain.Room, error)

	// FindByName 根据房间名查找房间。
	// 房间不存在时返回 ErrRoomNotFound。
	FindByName(ctx context.Context, name string) (*domain.Room, error)

	// IncrementUserCount 原子地将 user_count 加 1。
	IncrementUserCount(ctx context.Context, name string) error

	// DecrementUserCount 原子地将 user_count 减 1，下限为 0
	// （离开次数多于加入次数时永远不会变成负数）。
	DecrementUserCount(ctx context.Context, name string) error

	// ApplyMessage 原子地记录一条新消息对聚合的影响：
	// message_count 加 1，并推进 last_message_at / last_message_user / last_message_preview
	// （preview 已由调用方截断）。last_message_at 保持单调非递减。
	ApplyMessage(ctx context.Context, name, username, preview string, msg *domain.Message) error

	// List 按给定排序返回房间列表和总数。
	List(ctx context.Context, opts ListOptions) ([]domain.Room, int64, error)
}
