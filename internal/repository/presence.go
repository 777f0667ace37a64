package repository

import (
	"context"
	"time"

	"chatroom-sync/internal/domain"
)

// PresenceRepository 定义了 (room, username) 在场集合的存储，带自动过期。
type PresenceRepository interface {
	// Join 是幂等的：(room, username) 已存在时刷新其过期时间并原样返回
	// （ID 和 JoinedAt 不变，created = false）；否则创建新条目（created = true），
	// expiresAt = now + TTL。重复加入永远不会失败。
	Join(ctx context.Context, room, username string) (entry *domain.PresenceEntry, created bool, err error)

	// Leave 删除条目（如果存在），返回是否真的删除了东西。
	// 离开一个不在的房间是成功的 no-op。
	Leave(ctx context.Context, room, username string) (bool, error)

	// List 返回房间内未过期的在场条目。除单次读取内稳定外不保证顺序。
	List(ctx context.Context, room string) ([]domain.PresenceEntry, error)

	// Sweep 删除并返回所有 expiresAt <= now 的条目，
	// 调用方据此为每一条发出 UserLeft 事件并递减聚合计数。
	Sweep(ctx context.Context, now time.Time) ([]domain.PresenceEntry, error)
}
