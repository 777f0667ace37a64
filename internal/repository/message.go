package repository

import (
	"context"
	"time"

	"chatroom-sync/internal/domain"
)

// MessageRepository 定义了追加式消息日志的存储和查询。
// 它只负责持久化写入，不触碰聚合或总线（那是引擎的职责）。
type MessageRepository interface {
	// Append 将消息写入房间的日志，由存储分配其在房间全序中的位置。
	// 约束由调用方保证：content 非空且不超过 domain.MaxContentLength。
	Append(ctx context.Context, room, username, content string, timestamp time.Time) (*domain.Message, error)

	// RecentWindow 返回房间最近的至多 limit 条消息，
	// 按全序升序（timestamp 升序，插入顺序决胜）。不足 limit 条时返回全部。
	RecentWindow(ctx context.Context, room string, limit int) ([]domain.Message, error)
}
