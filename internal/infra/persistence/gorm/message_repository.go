package gormpersistence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"chatroom-sync/internal/domain"
)

// GormMessageRepository 是 MessageRepository 接口的 GORM 实现。
// messages 表是追加式的：记录写入后不可变，自增主键充当同一时间戳下的插入顺序决胜键。
type GormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository 创建 GormMessageRepository 实例
func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	if db == nil {
		panic("database connection cannot be nil for GormMessageRepository")
	}
	return &GormMessageRepository{db: db}
}

// Append 实现向房间日志追加一条消息
func (r *GormMessageRepository) Append(ctx context.Context, room, username, content string, timestamp time.Time) (*domain.Message, error) {
	msg := domain.Message{
		RoomName:  room,
		Username:  username,
		Content:   content,
		Timestamp: timestamp,
	}
	if err := r.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, fmt.Errorf("gorm: append message to room '%s': %w", room, err)
	}
	return &msg, nil
}

// RecentWindow 实现获取房间最近的消息窗口。
// 先按全序降序取最新的 limit 条（命中 (room_name, timestamp) 组合索引），
// 再在内存里反转成客户端观察到的升序。
func (r *GormMessageRepository) RecentWindow(ctx context.Context, room string, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = 100
	}
	var messages []domain.Message
	err := r.db.WithContext(ctx).
		Where("room_name = ?", room).
		Order("timestamp DESC, id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: recent window for room '%s': %w", room, err)
	}
	// 反转为升序
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
