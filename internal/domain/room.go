package domain

import "time"

// Room 表示一个聊天房间及其聚合元数据。
// Name 是小写的唯一键；房间在首次加入时惰性创建，永不删除。
type Room struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	Name        string    `gorm:"uniqueIndex;size:191;not null" json:"name"` // 房间名（小写，唯一键）
	Creator     string    `gorm:"size:191" json:"creator"`                   // 创建者用户名（第一个加入的用户）
	Description string    `gorm:"size:500" json:"description"`
	Tags        string    `gorm:"size:500" json:"tags"` // 逗号分隔的标签集合
	IsPrivate   bool      `json:"isPrivate"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index" json:"createdAt"`

	// --- 派生计数器/预览，由引擎随消息流和在场流更新 ---
	UserCount          int        `gorm:"not null;default:0;index" json:"userCount"` // 不变式: >= 0
	MessageCount       int64      `gorm:"not null;default:0;index" json:"messageCount"`
	LastMessageAt      *time.Time `gorm:"index" json:"lastMessageAt"`        // 单调非递减
	LastMessagePreview string     `gorm:"size:64" json:"lastMessagePreview"` // 截断到 50 字符 + 省略号
	LastMessageUser    string     `gorm:"size:191" json:"lastMessageUser"`
}

// PreviewLimit 是 LastMessagePreview 保留的最大字符数（不含省略号）。
const PreviewLimit = 50

// TruncatePreview 将消息内容截断为聚合预览。
// 只截断预览，存储的消息内容永远保持完整。
func TruncatePreview(content string) string {
	runes := []rune(content)
	if len(runes) <= PreviewLimit {
		return content
	}
	return string(runes[:PreviewLimit]) + "..."
}
