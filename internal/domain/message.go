package domain

import "time"

// MaxContentLength 是单条消息内容允许的最大字符数。
const MaxContentLength = 500

// Message 表示一条持久化的聊天消息。
// 自增 ID 是同一时间戳下的插入顺序决胜键：
// 房间内的检索顺序 = (timestamp 升序, id 升序)，即客户端观察到的全序。
// 记录一旦写入即不可变。
type Message struct {
	ID        uint64    `gorm:"primaryKey" json:"-"`
	RoomName  string    `gorm:"index:idx_messages_room_ts,priority:1;size:191;not null" json:"room"`
	Username  string    `gorm:"size:191;not null" json:"username"`
	Content   string    `gorm:"size:500;not null" json:"content"`
	Timestamp time.Time `gorm:"index:idx_messages_room_ts,priority:2;not null" json:"timestamp"`
}
