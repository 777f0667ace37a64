package domain

import "time"

// DefaultPresenceTTL 是在场条目未刷新时的默认存活时间。
const DefaultPresenceTTL = 30 * time.Minute

// PresenceEntry 记录某个用户当前"在"某个房间里。
// 以 (Room, Username) 为标识；同一用户可以同时在多个房间，各占一条。
// ID 在首次加入时分配，幂等的重复加入只刷新 ExpiresAt，ID 和 JoinedAt 保持不变。
type PresenceEntry struct {
	ID        string    `json:"id"`
	Room      string    `json:"room"`
	Username  string    `json:"username"`
	JoinedAt  time.Time `json:"joinedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired 判断条目在给定时刻是否已过期。
func (p PresenceEntry) Expired(now time.Time) bool {
	return !p.ExpiresAt.After(now)
}
