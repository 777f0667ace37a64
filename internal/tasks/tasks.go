package tasks

import (
	"encoding/json"
	"time"
)

// 定义任务类型常量
const (
	TypePresenceSweep = "presence:sweep" // 在场条目过期回收任务类型
)

// PresenceSweepPayload 定义了在场回收任务的数据结构。
// Deadline 为空时 Worker 以处理时刻为准。
type PresenceSweepPayload struct {
	Deadline time.Time `json:"deadline"`
}

// NewPresenceSweepTask 创建一个新的在场回收任务载荷
func NewPresenceSweepTask() ([]byte, error) {
	payload := PresenceSweepPayload{}
	return json.Marshal(payload)
}
