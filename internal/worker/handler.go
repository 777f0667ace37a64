package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"chatroom-sync/internal/service"
	"chatroom-sync/internal/tasks"
)

// PresenceSweepHandler 处理周期性的在场过期回收任务。
// 回收由后台定时驱动而不是客户端触发：对每条过期条目，引擎执行与
// 显式离开相同的尾部序列（递减聚合 + 发布 UserLeft）。
type PresenceSweepHandler struct {
	syncService *service.SyncService
}

// NewPresenceSweepHandler 创建 Handler 实例
func NewPresenceSweepHandler(syncService *service.SyncService) *PresenceSweepHandler {
	if syncService == nil {
		panic("SyncService cannot be nil for PresenceSweepHandler")
	}
	return &PresenceSweepHandler{syncService: syncService}
}

// ProcessTask 实现 asynq.Handler 接口
func (h *PresenceSweepHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	logCtx := logrus.WithField("task_type", t.Type())

	var payload tasks.PresenceSweepPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logCtx.WithError(err).Error("Failed to unmarshal task payload")
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	deadline := payload.Deadline
	if deadline.IsZero() {
		deadline = time.Now().UTC()
	}

	swept, err := h.syncService.SweepExpired(ctx, deadline)
	if err != nil {
		logCtx.WithError(err).Error("Presence sweep failed")
		return fmt.Errorf("presence sweep: %w", err)
	}
	if swept > 0 {
		logCtx.WithField("swept", swept).Info("Presence sweep completed")
	}
	return nil
}
