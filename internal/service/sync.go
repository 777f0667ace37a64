package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"chatroom-sync/internal/domain"
	"chatroom-sync/internal/repository"
)

// Broadcaster 是引擎把总线事件转发给本地实时订阅者投影（Hub）的出口。
type Broadcaster interface {
	BroadcastEvent(event domain.Event)
}

// SyncService 是房间状态同步引擎：接收客户端意图（join/leave/send），
// 按固定顺序作用到三个存储上，然后把产生的领域事件发布到总线；
// 同时消费总线上（包括其他引擎实例产生的）事件，转发给本地投影。
// 引擎独占三个存储的写路径。
type SyncService struct {
	roomRepo     repository.RoomRepository
	messageRepo  repository.MessageRepository
	presenceRepo repository.PresenceRepository
	bus          repository.EventBus
	broadcaster  Broadcaster // 可为 nil（例如纯 API 实例）
	instanceID   string
}

// NewSyncService 创建 SyncService 实例。broadcaster 可以为 nil。
func NewSyncService(
	roomRepo repository.RoomRepository,
	messageRepo repository.MessageRepository,
	presenceRepo repository.PresenceRepository,
	bus repository.EventBus,
	broadcaster Broadcaster,
) *SyncService {
	if roomRepo == nil {
		panic("RoomRepository cannot be nil for SyncService")
	}
	if messageRepo == nil {
		panic("MessageRepository cannot be nil for SyncService")
	}
	if presenceRepo == nil {
		panic("PresenceRepository cannot be nil for SyncService")
	}
	if bus == nil {
		panic("EventBus cannot be nil for SyncService")
	}
	return &SyncService{
		roomRepo:     roomRepo,
		messageRepo:  messageRepo,
		presenceRepo: presenceRepo,
		bus:          bus,
		broadcaster:  broadcaster,
		instanceID:   uuid.NewString(),
	}
}

// InstanceID 返回该引擎实例的来源标识（事件的 Origin 字段）。
func (s *SyncService) InstanceID() string {
	return s.instanceID
}

// NormalizeRoom 在每个边界把房间名折叠为小写键。
func NormalizeRoom(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Join 处理用户加入房间。
// 顺序是约定的一部分：房间和聚合计数必须在 join 事件发布之前存在，
// 这样并发的房间列表读取永远不会观察到指向不存在房间的 join 事件。
//	EnsureExists -> Presence.Join -> Aggregate.OnUserJoined -> Bus.Publish(UserJoined)
// 重复加入是幂等的：只刷新过期时间，不重复递增计数，也不重复发事件。
func (s *SyncService) Join(ctx context.Context, room, username string) (*domain.PresenceEntry, error) {
	username = strings.TrimSpace(username)
	room = NormalizeRoom(room)
	if username == "" {
		return nil, ErrMissingUsername
	}
	if room == "" {
		return nil, ErrMissingRoom
	}
	logCtx := logrus.WithFields(logrus.Fields{"room": room, "username": username})

	if _, err := s.roomRepo.EnsureExists(ctx, room, username); err != nil {
		logCtx.WithError(err).Error("Join: failed to ensure room exists")
		return nil, ErrStoreUnavailable
	}

	entry, created, err := s.presenceRepo.Join(ctx, room, username)
	if err != nil {
		logCtx.WithError(err).Error("Join: failed to store presence entry")
		return nil, ErrStoreUnavailable
	}

	if !created {
		// 幂等刷新：状态没有变化，聚合和总线都不再碰
		logCtx.Debug("Join: presence refreshed, no state change")
		return entry, nil
	}

	if err := s.roomRepo.IncrementUserCount(ctx, room); err != nil {
		logCtx.WithError(err).Error("Join: failed to increment user count")
		return nil, ErrStoreUnavailable
	}

	s.publish(ctx, domain.Event{
		Type:      domain.EventUserJoined,
		Room:      room,
		Username:  username,
		Timestamp: entry.JoinedAt,
		Origin:    s.instanceID,
	})
	logCtx.Info("User joined room")
	return entry, nil
}

// Leave 处理用户离开房间。
// 只有在场条目真的被删除时才递减聚合并发布事件——重复离开和 TTL
// 回收之间的竞争不会导致计数被重复递减。离开不在的房间是成功的 no-op。
func (s *SyncService) Leave(ctx context.Context, room, username string) (bool, error) {
	username = strings.TrimSpace(username)
	room = NormalizeRoom(room)
	if username == "" {
		return false, ErrMissingUsername
	}
	if room == "" {
		return false, ErrMissingRoom
	}
	logCtx := logrus.WithFields(logrus.Fields{"room": room, "username": username})

	removed, err := s.presenceRepo.Leave(ctx, room, username)
	if err != nil {
		logCtx.WithError(err).Error("Leave: failed to remove presence entry")
		return false, ErrStoreUnavailable
	}
	if !removed {
		logCtx.Debug("Leave: presence entry absent, no-op")
		return false, nil
	}

	if err := s.roomRepo.DecrementUserCount(ctx, room); err != nil {
		// 在场条目已删除, 这次递减不会再被重试: 计数偏高, 直到人工校正
		logCtx.WithError(err).WithField("needs_reconciliation", true).
			Error("Leave: presence entry removed but user count decrement failed, room counter is now inflated")
		return false, ErrStoreUnavailable
	}

	s.publish(ctx, domain.Event{
		Type:      domain.EventUserLeft,
		Room:      room,
		Username:  username,
		Timestamp: time.Now().UTC(),
		Origin:    s.instanceID,
	})
	logCtx.Info("User left room")
	return true, nil
}

// SendMessage 处理发送消息。
// 持久化写入先于发布：收到实时事件后重新拉取历史的客户端一定能看到这条消息。
//	Log.Append -> Aggregate.OnMessageSent -> Bus.Publish(MessageSent)
// 任何存储失败都在发布之前中止（不会发布底层状态未提交的事件）。
func (s *SyncService) SendMessage(ctx context.Context, room, username, content string) (*domain.Message, error) {
	username = strings.TrimSpace(username)
	room = NormalizeRoom(room)
	if username == "" {
		return nil, ErrMissingUsername
	}
	if room == "" {
		return nil, ErrMissingRoom
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrMissingContent
	}
	if len([]rune(content)) > domain.MaxContentLength {
		return nil, ErrContentTooLong
	}
	logCtx := logrus.WithFields(logrus.Fields{"room": room, "username": username})

	// 向未见过的房间发消息也会惰性创建它，保证聚合有处可记
	if _, err := s.roomRepo.EnsureExists(ctx, room, username); err != nil {
		logCtx.WithError(err).Error("SendMessage: failed to ensure room exists")
		return nil, ErrStoreUnavailable
	}

	msg, err := s.messageRepo.Append(ctx, room, username, content, time.Now().UTC())
	if err != nil {
		logCtx.WithError(err).Error("SendMessage: failed to append message")
		return nil, ErrStoreUnavailable
	}

	preview := domain.TruncatePreview(content)
	if err := s.roomRepo.ApplyMessage(ctx, room, username, preview, msg); err != nil {
		logCtx.WithError(err).Error("SendMessage: failed to update room aggregate")
		return nil, ErrStoreUnavailable
	}

	s.publish(ctx, domain.Event{
		Type:      domain.EventMessageSent,
		Room:      room,
		Username:  username,
		Content:   content,
		Timestamp: msg.Timestamp,
		Origin:    s.instanceID,
	})
	logCtx.Debug("Message sent")
	return msg, nil
}

// SweepExpired 回收过期的在场条目。
// 对每一条过期条目执行与显式 Leave 相同的尾部序列
// （Aggregate.OnUserLeft -> Bus.Publish(UserLeft)），
// 让聚合和实时客户端与静默断开的用户保持一致。
func (s *SyncService) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.presenceRepo.Sweep(ctx, now)
	if err != nil {
		logrus.WithError(err).Error("Sweep: failed to collect expired presence entries")
		return 0, ErrStoreUnavailable
	}

	for _, entry := range expired {
		logCtx := logrus.WithFields(logrus.Fields{"room": entry.Room, "username": entry.Username})
		if err := s.roomRepo.DecrementUserCount(ctx, entry.Room); err != nil {
			// 单个房间的失败不阻塞其余条目的回收; 条目已删除,
			// 这次递减不会再被重试: 计数偏高, 直到人工校正
			logCtx.WithError(err).WithField("needs_reconciliation", true).
				Error("Sweep: presence entry removed but user count decrement failed, room counter is now inflated")
			continue
		}
		s.publish(ctx, domain.Event{
			Type:      domain.EventUserLeft,
			Room:      entry.Room,
			Username:  entry.Username,
			Timestamp: now,
			Origin:    s.instanceID,
		})
		logCtx.Info("Expired presence entry swept")
	}
	return len(expired), nil
}

// Run 启动引擎的总线消费循环：订阅所有房间的主题，把每个事件
// （包括本实例回流的）转发给本地投影。ctx 取消时退出。
// 应该在一个单独的 goroutine 中运行。
func (s *SyncService) Run(ctx context.Context) error {
	sub, err := s.bus.SubscribeAll(ctx)
	if err != nil {
		return err
	}
	defer sub.Close()

	log := logrus.WithField("component", "sync_engine")
	log.Info("Bus relay is running...")

	for {
		select {
		case <-ctx.Done():
			log.Info("Bus relay stopping...")
			return nil
		case event, ok := <-sub.Events():
			if !ok {
				log.Warn("Bus subscription closed")
				return nil
			}
			s.handleBusEvent(event)
		}
	}
}

// handleBusEvent 处理一条入站总线事件。
// 存储是所有引擎实例共享的，发起调用已经提交了状态变更，
// 所以这里绝不把事件再次作用到存储上（天然杜绝重复的聚合更新）；
// Origin 标签用于区分本地回流和远端事件，便于追踪。
func (s *SyncService) handleBusEvent(event domain.Event) {
	logCtx := logrus.WithFields(logrus.Fields{
		"event_type": event.Type,
		"room":       event.Room,
		"remote":     event.Origin != s.instanceID,
	})
	logCtx.Debug("Bus event received")

	// 本地投影（实时订阅者）对本地和远端事件一视同仁
	if s.broadcaster != nil {
		s.broadcaster.BroadcastEvent(event)
	}
}

// publish 把事件发布到总线。发生在存储写入已提交之后：
// 发布失败只记录日志并吞掉——状态已经持久化，实时订阅者在下一次
// 轮询/重连前看到的是稍旧的视图（可接受的陈旧窗口）；重试发布反而
// 会在总线自身的至少一次重复之外引入更多重复投递。
func (s *SyncService) publish(ctx context.Context, event domain.Event) {
	if err := s.bus.Publish(ctx, event); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"event_type": event.Type,
			"room":       event.Room,
		}).Warn("Bus publish failed after durable write, live subscribers may lag")
	}
}

// mapRepoError 将仓库层错误映射到服务层错误。
func mapRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrRoomNotFound) {
		return ErrRoomNotFound
	}
	return ErrStoreUnavailable
}
