package service_test // 测试包

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	// 导入必要的包
	"chatroom-sync/internal/domain"
	"chatroom-sync/internal/repository/mocks" // 导入 Mock 实现
	"chatroom-sync/internal/service"          // 导入被测试的包
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test" // 导入日志断言 Hook
	"github.com/stretchr/testify/assert"            // 导入断言库
	"github.com/stretchr/testify/mock"              // 导入 Mock 库
	"github.com/stretchr/testify/require"           // 导入 Require 断言库
)

// newSyncService 组装一个全 Mock 依赖的引擎实例
func newSyncService(roomRepo *mocks.RoomRepository, messageRepo *mocks.MessageRepository, presenceRepo *mocks.PresenceRepository, bus *mocks.EventBus) *service.SyncService {
	return service.NewSyncService(roomRepo, messageRepo, presenceRepo, bus, nil)
}

// --- 测试 Join 方法 ---

func TestSyncService_Join_Success(t *testing.T) {
	// Arrange
	mockRoomRepo := new(mocks.RoomRepository)
	mockMessageRepo := new(mocks.MessageRepository)
	mockPresenceRepo := new(mocks.PresenceRepository)
	mockBus := new(mocks.EventBus)
	syncService := newSyncService(mockRoomRepo, mockMessageRepo, mockPresenceRepo, mockBus)

	ctx := context.Background()
	joinedAt := time.Now().UTC()
	entry := &domain.PresenceEntry{ID: "uuid-1", Room: "general", Username: "alice", JoinedAt: joinedAt}

	// 设置 Mock 预期:
	// 1. 房间先被确保存在 (惰性创建, creator = 首个加入者)
	mockRoomRepo.On("EnsureExists", ctx, "general", "alice").
		Return(&domain.Room{Name: "general", Creator: "alice"}, nil).Once()
	// 2. 在场条目被创建 (created = true)
	mockPresenceRepo.On("Join", ctx, "general", "alice").Return(entry, true, nil).Once()
	// 3. 聚合计数递增
	mockRoomRepo.On("IncrementUserCount", ctx, "general").Return(nil).Once()
	// 4. UserJoined 事件被发布, 带来源标识
	mockBus.On("Publish", ctx, mock.MatchedBy(func(event domain.Event) bool {
		assert.Equal(t, domain.EventUserJoined, event.Type)
		assert.Equal(t, "general", event.Room)
		assert.Equal(t, "alice", event.Username)
		assert.Equal(t, joinedAt, event.Timestamp)
		assert.Equal(t, syncService.InstanceID(), event.Origin, "事件应携带本实例的 Origin")
		return true
	})).Return(nil).Once()

	// Act
	result, err := syncService.Join(ctx, "General", "alice")

	// Assert
	assert.NoError(t, err, "成功加入时不应有错误")
	require.NotNil(t, result)
	assert.Equal(t, "uuid-1", result.ID)

	// Verify
	mockRoomRepo.AssertExpectations(t)
	mockPresenceRepo.AssertExpectations(t)
	mockBus.AssertExpectations(t)
}

func TestSyncService_Join_RefreshIsIdempotent(t *testing.T) {
	// Arrange: (room, username) 已在场, Join 只是刷新过期时间
	mockRoomRepo := new(mocks.RoomRepository)
	mockMessageRepo := new(mocks.MessageRepository)
	mockPresenceRepo := new(mocks.PresenceRepository)
	mockBus := new(mocks.EventBus)
	syncService := newSyncService(mockRoomRepo, mockMessageRepo, mockPresenceRepo, mockBus)
	ctx := context.Background()

	existing := &domain.PresenceEntry{ID: "uuid-1", Room: "general", Username: "alice", JoinedAt: time.Now().Add(-time.Minute)}
	mockRoomRepo.On("EnsureExists", ctx, "general", "alice").
		Return(&domain.Room{Name: "general"}, nil).Once()
	mockPresenceRepo.On("Join", ctx, "general", "alice").Return(existing, false, nil).Once()

	// Act
	result, err := syncService.Join(ctx, "general", "alice")

	// Assert: 原条目原样返回, ID 不变
	assert.NoError(t, err, "重复加入永远不应失败")
	require.NotNil(t, result)
	assert.Equal(t, "uuid-1", result.ID, "刷新应保留原条目的 ID")

	// Verify: 计数没有被重复递增, 事件没有被重复发布
	mockRoomRepo.AssertNotCalled(t, "IncrementUserCount", mock.Anything, mock.Anything)
	mockBus.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	mockRoomRepo.AssertExpectations(t)
	mockPresenceRepo.AssertExpectations(t)
}

func TestSyncService_Join_MissingUsername(t *testing.T) {
	// Arrange
	mockRoomRepo := new(mocks.RoomRepository)
	mockPresenceRepo := new(mocks.PresenceRepository)
	mockBus := new(mocks.EventBus)
	syncService := newSyncService(mockRoomRepo, new(mocks.MessageRepository), mockPresenceRepo, mockBus)

	// Act
	_, err := syncService.Join(context.Background(), "general", "   ")

	// Assert: 校验失败发生在任何存储变更之前
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrMissingUsername))
	mockRoomRepo.AssertNotCalled(t, "EnsureExists", mock.Anything, mock.Anything, mock.Anything)
	mockPresenceRepo.AssertNotCalled(t, "Join", mock.Anything, mock.Anything, mock.Anything)
}

// --- 测试 Leave 方法 ---

func TestSyncService_Leave_Success(t *testing.T) {
	// Arrange
	mockRoomRepo := new(mocks.RoomRepository)
	mockPresenceRepo := new(mocks.PresenceRepository)
	mockBus := new(mocks.EventBus)
	syncService := newSyncService(mockRoomRepo, new(mocks.MessageRepository), mockPresenceRepo, mockBus)
	ctx := context.Background()

	mockPresenceRepo.On("Leave", ctx, "general", "alice").Return(true, nil).Once()
	mockRoomRepo.On("DecrementUserCount", ctx, "general").Return(nil).Once()
	mockBus.On("Publish", ctx, mock.MatchedBy(func(event domain.Event) bool {
		return event.Type == domain.EventUserLeft && event.Room == "general" && event.Username == "alice"
	})).Return(nil).Once()

	// Act
	removed, err := syncService.Leave(ctx, "general", "alice")

	// Assert
	assert.NoError(t, err)
	assert.True(t, removed)

	// Verify
	mockRoomRepo.AssertExpectations(t)
	mockPresenceRepo.AssertExpectations(t)
	mockBus.AssertExpectations(t)
}

func TestSyncService_Leave_AbsentIsNoOp(t *testing.T) {
	// Arrange: 条目不存在 (重复离开, 或已被 TTL 回收)
	mockRoomRepo := new(mocks.RoomRepository)
	mockPresenceRepo := new(mocks.PresenceRepository)
	mockBus := new(mocks.EventBus)
	syncService := newSyncService(mockRoomRepo, new(mocks.MessageRepository), mockPresenceRepo, mockBus)
	ctx := context.Background()

	mockPresenceRepo.On("Leave", ctx, "general", "alice").Return(false, nil).Once()

	// Act
	removed, err := syncService.Leave(ctx, "general", "alice")

	// Assert: 成功的 no-op
	assert.NoError(t, err, "离开不在的房间应是成功的 no-op")
	assert.False(t, removed)

	// Verify: 计数没有被递减, 事件没有被发布 (防止与 TTL 回收竞争时双重递减)
	mockRoomRepo.AssertNotCalled(t, "DecrementUserCount", mock.Anything, mock.Anything)
	mockBus.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	mockPresenceRepo.AssertExpectations(t)
}

func TestSyncService_Leave_DecrementFailureFlagsReconciliation(t *testing.T) {
	// Arrange: 条目已删除后计数递减失败。这次递减不会再被重试,
	// 引擎必须把房间标记为需要校正, 供运维按日志修复计数漂移。
	hook := logtest.NewGlobal()
	defer hook.Reset()

	mockRoomRepo := new(mocks.RoomRepository)
	mockPresenceRepo := new(mocks.PresenceRepository)
	mockBus := new(mocks.EventBus)
	syncService := newSyncService(mockRoomRepo, new(mocks.MessageRepository), mockPresenceRepo, mockBus)
	ctx := context.Background()

	mockPresenceRepo.On("Leave", ctx, "general", "alice").Return(true, nil).Once()
	mockRoomRepo.On("DecrementUserCount", ctx, "general").Return(errors.New("db gone")).Once()

	// Act
	_, err := syncService.Leave(ctx, "general", "alice")

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrStoreUnavailable))
	mockBus.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)

	// 日志里必须出现带 needs_reconciliation 标记的 Error 条目
	flagged := false
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.ErrorLevel {
			if v, ok := entry.Data["needs_reconciliation"]; ok && v == true {
				flagged = true
			}
		}
	}
	assert.True(t, flagged, "计数漂移必须以 needs_reconciliation 标记记录")
}

// --- 测试 SendMessage 方法 ---

func TestSyncService_SendMessage_PersistBeforePublish(t *testing.T) {
	// Arrange
	mockRoomRepo := new(mocks.RoomRepository)
	mockMessageRepo := new(mocks.MessageRepository)
	mockPresenceRepo := new(mocks.PresenceRepository)
	mockBus := new(mocks.EventBus)
	syncService := newSyncService(mockRoomRepo, mockMessageRepo, mockPresenceRepo, mockBus)
	ctx := context.Background()

	sentAt := time.Now().UTC()
	stored := &domain.Message{ID: 7, RoomName: "general", Username: "alice", Content: "hello", Timestamp: sentAt}

	appended := false
	aggregated := false

	mockRoomRepo.On("EnsureExists", ctx, "general", "alice").
		Return(&domain.Room{Name: "general"}, nil).Once()
	mockMessageRepo.On("Append", ctx, "general", "alice", "hello", mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) { appended = true }).
		Return(stored, nil).Once()
	mockRoomRepo.On("ApplyMessage", ctx, "general", "alice", "hello", stored).
		Run(func(args mock.Arguments) {
			assert.True(t, appended, "聚合更新必须发生在日志追加之后")
			aggregated = true
		}).
		Return(nil).Once()
	mockBus.On("Publish", ctx, mock.MatchedBy(func(event domain.Event) bool {
		assert.True(t, aggregated, "事件发布必须发生在所有持久化写入之后")
		return event.Type == domain.EventMessageSent && event.Content == "hello"
	})).Return(nil).Once()

	// Act
	msg, err := syncService.SendMessage(ctx, "general", "alice", "hello")

	// Assert
	assert.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, uint64(7), msg.ID)

	// Verify
	mockRoomRepo.AssertExpectations(t)
	mockMessageRepo.AssertExpectations(t)
	mockBus.AssertExpectations(t)
}

func TestSyncService_SendMessage_TruncatesPreviewOnly(t *testing.T) {
	// Arrange: 120 字符的消息, 预览截断到 50 字符 + 省略号, 消息本体保持完整
	mockRoomRepo := new(mocks.RoomRepository)
	mockMessageRepo := new(mocks.MessageRepository)
	mockBus := new(mocks.EventBus)
	syncService := newSyncService(mockRoomRepo, mockMessageRepo, new(mocks.PresenceRepository), mockBus)
	ctx := context.Background()

	content := strings.Repeat("x", 120)
	wantPreview := strings.Repeat("x", 50) + "..."
	stored := &domain.Message{ID: 1, RoomName: "general", Username: "alice", Content: content}

	mockRoomRepo.On("EnsureExists", ctx, "general", "alice").
		Return(&domain.Room{Name: "general"}, nil).Once()
	mockMessageRepo.On("Append", ctx, "general", "alice", content, mock.AnythingOfType("time.Time")).
		Return(stored, nil).Once()
	mockRoomRepo.On("ApplyMessage", ctx, "general", "alice", wantPreview, stored).Return(nil).Once()
	mockBus.On("Publish", ctx, mock.MatchedBy(func(event domain.Event) bool {
		// 事件里携带的是完整内容, 截断只影响聚合预览
		return event.Content == content
	})).Return(nil).Once()

	// Act
	_, err := syncService.SendMessage(ctx, "general", "alice", content)

	// Assert
	assert.NoError(t, err)
	mockRoomRepo.AssertExpectations(t)
	mockMessageRepo.AssertExpectations(t)
	mockBus.AssertExpectations(t)
}

func TestSyncService_SendMessage_ContentTooLong(t *testing.T) {
	// Arrange
	mockRoomRepo := new(mocks.RoomRepository)
	mockMessageRepo := new(mocks.MessageRepository)
	syncService := newSyncService(mockRoomRepo, mockMessageRepo, new(mocks.PresenceRepository), new(mocks.EventBus))

	// Act: 501 个字符, 超出上限一个
	_, err := syncService.SendMessage(context.Background(), "general", "alice", strings.Repeat("a", domain.MaxContentLength+1))

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrContentTooLong))
	mockRoomRepo.AssertNotCalled(t, "EnsureExists", mock.Anything, mock.Anything, mock.Anything)
	mockMessageRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSyncService_SendMessage_AppendFailsBeforePublish(t *testing.T) {
	// Arrange: 日志追加失败时必须中止, 不发布未提交状态的事件
	mockRoomRepo := new(mocks.RoomRepository)
	mockMessageRepo := new(mocks.MessageRepository)
	mockBus := new(mocks.EventBus)
	syncService := newSyncService(mockRoomRepo, mockMessageRepo, new(mocks.PresenceRepository), mockBus)
	ctx := context.Background()

	mockRoomRepo.On("EnsureExists", ctx, "general", "alice").
		Return(&domain.Room{Name: "general"}, nil).Once()
	mockMessageRepo.On("Append", ctx, "general", "alice", "hello", mock.AnythingOfType("time.Time")).
		Return(nil, errors.New("db gone")).Once()

	// Act
	_, err := syncService.SendMessage(ctx, "general", "alice", "hello")

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrStoreUnavailable))
	mockRoomRepo.AssertNotCalled(t, "ApplyMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockBus.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestSyncService_SendMessage_PublishFailureIsSwallowed(t *testing.T) {
	// Arrange: 持久化已提交后总线失败, 调用方仍然得到成功
	mockRoomRepo := new(mocks.RoomRepository)
	mockMessageRepo := new(mocks.MessageRepository)
	mockBus := new(mocks.EventBus)
	syncService := newSyncService(mockRoomRepo, mockMessageRepo, new(mocks.PresenceRepository), mockBus)
	ctx := context.Background()

	stored := &domain.Message{ID: 3, RoomName: "general", Username: "alice", Content: "hi"}
	mockRoomRepo.On("EnsureExists", ctx, "general", "alice").
		Return(&domain.Room{Name: "general"}, nil).Once()
	mockMessageRepo.On("Append", ctx, "general", "alice", "hi", mock.AnythingOfType("time.Time")).
		Return(stored, nil).Once()
	mockRoomRepo.On("ApplyMessage", ctx, "general", "alice", "hi", stored).Return(nil).Once()
	mockBus.On("Publish", ctx, mock.AnythingOfType("domain.Event")).
		Return(errors.New("bus down")).Once()

	// Act
	msg, err := syncService.SendMessage(ctx, "general", "alice", "hi")

	// Assert: 状态已持久化, 发布失败只降级实时性, 不回滚也不报错
	assert.NoError(t, err, "持久化提交后的发布失败不应向调用方报错")
	assert.NotNil(t, msg)
	mockBus.AssertExpectations(t)
}

// --- 测试 SweepExpired 方法 ---

func TestSyncService_SweepExpired_EmitsLeaveForEachEntry(t *testing.T) {
	// Arrange: 两个不同房间各有一条过期条目
	mockRoomRepo := new(mocks.RoomRepository)
	mockPresenceRepo := new(mocks.PresenceRepository)
	mockBus := new(mocks.EventBus)
	syncService := newSyncService(mockRoomRepo, new(mocks.MessageRepository), mockPresenceRepo, mockBus)
	ctx := context.Background()
	now := time.Now().UTC()

	expired := []domain.PresenceEntry{
		{ID: "u1", Room: "general", Username: "alice"},
		{ID: "u2", Room: "random", Username: "bob"},
	}
	mockPresenceRepo.On("Sweep", ctx, now).Return(expired, nil).Once()
	mockRoomRepo.On("DecrementUserCount", ctx, "general").Return(nil).Once()
	mockRoomRepo.On("DecrementUserCount", ctx, "random").Return(nil).Once()
	mockBus.On("Publish", ctx, mock.MatchedBy(func(event domain.Event) bool {
		return event.Type == domain.EventUserLeft && event.Room == "general" && event.Username == "alice"
	})).Return(nil).Once()
	mockBus.On("Publish", ctx, mock.MatchedBy(func(event domain.Event) bool {
		return event.Type == domain.EventUserLeft && event.Room == "random" && event.Username == "bob"
	})).Return(nil).Once()

	// Act
	swept, err := syncService.SweepExpired(ctx, now)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 2, swept)

	// Verify
	mockPresenceRepo.AssertExpectations(t)
	mockRoomRepo.AssertExpectations(t)
	mockBus.AssertExpectations(t)
}

func TestSyncService_SweepExpired_ContinuesAfterDecrementError(t *testing.T) {
	// Arrange: 第一个房间的计数递减失败, 第二条仍然被处理
	mockRoomRepo := new(mocks.RoomRepository)
	mockPresenceRepo := new(mocks.PresenceRepository)
	mockBus := new(mocks.EventBus)
	syncService := newSyncService(mockRoomRepo, new(mocks.MessageRepository), mockPresenceRepo, mockBus)
	ctx := context.Background()
	now := time.Now().UTC()

	expired := []domain.PresenceEntry{
		{ID: "u1", Room: "general", Username: "alice"},
		{ID: "u2", Room: "random", Username: "bob"},
	}
	mockPresenceRepo.On("Sweep", ctx, now).Return(expired, nil).Once()
	mockRoomRepo.On("DecrementUserCount", ctx, "general").Return(errors.New("db gone")).Once()
	mockRoomRepo.On("DecrementUserCount", ctx, "random").Return(nil).Once()
	mockBus.On("Publish", ctx, mock.MatchedBy(func(event domain.Event) bool {
		return event.Room == "random"
	})).Return(nil).Once()

	// Act
	swept, err := syncService.SweepExpired(ctx, now)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 2, swept)

	// Verify: 失败的那个房间没有发布事件
	mockBus.AssertNumberOfCalls(t, "Publish", 1)
	mockRoomRepo.AssertExpectations(t)
}

// --- 测试总线中继 ---

// relayRecorder 记录被转发到本地投影的事件
type relayRecorder struct {
	events chan domain.Event
}

func (r *relayRecorder) BroadcastEvent(event domain.Event) {
	r.events <- event
}

func TestSyncService_Run_ForwardsBusEventsToBroadcaster(t *testing.T) {
	// Arrange
	mockRoomRepo := new(mocks.RoomRepository)
	mockPresenceRepo := new(mocks.PresenceRepository)
	mockBus := new(mocks.EventBus)
	mockSub := new(mocks.Subscription)
	recorder := &relayRecorder{events: make(chan domain.Event, 1)}
	syncService := service.NewSyncService(mockRoomRepo, new(mocks.MessageRepository), mockPresenceRepo, mockBus, recorder)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	remote := domain.Event{
		Type:      domain.EventMessageSent,
		Room:      "general",
		Username:  "bob",
		Content:   "from another instance",
		Timestamp: time.Now().UTC(),
		Origin:    "remote-instance",
	}
	eventCh := make(chan domain.Event, 1)
	eventCh <- remote

	mockBus.On("SubscribeAll", ctx).Return(mockSub, nil).Once()
	mockSub.On("Events").Return((<-chan domain.Event)(eventCh))
	mockSub.On("Close").Return(nil).Once()

	// Act: 在后台运行中继, 收到转发的事件后停止
	done := make(chan error, 1)
	go func() { done <- syncService.Run(ctx) }()

	forwarded := <-recorder.events
	cancel()
	err := <-done

	// Assert: 远端事件被原样转发给本地投影, 不作用到存储
	assert.NoError(t, err)
	assert.Equal(t, remote, forwarded)
	mockRoomRepo.AssertNotCalled(t, "IncrementUserCount", mock.Anything, mock.Anything)
	mockRoomRepo.AssertNotCalled(t, "ApplyMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockBus.AssertExpectations(t)
}
