package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"chatroom-sync/internal/domain"
	"chatroom-sync/internal/repository"
	"chatroom-sync/internal/repository/mocks"
	"chatroom-sync/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newRoomService(roomRepo *mocks.RoomRepository, messageRepo *mocks.MessageRepository, presenceRepo *mocks.PresenceRepository) *service.RoomService {
	return service.NewRoomService(roomRepo, messageRepo, presenceRepo)
}

// --- 测试 ListRooms 方法 ---

func TestRoomService_ListRooms_Defaults(t *testing.T) {
	// Arrange: 不带任何参数时默认按最近活跃降序, limit 50
	mockRoomRepo := new(mocks.RoomRepository)
	roomService := newRoomService(mockRoomRepo, new(mocks.MessageRepository), new(mocks.PresenceRepository))
	ctx := context.Background()

	rooms := []domain.Room{{Name: "general"}, {Name: "random"}}
	mockRoomRepo.On("List", ctx, repository.ListOptions{
		SortKey: repository.SortByLastMessageAt,
		Order:   "desc",
		Limit:   50,
	}).Return(rooms, int64(2), nil).Once()

	// Act
	result, total, err := roomService.ListRooms(ctx, "", "", 0)

	// Assert
	assert.NoError(t, err)
	assert.Len(t, result, 2)
	assert.Equal(t, int64(2), total)

	// Verify
	mockRoomRepo.AssertExpectations(t)
}

func TestRoomService_ListRooms_ClampsLimit(t *testing.T) {
	// Arrange: 超出上限的 limit 被钳制到 100
	mockRoomRepo := new(mocks.RoomRepository)
	roomService := newRoomService(mockRoomRepo, new(mocks.MessageRepository), new(mocks.PresenceRepository))
	ctx := context.Background()

	mockRoomRepo.On("List", ctx, repository.ListOptions{
		SortKey: repository.SortByUserCount,
		Order:   "asc",
		Limit:   100,
	}).Return([]domain.Room{}, int64(0), nil).Once()

	// Act
	_, _, err := roomService.ListRooms(ctx, "userCount", "asc", 5000)

	// Assert
	assert.NoError(t, err)
	mockRoomRepo.AssertExpectations(t)
}

func TestRoomService_ListRooms_RejectsUnknownSortKey(t *testing.T) {
	// Arrange: 未知排序键被拒绝而不是静默回退
	mockRoomRepo := new(mocks.RoomRepository)
	roomService := newRoomService(mockRoomRepo, new(mocks.MessageRepository), new(mocks.PresenceRepository))

	// Act
	_, _, err := roomService.ListRooms(context.Background(), "creator; DROP TABLE rooms", "desc", 10)

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrInvalidSortKey))
	mockRoomRepo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestRoomService_ListRooms_UnknownOrderFallsBackToDesc(t *testing.T) {
	// Arrange: order 只认 "asc", 其余一律按 "desc" 处理
	mockRoomRepo := new(mocks.RoomRepository)
	roomService := newRoomService(mockRoomRepo, new(mocks.MessageRepository), new(mocks.PresenceRepository))
	ctx := context.Background()

	mockRoomRepo.On("List", ctx, repository.ListOptions{
		SortKey: repository.SortByCreatedAt,
		Order:   "desc",
		Limit:   50,
	}).Return([]domain.Room{}, int64(0), nil).Once()

	// Act
	_, _, err := roomService.ListRooms(ctx, "createdAt", "sideways", 0)

	// Assert
	assert.NoError(t, err)
	mockRoomRepo.AssertExpectations(t)
}

// --- 测试 RecentMessages 方法 ---

func TestRoomService_RecentMessages_UsesWindowLimit(t *testing.T) {
	// Arrange
	mockMessageRepo := new(mocks.MessageRepository)
	roomService := newRoomService(new(mocks.RoomRepository), mockMessageRepo, new(mocks.PresenceRepository))
	ctx := context.Background()

	window := []domain.Message{
		{ID: 1, RoomName: "general", Username: "alice", Content: "first"},
		{ID: 2, RoomName: "general", Username: "bob", Content: "second"},
	}
	mockMessageRepo.On("RecentWindow", ctx, "general", service.RecentWindowLimit).
		Return(window, nil).Once()

	// Act: 房间名在边界被折叠为小写
	messages, err := roomService.RecentMessages(ctx, "GENERAL")

	// Assert
	assert.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "first", messages[0].Content, "窗口应保持升序")

	// Verify
	mockMessageRepo.AssertExpectations(t)
}

// --- 测试 RoomDetails 方法 ---

func TestRoomService_RoomDetails_Success(t *testing.T) {
	// Arrange
	mockRoomRepo := new(mocks.RoomRepository)
	mockPresenceRepo := new(mocks.PresenceRepository)
	roomService := newRoomService(mockRoomRepo, new(mocks.MessageRepository), mockPresenceRepo)
	ctx := context.Background()

	lastAt := time.Now().UTC()
	room := &domain.Room{Name: "general", UserCount: 2, MessageCount: 10, LastMessageAt: &lastAt}
	entries := []domain.PresenceEntry{{Room: "general", Username: "alice"}, {Room: "general", Username: "bob"}}

	mockRoomRepo.On("FindByName", ctx, "general").Return(room, nil).Once()
	mockPresenceRepo.On("List", ctx, "general").Return(entries, nil).Once()

	// Act
	roomData, users, err := roomService.RoomDetails(ctx, "general")

	// Assert
	assert.NoError(t, err)
	require.NotNil(t, roomData)
	assert.Equal(t, 2, roomData.UserCount)
	assert.Len(t, users, 2)

	// Verify
	mockRoomRepo.AssertExpectations(t)
	mockPresenceRepo.AssertExpectations(t)
}

func TestRoomService_RoomDetails_NotFound(t *testing.T) {
	// Arrange
	mockRoomRepo := new(mocks.RoomRepository)
	mockPresenceRepo := new(mocks.PresenceRepository)
	roomService := newRoomService(mockRoomRepo, new(mocks.MessageRepository), mockPresenceRepo)
	ctx := context.Background()

	mockRoomRepo.On("FindByName", ctx, "ghost").Return(nil, repository.ErrRoomNotFound).Once()

	// Act
	_, _, err := roomService.RoomDetails(ctx, "ghost")

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrRoomNotFound))
	mockPresenceRepo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}
