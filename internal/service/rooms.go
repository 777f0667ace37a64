package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"chatroom-sync/internal/domain"
	"chatroom-sync/internal/repository"
)

// 房间列表的默认/上限参数。
const (
	defaultListLimit = 50
	maxListLimit     = 100
	// RecentWindowLimit 是历史窗口的大小：每个房间只保留最近这么多条可检索。
	RecentWindowLimit = 100
)

// validSortKeys 是房间列表允许的排序键白名单。
// 未知键被拒绝而不是静默回退，让错误的调用大声失败。
var validSortKeys = map[string]bool{
	repository.SortByLastMessageAt: true,
	repository.SortByUserCount:     true,
	repository.SortByCreatedAt:     true,
	repository.SortByMessageCount:  true,
}

// RoomService 负责房间的只读视图：列表、历史窗口、在场用户和详情。
// 写路径全部归 SyncService 所有。
type RoomService struct {
	roomRepo     repository.RoomRepository
	messageRepo  repository.MessageRepository
	presenceRepo repository.PresenceRepository
}

// NewRoomService 创建 RoomService 实例
func NewRoomService(
	roomRepo repository.RoomRepository,
	messageRepo repository.MessageRepository,
	presenceRepo repository.PresenceRepository,
) *RoomService {
	if roomRepo == nil {
		panic("RoomRepository cannot be nil for RoomService")
	}
	if messageRepo == nil {
		panic("MessageRepository cannot be nil for RoomService")
	}
	if presenceRepo == nil {
		panic("PresenceRepository cannot be nil for RoomService")
	}
	return &RoomService{
		roomRepo:     roomRepo,
		messageRepo:  messageRepo,
		presenceRepo: presenceRepo,
	}
}

// ListRooms 按给定排序返回房间列表和总数。
// sortKey 为空时默认按最近活跃排序；order 只认 "asc"，其余一律按 "desc" 处理。
func (s *RoomService) ListRooms(ctx context.Context, sortKey, order string, limit int) ([]domain.Room, int64, error) {
	if sortKey == "" {
		sortKey = repository.SortByLastMessageAt
	}
	if !validSortKeys[sortKey] {
		return nil, 0, ErrInvalidSortKey
	}
	if order != "asc" {
		order = "desc"
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	rooms, total, err := s.roomRepo.List(ctx, repository.ListOptions{
		SortKey: sortKey,
		Order:   order,
		Limit:   limit,
	})
	if err != nil {
		logrus.WithError(err).Error("ListRooms: repository error")
		return nil, 0, mapRepoError(err)
	}
	return rooms, total, nil
}

// RecentMessages 返回房间最近的消息窗口（升序，至多 RecentWindowLimit 条）。
func (s *RoomService) RecentMessages(ctx context.Context, room string) ([]domain.Message, error) {
	room = NormalizeRoom(room)
	if room == "" {
		return nil, ErrMissingRoom
	}
	messages, err := s.messageRepo.RecentWindow(ctx, room, RecentWindowLimit)
	if err != nil {
		logrus.WithError(err).WithField("room", room).Error("RecentMessages: repository error")
		return nil, mapRepoError(err)
	}
	return messages, nil
}

// ActiveUsers 返回房间内未过期的在场用户。
func (s *RoomService) ActiveUsers(ctx context.Context, room string) ([]domain.PresenceEntry, error) {
	room = NormalizeRoom(room)
	if room == "" {
		return nil, ErrMissingRoom
	}
	entries, err := s.presenceRepo.List(ctx, room)
	if err != nil {
		logrus.WithError(err).WithField("room", room).Error("ActiveUsers: repository error")
		return nil, mapRepoError(err)
	}
	return entries, nil
}

// RoomDetails 返回房间聚合和当前在场用户。
// 房间不存在时返回 ErrRoomNotFound。
func (s *RoomService) RoomDetails(ctx context.Context, room string) (*domain.Room, []domain.PresenceEntry, error) {
	room = NormalizeRoom(room)
	if room == "" {
		return nil, nil, ErrMissingRoom
	}
	logCtx := logrus.WithField("room", room)

	roomData, err := s.roomRepo.FindByName(ctx, room)
	if err != nil {
		logCtx.WithError(err).Warn("RoomDetails: room lookup failed")
		return nil, nil, mapRepoError(err)
	}

	entries, err := s.presenceRepo.List(ctx, room)
	if err != nil {
		logCtx.WithError(err).Error("RoomDetails: presence lookup failed")
		return nil, nil, mapRepoError(err)
	}
	return roomData, entries, nil
}
