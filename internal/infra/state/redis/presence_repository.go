package redisstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"chatroom-sync/internal/domain"
)

// RedisPresenceRepository 是 PresenceRepository 接口的 Redis 实现。
// 每个房间一个 Hash（field = username，value = JSON 编码的条目），
// 外加一个全局 ZSet 按 expiresAt（毫秒）排序，供后台 Sweep 跨房间扫描到期条目。
type RedisPresenceRepository struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisPresenceRepository 创建 RedisPresenceRepository 实例
func NewRedisPresenceRepository(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisPresenceRepository {
	if client == nil {
		panic("redis client cannot be nil for RedisPresenceRepository")
	}
	if keyPrefix == "" {
		keyPrefix = "chat:"
	}
	if ttl <= 0 {
		ttl = domain.DefaultPresenceTTL
	}
	return &RedisPresenceRepository{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

// --- Key Generation Helpers ---

func (r *RedisPresenceRepository) roomPresenceKey(room string) string {
	return fmt.Sprintf("%spresence:room:%s", r.keyPrefix, room)
}

func (r *RedisPresenceRepository) expiryIndexKey() string {
	return r.keyPrefix + "presence:expiry"
}

// expiryMember 将 (room, username) 编码为 ZSet 成员。
// 房间名来自 URL 路径段，不会含 "/"，所以第一个 "/" 之前总是房间名。
func expiryMember(room, username string) string {
	return room + "/" + username
}

func splitExpiryMember(member string) (room, username string, ok bool) {
	parts := strings.SplitN(member, "/", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// --- PresenceRepository Interface Implementation ---

// Join 实现幂等加入：已有条目只刷新过期时间，ID 和 JoinedAt 保持不变。
func (r *RedisPresenceRepository) Join(ctx context.Context, room, username string) (*domain.PresenceEntry, bool, error) {
	key := r.roomPresenceKey(room)
	now := time.Now().UTC()

	var entry domain.PresenceEntry
	existing, err := r.client.HGet(ctx, key, username).Result()
	switch {
	case err == nil:
		if unmarshalErr := json.Unmarshal([]byte(existing), &entry); unmarshalErr != nil {
			// 损坏的条目当作不存在处理，重新创建
			logrus.WithError(unmarshalErr).WithFields(logrus.Fields{
				"room": room, "username": username,
			}).Warn("Presence entry corrupted, recreating")
			entry = domain.PresenceEntry{}
		}
	case errors.Is(err, redis.Nil):
		// 不存在，创建新条目
	default:
		return nil, false, fmt.Errorf("redis: failed to read presence entry for %s/%s: %w", room, username, err)
	}

	created := entry.ID == ""
	if created {
		entry = domain.PresenceEntry{
			ID:       uuid.NewString(),
			Room:     room,
			Username: username,
			JoinedAt: now,
		}
	}
	entry.ExpiresAt = now.Add(r.ttl)

	entryBytes, err := json.Marshal(entry)
	if err != nil {
		return nil, false, fmt.Errorf("redis: failed to marshal presence entry for %s/%s: %w", room, username, err)
	}

	pipe := r.client.Pipeline()
	pipe.HSet(ctx, key, username, string(entryBytes))
	pipe.ZAdd(ctx, r.expiryIndexKey(), &redis.Z{
		Score:  float64(entry.ExpiresAt.UnixMilli()),
		Member: expiryMember(room, username),
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, false, fmt.Errorf("redis: failed to store presence entry for %s/%s: %w", room, username, err)
	}
	return &entry, created, nil
}

// Leave 实现显式离开。返回是否真的删除了条目；离开不在的房间是成功的 no-op。
func (r *RedisPresenceRepository) Leave(ctx context.Context, room, username string) (bool, error) {
	pipe := r.client.Pipeline()
	delCmd := pipe.HDel(ctx, r.roomPresenceKey(room), username)
	pipe.ZRem(ctx, r.expiryIndexKey(), expiryMember(room, username))
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("redis: failed to remove presence entry for %s/%s: %w", room, username, err)
	}
	return delCmd.Val() > 0, nil
}

// List 实现获取房间内未过期的在场条目
func (r *RedisPresenceRepository) List(ctx context.Context, room string) ([]domain.PresenceEntry, error) {
	key := r.roomPresenceKey(room)
	entryMap, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: failed to list presence entries for room %s from %s: %w", room, key, err)
	}
	now := time.Now().UTC()
	entries := make([]domain.PresenceEntry, 0, len(entryMap))
	for username, entryStr := range entryMap {
		var entry domain.PresenceEntry
		if err := json.Unmarshal([]byte(entryStr), &entry); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"room": room, "username": username,
			}).Warn("Failed to unmarshal presence entry, skipping")
			continue
		}
		// 到期但尚未被 Sweep 回收的条目对读者不可见
		if entry.Expired(now) {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Sweep 实现被动回收：删除并返回所有 expiresAt <= now 的条目。
// ZSet 扫描和 Hash 读取之间条目可能刚被 Join 刷新过（新的 score 已写入），
// 这种条目会被跳过而不是误删。
func (r *RedisPresenceRepository) Sweep(ctx context.Context, now time.Time) ([]domain.PresenceEntry, error) {
	indexKey := r.expiryIndexKey()
	members, err := r.client.ZRangeByScore(ctx, indexKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: failed to scan expiry index %s: %w", indexKey, err)
	}

	expired := make([]domain.PresenceEntry, 0, len(members))
	for _, member := range members {
		room, username, ok := splitExpiryMember(member)
		if !ok {
			logrus.WithField("member", member).Warn("Malformed expiry index member, removing")
			r.client.ZRem(ctx, indexKey, member)
			continue
		}

		entryStr, err := r.client.HGet(ctx, r.roomPresenceKey(room), username).Result()
		if errors.Is(err, redis.Nil) {
			// 条目已被显式 Leave 删除，只清理索引
			r.client.ZRem(ctx, indexKey, member)
			continue
		}
		if err != nil {
			return expired, fmt.Errorf("redis: failed to read presence entry for %s/%s during sweep: %w", room, username, err)
		}

		var entry domain.PresenceEntry
		if err := json.Unmarshal([]byte(entryStr), &entry); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"room": room, "username": username,
			}).Warn("Failed to unmarshal presence entry during sweep, removing")
		} else if !entry.Expired(now) {
			// 扫描后刚被刷新，新 score 已在索引里，保留条目
			continue
		}

		pipe := r.client.Pipeline()
		pipe.HDel(ctx, r.roomPresenceKey(room), username)
		pipe.ZRem(ctx, indexKey, member)
		if _, err := pipe.Exec(ctx); err != nil {
			return expired, fmt.Errorf("redis: failed to remove expired entry for %s/%s: %w", room, username, err)
		}
		if entry.ID != "" {
			expired = append(expired, entry)
		}
	}
	return expired, nil
}
