package redisbus

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"chatroom-sync/internal/domain"
	"chatroom-sync/internal/repository"
)

// subscriptionBuffer 是单个订阅的事件通道缓冲区大小。
const subscriptionBuffer = 256

// RedisEventBus 是 EventBus 接口的 Redis Pub/Sub 实现。
// 总线不持有任何状态，只负责主题命名、发布和订阅的扇出；
// 持久化存储才是事实来源，发布对调用方是 fire-and-forget。
type RedisEventBus struct {
	client *redis.Client
}

// NewRedisEventBus 创建 RedisEventBus 实例
func NewRedisEventBus(client *redis.Client) *RedisEventBus {
	if client == nil {
		panic("redis client cannot be nil for RedisEventBus")
	}
	return &RedisEventBus{client: client}
}

// Publish 将事件发布到其房间对应的主题
func (b *RedisEventBus) Publish(ctx context.Context, event domain.Event) error {
	topic, err := TopicFor(event.Type, event.Room)
	if err != nil {
		return err
	}
	payload, err := domain.EncodeEvent(event)
	if err != nil {
		return fmt.Errorf("bus: failed to encode %s event for room %s: %w", event.Type, event.Room, err)
	}
	if err := b.client.Publish(ctx, topic, payload).Err(); err != nil {
		logrus.WithFields(logrus.Fields{
			"topic":        topic,
			"event_type":   event.Type,
			"room":         event.Room,
			"payload_size": len(payload),
		}).WithError(err).Error("Redis publish failed")
		return fmt.Errorf("bus: failed to publish to topic %s: %w", topic, err)
	}
	return nil
}

// Subscribe 注册对一个房间全部三个主题的兴趣
func (b *RedisEventBus) Subscribe(ctx context.Context, room string) (repository.Subscription, error) {
	pubsub := b.client.Subscribe(ctx, RoomTopics(room)...)
	// 确认订阅已建立，失败时立刻暴露而不是静默丢事件
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("bus: failed to subscribe to room %s: %w", room, err)
	}
	return newRedisSubscription(pubsub), nil
}

// SubscribeAll 通过通配符模式注册对所有房间全部主题的兴趣
func (b *RedisEventBus) SubscribeAll(ctx context.Context) (repository.Subscription, error) {
	pubsub := b.client.PSubscribe(ctx, WildcardPatterns()...)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("bus: failed to subscribe to all rooms: %w", err)
	}
	return newRedisSubscription(pubsub), nil
}

// redisSubscription 将底层 PubSub 消息解码为领域事件流。
// Close 关闭底层订阅，解码 goroutine 随之退出并关闭事件通道。
type redisSubscription struct {
	pubsub    *redis.PubSub
	events    chan domain.Event
	closeOnce sync.Once
	closeErr  error
}

func newRedisSubscription(pubsub *redis.PubSub) *redisSubscription {
	sub := &redisSubscription{
		pubsub: pubsub,
		events: make(chan domain.Event, subscriptionBuffer),
	}
	go sub.pump()
	return sub
}

// pump 从 PubSub 读取原始消息并解码转发，直到订阅关闭。
func (s *redisSubscription) pump() {
	defer close(s.events)
	for msg := range s.pubsub.Channel() {
		_, expectedType, err := ParseTopic(msg.Channel)
		if err != nil {
			// 订阅模式之外的主题不应出现在这里；出现即是配置错误
			logrus.WithError(err).WithField("channel", msg.Channel).Error("Received message on unknown topic")
			continue
		}
		event, err := domain.DecodeEvent([]byte(msg.Payload), expectedType)
		if err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"channel":      msg.Channel,
				"payload_size": len(msg.Payload),
			}).Error("Failed to decode event payload, dropping")
			continue
		}
		select {
		case s.events <- event:
		default:
			// 消费者跟不上时丢弃并告警，绝不阻塞总线读取
			logrus.WithFields(logrus.Fields{
				"channel":    msg.Channel,
				"event_type": event.Type,
			}).Warn("Subscription event channel full, dropping event")
		}
	}
}

// Events 返回已解码事件的通道
func (s *redisSubscription) Events() <-chan domain.Event {
	return s.events
}

// Close 取消订阅。可以安全地多次调用。
func (s *redisSubscription) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.pubsub.Close()
	})
	return s.closeErr
}
