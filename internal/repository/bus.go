package repository

import (
	"context"

	"chatroom-sync/internal/domain"
)

// Subscription 是一个可取消的已解码事件流。
// 取消和背压是类型的一部分，而不是隐含在回调生命周期里。
type Subscription interface {
	// Events 返回已解码事件的通道。订阅关闭后通道会被关闭。
	Events() <-chan domain.Event
	// Close 取消订阅并关闭事件通道。可以安全地多次调用。
	Close() error
}

// EventBus 定义了领域事件的发布/订阅传输。
// 投递语义是至少一次、跨主题无序；消费者必须容忍重复事件。
// 总线不持有任何状态，持久化存储才是事实来源。
type EventBus interface {
	// Publish 将事件发布到其房间对应的主题。
	// 从调用方角度是 fire-and-forget：正确性不依赖确认。
	Publish(ctx context.Context, event domain.Event) error

	// Subscribe 注册对一个房间全部三个主题的兴趣。
	Subscribe(ctx context.Context, room string) (Subscription, error)

	// SubscribeAll 通过通配符注册对所有房间全部主题的兴趣，
	// 供引擎消费其他实例产生的事件。
	SubscribeAll(ctx context.Context) (Subscription, error)
}
