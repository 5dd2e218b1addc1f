// internal/service/consumeinfo/infrastructure/rabbitmq_publisher.go
package infrastructure

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/luoliAsyns/ConsumeInfo/internal/service/consumeinfo/domain"
)

// basicPublisher 抽出 amqp091.Channel 的发布面，便于测试替身。
type basicPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// InsertedEventPublisher 把入库成功的记录发布到固定的 inserted 队列：
// 默认交换机（routing key = 队列名）、持久化投递、text/plain。
type InsertedEventPublisher struct {
	ch    basicPublisher
	queue string
}

func NewInsertedEventPublisher(ch basicPublisher, queue string) *InsertedEventPublisher {
	return &InsertedEventPublisher{ch: ch, queue: queue}
}

func (p *InsertedEventPublisher) PublishInserted(ctx context.Context, info *domain.ConsumeInfo) error {
	body, err := json.Marshal(info)
	if err != nil {
		return errors.Wrap(err, "marshal inserted event")
	}

	err = p.ch.PublishWithContext(ctx,
		"",      // 默认交换机
		p.queue, // routing key = 队列名
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "text/plain",
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.NewString(),
			Body:         body,
		})
	if err != nil {
		return errors.Wrapf(err, "publish inserted event for coupon [%s]", info.Coupon)
	}
	return nil
}
