// internal/service/consumeinfo/infrastructure/rabbitmq_consumer.go
package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/luoliAsyns/ConsumeInfo/internal/pkg/logger"
	"github.com/luoliAsyns/ConsumeInfo/internal/pkg/mq"
	"github.com/luoliAsyns/ConsumeInfo/internal/service/consumeinfo/application"
	"github.com/luoliAsyns/ConsumeInfo/internal/service/consumeinfo/domain"
	"github.com/luoliAsyns/ConsumeInfo/internal/service/consumeinfo/domain/port"
)

// amqpChannel 抽出消费侧用到的 channel 方法，便于测试替身。
// *amqp091.Channel 原生满足。
type amqpChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	Qos(prefetchCount, prefetchSize int, global bool) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// ConsumerConfig 是消费者的显式配置，进程启动时解析一次后注入。
type ConsumerConfig struct {
	// QueuePrefix 拼在固定队列名前面，区分部署环境。
	QueuePrefix string
	// ServiceName 用作 consumer tag 和告警里的服务标识。
	ServiceName string
	ServiceId   string
	// PrefetchCount 是单消费者未确认消息上限，也是 worker 池的大小。
	PrefetchCount int
}

// ConsumeInfoConsumer 驱动入站队列的 at-least-once 消费：
// 声明队列 -> 设置 QoS -> 注册消费 -> 固定大小的 worker 池处理投递。
// 每个 worker 独占自己那条消息的 ack/nack 决定权；任何失败路径都不重投，
// 失败恢复交给外部（人工重放或告警通道）。
type ConsumeInfoConsumer struct {
	ch           amqpChannel
	appSvc       *application.ConsumeInfoApplicationService
	compensation *application.CompensationWorkflow
	notifier     port.OperatorNotifier
	cfg          ConsumerConfig
	tracer       trace.Tracer
}

func NewConsumeInfoConsumer(ch amqpChannel, appSvc *application.ConsumeInfoApplicationService, compensation *application.CompensationWorkflow, notifier port.OperatorNotifier, cfg ConsumerConfig, tracer trace.Tracer) *ConsumeInfoConsumer {
	if cfg.PrefetchCount <= 0 {
		cfg.PrefetchCount = 10
	}
	return &ConsumeInfoConsumer{
		ch:           ch,
		appSvc:       appSvc,
		compensation: compensation,
		notifier:     notifier,
		cfg:          cfg,
		tracer:       tracer,
	}
}

// Start 阻塞运行消费循环，直到 ctx 被取消。
// 队列属性冲突或 QoS 协商失败都会让启动直接失败。
func (c *ConsumeInfoConsumer) Start(ctx context.Context) error {
	queueName := c.cfg.QueuePrefix + mq.QueueConsumeInfoInserting

	if _, err := c.ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		return errors.Wrapf(err, "declare queue [%s]", queueName)
	}

	// prefetch 限流只作用于本消费者，size 不限
	if err := c.ch.Qos(c.cfg.PrefetchCount, 0, false); err != nil {
		return errors.Wrap(err, "set channel qos")
	}

	deliveries, err := c.ch.Consume(
		queueName,
		c.cfg.ServiceName, // consumer tag
		false,             // manual ack
		false,             // exclusive
		false,             // no-local
		false,             // no-wait
		nil,
	)
	if err != nil {
		return errors.Wrapf(err, "consume queue [%s]", queueName)
	}

	logger.Ctx(ctx).Info().Str("queue", queueName).Int("prefetch", c.cfg.PrefetchCount).
		Msg("ConsumeInfo.Consumer start listen MQ")

	// worker 池大小 = prefetch 数，维持最多 10 条在途消息的准入约束
	g := new(errgroup.Group)
	for i := 0; i < c.cfg.PrefetchCount; i++ {
		g.Go(func() error {
			c.worker(ctx, deliveries)
			return nil
		})
	}
	workers := make(chan error, 1)
	go func() { workers <- g.Wait() }()

	// 粗粒度保活轮询，直到外部取消
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			err := <-workers
			logger.Ctx(ctx).Info().Str("queue", queueName).Msg("ConsumeInfo.Consumer stopped")
			return err
		case err := <-workers:
			if ctx.Err() != nil {
				return err
			}
			// ctx 还活着 worker 却全退了：broker 关闭了投递通道。
			// 静默停摆比报错更糟，把失败交给上层重启。
			return errors.Errorf("queue [%s] deliveries channel closed by broker", queueName)
		case <-ticker.C:
		}
	}
}

func (c *ConsumeInfoConsumer) worker(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			c.handleDelivery(ctx, d)
		}
	}
}

// handleDelivery 处理单条投递，独占该消息的 ack/nack 决定权。
func (c *ConsumeInfoConsumer) handleDelivery(ctx context.Context, d amqp.Delivery) {
	ctx, span := c.tracer.Start(ctx, "consumer.HandleDelivery", trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()

	messagesConsumed.Inc()
	body := string(d.Body)

	// 任何未兜住的 panic 也要把消息终结掉并拉响告警，不能留 unacked
	defer func() {
		if r := recover(); r != nil {
			logger.Ctx(ctx).Error().Interface("panic", r).Msg("while ConsumerService consuming")
			if err := d.Nack(false, false); err != nil {
				logger.Ctx(ctx).Error().Err(err).Msg("nack after panic failed")
			}
			messagesNacked.WithLabelValues("panic").Inc()
			c.alertRawBody(ctx, body)
		}
	}()

	logger.Ctx(ctx).Info().Msg("ConsumeInfo.Consumer received message")
	logger.Ctx(ctx).Debug().Str("body", body).Msg("raw message")

	var info domain.ConsumeInfo
	if err := json.Unmarshal(d.Body, &info); err != nil {
		// 毒消息策略：解析不了的消息丢弃不重试，否则会无限重投
		logger.Ctx(ctx).Error().Err(err).Str("body", body).Msg("while ConsumerService unmarshal message")
		if nackErr := d.Nack(false, false); nackErr != nil {
			logger.Ctx(ctx).Error().Err(nackErr).Msg("nack malformed message failed")
		}
		messagesNacked.WithLabelValues("malformed").Inc()
		c.alertRawBody(ctx, body)
		return
	}
	info.Normalize()

	resp := c.appSvc.Insert(ctx, &info)
	if resp.Ok() {
		logger.Ctx(ctx).Info().Str("coupon", info.Coupon).
			Msg("ConsumeInfo.Consumer insert success")
		if err := d.Ack(false); err != nil {
			logger.Ctx(ctx).Error().Err(err).Str("coupon", info.Coupon).Msg("ack failed")
			return
		}
		messagesAcked.Inc()
		return
	}

	// 业务失败按终态处理：补偿流程负责 nack（不重投）和操作员告警
	logger.Ctx(ctx).Error().Str("coupon", info.Coupon).Str("msg", resp.Msg).
		Msg("ConsumeInfo.Consumer insert failed")
	messagesNacked.WithLabelValues("business").Inc()
	c.compensation.Run(ctx, &info,
		fmt.Sprintf("ConsumeInfo.Consumer insert failed, msg:[%s]", resp.Msg), d)
}

func (c *ConsumeInfoConsumer) alertRawBody(ctx context.Context, body string) {
	alert := fmt.Sprintf("%s.%s\nMQ 消费过程中异常\n\nmessage:[%s]",
		c.cfg.ServiceName, c.cfg.ServiceId, body)
	if err := c.notifier.Notify(ctx, alert); err != nil {
		logger.Ctx(ctx).Error().Err(err).Msg("operator alert failed")
	}
}
