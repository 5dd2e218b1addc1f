// internal/service/consumeinfo/application/compensation.go
package application

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/trace"

	"github.com/luoliAsyns/ConsumeInfo/internal/pkg/logger"
	"github.com/luoliAsyns/ConsumeInfo/internal/service/consumeinfo/domain"
	"github.com/luoliAsyns/ConsumeInfo/internal/service/consumeinfo/domain/port"
)

// MessageNacker 是待定消息的否定确认入口，amqp091.Delivery 原生满足。
type MessageNacker interface {
	Nack(multiple, requeue bool) error
}

// CompensationWorkflow 在消息已出队、入库却失败之后兜底：
// 先把消息终结掉（nack 不重投），再尽力回查 Coupon / ExternalOrder 拼出告警上下文。
// 补偿自身的任何失败都只记日志，绝不把异常抛回消费循环。
type CompensationWorkflow struct {
	coupons     port.CouponService
	orders      port.ExternalOrderService
	notifier    port.OperatorNotifier
	serviceName string
	serviceId   string
	tracer      trace.Tracer
}

func NewCompensationWorkflow(coupons port.CouponService, orders port.ExternalOrderService, notifier port.OperatorNotifier, serviceName, serviceId string, tracer trace.Tracer) *CompensationWorkflow {
	return &CompensationWorkflow{
		coupons:     coupons,
		orders:      orders,
		notifier:    notifier,
		serviceName: serviceName,
		serviceId:   serviceId,
		tracer:      tracer,
	}
}

// Run 处理一条入库失败的消息。coreMsg 是原始失败原因。
func (w *CompensationWorkflow) Run(ctx context.Context, info *domain.ConsumeInfo, coreMsg string, msg MessageNacker) {
	ctx, span := w.tracer.Start(ctx, "app.ConsumeInfo.Compensation")
	defer span.End()

	// nack 先行：无论上下文回查成不成功，消息都不能一直挂在 unacked 状态
	if err := msg.Nack(false, false); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("coupon", info.Coupon).Msg("while compensation nack")
	}

	var coupon *domain.Coupon
	var order *domain.ExternalOrder

	coupon, err := w.coupons.Query(ctx, info.Coupon)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("coupon", info.Coupon).Msg("while compensation coupon lookup")
	}
	if coupon != nil {
		order, err = w.orders.Get(ctx, coupon.ExternalOrderFromPlatform, coupon.ExternalOrderTid)
		if err != nil {
			logger.Ctx(ctx).Error().Err(err).
				Str("platform", coupon.ExternalOrderFromPlatform).
				Str("tid", coupon.ExternalOrderTid).
				Msg("while compensation external order lookup")
		}
	}

	// 上下文不全也要发：残缺的告警好过没有告警
	if err := w.notifier.Notify(ctx, w.buildAlert(info, coupon, order, coreMsg)); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("coupon", info.Coupon).Msg("while compensation notify")
	}
}

func (w *CompensationWorkflow) buildAlert(info *domain.ConsumeInfo, coupon *domain.Coupon, order *domain.ExternalOrder, coreMsg string) string {
	alert := fmt.Sprintf("%s.%s\nConsumeInfo consume failed\n\ncoupon:[%s] goodsType:[%s]\nmsg:[%s]",
		w.serviceName, w.serviceId, info.Coupon, info.GoodsType, coreMsg)
	if coupon != nil {
		alert += fmt.Sprintf("\ncoupon status:[%s] platform:[%s] tid:[%s]",
			coupon.Status, coupon.ExternalOrderFromPlatform, coupon.ExternalOrderTid)
	}
	if order != nil {
		alert += fmt.Sprintf("\nexternal order buyer:[%s] amount:[%s] status:[%s]",
			order.BuyerId, order.Amount, order.Status)
	}
	return alert
}
