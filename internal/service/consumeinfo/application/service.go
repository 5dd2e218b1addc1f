// internal/service/consumeinfo/application/service.go
package application

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/luoliAsyns/ConsumeInfo/internal/pkg/lock"
	"github.com/luoliAsyns/ConsumeInfo/internal/pkg/logger"
	"github.com/luoliAsyns/ConsumeInfo/internal/service/consumeinfo/domain"
)

// ConsumeInfoStore 是应用层依赖的出站端口：带缓存语义的存储适配器。
// 所有操作返回统一的 Result，适配器内部不向外抛裸 error。
type ConsumeInfoStore interface {
	Insert(ctx context.Context, info *domain.ConsumeInfo) domain.Result[bool]
	Update(ctx context.Context, info *domain.ConsumeInfo) domain.Result[bool]
	Delete(ctx context.Context, goodsType string, id int64) domain.Result[bool]
	GetById(ctx context.Context, goodsType string, id int64) domain.Result[*domain.ConsumeInfo]
	GetByCoupon(ctx context.Context, goodsType, coupon string) domain.Result[*domain.ConsumeInfo]
}

// UpdateRequest 是状态变更请求：对 CI 的当前状态施加 Event。
type UpdateRequest struct {
	CI    domain.ConsumeInfo `json:"ci"`
	Event domain.Event       `json:"event"`
}

// ConsumeInfoApplicationService 编排业务流程：
// Update/Delete 走按键互斥 + 状态机门禁，Insert 直通存储适配器。
type ConsumeInfoApplicationService struct {
	store       ConsumeInfoStore
	transitions domain.TransitionTable
	locker      lock.KeyLocker
	tracer      trace.Tracer
}

func NewConsumeInfoApplicationService(store ConsumeInfoStore, transitions domain.TransitionTable, locker lock.KeyLocker, tracer trace.Tracer) *ConsumeInfoApplicationService {
	return &ConsumeInfoApplicationService{
		store:       store,
		transitions: transitions,
		locker:      locker,
		tracer:      tracer,
	}
}

// Insert 持久化一条消费记录。消费者路径和 HTTP 路径共用这个入口。
func (s *ConsumeInfoApplicationService) Insert(ctx context.Context, info *domain.ConsumeInfo) domain.Result[bool] {
	ctx, span := s.tracer.Start(ctx, "app.ConsumeInfo.Insert")
	defer span.End()

	info.Normalize()
	span.SetAttributes(
		attribute.String("consumeinfo.coupon", info.Coupon),
		attribute.String("consumeinfo.goods_type", info.GoodsType),
	)

	resp := s.store.Insert(ctx, info)
	if !resp.Ok() {
		span.SetStatus(codes.Error, resp.Msg)
	}
	return resp
}

// GetById 按 (goodsType, id) 查询存活记录。
func (s *ConsumeInfoApplicationService) GetById(ctx context.Context, goodsType string, id int64) domain.Result[*domain.ConsumeInfo] {
	ctx, span := s.tracer.Start(ctx, "app.ConsumeInfo.GetById")
	defer span.End()
	return s.store.GetById(ctx, goodsType, id)
}

// GetByCoupon 按 (goodsType, coupon) 查询存活记录。
func (s *ConsumeInfoApplicationService) GetByCoupon(ctx context.Context, goodsType, coupon string) domain.Result[*domain.ConsumeInfo] {
	ctx, span := s.tracer.Start(ctx, "app.ConsumeInfo.GetByCoupon")
	defer span.End()
	return s.store.GetByCoupon(ctx, goodsType, coupon)
}

// Update 施加状态变更。迁移表不放行的 (status, event) 组合在开任何事务之前
// 就被短路，存储层保持原样。
func (s *ConsumeInfoApplicationService) Update(ctx context.Context, req *UpdateRequest) domain.Result[bool] {
	ctx, span := s.tracer.Start(ctx, "app.ConsumeInfo.Update")
	defer span.End()

	info := req.CI
	info.Normalize()
	rawStatus := info.Status

	next, ok := s.transitions.Apply(rawStatus, req.Event)
	if !ok {
		msg := fmt.Sprintf("for ConsumeInfo Update, coupon:[%s] raw Status:[%s] Event:[%s], not meet transition condition",
			info.Coupon, rawStatus, req.Event)
		logger.Ctx(ctx).Error().Msg(msg)
		span.SetStatus(codes.Error, msg)
		return domain.FailWith[bool](msg)
	}
	info.Status = next

	logger.Ctx(ctx).Info().
		Str("coupon", info.Coupon).
		Str("rawStatus", string(rawStatus)).
		Str("event", string(req.Event)).
		Str("newStatus", string(next)).
		Msg("ConsumeInfo Update transition approved")

	// 同键的并发 Update/Delete 串行化，避免事务交错后缓存与库的状态依赖执行顺序
	unlock, err := s.locker.Lock(ctx, domain.CacheKeyById(info.GoodsType, info.Id))
	if err != nil {
		return domain.FailWith[bool]("acquire key lock failed: " + err.Error())
	}
	defer unlock()

	return s.store.Update(ctx, &info)
}

// Delete 软删除一条记录。
func (s *ConsumeInfoApplicationService) Delete(ctx context.Context, goodsType string, id int64) domain.Result[bool] {
	ctx, span := s.tracer.Start(ctx, "app.ConsumeInfo.Delete")
	defer span.End()

	unlock, err := s.locker.Lock(ctx, domain.CacheKeyById(goodsType, id))
	if err != nil {
		return domain.FailWith[bool]("acquire key lock failed: " + err.Error())
	}
	defer unlock()

	return s.store.Delete(ctx, goodsType, id)
}
