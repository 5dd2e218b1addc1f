// internal/service/consumeinfo/infrastructure/cache_aside_store.go
package infrastructure

import (
	"context"
	"time"

	"github.com/luoliAsyns/ConsumeInfo/internal/pkg/logger"
	"github.com/luoliAsyns/ConsumeInfo/internal/service/consumeinfo/domain"
	"github.com/luoliAsyns/ConsumeInfo/internal/service/consumeinfo/domain/port"
)

// CacheAsideStore 是带 cache-aside 语义的存储适配器，实现 application.ConsumeInfoStore：
//   - 读：先查缓存，命中返回 "from redis"；未命中回源，查到则以 TTL 写缓存并返回 "from database"，
//     查不到返回 Success + nil（缺失是正常结果）。
//   - Insert：落库成功后经 Publisher 外发事件；不预热缓存，首次读时才回填。
//     发布失败与落库失败走同一失败路径，不做区分。
//   - Update/Delete：落库成功后删缓存键（失效而非刷新，下次读自动回填）。
//
// 缓存故障一律按未命中/尽力而为处理，只记日志；缓存与库的短暂不一致由 TTL 兜底。
type CacheAsideStore struct {
	repo      domain.ConsumeInfoRepository
	cache     port.Cache
	publisher port.EventPublisher
	ttl       time.Duration
}

func NewCacheAsideStore(repo domain.ConsumeInfoRepository, cache port.Cache, publisher port.EventPublisher, ttl time.Duration) *CacheAsideStore {
	return &CacheAsideStore{repo: repo, cache: cache, publisher: publisher, ttl: ttl}
}

func (s *CacheAsideStore) Insert(ctx context.Context, info *domain.ConsumeInfo) domain.Result[bool] {
	if err := s.repo.Insert(ctx, info); err != nil {
		logger.Ctx(ctx).Error().Err(err).
			Str("coupon", info.Coupon).Str("goodsType", info.GoodsType).
			Msg("while CacheAsideStore.Insert")
		return domain.FailWith[bool](err.Error())
	}

	if err := s.publisher.PublishInserted(ctx, info); err != nil {
		logger.Ctx(ctx).Error().Err(err).
			Str("coupon", info.Coupon).Str("goodsType", info.GoodsType).
			Msg("while CacheAsideStore.Insert publish inserted event")
		return domain.FailWith[bool](err.Error())
	}

	logger.Ctx(ctx).Debug().
		Str("coupon", info.Coupon).Str("goodsType", info.GoodsType).
		Msg("CacheAsideStore.Insert success")
	return domain.OK(true, "")
}

func (s *CacheAsideStore) Update(ctx context.Context, info *domain.ConsumeInfo) domain.Result[bool] {
	if err := s.repo.Update(ctx, info); err != nil {
		logger.Ctx(ctx).Error().Err(err).
			Int64("id", info.Id).Str("goodsType", info.GoodsType).
			Msg("while CacheAsideStore.Update")
		return domain.FailWith[bool](err.Error())
	}

	s.invalidate(ctx, domain.CacheKeyById(info.GoodsType, info.Id))
	s.invalidate(ctx, domain.CacheKeyByCoupon(info.GoodsType, info.Coupon))
	return domain.OK(true, "")
}

func (s *CacheAsideStore) Delete(ctx context.Context, goodsType string, id int64) domain.Result[bool] {
	// 软删前先读出 coupon，才能把两个缓存键都打掉
	existing, err := s.repo.GetById(ctx, goodsType, id)
	if err != nil {
		return domain.FailWith[bool](err.Error())
	}

	if err := s.repo.Delete(ctx, goodsType, id); err != nil {
		logger.Ctx(ctx).Error().Err(err).
			Int64("id", id).Str("goodsType", goodsType).
			Msg("while CacheAsideStore.Delete")
		return domain.FailWith[bool](err.Error())
	}

	s.invalidate(ctx, domain.CacheKeyById(goodsType, id))
	if existing != nil {
		s.invalidate(ctx, domain.CacheKeyByCoupon(goodsType, existing.Coupon))
	}
	return domain.OK(true, "")
}

func (s *CacheAsideStore) GetById(ctx context.Context, goodsType string, id int64) domain.Result[*domain.ConsumeInfo] {
	return s.get(ctx, domain.CacheKeyById(goodsType, id), func() (*domain.ConsumeInfo, error) {
		return s.repo.GetById(ctx, goodsType, id)
	})
}

func (s *CacheAsideStore) GetByCoupon(ctx context.Context, goodsType, coupon string) domain.Result[*domain.ConsumeInfo] {
	return s.get(ctx, domain.CacheKeyByCoupon(goodsType, coupon), func() (*domain.ConsumeInfo, error) {
		return s.repo.GetByCoupon(ctx, goodsType, coupon)
	})
}

func (s *CacheAsideStore) get(ctx context.Context, key string, load func() (*domain.ConsumeInfo, error)) domain.Result[*domain.ConsumeInfo] {
	cached, err := s.cache.Get(ctx, key)
	if err != nil {
		// 缓存故障按未命中处理
		logger.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("cache read failed, falling back to store")
	}
	if cached != nil {
		cacheHits.Inc()
		return domain.OK(cached, "from redis")
	}
	cacheMisses.Inc()

	info, err := load()
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("key", key).Msg("while CacheAsideStore.get")
		return domain.FailWith[*domain.ConsumeInfo](err.Error())
	}
	if info == nil {
		return domain.OK[*domain.ConsumeInfo](nil, "not found")
	}

	if err := s.cache.Set(ctx, key, info, s.ttl); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("cache populate failed")
	}
	return domain.OK(info, "from database")
}

func (s *CacheAsideStore) invalidate(ctx context.Context, key string) {
	if err := s.cache.Del(ctx, key); err != nil {
		// 失效失败最长脏 TTL 时长，记下来便于排查
		logger.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("cache invalidate failed")
	}
}
