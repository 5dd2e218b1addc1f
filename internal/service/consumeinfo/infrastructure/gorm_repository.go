// internal/service/consumeinfo/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/luoliAsyns/ConsumeInfo/internal/service/consumeinfo/domain"
)

// GormConsumeInfoRepository 是 domain.ConsumeInfoRepository 的 GORM 实现。
// 所有操作先经分区注册表把 goodsType 换成分表名，未注册的类型直接拒绝。
// 写操作要求受影响行数恰好为 1：0 行或多行即使驱动没报错也按失败处理，
// 这是针对空写/半写的正确性防线。
type GormConsumeInfoRepository struct {
	db         *gorm.DB
	partitions *domain.PartitionRegistry
}

func NewGormConsumeInfoRepository(db *gorm.DB, partitions *domain.PartitionRegistry) *GormConsumeInfoRepository {
	return &GormConsumeInfoRepository{db: db, partitions: partitions}
}

func (r *GormConsumeInfoRepository) Insert(ctx context.Context, info *domain.ConsumeInfo) error {
	table, err := r.partitions.Table(info.GoodsType)
	if err != nil {
		return err
	}

	m := toModel(info)
	tx := r.db.WithContext(ctx).Table(table).Create(m)
	if tx.Error != nil {
		return errors.Wrapf(tx.Error, "insert into [%s]", table)
	}
	if tx.RowsAffected != 1 {
		return errors.Errorf("insert into [%s] impact rows [%d] not equal to 1", table, tx.RowsAffected)
	}
	info.Id = m.Id
	return nil
}

func (r *GormConsumeInfoRepository) Update(ctx context.Context, info *domain.ConsumeInfo) error {
	table, err := r.partitions.Table(info.GoodsType)
	if err != nil {
		return err
	}

	// 显式事务边界：失败即回滚
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Table(table).
			Where("id = ?", info.Id).
			Updates(map[string]interface{}{
				"status": string(info.Status),
				"extra":  info.Extra,
			})
		if res.Error != nil {
			return errors.Wrapf(res.Error, "update [%s] id [%d]", table, info.Id)
		}
		if res.RowsAffected != 1 {
			return errors.Errorf("update [%s] id [%d] impact rows [%d] not equal to 1", table, info.Id, res.RowsAffected)
		}
		return nil
	})
}

func (r *GormConsumeInfoRepository) Delete(ctx context.Context, goodsType string, id int64) error {
	table, err := r.partitions.Table(goodsType)
	if err != nil {
		return err
	}

	// 只做软删除，记录永不物理移除
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Table(table).
			Where("id = ?", id).
			Update("is_deleted", true)
		if res.Error != nil {
			return errors.Wrapf(res.Error, "delete [%s] id [%d]", table, id)
		}
		if res.RowsAffected != 1 {
			return errors.Errorf("delete [%s] id [%d] impact rows [%d] not equal to 1", table, id, res.RowsAffected)
		}
		return nil
	})
}

func (r *GormConsumeInfoRepository) GetById(ctx context.Context, goodsType string, id int64) (*domain.ConsumeInfo, error) {
	table, err := r.partitions.Table(goodsType)
	if err != nil {
		return nil, err
	}

	var m consumeInfoModel
	res := r.db.WithContext(ctx).Table(table).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&m)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrapf(res.Error, "query [%s] id [%d]", table, id)
	}
	return toDomain(&m), nil
}

func (r *GormConsumeInfoRepository) GetByCoupon(ctx context.Context, goodsType, coupon string) (*domain.ConsumeInfo, error) {
	table, err := r.partitions.Table(goodsType)
	if err != nil {
		return nil, err
	}

	var m consumeInfoModel
	res := r.db.WithContext(ctx).Table(table).
		Where("coupon = ? AND is_deleted = ?", coupon, false).
		First(&m)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrapf(res.Error, "query [%s] coupon [%s]", table, coupon)
	}
	return toDomain(&m), nil
}
