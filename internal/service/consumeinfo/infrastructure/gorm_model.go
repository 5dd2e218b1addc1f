// internal/service/consumeinfo/infrastructure/gorm_model.go
package infrastructure

import "github.com/luoliAsyns/ConsumeInfo/internal/service/consumeinfo/domain"

// consumeInfoModel 是分表的数据库模型。表名不在模型上，由仓储按分区注册表指定。
type consumeInfoModel struct {
	Id         int64  `gorm:"column:id;primaryKey;autoIncrement"`
	GoodsType  string `gorm:"column:goods_type"`
	Coupon     string `gorm:"column:coupon"`
	Status     string `gorm:"column:status"`
	CreateTime int64  `gorm:"column:create_time"`
	Extra      string `gorm:"column:extra"`
	IsDeleted  bool   `gorm:"column:is_deleted"`
}

func toModel(info *domain.ConsumeInfo) *consumeInfoModel {
	return &consumeInfoModel{
		Id:         info.Id,
		GoodsType:  info.GoodsType,
		Coupon:     info.Coupon,
		Status:     string(info.Status),
		CreateTime: info.CreateTime,
		Extra:      info.Extra,
		IsDeleted:  info.IsDeleted,
	}
}

func toDomain(m *consumeInfoModel) *domain.ConsumeInfo {
	return &domain.ConsumeInfo{
		Id:         m.Id,
		GoodsType:  m.GoodsType,
		Coupon:     m.Coupon,
		Status:     domain.Status(m.Status),
		CreateTime: m.CreateTime,
		Extra:      m.Extra,
		IsDeleted:  m.IsDeleted,
	}
}
