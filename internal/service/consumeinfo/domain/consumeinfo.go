// internal/service/consumeinfo/domain/consumeinfo.go
package domain

import (
	"fmt"
	"strings"
)

// ConsumeInfo 是核心领域实体：一条消费记录。
// GoodsType 决定记录落在哪张物理分表；Coupon 是业务侧的唯一键。
// 记录只做软删除：IsDeleted 置位后对读路径不可见，永不物理删除。
type ConsumeInfo struct {
	Id         int64  `json:"id"`
	GoodsType  string `json:"goodsType"`
	Coupon     string `json:"coupon"`
	Status     Status `json:"status"`
	CreateTime int64  `json:"createTime"`
	Extra      string `json:"extra"`
	IsDeleted  bool   `json:"isDeleted"`
}

// Normalize 对入站数据做归一化：goodsType 统一小写（分表名大小写敏感）。
func (c *ConsumeInfo) Normalize() {
	c.GoodsType = strings.ToLower(c.GoodsType)
}

// CacheKeyById 生成按 id 的缓存键，格式与旧系统保持一致：{goodsType}.{id}
func CacheKeyById(goodsType string, id int64) string {
	return fmt.Sprintf("%s.%d", goodsType, id)
}

// CacheKeyByCoupon 生成按 coupon 的缓存键：{goodsType}.{coupon}
func CacheKeyByCoupon(goodsType, coupon string) string {
	return goodsType + "." + coupon
}
