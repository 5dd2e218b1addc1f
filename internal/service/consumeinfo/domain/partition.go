// internal/service/consumeinfo/domain/partition.go
package domain

import "strings"

// UnknownPartitionError 表示请求的 goodsType 没有对应的物理分表。
// 运行时对着 ORM 做字符串拼表名太危险，所有已知分区必须先注册。
type UnknownPartitionError struct {
	GoodsType string
}

func (e *UnknownPartitionError) Error() string {
	return "unknown goodsType partition: [" + e.GoodsType + "]"
}

// PartitionRegistry 维护 goodsType 到物理表名的映射。
// 表名沿用旧系统约定：分表名即小写的 goodsType。
type PartitionRegistry struct {
	tables map[string]string
}

// NewPartitionRegistry 用已知的 goodsType 白名单构建注册表。
func NewPartitionRegistry(goodsTypes []string) *PartitionRegistry {
	tables := make(map[string]string, len(goodsTypes))
	for _, gt := range goodsTypes {
		gt = strings.ToLower(gt)
		tables[gt] = gt
	}
	return &PartitionRegistry{tables: tables}
}

// Table 返回 goodsType 对应的分表名；未注册的类型返回 UnknownPartitionError。
func (r *PartitionRegistry) Table(goodsType string) (string, error) {
	table, ok := r.tables[strings.ToLower(goodsType)]
	if !ok {
		return "", &UnknownPartitionError{GoodsType: goodsType}
	}
	return table, nil
}
