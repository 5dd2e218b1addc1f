// internal/service/consumeinfo/domain/compensation.go
package domain

// Coupon 是补偿流程需要回查的券实体。
// ExternalOrderFromPlatform + ExternalOrderTid 两个字段定位它关联的外部订单。
type Coupon struct {
	Coupon                    string `json:"coupon"`
	GoodsType                 string `json:"goodsType"`
	Status                    string `json:"status"`
	ExternalOrderFromPlatform string `json:"externalOrderFromPlatform"`
	ExternalOrderTid          string `json:"externalOrderTid"`
}

// ExternalOrder 是外部订单平台侧的订单实体。
type ExternalOrder struct {
	FromPlatform string `json:"fromPlatform"`
	Tid          string `json:"tid"`
	BuyerId      string `json:"buyerId"`
	Amount       string `json:"amount"`
	Status       string `json:"status"`
}
