// internal/service/consumeinfo/infrastructure/adapter/coupon_http_adapter.go
package adapter

import (
	"context"
	"net/url"

	"github.com/pkg/errors"

	"github.com/luoliAsyns/ConsumeInfo/internal/pkg/httpclient"
	"github.com/luoliAsyns/ConsumeInfo/internal/service/consumeinfo/domain"
)

// CouponHTTPAdapter 是 port.CouponService 的 HTTP 实现，走券服务的查询接口。
type CouponHTTPAdapter struct {
	client  *httpclient.Client
	baseURL string
}

func NewCouponHTTPAdapter(client *httpclient.Client, baseURL string) *CouponHTTPAdapter {
	return &CouponHTTPAdapter{client: client, baseURL: baseURL}
}

func (a *CouponHTTPAdapter) Query(ctx context.Context, coupon string) (*domain.Coupon, error) {
	params := url.Values{}
	params.Set("coupon", coupon)

	var resp domain.Result[*domain.Coupon]
	if err := a.client.GetJSON(ctx, a.baseURL+"/api/coupon/query", params, &resp); err != nil {
		return nil, errors.Wrapf(err, "query coupon [%s]", coupon)
	}
	if !resp.Ok() {
		return nil, errors.Errorf("query coupon [%s] failed: %s", coupon, resp.Msg)
	}
	return resp.Data, nil
}
