// internal/service/consumeinfo/infrastructure/adapter/external_order_http_adapter.go
package adapter

import (
	"context"
	"net/url"

	"github.com/pkg/errors"

	"github.com/luoliAsyns/ConsumeInfo/internal/pkg/httpclient"
	"github.com/luoliAsyns/ConsumeInfo/internal/service/consumeinfo/domain"
)

// ExternalOrderHTTPAdapter 是 port.ExternalOrderService 的 HTTP 实现。
type ExternalOrderHTTPAdapter struct {
	client  *httpclient.Client
	baseURL string
}

func NewExternalOrderHTTPAdapter(client *httpclient.Client, baseURL string) *ExternalOrderHTTPAdapter {
	return &ExternalOrderHTTPAdapter{client: client, baseURL: baseURL}
}

func (a *ExternalOrderHTTPAdapter) Get(ctx context.Context, fromPlatform, tid string) (*domain.ExternalOrder, error) {
	params := url.Values{}
	params.Set("fromPlatform", fromPlatform)
	params.Set("tid", tid)

	var resp domain.Result[*domain.ExternalOrder]
	if err := a.client.GetJSON(ctx, a.baseURL+"/api/external-order/get", params, &resp); err != nil {
		return nil, errors.Wrapf(err, "get external order [%s/%s]", fromPlatform, tid)
	}
	if !resp.Ok() {
		return nil, errors.Errorf("get external order [%s/%s] failed: %s", fromPlatform, tid, resp.Msg)
	}
	return resp.Data, nil
}
