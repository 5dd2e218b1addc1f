// internal/service/consumeinfo/infrastructure/adapter/notify_http_adapter.go
package adapter

import (
	"context"

	"github.com/pkg/errors"

	"github.com/luoliAsyns/ConsumeInfo/internal/pkg/httpclient"
)

// NotifyHTTPAdapter 是 port.OperatorNotifier 的 HTTP 实现：
// 把告警文本连同收件人列表推给值班 webhook。
type NotifyHTTPAdapter struct {
	client    *httpclient.Client
	notifyURL string
	users     []string
}

func NewNotifyHTTPAdapter(client *httpclient.Client, notifyURL string, users []string) *NotifyHTTPAdapter {
	return &NotifyHTTPAdapter{client: client, notifyURL: notifyURL, users: users}
}

type notifyRequest struct {
	Users   []string `json:"users"`
	Content string   `json:"content"`
}

func (a *NotifyHTTPAdapter) Notify(ctx context.Context, message string) error {
	req := notifyRequest{Users: a.users, Content: message}
	if err := a.client.PostJSON(ctx, a.notifyURL, req, nil); err != nil {
		return errors.Wrap(err, "notify operators")
	}
	return nil
}
