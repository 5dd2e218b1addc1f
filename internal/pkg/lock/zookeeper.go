// internal/pkg/lock/zookeeper.go
package lock

import (
	"context"
	"strings"
	"time"

	"github.com/go-zookeeper/zk"
	"github.com/pkg/errors"
)

const lockRoot = "/consume_info/locks"

// ZkLocker 是 KeyLocker 的 ZooKeeper 实现：临时顺序节点选主，跨实例互斥。
// 键里的 "." 替换为 "_"，避免生成非法的 znode 路径。
type ZkLocker struct {
	conn *zk.Conn
}

// NewZkLocker 连接 ZooKeeper 并确保锁根节点存在。
func NewZkLocker(servers []string, sessionTimeout time.Duration) (*ZkLocker, error) {
	conn, _, err := zk.Connect(servers, sessionTimeout)
	if err != nil {
		return nil, errors.Wrap(err, "connect zookeeper")
	}
	if err := ensurePath(conn, lockRoot); err != nil {
		conn.Close()
		return nil, err
	}
	return &ZkLocker{conn: conn}, nil
}

func ensurePath(conn *zk.Conn, path string) error {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	cur := ""
	for _, p := range parts {
		cur += "/" + p
		_, err := conn.Create(cur, nil, 0, zk.WorldACL(zk.PermAll))
		if err != nil && err != zk.ErrNodeExists {
			return errors.Wrapf(err, "create lock path %s", cur)
		}
	}
	return nil
}

func (z *ZkLocker) Lock(ctx context.Context, key string) (func(), error) {
	path := lockRoot + "/" + strings.ReplaceAll(key, ".", "_")
	l := zk.NewLock(z.conn, path, zk.WorldACL(zk.PermAll))

	// zk.Lock 没有 ctx 版本，放到 goroutine 里配合 ctx 超时。
	done := make(chan error, 1)
	go func() { done <- l.Lock() }()

	select {
	case err := <-done:
		if err != nil {
			return nil, errors.Wrapf(err, "acquire zk lock for key [%s]", key)
		}
		return func() { _ = l.Unlock() }, nil
	case <-ctx.Done():
		// 锁可能在取消后才拿到，拿到就立刻放掉。
		go func() {
			if err := <-done; err == nil {
				_ = l.Unlock()
			}
		}()
		return nil, ctx.Err()
	}
}

// Close 关闭底层 ZooKeeper 连接。
func (z *ZkLocker) Close() {
	z.conn.Close()
}
