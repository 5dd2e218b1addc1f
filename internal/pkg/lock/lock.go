// internal/pkg/lock/lock.go
package lock

import (
	"context"
	"sync"
)

// KeyLocker 按资源键做互斥。Lock 返回解锁函数；获取不到锁时阻塞，
// 直到拿到锁或 ctx 被取消。
type KeyLocker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

type keyedEntry struct {
	mu   chan struct{}
	refs int
}

// KeyedMutex 是进程内的按键互斥实现：同一个键串行，不同键互不影响。
// 单实例部署下足以消除同键并发 Update/Delete 的交错；多实例用 ZkLocker。
type KeyedMutex struct {
	mu      sync.Mutex
	entries map[string]*keyedEntry
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{entries: make(map[string]*keyedEntry)}
}

func (m *KeyedMutex) Lock(ctx context.Context, key string) (func(), error) {
	m.mu.Lock()
	e, ok := m.entries[key]
	if !ok {
		e = &keyedEntry{mu: make(chan struct{}, 1)}
		m.entries[key] = e
	}
	e.refs++
	m.mu.Unlock()

	select {
	case e.mu <- struct{}{}:
	case <-ctx.Done():
		m.release(key, e)
		return nil, ctx.Err()
	}

	return func() {
		<-e.mu
		m.release(key, e)
	}, nil
}

func (m *KeyedMutex) release(key string, e *keyedEntry) {
	m.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(m.entries, key)
	}
	m.mu.Unlock()
}
