// Package storage holds the key-value store behind per-user client state
// such as carts and wishlists. Every backend supports change subscriptions so
// readers can refresh without polling.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

var ErrNotFound = errors.New("key not found")

// Store is a last-writer-wins key-value store. Values are opaque bytes;
// GetJSON and SetJSON cover the common encoded-record case.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Subscribe registers fn for every successful Set or Delete of key.
	// A nil value means the key was deleted.
	Subscribe(key string, fn func(value []byte)) (unsubscribe func())
}

// GetJSON decodes the value stored under key into v. A missing key leaves v
// untouched and returns ErrNotFound.
func GetJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

func SetJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, raw)
}

// notifier fans out change notifications to in-process subscribers.
type notifier struct {
	mu   sync.RWMutex
	next int
	subs map[string]map[int]func([]byte)
}

func (n *notifier) Subscribe(key string, fn func([]byte)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.subs == nil {
		n.subs = make(map[string]map[int]func([]byte))
	}
	if n.subs[key] == nil {
		n.subs[key] = make(map[int]func([]byte))
	}
	id := n.next
	n.next++
	n.subs[key][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			delete(n.subs[key], id)
			if len(n.subs[key]) == 0 {
				delete(n.subs, key)
			}
		})
	}
}

// notify runs callbacks outside the lock so subscribers may re-enter the store.
func (n *notifier) notify(key string, value []byte) {
	n.mu.RLock()
	fns := make([]func([]byte), 0, len(n.subs[key]))
	for _, fn := range n.subs[key] {
		fns = append(fns, fn)
	}
	n.mu.RUnlock()

	for _, fn := range fns {
		var cp []byte
		if value != nil {
			cp = append([]byte(nil), value...)
		}
		fn(cp)
	}
}
