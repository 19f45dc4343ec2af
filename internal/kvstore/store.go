// Package kvstore 提供本地键值存储,草稿以此持久化
package kvstore

import (
	"context"
	"errors"
)

// ErrNotFound 键不存在
var ErrNotFound = errors.New("kvstore: key not found")

// Store 键值存储接口
type Store interface {
	// Get 读取值,不存在时返回 ErrNotFound
	Get(ctx context.Context, key string) ([]byte, error)
	// Set 写入值,已存在时覆盖
	Set(ctx context.Context, key string, value []byte) error
	// Delete 删除值,不存在时不报错
	Delete(ctx context.Context, key string) error
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
