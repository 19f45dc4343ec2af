package testutil

import (
	"context"
	"sync"

	"github.com/rahulmoradiya/haccp-both-sub000/internal/kvstore"
)

// FakeStore 可注入错误的内存键值存储
type FakeStore struct {
	*kvstore.MemoryStore

	mu        sync.Mutex
	GetErr    error
	SetErr    error
	DeleteErr error
	Sets      int
	Deletes   int
}

// NewFakeStore 创建 FakeStore
func NewFakeStore() *FakeStore {
	return &FakeStore{MemoryStore: kvstore.NewMemoryStore()}
}

func (s *FakeStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	err := s.GetErr
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return s.MemoryStore.Get(ctx, key)
}

func (s *FakeStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	s.Sets++
	err := s.SetErr
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.MemoryStore.Set(ctx, key, value)
}

func (s *FakeStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	s.Deletes++
	err := s.DeleteErr
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.MemoryStore.Delete(ctx, key)
}
