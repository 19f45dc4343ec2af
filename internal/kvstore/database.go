package kvstore

import (
	"context"
	"errors"

	"github.com/rahulmoradiya/haccp-both-sub000/internal/repository"
	"gorm.io/gorm"
)

// DatabaseStore 基于 kv_entries 表的键值存储
type DatabaseStore struct {
	repo repository.KVEntryRepository
}

// NewDatabaseStore 创建数据库键值存储
func NewDatabaseStore(repo repository.KVEntryRepository) *DatabaseStore {
	return &DatabaseStore{repo: repo}
}

func (s *DatabaseStore) Get(ctx context.Context, key string) ([]byte, error) {
	e, err := s.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e.Value, nil
}

func (s *DatabaseStore) Set(ctx context.Context, key string, value []byte) error {
	return s.repo.Put(ctx, key, value)
}

func (s *DatabaseStore) Delete(ctx context.Context, key string) error {
	return s.repo.Delete(ctx, key)
}
