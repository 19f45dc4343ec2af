package repository

import (
	"context"
	"time"

	"github.com/rahulmoradiya/haccp-both-sub000/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KVEntryRepository 键值条目仓储接口
type KVEntryRepository interface {
	Get(ctx context.Context, key string) (*model.KVEntryModel, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type kvEntryRepository struct {
	db *gorm.DB
}

// NewKVEntryRepository 创建键值条目仓储
func NewKVEntryRepository(db *gorm.DB) KVEntryRepository {
	return &kvEntryRepository{db: db}
}

// Get 读取条目,不存在时返回 gorm.ErrRecordNotFound
func (r *kvEntryRepository) Get(ctx context.Context, key string) (*model.KVEntryModel, error) {
	var e model.KVEntryModel
	if err := r.db.WithContext(ctx).Where("entry_key = ?", key).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// Put 写入条目,已存在时覆盖
func (r *kvEntryRepository) Put(ctx context.Context, key string, value []byte) error {
	e := &model.KVEntryModel{Key: key, Value: value, UpdatedAt: time.Now()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(e).Error
}

// Delete 删除条目,不存在时不报错
func (r *kvEntryRepository) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Where("entry_key = ?", key).Delete(&model.KVEntryModel{}).Error
}
