package model

import "time"

// KVEntryModel 键值存储条目,草稿以此持久化
type KVEntryModel struct {
	Key       string    `gorm:"column:entry_key;primaryKey;type:varchar(255)"`
	Value     []byte    `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName 指定表名
func (KVEntryModel) TableName() string {
	return "kv_entries"
}
