// Package draft 在本地保存未提交的答案,按 (任务类型, 任务 ID) 区分
package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rahulmoradiya/haccp-both-sub000/internal/answer"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/kvstore"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/metrics"
	"github.com/sirupsen/logrus"
)

const keyPrefix = "draft"

var errIdentityMismatch = errors.New("draft identity mismatch")

// Key 草稿键,不同类型的任务即使 ID 相同也互不覆盖
type Key struct {
	Kind   answer.Kind
	TaskID string
}

// String 渲染为存储键 draft/<kind>/<taskID>
func (k Key) String() string {
	return keyPrefix + "/" + string(k.Kind) + "/" + k.TaskID
}

// Validate 验证草稿键
func (k Key) Validate() error {
	if !k.Kind.Valid() {
		return fmt.Errorf("invalid draft kind %q", k.Kind)
	}
	if strings.TrimSpace(k.TaskID) == "" {
		return errors.New("draft task ID is required")
	}
	return nil
}

// SaveError 草稿写入存储失败,可以重试
type SaveError struct {
	Key Key
	Err error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("failed to save draft %s: %v", e.Key, e.Err)
}

func (e *SaveError) Unwrap() error {
	return e.Err
}

// Retryable 存储失败总是可重试
func (e *SaveError) Retryable() bool {
	return true
}

// payload 持久化格式
type payload struct {
	TaskID    string           `json:"taskId"`
	Kind      answer.Kind      `json:"kind"`
	AnswerSet answer.AnswerSet `json:"answerSet"`
	SavedAt   time.Time        `json:"savedAt"`
}

// Store 草稿存储
// 同一个键只保留最后一次写入
type Store struct {
	kv     kvstore.Store
	logger logrus.FieldLogger
	userID string
	now    func() time.Time
}

// NewStore 创建草稿存储
func NewStore(kv kvstore.Store, logger logrus.FieldLogger) *Store {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Store{
		kv:     kv,
		logger: logger.WithField("component", "draft_store"),
		now:    time.Now,
	}
}

// ForUser 返回按用户隔离的视图,共享底层存储
func (s *Store) ForUser(userID string) *Store {
	return &Store{
		kv:     s.kv,
		logger: s.logger.WithField("user_id", userID),
		userID: strings.TrimSpace(userID),
		now:    s.now,
	}
}

// WithClock 替换时钟
func (s *Store) WithClock(now func() time.Time) *Store {
	cp := *s
	cp.now = now
	return &cp
}

func (s *Store) storageKey(key Key) string {
	if s.userID == "" {
		return key.String()
	}
	return "user/" + s.userID + "/" + key.String()
}

// Save 保存草稿,覆盖同键的旧草稿
// 存储写入失败时返回 *SaveError,调用方可提示用户重试
func (s *Store) Save(ctx context.Context, key Key, answers answer.AnswerSet) error {
	if err := key.Validate(); err != nil {
		return err
	}
	if answers.Kind != key.Kind {
		return fmt.Errorf("%w: draft key kind %s, answers kind %s", answer.ErrKindMismatch, key.Kind, answers.Kind)
	}

	b, err := json.Marshal(payload{
		TaskID:    key.TaskID,
		Kind:      key.Kind,
		AnswerSet: answers,
		SavedAt:   s.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}

	err = s.kv.Set(ctx, s.storageKey(key), b)
	metrics.RecordDraftOperation("save", err)
	if err != nil {
		s.logger.WithError(err).WithField("key", key.String()).Warn("failed to save draft")
		return &SaveError{Key: key, Err: err}
	}
	return nil
}

// Load 读取草稿
// 不存在、无法解析或身份不符时返回 nil,读取失败只记录日志
func (s *Store) Load(ctx context.Context, key Key) *answer.AnswerSet {
	set, _ := s.LoadWithSavedAt(ctx, key)
	return set
}

// LoadWithSavedAt 读取草稿及其保存时间,没有可用草稿时返回 nil 和零时间
func (s *Store) LoadWithSavedAt(ctx context.Context, key Key) (*answer.AnswerSet, time.Time) {
	if key.Validate() != nil {
		return nil, time.Time{}
	}
	log := s.logger.WithField("key", key.String())

	b, err := s.kv.Get(ctx, s.storageKey(key))
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			metrics.RecordDraftOperation("load", nil)
		} else {
			metrics.RecordDraftOperation("load", err)
			log.WithError(err).Warn("failed to read draft")
		}
		return nil, time.Time{}
	}

	var p payload
	if err := json.Unmarshal(b, &p); err != nil {
		metrics.RecordDraftOperation("load", err)
		log.WithError(err).Warn("discarding malformed draft")
		return nil, time.Time{}
	}
	if p.TaskID != key.TaskID || p.Kind != key.Kind || p.AnswerSet.Kind != key.Kind {
		metrics.RecordDraftOperation("load", errIdentityMismatch)
		log.WithFields(logrus.Fields{
			"payload_task_id": p.TaskID,
			"payload_kind":    p.Kind,
		}).Warn("discarding draft with mismatching identity")
		return nil, time.Time{}
	}

	metrics.RecordDraftOperation("load", nil)
	set := p.AnswerSet
	return &set, p.SavedAt
}

// Clear 删除草稿,失败只记录日志
func (s *Store) Clear(ctx context.Context, key Key) {
	if key.Validate() != nil {
		return
	}
	err := s.kv.Delete(ctx, s.storageKey(key))
	metrics.RecordDraftOperation("clear", err)
	if err != nil {
		s.logger.WithError(err).WithField("key", key.String()).Warn("failed to clear draft")
	}
}
