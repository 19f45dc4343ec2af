package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rahulmoradiya/haccp-both-sub000/internal/answer"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/model"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/repository"
	"gorm.io/gorm"
)

// CatalogService 任务定义服务
type CatalogService interface {
	List(ctx context.Context, sess SessionContext, filter *repository.TaskFilter) ([]answer.TaskDefinition, error)
	Get(ctx context.Context, sess SessionContext, taskID string) (*answer.TaskDefinition, error)
	Save(ctx context.Context, def answer.TaskDefinition) error
	Invalidate(taskID string)
}

// taskSchema task_definitions.schema 列的内容
type taskSchema struct {
	Checklist []answer.ChecklistItem   `json:"checklist,omitempty"`
	Fields    []answer.FieldDescriptor `json:"fields,omitempty"`
}

type catalogCacheEntry struct {
	def       answer.TaskDefinition
	expiresAt time.Time
}

type catalogService struct {
	repo     repository.TaskDefinitionRepository
	cache    *sync.Map
	cacheTTL time.Duration
}

// NewCatalogService 创建任务定义服务,ttl 为 0 时使用默认 5 分钟
func NewCatalogService(repo repository.TaskDefinitionRepository, ttl time.Duration) CatalogService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &catalogService{
		repo:     repo,
		cache:    &sync.Map{},
		cacheTTL: ttl,
	}
}

// List 列出公司下的任务定义
func (s *catalogService) List(ctx context.Context, sess SessionContext, filter *repository.TaskFilter) ([]answer.TaskDefinition, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	models, err := s.repo.FindByCompany(ctx, sess.CompanyID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	defs := make([]answer.TaskDefinition, 0, len(models))
	for _, m := range models {
		def, err := DefinitionFromModel(m)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// Get 获取任务定义(带缓存),其他公司的任务视为不存在
func (s *catalogService) Get(ctx context.Context, sess SessionContext, taskID string) (*answer.TaskDefinition, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}

	if val, found := s.cache.Load(taskID); found {
		entry := val.(*catalogCacheEntry)
		if time.Now().Before(entry.expiresAt) {
			return ownedBy(entry.def, sess)
		}
		s.cache.Delete(taskID)
	}

	m, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	def, err := DefinitionFromModel(m)
	if err != nil {
		return nil, err
	}

	s.cache.Store(taskID, &catalogCacheEntry{
		def:       def,
		expiresAt: time.Now().Add(s.cacheTTL),
	})

	return ownedBy(def, sess)
}

func ownedBy(def answer.TaskDefinition, sess SessionContext) (*answer.TaskDefinition, error) {
	if def.CompanyID != sess.CompanyID {
		return nil, ErrTaskNotFound
	}
	return &def, nil
}

// Save 保存任务定义并清除缓存
func (s *catalogService) Save(ctx context.Context, def answer.TaskDefinition) error {
	m, err := DefinitionToModel(def)
	if err != nil {
		return err
	}
	if existing, err := s.repo.FindByID(ctx, def.ID); err == nil {
		m.CreatedAt = existing.CreatedAt
	}
	if err := s.repo.Save(ctx, m); err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}
	s.Invalidate(def.ID)
	return nil
}

// Invalidate 清除单个任务的缓存
func (s *catalogService) Invalidate(taskID string) {
	s.cache.Delete(taskID)
}

// DefinitionToModel 任务定义转换为数据模型
func DefinitionToModel(def answer.TaskDefinition) (*model.TaskDefinitionModel, error) {
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTask, err)
	}
	if def.CompanyID == "" {
		return nil, fmt.Errorf("%w: company id is required", ErrInvalidTask)
	}

	schema, err := json.Marshal(taskSchema{Checklist: def.Checklist, Fields: def.Fields})
	if err != nil {
		return nil, fmt.Errorf("failed to encode task schema: %w", err)
	}

	now := time.Now()
	return &model.TaskDefinitionModel{
		ID:        def.ID,
		CompanyID: def.CompanyID,
		ListID:    def.ListID,
		Title:     def.Title,
		Kind:      string(def.Kind),
		Schema:    schema,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// DefinitionFromModel 数据模型转换为任务定义
func DefinitionFromModel(m *model.TaskDefinitionModel) (answer.TaskDefinition, error) {
	var schema taskSchema
	if len(m.Schema) > 0 {
		if err := json.Unmarshal(m.Schema, &schema); err != nil {
			return answer.TaskDefinition{}, fmt.Errorf("failed to decode schema of task %s: %w", m.ID, err)
		}
	}
	return answer.TaskDefinition{
		ID:        m.ID,
		CompanyID: m.CompanyID,
		ListID:    m.ListID,
		Title:     m.Title,
		Kind:      answer.Kind(m.Kind),
		Checklist: schema.Checklist,
		Fields:    schema.Fields,
	}, nil
}
