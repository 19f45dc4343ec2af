package answer

import (
	"errors"
	"sync"
)

var (
	ErrNotReady = errors.New("task state is still loading")
	ErrReadOnly = errors.New("task is already completed for this date")
)

// Source 当前答案集合的来源
type Source string

const (
	SourceDefaults   Source = "defaults"
	SourceDraft      Source = "draft"
	SourceSubmission Source = "submission"
)

// Session 一次表单会话中的答案状态
//
// 草稿加载与完成状态查询可能以任意顺序到达,Session 缓存先到的结果,
// 并始终按 Submission > Draft > 默认值 的优先级计算当前答案。
// Session 从不删除草稿。
type Session struct {
	mu sync.Mutex

	def TaskDefinition

	draft        *AnswerSet
	draftArrived bool

	completed    *AnswerSet
	resolved     bool
	undetermined bool

	current AnswerSet
	source  Source
	edited  bool
}

// NewSession 创建会话,初始为 schema 默认值
func NewSession(def TaskDefinition) *Session {
	s := &Session{def: def}
	s.recompute()
	return s
}

// ApplyDraft 接收草稿加载结果,nil 表示没有草稿
func (s *Session) ApplyDraft(draft *AnswerSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if draft != nil {
		d := draft.Clone()
		s.draft = &d
	}
	s.draftArrived = true
	if !s.edited {
		s.recompute()
	}
}

// ApplyCompletion 接收完成状态查询结果,nil 表示当天尚未完成
// 实时推送的提交也通过该方法进入会话,此后会话变为只读
func (s *Session) ApplyCompletion(submitted *AnswerSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolved = true
	if submitted != nil {
		c := submitted.Clone()
		s.completed = &c
		s.undetermined = false
		s.recompute()
		return
	}
	if !s.edited {
		s.recompute()
	}
}

// ApplyResolveFailure 完成状态查询失败,视为未完成但结果未确定
func (s *Session) ApplyResolveFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolved = true
	if s.completed == nil {
		s.undetermined = true
	}
	if !s.edited {
		s.recompute()
	}
}

// Update 在可编辑状态下修改答案
func (s *Session) Update(fn func(*AnswerSet) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready() {
		return ErrNotReady
	}
	if s.completed != nil {
		return ErrReadOnly
	}
	next := s.current.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	s.current = Reconcile(s.def, &next)
	s.edited = true
	return nil
}

// Ready 两个来源是否都已到达
func (s *Session) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready()
}

// Completed 当天是否已有提交
func (s *Session) Completed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed != nil
}

// Undetermined 完成状态查询失败时为 true
func (s *Session) Undetermined() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.undetermined
}

// Editable 已就绪且未完成时可编辑
func (s *Session) Editable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready() && s.completed == nil
}

// HasDraft 是否加载到草稿
func (s *Session) HasDraft() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft != nil
}

// Answers 返回当前答案的副本
func (s *Session) Answers() AnswerSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// Source 返回当前答案的来源
func (s *Session) Source() Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// HasUnsavedChanges 当前答案是否偏离基线
func (s *Session) HasUnsavedChanges() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed == nil && s.current.HasUnsavedChanges()
}

func (s *Session) ready() bool {
	return s.draftArrived && s.resolved
}

func (s *Session) recompute() {
	switch {
	case s.completed != nil:
		s.current = Reconcile(s.def, s.completed)
		s.source = SourceSubmission
	case s.draft != nil:
		s.current = Reconcile(s.def, s.draft)
		s.source = SourceDraft
	default:
		s.current = Defaults(s.def)
		s.source = SourceDefaults
	}
}
