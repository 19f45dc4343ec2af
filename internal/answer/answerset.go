package answer

import (
	"errors"
	"fmt"
)

// ItemStatus 检查项状态
type ItemStatus string

const (
	StatusUnset        ItemStatus = "unset"
	StatusCompleted    ItemStatus = "completed"
	StatusNotCompleted ItemStatus = "not_completed"
)

// Valid 判断状态是否合法
func (s ItemStatus) Valid() bool {
	switch s {
	case StatusUnset, StatusCompleted, StatusNotCompleted:
		return true
	}
	return false
}

// UnmarshalText 反序列化状态,空值和无法识别的值视为 unset
func (s *ItemStatus) UnmarshalText(text []byte) error {
	v := ItemStatus(text)
	if !v.Valid() {
		v = StatusUnset
	}
	*s = v
	return nil
}

var (
	ErrIndexOutOfRange   = errors.New("answer index out of range")
	ErrUnknownField      = errors.New("unknown field")
	ErrFieldTypeMismatch = errors.New("field value type does not match schema")
	ErrKindMismatch      = errors.New("operation does not apply to this task kind")
	ErrInvalidStatus     = errors.New("invalid item status")
)

// ChecklistAnswer 单个检查项的答案
type ChecklistAnswer struct {
	Status    ItemStatus `json:"status"`
	Deviation string     `json:"deviation,omitempty"`
}

// IsUnset 判断检查项是否处于基线状态
func (a ChecklistAnswer) IsUnset() bool {
	return a.normalizedStatus() == StatusUnset && a.Deviation == ""
}

func (a ChecklistAnswer) normalizedStatus() ItemStatus {
	if a.Status == "" {
		return StatusUnset
	}
	return a.Status
}

// AnswerSet 任务答案集合
// 检查清单使用 Items,详情表单使用 Fields,个人任务使用 Done
type AnswerSet struct {
	Kind   Kind                   `json:"kind"`
	Items  []ChecklistAnswer      `json:"items,omitempty"`
	Fields map[string]FieldAnswer `json:"fields,omitempty"`
	Done   bool                   `json:"done,omitempty"`
}

// Defaults 根据任务定义生成全部未填写的答案集合
func Defaults(def TaskDefinition) AnswerSet {
	set := AnswerSet{Kind: def.Kind}
	switch def.Kind {
	case KindChecklist:
		set.Items = make([]ChecklistAnswer, len(def.Checklist))
		for i := range set.Items {
			set.Items[i] = ChecklistAnswer{Status: StatusUnset}
		}
	case KindDetail:
		set.Fields = make(map[string]FieldAnswer, len(def.Fields))
		for _, f := range def.Fields {
			set.Fields[f.ID] = FieldAnswer{Value: f.EmptyValue()}
		}
	}
	return set
}

// Clone 深拷贝答案集合
func (s AnswerSet) Clone() AnswerSet {
	out := AnswerSet{Kind: s.Kind, Done: s.Done}
	if s.Items != nil {
		out.Items = make([]ChecklistAnswer, len(s.Items))
		copy(out.Items, s.Items)
	}
	if s.Fields != nil {
		out.Fields = make(map[string]FieldAnswer, len(s.Fields))
		for k, v := range s.Fields {
			out.Fields[k] = v
		}
	}
	return out
}

// HasUnsavedChanges 判断是否有任何答案偏离全未填写的基线
// 仅用于控制"保存草稿"按钮,不是与上次保存的差异
func (s AnswerSet) HasUnsavedChanges() bool {
	switch s.Kind {
	case KindChecklist:
		for _, item := range s.Items {
			if !item.IsUnset() {
				return true
			}
		}
	case KindDetail:
		for _, f := range s.Fields {
			if !f.IsEmpty() {
				return true
			}
		}
	case KindPersonal:
		return s.Done
	}
	return false
}

// Remaining 返回未设置状态的检查项数量
func (s AnswerSet) Remaining() int {
	n := 0
	for _, item := range s.Items {
		if item.normalizedStatus() == StatusUnset {
			n++
		}
	}
	return n
}

// SetStatus 设置指定检查项的状态
func (s *AnswerSet) SetStatus(index int, status ItemStatus) error {
	if s.Kind != KindChecklist {
		return ErrKindMismatch
	}
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if index < 0 || index >= len(s.Items) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	s.Items[index].Status = status
	return nil
}

// SetDeviation 设置指定检查项的偏差说明
func (s *AnswerSet) SetDeviation(index int, text string) error {
	if s.Kind != KindChecklist {
		return ErrKindMismatch
	}
	if index < 0 || index >= len(s.Items) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	s.Items[index].Deviation = text
	return nil
}

// SetField 设置详情表单字段的答案
// 字段必须已存在于答案集合中(即已与 schema 对齐),且类型一致
func (s *AnswerSet) SetField(id string, value FieldValue) error {
	if s.Kind != KindDetail {
		return ErrKindMismatch
	}
	current, ok := s.Fields[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, id)
	}
	if value == nil {
		return fmt.Errorf("%w: %q", ErrFieldTypeMismatch, id)
	}
	if current.Type() != "" && current.Type() != value.FieldType() {
		return fmt.Errorf("%w: %q expects %s, got %s", ErrFieldTypeMismatch, id, current.Type(), value.FieldType())
	}
	s.Fields[id] = FieldAnswer{Value: value}
	return nil
}

// SetDone 设置个人任务完成标记
func (s *AnswerSet) SetDone(done bool) error {
	if s.Kind != KindPersonal {
		return ErrKindMismatch
	}
	s.Done = done
	return nil
}
