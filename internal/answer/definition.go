package answer

import (
	"errors"
	"fmt"
)

// Kind 任务类型
type Kind string

const (
	KindPersonal  Kind = "personal"
	KindChecklist Kind = "checklist"
	KindDetail    Kind = "detail"
)

// Valid 判断任务类型是否合法
func (k Kind) Valid() bool {
	switch k {
	case KindPersonal, KindChecklist, KindDetail:
		return true
	}
	return false
}

// ChecklistItem 检查项定义
type ChecklistItem struct {
	Title string `json:"title"`
}

// TaskDefinition 任务定义
// 一次完成周期内不可变,本层只读
type TaskDefinition struct {
	ID        string            `json:"id"`
	CompanyID string            `json:"company_id"`
	ListID    string            `json:"list_id,omitempty"`
	Title     string            `json:"title"`
	Kind      Kind              `json:"kind"`
	Checklist []ChecklistItem   `json:"checklist,omitempty"`
	Fields    []FieldDescriptor `json:"fields,omitempty"`
}

// SchemaLen 返回当前 schema 长度
func (d TaskDefinition) SchemaLen() int {
	switch d.Kind {
	case KindChecklist:
		return len(d.Checklist)
	case KindDetail:
		return len(d.Fields)
	}
	return 0
}

// Field 根据 ID 查找字段定义
func (d TaskDefinition) Field(id string) (FieldDescriptor, bool) {
	for _, f := range d.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return FieldDescriptor{}, false
}

// Validate 验证任务定义
func (d TaskDefinition) Validate() error {
	if d.ID == "" {
		return errors.New("task ID is required")
	}
	if d.Title == "" {
		return errors.New("task title is required")
	}
	if !d.Kind.Valid() {
		return fmt.Errorf("invalid task kind %q", d.Kind)
	}
	seen := make(map[string]bool, len(d.Fields))
	for i, f := range d.Fields {
		if f.ID == "" {
			return fmt.Errorf("field %d: id is required", i)
		}
		if seen[f.ID] {
			return fmt.Errorf("field %d: duplicate id %q", i, f.ID)
		}
		seen[f.ID] = true
	}
	return nil
}
