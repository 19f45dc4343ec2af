package service

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rahulmoradiya/haccp-both-sub000/internal/answer"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/model"
)

// Submission 一个任务在一个日历日的完成记录,创建后不可修改
type Submission struct {
	ID          string           `json:"id"`
	CompanyID   string           `json:"company_id"`
	TaskID      string           `json:"task_id"`
	Date        string           `json:"date"`
	Kind        answer.Kind      `json:"kind"`
	CompletedBy string           `json:"completed_by"`
	CompletedAt time.Time        `json:"completed_at"`
	Answers     answer.AnswerSet `json:"answers"`
	// Entries 提交时的标签快照,之后修改任务定义不影响历史记录
	Entries []SubmissionEntry `json:"entries"`
	Summary Summary           `json:"summary"`
}

// SubmissionEntry 单个检查项或字段的快照
type SubmissionEntry struct {
	Key        string              `json:"key"` // 检查项序号或字段 ID
	Label      string              `json:"label"`
	Type       answer.FieldType    `json:"type,omitempty"`
	Status     answer.ItemStatus   `json:"status,omitempty"`
	Deviation  string              `json:"deviation,omitempty"`
	Value      *answer.FieldAnswer `json:"value,omitempty"`
	OutOfRange bool                `json:"out_of_range,omitempty"`
}

// Summary 完成记录的汇总统计
type Summary struct {
	CompletedItems    int      `json:"completed_items"`
	NotCompletedItems int      `json:"not_completed_items"`
	Deviations        []string `json:"deviations"`
	FilledFields      int      `json:"filled_fields"`
	OutOfRangeFields  int      `json:"out_of_range_fields"`
}

// buildEntries 生成标签快照和汇总
func buildEntries(def answer.TaskDefinition, answers answer.AnswerSet) ([]SubmissionEntry, Summary) {
	summary := Summary{Deviations: []string{}}
	var entries []SubmissionEntry

	switch def.Kind {
	case answer.KindChecklist:
		entries = make([]SubmissionEntry, 0, len(def.Checklist))
		for i, item := range def.Checklist {
			a := answers.Items[i]
			entries = append(entries, SubmissionEntry{
				Key:       strconv.Itoa(i),
				Label:     item.Title,
				Status:    a.Status,
				Deviation: a.Deviation,
			})
			switch a.Status {
			case answer.StatusCompleted:
				summary.CompletedItems++
			case answer.StatusNotCompleted:
				summary.NotCompletedItems++
				if d := strings.TrimSpace(a.Deviation); d != "" {
					summary.Deviations = append(summary.Deviations, d)
				}
			}
		}

	case answer.KindDetail:
		entries = make([]SubmissionEntry, 0, len(def.Fields))
		for _, f := range def.Fields {
			fa := answers.Fields[f.ID]
			entry := SubmissionEntry{
				Key:   f.ID,
				Label: f.Label,
				Type:  f.Type(),
			}
			if !fa.IsEmpty() {
				v := fa
				entry.Value = &v
				entry.OutOfRange = f.OutOfRange(fa.Value)
				summary.FilledFields++
				if entry.OutOfRange {
					summary.OutOfRangeFields++
				}
			}
			entries = append(entries, entry)
		}

	case answer.KindPersonal:
		entries = []SubmissionEntry{{Key: "0", Label: def.Title, Status: answer.StatusCompleted}}
		summary.CompletedItems = 1
	}

	return entries, summary
}

// toModel 转换为数据模型
func (s *Submission) toModel() (*model.SubmissionModel, error) {
	answersJSON, err := json.Marshal(s.Answers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode answers: %w", err)
	}
	entriesJSON, err := json.Marshal(s.Entries)
	if err != nil {
		return nil, fmt.Errorf("failed to encode entries: %w", err)
	}
	deviationsJSON, err := json.Marshal(s.Summary.Deviations)
	if err != nil {
		return nil, fmt.Errorf("failed to encode deviations: %w", err)
	}

	return &model.SubmissionModel{
		ID:                s.ID,
		CompanyID:         s.CompanyID,
		TaskID:            s.TaskID,
		Date:              s.Date,
		Kind:              string(s.Kind),
		CompletedBy:       s.CompletedBy,
		CompletedAt:       s.CompletedAt,
		Answers:           answersJSON,
		Entries:           entriesJSON,
		CompletedItems:    s.Summary.CompletedItems,
		NotCompletedItems: s.Summary.NotCompletedItems,
		Deviations:        deviationsJSON,
		FilledFields:      s.Summary.FilledFields,
		OutOfRangeFields:  s.Summary.OutOfRangeFields,
	}, nil
}

// submissionFromModel 从数据模型转换
func submissionFromModel(m *model.SubmissionModel) (*Submission, error) {
	s := &Submission{
		ID:          m.ID,
		CompanyID:   m.CompanyID,
		TaskID:      m.TaskID,
		Date:        m.Date,
		Kind:        answer.Kind(m.Kind),
		CompletedBy: m.CompletedBy,
		CompletedAt: m.CompletedAt,
		Summary: Summary{
			CompletedItems:    m.CompletedItems,
			NotCompletedItems: m.NotCompletedItems,
			Deviations:        []string{},
			FilledFields:      m.FilledFields,
			OutOfRangeFields:  m.OutOfRangeFields,
		},
	}
	if err := json.Unmarshal(m.Answers, &s.Answers); err != nil {
		return nil, fmt.Errorf("failed to decode answers of submission %s: %w", m.ID, err)
	}
	if len(m.Entries) > 0 {
		if err := json.Unmarshal(m.Entries, &s.Entries); err != nil {
			return nil, fmt.Errorf("failed to decode entries of submission %s: %w", m.ID, err)
		}
	}
	if len(m.Deviations) > 0 {
		if err := json.Unmarshal(m.Deviations, &s.Summary.Deviations); err != nil {
			return nil, fmt.Errorf("failed to decode deviations of submission %s: %w", m.ID, err)
		}
	}
	return s, nil
}
