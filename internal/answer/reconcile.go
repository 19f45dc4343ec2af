package answer

// Reconcile 将候选答案集合与当前任务定义的 schema 对齐
//
// 检查清单: 长度不足时以 unset 补齐,超出部分截断丢弃。
// 详情表单: 保留 schema 中存在且类型一致的字段答案,缺失字段补默认值,多余字段丢弃。
// 候选为空或类型不符时返回 schema 默认值。对已对齐的集合重复调用结果不变,且从不失败。
func Reconcile(def TaskDefinition, candidate *AnswerSet) AnswerSet {
	if candidate == nil || candidate.Kind != def.Kind {
		return Defaults(def)
	}

	switch def.Kind {
	case KindChecklist:
		return AnswerSet{Kind: KindChecklist, Items: reconcileItems(candidate.Items, len(def.Checklist))}
	case KindDetail:
		return AnswerSet{Kind: KindDetail, Fields: reconcileFields(candidate.Fields, def.Fields)}
	default:
		return AnswerSet{Kind: def.Kind, Done: candidate.Done}
	}
}

func reconcileItems(items []ChecklistAnswer, size int) []ChecklistAnswer {
	// 空 schema 下 nil 仍为 nil
	if size == 0 && items == nil {
		return nil
	}
	out := make([]ChecklistAnswer, size)
	n := copy(out, items)
	for i := n; i < size; i++ {
		out[i] = ChecklistAnswer{Status: StatusUnset}
	}
	return out
}

func reconcileFields(fields map[string]FieldAnswer, schema []FieldDescriptor) map[string]FieldAnswer {
	if len(schema) == 0 && fields == nil {
		return nil
	}
	out := make(map[string]FieldAnswer, len(schema))
	for _, f := range schema {
		existing, ok := fields[f.ID]
		if ok && existing.Value != nil && existing.Type() == f.Type() {
			out[f.ID] = existing
			continue
		}
		out[f.ID] = FieldAnswer{Value: f.EmptyValue()}
	}
	return out
}
