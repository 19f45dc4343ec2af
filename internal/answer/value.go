package answer

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FieldValue 字段答案值,与 FieldConfig 一一对应
type FieldValue interface {
	FieldType() FieldType
	IsEmpty() bool
}

// TemperatureValue 温度答案
type TemperatureValue struct {
	Temperature *float64 `json:"temperature,omitempty"`
	Unit        Unit     `json:"unit,omitempty"`
}

// AmountValue 数量答案
type AmountValue struct {
	Amount *float64 `json:"amount,omitempty"`
	Unit   Unit     `json:"unit,omitempty"`
}

// NumericValue 数值答案
type NumericValue struct {
	Value *float64 `json:"value,omitempty"`
}

// TextValue 文本答案
type TextValue struct {
	Text string `json:"text,omitempty"`
}

// MultipleChoiceValue 多选答案
type MultipleChoiceValue struct {
	SelectedOptions []string `json:"selectedOptions,omitempty"`
}

// SingleChoiceValue 单选答案
type SingleChoiceValue struct {
	SelectedOption string `json:"selectedOption,omitempty"`
}

// ProductValue 产品答案
type ProductValue struct {
	ProductID string   `json:"productId,omitempty"`
	Quantity  *float64 `json:"quantity,omitempty"`
}

// LocationValue 位置答案
type LocationValue struct {
	LocationID string `json:"locationId,omitempty"`
}

// MediaValue 附件答案,保存 blob 存储中的对象路径
type MediaValue struct {
	Attachments []string `json:"attachments,omitempty"`
}

// UnknownValue 无法识别类型的答案,原样保留
type UnknownValue struct {
	Type FieldType
	Raw  json.RawMessage
}

func (TemperatureValue) FieldType() FieldType    { return FieldTemperature }
func (AmountValue) FieldType() FieldType         { return FieldAmount }
func (NumericValue) FieldType() FieldType        { return FieldNumeric }
func (TextValue) FieldType() FieldType           { return FieldText }
func (MultipleChoiceValue) FieldType() FieldType { return FieldMultipleChoice }
func (SingleChoiceValue) FieldType() FieldType   { return FieldSingleChoice }
func (ProductValue) FieldType() FieldType        { return FieldProduct }
func (LocationValue) FieldType() FieldType       { return FieldLocation }
func (MediaValue) FieldType() FieldType          { return FieldMedia }
func (v UnknownValue) FieldType() FieldType      { return v.Type }

func (v TemperatureValue) IsEmpty() bool    { return v.Temperature == nil }
func (v AmountValue) IsEmpty() bool         { return v.Amount == nil }
func (v NumericValue) IsEmpty() bool        { return v.Value == nil }
func (v TextValue) IsEmpty() bool           { return strings.TrimSpace(v.Text) == "" }
func (v MultipleChoiceValue) IsEmpty() bool { return len(v.SelectedOptions) == 0 }
func (v SingleChoiceValue) IsEmpty() bool   { return v.SelectedOption == "" }
func (v ProductValue) IsEmpty() bool        { return v.ProductID == "" }
func (v LocationValue) IsEmpty() bool       { return v.LocationID == "" }
func (v MediaValue) IsEmpty() bool          { return len(v.Attachments) == 0 }
func (v UnknownValue) IsEmpty() bool        { return isNullRaw(v.Raw) }

// FieldAnswer 字段答案的序列化包装
// JSON 形式: {"type": "...", "value": {...}}
type FieldAnswer struct {
	Value FieldValue
}

// Type 返回答案类型
func (a FieldAnswer) Type() FieldType {
	if a.Value == nil {
		return ""
	}
	return a.Value.FieldType()
}

// IsEmpty 判断答案是否未填写
func (a FieldAnswer) IsEmpty() bool {
	return a.Value == nil || a.Value.IsEmpty()
}

type fieldAnswerJSON struct {
	Type  FieldType       `json:"type"`
	Value json.RawMessage `json:"value,omitempty"`
}

// MarshalJSON 序列化字段答案
func (a FieldAnswer) MarshalJSON() ([]byte, error) {
	out := fieldAnswerJSON{Type: a.Type()}
	switch v := a.Value.(type) {
	case nil:
	case UnknownValue:
		out.Value = v.Raw
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s value: %w", out.Type, err)
		}
		out.Value = raw
	}
	return json.Marshal(out)
}

// UnmarshalJSON 反序列化字段答案
func (a *FieldAnswer) UnmarshalJSON(data []byte) error {
	var in fieldAnswerJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	v, err := decodeValue(in.Type, in.Value)
	if err != nil {
		return err
	}
	a.Value = v
	return nil
}

func decodeValue(t FieldType, raw json.RawMessage) (FieldValue, error) {
	switch t {
	case FieldTemperature:
		return decodeInto[TemperatureValue](raw)
	case FieldAmount:
		return decodeInto[AmountValue](raw)
	case FieldNumeric:
		return decodeInto[NumericValue](raw)
	case FieldText:
		return decodeInto[TextValue](raw)
	case FieldMultipleChoice:
		return decodeInto[MultipleChoiceValue](raw)
	case FieldSingleChoice:
		return decodeInto[SingleChoiceValue](raw)
	case FieldProduct:
		return decodeInto[ProductValue](raw)
	case FieldLocation:
		return decodeInto[LocationValue](raw)
	case FieldMedia:
		return decodeInto[MediaValue](raw)
	default:
		return UnknownValue{Type: t, Raw: cloneRaw(raw)}, nil
	}
}

// Float 返回 float64 指针,便于构造答案
func Float(v float64) *float64 {
	return &v
}
