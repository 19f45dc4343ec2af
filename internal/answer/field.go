package answer

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FieldType 详情表单字段类型
type FieldType string

const (
	FieldTemperature    FieldType = "temperature"
	FieldAmount         FieldType = "amount"
	FieldNumeric        FieldType = "numeric"
	FieldText           FieldType = "text"
	FieldMultipleChoice FieldType = "multipleChoice"
	FieldSingleChoice   FieldType = "singleChoice"
	FieldProduct        FieldType = "product"
	FieldLocation       FieldType = "location"
	FieldMedia          FieldType = "media"
)

// FieldConfig 字段配置,每种字段类型一个实现
type FieldConfig interface {
	FieldType() FieldType
	// EmptyValue 返回该类型未填写时的默认值
	EmptyValue() FieldValue
}

// TemperatureConfig 温度字段配置
type TemperatureConfig struct {
	Min  *float64 `json:"min,omitempty"`
	Max  *float64 `json:"max,omitempty"`
	Unit Unit     `json:"unit,omitempty"`
}

// AmountConfig 数量字段配置
type AmountConfig struct {
	Min  *float64 `json:"min,omitempty"`
	Max  *float64 `json:"max,omitempty"`
	Unit Unit     `json:"unit,omitempty"`
}

// NumericConfig 数值字段配置
type NumericConfig struct {
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	Decimals int      `json:"decimals,omitempty"`
}

// TextConfig 文本字段配置
type TextConfig struct {
	MaxLength int  `json:"maxLength,omitempty"`
	Multiline bool `json:"multiline,omitempty"`
}

// MultipleChoiceConfig 多选字段配置
type MultipleChoiceConfig struct {
	Options []string `json:"options"`
}

// SingleChoiceConfig 单选字段配置
type SingleChoiceConfig struct {
	Options []string `json:"options"`
}

// ProductConfig 产品字段配置
type ProductConfig struct {
	Products []string `json:"products"`
}

// LocationConfig 位置字段配置
type LocationConfig struct {
	Locations []string `json:"locations"`
}

// MediaConfig 附件字段配置
type MediaConfig struct {
	MaxItems int `json:"maxItems,omitempty"`
}

// UnknownConfig 无法识别的字段类型,原样保留配置
type UnknownConfig struct {
	Type FieldType
	Raw  json.RawMessage
}

func (TemperatureConfig) FieldType() FieldType    { return FieldTemperature }
func (AmountConfig) FieldType() FieldType         { return FieldAmount }
func (NumericConfig) FieldType() FieldType        { return FieldNumeric }
func (TextConfig) FieldType() FieldType           { return FieldText }
func (MultipleChoiceConfig) FieldType() FieldType { return FieldMultipleChoice }
func (SingleChoiceConfig) FieldType() FieldType   { return FieldSingleChoice }
func (ProductConfig) FieldType() FieldType        { return FieldProduct }
func (LocationConfig) FieldType() FieldType       { return FieldLocation }
func (MediaConfig) FieldType() FieldType          { return FieldMedia }
func (c UnknownConfig) FieldType() FieldType      { return c.Type }

func (c TemperatureConfig) EmptyValue() FieldValue  { return TemperatureValue{Unit: c.Unit} }
func (c AmountConfig) EmptyValue() FieldValue       { return AmountValue{Unit: c.Unit} }
func (NumericConfig) EmptyValue() FieldValue        { return NumericValue{} }
func (TextConfig) EmptyValue() FieldValue           { return TextValue{} }
func (MultipleChoiceConfig) EmptyValue() FieldValue { return MultipleChoiceValue{} }
func (SingleChoiceConfig) EmptyValue() FieldValue   { return SingleChoiceValue{} }
func (ProductConfig) EmptyValue() FieldValue        { return ProductValue{} }
func (LocationConfig) EmptyValue() FieldValue       { return LocationValue{} }
func (MediaConfig) EmptyValue() FieldValue          { return MediaValue{} }
func (c UnknownConfig) EmptyValue() FieldValue      { return UnknownValue{Type: c.Type} }

// FieldDescriptor 详情表单字段定义
type FieldDescriptor struct {
	ID       string
	Label    string
	Required bool
	Config   FieldConfig
}

// Type 返回字段类型
func (f FieldDescriptor) Type() FieldType {
	if f.Config == nil {
		return ""
	}
	return f.Config.FieldType()
}

// EmptyValue 返回字段的默认值
func (f FieldDescriptor) EmptyValue() FieldValue {
	if f.Config == nil {
		return UnknownValue{}
	}
	return f.Config.EmptyValue()
}

type fieldDescriptorJSON struct {
	ID       string          `json:"id"`
	Label    string          `json:"label"`
	Required bool            `json:"required,omitempty"`
	Type     FieldType       `json:"type"`
	Config   json.RawMessage `json:"config,omitempty"`
}

// MarshalJSON 序列化字段定义
func (f FieldDescriptor) MarshalJSON() ([]byte, error) {
	out := fieldDescriptorJSON{
		ID:       f.ID,
		Label:    f.Label,
		Required: f.Required,
		Type:     f.Type(),
	}
	switch c := f.Config.(type) {
	case nil:
	case UnknownConfig:
		out.Config = c.Raw
	default:
		raw, err := json.Marshal(c)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s config: %w", f.Type(), err)
		}
		out.Config = raw
	}
	return json.Marshal(out)
}

// UnmarshalJSON 反序列化字段定义,未知类型保留原始配置
func (f *FieldDescriptor) UnmarshalJSON(data []byte) error {
	var in fieldDescriptorJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	cfg, err := decodeConfig(in.Type, in.Config)
	if err != nil {
		return fmt.Errorf("field %q: %w", in.ID, err)
	}
	*f = FieldDescriptor{
		ID:       in.ID,
		Label:    in.Label,
		Required: in.Required,
		Config:   cfg,
	}
	return nil
}

func decodeConfig(t FieldType, raw json.RawMessage) (FieldConfig, error) {
	switch t {
	case FieldTemperature:
		return decodeInto[TemperatureConfig](raw)
	case FieldAmount:
		return decodeInto[AmountConfig](raw)
	case FieldNumeric:
		return decodeInto[NumericConfig](raw)
	case FieldText:
		return decodeInto[TextConfig](raw)
	case FieldMultipleChoice:
		return decodeInto[MultipleChoiceConfig](raw)
	case FieldSingleChoice:
		return decodeInto[SingleChoiceConfig](raw)
	case FieldProduct:
		return decodeInto[ProductConfig](raw)
	case FieldLocation:
		return decodeInto[LocationConfig](raw)
	case FieldMedia:
		return decodeInto[MediaConfig](raw)
	default:
		return UnknownConfig{Type: t, Raw: cloneRaw(raw)}, nil
	}
}

func decodeInto[T any](raw json.RawMessage) (T, error) {
	var v T
	if isNullRaw(raw) {
		return v, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, err
	}
	return v, nil
}

func isNullRaw(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	out := make(json.RawMessage, len(raw))
	copy(out, raw)
	return out
}
