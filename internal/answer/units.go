package answer

import (
	"errors"
	"fmt"
	"strings"
)

// Unit 计量单位
type Unit string

const (
	Celsius    Unit = "C"
	Fahrenheit Unit = "F"
	Kelvin     Unit = "K"

	Gram       Unit = "g"
	Kilogram   Unit = "kg"
	Pound      Unit = "lb"
	Ounce      Unit = "oz"
	Milliliter Unit = "ml"
	Liter      Unit = "l"
)

var ErrIncompatibleUnits = errors.New("incompatible units")

type dimension int

const (
	dimMass dimension = iota + 1
	dimVolume
)

// 换算到基准单位(g / ml)的系数
var amountFactors = map[Unit]struct {
	dim    dimension
	factor float64
}{
	Gram:       {dimMass, 1},
	Kilogram:   {dimMass, 1000},
	Pound:      {dimMass, 453.59237},
	Ounce:      {dimMass, 28.349523125},
	Milliliter: {dimVolume, 1},
	Liter:      {dimVolume, 1000},
}

// ParseUnit 解析单位字符串,兼容常见写法
func ParseUnit(s string) Unit {
	v := strings.TrimSpace(s)
	v = strings.TrimPrefix(v, "°")
	switch strings.ToLower(v) {
	case "c", "celsius":
		return Celsius
	case "f", "fahrenheit":
		return Fahrenheit
	case "k", "kelvin":
		return Kelvin
	case "g", "gram", "grams":
		return Gram
	case "kg", "kilogram", "kilograms":
		return Kilogram
	case "lb", "lbs", "pound", "pounds":
		return Pound
	case "oz", "ounce", "ounces":
		return Ounce
	case "ml", "milliliter", "milliliters":
		return Milliliter
	case "l", "liter", "liters", "litre", "litres":
		return Liter
	}
	return Unit(v)
}

// ConvertTemperature 温度换算
func ConvertTemperature(v float64, from, to Unit) (float64, error) {
	from, to = ParseUnit(string(from)), ParseUnit(string(to))
	if from == to {
		return v, nil
	}
	var c float64
	switch from {
	case Celsius:
		c = v
	case Fahrenheit:
		c = (v - 32) * 5 / 9
	case Kelvin:
		c = v - 273.15
	default:
		return 0, fmt.Errorf("%w: %q is not a temperature unit", ErrIncompatibleUnits, from)
	}
	switch to {
	case Celsius:
		return c, nil
	case Fahrenheit:
		return c*9/5 + 32, nil
	case Kelvin:
		return c + 273.15, nil
	}
	return 0, fmt.Errorf("%w: %q is not a temperature unit", ErrIncompatibleUnits, to)
}

// ConvertAmount 质量/体积换算,不支持跨量纲
func ConvertAmount(v float64, from, to Unit) (float64, error) {
	from, to = ParseUnit(string(from)), ParseUnit(string(to))
	if from == to {
		return v, nil
	}
	f, ok := amountFactors[from]
	if !ok {
		return 0, fmt.Errorf("%w: unknown unit %q", ErrIncompatibleUnits, from)
	}
	t, ok := amountFactors[to]
	if !ok {
		return 0, fmt.Errorf("%w: unknown unit %q", ErrIncompatibleUnits, to)
	}
	if f.dim != t.dim {
		return 0, fmt.Errorf("%w: %s -> %s", ErrIncompatibleUnits, from, to)
	}
	return v * f.factor / t.factor, nil
}

// OutOfRange 判断答案是否超出字段配置的上下限
// 答案单位与配置单位不同时先换算;无法换算或未填写时不计为超限
func (f FieldDescriptor) OutOfRange(v FieldValue) bool {
	if v == nil || v.IsEmpty() {
		return false
	}
	switch c := f.Config.(type) {
	case TemperatureConfig:
		tv, ok := v.(TemperatureValue)
		if !ok {
			return false
		}
		val := *tv.Temperature
		if tv.Unit != "" && c.Unit != "" {
			converted, err := ConvertTemperature(val, tv.Unit, c.Unit)
			if err != nil {
				return false
			}
			val = converted
		}
		return outside(val, c.Min, c.Max)
	case AmountConfig:
		av, ok := v.(AmountValue)
		if !ok {
			return false
		}
		val := *av.Amount
		if av.Unit != "" && c.Unit != "" {
			converted, err := ConvertAmount(val, av.Unit, c.Unit)
			if err != nil {
				return false
			}
			val = converted
		}
		return outside(val, c.Min, c.Max)
	case NumericConfig:
		nv, ok := v.(NumericValue)
		if !ok {
			return false
		}
		return outside(*nv.Value, c.Min, c.Max)
	}
	return false
}

func outside(v float64, min, max *float64) bool {
	if min != nil && v < *min {
		return true
	}
	if max != nil && v > *max {
		return true
	}
	return false
}
