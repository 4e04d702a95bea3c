package store

import (
	"math"
	"strconv"
	"strings"

	"careerflow/model"
)

// ColumnType 写表时推断出的列类型
type ColumnType int

const (
	TypeText ColumnType = iota
	TypeInteger
	TypeFloat
	TypeBoolean
)

func (t ColumnType) SQL() string {
	switch t {
	case TypeInteger:
		return "BIGINT"
	case TypeFloat:
		return "DOUBLE PRECISION"
	case TypeBoolean:
		return "BOOLEAN"
	default:
		return "TEXT"
	}
}

// InferColumnType 按列内非空值推断类型：全整数 -> BIGINT，全数值 -> DOUBLE PRECISION，
// 全布尔 -> BOOLEAN，否则 TEXT。字符串若能解析为数值也按数值处理，与 CSV 读入后的效果一致。
func InferColumnType(values []any) ColumnType {
	seen := false
	allInt, allNum, allBool := true, true, true
	for _, v := range values {
		if v == nil {
			continue
		}
		seen = true
		switch x := v.(type) {
		case bool:
			allInt, allNum = false, false
		case int64, int, int32:
			allBool = false
		case float64:
			allBool = false
			if x != math.Trunc(x) || math.IsInf(x, 0) {
				allInt = false
			}
		case float32:
			allBool, allInt = false, false
		case string:
			allBool = false
			s := strings.TrimSpace(x)
			if _, err := strconv.ParseInt(s, 10, 64); err != nil {
				allInt = false
				if _, err := strconv.ParseFloat(s, 64); err != nil || !isPlainNumber(s) {
					allNum = false
				}
			}
		default:
			allInt, allNum, allBool = false, false, false
		}
		if !allInt && !allNum && !allBool {
			return TypeText
		}
	}
	switch {
	case !seen:
		return TypeText
	case allBool:
		return TypeBoolean
	case allInt:
		return TypeInteger
	case allNum:
		return TypeFloat
	}
	return TypeText
}

// isPlainNumber 排除 NaN、Inf、十六进制等 ParseFloat 能接受但不应视为数值的写法
func isPlainNumber(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '.', r == '-', r == '+', r == 'e', r == 'E':
		default:
			return false
		}
	}
	return true
}

// convertValue 把单元格转换为目标列类型的驱动值；无法转换时写 NULL
func convertValue(v any, t ColumnType) any {
	if v == nil {
		return nil
	}
	switch t {
	case TypeInteger:
		switch x := v.(type) {
		case int64:
			return x
		case int:
			return int64(x)
		case int32:
			return int64(x)
		case float64:
			return int64(x)
		case string:
			n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
			if err != nil {
				return nil
			}
			return n
		}
	case TypeFloat:
		switch x := v.(type) {
		case int64:
			return float64(x)
		case int:
			return float64(x)
		case int32:
			return float64(x)
		case float64:
			return x
		case float32:
			return float64(x)
		case string:
			n, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
			if err != nil {
				return nil
			}
			return n
		}
	case TypeBoolean:
		if b, ok := v.(bool); ok {
			return b
		}
		return nil
	default:
		return model.FormatCell(v)
	}
	return nil
}
