package importer

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ToCount 转为非负整数；无法解析、负数、NaN 都记 0，小数截断
func ToCount(v any) int64 {
	var f float64
	switch x := v.(type) {
	case int64:
		f = float64(x)
	case int:
		f = float64(x)
	case float64:
		f = x
	case bool:
		return 0
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0
		}
		f = n
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f > math.MaxInt64/2 {
		return 0
	}
	return int64(f)
}

// ToAmount 金额列按十进制解析，无法解析记 0
func ToAmount(v any) float64 {
	switch x := v.(type) {
	case int64:
		return float64(x)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0
		}
		return x
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(x))
		if err != nil {
			return 0
		}
		f, _ := d.Float64()
		return f
	}
	return 0
}

var boolValues = map[string]bool{
	"True": true, "true": true, "TRUE": true, "1": true, "1.0": true,
	"False": false, "false": false, "FALSE": false, "0": false, "0.0": false,
}

// ToBool 按显式映射表转换，映射表之外的值（含空值）为 false
func ToBool(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case int64:
		return x == 1
	case float64:
		return x == 1
	case string:
		return boolValues[strings.TrimSpace(x)]
	}
	return false
}
