package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"careerflow/model"
)

// Query 执行只读 SQL，结果整体读入 Frame
func (s *DB) Query(ctx context.Context, query string) (*model.Frame, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	typeNames := make([]string, len(cols))
	for i, ct := range colTypes {
		typeNames[i] = strings.ToUpper(ct.DatabaseTypeName())
	}

	out := model.NewFrame(cols...)
	for rows.Next() {
		raw := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i := range raw {
			raw[i] = normalizeCell(raw[i], typeNames[i])
		}
		out.Rows = append(out.Rows, raw)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// normalizeCell 把驱动返回值统一为 Frame 约定的类型
func normalizeCell(v any, typeName string) any {
	switch x := v.(type) {
	case nil, int64, float64, bool:
		return x
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case int16:
		return int64(x)
	case float32:
		return float64(x)
	case []byte:
		return normalizeCell(string(x), typeName)
	case string:
		if isNumericType(typeName) {
			if n, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
				return n
			}
		}
		return x
	case time.Time:
		return x.Format(time.RFC3339)
	case fmt.Stringer:
		return normalizeCell(x.String(), typeName)
	default:
		return fmt.Sprint(x)
	}
}

func isNumericType(typeName string) bool {
	switch typeName {
	case "NUMERIC", "DECIMAL", "REAL", "DOUBLE", "DOUBLE PRECISION", "FLOAT", "FLOAT8", "FLOAT4":
		return true
	}
	return false
}

// Scalar 读取单个数值（COUNT/AVG 等），NULL 返回 0
func (s *DB) Scalar(ctx context.Context, query string) (float64, error) {
	f, err := s.Query(ctx, query)
	if err != nil {
		return 0, err
	}
	if f.Empty() || len(f.Columns) == 0 {
		return 0, nil
	}
	n, _ := f.Float(0, f.Columns[0])
	return n, nil
}

// TableExists 表是否存在
func (s *DB) TableExists(ctx context.Context, name string) (bool, error) {
	var q string
	if s.dialect == Postgres {
		q = `SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = $1`
	} else {
		q = `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`
	}
	var n int
	if err := s.db.QueryRowContext(ctx, q, name).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// CountRows 表行数
func (s *DB) CountRows(ctx context.Context, name string) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quoteIdent(name)).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
