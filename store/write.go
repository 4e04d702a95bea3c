package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"careerflow/model"

	"go.uber.org/zap"
)

// ReplaceTable 用 f 的内容整体替换表 name：同一事务内 DROP -> CREATE -> INSERT，
// 失败时回滚，原表保持不变。
func (s *DB) ReplaceTable(ctx context.Context, name string, f *model.Frame) error {
	if f == nil || len(f.Columns) == 0 {
		return fmt.Errorf("replace %s: frame has no columns", name)
	}
	start := time.Now()
	types := make([]ColumnType, len(f.Columns))
	col := make([]any, f.Len())
	for i := range f.Columns {
		for r, row := range f.Rows {
			if i < len(row) {
				col[r] = row[i]
			} else {
				col[r] = nil
			}
		}
		types[i] = InferColumnType(col)
	}

	defs := make([]string, len(f.Columns))
	names := make([]string, len(f.Columns))
	marks := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		names[i] = quoteIdent(c)
		defs[i] = names[i] + " " + types[i].SQL()
		marks[i] = s.placeholder(i + 1)
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelDefault})
	if err != nil {
		return fmt.Errorf("begin replace %s: %w", name, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(name)); err != nil {
		return fmt.Errorf("drop %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(name), strings.Join(defs, ", "))); err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", quoteIdent(name), strings.Join(names, ", "), strings.Join(marks, ", ")))
	if err != nil {
		return fmt.Errorf("prepare insert %s: %w", name, err)
	}
	defer stmt.Close()

	args := make([]any, len(f.Columns))
	for r, row := range f.Rows {
		for i := range f.Columns {
			var v any
			if i < len(row) {
				v = row[i]
			}
			args[i] = convertValue(v, types[i])
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert %s row %d: %w", name, r+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", name, err)
	}
	s.logger.Debug("table replaced",
		zap.String("table", name),
		zap.Int("rows", f.Len()),
		zap.Int("columns", len(f.Columns)),
		zap.Duration("took", time.Since(start)))
	return nil
}
