package analyzer

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"careerflow/model"
)

// CSVWriter 结果集落盘为 CSV（表头 + 数据行）
type CSVWriter struct {
	file *os.File
	w    *csv.Writer
}

func NewCSVWriterTo(path string, header []string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, err
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return nil, err
	}
	return &CSVWriter{file: f, w: w}, nil
}

func (c *CSVWriter) WriteRow(row []any) error {
	rec := make([]string, len(row))
	for i, v := range row {
		rec[i] = model.FormatCell(v)
	}
	return c.w.Write(rec)
}

func (c *CSVWriter) Flush() error { c.w.Flush(); return c.w.Error() }

func (c *CSVWriter) Close() error {
	if err := c.Flush(); err != nil {
		c.file.Close()
		return err
	}
	return c.file.Close()
}

// WriteFrameCSV 整表写入 path；写入失败时删除残留文件
func WriteFrameCSV(path string, f *model.Frame) (err error) {
	w, err := NewCSVWriterTo(path, f.Columns)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
		}
	}()
	for _, row := range f.Rows {
		if err = w.WriteRow(row); err != nil {
			return err
		}
	}
	return nil
}

func cleanCell(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	return strings.TrimSpace(s)
}

func truncate(s string, max int) string {
	s = cleanCell(s)
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
