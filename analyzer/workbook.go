package analyzer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"careerflow/model"

	"github.com/xuri/excelize/v2"
)

const (
	overviewSheet = "Overview"
	maxSheetName  = 31
)

// Workbook 把各查询结果汇总进一个 xlsx：首个 sheet 为概览，其余每个查询一页
type Workbook struct {
	f      *excelize.File
	used   map[string]bool
	row    int
	sheets int
}

func NewWorkbook() *Workbook {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", overviewSheet)
	wb := &Workbook{f: f, used: map[string]bool{strings.ToLower(overviewSheet): true}, row: 1}
	header := []any{"Query", "Sheet", "Rows", "Columns", "CSV file"}
	f.SetSheetRow(overviewSheet, "A1", &header)
	f.SetColWidth(overviewSheet, "A", "A", 36)
	f.SetColWidth(overviewSheet, "E", "E", 60)
	return wb
}

// Len 已写入的结果页数
func (wb *Workbook) Len() int { return wb.sheets }

// AddResult 新增一页写入结果集，并在概览页登记
func (wb *Workbook) AddResult(title string, fr *model.Frame, csvPath string) error {
	name := wb.sheetName(title)
	if _, err := wb.f.NewSheet(name); err != nil {
		return fmt.Errorf("new sheet %q: %w", name, err)
	}
	header := make([]any, len(fr.Columns))
	for i, c := range fr.Columns {
		header[i] = c
	}
	if err := wb.f.SetSheetRow(name, "A1", &header); err != nil {
		return err
	}
	for i, row := range fr.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := append([]any(nil), row...)
		if err := wb.f.SetSheetRow(name, cell, &values); err != nil {
			return err
		}
	}

	wb.row++
	cell, err := excelize.CoordinatesToCellName(1, wb.row)
	if err != nil {
		return err
	}
	entry := []any{title, name, fr.Len(), len(fr.Columns), filepath.Base(csvPath)}
	if err := wb.f.SetSheetRow(overviewSheet, cell, &entry); err != nil {
		return err
	}
	wb.sheets++
	return nil
}

// Save 写到 path；失败时不留残缺文件
func (wb *Workbook) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := wb.f.SaveAs(path); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}

func (wb *Workbook) Close() error { return wb.f.Close() }

// sheetName 去掉 Excel 不允许的字符，截断到 31 个字符，重名加序号
func (wb *Workbook) sheetName(title string) string {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return -1
		}
		return r
	}, title)
	clean = strings.Trim(clean, "' ")
	if clean == "" {
		clean = "Result"
	}
	base := []rune(clean)
	if len(base) > maxSheetName {
		base = base[:maxSheetName]
	}
	name := string(base)
	for n := 2; wb.used[strings.ToLower(name)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		keep := maxSheetName - len([]rune(suffix))
		if len(base) < keep {
			keep = len(base)
		}
		name = string(base[:keep]) + suffix
	}
	wb.used[strings.ToLower(name)] = true
	return name
}
