package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
)

// SourceFile 源目录中一个预期 CSV 的情况
type SourceFile struct {
	Table   string
	File    string
	Present bool
	Rows    int
	Size    int64
	Err     error
}

// Inventory 列出导入所需的全部源文件（含 company_industries.csv）及其数据行数
func Inventory(sourceDir string) []SourceFile {
	files := make([]SourceFile, 0, len(Steps)+1)
	for _, s := range Steps {
		files = append(files, inspect(sourceDir, s.Table, s.File))
	}
	return append(files, inspect(sourceDir, "company_industries", companyIndustriesFile))
}

func inspect(dir, table, file string) SourceFile {
	sf := SourceFile{Table: table, File: file}
	path := filepath.Join(dir, file)
	info, err := os.Stat(path)
	if err != nil {
		return sf
	}
	sf.Present = true
	sf.Size = info.Size()
	sf.Rows, sf.Err = countDataRows(path)
	return sf
}

// WriteInventoryMarkdown 输出 markdown 统计报告
func WriteInventoryMarkdown(w io.Writer, sourceDir string, files []SourceFile, at time.Time) error {
	var totalFiles, totalRows int
	var missing []string

	if _, err := fmt.Fprintf(w, "# Source CSV inventory\n\nSource directory: `%s`\n\n", sourceDir); err != nil {
		return err
	}
	fmt.Fprintln(w, "| File | Table | Present | Rows | Size |")
	fmt.Fprintln(w, "|------|-------|---------|------|------|")
	for _, f := range files {
		present, rows, size := "no", "-", "-"
		if f.Present {
			present = "yes"
			size = humanize.Bytes(uint64(f.Size))
			rows = humanize.Comma(int64(f.Rows))
			if f.Err != nil {
				rows += " (read error)"
			}
			totalFiles++
			totalRows += f.Rows
		} else {
			missing = append(missing, f.File)
		}
		fmt.Fprintf(w, "| %s | %s | %s | %s | %s |\n", f.File, f.Table, present, rows, size)
	}

	fmt.Fprintln(w, "\n## Totals")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "- **Files present**: %d/%d\n", totalFiles, len(files))
	fmt.Fprintf(w, "- **Data rows**: %s\n", humanize.Comma(int64(totalRows)))
	if len(missing) > 0 {
		fmt.Fprintf(w, "- **Missing**: %v\n", missing)
	}
	_, err := fmt.Fprintf(w, "- **Generated at**: %s\n", at.Format("2006-01-02 15:04:05"))
	return err
}
