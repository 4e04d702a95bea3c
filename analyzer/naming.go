package analyzer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

const (
	timestampLayout = "20060102_150405"
	maxNameRunes    = 50
)

// SafeFilename 把查询标题转成文件名：只保留字母、数字、空格、'-'、'_'，
// 去掉尾部空格，空格换下划线，最多 50 个字符。
func SafeFilename(title string) string {
	var b strings.Builder
	for _, r := range title {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	name := strings.ReplaceAll(strings.TrimRight(b.String(), " "), " ", "_")
	if r := []rune(name); len(r) > maxNameRunes {
		name = string(r[:maxNameRunes])
	}
	if name == "" {
		name = "query"
	}
	return name
}

// OutputPath <dir>/<name>_<YYYYMMDD_HHMMSS>.<ext>；同名文件已存在时在扩展名前追加 -1、-2 ...
func OutputPath(dir, title, ext string, at time.Time) string {
	base := fmt.Sprintf("%s_%s", SafeFilename(title), at.Format(timestampLayout))
	path := filepath.Join(dir, base+"."+ext)
	for n := 1; exists(path); n++ {
		path = filepath.Join(dir, fmt.Sprintf("%s-%d.%s", base, n, ext))
	}
	return path
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// countFiles 目录下匹配 pattern 的文件数；目录不存在为 0
func countFiles(dir, pattern string) int {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return 0
	}
	return len(matches)
}
