package importer

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"careerflow/model"
)

const utf8BOM = "\ufeff"

// ReadCSV 读取整个 CSV 文件：首行为表头，空单元格为 nil，不规则行按表头宽度补齐或截断
func ReadCSV(path string) (*model.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readFrame(f)
}

func readFrame(src io.Reader) (*model.Frame, error) {
	r := csv.NewReader(bufio.NewReaderSize(src, 1<<20))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty file: no header row")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make([]string, len(header))
	copy(cols, header)
	if len(cols) > 0 {
		cols[0] = strings.TrimPrefix(cols[0], utf8BOM)
	}

	out := model.NewFrame(cols...)
	line := 1
	for {
		rec, err := r.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("read line %d: %w", line+1, err)
		}
		line++
		row := make([]any, len(cols))
		for i := 0; i < len(cols) && i < len(rec); i++ {
			if strings.TrimSpace(rec[i]) == "" {
				continue
			}
			row[i] = rec[i]
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

// countDataRows 只计数不解析，复用导入时的读取参数
func countDataRows(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := csv.NewReader(bufio.NewReader(f))
	r.ReuseRecord = true
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	if _, err := r.Read(); err != nil {
		if err == io.EOF {
			return 0, nil
		}
		return 0, err
	}
	count := 0
	for {
		rec, err := r.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return count, err
		}
		if blankRecord(rec) {
			continue
		}
		count++
	}
	return count, nil
}

func blankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
