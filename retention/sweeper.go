package retention

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"careerflow/errors"
	"careerflow/logging"

	"go.uber.org/zap"
)

// Target 一类待清理文件：目录 + glob 模式
type Target struct {
	Category string
	Dir      string
	Pattern  string
}

// DefaultTargets 报表目录下的 csv/xlsx 与图表目录下的 png
func DefaultTargets(resultsDir, chartsDir string) []Target {
	return []Target{
		{Category: "csv", Dir: resultsDir, Pattern: "*.csv"},
		{Category: "xlsx", Dir: resultsDir, Pattern: "*.xlsx"},
		{Category: "png", Dir: chartsDir, Pattern: "*.png"},
	}
}

// Status 单个文件的处理结果
type Status string

const (
	Deleted Status = "deleted"
	Skipped Status = "skipped"
	Failed  Status = "failed"
)

// Outcome 单个文件的清理结果
type Outcome struct {
	Path     string
	Category string
	Age      time.Duration
	Status   Status
	Err      error
}

// Report 一次清理的结果；Deleted 按类别计数
type Report struct {
	Outcomes []Outcome
	Deleted  map[string]int
}

// Failures 失败的文件
func (r *Report) Failures() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Status == Failed {
			out = append(out, o)
		}
	}
	return out
}

// Total 删除总数
func (r *Report) Total() int {
	n := 0
	for _, c := range r.Deleted {
		n += c
	}
	return n
}

// Sweeper 按修改时间删除过期输出文件
type Sweeper struct {
	// Strict 为 true 时遇到第一个删除失败即停止并返回该错误
	Strict bool
	Now    func() time.Time
	Remove func(path string) error
	logger *zap.Logger
}

func NewSweeper(logger *zap.Logger) *Sweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{Now: time.Now, Remove: os.Remove, logger: logger}
}

// Sweep 删除 now - mtime > maxAge 的文件。目录不存在时没有任何结果。
// 非严格模式下失败只记录在 Report 中，返回的 error 恒为 nil。
func (s *Sweeper) Sweep(targets []Target, maxAge time.Duration) (*Report, error) {
	rep := &Report{Deleted: make(map[string]int, len(targets))}
	for _, t := range targets {
		rep.Deleted[t.Category] = 0
	}
	now := s.Now()

	for _, t := range targets {
		matches, err := filepath.Glob(filepath.Join(t.Dir, t.Pattern))
		if err != nil {
			return rep, fmt.Errorf("bad pattern %q: %w", t.Pattern, err)
		}
		sort.Strings(matches)
		for _, path := range matches {
			o := s.sweepOne(path, t.Category, now, maxAge)
			rep.Outcomes = append(rep.Outcomes, o)
			switch o.Status {
			case Deleted:
				rep.Deleted[t.Category]++
				s.logger.Debug("expired file removed", zap.String("path", path), zap.Duration("age", o.Age))
			case Failed:
				s.logger.Warn("failed to remove expired file",
					zap.String("path", path),
					zap.Error(o.Err),
					logging.Stack(errors.StackOf(o.Err)))
				if s.Strict {
					return rep, o.Err
				}
			}
		}
	}
	return rep, nil
}

func (s *Sweeper) sweepOne(path, category string, now time.Time, maxAge time.Duration) Outcome {
	o := Outcome{Path: path, Category: category}
	info, err := os.Stat(path)
	if err != nil {
		o.Status, o.Err = Failed, errors.Backend("stat "+path, err)
		return o
	}
	if info.IsDir() {
		o.Status = Skipped
		return o
	}
	o.Age = now.Sub(info.ModTime())
	if o.Age <= maxAge {
		o.Status = Skipped
		return o
	}
	if err := s.Remove(path); err != nil {
		o.Status, o.Err = Failed, errors.Backend("remove "+path, err)
		return o
	}
	o.Status = Deleted
	return o
}
