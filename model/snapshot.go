package model

//
// 运行快照模型定义
//
// 说明：
// - 本文件仅定义数据结构，不包含业务逻辑。
// - 导入与分析各自在结束时生成一份 RunSnapshot；配置了 Redis 时整体 JSON 上报，供看板读取。

import "time"

// Stage 运行阶段
type Stage string

const (
	StageImport   Stage = "import"
	StageAnalysis Stage = "analysis"
	StageCleanup  Stage = "cleanup"
)

// UnitSnapshot 单个处理单元（一张表 / 一个查询）的结果
type UnitSnapshot struct {
	Name    string `json:"name"`    // 表名或查询标题
	Status  string `json:"status"`  // ok / failed / skipped
	Rows    int    `json:"rows"`    // 写入或返回的行数
	Message string `json:"message"` // 失败原因或清洗说明
}

// RunSnapshot 一次运行的汇总
type RunSnapshot struct {
	RunID      string         `json:"run_id"`
	Stage      Stage          `json:"stage"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Succeeded  int            `json:"succeeded"`
	Total      int            `json:"total"`
	Units      []UnitSnapshot `json:"units"`
	Files      []string       `json:"files,omitempty"`      // 本次生成的输出文件
	Highlights []string       `json:"highlights,omitempty"` // 分析阶段的关键结论
}
