package domain

import (
	"encoding/json"
	"sort"
	"time"
)

const (
	SourceFetch    = "fetch"
	SourceSnapshot = "snapshot"
	SourceFile     = "file"
)

// RunReport 描述一次运行的结果（用于日志与状态行，不写入 movies 输出文件）。
type RunReport struct {
	URL    string `json:"url"`
	Source string `json:"source"`
	Output string `json:"output"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Summary ReportSummary `json:"summary"`
	Skipped []SkippedItem `json:"skipped"`
}

type ReportSummary struct {
	Items     int `json:"items"`
	Extracted int `json:"extracted"`
	Skipped   int `json:"skipped"`
}

// SkippedItem 记录一个因解析异常被整体丢弃的 item。
type SkippedItem struct {
	Index  int    `json:"index"` // item 在容器内的文档顺序（从 0 开始）
	Reason string `json:"reason"`
}

// Finalize 做三件事：
// 1) 时间统一为 UTC
// 2) skipped 按 index 稳定排序
// 3) summary.skipped 由 skipped 计算得出；items = extracted + skipped
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	if r.Skipped == nil {
		r.Skipped = []SkippedItem{}
	}
	sort.SliceStable(r.Skipped, func(i, j int) bool {
		return r.Skipped[i].Index < r.Skipped[j].Index
	})

	r.Summary.Skipped = len(r.Skipped)
	r.Summary.Items = r.Summary.Extracted + r.Summary.Skipped
}

// MarshalJSON 仅用于集中约束输出的稳定性。
func (r RunReport) MarshalJSON() ([]byte, error) {
	type Alias RunReport
	return json.Marshal(Alias(r))
}
