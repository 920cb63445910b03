package run

import (
	"time"

	"github.com/John-Robertt/mlscrape/internal/config"
)

// Observer 用于把“运行阶段/被跳过条目”从核心执行流程中解耦出来。
//
// 约束：
// - run 包只负责发事件，不做任何输出（stdout 只留给 CLI 的状态行）。
// - 事件按阶段顺序同步发出：obtain -> extract -> write。
type Observer interface {
	// OnStart 在 Execute 开始时调用（早于任何阶段事件）。
	OnStart(eff config.EffectiveConfig)
	// OnPhaseDone 在阶段结束时调用（用于打印阶段统计与耗时）。
	OnPhaseDone(name string, fields map[string]any, dur time.Duration)
	// OnItemSkipped 在某个 item 因解析失败被丢弃时调用。
	OnItemSkipped(idx int, err error)
}

// Phase 名称。
const (
	PhaseObtain  = "obtain"
	PhaseExtract = "extract"
	PhaseWrite   = "write"
)
