package main

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/John-Robertt/mlscrape/internal/app/run"
	"github.com/John-Robertt/mlscrape/internal/config"
)

var _ run.Observer = (*progressLog)(nil)

// progressLog 把 run 的阶段事件写成结构化日志（stderr），stdout 只保留最终状态行。
type progressLog struct {
	logger *log.Logger
}

func newProgressLog(logger *log.Logger) *progressLog {
	return &progressLog{logger: logger}
}

func (p *progressLog) OnStart(eff config.EffectiveConfig) {
	p.logger.Info("开始",
		"url", eff.URL,
		"source", sourceMode(eff),
		"out", eff.Output,
	)
	p.logger.Debug("配置（生效）",
		"attempts", eff.MaxAttempts,
		"base_delay", eff.BaseDelay,
		"timeout", eff.Timeout,
		"proxy", formatProxy(eff.ProxyURL),
		"snapshot_dir", eff.SnapshotDir,
		"resolve_links", onOff(eff.ResolveLinks),
	)
}

func (p *progressLog) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	switch name {
	case run.PhaseObtain:
		p.logger.Info("获取页面", "source", fields["source"], "bytes", intField(fields, "bytes"), "dur", formatShortDuration(dur))
	case run.PhaseExtract:
		p.logger.Info("解析",
			"items", intField(fields, "items"),
			"extracted", intField(fields, "extracted"),
			"skipped", intField(fields, "skipped"),
			"dur", formatShortDuration(dur),
		)
	case run.PhaseWrite:
		p.logger.Debug("写出", "path", fields["path"], "movies", intField(fields, "movies"), "dur", formatShortDuration(dur))
	default:
		p.logger.Debug(name, "dur", formatShortDuration(dur))
	}
}

func (p *progressLog) OnItemSkipped(idx int, err error) {
	p.logger.Warn("解析 item 失败，已跳过", "index", idx, "err", err)
}

func sourceMode(eff config.EffectiveConfig) string {
	switch {
	case eff.InputFile != "":
		return "file:" + eff.InputFile
	case eff.SnapshotDir != "" && eff.Offline:
		return "snapshot (offline)"
	default:
		return "fetch"
	}
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

// formatProxy 只展示 scheme/host，不回显凭据。
func formatProxy(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "off"
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "on (invalid)"
	}
	auth := "off"
	if u.User != nil {
		auth = "on"
	}
	return fmt.Sprintf("on (%s://%s, auth=%s)", u.Scheme, u.Host, auth)
}

func formatShortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func intField(fields map[string]any, key string) int {
	if fields == nil {
		return 0
	}
	switch x := fields[key].(type) {
	case int:
		return x
	case int64:
		return int(x)
	default:
		return 0
	}
}
