package main

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"

	"github.com/John-Robertt/mlscrape/internal/app/run"
	"github.com/John-Robertt/mlscrape/internal/config"
)

func TestProgressLog_WritesPhasesAndSkips(t *testing.T) {
	var buf bytes.Buffer
	p := newProgressLog(log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel}))

	p.OnStart(config.EffectiveConfig{URL: "https://example.test/", Output: "voot.json", ProxyURL: "http://u:p@proxy:8080"})
	p.OnPhaseDone(run.PhaseExtract, map[string]any{"items": 3, "extracted": 2, "skipped": 1}, 1500*time.Millisecond)
	p.OnItemSkipped(1, errors.New("boom"))

	out := buf.String()
	assert.Contains(t, out, "https://example.test/")
	assert.Contains(t, out, "extracted=2")
	assert.Contains(t, out, "1.5s")
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "WARN", "跳过的 item 以 warn 级别记录")
	assert.NotContains(t, out, "u:p", "不应回显代理凭据")
}

func TestFormatProxy(t *testing.T) {
	assert.Equal(t, "off", formatProxy(""))
	assert.Equal(t, "on (http://proxy:8080, auth=off)", formatProxy("http://proxy:8080"))
	assert.Equal(t, "on (socks5://h:1080, auth=on)", formatProxy("socks5://a:b@h:1080"))
	assert.Equal(t, "on (invalid)", formatProxy("::"))
}

func TestSourceMode(t *testing.T) {
	assert.Equal(t, "fetch", sourceMode(config.EffectiveConfig{SnapshotDir: "s"}))
	assert.Equal(t, "snapshot (offline)", sourceMode(config.EffectiveConfig{SnapshotDir: "s", Offline: true}))
	assert.Equal(t, "file:a.html", sourceMode(config.EffectiveConfig{InputFile: "a.html", Offline: true}))
}

func TestIntField(t *testing.T) {
	assert.Equal(t, 0, intField(nil, "x"))
	assert.Equal(t, 3, intField(map[string]any{"x": 3}, "x"))
	assert.Equal(t, 0, intField(map[string]any{"x": "3"}, "x"))
}
