package run

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/John-Robertt/mlscrape/internal/config"
	"github.com/John-Robertt/mlscrape/internal/domain"
	"github.com/John-Robertt/mlscrape/internal/extract"
	"github.com/John-Robertt/mlscrape/internal/fetch"
	"github.com/John-Robertt/mlscrape/internal/infra/cache"
	"github.com/John-Robertt/mlscrape/internal/infra/httpx"
	"github.com/John-Robertt/mlscrape/internal/sink"
)

// ErrFetchFailed 表示页面无法获得（重试耗尽或离线快照缺失）；此时不写任何输出。
var ErrFetchFailed = errors.New("抓取失败")

// Deps 是 Execute 的可替换依赖（测试用）；零值即使用默认实现。
type Deps struct {
	// Client 为空时按 eff.ProxyURL/eff.Timeout 构造页面客户端。
	Client *http.Client
	// Observer 可选。
	Observer Observer
}

// Execute 执行一次 run：获取页面 -> 抽取记录 -> 写出 catalog，并返回 RunReport。
//
// 约束：
// - 页面获取失败时返回包装 ErrFetchFailed 的 error，且不创建/覆盖输出文件
// - 单个 item 解析失败只体现在 RunReport.Skipped 中，不影响 error 返回
func Execute(ctx context.Context, eff config.EffectiveConfig, deps Deps) (domain.RunReport, error) {
	logger := log.FromContext(ctx)
	obs := deps.Observer

	rr := domain.RunReport{
		URL:       eff.URL,
		Output:    eff.Output,
		StartedAt: time.Now().UTC(),
	}
	finish := func() domain.RunReport {
		rr.FinishedAt = time.Now().UTC()
		rr.Finalize()
		return rr
	}

	if obs != nil {
		obs.OnStart(eff)
	}

	obtainStarted := time.Now()
	page, source, err := obtainPage(ctx, eff, deps.Client)
	rr.Source = source
	if err != nil {
		return finish(), err
	}
	if obs != nil {
		obs.OnPhaseDone(PhaseObtain, map[string]any{
			"source": source,
			"bytes":  len(page),
		}, time.Since(obtainStarted))
	}

	extractStarted := time.Now()
	baseURL := ""
	if eff.ResolveLinks {
		baseURL = eff.URL
	}
	results := extract.New(baseURL).ExtractResults(ctx, page)
	records := extract.Records(results)
	rr.Skipped = extract.Skipped(results)
	rr.Summary.Extracted = len(records)
	for _, r := range results {
		if !r.OK() && obs != nil {
			obs.OnItemSkipped(r.Index, r.Err)
		}
	}
	if obs != nil {
		obs.OnPhaseDone(PhaseExtract, map[string]any{
			"items":     len(results),
			"extracted": len(records),
			"skipped":   len(rr.Skipped),
		}, time.Since(extractStarted))
	}

	writeStarted := time.Now()
	out := sink.JSONFile{Path: eff.Output}
	if err := out.Write(domain.NewCatalog(records)); err != nil {
		return finish(), fmt.Errorf("写出 %s 失败：%w", out.Path, err)
	}
	if obs != nil {
		obs.OnPhaseDone(PhaseWrite, map[string]any{
			"path":   out.Path,
			"movies": len(records),
		}, time.Since(writeStarted))
	}

	logger.Info("完成", "url", eff.URL, "source", source, "movies", len(records), "skipped", len(rr.Skipped))
	return finish(), nil
}

// obtainPage 按优先级获取页面：本地文件 > 离线快照 > 在线抓取（可选写快照）。
func obtainPage(ctx context.Context, eff config.EffectiveConfig, c *http.Client) ([]byte, string, error) {
	logger := log.FromContext(ctx)

	if eff.InputFile != "" {
		b, err := os.ReadFile(eff.InputFile)
		if err != nil {
			return nil, domain.SourceFile, fmt.Errorf("读取 HTML 文件失败：%w", err)
		}
		return b, domain.SourceFile, nil
	}

	if eff.SnapshotDir != "" && eff.Offline {
		store := cache.New(eff.SnapshotDir, true)
		b, ok, err := store.ReadPage(eff.URL)
		if err != nil {
			return nil, domain.SourceSnapshot, fmt.Errorf("%w：读取快照失败：%w", ErrFetchFailed, err)
		}
		if !ok {
			return nil, domain.SourceSnapshot, fmt.Errorf("%w：离线模式下快照不存在：%s", ErrFetchFailed, eff.URL)
		}
		return b, domain.SourceSnapshot, nil
	}

	if c == nil {
		pc, err := httpx.NewPageClient(eff.ProxyURL, eff.Timeout)
		if err != nil {
			return nil, domain.SourceFetch, fmt.Errorf("构造 HTTP 客户端失败：%w", err)
		}
		c = pc
	}

	b, err := fetch.New(c, eff.MaxAttempts, eff.BaseDelay).Fetch(ctx, eff.URL)
	if err != nil {
		return nil, domain.SourceFetch, fmt.Errorf("%w：%w", ErrFetchFailed, err)
	}

	if eff.SnapshotDir != "" {
		// 快照只是副产物：写失败不影响本次 run。
		if err := cache.New(eff.SnapshotDir, false).WritePage(eff.URL, b); err != nil {
			logger.Warn("写入快照失败", "url", eff.URL, "err", err)
		}
	}
	return b, domain.SourceFetch, nil
}
