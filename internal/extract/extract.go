package extract

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"

	"github.com/John-Robertt/mlscrape/internal/domain"
)

// Extractor 把列表页 HTML 解析为 MovieRecord 列表。
//
// 约束：
// - 永不返回 error：找不到容器视为“没有条目”，返回空列表
// - item 之间互不影响：单个 item 出错（含 panic）只丢弃该 item
// - 字段缺失/格式不符只让该字段为 null，不会导致 item 被跳过
type Extractor struct {
	// BaseURL 非空时，相对链接会被解析为绝对地址；为空时保留页面上的原值。
	BaseURL string

	rules []fieldRule // 为空时使用 defaultRules
}

func New(baseURL string) *Extractor {
	return &Extractor{BaseURL: strings.TrimSpace(baseURL)}
}

// ItemResult 是单个 item 的解析结果：成功时 Err==nil 且 Record 有效；否则该 item 被跳过。
type ItemResult struct {
	Index  int
	Record domain.MovieRecord
	Err    error
}

func (r ItemResult) OK() bool { return r.Err == nil }

// PanicError 包装 item 解析过程中被 recover 的 panic。
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string { return fmt.Sprintf("panic: %v", e.Value) }

// Extract 返回成功解析的记录（保持文档顺序）。
func (e *Extractor) Extract(ctx context.Context, page []byte) []domain.MovieRecord {
	return Records(e.ExtractResults(ctx, page))
}

// ExtractResults 返回每个 item 的解析结果（包含被跳过的 item 与原因）。
func (e *Extractor) ExtractResults(ctx context.Context, page []byte) []ItemResult {
	logger := log.FromContext(ctx)

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		logger.Warn("HTML 解析失败", "err", err)
		return []ItemResult{}
	}
	return e.ExtractDocument(ctx, doc)
}

// ExtractDocument 与 ExtractResults 相同，但输入是已解析的文档。
func (e *Extractor) ExtractDocument(ctx context.Context, doc *goquery.Document) []ItemResult {
	logger := log.FromContext(ctx)

	container := findFirst(doc.Selection, "div", byClass(containerClass))
	if container.Length() == 0 {
		logger.Debug("未找到列表容器", "class", containerClass)
		return []ItemResult{}
	}

	base := e.baseURL()
	items := findAll(container, "div", byClass(itemClass))
	out := make([]ItemResult, 0, items.Length())
	items.Each(func(i int, it *goquery.Selection) {
		// 被跳过的 item 只通过 ItemResult 返回，由调用方（run.Observer）负责记录。
		out = append(out, e.extractItem(i, it, base))
	})
	return out
}

// extractItem 依次执行字段规则；任一规则返回 error 或 panic 时，整个 item 作废。
func (e *Extractor) extractItem(idx int, it *goquery.Selection, base *url.URL) (res ItemResult) {
	res.Index = idx
	defer func() {
		if v := recover(); v != nil {
			res.Record = domain.MovieRecord{}
			res.Err = &PanicError{Value: v}
		}
	}()

	sc := &itemScope{
		item:    it,
		mask:    findFirst(it, "a", byClass(maskClass)),
		details: it,
		base:    base,
	}
	m := domain.NewMovieRecord()
	for _, r := range e.fieldRules() {
		if err := r.apply(sc, &m); err != nil {
			return ItemResult{Index: idx, Err: fmt.Errorf("字段 %s：%w", r.name, err)}
		}
	}
	res.Record = m
	return res
}

func (e *Extractor) fieldRules() []fieldRule {
	if len(e.rules) > 0 {
		return e.rules
	}
	return defaultRules
}

func (e *Extractor) baseURL() *url.URL {
	if e.BaseURL == "" {
		return nil
	}
	u, err := url.Parse(e.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil
	}
	return u
}

// Records 过滤出成功的记录（保持顺序）。
func Records(results []ItemResult) []domain.MovieRecord {
	out := make([]domain.MovieRecord, 0, len(results))
	for _, r := range results {
		if r.OK() {
			out = append(out, r.Record)
		}
	}
	return out
}

// Skipped 把失败的 item 转换为报告条目。
func Skipped(results []ItemResult) []domain.SkippedItem {
	out := make([]domain.SkippedItem, 0)
	for _, r := range results {
		if !r.OK() {
			out = append(out, domain.SkippedItem{Index: r.Index, Reason: r.Err.Error()})
		}
	}
	return out
}
