package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = time.Second
)

// Fetcher 负责“取回列表页原始 HTML”。
//
// 约束：
// - 每次尝试只发一次 GET；仅 HTTP 200 视为成功
// - 失败（非 200 或传输错误）后线性退避：第 n 次失败等待 BaseDelay*n
// - 最多 MaxAttempts 次尝试，耗尽后返回 *FetchError（不 panic，由调用方决定是否中止）
type Fetcher struct {
	Client      *http.Client
	MaxAttempts int
	BaseDelay   time.Duration

	// OnRetry 可选：每次失败后、等待开始前调用，attempt 为刚失败的尝试序号（从 1 开始）。
	OnRetry func(attempt int, wait time.Duration)
}

func New(c *http.Client, maxAttempts int, baseDelay time.Duration) *Fetcher {
	return &Fetcher{Client: c, MaxAttempts: maxAttempts, BaseDelay: baseDelay}
}

// Fetch 取回 pageURL 的页面内容。
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	if f == nil || f.Client == nil {
		return nil, errors.New("http client 不能为空")
	}
	if strings.TrimSpace(pageURL) == "" {
		return nil, errors.New("url 不能为空")
	}
	logger := log.FromContext(ctx)

	attempts := f.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var (
		body    []byte
		attempt int
	)
	op := func() error {
		attempt++
		b, err := getOnce(ctx, f.Client, pageURL)
		if err != nil {
			var se *StatusError
			if errors.As(err, &se) {
				logger.Warn("抓取返回非 200", "attempt", attempt, "status", se.StatusCode, "url", pageURL)
			} else {
				logger.Warn("抓取出错", "attempt", attempt, "err", err, "url", pageURL)
			}
			return err
		}
		body = b
		return nil
	}
	notify := func(_ error, wait time.Duration) {
		logger.Debug("等待后重试", "wait", wait, "next_attempt", attempt+1)
		if f.OnRetry != nil {
			f.OnRetry(attempt, wait)
		}
	}

	b := backoff.WithContext(backoff.WithMaxRetries(NewLinearBackOff(f.BaseDelay), uint64(attempts-1)), ctx)
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return nil, &FetchError{URL: pageURL, Attempts: attempt, Err: err}
	}
	return body, nil
}

func getOnce(ctx context.Context, c *http.Client, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{URL: u, StatusCode: resp.StatusCode, Location: resp.Header.Get("Location")}
	}
	return io.ReadAll(resp.Body)
}

// LinearBackOff 实现 backoff.BackOff：第 n 次调用返回 Base*n。
// 次数上限由 backoff.WithMaxRetries 控制，这里永不返回 backoff.Stop。
type LinearBackOff struct {
	Base time.Duration

	n int
}

func NewLinearBackOff(base time.Duration) *LinearBackOff {
	if base < 0 {
		base = 0
	}
	return &LinearBackOff{Base: base}
}

func (b *LinearBackOff) NextBackOff() time.Duration {
	b.n++
	return b.Base * time.Duration(b.n)
}

func (b *LinearBackOff) Reset() { b.n = 0 }

// StatusError 表示站点返回了非 200 的 HTTP 状态码。
type StatusError struct {
	URL        string
	StatusCode int
	Location   string
}

func (e *StatusError) Error() string {
	if e == nil {
		return "HTTP status error"
	}
	loc := strings.TrimSpace(e.Location)
	if loc == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d location=%s", e.StatusCode, loc)
}

// FetchError 表示所有尝试都失败（“没有内容”信号）。Err 是最后一次失败的原因。
type FetchError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("抓取失败：url=%s attempts=%d: %v", e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsFetchFailure 判断 err 是否为重试耗尽后的抓取失败。
func IsFetchFailure(err error) bool {
	var e *FetchError
	return errors.As(err, &e)
}
