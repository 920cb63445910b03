package httpx

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultTimeout 是单次请求的固定超时（包含读取 body）。
	DefaultTimeout = 20 * time.Second

	// UserAgent 与 AcceptLanguage 是固定的浏览器身份头；列表页对非浏览器 UA 会返回拦截页。
	UserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/115.0 Safari/537.36"
	AcceptLanguage = "en-US,en;q=0.9"
)

// Transport 把“固定身份头 + 代理 + keep-alive 策略”固化为统一策略。
//
// 约束：不做重试（重试与退避由 fetch 包统一负责）。
type Transport struct {
	Base *http.Transport

	// Header 中的每一项仅在请求未显式设置时注入。
	Header http.Header

	// DisableKeepAlives 决定是否对 Request 设置 Close=true（额外保险）。
	// 真正禁用 keep-alive 依赖 Base.DisableKeepAlives。
	DisableKeepAlives bool
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	if t.Base == nil {
		return nil, errors.New("nil base transport")
	}

	// Clone 会复制 Header 等，避免在 RoundTripper 内部“污染”调用方的 request。
	r := req.Clone(req.Context())
	for k, vs := range t.Header {
		if r.Header.Get(k) != "" || len(vs) == 0 {
			continue
		}
		r.Header.Set(k, vs[0])
	}
	if t.DisableKeepAlives {
		r.Close = true
	}
	return t.Base.RoundTrip(r)
}

// IdentityHeader 返回列表页请求使用的固定身份头。
func IdentityHeader() http.Header {
	h := make(http.Header, 2)
	h.Set("User-Agent", UserAgent)
	h.Set("Accept-Language", AcceptLanguage)
	return h
}

// NewPageClient 构造用于列表页抓取的 HTTP client。
//
// 规则：
// - proxyURL 非空：必须走代理，且禁用 keep-alive（每请求新连接）
// - 固定身份头（UA + Accept-Language）
// - timeout<=0 时使用 DefaultTimeout
func NewPageClient(proxyURL string, timeout time.Duration) (*http.Client, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	base := &http.Transport{
		Proxy:                 nil,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 15 * time.Second,
	}

	proxyURL = strings.TrimSpace(proxyURL)
	disableKeepAlives := false
	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return nil, err
		}
		base.Proxy = http.ProxyURL(u)
		// proxy 模式强制每请求新连接（代理池轮换依赖该行为）。
		base.DisableKeepAlives = true
		disableKeepAlives = true
	}

	tr := &Transport{
		Base:              base,
		Header:            IdentityHeader(),
		DisableKeepAlives: disableKeepAlives,
	}
	return &http.Client{
		Transport: tr,
		Timeout:   timeout,
	}, nil
}
