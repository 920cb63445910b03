package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPageClient_ProxyDisablesKeepAlive(t *testing.T) {
	c, err := NewPageClient("http://127.0.0.1:8080", 0)
	require.NoError(t, err)

	tr, ok := c.Transport.(*Transport)
	require.True(t, ok, "期望 *Transport，实际 %T", c.Transport)
	assert.NotNil(t, tr.Base.Proxy, "期望启用代理")
	assert.True(t, tr.Base.DisableKeepAlives, "期望禁用 keep-alive")
	assert.True(t, tr.DisableKeepAlives, "期望设置 Request.Close=true 的额外保险")
	assert.Equal(t, DefaultTimeout, c.Timeout)
}

func TestNewPageClient_NoProxyKeepsDefault(t *testing.T) {
	c, err := NewPageClient("", 5*time.Second)
	require.NoError(t, err)

	tr := c.Transport.(*Transport)
	assert.Nil(t, tr.Base.Proxy)
	assert.False(t, tr.Base.DisableKeepAlives)
	assert.Equal(t, 5*time.Second, c.Timeout)
}

func TestNewPageClient_InvalidProxyURL(t *testing.T) {
	_, err := NewPageClient("http://[::1", 0)
	assert.Error(t, err)
}

func TestTransport_InjectsIdentityHeaders(t *testing.T) {
	var gotUA, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotLang = r.Header.Get("Accept-Language")
	}))
	defer srv.Close()

	c, err := NewPageClient("", 0)
	require.NoError(t, err)

	resp, err := c.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, UserAgent, gotUA)
	assert.Equal(t, AcceptLanguage, gotLang)
}

func TestTransport_KeepsExplicitHeaderAndDoesNotMutateRequest(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	c, err := NewPageClient("", 0)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "custom/1.0")

	resp, err := c.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "custom/1.0", gotUA)
	assert.Empty(t, req.Header.Get("Accept-Language"), "调用方的 request 不应被修改")
}
