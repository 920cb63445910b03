package cache

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/John-Robertt/mlscrape/internal/infra/fsx"
)

// Store 提供 <root>/pages/ 下的列表页快照读写。
//
// 约束：
// - 快照只是“抓取到的原始 HTML”，不做过期、不做去重
// - ReadOnly=true 时只允许读（离线重放）
type Store struct {
	Root     string
	ReadOnly bool
}

var ErrReadOnly = errors.New("cache: read-only")

func New(root string, readOnly bool) Store {
	return Store{
		Root:     filepath.Clean(strings.TrimSpace(root)),
		ReadOnly: readOnly,
	}
}

// PagePath 返回 pageURL 对应快照文件的绝对路径：<root>/pages/<host>/<slug>.html。
func (s Store) PagePath(pageURL string) (string, error) {
	host, slug, err := pageKey(pageURL)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.Root, "pages", host, slug+".html"), nil
}

// ReadPage 读取快照；不存在不算错误（ok=false）。
func (s Store) ReadPage(pageURL string) ([]byte, bool, error) {
	path, err := s.PagePath(pageURL)
	if err != nil {
		return nil, false, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return b, true, nil
}

func (s Store) WritePage(pageURL string, html []byte) error {
	if s.ReadOnly {
		return ErrReadOnly
	}
	path, err := s.PagePath(pageURL)
	if err != nil {
		return err
	}
	return fsx.WriteFile(path, html)
}

var unsafeRE = regexp.MustCompile(`[^a-z0-9_-]+`)

// pageKey 把 URL 映射为 (host, slug)；只保留安全字符，避免路径穿越。
func pageKey(pageURL string) (string, string, error) {
	u, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil {
		return "", "", fmt.Errorf("url 无效：%w", err)
	}
	host := strings.Trim(unsafeRE.ReplaceAllString(strings.ToLower(u.Hostname()), "_"), "_")
	if host == "" {
		return "", "", fmt.Errorf("url 缺少 host：%q", pageURL)
	}
	p := strings.ToLower(strings.Trim(u.Path, "/"))
	if u.RawQuery != "" {
		p += "_" + strings.ToLower(u.RawQuery)
	}
	slug := strings.Trim(unsafeRE.ReplaceAllString(p, "_"), "_")
	if slug == "" {
		slug = "index"
	}
	return host, slug, nil
}
