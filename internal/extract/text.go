package extract

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	yearRE     = regexp.MustCompile(`\d{4}`)
	ratingRE   = regexp.MustCompile(`\d+(\.\d+)?`)
	durationRE = regexp.MustCompile(`(?i)\d+[\s\p{Zs}]*min`)
	countryRE  = regexp.MustCompile(`(?i)Country:`)
	genreRE    = regexp.MustCompile(`(?i)Genre:`)
)

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// textPtr 返回扁平化文本；空串视为缺失。
func textPtr(s *goquery.Selection) *string {
	if s == nil || s.Length() == 0 {
		return nil
	}
	return strPtr(flatText(s))
}

// firstAttr 依次尝试候选属性名，返回第一个非空值。
func firstAttr(s *goquery.Selection, names ...string) string {
	if s == nil || s.Length() == 0 {
		return ""
	}
	for _, n := range names {
		if v, ok := s.Attr(n); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

func parseInt(s string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &n
}

func parseYear(s string) *int {
	m := yearRE.FindString(s)
	if m == "" {
		return nil
	}
	return parseInt(m)
}

func parseRating(s string) *float64 {
	m := ratingRE.FindString(s)
	if m == "" {
		return nil
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return nil
	}
	return &f
}

// resolveURL 在 base 非空时把相对地址解析为绝对地址；否则原样返回。
func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || base == nil {
		return href
	}
	if strings.HasPrefix(href, "//") {
		scheme := base.Scheme
		if scheme == "" {
			scheme = "https"
		}
		return scheme + ":" + href
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	ru, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ru).String()
}
