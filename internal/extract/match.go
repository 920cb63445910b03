package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// predicate 判断一个元素是否命中。所有查找都经由 findAll/findFirst 组合具名 predicate，
// 不在各字段规则里散落临时的选择逻辑。
type predicate func(s *goquery.Selection) bool

// findAll 返回 scope 内（不含 scope 自身）标签为 tag 且命中 p 的元素，保持文档顺序。
// tag 为空表示任意标签；p 为 nil 表示不过滤。
func findAll(scope *goquery.Selection, tag string, p predicate) *goquery.Selection {
	if tag == "" {
		tag = "*"
	}
	sel := scope.Find(tag)
	if p == nil {
		return sel
	}
	return sel.FilterFunction(func(_ int, s *goquery.Selection) bool { return p(s) })
}

func findFirst(scope *goquery.Selection, tag string, p predicate) *goquery.Selection {
	return findAll(scope, tag, p).First()
}

func byClass(name string) predicate {
	return func(s *goquery.Selection) bool { return s.HasClass(name) }
}

// byClassContains 匹配 class 属性中任一 class 包含 sub 的元素（例如 "jt-imdb" 命中 "jt-imdb-rating"）。
func byClassContains(sub string) predicate {
	return func(s *goquery.Selection) bool {
		v, ok := s.Attr("class")
		if !ok {
			return false
		}
		for _, c := range strings.Fields(v) {
			if strings.Contains(c, sub) {
				return true
			}
		}
		return false
	}
}

func byID(id string) predicate {
	return func(s *goquery.Selection) bool {
		v, ok := s.Attr("id")
		return ok && v == id
	}
}

func byHrefContains(sub string) predicate {
	return func(s *goquery.Selection) bool {
		v, ok := s.Attr("href")
		return ok && strings.Contains(v, sub)
	}
}

// byOwnText 只看元素自身的直接文本节点（不含子元素文本）。
func byOwnText(re *regexp.Regexp) predicate {
	return func(s *goquery.Selection) bool { return re.MatchString(ownText(s)) }
}

// flatText 把元素下所有文本节点逐段 trim、丢弃空段后用单个空格拼接。
func flatText(s *goquery.Selection) string {
	if s == nil {
		return ""
	}
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
		case html.CommentNode:
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range s.Nodes {
		walk(n)
	}
	return strings.Join(parts, " ")
}

func ownText(s *goquery.Selection) string {
	if s == nil || len(s.Nodes) == 0 {
		return ""
	}
	var b strings.Builder
	for c := s.Nodes[0].FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}
