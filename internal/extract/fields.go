package extract

import (
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/mlscrape/internal/domain"
)

// 列表页结构标记（站点模板固定）。
const (
	containerClass = "movies-list"
	itemClass      = "ml-item"
	maskClass      = "ml-mask"
	qualityClass   = "mli-quality"
	hiddenTipID    = "hidden_tip"
	descClass      = "f-desc"
	imdbClassPart  = "jt-imdb"
	infoClass      = "jt-info"

	releaseYearPath = "/release-year/"
	genrePath       = "/genre/"
)

// 候选 id 属性，先出现的优先。
var idAttrs = []string{"data-movie-id", "data-id"}

// 候选缩略图属性：懒加载地址优先。
var thumbAttrs = []string{"data-original", "src"}

// itemScope 是单个 item 在解析过程中的查找根。
type itemScope struct {
	item    *goquery.Selection
	mask    *goquery.Selection // a.ml-mask；可能为空 Selection
	details *goquery.Selection // #hidden_tip；不存在时回退为 item 本身
	base    *url.URL
}

func (sc *itemScope) href(s *goquery.Selection) *string {
	if s == nil || s.Length() == 0 {
		return nil
	}
	v, ok := s.Attr("href")
	if !ok {
		return nil
	}
	return strPtr(resolveURL(sc.base, v))
}

// fieldRule 是一条具名字段规则：只写自己负责的字段。
// 返回 error 表示该 item 无法继续解析（整体跳过）；字段缺失/格式不符不是 error。
type fieldRule struct {
	name  string
	apply func(sc *itemScope, m *domain.MovieRecord) error
}

// defaultRules 的顺序有意义：details 必须先于依赖它的字段。
var defaultRules = []fieldRule{
	{"id", ruleID},
	{"title", ruleTitle},
	{"watch", ruleWatch},
	{"language", ruleLanguage},
	{"thumbnail", ruleThumbnail},
	{"details", ruleDetails},
	{"description", ruleDescription},
	{"year", ruleYear},
	{"imdb_rating", ruleRating},
	{"duration", ruleDuration},
	{"country", ruleCountry},
	{"genres", ruleGenres},
}

func ruleID(sc *itemScope, m *domain.MovieRecord) error {
	m.ID = parseInt(firstAttr(sc.item, idAttrs...))
	return nil
}

func ruleTitle(sc *itemScope, m *domain.MovieRecord) error {
	m.Title = textPtr(findFirst(sc.mask, "h2", nil))
	return nil
}

func ruleWatch(sc *itemScope, m *domain.MovieRecord) error {
	m.Links.Watch = sc.href(sc.mask)
	return nil
}

func ruleLanguage(sc *itemScope, m *domain.MovieRecord) error {
	m.Language = textPtr(findFirst(sc.mask, "span", byClass(qualityClass)))
	return nil
}

func ruleThumbnail(sc *itemScope, m *domain.MovieRecord) error {
	img := findFirst(sc.mask, "img", nil)
	m.Thumbnail = strPtr(resolveURL(sc.base, firstAttr(img, thumbAttrs...)))
	return nil
}

func ruleDetails(sc *itemScope, _ *domain.MovieRecord) error {
	sc.details = sc.item
	if tip := findFirst(sc.item, "", byID(hiddenTipID)); tip.Length() > 0 {
		sc.details = tip
	}
	return nil
}

// ruleDescription 处理两种嵌套：
// - p.f-desc 内真的还有 <p>：取内层文本
// - HTML5 解析器会把 <p> 内的 <p> 提升为下一个兄弟节点，外层变为空段落：取紧随其后的 <p>
func ruleDescription(sc *itemScope, m *domain.MovieRecord) error {
	desc := findFirst(sc.details, "p", byClass(descClass))
	if desc.Length() == 0 {
		return nil
	}
	if inner := desc.Find("p").First(); inner.Length() > 0 {
		m.Description = textPtr(inner)
		return nil
	}
	if flatText(desc) == "" {
		if next := desc.Next(); next.Is("p") {
			m.Description = textPtr(next)
			return nil
		}
	}
	m.Description = textPtr(desc)
	return nil
}

func ruleYear(sc *itemScope, m *domain.MovieRecord) error {
	a := findFirst(sc.details, "a", byHrefContains(releaseYearPath))
	if a.Length() == 0 {
		return nil
	}
	m.Year = parseYear(flatText(a))
	m.Links.Year = sc.href(a)
	return nil
}

func ruleRating(sc *itemScope, m *domain.MovieRecord) error {
	el := findFirst(sc.details, "div", byClassContains(imdbClassPart))
	if el.Length() == 0 {
		return nil
	}
	m.IMDbRating = parseRating(flatText(el))
	return nil
}

func ruleDuration(sc *itemScope, m *domain.MovieRecord) error {
	findAll(sc.details, "div", byClass(infoClass)).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		txt := flatText(s)
		if txt == "" || !durationRE.MatchString(txt) {
			return true
		}
		m.Duration = strPtr(txt)
		return false
	})
	return nil
}

func ruleCountry(sc *itemScope, m *domain.MovieRecord) error {
	block := findFirst(sc.details, "div", byOwnText(countryRE))
	if block.Length() == 0 {
		return nil
	}
	a := block.Find("a").First()
	if a.Length() == 0 {
		return nil
	}
	m.Country = textPtr(a)
	m.Links.Country = sc.href(a)
	return nil
}

// ruleGenres 优先读取带 "Genre:" 标签的块；没有该块时回退为扫描整个 details 中的 /genre/ 链接（按名称去重）。
func ruleGenres(sc *itemScope, m *domain.MovieRecord) error {
	if block := findFirst(sc.details, "div", byOwnText(genreRE)); block.Length() > 0 {
		block.Find("a").Each(func(_ int, a *goquery.Selection) {
			if g := flatText(a); g != "" {
				m.AddGenre(g, sc.href(a))
			}
		})
		return nil
	}

	seen := make(map[string]struct{})
	findAll(sc.details, "a", byHrefContains(genrePath)).Each(func(_ int, a *goquery.Selection) {
		g := flatText(a)
		if g == "" {
			return
		}
		if _, ok := seen[g]; ok {
			return
		}
		seen[g] = struct{}{}
		m.AddGenre(g, sc.href(a))
	})
	return nil
}
