package extract

import (
	"regexp"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDoc(t *testing.T, s string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	require.NoError(t, err)
	return doc
}

func TestFlatText_JoinsTrimmedFragments(t *testing.T) {
	doc := mustDoc(t, `<div id="x">  Hello <b> big </b>
	<i>world</i><script>var a = 1;</script><!-- c --></div>`)
	assert.Equal(t, "Hello big world", flatText(doc.Find("#x")))
}

func TestOwnText_IgnoresChildren(t *testing.T) {
	doc := mustDoc(t, `<div id="x">Genre: <a>Drama</a> , </div>`)
	assert.Equal(t, "Genre:  , ", ownText(doc.Find("#x")))
	assert.Equal(t, "", ownText(doc.Find("#missing")))
}

func TestByOwnText_DoesNotMatchAncestors(t *testing.T) {
	doc := mustDoc(t, `<div id="outer"><div id="inner">Country: <a>US</a></div></div>`)
	sel := findAll(doc.Selection, "div", byOwnText(regexp.MustCompile(`Country:`)))
	require.Equal(t, 1, sel.Length())
	id, _ := sel.Attr("id")
	assert.Equal(t, "inner", id)
}

func TestByClassContains(t *testing.T) {
	doc := mustDoc(t, `<div class="a jt-imdb-x"></div><div class="b"></div><div></div>`)
	assert.Equal(t, 1, findAll(doc.Selection, "div", byClassContains("jt-imdb")).Length())
}

func TestParseHelpers(t *testing.T) {
	assert.Nil(t, parseInt("x1"))
	assert.Equal(t, 12, *parseInt(" 12 "))
	assert.Equal(t, 1999, *parseYear("Year 1999/2000"))
	assert.Nil(t, parseYear("99"))
	assert.Equal(t, 7.25, *parseRating("rated 7.25 of 10"))
	assert.Nil(t, parseRating("none"))
}
