package htmlutil

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestGetText(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(`<div>Fresh<span> apples</span><!-- note --></div>`))
	require.NoError(t, err)
	require.Equal(t, "Fresh apples", GetText(doc))
}

func TestRenderedSize(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(`<p>hi</p>`))
	require.NoError(t, err)

	size, err := RenderedSize(doc)
	require.NoError(t, err)

	var rendered strings.Builder
	require.NoError(t, html.Render(&rendered, doc))
	require.Equal(t, len(rendered.String()), size)
	require.Equal(t, len("<html><head></head><body><p>hi</p></body></html>"), size)
}

func TestGetAnchors(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`
		<a href="/products/apricot.html">  Apricot
			Ripe  </a>
		<a href="https://shop.example/kiwi.html">Kiwi</a>
		<a href="">Empty</a>
		<a>Missing</a>
		<a href="%zz">Broken</a>
	`))
	require.NoError(t, err)

	base, err := url.Parse("http://example.com/listing/page.html")
	require.NoError(t, err)

	anchors, skipped := GetAnchors(base, doc.Find("a"))
	require.Equal(t, []Anchor{
		{Name: "Apricot Ripe", Href: "http://example.com/products/apricot.html"},
		{Name: "Kiwi", Href: "https://shop.example/kiwi.html"},
	}, anchors)
	require.Len(t, skipped, 3)
	require.Equal(t, "Empty", skipped[0].Name)
	require.Equal(t, "%zz", skipped[2].Href)
}
