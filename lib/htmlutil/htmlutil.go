package htmlutil

import (
	"bytes"
	"net/url"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

type countingWriter struct {
	n int
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.n += len(p)
	return len(p), nil
}

// RenderedSize returns the number of bytes node occupies once rendered back into HTML.
func RenderedSize(node *html.Node) (int, error) {
	var w countingWriter
	err := html.Render(&w, node)
	if err != nil {
		return 0, err
	}
	return w.n, nil
}

type Anchor struct {
	Name string
	// Href is absolute when the anchor was resolved against a base url.
	Href string
}

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

func anchorName(n *html.Node) string {
	name := strings.Join(strings.Fields(GetText(n)), " ")
	return removeNonPrintable(name)
}

// GetAnchors reads the href of every node in sel, resolving it against base when base
// is not nil. Nodes without a usable href are returned in skipped.
func GetAnchors(base *url.URL, sel *goquery.Selection) (anchors []Anchor, skipped []Anchor) {
	for _, n := range sel.Nodes {
		name := anchorName(n)

		href := ""
		for _, a := range n.Attr {
			if a.Key == "href" {
				href = strings.TrimSpace(a.Val)
				break
			}
		}
		if href == "" {
			skipped = append(skipped, Anchor{Name: name})
			continue
		}

		link, err := url.Parse(href)
		if err != nil {
			skipped = append(skipped, Anchor{Name: name, Href: href})
			continue
		}
		if base != nil {
			link = base.ResolveReference(link)
		}

		anchors = append(anchors, Anchor{
			Name: name,
			Href: link.String(),
		})
	}
	return anchors, skipped
}
