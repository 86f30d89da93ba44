package grocery

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func productPage(title, price, description string) string {
	return fmt.Sprintf(`<html><head><title>%[1]s</title></head><body>
<div class="productSummary">
	<div class="productTitleDescriptionContainer"><h1>%[1]s</h1></div>
	<div class="priceTabContainer">
		<div class="pricing">
			<p class="pricePerUnit">&pound;%[2]s<abbr title="per">/</abbr><abbr title="unit"><span class="pricePerUnitUnit">unit</span></abbr></p>
			<p class="pricePerMeasure">&pound;%[2]s<abbr title="per">/</abbr><abbr title="each"><span class="pricePerMeasureMeasure">ea</span></abbr></p>
		</div>
	</div>
</div>
<div class="mainProductInfo">
	<h3 class="productDataItemHeader">Description</h3>
	<div class="productText"><p>%[3]s</p></div>
	<h3 class="productDataItemHeader">Nutrition</h3>
	<div class="productText"><p>per 100g</p></div>
</div>
</body></html>`, title, price, description)
}

func listingPage(hrefs ...string) string {
	var b strings.Builder
	b.WriteString(`<html><body><ul class="productLister">`)
	for i, href := range hrefs {
		fmt.Fprintf(&b, `<li><div class="product"><div class="productInfo"><h3><a href="%s">Product %d</a></h3></div></div></li>`, href, i)
	}
	b.WriteString(`</ul></body></html>`)
	return b.String()
}

func parseDocument(t testing.TB, uri, body string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)
	doc.Url, err = url.Parse(uri)
	require.NoError(t, err)
	return doc
}

// fakeFetcher serves pages from memory, uris without a page fail with a 404
// FetchError.
type fakeFetcher struct {
	t     testing.TB
	pages map[string]string

	mu      sync.Mutex
	fetched []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, uri string) (*goquery.Document, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, uri)
	f.mu.Unlock()

	body, ok := f.pages[uri]
	if !ok {
		return nil, &FetchError{URI: uri, StatusCode: http.StatusNotFound}
	}
	return parseDocument(f.t, uri, body), nil
}

func (f *fakeFetcher) Fetched() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.fetched...)
}
