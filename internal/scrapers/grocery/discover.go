package grocery

import (
	"context"
	"groceryscraper/lib/htmlutil"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

const (
	report_scraper_discover = "scraper.discover"
)

var productLinkSelector = cascadia.MustCompile("div.productInfo a")

// DiscoverLinks returns the product page links of a listing page resolved against
// doc.Url. Duplicate links are dropped, the first occurrence keeps its position.
func DiscoverLinks(doc *goquery.Document) (links []string, skipped []htmlutil.Anchor) {
	anchors, skipped := htmlutil.GetAnchors(doc.Url, doc.FindMatcher(productLinkSelector))

	seen := make(map[string]struct{}, len(anchors))
	for _, a := range anchors {
		if _, ok := seen[a.Href]; ok {
			continue
		}
		seen[a.Href] = struct{}{}
		links = append(links, a.Href)
	}
	return links, skipped
}

// Discover fetches the listing page at listingUri and returns its product links.
func (s *Scraper) Discover(ctx context.Context, listingUri string) ([]string, error) {
	doc, err := s.fetcher.Fetch(ctx, listingUri)
	if err != nil {
		s.tel.ReportBroken(report_scraper_discover, err, listingUri)
		return nil, err
	}
	if doc.Url == nil {
		doc.Url, _ = url.Parse(listingUri)
	}

	links, skipped := DiscoverLinks(doc)
	for _, anchor := range skipped {
		s.tel.ReportWarning(report_scraper_discover, "skipped product anchor without a usable href", anchor.Name, anchor.Href)
	}
	s.tel.ReportDebug("discovered product links", listingUri, len(links))

	return links, nil
}
