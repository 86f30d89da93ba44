package grocery

import (
	"groceryscraper/lib/htmlutil"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/shopspring/decimal"
)

var (
	titleSelector             = cascadia.MustCompile("div.productSummary div.productTitleDescriptionContainer h1")
	priceSelector             = cascadia.MustCompile("div.priceTabContainer div.pricing p.pricePerUnit")
	descriptionHeaderSelector = cascadia.MustCompile("h3.productDataItemHeader")
	paragraphSelector         = cascadia.MustCompile("p")
)

const descriptionHeaderText = "Description"

var priceRegex = regexp.MustCompile(`\d+\.\d+`)

var kilobyte = decimal.NewFromInt(1024)

func requireSingle(field Field, uri string, sel *goquery.Selection) (*goquery.Selection, error) {
	if sel.Length() != 1 {
		return nil, &ParsingFailure{
			Field: field,
			URI:   uri,
			Found: sel.Length(),
		}
	}
	return sel, nil
}

// Extract reads a ProductResult out of the product page at uri.
func Extract(uri string, doc *goquery.Document) (ProductResult, error) {
	title, err := extractTitle(uri, doc)
	if err != nil {
		return ProductResult{}, err
	}
	size, err := PageSize(doc)
	if err != nil {
		return ProductResult{}, err
	}
	price, err := extractPrice(uri, doc)
	if err != nil {
		return ProductResult{}, err
	}
	description, err := extractDescription(uri, doc)
	if err != nil {
		return ProductResult{}, err
	}

	return ProductResult{
		Title:       title,
		Size:        size,
		UnitPrice:   price,
		Description: description,
	}, nil
}

func extractTitle(uri string, doc *goquery.Document) (string, error) {
	title, err := requireSingle(FieldTitle, uri, doc.FindMatcher(titleSelector))
	if err != nil {
		return "", err
	}
	return strings.Join(strings.Fields(title.Text()), " "), nil
}

func extractPrice(uri string, doc *goquery.Document) (decimal.Decimal, error) {
	price, err := requireSingle(FieldPrice, uri, doc.FindMatcher(priceSelector))
	if err != nil {
		return decimal.Decimal{}, err
	}
	return parsePrice(uri, price.Text())
}

// parsePrice expects exactly one decimal number somewhere in text, currency
// symbols and unit suffixes around it are ignored.
func parsePrice(uri, text string) (decimal.Decimal, error) {
	matches := priceRegex.FindAllString(text, -1)
	switch len(matches) {
	case 0:
		return decimal.Decimal{}, &ParsingFailure{
			Field: FieldPrice,
			URI:   uri,
			Err:   ErrNoPriceValue,
		}
	case 1:
	default:
		return decimal.Decimal{}, &ParsingFailure{
			Field: FieldPrice,
			URI:   uri,
			Found: len(matches),
			Err:   ErrTooManyMatches,
		}
	}

	value, err := decimal.NewFromString(matches[0])
	if err != nil {
		return decimal.Decimal{}, &ParsingFailure{
			Field: FieldPrice,
			URI:   uri,
			Found: 1,
			Err:   err,
		}
	}
	return value, nil
}

func extractDescription(uri string, doc *goquery.Document) (string, error) {
	headers := doc.FindMatcher(descriptionHeaderSelector).
		FilterFunction(func(_ int, s *goquery.Selection) bool {
			return strings.TrimSpace(s.Text()) == descriptionHeaderText
		})
	header, err := requireSingle(FieldDescription, uri, headers)
	if err != nil {
		return "", err
	}

	content := header.Next()
	if content.Length() == 0 {
		return "", &ParsingFailure{
			Field: FieldDescription,
			URI:   uri,
			Found: 1,
			Err:   ErrNoDescription,
		}
	}

	// the content element counts as well when it is a paragraph itself
	paragraphs := content.FilterMatcher(paragraphSelector).
		AddSelection(content.FindMatcher(paragraphSelector))

	var description strings.Builder
	paragraphs.Each(func(_ int, p *goquery.Selection) {
		description.WriteString(p.Text())
	})
	return strings.TrimSpace(description.String()), nil
}

// PageSize is the weight of the whole document re-rendered as html, in kilobytes.
func PageSize(doc *goquery.Document) (string, error) {
	n, err := htmlutil.RenderedSize(doc.Nodes[0])
	if err != nil {
		return "", err
	}
	return FormatSize(n), nil
}

// FormatSize formats a byte count as kilobytes with 2 decimals, rounding half up,
// ex. 10240 -> "10.00kb".
func FormatSize(bytes int) string {
	kb := decimal.NewFromInt(int64(bytes)).DivRound(kilobyte, 2)
	return kb.StringFixed(2) + "kb"
}
