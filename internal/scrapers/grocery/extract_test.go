package grocery

import (
	"errors"
	"fmt"
	"groceryscraper/lib/htmlutil"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const productUri = "https://shop.test/products/apricots.html"

func TestExtract(t *testing.T) {
	doc := parseDocument(t, productUri, productPage(" Ripe Apricots\n ", "3.50", "Apricots"))

	result, err := Extract(productUri, doc)
	require.NoError(t, err)

	require.Equal(t, "Ripe Apricots", result.Title)
	require.Equal(t, "3.50", result.UnitPrice.StringFixed(2))
	require.Equal(t, "Apricots", result.Description)
	require.True(t, strings.HasSuffix(result.Size, "kb"))

	size, err := PageSize(doc)
	require.NoError(t, err)
	require.Equal(t, size, result.Size)
}

func TestParsePrice(t *testing.T) {
	cases := []struct {
		text     string
		expected string
		err      error
	}{
		{text: "abc£1.50bca", expected: "1.50"},
		{text: "£££abc£2.20!", expected: "2.20"},
		{text: "£1.75/unit", expected: "1.75"},
		{text: "abc£1.50bca1.2", err: ErrTooManyMatches},
		{text: "£1/unit", err: ErrNoPriceValue},
		{text: "", err: ErrNoPriceValue},
	}

	for _, test := range cases {
		t.Run(test.text, func(t *testing.T) {
			price, err := parsePrice(productUri, test.text)
			if test.err != nil {
				require.ErrorIs(t, err, test.err)
				var failure *ParsingFailure
				require.ErrorAs(t, err, &failure)
				require.Equal(t, FieldPrice, failure.Field)
				return
			}
			require.NoError(t, err)
			require.Equal(t, test.expected, price.StringFixed(2))
		})
	}
}

func TestPriceKeepsScale(t *testing.T) {
	price, err := parsePrice(productUri, "£1.50")
	require.NoError(t, err)
	require.Equal(t, int32(-2), price.Exponent())
	require.Equal(t, "1.50", price.StringFixed(-price.Exponent()))
}

func TestFormatSize(t *testing.T) {
	cases := []struct {
		bytes    int
		expected string
	}{
		{bytes: 10240, expected: "10.00kb"},
		{bytes: 0, expected: "0.00kb"},
		{bytes: 1024, expected: "1.00kb"},
		{bytes: 1536, expected: "1.50kb"},
		// exactly 0.125kb and 0.375kb, halves round up
		{bytes: 128, expected: "0.13kb"},
		{bytes: 384, expected: "0.38kb"},
		{bytes: 1029, expected: "1.00kb"},
		{bytes: 1030, expected: "1.01kb"},
	}

	for _, test := range cases {
		t.Run(fmt.Sprint(test.bytes), func(t *testing.T) {
			require.Equal(t, test.expected, FormatSize(test.bytes))
		})
	}
}

func TestPageSize(t *testing.T) {
	doc := parseDocument(t, productUri, productPage("Kiwi", "1.00", "Green"))

	n, err := htmlutil.RenderedSize(doc.Nodes[0])
	require.NoError(t, err)

	size, err := PageSize(doc)
	require.NoError(t, err)
	require.Equal(t, FormatSize(n), size)
}

func TestExtractCardinality(t *testing.T) {
	cases := []struct {
		name  string
		page  string
		field Field
		found int
	}{
		{
			name:  "no title",
			page:  strings.Replace(productPage("Kiwi", "1.00", "Green"), "<h1>Kiwi</h1>", "", 1),
			field: FieldTitle,
			found: 0,
		},
		{
			name:  "two titles",
			page:  strings.Replace(productPage("Kiwi", "1.00", "Green"), "<h1>Kiwi</h1>", "<h1>Kiwi</h1><h1>Lime</h1>", 1),
			field: FieldTitle,
			found: 2,
		},
		{
			name:  "no price",
			page:  strings.Replace(productPage("Kiwi", "1.00", "Green"), `class="pricePerUnit"`, `class="priceless"`, 1),
			field: FieldPrice,
			found: 0,
		},
		{
			name:  "two prices",
			page:  strings.Replace(productPage("Kiwi", "1.00", "Green"), `class="pricePerMeasure"`, `class="pricePerUnit"`, 1),
			field: FieldPrice,
			found: 2,
		},
		{
			name:  "no description",
			page:  strings.Replace(productPage("Kiwi", "1.00", "Green"), ">Description<", ">Summary<", 1),
			field: FieldDescription,
			found: 0,
		},
		{
			name:  "two descriptions",
			page:  strings.Replace(productPage("Kiwi", "1.00", "Green"), ">Nutrition<", "> Description <", 1),
			field: FieldDescription,
			found: 2,
		},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			_, err := Extract(productUri, parseDocument(t, productUri, test.page))

			var failure *ParsingFailure
			require.ErrorAs(t, err, &failure)
			require.Equal(t, test.field, failure.Field)
			require.Equal(t, test.found, failure.Found)
			require.Equal(t, productUri, failure.URI)
			require.Contains(t, err.Error(), productUri)
		})
	}
}

func TestExtractDescription(t *testing.T) {
	cases := []struct {
		name     string
		content  string
		expected string
	}{
		{
			name:     "concatenates paragraphs",
			content:  `<div class="productText"><p>Fresh</p><p> apples</p></div>`,
			expected: "Fresh apples",
		},
		{
			name:     "nested paragraphs",
			content:  `<div class="productText"><div><p>Grown in Kent.</p></div><p>Store cool.</p></div>`,
			expected: "Grown in Kent.Store cool.",
		},
		{
			name:     "sibling is a paragraph",
			content:  `<p>Just one line</p>`,
			expected: "Just one line",
		},
		{
			name:     "no paragraphs",
			content:  `<div class="productText">Plain text only</div>`,
			expected: "",
		},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			page := fmt.Sprintf(`<html><body>
<h3 class="productDataItemHeader">Description</h3>%s
<h3 class="productDataItemHeader">Nutrition</h3><div><p>ignored</p></div>
</body></html>`, test.content)

			description, err := extractDescription(productUri, parseDocument(t, productUri, page))
			require.NoError(t, err)
			require.Equal(t, test.expected, description)
		})
	}
}

func TestExtractDescriptionWithoutContent(t *testing.T) {
	page := `<html><body><div><h3 class="productDataItemHeader">Description</h3></div></body></html>`

	_, err := extractDescription(productUri, parseDocument(t, productUri, page))
	require.True(t, errors.Is(err, ErrNoDescription))
}
