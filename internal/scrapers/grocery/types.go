package grocery

import "github.com/shopspring/decimal"

// ProductResult is what gets extracted from a single product page.
type ProductResult struct {
	Title string `validate:"required"`
	// Size is the rendered page weight, ex. "10.00kb".
	Size        string `validate:"required,endswith=kb"`
	UnitPrice   decimal.Decimal
	Description string
}

// Report is the output of one run against a listing page, Total is always the sum
// of every result's UnitPrice.
type Report struct {
	Results []ProductResult `validate:"required,min=1,dive"`
	Total   decimal.Decimal
}
