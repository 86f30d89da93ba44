// Package report validates and renders scrape reports for humans and machines.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"groceryscraper/internal/scrapers/grocery"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/shopspring/decimal"
)

const (
	FormatJSON  = "json"
	FormatTable = "table"
)

// SerializationError is returned when a report could not be rendered.
type SerializationError struct {
	Format string
	Err    error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("render %s report: %s", e.Format, e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the presence constraints of a report, every violation is
// returned joined into a single error.
func Validate(r grocery.Report) error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	violations := make([]error, len(fieldErrs))
	for i, fe := range fieldErrs {
		violations[i] = fmt.Errorf("%s failed on %q", fe.Namespace(), fe.Tag())
	}
	return errors.Join(violations...)
}

func formatDecimal(d decimal.Decimal) string {
	if d.Exponent() < 0 {
		return d.StringFixed(-d.Exponent())
	}
	return d.String()
}

type productJson struct {
	Title       string      `json:"title"`
	Size        string      `json:"size"`
	UnitPrice   json.Number `json:"unit_price"`
	Description string      `json:"description"`
}

type reportJson struct {
	Results []productJson `json:"results"`
	Total   json.Number   `json:"total"`
}

// RenderJSON writes r as indented json, prices are json numbers that keep the
// scale they were scraped with.
func RenderJSON(w io.Writer, r grocery.Report) error {
	out := reportJson{
		Results: make([]productJson, len(r.Results)),
		Total:   json.Number(formatDecimal(r.Total)),
	}
	for i, p := range r.Results {
		out.Results[i] = productJson{
			Title:       p.Title,
			Size:        p.Size,
			UnitPrice:   json.Number(formatDecimal(p.UnitPrice)),
			Description: p.Description,
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	err := encoder.Encode(out)
	if err != nil {
		return &SerializationError{Format: FormatJSON, Err: err}
	}
	return nil
}

const maxDescriptionWidth = 60

// RenderTable writes r as a table with one row per product and the total in
// the footer.
func RenderTable(w io.Writer, r grocery.Report) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Title", "Size", "Unit price", "Description"})

	for _, p := range r.Results {
		t.AppendRow(table.Row{
			p.Title,
			p.Size,
			formatDecimal(p.UnitPrice),
			text.WrapSoft(strings.TrimSpace(p.Description), maxDescriptionWidth),
		})
	}
	t.AppendFooter(table.Row{"", "", formatDecimal(r.Total), "Total"})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})
	t.SetStyle(table.StyleRounded)
	t.Render()
	return nil
}

// Render writes r in the given format.
func Render(w io.Writer, format string, r grocery.Report) error {
	switch format {
	case FormatJSON, "":
		return RenderJSON(w, r)
	case FormatTable:
		return RenderTable(w, r)
	}
	return &SerializationError{
		Format: format,
		Err:    fmt.Errorf("unknown format, expected %q or %q", FormatJSON, FormatTable),
	}
}
