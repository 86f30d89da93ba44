package grocery

import (
	"context"
	"fmt"
	"groceryscraper/internal/components/assert"
	"groceryscraper/internal/components/telemetry"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const (
	report_scraper_run            = "scraper.run"
	report_scraper_scrape_product = "scraper.scrape-product"
	report_scraper_products       = "scraper.products"
)

var tracer = otel.Tracer("scrapers/grocery")

type Options struct {
	// Workers is the maximum amount of product pages fetched at once, values < 1
	// mean 1.
	Workers int
}

type Scraper struct {
	fetcher Fetcher
	workers int

	tel telemetry.API
}

func NewScraper(fetcher Fetcher, tel telemetry.API, opts Options) *Scraper {
	assert.NotNil(fetcher)
	assert.NotNil(tel)

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	return &Scraper{
		fetcher: fetcher,
		workers: workers,
		tel:     telemetry.NewScopedAPI("grocery_scraper", tel),
	}
}

// Run scrapes every product linked from the listing page at listingUri. Either
// every product page is scraped successfully or the first failure is returned.
func (s *Scraper) Run(ctx context.Context, listingUri string) (Report, error) {
	ctx, span := tracer.Start(ctx, "scraper:Run", trace.WithAttributes(
		attribute.String("listing_uri", listingUri),
	))
	defer span.End()

	links, err := s.Discover(ctx, listingUri)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to discover product links")
		return Report{}, err
	}
	if len(links) == 0 {
		err := fmt.Errorf("%s: %w", listingUri, ErrNoProducts)
		s.tel.ReportWarning(report_scraper_run, err)
		span.SetStatus(codes.Error, err.Error())
		return Report{}, err
	}
	span.SetAttributes(attribute.Int("products", len(links)))

	results := make([]ProductResult, len(links))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.workers)
	for i, link := range links {
		if groupCtx.Err() != nil {
			break
		}
		group.Go(func() error {
			result, err := s.scrapeProduct(groupCtx, link)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	err = group.Wait()
	if err == nil {
		// the caller's context can end the loop before any product is scheduled
		err = ctx.Err()
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to scrape product")
		return Report{}, err
	}

	total := decimal.Zero
	for _, r := range results {
		total = total.Add(r.UnitPrice)
	}
	s.tel.ReportCount(report_scraper_products, int64(len(results)))

	return Report{
		Results: results,
		Total:   total,
	}, nil
}

func (s *Scraper) scrapeProduct(ctx context.Context, uri string) (ProductResult, error) {
	ctx, span := tracer.Start(ctx, "scraper:scrapeProduct", trace.WithAttributes(
		attribute.String("uri", uri),
	))
	defer span.End()

	// another product already failed
	if err := ctx.Err(); err != nil {
		return ProductResult{}, err
	}

	doc, err := s.fetcher.Fetch(ctx, uri)
	if err != nil {
		if ctx.Err() == nil {
			s.tel.ReportBroken(report_scraper_scrape_product, err, uri)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch product page")
		return ProductResult{}, err
	}

	result, err := Extract(uri, doc)
	if err != nil {
		s.tel.ReportBroken(report_scraper_scrape_product, err, uri)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to extract product")
		return ProductResult{}, err
	}

	s.tel.ReportDebug("scraped product", uri, result.Title, result.UnitPrice.String())
	return result, nil
}
