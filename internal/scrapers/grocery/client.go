package grocery

import (
	"bytes"
	"context"
	"fmt"
	"groceryscraper/internal/components/assert"
	"groceryscraper/internal/components/telemetry"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

const (
	report_client_fetch = "client.fetch"
)

// Fetcher retrieves a page and parses it into a document. The returned document's
// Url is the final url of the page after redirects.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) (*goquery.Document, error)
}

type ClientOptions struct {
	Timeout          time.Duration
	UserAgent        string
	CloudflareBypass bool
}

// Client is the http Fetcher.
type Client struct {
	Http *resty.Client

	tel telemetry.API
}

func NewClient(tel telemetry.API, opts ClientOptions) *Client {
	assert.NotNil(tel)

	tel = telemetry.NewScopedAPI("grocery_client", tel)

	httpClient := resty.New()
	if opts.CloudflareBypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}
	if opts.UserAgent != "" {
		httpClient.SetHeader("user-agent", opts.UserAgent)
	}
	if opts.Timeout > 0 {
		httpClient.SetTimeout(opts.Timeout)
	}

	telemetry.InstrumentResty(httpClient, tel)

	return &Client{
		Http: httpClient,
		tel:  tel,
	}
}

func (c *Client) Fetch(ctx context.Context, uri string) (*goquery.Document, error) {
	res, err := c.Http.R().
		SetContext(ctx).
		Get(uri)
	if err != nil {
		return nil, &FetchError{URI: uri, Err: err}
	}
	if res.StatusCode() < 200 || res.StatusCode() >= 300 {
		c.tel.ReportWarning(report_client_fetch, "unexpected status", uri, res.StatusCode())
		return nil, &FetchError{URI: uri, StatusCode: res.StatusCode()}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return nil, &FetchError{
			URI:        uri,
			StatusCode: res.StatusCode(),
			Err:        fmt.Errorf("parse html: %w", err),
		}
	}
	doc.Url = res.RawResponse.Request.URL

	return doc, nil
}
