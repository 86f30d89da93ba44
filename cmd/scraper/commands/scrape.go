package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"groceryscraper/internal/components/telemetry"
	"groceryscraper/internal/config"
	"groceryscraper/internal/report"
	"groceryscraper/internal/scrapers/grocery"
	"groceryscraper/lib/serviceutil"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
)

const (
	report_scrape_parse_uri = "scrape.parse-uri"
	report_scrape_run       = "scrape.run"
	report_scrape_validate  = "scrape.validate"
	report_scrape_render    = "scrape.render"
)

const promptMessage = "Enter a valid URL, or hit return to run against the default link:"

var (
	configPath       *string
	format           *string
	workers          *int
	fetchTimeout     *time.Duration
	userAgent        *string
	cloudflareBypass *bool
	verbose          *bool
	jsonLogs         *bool
	progress         *bool
)

func init() {
	flags := rootCmd.Flags()
	configPath = flags.String("config", "", "Path to a JSON5 config file, defaults to the nearest scraper.json5.")
	format = flags.StringP("format", "f", config.FormatJSON, "Output format, json or table.")
	workers = flags.IntP("workers", "w", 4, "Maximum amount of product pages fetched at once.")
	fetchTimeout = flags.Duration("timeout", 30*time.Second, "Timeout of a single page fetch.")
	userAgent = flags.String("user-agent", "", "User agent sent with every request.")
	cloudflareBypass = flags.Bool("cloudflare-bypass", false, "Send requests through the cloudflare bypass transport.")
	verbose = flags.BoolP("verbose", "v", false, "Log debug messages, including every request.")
	jsonLogs = flags.Bool("json-logs", false, "Log JSON lines instead of human readable output.")
	progress = flags.Bool("progress", false, "Show a spinner on stderr while a listing is scraped.")
}

// applyFlags overrides cfg with the flags that were explicitly set.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Format = *format
	}
	if flags.Changed("workers") {
		cfg.Workers = *workers
	}
	if flags.Changed("timeout") {
		cfg.FetchTimeout = fetchTimeout.String()
	}
	if flags.Changed("user-agent") {
		cfg.UserAgent = *userAgent
	}
	if flags.Changed("cloudflare-bypass") {
		cfg.CloudflareBypass = *cloudflareBypass
	}
}

func runScrape(cmd *cobra.Command, args []string) error {
	logger := telemetry.NewLogger(cmd.ErrOrStderr(), *verbose, !*jsonLogs)
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		serviceutil.Fatal("failed to load config", err)
	}
	applyFlags(cmd, &cfg)
	err = cfg.Validate()
	if err != nil {
		serviceutil.Fatal("invalid config", err)
	}

	ctx := cmd.Context()
	otelSetup, err := telemetry.Setup(ctx, "scraper", cfg.Telemetry)
	if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	defer func() {
		err := otelSetup.Shutdown(context.Background())
		if err != nil {
			slog.Warn("failed to flush telemetry", "err", err)
		}
	}()

	uris := args
	if len(uris) == 0 {
		uri, err := promptListingURI(cmd.InOrStdin(), cmd.ErrOrStderr(), cfg.DefaultListingURL)
		if err != nil {
			serviceutil.Fatal("failed to read listing url", err)
		}
		uris = []string{uri}
	}

	tel := telemetry.NewSlogAPI(logger)
	client := grocery.NewClient(tel, grocery.ClientOptions{
		Timeout:          cfg.Timeout(),
		UserAgent:        cfg.UserAgent,
		CloudflareBypass: cfg.CloudflareBypass,
	})
	s := scrapeCommand{
		scraper:  grocery.NewScraper(client, tel, grocery.Options{Workers: cfg.Workers}),
		tel:      telemetry.NewScopedAPI("scrape", tel),
		format:   cfg.Format,
		out:      cmd.OutOrStdout(),
		progress: *progress,
		status:   cmd.ErrOrStderr(),
	}

	failed, total := s.scrapeAll(ctx, uris)
	if failed > 0 {
		return fmt.Errorf("%d of %d listing urls failed", failed, total)
	}
	return nil
}

// promptListingURI asks for a listing url on in, an empty answer (or no answer at
// all) picks defaultURI.
func promptListingURI(in io.Reader, out io.Writer, defaultURI string) (string, error) {
	fmt.Fprintln(out, promptMessage)

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return defaultURI, nil
	}
	return line, nil
}

type scrapeCommand struct {
	scraper *grocery.Scraper
	tel     telemetry.API
	format  string
	out     io.Writer

	progress bool
	status   io.Writer
}

// scrapeAll processes every distinct listing uri in order, the failure of one uri
// never stops the others.
func (s scrapeCommand) scrapeAll(ctx context.Context, uris []string) (failed, total int) {
	seen := make(map[string]struct{}, len(uris))
	for _, raw := range uris {
		listing, err := grocery.ParseListingURI(raw)
		if err != nil {
			s.tel.ReportWarning(report_scrape_parse_uri, err)
			failed++
			total++
			continue
		}
		uri := listing.String()
		if _, ok := seen[uri]; ok {
			continue
		}
		seen[uri] = struct{}{}
		total++

		err = s.scrapeListing(ctx, uri)
		if err != nil {
			failed++
		}
	}
	return failed, total
}

func (s scrapeCommand) scrapeListing(ctx context.Context, uri string) error {
	var sp *spinner.Spinner
	if s.progress {
		sp = spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(s.status))
		sp.Suffix = " scraping " + uri
		sp.Start()
	}

	result, err := s.scraper.Run(ctx, uri)
	if sp != nil {
		sp.Stop()
	}
	if err != nil {
		s.tel.ReportBroken(report_scrape_run, err, uri)
		return err
	}

	err = report.Validate(result)
	if err != nil {
		s.tel.ReportWarning(report_scrape_validate, err, uri)
	}

	err = report.Render(s.out, s.format, result)
	if err != nil {
		s.tel.ReportBroken(report_scrape_render, err, uri)
		return err
	}
	return nil
}
