package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "scraper [listing-url...]",
	Short: "scraper prices every product linked from grocery listing pages.",
	Long: `scraper fetches each listing page, scrapes the product pages it links to and
prints one report per listing page. Without arguments it asks for a listing url on
stdin, an empty answer scrapes the configured default listing.`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE:         runScrape,
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
