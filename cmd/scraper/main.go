package main

import (
	"context"
	"groceryscraper/cmd/scraper/commands"
	"groceryscraper/lib/serviceutil"
)

func main() {
	ctx, stop := serviceutil.SignalContext(context.Background())
	defer stop()
	commands.ExecuteContext(ctx)
}
