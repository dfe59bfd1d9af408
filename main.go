package main

import (
	"context"
	"os"

	"github.com/mrlokans/readinglog/internal/cli"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	os.Exit(cli.Run(context.Background(), Version+" ("+Commit+")", os.Args))
}
