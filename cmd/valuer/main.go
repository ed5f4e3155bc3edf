// Command valuer assembles itemized valuation requests and delivers them as
// paginated documents.
package main

import (
	"context"
	"os"

	"github.com/roach88/valuer/internal/cli"
)

func main() {
	os.Exit(cli.Run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
