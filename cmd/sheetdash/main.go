// sheetdash — spreadsheet filter and chart data.
//
// Usage:
//
//	sheetdash schema FILE...
//	sheetdash rows FILE... [--filter HEADER=VALUE]... [--hide HEADER]...
//	sheetdash chart FILE... --column C --aggregate A [--secondary S] [--mode M]
//	sheetdash serve [FILE...] [--addr :8080]
//
// Environment:
//
//	SHEETDASH_*  overrides any config key, e.g. SHEETDASH_MAX_FILES=5
package main

import (
	"os"

	"github.com/spektr-org/sheetdash/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
