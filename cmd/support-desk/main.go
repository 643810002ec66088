// Command support-desk routes the three sample customer requests through
// the default support chain and prints each outcome.
package main

import (
	"flag"
	"io"
	"os"

	"github.com/menezmethod/handoff/internal/logging"
	"github.com/menezmethod/handoff/internal/support"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("support-desk", flag.ContinueOnError)
	fs.SetOutput(errOut)
	logLevel := fs.String("log-level", "warn", "log level: debug, info, warn, error")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	logger := logging.NewLogger(errOut, logging.ParseLevel(*logLevel), "text", "")
	desk := support.NewDesk(support.DefaultChain(), out, logger)
	desk.RunSamples()
	return 0
}
