// Command salesummary summarizes sales spreadsheets into a JSON document.
//
//	salesummary summarize sales.xlsx
//	salesummary summarize sheets://<spreadsheet-id>/Sales!A:E --output out.json
//	salesummary batch ./incoming --out-dir ./summaries
//	salesummary serve --port 8080
//
// The summary document is the only thing written to stdout; logs go to
// stderr. Any fatal error exits with status 1.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// execute runs the CLI and returns the process exit code
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
