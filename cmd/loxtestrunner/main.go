package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/example/golox/testrunner"
)

func main() {
	dir := flag.String("dir", "testdata", "directory of .lox scripts")
	filter := flag.String("filter", "", "filter scripts by path substring")
	limit := flag.Int("limit", 0, "maximum number of scripts to run (0 = all)")
	timeout := flag.Duration("timeout", 5*time.Second, "per-script timeout")
	verbose := flag.Bool("v", false, "verbose output (print each result)")
	flag.Parse()

	if _, err := os.Stat(*dir); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error: script directory not found at %s\n", *dir)
		os.Exit(1)
	}

	cfg := testrunner.Config{
		Dir:     *dir,
		Filter:  *filter,
		Limit:   *limit,
		Timeout: *timeout,
		Verbose: *verbose,
	}

	results, summary := testrunner.Run(cfg)

	if !*verbose {
		for _, r := range results {
			msg := ""
			if r.Message != "" {
				msg = " " + r.Message
			}
			fmt.Printf("%s %s%s\n", r.Result, r.Path, msg)
		}
	}

	fmt.Println()
	fmt.Println("=== Script Summary ===")
	fmt.Printf("Total:   %d\n", summary.Total)
	fmt.Printf("Passed:  %d\n", summary.Passed)
	fmt.Printf("Failed:  %d\n", summary.Failed)
	fmt.Printf("Skipped: %d\n", summary.Skipped)
	fmt.Printf("Errors:  %d\n", summary.Errors)
	fmt.Printf("Elapsed: %s\n", summary.Elapsed)

	if summary.Failed > 0 || summary.Errors > 0 {
		os.Exit(1)
	}
}
