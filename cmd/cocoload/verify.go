package main

import (
	"flag"
	"fmt"
	"os"

	"cocoload/internal/copier"
)

// runVerify checks that a destination tree matches a source tree:
// every source file present with the same size. Reports verification
// status without reading file contents.
func runVerify(args []string) int {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)

	src := fs.String("src", "", "Source directory (required)")
	dest := fs.String("dest", "", "Destination directory (required)")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: cocoload verify [options]

Verify that every file under the source tree exists at the destination
with the same size. Only metadata is checked, not file contents.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	if *src == "" || *dest == "" {
		fmt.Fprintln(os.Stderr, "Error: -src and -dest are required")
		fs.Usage()
		return ExitInvalidArgs
	}

	ctx, cancel := signalContext()
	defer cancel()

	result, err := copier.Verify(ctx, *src, *dest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitGeneralError
	}

	fmt.Printf("Source: %s\n", *src)
	fmt.Printf("Destination: %s\n", *dest)
	fmt.Printf("Files: %d\n", result.Files)

	if result.Valid {
		fmt.Println("Status: VALID")
		return ExitSuccess
	}

	fmt.Println("Status: INVALID")
	fmt.Printf("Missing files: %d\n", result.Missing)
	fmt.Printf("Size mismatches: %d\n", result.SizeMismatches)

	if len(result.Errors) > 0 {
		fmt.Println("\nErrors:")
		for _, e := range result.Errors {
			fmt.Printf("  - %s\n", e)
		}
	}

	return ExitVerifyFailed
}
