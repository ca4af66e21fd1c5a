package main

import (
	"fmt"
	"os"
)

// Exit codes
const (
	ExitSuccess        = 0
	ExitGeneralError   = 1
	ExitInvalidArgs    = 2
	ExitDownloadFailed = 3
	ExitExtractFailed  = 4
	ExitCopyFailed     = 5
	ExitStorageError   = 6
	ExitVerifyFailed   = 7
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return ExitInvalidArgs
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "import":
		return runImport(cmdArgs)
	case "fetch":
		return runFetch(cmdArgs)
	case "extract":
		return runExtract(cmdArgs)
	case "copy":
		return runCopy(cmdArgs)
	case "verify":
		return runVerify(cmdArgs)
	case "clean":
		return runClean(cmdArgs)
	case "help", "-h", "--help":
		printUsage()
		return ExitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		return ExitInvalidArgs
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: cocoload <command> [options]

Commands:
  import   Run the full dataset import: fetch, extract, copy
  fetch    Download all manifest archives in parallel to scratch space
  extract  Extract a single zip archive with progress
  copy     Copy a directory tree to a local path or bucket URL
  verify   Verify a destination tree against a source tree
  clean    Remove scratch space

Run 'cocoload <command> -h' for command-specific help.`)
}
