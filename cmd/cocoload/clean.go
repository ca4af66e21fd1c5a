package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cocoload/internal/config"
)

// runClean removes the scratch directory and everything under it.
// By default prompts for confirmation unless --force is specified.
func runClean(args []string) int {
	fs := flag.NewFlagSet("clean", flag.ExitOnError)

	configPath := fs.String("config", "", "Path to YAML config file")
	scratch := fs.String("scratch", "", "Scratch directory to remove")
	force := fs.Bool("force", false, "Skip confirmation prompt")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: cocoload clean [options]

Remove the scratch directory holding downloaded archives and extracted
trees. The destination is never touched.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	cfg, code := loadConfig(*configPath)
	if code != ExitSuccess {
		return code
	}
	cfg = cfg.Merge(config.Config{ScratchDir: *scratch})

	if cfg.ScratchDir == "" {
		fmt.Fprintln(os.Stderr, "Error: no scratch directory configured")
		return ExitInvalidArgs
	}

	// Only ever remove a directory cocoload owns. The system temp dir
	// and the filesystem root hold other processes' data.
	scratchDir := filepath.Clean(cfg.ScratchDir)
	if scratchDir == filepath.Clean(os.TempDir()) || scratchDir == string(os.PathSeparator) {
		fmt.Fprintf(os.Stderr, "Error: refusing to remove %s; point -scratch at a cocoload-owned directory\n", scratchDir)
		return ExitInvalidArgs
	}

	if _, err := os.Stat(cfg.ScratchDir); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "[cocoload] Nothing to clean: %s does not exist\n", cfg.ScratchDir)
		return ExitSuccess
	}

	if !*force {
		fmt.Printf("Remove scratch directory %s and all its contents? [y/N]: ", cfg.ScratchDir)
		reader := bufio.NewReader(os.Stdin)
		response, _ := reader.ReadString('\n')
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Fprintln(os.Stderr, "Cancelled")
			return ExitSuccess
		}
	}

	if err := os.RemoveAll(cfg.ScratchDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitGeneralError
	}

	fmt.Fprintf(os.Stderr, "[cocoload] Removed: %s\n", cfg.ScratchDir)
	return ExitSuccess
}
