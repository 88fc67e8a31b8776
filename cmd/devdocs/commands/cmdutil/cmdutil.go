// Package cmdutil provides shared CLI utilities for all command groups.
package cmdutil

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/29next/devdocs/config"
	"github.com/spf13/cobra"
)

// StdinIndicator is the conventional Unix indicator to read from stdin.
const StdinIndicator = "-"

// IsStdin returns true if the given path indicates stdin should be used.
func IsStdin(path string) bool {
	return path == StdinIndicator
}

// ArgAt returns args[i], or fallback when there are fewer arguments.
func ArgAt(args []string, i int, fallback string) string {
	if i < len(args) {
		return args[i]
	}
	return fallback
}

// AddConfigFlags registers the --config and --env-file flags every command that reads
// the build configuration takes.
func AddConfigFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "Path to a config file read on top of the embedded configuration")
	cmd.Flags().String("env-file", ".env", "Path to a .env file with DEVDOCS_* overrides")
}

// LoadConfig loads and validates the configuration named by the command's config flags.
func LoadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	envFile, _ := cmd.Flags().GetString("env-file")

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(envFile); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Verbose reports whether the global --verbose flag is set.
func Verbose(cmd *cobra.Command) bool {
	verbose, _ := cmd.Flags().GetBool("verbose")
	return verbose
}

// ReportElapsed prints how long action took, rounded to the millisecond.
func ReportElapsed(w io.Writer, action string, elapsed time.Duration) {
	roundedElapsed := elapsed.Round(time.Millisecond)
	if roundedElapsed < time.Millisecond {
		roundedElapsed = time.Millisecond
	}

	fmt.Fprintf(w, "%s completed in %s\n", action, roundedElapsed)
}

// Dief prints a formatted message to stderr and exits with code 1.
func Dief(f string, args ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", args...)
	os.Exit(1)
}

// Die prints an error to stderr and exits with code 1.
func Die(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
