package main

import (
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	apiCmd "github.com/29next/devdocs/cmd/devdocs/commands/api"
	searchCmd "github.com/29next/devdocs/cmd/devdocs/commands/search"
	webhooksCmd "github.com/29next/devdocs/cmd/devdocs/commands/webhooks"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// getVersionInfo returns version information, prioritizing ldflags values over build info
func getVersionInfo() (string, string, string) {
	if version != "dev" || commit != "none" || date != "unknown" {
		return version, commit, date
	}

	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return version, commit, date
	}

	moduleVersion := version
	if buildInfo.Main.Version != "" && buildInfo.Main.Version != "(devel)" {
		moduleVersion = buildInfo.Main.Version
	}

	vcsCommit := commit
	vcsTime := date

	for _, setting := range buildInfo.Settings {
		switch setting.Key {
		case "vcs.revision":
			if len(setting.Value) >= 7 {
				vcsCommit = setting.Value[:7] // Short commit hash
			} else {
				vcsCommit = setting.Value
			}
		case "vcs.time":
			vcsTime = setting.Value
		}
	}

	return moduleVersion, vcsCommit, vcsTime
}

var rootCmd = &cobra.Command{
	Use:   "devdocs",
	Short: "Build tooling for the developer docs site",
	Long: `Build tooling for the developer docs site.

This CLI provides tools for:

API Descriptions:
- Download the published versions of each API
- Set descriptions, servers and security on the downloaded documents
- Generate webhook request schemas from the API's resource schemas

Search:
- Build the search index of every operation and webhook

Configuration is embedded. Use --config to read a config file on top of it, and
DEVDOCS_* variables (or a .env file) to override the site domain, the API path and
the download concurrency.`,
	Version: version,
}

var apiCmds = &cobra.Command{
	Use:   "api",
	Short: "Work with the published API descriptions",
	Long: `Commands for working with the published API descriptions.

API descriptions are downloaded from each API's schema endpoint and written to the
docs site as YAML, one file per type and version.`,
}

var webhooksCmds = &cobra.Command{
	Use:   "webhooks",
	Short: "Work with webhook schemas",
	Long: `Commands for working with webhook schemas.

Webhooks are generated from the event catalog: each event's request body wraps the
resource it carries in the standard event envelope.`,
}

var searchCmds = &cobra.Command{
	Use:   "search",
	Short: "Work with the docs search index",
	Long: `Commands for working with the docs search index.

The index lists every operation and webhook of the configured API versions.`,
}

func init() {
	currentVersion, currentCommit, currentDate := getVersionInfo()

	rootCmd.Version = currentVersion

	var versionTemplate strings.Builder
	versionTemplate.WriteString(`{{printf "%s" .Version}}`)

	if currentCommit != "none" && currentCommit != "" {
		versionTemplate.WriteString("\nBuild: " + currentCommit)
	}

	if currentDate != "unknown" && currentDate != "" {
		versionTemplate.WriteString("\nBuilt: " + currentDate)
	}

	rootCmd.SetVersionTemplate(versionTemplate.String())

	apiCmd.Apply(apiCmds)
	webhooksCmd.Apply(webhooksCmds)
	searchCmd.Apply(searchCmds)

	rootCmd.AddCommand(apiCmds)
	rootCmd.AddCommand(webhooksCmds)
	rootCmd.AddCommand(searchCmds)

	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
