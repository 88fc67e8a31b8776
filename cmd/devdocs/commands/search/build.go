package search

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/29next/devdocs/cmd/devdocs/commands/cmdutil"
	"github.com/29next/devdocs/config"
	searchPkg "github.com/29next/devdocs/search"
	"github.com/spf13/cobra"
)

var (
	buildHTMLFlag string
	buildJSONFlag string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the search index from the API descriptions on disk",
	Long: `Build the search index from the API descriptions previously written by
'devdocs api update'.

One record is created per operation of each configured search API, and one per webhook
of the configured webhooks version. The records are rendered as a static HTML page the
docs crawler indexes, and optionally dumped as JSON.`,
	Args: cobra.NoArgs,
	Run:  runBuild,
	Example: `  # Build the HTML index at the configured path
  devdocs search build

  # Also print the records as JSON
  devdocs search build --json -`,
}

func init() {
	cmdutil.AddConfigFlags(buildCmd)
	buildCmd.Flags().StringVar(&buildHTMLFlag, "html", "", "HTML index output path (defaults to the configured path)")
	buildCmd.Flags().StringVar(&buildJSONFlag, "json", "", "JSON records output path, '-' for stdout (defaults to the configured path)")
}

func runBuild(cmd *cobra.Command, _ []string) {
	ctx := cmd.Context()
	start := time.Now()

	cfg, err := cmdutil.LoadConfig(cmd)
	if err != nil {
		cmdutil.Die(err)
	}
	if buildHTMLFlag != "" {
		cfg.Search.HTML = buildHTMLFlag
	}
	if buildJSONFlag != "" {
		cfg.Search.JSON = buildJSONFlag
	}

	p := &cmdutil.Processor{Verbose: cmdutil.Verbose(cmd)}

	err = Build(ctx, p, cfg)
	p.ReportElapsed("Search index", time.Since(start))
	if err != nil {
		cmdutil.Die(err)
	}
}

// Build reads the API descriptions cfg.Search names from cfg.APIPath and writes the
// search index outputs cfg.Search enables.
func Build(ctx context.Context, p *cmdutil.Processor, cfg *config.Config) error {
	records, err := Records(ctx, p, cfg)
	if err != nil {
		return err
	}

	if cfg.Search.HTML != "" {
		var buf bytes.Buffer
		if err := searchPkg.RenderHTML(&buf, records); err != nil {
			return fmt.Errorf("failed to render search index: %w", err)
		}
		if err := p.WriteFile(cfg.Search.HTML, buf.Bytes()); err != nil {
			return err
		}
	}

	if cfg.Search.JSON != "" {
		var buf bytes.Buffer
		if err := searchPkg.WriteJSON(&buf, records); err != nil {
			return fmt.Errorf("failed to encode search records: %w", err)
		}
		if err := p.WriteFile(cfg.Search.JSON, buf.Bytes()); err != nil {
			return err
		}
	}

	p.PrintSuccess(fmt.Sprintf("Indexed %d records", len(records)))

	return nil
}

// Records builds the sorted search records of every configured target.
func Records(ctx context.Context, p *cmdutil.Processor, cfg *config.Config) ([]searchPkg.Record, error) {
	var records []searchPkg.Record

	for _, target := range cfg.Search.APIs {
		doc, err := p.ReadDocument(ctx, config.DocumentPath(cfg.APIPath, target.Type, target.Version))
		if err != nil {
			return nil, err
		}

		operations := searchPkg.Operations(cfg.SiteDomain, target.Type, target.Title, target.Version, doc)
		p.PrintVerbose(fmt.Sprintf("%s %s: %d operations", target.Type, target.Version, len(operations)))
		records = append(records, operations...)
	}

	if target := cfg.Search.Webhooks; target.Type != "" {
		doc, err := p.ReadDocument(ctx, config.DocumentPath(cfg.APIPath, target.Type, target.Version))
		if err != nil {
			return nil, err
		}

		hooks := searchPkg.Webhooks(cfg.SiteDomain, target.Type, target.Version, doc)
		p.PrintVerbose(fmt.Sprintf("%s %s: %d webhooks", target.Type, target.Version, len(hooks)))
		records = append(records, hooks...)
	}

	searchPkg.Sort(records)

	return records, nil
}
