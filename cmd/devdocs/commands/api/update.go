package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/29next/devdocs/augment"
	"github.com/29next/devdocs/cmd/devdocs/commands/cmdutil"
	"github.com/29next/devdocs/config"
	"github.com/29next/devdocs/document"
	"github.com/29next/devdocs/fetch"
	"github.com/29next/devdocs/webhooks"
	"github.com/29next/devdocs/yml"
	"github.com/spf13/cobra"
)

var updateOnlyFlag string

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Download the published API descriptions and write them to the docs site",
	Long: `Download every configured API version from its schema endpoint and write it to
<api_path>/<type>/<version>.yaml.

Each downloaded description is augmented before it is written:
- info.description is replaced with the configured description
- webhooks are generated for versions with webhooks enabled
- the configured additions (servers, security, ...) are set on the document root`,
	Args: cobra.NoArgs,
	Run:  runUpdate,
	Example: `  # Update every API version
  devdocs api update

  # Update only the admin API versions
  devdocs api update --only admin

  # Update a single version with a local config
  devdocs api update --only admin/2024-04-01 --config devdocs.yaml`,
}

func init() {
	cmdutil.AddConfigFlags(updateCmd)
	updateCmd.Flags().StringVar(&updateOnlyFlag, "only", "", "Only update the APIs matching type or type/version")
}

func runUpdate(cmd *cobra.Command, _ []string) {
	ctx := cmd.Context()
	start := time.Now()

	cfg, err := cmdutil.LoadConfig(cmd)
	if err != nil {
		cmdutil.Die(err)
	}

	apis, err := cfg.Select(updateOnlyFlag)
	if err != nil {
		cmdutil.Die(err)
	}

	p := &cmdutil.Processor{Verbose: cmdutil.Verbose(cmd)}
	fetcher := fetch.New(fetch.WithClient(http.DefaultClient), fetch.WithConcurrency(cfg.Concurrency))

	err = Update(ctx, p, cfg, apis, fetcher)
	p.ReportElapsed("Update", time.Since(start))
	if err != nil {
		cmdutil.Die(err)
	}
}

// Update downloads apis and writes each augmented description below cfg.APIPath.
// Nothing is written unless every download succeeds.
func Update(ctx context.Context, p *cmdutil.Processor, cfg *config.Config, apis []config.API, fetcher *fetch.Fetcher) error {
	targets := make([]fetch.Target, len(apis))
	for i, api := range apis {
		targets[i] = fetch.Target{Source: api.Source, Version: api.Version}
	}

	p.PrintInfo(fmt.Sprintf("Downloading %d API descriptions", len(targets)))

	data, err := fetcher.FetchAll(ctx, targets)
	if err != nil {
		return err
	}

	payloads := cfg.WebhookPayloads()

	for i, api := range apis {
		p.PrintVerbose(fmt.Sprintf("Downloaded %s (%d bytes)", targets[i], len(data[i])))

		doc, err := document.Unmarshal(ctx, bytes.NewReader(data[i]))
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", api.ID(), err)
		}

		if err := augmentAPI(p, doc, cfg, api, payloads); err != nil {
			return fmt.Errorf("failed to update %s: %w", api.ID(), err)
		}

		out := yml.GetDefaultConfig()
		out.OriginalFormat = doc.Config().OriginalFormat

		if err := p.SaveDocument(yml.ContextWithConfig(ctx, out), api.Path(cfg.APIPath), doc); err != nil {
			return err
		}

		p.PrintSuccess(fmt.Sprintf("Updated %s", api.ID()))
	}

	return nil
}

func augmentAPI(p *cmdutil.Processor, doc *document.Document, cfg *config.Config, api config.API, payloads webhooks.Payloads) error {
	if api.Webhooks {
		hooks, err := webhooks.Generate(doc, cfg.Webhooks, payloads)
		if err != nil {
			return err
		}
		if err := doc.SetWebhooks(hooks); err != nil {
			return err
		}
		p.PrintVerbose(fmt.Sprintf("Generated %d webhooks for %s", hooks.Len(), api.ID()))
	}

	return augment.Apply(doc.Root(), augment.ForAPI(api.Description, &api.Additions))
}
