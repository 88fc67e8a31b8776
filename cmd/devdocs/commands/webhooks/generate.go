package webhooks

import (
	"context"
	"fmt"
	"time"

	"github.com/29next/devdocs/cmd/devdocs/commands/cmdutil"
	"github.com/29next/devdocs/config"
	webhooksPkg "github.com/29next/devdocs/webhooks"
	"github.com/spf13/cobra"
)

var (
	generateWriteFlag    bool
	generateValidateFlag bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <input-file> [output-file]",
	Short: "Generate the webhooks of an API description",
	Long: `Generate a webhook for every event in the configured catalog and set them as the
document's top-level webhooks key, replacing any webhooks already there.

Each webhook's request body is the standard event envelope. Its data property is the
event's resource schema with every reference inlined and read-only properties removed,
or the custom payload configured for the event.

Stdin is supported: pass '-' as the input file.`,
	Args: cobra.RangeArgs(1, 2),
	Run:  runGenerate,
	Example: `  # Generate webhooks and print the document
  devdocs webhooks generate ./static/api/admin/2024-04-01.yaml

  # Generate webhooks in place and check every data schema compiles
  devdocs webhooks generate -w --validate ./static/api/admin/2024-04-01.yaml

  # Read from stdin
  cat admin.yaml | devdocs webhooks generate - out.yaml`,
}

func init() {
	cmdutil.AddConfigFlags(generateCmd)
	generateCmd.Flags().BoolVarP(&generateWriteFlag, "write", "w", false, "write result in-place to input file")
	generateCmd.Flags().BoolVar(&generateValidateFlag, "validate", false, "compile every generated data schema as JSON Schema")
}

func runGenerate(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	start := time.Now()

	cfg, err := cmdutil.LoadConfig(cmd)
	if err != nil {
		cmdutil.Die(err)
	}

	p, err := cmdutil.NewProcessor(args[0], cmdutil.ArgAt(args, 1, ""), generateWriteFlag)
	if err != nil {
		cmdutil.Die(err)
	}
	p.Verbose = cmdutil.Verbose(cmd)

	err = Generate(ctx, p, cfg, generateValidateFlag)
	p.ReportElapsed("Generation", time.Since(start))
	if err != nil {
		cmdutil.Die(err)
	}
}

// Generate loads the processor's input, sets its webhooks from cfg's catalog and writes
// it to the processor's output. With validate, every data schema must compile.
func Generate(ctx context.Context, p *cmdutil.Processor, cfg *config.Config, validate bool) error {
	doc, err := p.LoadDocument(ctx)
	if err != nil {
		return err
	}

	hooks, err := webhooksPkg.Generate(doc, cfg.Webhooks, cfg.WebhookPayloads())
	if err != nil {
		return err
	}

	for event := range hooks.Keys() {
		p.PrintVerbose(fmt.Sprintf("Generated %s", event))
	}

	if validate {
		if err := webhooksPkg.Validate(hooks); err != nil {
			return err
		}
		p.PrintSuccess(fmt.Sprintf("All %d data schemas are valid", hooks.Len()))
	}

	if err := doc.SetWebhooks(hooks); err != nil {
		return err
	}

	if err := p.WriteDocument(ctx, doc); err != nil {
		return err
	}

	p.PrintSuccess(fmt.Sprintf("Generated %d webhooks for version %s", hooks.Len(), doc.Version()))

	return nil
}
