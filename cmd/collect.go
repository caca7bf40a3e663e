package cmd

import (
	"errors"
	"fmt"
	"os"

	"krosmoz-scrapper/feature/scrapping"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// collectCmd represents the collect command
var collectCmd = &cobra.Command{
	Use:   "collect <alias>",
	Short: "Collect and integrate the records of an alias",
	Long: `Resolves the alias, pages through the remote source under the entity cap,
converts every record and stores it. Use --dry-run to preview without writing.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		opts := scrapping.RunOptions{}
		opts.PageSize, _ = cmd.Flags().GetInt("page-size")
		opts.Max, _ = cmd.Flags().GetInt("max")
		opts.DryRun, _ = cmd.Flags().GetBool("dry-run")
		opts.Archive, _ = cmd.Flags().GetBool("archive")
		jsonOutput, _ := cmd.Flags().GetBool("json")

		p, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer p.Close()

		report, err := p.service.Run(ctx, args[0], opts)
		if errors.Is(err, scrapping.ErrUnknownAlias) {
			// Nothing to collect is not a failure.
			p.logger.Warn("Unknown alias, nothing to collect",
				zap.String("alias", args[0]), zap.Strings("known", p.service.Resolver.List(ctx)))
			return nil
		}
		if report != nil {
			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				_ = enc.Encode(report)
			} else {
				printReport(report)
			}
		}
		return err
	},
}

func printReport(r *scrapping.Report) {
	mode := "integrated"
	if r.DryRun {
		mode = "previewed"
	}
	fmt.Printf("%s (%s/%s): %d records %s in %d pages\n", r.Alias, r.Source, r.Entity, r.Processed, mode, r.Stats.Pages)
	fmt.Printf("  created=%d updated=%d skipped=%d failed=%d pending=%d\n", r.Created, r.Updated, r.Skipped, r.Failed, r.Pending)
	fmt.Printf("  stopped: %s (cap %d, page size %d)\n", r.StopReason, r.Stats.Cap, r.Stats.PageSize)
	if r.CapReached() {
		fmt.Println("  cap reached, more records remain on the remote")
	}
	for _, f := range r.Failures {
		fmt.Printf("  failed %d: %s\n", f.DofusdbID, f.Message)
	}
	for _, o := range r.Archived {
		fmt.Printf("  archived %s\n", o)
	}
}

func init() {
	collectCmd.Flags().Int("page-size", 0, "Requested page size (reduced to the remote page limit)")
	collectCmd.Flags().Int("max", 0, "Collect at most this many records (below the entity cap)")
	collectCmd.Flags().Bool("dry-run", false, "Convert and report without writing")
	collectCmd.Flags().Bool("archive", false, "Archive raw pages to the storage bucket")
	collectCmd.Flags().Bool("json", false, "Print the report as JSON")
	RootCmd.AddCommand(collectCmd)
}
