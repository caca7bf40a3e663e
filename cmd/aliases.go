package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"krosmoz-scrapper/core/config"
	"krosmoz-scrapper/core/logger"
	"krosmoz-scrapper/core/storage"
	"krosmoz-scrapper/feature/alias"
	"krosmoz-scrapper/feature/collect"
	"krosmoz-scrapper/feature/limits"

	"github.com/spf13/cobra"
)

// aliasesCmd represents the aliases command
var aliasesCmd = &cobra.Command{
	Use:   "aliases",
	Short: "List the collect aliases and their caps",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer logg.Sync()

		var source alias.Source = alias.FileSource{Path: cfg.Scrapping.RegistryPath}
		if cfg.Scrapping.RegistryObject != "" {
			client, err := storage.NewClient(cfg.Storage)
			if err != nil {
				return err
			}
			source = alias.ObjectSource{Client: client, Bucket: cfg.Storage.Bucket, Object: cfg.Scrapping.RegistryObject}
		}

		resolver := alias.NewResolver(source, logg)
		policy := limits.Default()
		fallback := cfg.Scrapping.FallbackCap
		if fallback <= 0 {
			fallback = collect.DefaultFallbackCap
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ALIAS\tSOURCE\tENTITY\tCAP\tFILTER\tLABEL")
		for _, a := range resolver.All(cmd.Context()) {
			var filter []string
			for k, v := range a.Filter() {
				filter = append(filter, k+"="+v)
			}
			sort.Strings(filter)
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
				a.Alias, a.Source, a.Entity, policy.CapFor(a.Entity, fallback), strings.Join(filter, ","), a.DisplayName())
		}
		return w.Flush()
	},
}

func init() {
	RootCmd.AddCommand(aliasesCmd)
}
