package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"krosmoz-scrapper/feature/conversion"

	"github.com/spf13/cobra"
)

// convertCmd represents the convert command
var convertCmd = &cobra.Command{
	Use:   "convert <formula> <value>",
	Short: "Apply a conversion formula to one value",
	Example: `  krosmoz-scrapper convert monster.life 1200 --var level=12
  krosmoz-scrapper convert item.level 200 --limit item`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		value, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid value %q: %w", args[1], err)
		}
		raw, _ := cmd.Flags().GetStringToString("var")
		vars := make(conversion.Context, len(raw))
		for k, v := range raw {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid --var %s=%s: %w", k, v, err)
			}
			vars[k] = f
		}
		limitEntity, _ := cmd.Flags().GetString("limit")

		p, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer p.Close()

		out, err := p.service.Formulas.Convert(ctx, value, args[0], vars)
		if err != nil {
			return err
		}
		fmt.Printf("%s(%g) = %g\n", args[0], value, out)

		if limitEntity != "" {
			field := args[0][strings.LastIndex(args[0], ".")+1:]
			l, err := p.service.Characteristics.LimitsByField(ctx, field, limitEntity)
			if err != nil {
				return err
			}
			if l == nil {
				fmt.Printf("no limits for %s/%s\n", limitEntity, field)
				return nil
			}
			fmt.Printf("clamped to %s/%s limits: %g\n", limitEntity, field, l.Clamp(out))
		}
		return nil
	},
}

func init() {
	convertCmd.Flags().StringToString("var", nil, "Formula context variable (name=number), repeatable")
	convertCmd.Flags().String("limit", "", "Also clamp to the limits of this entity for the formula's field")
	RootCmd.AddCommand(convertCmd)
}
