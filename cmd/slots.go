package cmd

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

// slotsCmd represents the slots command
var slotsCmd = &cobra.Command{
	Use:   "slots [id]",
	Short: "Print the equipment slot map",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		p, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer p.Close()

		var out any
		if len(args) == 1 {
			slot, err := p.service.Equipment.Slot(ctx, args[0])
			if err != nil {
				return err
			}
			if slot == nil {
				return fmt.Errorf("unknown equipment slot %q", args[0])
			}
			out = slot
		} else {
			slots, err := p.service.Equipment.Slots(ctx)
			if err != nil {
				return err
			}
			out = slots
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	RootCmd.AddCommand(slotsCmd)
}
