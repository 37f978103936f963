package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/backkem/hap/pkg/accessory"
)

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the accessory identity and pairings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := accessory.New(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			printInfo(a.Info())
			for _, p := range a.Pairings() {
				fmt.Printf("  %s (%s)\n", p.Identifier, p.Permission)
			}
			return nil
		},
	}
}
