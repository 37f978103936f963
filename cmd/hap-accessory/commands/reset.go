package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/backkem/hap/pkg/accessory"
)

func resetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Remove all pairings and generate a new identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.StoragePath == "" {
				return fmt.Errorf("reset needs --storage or storage_path")
			}
			a, err := accessory.New(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Reset(); err != nil {
				return err
			}
			fmt.Printf("Reset complete, new device ID %s\n", a.Info().DeviceID)
			return nil
		},
	}
}
