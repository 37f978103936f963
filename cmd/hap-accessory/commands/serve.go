package commands

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/backkem/hap/pkg/accessory"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the accessory until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			cfg.OnIdentify = func() {
				fmt.Println("Identify requested")
			}

			a, err := accessory.New(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := a.Start(); err != nil {
				a.Close()
				return fmt.Errorf("start accessory: %w", err)
			}

			fmt.Println("\n========================================")
			fmt.Println("          HAP Accessory Ready")
			fmt.Println("========================================")
			printInfo(a.Info())
			fmt.Printf("Listening:      %s\n", a.Addr())
			fmt.Println("========================================")

			<-ctx.Done()
			fmt.Println("Shutting down...")
			return a.Stop()
		},
	}
}
