package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/pion/logging"
	"github.com/spf13/cobra"

	"github.com/backkem/hap/pkg/accessory"
)

var (
	configPath  string
	storagePath string
	logLevel    string

	loggerFactory logging.LoggerFactory
)

var logLevels = map[string]logging.LogLevel{
	"disabled": logging.LogLevelDisabled,
	"error":    logging.LogLevelError,
	"warn":     logging.LogLevelWarn,
	"info":     logging.LogLevelInfo,
	"debug":    logging.LogLevelDebug,
	"trace":    logging.LogLevelTrace,
}

// Execute runs the root command.
func Execute() error {
	root := &cobra.Command{
		Use:          "hap-accessory",
		Short:        "HomeKit accessory with pair setup",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, ok := logLevels[strings.ToLower(logLevel)]
			if !ok {
				return fmt.Errorf("unknown log level %q", logLevel)
			}
			f := logging.NewDefaultLoggerFactory()
			f.DefaultLogLevel = level
			f.Writer = os.Stderr
			loggerFactory = f
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "TOML config file (default: built-in defaults)")
	root.PersistentFlags().StringVar(&storagePath, "storage", "", "database file, overrides storage_path (default: in-memory)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "disabled, error, warn, info, debug or trace")

	root.AddCommand(serveCmd(), showCmd(), resetCmd())
	return root.Execute()
}

// loadConfig resolves the accessory configuration from the flags.
func loadConfig() (accessory.Config, error) {
	cfg := accessory.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = accessory.LoadConfig(configPath); err != nil {
			return accessory.Config{}, err
		}
	}
	if storagePath != "" {
		cfg.StoragePath = storagePath
	}
	cfg.LoggerFactory = loggerFactory
	return cfg, nil
}

func printInfo(info accessory.Info) {
	fmt.Printf("Name:           %s\n", info.Name)
	fmt.Printf("Model:          %s\n", info.Model)
	fmt.Printf("Manufacturer:   %s\n", info.Manufacturer)
	fmt.Printf("Serial Number:  %s\n", info.SerialNumber)
	fmt.Printf("Firmware:       %s\n", info.FirmwareRevision)
	fmt.Printf("Category:       %s\n", info.Category)
	fmt.Printf("Device ID:      %s\n", info.DeviceID)
	fmt.Printf("Setup Code:     %s\n", info.SetupCode)
	fmt.Printf("Pairings:       %d/%d\n", info.Pairings, info.MaxPairings)
}
