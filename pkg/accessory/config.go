package accessory

import (
	"fmt"
	"net"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/backkem/hap/pkg/discovery"
	"github.com/backkem/hap/pkg/session"
	"github.com/backkem/hap/pkg/storage"
	"github.com/pion/logging"
)

// Defaults used by DefaultConfig and applyDefaults.
const (
	DefaultPort             = discovery.DefaultPort
	DefaultName             = "HAP Accessory"
	DefaultModel            = "Accessory1,1"
	DefaultManufacturer     = "Generic"
	DefaultSerialNumber     = "0001"
	DefaultFirmwareRevision = "0.1"
	DefaultSetupCode        = "031-45-154"
	DefaultCategory         = discovery.CategoryLightbulb
)

var setupCodePattern = regexp.MustCompile(`^[0-9]{3}-[0-9]{2}-[0-9]{3}$`)

// Config holds all configuration for an Accessory.
type Config struct {
	// Accessory information
	Name             string // Advertised instance name (max 64 chars)
	Model            string // Model name (md TXT key)
	Manufacturer     string
	SerialNumber     string
	FirmwareRevision string // Major[.Minor[.Revision]]

	// Pairing
	DeviceID     string             // Overrides the stored device ID (XX:XX:XX:XX:XX:XX)
	ConfigNumber uint32             // c# TXT key (default: 1)
	Category     discovery.Category // ci TXT key
	SetupCode    string             // XXX-XX-XXX

	// Network
	Port           int // TCP port (default: 7889, 0 in a file means default)
	MaxConnections int // Concurrent connections (default: session.DefaultMaxSlots)

	// Persistence
	MaxPairings int    // Stored pairing capacity (default: storage.DefaultMaxPairings)
	StoragePath string // bbolt database file; empty keeps state in memory

	// Storage overrides StoragePath. The accessory does not close it.
	Storage storage.Storage

	// Callbacks - Optional
	OnIdentify     func()
	OnStateChanged func(state State)

	// Advanced - Testing
	Listener      net.Listener                // Pre-bound listener instead of Port
	ServerFactory discovery.MDNSServerFactory // mDNS registration

	LoggerFactory logging.LoggerFactory
}

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() Config {
	c := Config{}
	c.applyDefaults()
	return c
}

// ValidSetupCode reports whether code has the form XXX-XX-XXX and is not
// one of InvalidSetupCodes.
func ValidSetupCode(code string) bool {
	return setupCodePattern.MatchString(code) && !InvalidSetupCodes[code]
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Name == "" || len(c.Name) > 64 {
		return ErrInvalidName
	}
	if c.Model == "" {
		return ErrInvalidModel
	}
	if !ValidSetupCode(c.SetupCode) {
		return fmt.Errorf("%w: %q", ErrInvalidSetupCode, c.SetupCode)
	}
	if c.DeviceID != "" && !storage.ValidDeviceID(c.DeviceID) {
		return fmt.Errorf("%w: %q", ErrInvalidDeviceID, c.DeviceID)
	}
	if c.ConfigNumber < 1 || c.ConfigNumber > 65535 {
		return ErrInvalidConfigNumber
	}
	if c.Port < 0 || c.Port > 65535 {
		return ErrInvalidPort
	}
	return nil
}

// applyDefaults fills in default values for unset fields.
func (c *Config) applyDefaults() {
	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Manufacturer == "" {
		c.Manufacturer = DefaultManufacturer
	}
	if c.SerialNumber == "" {
		c.SerialNumber = DefaultSerialNumber
	}
	if c.FirmwareRevision == "" {
		c.FirmwareRevision = DefaultFirmwareRevision
	}
	if c.SetupCode == "" {
		c.SetupCode = DefaultSetupCode
	}
	if c.ConfigNumber == 0 {
		c.ConfigNumber = 1
	}
	if c.Category == 0 {
		c.Category = DefaultCategory
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.MaxConnections <= 0 {
		c.MaxConnections = session.DefaultMaxSlots
	}
	if c.MaxPairings <= 0 {
		c.MaxPairings = storage.DefaultMaxPairings
	}
}

type fileConfig struct {
	Name             string `toml:"name"`
	Model            string `toml:"model"`
	Manufacturer     string `toml:"manufacturer"`
	SerialNumber     string `toml:"serial_number"`
	FirmwareRevision string `toml:"firmware_revision"`
	DeviceID         string `toml:"device_id"`
	ConfigNumber     uint32 `toml:"config_number"`
	Category         uint16 `toml:"category"`
	SetupCode        string `toml:"setup_code"`
	Port             int    `toml:"port"`
	MaxConnections   int    `toml:"max_connections"`
	MaxPairings      int    `toml:"max_pairings"`
	StoragePath      string `toml:"storage_path"`
}

// LoadConfig reads a TOML file and overlays the keys it defines on
// DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load accessory config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load accessory config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("name") {
		cfg.Name = strings.TrimSpace(raw.Name)
	}
	if meta.IsDefined("model") {
		cfg.Model = strings.TrimSpace(raw.Model)
	}
	if meta.IsDefined("manufacturer") {
		cfg.Manufacturer = strings.TrimSpace(raw.Manufacturer)
	}
	if meta.IsDefined("serial_number") {
		cfg.SerialNumber = strings.TrimSpace(raw.SerialNumber)
	}
	if meta.IsDefined("firmware_revision") {
		cfg.FirmwareRevision = strings.TrimSpace(raw.FirmwareRevision)
	}
	if meta.IsDefined("device_id") {
		cfg.DeviceID = strings.ToUpper(strings.TrimSpace(raw.DeviceID))
	}
	if meta.IsDefined("config_number") {
		cfg.ConfigNumber = raw.ConfigNumber
	}
	if meta.IsDefined("category") {
		cfg.Category = discovery.Category(raw.Category)
	}
	if meta.IsDefined("setup_code") {
		cfg.SetupCode = strings.TrimSpace(raw.SetupCode)
	}
	if meta.IsDefined("port") {
		cfg.Port = raw.Port
	}
	if meta.IsDefined("max_connections") {
		cfg.MaxConnections = raw.MaxConnections
	}
	if meta.IsDefined("max_pairings") {
		cfg.MaxPairings = raw.MaxPairings
	}
	if meta.IsDefined("storage_path") {
		cfg.StoragePath = strings.TrimSpace(raw.StoragePath)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
