// Package accessory runs a HAP accessory: it loads the accessory identity
// and pairings, serves pair setup over TCP and advertises _hap._tcp.
//
// An accessory starts unpaired (sf=1). When pair setup stores the first
// controller the advertisement is updated to sf=0 and further setup
// attempts are refused with Error=Unavailable.
package accessory

import (
	"fmt"
	"net"
	"strconv"
	"sync"

	"github.com/backkem/hap/pkg/discovery"
	"github.com/backkem/hap/pkg/hapserver"
	"github.com/backkem/hap/pkg/pairing"
	"github.com/backkem/hap/pkg/session"
	"github.com/backkem/hap/pkg/storage"
	"github.com/backkem/hap/pkg/transport"
	"github.com/pion/logging"
)

// Accessory is a HAP accessory. It coordinates storage, pair setup, the
// connection table, the TCP transport and DNS-SD.
type Accessory struct {
	config Config
	state  State
	log    logging.LeveledLogger

	storage     storage.Storage
	ownsStorage bool

	identity *storage.Identity
	pairings *storage.Pairings
	setup    *pairing.Setup
	table    *session.Table
	server   *hapserver.Server

	tcp        *transport.TCP
	advertiser *discovery.Advertiser

	mu sync.RWMutex
}

// New creates an accessory with the given configuration. Storage is opened
// and the identity is loaded (or generated) but nothing is served until
// Start is called.
func New(config Config) (*Accessory, error) {
	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	a := &Accessory{
		config: config,
		state:  StateInitialized,
	}
	if config.LoggerFactory != nil {
		a.log = config.LoggerFactory.NewLogger("accessory")
	}

	if err := a.openStorage(); err != nil {
		return nil, err
	}
	if err := a.init(); err != nil {
		a.closeStorage()
		return nil, err
	}
	return a, nil
}

func (a *Accessory) openStorage() error {
	switch {
	case a.config.Storage != nil:
		a.storage = a.config.Storage
	case a.config.StoragePath != "":
		s, err := storage.OpenBolt(a.config.StoragePath)
		if err != nil {
			return err
		}
		a.storage = s
		a.ownsStorage = true
	default:
		a.storage = storage.NewMemoryStorage()
		a.ownsStorage = true
	}
	return nil
}

func (a *Accessory) closeStorage() {
	if !a.ownsStorage || a.storage == nil {
		return
	}
	if err := a.storage.Close(); err != nil && a.log != nil {
		a.log.Warnf("close storage: %v", err)
	}
}

// init builds the pairing stack on top of the opened storage.
func (a *Accessory) init() error {
	id, created, err := storage.LoadOrCreateIdentity(a.storage)
	if err != nil {
		return fmt.Errorf("accessory: load identity: %w", err)
	}
	if created && a.log != nil {
		a.log.Infof("generated new identity, device ID %s", id.DeviceID())
	}
	if a.config.DeviceID != "" && a.config.DeviceID != id.DeviceID() {
		if id, err = id.WithDeviceID(a.config.DeviceID); err != nil {
			return fmt.Errorf("accessory: %w", err)
		}
		if err := a.storage.SaveIdentity(id); err != nil {
			return fmt.Errorf("accessory: save identity: %w", err)
		}
	}
	a.identity = id

	a.pairings, err = storage.NewPairings(storage.PairingsConfig{
		Storage:       a.storage,
		MaxPairings:   a.config.MaxPairings,
		OnChange:      a.onPairingsChanged,
		LoggerFactory: a.config.LoggerFactory,
	})
	if err != nil {
		return err
	}

	a.setup, err = pairing.NewSetup(pairing.SetupConfig{
		SetupCode:     a.config.SetupCode,
		Store:         a.pairings,
		Identity:      a.identity,
		LoggerFactory: a.config.LoggerFactory,
	})
	if err != nil {
		return err
	}

	a.table = session.NewTable(session.Config{
		MaxSlots:      a.config.MaxConnections,
		Database:      a,
		Canceler:      a.setup,
		LoggerFactory: a.config.LoggerFactory,
	})

	a.server, err = hapserver.NewServer(hapserver.ServerConfig{
		Setup:         a.setup,
		Table:         a.table,
		Pairings:      a.pairings,
		OnIdentify:    a.config.OnIdentify,
		LoggerFactory: a.config.LoggerFactory,
	})
	return err
}

// Start opens the TCP listener and begins advertising.
func (a *Accessory) Start() error {
	a.mu.Lock()
	if !a.state.CanStart() {
		defer a.mu.Unlock()
		if a.state.IsRunning() {
			return ErrAlreadyStarted
		}
		return ErrNotInitialized
	}
	a.state = StateStarting

	if err := a.startTransport(); err != nil {
		a.state = StateInitialized
		a.mu.Unlock()
		return err
	}
	if err := a.startDiscovery(); err != nil {
		a.stopTransport()
		a.state = StateInitialized
		a.mu.Unlock()
		return err
	}

	a.state = a.pairedState(a.pairings.Count())
	state := a.state
	if a.log != nil {
		a.log.Infof("accessory %q started on port %d, state=%s", a.config.Name, a.tcp.Port(), state)
	}
	a.mu.Unlock()

	a.notify(state)
	return nil
}

func (a *Accessory) startTransport() error {
	tcp, err := transport.NewTCP(transport.TCPConfig{
		Listener:      a.config.Listener,
		ListenAddr:    net.JoinHostPort("", strconv.Itoa(a.config.Port)),
		Handler:       a.server,
		LoggerFactory: a.config.LoggerFactory,
	})
	if err != nil {
		return err
	}
	if err := tcp.Start(); err != nil {
		tcp.Stop()
		return err
	}
	a.tcp = tcp
	return nil
}

func (a *Accessory) stopTransport() {
	if a.tcp == nil {
		return
	}
	if err := a.tcp.Stop(); err != nil && a.log != nil {
		a.log.Warnf("stop transport: %v", err)
	}
}

func (a *Accessory) startDiscovery() error {
	adv, err := discovery.NewAdvertiser(discovery.AdvertiserConfig{
		Port:          a.tcp.Port(),
		ServerFactory: a.config.ServerFactory,
		LoggerFactory: a.config.LoggerFactory,
	})
	if err != nil {
		return err
	}
	if err := adv.Start(a.config.Name, a.txt()); err != nil {
		adv.Close()
		return err
	}
	a.advertiser = adv
	return nil
}

func (a *Accessory) stopDiscovery() {
	if a.advertiser == nil {
		return
	}
	if err := a.advertiser.Close(); err != nil && a.log != nil {
		a.log.Warnf("stop discovery: %v", err)
	}
}

// txt builds the advertised TXT values from the configuration.
func (a *Accessory) txt() discovery.AccessoryTXT {
	txt := discovery.AccessoryTXT{
		ConfigNumber: a.config.ConfigNumber,
		DeviceID:     a.identity.DeviceID(),
		Model:        a.config.Model,
		Category:     a.config.Category,
	}
	txt.SetPaired(a.pairings.Count() > 0)
	return txt
}

// Stop closes every connection, stops advertising and releases storage.
// A stopped accessory cannot be restarted.
func (a *Accessory) Stop() error {
	a.mu.Lock()
	if !a.state.CanStop() {
		defer a.mu.Unlock()
		if a.state == StateStopped {
			return ErrAlreadyStopped
		}
		return ErrNotStarted
	}
	a.state = StateStopping
	a.mu.Unlock()

	// Connection goroutines may call back into onPairingsChanged, so
	// components are stopped without holding a.mu.
	a.stopDiscovery()
	a.stopTransport()
	a.table.CloseAll()
	a.closeStorage()

	a.mu.Lock()
	a.state = StateStopped
	a.mu.Unlock()

	if a.log != nil {
		a.log.Info("accessory stopped")
	}
	a.notify(StateStopped)
	return nil
}

// Reset removes every pairing and replaces the identity with a new one,
// including a new device ID unless Config.DeviceID pins it. The accessory
// must not be running.
func (a *Accessory) Reset() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != StateInitialized {
		if a.state.IsRunning() {
			return ErrAlreadyStarted
		}
		return ErrNotInitialized
	}

	if _, err := storage.Reset(a.storage); err != nil {
		return err
	}
	if err := a.init(); err != nil {
		return err
	}
	if a.log != nil {
		a.log.Infof("factory reset, device ID %s", a.identity.DeviceID())
	}
	return nil
}

// Close releases storage without starting. Use Stop on a started accessory.
func (a *Accessory) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != StateInitialized {
		if a.state == StateStopped {
			return ErrAlreadyStopped
		}
		return ErrAlreadyStarted
	}
	a.closeStorage()
	a.state = StateStopped
	return nil
}

// onPairingsChanged runs whenever the stored pairing list changes.
func (a *Accessory) onPairingsChanged(count int) {
	a.mu.Lock()
	if !a.state.IsRunning() {
		a.mu.Unlock()
		return
	}
	state := a.pairedState(count)
	changed := state != a.state
	a.state = state
	adv := a.advertiser
	a.mu.Unlock()

	if a.log != nil {
		a.log.Infof("%d pairing(s) stored", count)
	}
	if err := adv.SetPaired(count > 0); err != nil && a.log != nil {
		a.log.Warnf("update advertisement: %v", err)
	}
	if changed {
		a.notify(state)
	}
}

func (a *Accessory) pairedState(count int) State {
	if count > 0 {
		return StatePaired
	}
	return StateUnpaired
}

func (a *Accessory) notify(state State) {
	if a.config.OnStateChanged != nil {
		a.config.OnStateChanged(state)
	}
}

// SessionOpened implements session.Database.
func (a *Accessory) SessionOpened(id int) {
	if a.log != nil {
		a.log.Debugf("connection %d opened", id)
	}
}

// SessionClosed implements session.Database.
func (a *Accessory) SessionClosed(id int) {
	if a.log != nil {
		a.log.Debugf("connection %d closed", id)
	}
}

// State returns the current state.
func (a *Accessory) State() State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// Addr returns the listening address, or nil if not started.
func (a *Accessory) Addr() net.Addr {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.tcp == nil {
		return nil
	}
	return a.tcp.Addr()
}

// Info describes the accessory for display.
type Info struct {
	Name             string
	Model            string
	Manufacturer     string
	SerialNumber     string
	FirmwareRevision string
	DeviceID         string
	SetupCode        string
	Category         discovery.Category
	ConfigNumber     uint32
	Pairings         int
	MaxPairings      int
	State            State
}

// Info returns the accessory description.
func (a *Accessory) Info() Info {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return Info{
		Name:             a.config.Name,
		Model:            a.config.Model,
		Manufacturer:     a.config.Manufacturer,
		SerialNumber:     a.config.SerialNumber,
		FirmwareRevision: a.config.FirmwareRevision,
		DeviceID:         a.identity.DeviceID(),
		SetupCode:        a.config.SetupCode,
		Category:         a.config.Category,
		ConfigNumber:     a.config.ConfigNumber,
		Pairings:         a.pairings.Count(),
		MaxPairings:      a.pairings.Max(),
		State:            a.state,
	}
}

// Pairings returns the paired controllers.
func (a *Accessory) Pairings() []storage.Pairing {
	return a.pairings.List()
}
