package pairing

import (
	"errors"
	"sync"

	"github.com/pion/logging"

	"github.com/backkem/hap/pkg/crypto"
	"github.com/backkem/hap/pkg/tlv8"
)

// SetupConfig configures a Setup.
type SetupConfig struct {
	// SetupCode is the accessory setup code (XXX-XX-XXX).
	SetupCode string

	// Store receives the controller pairing on successful M5.
	Store Store

	// Identity, when set, is returned to the controller in M6.
	// Without it M6 is a bare acknowledgement.
	Identity Identity

	// NewExchange starts the key exchange for M1. Defaults to NewSRPExchange.
	NewExchange ExchangeFactory

	// LoggerFactory for logging.
	LoggerFactory logging.LoggerFactory
}

// Validate checks the configuration.
func (c *SetupConfig) Validate() error {
	if c.Store == nil {
		return ErrStoreRequired
	}
	if c.SetupCode == "" {
		return ErrSetupCodeRequired
	}
	return nil
}

// Setup runs the pair setup state machine. It owns the process-wide pairing
// record and attempt counter; all access is serialized by one lock.
type Setup struct {
	mu sync.Mutex

	setupCode   string
	store       Store
	identity    Identity
	newExchange ExchangeFactory

	current  *record
	attempts int

	log logging.LeveledLogger
}

// NewSetup creates a Setup.
func NewSetup(config SetupConfig) (*Setup, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	s := &Setup{
		setupCode:   config.SetupCode,
		store:       config.Store,
		identity:    config.Identity,
		newExchange: config.NewExchange,
	}
	if s.newExchange == nil {
		s.newExchange = NewSRPExchange
	}
	if config.LoggerFactory != nil {
		s.log = config.LoggerFactory.NewLogger("pairing")
	}
	return s, nil
}

// Handle processes one pair setup request from the connection slot owner and
// writes the response to out. It returns the State of the response.
//
// Requests without a State item, or with a State other than M1, M3 or M5,
// are answered with Error=Unknown.
func (s *Setup) Handle(owner int, in *tlv8.Set, out *tlv8.Builder) tlv8.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	var o outcome
	state, ok := in.Int(tlv8.TypeState)
	switch {
	case !ok:
		o = failure(tlv8.StateM2, tlv8.ErrorUnknown)
	case state == uint64(tlv8.StateM1):
		o = s.handleM1(owner, in)
	case state == uint64(tlv8.StateM3):
		o = s.handleM3(owner, in)
	case state == uint64(tlv8.StateM5):
		o = s.handleM5(owner, in)
	case state >= 0xFF:
		o = failure(tlv8.StateM2, tlv8.ErrorUnknown)
	default:
		o = failure(tlv8.State(state+1), tlv8.ErrorUnknown)
	}

	if !o.encode(out) {
		s.warnf("pair setup %s response does not fit, replying Unknown", o.state)
		o.teardown = true
	}
	if o.teardown {
		s.release(owner)
	}
	if o.code != tlv8.ErrorNone {
		s.debugf("slot %d: pair setup %s error %s", owner, o.state, o.code)
	}
	return o.state
}

// handleM1 starts a pair setup.
func (s *Setup) handleM1(owner int, in *tlv8.Set) outcome {
	method, ok := in.Int(tlv8.TypeMethod)
	if !ok || method != uint64(tlv8.MethodPairSetup) {
		return failure(tlv8.StateM2, tlv8.ErrorUnknown)
	}
	if s.store.Count() > 0 {
		return failure(tlv8.StateM2, tlv8.ErrorUnavailable)
	}
	if s.attempts > MaxAttempts {
		return failure(tlv8.StateM2, tlv8.ErrorMaxTries)
	}
	if !s.tryAcquire(owner) {
		return failure(tlv8.StateM2, tlv8.ErrorBusy)
	}

	// A repeated M1 from the owner restarts its pairing.
	s.release(owner)
	s.attempts++

	exchange, err := s.newExchange(s.setupCode)
	if err != nil {
		s.warnf("failed to start key exchange: %v", err)
		return failure(tlv8.StateM2, tlv8.ErrorUnknown)
	}
	s.current = &record{owner: owner, exchange: exchange}
	s.debugf("slot %d: pair setup started (attempt %d)", owner, s.attempts)
	s.tracef("salt", exchange.Salt())
	s.tracef("accessory public key", exchange.PublicKey())

	return success(tlv8.StateM2,
		field{tlv8.TypePublicKey, exchange.PublicKey()},
		field{tlv8.TypeSalt, exchange.Salt()},
	)
}

// handleM3 verifies the controller proof. A proof mismatch keeps the record
// so the controller may retry M3.
func (s *Setup) handleM3(owner int, in *tlv8.Set) outcome {
	rec := s.owned(owner)
	if rec == nil {
		return failure(tlv8.StateM4, tlv8.ErrorUnknown)
	}
	publicKey, ok := in.Lookup(tlv8.TypePublicKey)
	if !ok {
		return abort(tlv8.StateM4, tlv8.ErrorUnknown)
	}
	proof, ok := in.Lookup(tlv8.TypeProof)
	if !ok {
		return abort(tlv8.StateM4, tlv8.ErrorUnknown)
	}

	s.tracef("controller public key", publicKey)
	s.tracef("controller proof", proof)

	rec.verified = false
	secret, err := rec.exchange.ComputeKey(publicKey)
	if err != nil {
		s.debugf("slot %d: compute shared secret: %v", owner, err)
		return abort(tlv8.StateM4, tlv8.ErrorUnknown)
	}
	sessionKey, err := crypto.DeriveKey(secret, crypto.PairSetupEncryptSalt, crypto.PairSetupEncryptInfo)
	if err != nil {
		return abort(tlv8.StateM4, tlv8.ErrorUnknown)
	}
	rec.sharedSecret = secret
	rec.sessionKey = sessionKey

	if !rec.exchange.VerifyProof(proof) {
		return failure(tlv8.StateM4, tlv8.ErrorAuthentication)
	}
	response, err := rec.exchange.Respond(proof)
	if err != nil {
		return abort(tlv8.StateM4, tlv8.ErrorUnknown)
	}
	rec.verified = true
	s.tracef("accessory proof", response)

	return success(tlv8.StateM4, field{tlv8.TypeProof, response})
}

// handleM5 decrypts and verifies the controller's long-term key and stores
// the pairing. The record is released on completion.
func (s *Setup) handleM5(owner int, in *tlv8.Set) outcome {
	rec := s.owned(owner)
	if rec == nil || !rec.verified {
		return abort(tlv8.StateM6, tlv8.ErrorUnknown)
	}
	sealed, ok := in.Lookup(tlv8.TypeEncryptedData)
	if !ok || len(sealed) < crypto.TagSize {
		return abort(tlv8.StateM6, tlv8.ErrorUnknown)
	}

	plain, err := crypto.Open(rec.sessionKey, crypto.NoncePairSetupM5, sealed)
	if errors.Is(err, crypto.ErrAuthentication) {
		return failure(tlv8.StateM6, tlv8.ErrorAuthentication)
	}
	if err != nil {
		return abort(tlv8.StateM6, tlv8.ErrorUnknown)
	}

	sub := tlv8.Parse(plain, maxInnerItems)
	identifier, ok := sub.Lookup(tlv8.TypeIdentifier)
	if !ok {
		return abort(tlv8.StateM6, tlv8.ErrorUnknown)
	}
	ltpk, ok := sub.Lookup(tlv8.TypePublicKey)
	if !ok {
		return abort(tlv8.StateM6, tlv8.ErrorUnknown)
	}
	signature, ok := sub.Lookup(tlv8.TypeSignature)
	if !ok {
		return abort(tlv8.StateM6, tlv8.ErrorUnknown)
	}

	controllerX, err := crypto.DeriveKey(rec.sharedSecret, crypto.PairSetupControllerSignSalt, crypto.PairSetupControllerSignInfo)
	if err != nil {
		return abort(tlv8.StateM6, tlv8.ErrorUnknown)
	}
	if !crypto.VerifySignature(ltpk, crypto.SignedInfo(controllerX[:], identifier, ltpk), signature) {
		return abort(tlv8.StateM6, tlv8.ErrorAuthentication)
	}

	var items []field
	if s.identity != nil {
		sealed, err := s.accessoryInfo(rec)
		if err != nil {
			s.warnf("failed to build M6: %v", err)
			return abort(tlv8.StateM6, tlv8.ErrorUnknown)
		}
		items = append(items, field{tlv8.TypeEncryptedData, sealed})
	}

	if !s.store.Add(identifier, ltpk, tlv8.PermissionAdmin) {
		return abort(tlv8.StateM6, tlv8.ErrorMaxPeers)
	}
	s.infof("slot %d: paired controller %s", owner, identifier)

	o := success(tlv8.StateM6, items...)
	o.teardown = true
	return o
}

// accessoryInfo returns the sealed M6 sub-TLV carrying the accessory
// identifier, long-term public key and signature.
func (s *Setup) accessoryInfo(rec *record) ([]byte, error) {
	accessoryX, err := crypto.DeriveKey(rec.sharedSecret, crypto.PairSetupAccessorySignSalt, crypto.PairSetupAccessorySignInfo)
	if err != nil {
		return nil, err
	}
	id := []byte(s.identity.DeviceID())
	ltpk := []byte(s.identity.PublicKey())
	signature := s.identity.Sign(crypto.SignedInfo(accessoryX[:], id, ltpk))

	b := tlv8.NewBuilder(make([]byte, 3*tlv8.MaxValueLen))
	if err := b.Add(tlv8.TypeIdentifier, id); err != nil {
		return nil, err
	}
	if err := b.Add(tlv8.TypePublicKey, ltpk); err != nil {
		return nil, err
	}
	if err := b.Add(tlv8.TypeSignature, signature); err != nil {
		return nil, err
	}
	return crypto.Seal(rec.sessionKey, crypto.NoncePairSetupM6, b.Bytes())
}

func (s *Setup) tracef(label string, b []byte) {
	if s.log != nil {
		s.log.Tracef("%s: % x", label, b)
	}
}

func (s *Setup) debugf(format string, args ...interface{}) {
	if s.log != nil {
		s.log.Debugf(format, args...)
	}
}

func (s *Setup) infof(format string, args ...interface{}) {
	if s.log != nil {
		s.log.Infof(format, args...)
	}
}

func (s *Setup) warnf(format string, args ...interface{}) {
	if s.log != nil {
		s.log.Warnf(format, args...)
	}
}
