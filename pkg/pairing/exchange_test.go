package pairing

import (
	"bytes"
	"crypto/ed25519"
	"testing"

	"github.com/backkem/hap/pkg/crypto"
	"github.com/backkem/hap/pkg/tlv8"
)

// TestPairSetup drives a full exchange with a real SRP controller,
// including a retried M3 after a wrong proof.
func TestPairSetup(t *testing.T) {
	const code = "031-45-154"
	const owner = 4

	store := newMemStore(16)
	identity := newTestIdentity(t)
	s, err := NewSetup(SetupConfig{
		SetupCode: code,
		Store:     store,
		Identity:  identity,
	})
	if err != nil {
		t.Fatalf("NewSetup() error = %v", err)
	}

	// M1 -> M2
	resp := exchange(t, s, owner, m1(t))
	expectState(t, resp, tlv8.StateM2)
	accessoryPub, _ := resp.Lookup(tlv8.TypePublicKey)
	salt, _ := resp.Lookup(tlv8.TypeSalt)

	client, err := crypto.NewSRPClient(code)
	if err != nil {
		t.Fatalf("NewSRPClient() error = %v", err)
	}
	secret, err := client.ComputeKey(salt, accessoryPub)
	if err != nil {
		t.Fatalf("ComputeKey() error = %v", err)
	}
	proof, err := client.Proof()
	if err != nil {
		t.Fatalf("Proof() error = %v", err)
	}

	// M3 with a wrong proof keeps the record.
	bad := request(t,
		intItem(tlv8.TypeState, uint64(tlv8.StateM3)),
		item{tlv8.TypePublicKey, client.PublicKey()},
		item{tlv8.TypeProof, bytes.Repeat([]byte{0x01}, crypto.ProofSize)},
	)
	expectError(t, exchange(t, s, owner, bad), tlv8.StateM4, tlv8.ErrorAuthentication)

	// M3 -> M4
	resp = exchange(t, s, owner, request(t,
		intItem(tlv8.TypeState, uint64(tlv8.StateM3)),
		item{tlv8.TypePublicKey, client.PublicKey()},
		item{tlv8.TypeProof, proof},
	))
	expectState(t, resp, tlv8.StateM4)
	accessoryProof, _ := resp.Lookup(tlv8.TypeProof)
	if !client.VerifyAccessoryProof(accessoryProof) {
		t.Fatal("accessory proof does not verify")
	}

	// M5 -> M6
	controller := newControllerKey(t)
	controllerID := []byte("D8B1F9A0-8C3E-4B7A-9E55-0F6B2C4D1E21")
	resp = exchange(t, s, owner, m5(t, secret, controllerID, controller))
	expectState(t, resp, tlv8.StateM6)

	if store.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", store.Count())
	}
	if got := store.pairings[string(controllerID)]; !bytes.Equal(got, controller.Public().(ed25519.PublicKey)) {
		t.Error("stored key does not match controller key")
	}
	if s.InProgress() {
		t.Error("InProgress() = true after M6")
	}

	// The accessory identity comes back sealed in M6.
	sealed, ok := resp.Lookup(tlv8.TypeEncryptedData)
	if !ok {
		t.Fatal("M6 has no EncryptedData")
	}
	key, _ := crypto.DeriveKey(secret, crypto.PairSetupEncryptSalt, crypto.PairSetupEncryptInfo)
	plain, err := crypto.Open(key, crypto.NoncePairSetupM6, sealed)
	if err != nil {
		t.Fatalf("Open(M6) error = %v", err)
	}
	sub := tlv8.Parse(plain, tlv8.DefaultMaxItems)
	id, _ := sub.Lookup(tlv8.TypeIdentifier)
	ltpk, _ := sub.Lookup(tlv8.TypePublicKey)
	sig, _ := sub.Lookup(tlv8.TypeSignature)
	if string(id) != identity.DeviceID() {
		t.Errorf("M6 Identifier = %q, want %q", id, identity.DeviceID())
	}
	accessoryX, _ := crypto.DeriveKey(secret, crypto.PairSetupAccessorySignSalt, crypto.PairSetupAccessorySignInfo)
	if !crypto.VerifySignature(ltpk, crypto.SignedInfo(accessoryX[:], id, ltpk), sig) {
		t.Error("M6 signature does not verify")
	}
}
