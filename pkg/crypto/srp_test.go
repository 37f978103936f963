package crypto

import (
	"bytes"
	"testing"
)

func TestSRPExchange(t *testing.T) {
	const code = "031-45-154"

	server, err := NewSRPServer(code)
	if err != nil {
		t.Fatalf("NewSRPServer() error = %v", err)
	}
	if len(server.Salt()) != SaltSize {
		t.Errorf("len(Salt()) = %d, want %d", len(server.Salt()), SaltSize)
	}
	if n := len(server.PublicKey()); n == 0 || n > PublicKeySize {
		t.Errorf("len(PublicKey()) = %d, want 1..%d", n, PublicKeySize)
	}

	client, err := NewSRPClient(code)
	if err != nil {
		t.Fatalf("NewSRPClient() error = %v", err)
	}
	clientKey, err := client.ComputeKey(server.Salt(), server.PublicKey())
	if err != nil {
		t.Fatalf("client ComputeKey() error = %v", err)
	}
	proof, err := client.Proof()
	if err != nil {
		t.Fatalf("Proof() error = %v", err)
	}

	serverKey, err := server.ComputeKey(client.PublicKey())
	if err != nil {
		t.Fatalf("server ComputeKey() error = %v", err)
	}
	if !bytes.Equal(clientKey, serverKey) {
		t.Fatal("shared keys differ")
	}
	if !server.VerifyProof(proof) {
		t.Fatal("VerifyProof() = false for valid proof")
	}

	response, err := server.Respond(proof)
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if len(response) != ProofSize {
		t.Errorf("len(Respond()) = %d, want %d", len(response), ProofSize)
	}
	if !client.VerifyAccessoryProof(response) {
		t.Error("VerifyAccessoryProof() = false")
	}
}

func TestSRPWrongSetupCode(t *testing.T) {
	server, err := NewSRPServer("031-45-154")
	if err != nil {
		t.Fatalf("NewSRPServer() error = %v", err)
	}
	client, err := NewSRPClient("111-22-333")
	if err != nil {
		t.Fatalf("NewSRPClient() error = %v", err)
	}
	if _, err := client.ComputeKey(server.Salt(), server.PublicKey()); err != nil {
		t.Fatalf("client ComputeKey() error = %v", err)
	}
	proof, _ := client.Proof()

	if _, err := server.ComputeKey(client.PublicKey()); err != nil {
		t.Fatalf("server ComputeKey() error = %v", err)
	}
	if server.VerifyProof(proof) {
		t.Error("VerifyProof() = true for wrong setup code")
	}
}

func TestSRPServer_NotKeyed(t *testing.T) {
	server, err := NewSRPServer("031-45-154")
	if err != nil {
		t.Fatalf("NewSRPServer() error = %v", err)
	}
	if server.VerifyProof(make([]byte, ProofSize)) {
		t.Error("VerifyProof() before ComputeKey = true")
	}
	if _, err := server.Respond(make([]byte, ProofSize)); err != ErrSRPNotKeyed {
		t.Errorf("Respond() error = %v, want ErrSRPNotKeyed", err)
	}
}

func TestSRPClient_ProofBeforeKey(t *testing.T) {
	client, err := NewSRPClient("031-45-154")
	if err != nil {
		t.Fatalf("NewSRPClient() error = %v", err)
	}
	if _, err := client.Proof(); err != ErrSRPNotKeyed {
		t.Errorf("Proof() error = %v, want ErrSRPNotKeyed", err)
	}
}
