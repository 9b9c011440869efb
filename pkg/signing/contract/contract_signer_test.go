// Copyright 2025 The Contract Ledger Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package contract

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lestrrat-go/jwx/v2/jwk"

	"github.com/kapilvgit/contract-ledger/pkg/envelope"
	"github.com/kapilvgit/contract-ledger/pkg/registration"
	"github.com/kapilvgit/contract-ledger/pkg/signing"
)

type fixture struct {
	dir          string
	key          *ecdsa.PrivateKey
	keyPath      string
	contractPath string
	contract     []byte
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatal(err)
	}
	keyPath := filepath.Join(dir, "key.pem")
	if err := os.WriteFile(keyPath, pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), 0o600); err != nil {
		t.Fatal(err)
	}

	contract := []byte(`{"parties":["alice","bob"]}`)
	contractPath := filepath.Join(dir, "contract.json")
	if err := os.WriteFile(contractPath, contract, 0o600); err != nil {
		t.Fatal(err)
	}

	return &fixture{dir: dir, key: key, keyPath: keyPath, contractPath: contractPath, contract: contract}
}

func TestSignCreateMode(t *testing.T) {
	f := newFixture(t)
	outPath := filepath.Join(f.dir, "contract.cose")

	signer, err := NewSigner(SignerOptions{
		ContractPath: f.contractPath,
		KeyPath:      f.keyPath,
		OutputPath:   outPath,
		Issuer:       "did:web:example.com",
		KeyID:        "#key-1",
		ContentType:  "application/json",
		Feed:         "contracts/acme",
		RegistrationInfo: []string{
			"text:org=Contoso",
			"int:ver=7",
			"text:org=Fabrikam", // later entry wins
		},
	}, nil)
	if err != nil {
		t.Fatalf("NewSigner() failed: %v", err)
	}

	result, err := signer.Sign(context.Background())
	if err != nil {
		t.Fatalf("Sign() failed: %v", err)
	}
	if result.OutputPath != outPath {
		t.Errorf("result output path = %q, want %q", result.OutputPath, outPath)
	}

	signed, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	env, err := envelope.VerifyBytes(signed, &f.key.PublicKey)
	if err != nil {
		t.Fatalf("output does not verify: %v", err)
	}
	if !bytes.Equal(env.Payload(), f.contract) {
		t.Errorf("payload = %q, want %q", env.Payload(), f.contract)
	}
	if env.Issuer != "did:web:example.com" || env.Feed != "contracts/acme" {
		t.Errorf("header issuer=%q feed=%q", env.Issuer, env.Feed)
	}
	if env.RegistrationInfo["org"] != registration.Text("Fabrikam") {
		t.Errorf("registration org = %v, want Fabrikam (later entry wins)", env.RegistrationInfo["org"])
	}
	if env.RegistrationInfo["ver"] != registration.Int(7) {
		t.Errorf("registration ver = %v, want 7", env.RegistrationInfo["ver"])
	}
}

func TestConflictDetectedBeforeAnyFileAccess(t *testing.T) {
	// All paths are bogus: if the conflict check ran after file
	// validation, we would get a file error instead.
	_, err := NewSigner(SignerOptions{
		ContractPath: "/does/not/exist/contract",
		KeyPath:      "/does/not/exist/key",
		OutputPath:   "/does/not/exist/out",
		DIDDocPath:   "/does/not/exist/did.json",
		Issuer:       "did:web:example.com",
		ContentType:  "application/json",
	}, nil)
	if !errors.Is(err, signing.ErrConfigConflict) {
		t.Errorf("NewSigner() error = %v, want ErrConfigConflict", err)
	}

	_, err = NewSigner(SignerOptions{
		ContractPath: "/does/not/exist/contract",
		KeyPath:      "/does/not/exist/key",
		OutputPath:   "/does/not/exist/out",
		DIDDocPath:   "/does/not/exist/did.json",
		Algorithm:    "ES256",
		ContentType:  "application/json",
	}, nil)
	if !errors.Is(err, signing.ErrConfigConflict) {
		t.Errorf("NewSigner() with --alg error = %v, want ErrConfigConflict", err)
	}
}

func TestMalformedRegistrationInfoRejectedEarly(t *testing.T) {
	f := newFixture(t)
	_, err := NewSigner(SignerOptions{
		ContractPath:     f.contractPath,
		KeyPath:          f.keyPath,
		OutputPath:       filepath.Join(f.dir, "out.cose"),
		ContentType:      "application/json",
		RegistrationInfo: []string{"no-equals-sign"},
	}, nil)
	var fe *registration.FormatError
	if !errors.As(err, &fe) {
		t.Errorf("NewSigner() error = %v, want *registration.FormatError", err)
	}
}

func TestSignAppendMode(t *testing.T) {
	f := newFixture(t)
	firstOut := filepath.Join(f.dir, "contract.cose")

	first, err := NewSigner(SignerOptions{
		ContractPath: f.contractPath,
		KeyPath:      f.keyPath,
		OutputPath:   firstOut,
		Issuer:       "did:web:example.com",
		ContentType:  "application/json",
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := first.Sign(context.Background()); err != nil {
		t.Fatal(err)
	}

	// A second party counter-signs the existing envelope.
	second := newFixture(t)
	secondOut := filepath.Join(second.dir, "contract.2.cose")
	appender, err := NewSigner(SignerOptions{
		ContractPath: firstOut,
		KeyPath:      second.keyPath,
		OutputPath:   secondOut,
		ContentType:  "application/json",
		AddSignature: true,
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := appender.Sign(context.Background()); err != nil {
		t.Fatalf("append Sign() failed: %v", err)
	}

	signed, err := os.ReadFile(secondOut)
	if err != nil {
		t.Fatal(err)
	}
	env, err := envelope.Decode(signed)
	if err != nil {
		t.Fatal(err)
	}
	if len(env.Signatures) != 2 {
		t.Fatalf("got %d signatures, want 2", len(env.Signatures))
	}
	if err := env.Verify(&f.key.PublicKey); err != nil {
		t.Errorf("original signature does not verify: %v", err)
	}
	if err := env.Verify(&second.key.PublicKey); err != nil {
		t.Errorf("appended signature does not verify: %v", err)
	}
	if env.Issuer != "did:web:example.com" {
		t.Errorf("issuer = %q, want original issuer preserved", env.Issuer)
	}
}

func TestAppendModeOnInvalidEnvelopeWritesNothing(t *testing.T) {
	f := newFixture(t)
	outPath := filepath.Join(f.dir, "out.cose")

	// The contract file holds plain bytes, not an envelope.
	signer, err := NewSigner(SignerOptions{
		ContractPath: f.contractPath,
		KeyPath:      f.keyPath,
		OutputPath:   outPath,
		ContentType:  "application/json",
		AddSignature: true,
	}, nil)
	if err != nil {
		t.Fatal(err)
	}

	_, err = signer.Sign(context.Background())
	var de *envelope.DecodeError
	if !errors.As(err, &de) {
		t.Errorf("Sign() error = %v, want *envelope.DecodeError", err)
	}
	if _, statErr := os.Stat(outPath); !os.IsNotExist(statErr) {
		t.Error("output file was written despite the failure")
	}
}

func TestSignWithDIDDocument(t *testing.T) {
	f := newFixture(t)

	jwkKey, err := jwk.FromRaw(&f.key.PublicKey)
	if err != nil {
		t.Fatal(err)
	}
	jwkJSON, err := json.Marshal(jwkKey)
	if err != nil {
		t.Fatal(err)
	}
	doc := map[string]interface{}{
		"id": "did:web:example.com",
		"verificationMethod": []map[string]interface{}{{
			"id":           "did:web:example.com#key-1",
			"type":         "JsonWebKey2020",
			"controller":   "did:web:example.com",
			"publicKeyJwk": json.RawMessage(jwkJSON),
		}},
	}
	docJSON, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	didPath := filepath.Join(f.dir, "did.json")
	if err := os.WriteFile(didPath, docJSON, 0o600); err != nil {
		t.Fatal(err)
	}

	outPath := filepath.Join(f.dir, "contract.cose")
	signer, err := NewSigner(SignerOptions{
		ContractPath: f.contractPath,
		KeyPath:      f.keyPath,
		OutputPath:   outPath,
		DIDDocPath:   didPath,
		ContentType:  "application/json",
	}, nil)
	if err != nil {
		t.Fatalf("NewSigner() failed: %v", err)
	}
	if _, err := signer.Sign(context.Background()); err != nil {
		t.Fatalf("Sign() failed: %v", err)
	}

	signed, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	env, err := envelope.VerifyBytes(signed, &f.key.PublicKey)
	if err != nil {
		t.Fatalf("output does not verify: %v", err)
	}
	if env.Issuer != "did:web:example.com" {
		t.Errorf("issuer = %q, want DID document id", env.Issuer)
	}
	if env.Signatures[0].KeyID != "#key-1" {
		t.Errorf("kid = %q, want #key-1", env.Signatures[0].KeyID)
	}
}

func TestRegistrationInfoFromFile(t *testing.T) {
	f := newFixture(t)
	blob := []byte{1, 2, 3}
	blobPath := filepath.Join(f.dir, "data.bin")
	if err := os.WriteFile(blobPath, blob, 0o600); err != nil {
		t.Fatal(err)
	}

	outPath := filepath.Join(f.dir, "contract.cose")
	signer, err := NewSigner(SignerOptions{
		ContractPath:     f.contractPath,
		KeyPath:          f.keyPath,
		OutputPath:       outPath,
		ContentType:      "application/json",
		RegistrationInfo: []string{"bytes:blob=@" + blobPath},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := signer.Sign(context.Background()); err != nil {
		t.Fatal(err)
	}

	signed, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	env, err := envelope.Decode(signed)
	if err != nil {
		t.Fatal(err)
	}
	got, ok := env.RegistrationInfo["blob"].(registration.Bytes)
	if !ok || !bytes.Equal(got, blob) {
		t.Errorf("registration blob = %v, want %v", env.RegistrationInfo["blob"], blob)
	}
}

func TestNewSignerValidatesPaths(t *testing.T) {
	f := newFixture(t)

	if _, err := NewSigner(SignerOptions{
		ContractPath: filepath.Join(f.dir, "missing"),
		KeyPath:      f.keyPath,
		OutputPath:   filepath.Join(f.dir, "out"),
		ContentType:  "application/json",
	}, nil); err == nil {
		t.Error("NewSigner() with missing contract succeeded, want error")
	}

	if _, err := NewSigner(SignerOptions{
		ContractPath: f.contractPath,
		KeyPath:      f.keyPath,
		OutputPath:   "",
		ContentType:  "application/json",
	}, nil); err == nil {
		t.Error("NewSigner() without output path succeeded, want error")
	}

	if _, err := NewSigner(SignerOptions{
		ContractPath: f.contractPath,
		KeyPath:      f.keyPath,
		OutputPath:   filepath.Join(f.dir, "out"),
	}, nil); err == nil {
		t.Error("NewSigner() without content type succeeded, want error")
	}
}
