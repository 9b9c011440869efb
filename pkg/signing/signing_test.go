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

package signing

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/veraison/go-cose"
)

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		name    string
		want    cose.Algorithm
		wantErr bool
	}{
		{"ES256", cose.AlgorithmES256, false},
		{"ES384", cose.AlgorithmES384, false},
		{"ES512", cose.AlgorithmES512, false},
		{"PS256", cose.AlgorithmPS256, false},
		{"PS384", cose.AlgorithmPS384, false},
		{"PS512", cose.AlgorithmPS512, false},
		{"EdDSA", cose.AlgorithmEdDSA, false},
		{"RS256", 0, true},
		{"es256", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAlgorithm(tt.name)
			if tt.wantErr {
				var uae *UnsupportedAlgorithmError
				if !errors.As(err, &uae) {
					t.Errorf("ParseAlgorithm(%q) error = %v, want *UnsupportedAlgorithmError", tt.name, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAlgorithm(%q) failed: %v", tt.name, err)
			}
			if got != tt.want {
				t.Errorf("ParseAlgorithm(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestAlgorithmForKey(t *testing.T) {
	p256, _ := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	p384, _ := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	p521, _ := ecdsa.GenerateKey(elliptic.P521(), rand.Reader)
	rsaKey, _ := rsa.GenerateKey(rand.Reader, 2048)
	edPub, _, _ := ed25519.GenerateKey(rand.Reader)

	tests := []struct {
		name string
		pub  crypto.PublicKey
		want cose.Algorithm
	}{
		{"P-256", &p256.PublicKey, cose.AlgorithmES256},
		{"P-384", &p384.PublicKey, cose.AlgorithmES384},
		{"P-521", &p521.PublicKey, cose.AlgorithmES512},
		{"RSA", &rsaKey.PublicKey, cose.AlgorithmPS384},
		{"Ed25519", edPub, cose.AlgorithmEdDSA},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AlgorithmForKey(tt.pub)
			if err != nil {
				t.Fatalf("AlgorithmForKey() failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("AlgorithmForKey() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheckKeyAlgorithm(t *testing.T) {
	p256, _ := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	rsaKey, _ := rsa.GenerateKey(rand.Reader, 2048)
	edPub, _, _ := ed25519.GenerateKey(rand.Reader)

	tests := []struct {
		name    string
		pub     crypto.PublicKey
		alg     cose.Algorithm
		wantErr bool
	}{
		{"ES256 with P-256", &p256.PublicKey, cose.AlgorithmES256, false},
		{"ES384 with P-256", &p256.PublicKey, cose.AlgorithmES384, true},
		{"PS256 with RSA", &rsaKey.PublicKey, cose.AlgorithmPS256, false},
		{"PS256 with P-256", &p256.PublicKey, cose.AlgorithmPS256, true},
		{"EdDSA with Ed25519", edPub, cose.AlgorithmEdDSA, false},
		{"EdDSA with RSA", &rsaKey.PublicKey, cose.AlgorithmEdDSA, true},
		{"ES256 with Ed25519", edPub, cose.AlgorithmES256, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckKeyAlgorithm(tt.pub, tt.alg)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckKeyAlgorithm() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var uae *UnsupportedAlgorithmError
				if !errors.As(err, &uae) {
					t.Errorf("CheckKeyAlgorithm() error type = %T, want *UnsupportedAlgorithmError", err)
				}
			}
		})
	}
}

func TestNewSignerInfersAlgorithm(t *testing.T) {
	key, _ := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	signer, err := NewSigner(key, AdHocConfig{Issuer: "iss", KeyID: "#k1"})
	if err != nil {
		t.Fatalf("NewSigner() failed: %v", err)
	}
	if signer.Algorithm != cose.AlgorithmES384 {
		t.Errorf("algorithm = %v, want ES384", signer.Algorithm)
	}
	if signer.Issuer != "iss" || signer.KeyID != "#k1" {
		t.Errorf("identity = %q/%q, want iss/#k1", signer.Issuer, signer.KeyID)
	}
}

func TestNewSignerRejectsMismatchedAlgorithm(t *testing.T) {
	key, _ := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	_, err := NewSigner(key, AdHocConfig{Algorithm: "PS384"})
	var uae *UnsupportedAlgorithmError
	if !errors.As(err, &uae) {
		t.Errorf("NewSigner() error = %v, want *UnsupportedAlgorithmError", err)
	}
}

func writeKeyPEM(t *testing.T, key crypto.Signer) string {
	t.Helper()
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "key.pem")
	data := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadPrivateKey(t *testing.T) {
	ecKey, _ := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	_, edKey, _ := ed25519.GenerateKey(rand.Reader)

	for _, tt := range []struct {
		name string
		key  crypto.Signer
	}{
		{"ecdsa", ecKey},
		{"ed25519", edKey},
	} {
		t.Run(tt.name, func(t *testing.T) {
			path := writeKeyPEM(t, tt.key)
			loaded, err := LoadPrivateKey(path, "")
			if err != nil {
				t.Fatalf("LoadPrivateKey() failed: %v", err)
			}
			if _, err := AlgorithmForKey(loaded.Public()); err != nil {
				t.Errorf("loaded key has unexpected type: %v", err)
			}
		})
	}
}

func TestLoadPrivateKeyMissingFile(t *testing.T) {
	_, err := LoadPrivateKey(filepath.Join(t.TempDir(), "missing.pem"), "")
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadPrivateKey() error = %v, want wrapped os.ErrNotExist", err)
	}
}

func TestLoadPrivateKeyRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key.pem")
	if err := os.WriteFile(path, []byte("not a pem file"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadPrivateKey(path, ""); err == nil {
		t.Error("LoadPrivateKey() on garbage succeeded, want error")
	}
}

func TestLoadPublicKey(t *testing.T) {
	key, _ := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "pub.pem")
	data := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	pub, err := LoadPublicKey(path)
	if err != nil {
		t.Fatalf("LoadPublicKey() failed: %v", err)
	}
	if _, ok := pub.(*ecdsa.PublicKey); !ok {
		t.Errorf("LoadPublicKey() = %T, want *ecdsa.PublicKey", pub)
	}
}
