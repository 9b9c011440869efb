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

// Package signing holds the signer identity used to produce contract
// envelopes: a private key plus the issuer, key id, and COSE algorithm
// recorded in the envelope headers.
//
// A signer is built from exactly one of two configurations: an ad-hoc
// one where the caller supplies issuer/key-id/algorithm directly, or a
// DID document from which identity and algorithm are resolved. The two
// are distinct types so a conflicting combination cannot be expressed;
// the CLI layer still reports ErrConfigConflict when both sets of flags
// are passed, before any file is touched.
package signing

import (
	"crypto"
	"errors"
	"fmt"

	"github.com/veraison/go-cose"
)

// ErrConfigConflict is returned when a DID document is combined with an
// explicit issuer or algorithm.
var ErrConfigConflict = errors.New("issuer/alg and DID document are mutually exclusive")

// Signer carries the private key and the identity fields folded into
// envelope headers. It lives for a single signing operation and is
// never reused across invocations.
type Signer struct {
	// Key is the private signing key.
	Key crypto.Signer
	// Issuer is recorded in the envelope body header. May be empty.
	Issuer string
	// KeyID is recorded in the signature protected header. May be empty.
	KeyID string
	// Algorithm is the COSE signing algorithm.
	Algorithm cose.Algorithm
}

// AdHocConfig configures a signer built directly from caller-supplied
// fields, without any on-disk identity document.
type AdHocConfig struct {
	// Issuer to store in the envelope header. Optional.
	Issuer string
	// KeyID to store in the signature header. Optional.
	KeyID string
	// Algorithm name (ES256, PS384, EdDSA, ...). Optional; inferred
	// from the key type when empty.
	Algorithm string
}

// DIDConfig configures a signer resolved from a DID document.
type DIDConfig struct {
	// DocPath is the path to the DID document JSON file.
	DocPath string
	// KeyID selects a verification method when the document has more
	// than one. Optional.
	KeyID string
}

// NewSigner builds a signer from a loaded private key and ad-hoc
// configuration. The algorithm is validated against the key type;
// when unset it is inferred from the key.
func NewSigner(key crypto.Signer, cfg AdHocConfig) (*Signer, error) {
	var alg cose.Algorithm
	var err error
	if cfg.Algorithm == "" {
		alg, err = AlgorithmForKey(key.Public())
	} else {
		alg, err = ParseAlgorithm(cfg.Algorithm)
		if err == nil {
			err = CheckKeyAlgorithm(key.Public(), alg)
		}
	}
	if err != nil {
		return nil, err
	}

	return &Signer{
		Key:       key,
		Issuer:    cfg.Issuer,
		KeyID:     cfg.KeyID,
		Algorithm: alg,
	}, nil
}

// COSESigner returns the go-cose signing primitive for the signer's
// key and algorithm.
func (s *Signer) COSESigner() (cose.Signer, error) {
	signer, err := cose.NewSigner(s.Algorithm, s.Key)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s signer: %w", s.Algorithm, err)
	}
	return signer, nil
}
