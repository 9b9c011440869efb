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

package envelope

import (
	"crypto"
	"fmt"

	"github.com/veraison/go-cose"

	"github.com/kapilvgit/contract-ledger/pkg/signing"
)

// Verify checks whether the holder of pub signed the envelope.
//
// The envelope may carry signatures from several participants, so
// verification succeeds as soon as one signature verifies with the
// key. Signatures whose algorithm does not fit the key type are
// skipped; if no signature fits at all, or every fitting one fails,
// an error is returned.
func (e *Envelope) Verify(pub crypto.PublicKey) error {
	compatible := 0
	var lastErr error
	for i, sig := range e.Signatures {
		if err := signing.CheckKeyAlgorithm(pub, sig.Algorithm); err != nil {
			continue
		}
		compatible++

		toBeSigned, err := sigStructure(e.bodyProtected, sig.protected, e.payload)
		if err != nil {
			return err
		}
		verifier, err := cose.NewVerifier(sig.Algorithm, pub)
		if err != nil {
			return fmt.Errorf("failed to create %s verifier: %w", sig.Algorithm, err)
		}
		if err := verifier.Verify(toBeSigned, sig.signature); err != nil {
			lastErr = fmt.Errorf("signature %d (%s) verification failed: %w", i, sig.Algorithm, err)
			continue
		}
		return nil
	}

	if compatible == 0 {
		return fmt.Errorf("no signature matches the provided key type")
	}
	return lastErr
}

// VerifyBytes decodes data as a signed contract envelope and verifies
// it against the public key, returning the decoded envelope on success.
func VerifyBytes(data []byte, pub crypto.PublicKey) (*Envelope, error) {
	env, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if err := env.Verify(pub); err != nil {
		return nil, err
	}
	return env, nil
}
