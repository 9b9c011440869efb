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

// Package verify implements the verification flow behind the `verify`
// command: decode a signed contract envelope and check its signatures
// against a public key.
package verify

import (
	"context"
	"fmt"
	"os"

	"github.com/kapilvgit/contract-ledger/pkg/envelope"
	"github.com/kapilvgit/contract-ledger/pkg/logging"
	"github.com/kapilvgit/contract-ledger/pkg/signing"
	"github.com/kapilvgit/contract-ledger/pkg/utils"
)

// VerifierOptions configures the verification flow.
type VerifierOptions struct {
	// EnvelopePath is the signed envelope file.
	EnvelopePath string
	// PublicKeyPath is the PEM public key to verify against.
	PublicKeyPath string
}

// Verifier checks a signed contract envelope against a public key.
type Verifier struct {
	opts   VerifierOptions
	logger logging.Logger
}

// NewVerifier validates options and builds the verification flow.
func NewVerifier(opts VerifierOptions, logger logging.Logger) (*Verifier, error) {
	if err := utils.ValidateFileExists("envelope", opts.EnvelopePath); err != nil {
		return nil, err
	}
	if err := utils.ValidateFileExists("public key", opts.PublicKeyPath); err != nil {
		return nil, err
	}
	return &Verifier{opts: opts, logger: logging.EnsureLogger(logger)}, nil
}

// Verify decodes the envelope, verifies every signature that matches
// the key type, and returns the decoded envelope.
func (v *Verifier) Verify(_ context.Context) (*envelope.Envelope, error) {
	pub, err := signing.LoadPublicKey(v.opts.PublicKeyPath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(v.opts.EnvelopePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read envelope: %w", err)
	}

	env, err := envelope.VerifyBytes(data, pub)
	if err != nil {
		return nil, err
	}

	v.logger.Debug("Signature on %s verified (%d signature(s) present)", v.opts.EnvelopePath, len(env.Signatures))
	return env, nil
}
