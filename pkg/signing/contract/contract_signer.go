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

// Package contract implements the end-to-end contract signing flow
// behind the `sign` command.
package contract

import (
	"context"
	"fmt"
	"os"

	"github.com/kapilvgit/contract-ledger/pkg/did"
	"github.com/kapilvgit/contract-ledger/pkg/envelope"
	"github.com/kapilvgit/contract-ledger/pkg/logging"
	"github.com/kapilvgit/contract-ledger/pkg/registration"
	"github.com/kapilvgit/contract-ledger/pkg/signing"
	"github.com/kapilvgit/contract-ledger/pkg/utils"
)

// Ensure Signer implements signing.ContractSigner at compile time.
var _ signing.ContractSigner = (*Signer)(nil)

// SignerOptions configures the signing flow. It mirrors the `sign`
// command's flags.
type SignerOptions struct {
	ContractPath string
	KeyPath      string
	OutputPath   string
	Password     string

	// Ad-hoc identity fields. Mutually exclusive with DIDDocPath.
	Issuer    string
	Algorithm string

	// DIDDocPath resolves the identity from a DID document instead.
	DIDDocPath string

	KeyID       string
	ContentType string
	Feed        string

	// RegistrationInfo holds raw `[type:]name=content` flag values.
	RegistrationInfo []string

	// AddSignature appends a signature to an existing envelope instead
	// of creating a new one.
	AddSignature bool
}

// Signer orchestrates one contract signing operation.
type Signer struct {
	opts    SignerOptions
	entries []registration.Entry
	logger  logging.Logger
}

// NewSigner validates options and builds the signing flow.
//
// The DID/ad-hoc conflict is checked first, before any path is even
// stat'ed, so a conflicting invocation never touches the filesystem.
// Registration-info strings are parsed here (pure string work); their
// content files are read later, during Sign.
func NewSigner(opts SignerOptions, logger logging.Logger) (*Signer, error) {
	if opts.DIDDocPath != "" && (opts.Issuer != "" || opts.Algorithm != "") {
		return nil, signing.ErrConfigConflict
	}

	entries := make([]registration.Entry, 0, len(opts.RegistrationInfo))
	for _, raw := range opts.RegistrationInfo {
		entry, err := registration.ParseEntry(raw)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := utils.ValidateFileExists("contract", opts.ContractPath); err != nil {
		return nil, err
	}
	if err := utils.ValidateFileExists("key", opts.KeyPath); err != nil {
		return nil, err
	}
	if err := utils.ValidateOptionalFile("DID document", opts.DIDDocPath); err != nil {
		return nil, err
	}
	if opts.OutputPath == "" {
		return nil, fmt.Errorf("output path is required")
	}
	if opts.ContentType == "" {
		return nil, fmt.Errorf("content type is required")
	}

	return &Signer{
		opts:    opts,
		entries: entries,
		logger:  logging.EnsureLogger(logger),
	}, nil
}

// Sign performs the complete signing flow.
//
// This orchestrates:
//  1. Loading the private key
//  2. Building the signer identity (ad-hoc or from the DID document)
//  3. Resolving registration-info values
//  4. Reading the contract and signing it (create or append mode)
//  5. Writing the envelope to the output path
//
// Nothing is written on failure.
func (s *Signer) Sign(_ context.Context) (signing.Result, error) {
	s.logger.Debug("Loading private key from %s", s.opts.KeyPath)
	key, err := signing.LoadPrivateKey(s.opts.KeyPath, s.opts.Password)
	if err != nil {
		return signing.Result{}, err
	}

	var signer *signing.Signer
	if s.opts.DIDDocPath != "" {
		s.logger.Debug("Resolving signer from DID document %s", s.opts.DIDDocPath)
		signer, err = did.NewSigner(key, signing.DIDConfig{
			DocPath: s.opts.DIDDocPath,
			KeyID:   s.opts.KeyID,
		})
		if err != nil {
			return signing.Result{}, err
		}
	} else {
		signer, err = signing.NewSigner(key, signing.AdHocConfig{
			Issuer:    s.opts.Issuer,
			KeyID:     s.opts.KeyID,
			Algorithm: s.opts.Algorithm,
		})
		if err != nil {
			return signing.Result{}, err
		}
	}
	s.logger.Debug("Signing as issuer=%q kid=%q alg=%s", signer.Issuer, signer.KeyID, signer.Algorithm)

	info, err := registration.Fold(s.entries)
	if err != nil {
		return signing.Result{}, err
	}

	contract, err := os.ReadFile(s.opts.ContractPath)
	if err != nil {
		return signing.Result{}, fmt.Errorf("failed to read contract: %w", err)
	}

	var signed []byte
	if s.opts.AddSignature {
		s.logger.Debug("Appending signature to existing envelope (%d bytes)", len(contract))
		signed, err = envelope.AddSignature(signer, contract)
	} else {
		s.logger.Debug("Creating envelope for %d contract bytes", len(contract))
		signed, err = envelope.Sign(signer, contract, envelope.SignOptions{
			ContentType:      s.opts.ContentType,
			Feed:             s.opts.Feed,
			RegistrationInfo: info,
		})
	}
	if err != nil {
		return signing.Result{}, err
	}

	if err := os.WriteFile(s.opts.OutputPath, signed, 0o644); err != nil {
		return signing.Result{}, fmt.Errorf("failed to write envelope: %w", err)
	}

	s.logger.Info("Writing %s", s.opts.OutputPath)
	return signing.Result{
		OutputPath: s.opts.OutputPath,
		Message:    fmt.Sprintf("wrote signed envelope to %s", s.opts.OutputPath),
	}, nil
}
