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

package options

import (
	"github.com/spf13/cobra"

	"github.com/kapilvgit/contract-ledger/pkg/signing/contract"
)

// SignOptions holds the flags of the `sign` command.
type SignOptions struct {
	ContractPath string   // --contract CONTRACT (required)
	KeyPath      string   // --key KEY (required)
	OutputPath   string   // --out OUT (required)
	Password     string   // --password
	DIDDocPath   string   // --did-doc
	Issuer       string   // --issuer
	Algorithm    string   // --alg
	ContentType  string   // --content-type (required)
	KeyID        string   // --kid
	Feed         string   // --feed
	RegInfo      []string // --registration-info (repeatable)
	AddSignature bool     // --add-signature
}

// AddFlags adds signing flags to the cobra command.
func (o *SignOptions) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.ContractPath, "contract", "", "Path to the contract file. [required]")
	_ = cmd.MarkFlagRequired("contract")
	cmd.Flags().StringVar(&o.KeyPath, "key", "", "Path to the PEM-encoded private key. [required]")
	_ = cmd.MarkFlagRequired("key")
	cmd.Flags().StringVar(&o.OutputPath, "out", "", "Output path for the signed envelope. [required]")
	_ = cmd.MarkFlagRequired("out")
	cmd.Flags().StringVar(&o.Password, "password", "", "Password for the key encryption, if any.")

	// Signing with an existing DID document.
	cmd.Flags().StringVar(&o.DIDDocPath, "did-doc", "", "Path to a DID document to resolve the signer identity from.")

	// Ad-hoc signing, without any on-disk document.
	cmd.Flags().StringVar(&o.Issuer, "issuer", "", "Issuer stored in the envelope header.")
	cmd.Flags().StringVar(&o.Algorithm, "alg", "", "Signing algorithm to use (ES256, ES384, ES512, PS256, PS384, PS512, EdDSA). Inferred from the key when unset.")

	cmd.Flags().StringVar(&o.ContentType, "content-type", "", "Content type of the contract. [required]")
	_ = cmd.MarkFlagRequired("content-type")
	cmd.Flags().StringVar(&o.KeyID, "kid", "", "Key id (\"kid\" field) to use if the DID document has multiple keys.")
	cmd.Flags().StringVar(&o.Feed, "feed", "", "Optional \"feed\" stored in the envelope header.")
	cmd.Flags().StringArrayVar(&o.RegInfo, "registration-info", nil,
		"Registration information stored in the envelope header, as [type:]name=content. "+
			"If content has the form @file, the data is read from that file instead. May be repeated.")
	cmd.Flags().BoolVar(&o.AddSignature, "add-signature", false, "Add a signature to an existing signed envelope.")
}

// ToSignerOptions converts CLI options to the signing flow's options.
func (o *SignOptions) ToSignerOptions() contract.SignerOptions {
	return contract.SignerOptions{
		ContractPath:     o.ContractPath,
		KeyPath:          o.KeyPath,
		OutputPath:       o.OutputPath,
		Password:         o.Password,
		DIDDocPath:       o.DIDDocPath,
		Issuer:           o.Issuer,
		Algorithm:        o.Algorithm,
		ContentType:      o.ContentType,
		KeyID:            o.KeyID,
		Feed:             o.Feed,
		RegistrationInfo: o.RegInfo,
		AddSignature:     o.AddSignature,
	}
}
