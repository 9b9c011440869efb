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

package cli

import (
	"github.com/spf13/cobra"

	"github.com/kapilvgit/contract-ledger/cmd/contract-ledger/cli/options"
	"github.com/kapilvgit/contract-ledger/pkg/signing/contract"
)

// Sign builds the `sign` subcommand.
func Sign() *cobra.Command {
	opts := &options.SignOptions{}

	cmd := &cobra.Command{
		Use:   "sign [OPTIONS]",
		Short: "Sign a contract.",
		Long: `Sign a contract.

    Produces a signed envelope at the path given by --out, wrapping the
    contract at --contract and signed with the PEM private key at --key.

    The signer identity comes from one of two places. With --did-doc,
    the issuer, key id, and algorithm are resolved from the given DID
    document; --issuer and --alg may not be combined with it. Without a
    DID document, --issuer, --kid, and --alg are stored as given (the
    algorithm defaults to the one matching the key type).

    --registration-info entries of the form [type:]name=content are
    stored in the envelope header; a content of @file reads the value
    from that file. With --add-signature, the --contract file must be
    an existing signed envelope and an additional signature is appended
    to it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			signer, err := contract.NewSigner(opts.ToSignerOptions(), ro.NewLogger())
			if err != nil {
				return err
			}
			result, err := signer.Sign(cmd.Context())
			if err != nil {
				return err
			}
			cmd.Printf("Writing %s\n", result.OutputPath)
			return nil
		},
	}

	opts.AddFlags(cmd)
	return cmd
}
