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
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/kapilvgit/contract-ledger/cmd/contract-ledger/cli/options"
	"github.com/kapilvgit/contract-ledger/pkg/verify"
)

// Verify builds the `verify` subcommand.
func Verify() *cobra.Command {
	opts := &options.VerifyOptions{}

	cmd := &cobra.Command{
		Use:   "verify [OPTIONS]",
		Short: "Verify a signed contract envelope.",
		Long: `Verify a signed contract envelope.

    Decodes the envelope at --envelope and checks its signatures
    against the PEM public key at --public-key. On success the header
    fields are printed; --payload-out additionally extracts the
    contract payload to a file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			verifier, err := verify.NewVerifier(opts.ToVerifierOptions(), ro.NewLogger())
			if err != nil {
				return err
			}
			env, err := verifier.Verify(cmd.Context())
			if err != nil {
				return err
			}

			cmd.Printf("Signature verified (%d signature(s) in envelope)\n", len(env.Signatures))
			cmd.Printf("  content type: %s\n", env.ContentType)
			if env.Issuer != "" {
				cmd.Printf("  issuer:       %s\n", env.Issuer)
			}
			if env.Feed != "" {
				cmd.Printf("  feed:         %s\n", env.Feed)
			}
			for _, sig := range env.Signatures {
				if sig.KeyID != "" {
					cmd.Printf("  signature:    %s (kid %s)\n", sig.Algorithm, sig.KeyID)
				} else {
					cmd.Printf("  signature:    %s\n", sig.Algorithm)
				}
			}
			if len(env.RegistrationInfo) > 0 {
				names := make([]string, 0, len(env.RegistrationInfo))
				for name := range env.RegistrationInfo {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					cmd.Printf("  registration: %s=%v\n", name, env.RegistrationInfo[name])
				}
			}

			if opts.PayloadOut != "" {
				if err := os.WriteFile(opts.PayloadOut, env.Payload(), 0o644); err != nil {
					return fmt.Errorf("failed to write payload: %w", err)
				}
				cmd.Printf("Writing %s\n", opts.PayloadOut)
			}
			return nil
		},
	}

	opts.AddFlags(cmd)
	return cmd
}
