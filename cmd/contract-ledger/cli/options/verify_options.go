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

	"github.com/kapilvgit/contract-ledger/pkg/verify"
)

// VerifyOptions holds the flags of the `verify` command.
type VerifyOptions struct {
	EnvelopePath  string // --envelope ENVELOPE (required)
	PublicKeyPath string // --public-key PUBLIC_KEY (required)
	PayloadOut    string // --payload-out
}

// AddFlags adds verification flags to the cobra command.
func (o *VerifyOptions) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.EnvelopePath, "envelope", "", "Path to the signed envelope to verify. [required]")
	_ = cmd.MarkFlagRequired("envelope")
	cmd.Flags().StringVar(&o.PublicKeyPath, "public-key", "", "Path to the PEM-encoded public key. [required]")
	_ = cmd.MarkFlagRequired("public-key")
	cmd.Flags().StringVar(&o.PayloadOut, "payload-out", "", "Write the extracted contract payload to this path after verification.")
}

// ToVerifierOptions converts CLI options to the verification flow's
// options.
func (o *VerifyOptions) ToVerifierOptions() verify.VerifierOptions {
	return verify.VerifierOptions{
		EnvelopePath:  o.EnvelopePath,
		PublicKeyPath: o.PublicKeyPath,
	}
}
