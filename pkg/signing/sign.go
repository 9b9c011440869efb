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

import "context"

// Result represents the outcome of a signing operation.
type Result struct {
	// OutputPath is the path the signed envelope was written to.
	OutputPath string
	// Message is a human-readable summary.
	Message string
}

// ContractSigner performs complete contract signing.
//
// This is a high-level interface that orchestrates the full flow:
// loading the key, building the signer identity, resolving registration
// info, signing the contract, and writing the envelope.
type ContractSigner interface {
	Sign(ctx context.Context) (Result, error)
}
