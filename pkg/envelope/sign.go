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
	"crypto/rand"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/kapilvgit/contract-ledger/pkg/registration"
	"github.com/kapilvgit/contract-ledger/pkg/signing"
)

// SignOptions carries the header fields folded into a new envelope.
type SignOptions struct {
	// ContentType of the contract payload. Required.
	ContentType string
	// Feed identifies the logical stream the contract belongs to.
	// Optional.
	Feed string
	// RegistrationInfo entries folded into the body protected header.
	// Optional.
	RegistrationInfo map[string]registration.Value
}

// Sign wraps contract bytes as the payload of a new signed envelope
// with a single signature.
func Sign(signer *signing.Signer, contract []byte, opts SignOptions) ([]byte, error) {
	bodyProtected, err := encodeBodyProtected(signer.Issuer, opts)
	if err != nil {
		return nil, err
	}

	sigEntry, err := newSignature(signer, bodyProtected, contract)
	if err != nil {
		return nil, err
	}

	return encodeEnvelope(
		mustMarshal(bodyProtected),
		mustMarshal(map[int64]interface{}{}),
		mustMarshal(contract),
		[]cbor.RawMessage{sigEntry},
	)
}

// AddSignature appends a signature computed by signer to an existing
// envelope, preserving its headers, payload, and prior signatures byte
// for byte. The issuer carried by the signer is ignored: the envelope's
// body header is immutable once created.
func AddSignature(signer *signing.Signer, existing []byte) ([]byte, error) {
	env, err := Decode(existing)
	if err != nil {
		return nil, err
	}

	sigEntry, err := newSignature(signer, env.bodyProtected, env.payload)
	if err != nil {
		return nil, err
	}

	return encodeEnvelope(
		env.rawProtected,
		env.rawUnprotected,
		env.rawPayload,
		append(env.rawSignatures, sigEntry),
	)
}

// encodeBodyProtected builds the serialized body protected header.
func encodeBodyProtected(issuer string, opts SignOptions) ([]byte, error) {
	hdr := map[int64]interface{}{
		labelContentType: opts.ContentType,
	}
	if issuer != "" {
		hdr[labelIssuer] = issuer
	}
	if opts.Feed != "" {
		hdr[labelFeed] = opts.Feed
	}
	if len(opts.RegistrationInfo) > 0 {
		info := make(map[string]interface{}, len(opts.RegistrationInfo))
		for name, value := range opts.RegistrationInfo {
			switch v := value.(type) {
			case registration.Text:
				info[name] = string(v)
			case registration.Bytes:
				info[name] = []byte(v)
			case registration.Int:
				info[name] = int64(v)
			default:
				return nil, fmt.Errorf("registration info %q has unsupported value type %T", name, value)
			}
		}
		hdr[labelRegistrationInfo] = info
	}

	data, err := encMode.Marshal(hdr)
	if err != nil {
		return nil, fmt.Errorf("failed to encode protected header: %w", err)
	}
	return data, nil
}

// newSignature computes one COSE_Signature entry over the given body
// protected bytes and payload.
func newSignature(signer *signing.Signer, bodyProtected, payload []byte) (cbor.RawMessage, error) {
	protected := map[int64]interface{}{
		labelAlgorithm: int64(signer.Algorithm),
	}
	if signer.KeyID != "" {
		protected[labelKeyID] = []byte(signer.KeyID)
	}
	protectedBytes, err := encMode.Marshal(protected)
	if err != nil {
		return nil, fmt.Errorf("failed to encode signature header: %w", err)
	}

	toBeSigned, err := sigStructure(bodyProtected, protectedBytes, payload)
	if err != nil {
		return nil, err
	}

	coseSigner, err := signer.COSESigner()
	if err != nil {
		return nil, err
	}
	signature, err := coseSigner.Sign(rand.Reader, toBeSigned)
	if err != nil {
		return nil, fmt.Errorf("signing failed: %w", err)
	}

	entry, err := encMode.Marshal([]interface{}{
		protectedBytes,
		map[int64]interface{}{},
		signature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode signature: %w", err)
	}
	return entry, nil
}

// sigStructure builds the to-be-signed Sig_structure for the COSE
// "Signature" context with no external AAD.
func sigStructure(bodyProtected, signProtected, payload []byte) ([]byte, error) {
	data, err := encMode.Marshal([]interface{}{
		"Signature",
		bodyProtected,
		signProtected,
		[]byte{},
		payload,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode Sig_structure: %w", err)
	}
	return data, nil
}

// encodeEnvelope assembles the tagged COSE_Sign structure from its raw
// pieces.
func encodeEnvelope(protected, unprotected, payload cbor.RawMessage, signatures []cbor.RawMessage) ([]byte, error) {
	content, err := encMode.Marshal([]cbor.RawMessage{
		protected,
		unprotected,
		payload,
		mustMarshalRaw(signatures),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode envelope: %w", err)
	}
	data, err := encMode.Marshal(cbor.RawTag{Number: signTag, Content: content})
	if err != nil {
		return nil, fmt.Errorf("failed to encode envelope tag: %w", err)
	}
	return data, nil
}

// mustMarshal encodes a value that cannot fail (plain byte strings and
// empty maps).
func mustMarshal(v interface{}) cbor.RawMessage {
	data, err := encMode.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}

func mustMarshalRaw(items []cbor.RawMessage) cbor.RawMessage {
	data, err := encMode.Marshal(items)
	if err != nil {
		panic(err)
	}
	return data
}
