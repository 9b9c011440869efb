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

// Package envelope implements the signed contract envelope: a tagged
// COSE_Sign structure (RFC 9052, tag 98) wrapping an opaque contract
// payload.
//
// The body protected header carries the content type, the issuer, an
// optional feed, and the registration-info map. Each signature carries
// its algorithm and key id in its own protected header. The envelope
// uses COSE_Sign rather than COSE_Sign1 so that adding a signature to
// an already-signed contract is a pure list extension that preserves
// the existing signatures byte for byte.
//
// All protected headers are encoded with core-deterministic CBOR, so
// the to-be-signed bytes are identical for identical inputs.
package envelope

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/veraison/go-cose"

	"github.com/kapilvgit/contract-ledger/pkg/registration"
)

// COSE header labels used in the envelope. Content type, algorithm,
// and key id are the standard COSE labels; issuer, feed, and
// registration info use the labels the contract-ledger service expects.
const (
	labelAlgorithm        int64 = 1
	labelContentType      int64 = 3
	labelKeyID            int64 = 4
	labelIssuer           int64 = 391
	labelFeed             int64 = 392
	labelRegistrationInfo int64 = 393
)

// signTag is the CBOR tag for a COSE_Sign structure.
const signTag = 98

// encMode is the deterministic encoder for all envelope structures.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
}

// DecodeError reports bytes that are not a well-formed signed contract
// envelope.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid contract envelope: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid contract envelope: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// SignatureInfo is the decoded view of one signature in the envelope.
type SignatureInfo struct {
	// Algorithm is the COSE algorithm from the signature protected
	// header.
	Algorithm cose.Algorithm
	// KeyID is the key id from the signature protected header, if any.
	KeyID string
	// protected is the serialized signature protected header.
	protected []byte
	// signature is the raw signature bytes.
	signature []byte
}

// Envelope is the decoded view of a signed contract envelope. The raw
// CBOR pieces are retained so that appending a signature re-emits the
// existing content bit-exactly.
type Envelope struct {
	// ContentType of the contract payload.
	ContentType string
	// Issuer from the body protected header, if any.
	Issuer string
	// Feed from the body protected header, if any.
	Feed string
	// RegistrationInfo from the body protected header, if any.
	RegistrationInfo map[string]registration.Value
	// Signatures holds the decoded signatures, in envelope order.
	Signatures []SignatureInfo

	// payload is the contract bytes.
	payload []byte
	// bodyProtected is the serialized body protected header (the bstr
	// content, exactly as found in the envelope).
	bodyProtected []byte

	// Raw message pieces, kept for re-serialization in append mode.
	rawProtected   cbor.RawMessage
	rawUnprotected cbor.RawMessage
	rawPayload     cbor.RawMessage
	rawSignatures  []cbor.RawMessage
}

// Payload returns the contract bytes wrapped by the envelope.
func (e *Envelope) Payload() []byte { return e.payload }

// Decode parses a signed contract envelope. It fails with a
// *DecodeError unless the input is a well-formed tagged COSE_Sign
// structure with at least one signature.
func Decode(data []byte) (*Envelope, error) {
	var tag cbor.RawTag
	if err := cbor.Unmarshal(data, &tag); err != nil {
		return nil, &DecodeError{Reason: "not valid CBOR", Err: err}
	}
	if tag.Number != signTag {
		return nil, &DecodeError{Reason: fmt.Sprintf("expected COSE_Sign tag %d, found tag %d", signTag, tag.Number)}
	}

	var fields []cbor.RawMessage
	if err := cbor.Unmarshal(tag.Content, &fields); err != nil {
		return nil, &DecodeError{Reason: "tag content is not an array", Err: err}
	}
	if len(fields) != 4 {
		return nil, &DecodeError{Reason: fmt.Sprintf("COSE_Sign array has %d elements, want 4", len(fields))}
	}

	env := &Envelope{
		rawProtected:   fields[0],
		rawUnprotected: fields[1],
		rawPayload:     fields[2],
	}

	if err := cbor.Unmarshal(fields[0], &env.bodyProtected); err != nil {
		return nil, &DecodeError{Reason: "protected header is not a byte string", Err: err}
	}
	if err := decodeBodyProtected(env.bodyProtected, env); err != nil {
		return nil, err
	}

	var unprotected map[int64]cbor.RawMessage
	if err := cbor.Unmarshal(fields[1], &unprotected); err != nil {
		return nil, &DecodeError{Reason: "unprotected header is not a map", Err: err}
	}

	if err := cbor.Unmarshal(fields[2], &env.payload); err != nil {
		return nil, &DecodeError{Reason: "payload is not a byte string", Err: err}
	}

	if err := cbor.Unmarshal(fields[3], &env.rawSignatures); err != nil {
		return nil, &DecodeError{Reason: "signature list is not an array", Err: err}
	}
	if len(env.rawSignatures) == 0 {
		return nil, &DecodeError{Reason: "envelope has no signatures"}
	}
	for i, raw := range env.rawSignatures {
		sig, err := decodeSignature(raw)
		if err != nil {
			return nil, &DecodeError{Reason: fmt.Sprintf("signature %d", i), Err: err}
		}
		env.Signatures = append(env.Signatures, sig)
	}

	return env, nil
}

// decodeBodyProtected extracts the header fields from the serialized
// body protected header.
func decodeBodyProtected(data []byte, env *Envelope) error {
	var hdr map[int64]cbor.RawMessage
	if err := cbor.Unmarshal(data, &hdr); err != nil {
		return &DecodeError{Reason: "body protected header is not a map", Err: err}
	}

	if raw, ok := hdr[labelContentType]; ok {
		if err := cbor.Unmarshal(raw, &env.ContentType); err != nil {
			return &DecodeError{Reason: "content type is not a text string", Err: err}
		}
	}
	if raw, ok := hdr[labelIssuer]; ok {
		if err := cbor.Unmarshal(raw, &env.Issuer); err != nil {
			return &DecodeError{Reason: "issuer is not a text string", Err: err}
		}
	}
	if raw, ok := hdr[labelFeed]; ok {
		if err := cbor.Unmarshal(raw, &env.Feed); err != nil {
			return &DecodeError{Reason: "feed is not a text string", Err: err}
		}
	}
	if raw, ok := hdr[labelRegistrationInfo]; ok {
		info, err := decodeRegistrationInfo(raw)
		if err != nil {
			return err
		}
		env.RegistrationInfo = info
	}
	return nil
}

// decodeRegistrationInfo maps the CBOR registration-info header back to
// typed values.
func decodeRegistrationInfo(raw cbor.RawMessage) (map[string]registration.Value, error) {
	var m map[string]cbor.RawMessage
	if err := cbor.Unmarshal(raw, &m); err != nil {
		return nil, &DecodeError{Reason: "registration info is not a map", Err: err}
	}

	info := make(map[string]registration.Value, len(m))
	for name, rawValue := range m {
		var v interface{}
		if err := cbor.Unmarshal(rawValue, &v); err != nil {
			return nil, &DecodeError{Reason: fmt.Sprintf("registration info %q", name), Err: err}
		}
		switch value := v.(type) {
		case string:
			info[name] = registration.Text(value)
		case []byte:
			info[name] = registration.Bytes(value)
		case int64:
			info[name] = registration.Int(value)
		case uint64:
			info[name] = registration.Int(int64(value))
		default:
			return nil, &DecodeError{Reason: fmt.Sprintf("registration info %q has unsupported type %T", name, v)}
		}
	}
	return info, nil
}

// decodeSignature extracts the algorithm, key id, and signature bytes
// from one entry of the signature list.
func decodeSignature(raw cbor.RawMessage) (SignatureInfo, error) {
	var fields []cbor.RawMessage
	if err := cbor.Unmarshal(raw, &fields); err != nil {
		return SignatureInfo{}, fmt.Errorf("not an array: %w", err)
	}
	if len(fields) != 3 {
		return SignatureInfo{}, fmt.Errorf("COSE_Signature array has %d elements, want 3", len(fields))
	}

	var sig SignatureInfo
	if err := cbor.Unmarshal(fields[0], &sig.protected); err != nil {
		return SignatureInfo{}, fmt.Errorf("protected header is not a byte string: %w", err)
	}
	if err := cbor.Unmarshal(fields[2], &sig.signature); err != nil {
		return SignatureInfo{}, fmt.Errorf("signature is not a byte string: %w", err)
	}

	var hdr map[int64]cbor.RawMessage
	if err := cbor.Unmarshal(sig.protected, &hdr); err != nil {
		return SignatureInfo{}, fmt.Errorf("protected header is not a map: %w", err)
	}
	rawAlg, ok := hdr[labelAlgorithm]
	if !ok {
		return SignatureInfo{}, fmt.Errorf("protected header has no algorithm")
	}
	var alg int64
	if err := cbor.Unmarshal(rawAlg, &alg); err != nil {
		return SignatureInfo{}, fmt.Errorf("algorithm is not an integer: %w", err)
	}
	sig.Algorithm = cose.Algorithm(alg)

	if rawKid, ok := hdr[labelKeyID]; ok {
		var kid []byte
		if err := cbor.Unmarshal(rawKid, &kid); err != nil {
			return SignatureInfo{}, fmt.Errorf("key id is not a byte string: %w", err)
		}
		sig.KeyID = string(kid)
	}

	return sig, nil
}
