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

// Package did resolves a signer identity from a DID document.
//
// The document is a local JSON file listing verification methods with
// publicKeyJwk entries. Resolution selects a method (by key id, or the
// only method when no key id is given), checks that its public key
// matches the supplied private key, and derives the signing algorithm
// from the method's JWK. Network-based DID resolution is out of scope.
package did

import (
	"crypto"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/veraison/go-cose"

	"github.com/kapilvgit/contract-ledger/pkg/signing"
)

// Method is one verification method of a DID document.
type Method struct {
	ID           string          `json:"id"`
	Type         string          `json:"type"`
	Controller   string          `json:"controller"`
	PublicKeyJWK json.RawMessage `json:"publicKeyJwk"`
}

// Document is the subset of a DID document needed to resolve a signer.
type Document struct {
	ID                 string   `json:"id"`
	VerificationMethod []Method `json:"verificationMethod"`
}

// LoadDocument reads and decodes a DID document from a JSON file.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read DID document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse DID document: %w", err)
	}
	if doc.ID == "" {
		return nil, fmt.Errorf("DID document has no id")
	}
	return &doc, nil
}

// NewSigner builds a signer from a private key and DID configuration:
// the document at cfg.DocPath is loaded and resolved against the key.
func NewSigner(key crypto.Signer, cfg signing.DIDConfig) (*signing.Signer, error) {
	doc, err := LoadDocument(cfg.DocPath)
	if err != nil {
		return nil, err
	}
	return ResolveSigner(key, doc, cfg.KeyID)
}

// ResolveSigner builds a signer from a private key and a DID document.
//
// The key id selects a verification method when the document has more
// than one; with an empty key id the document must have exactly one
// method. The method's publicKeyJwk must correspond to the private key
// (compared via JWK thumbprints). The resulting signer uses the
// document id as issuer and the method's fragment as key id.
func ResolveSigner(key crypto.Signer, doc *Document, keyID string) (*signing.Signer, error) {
	method, err := selectMethod(doc, keyID)
	if err != nil {
		return nil, err
	}

	methodKey, err := jwk.ParseKey(method.PublicKeyJWK)
	if err != nil {
		return nil, fmt.Errorf("verification method %q has an invalid publicKeyJwk: %w", method.ID, err)
	}

	ownKey, err := jwk.FromRaw(key.Public())
	if err != nil {
		return nil, fmt.Errorf("failed to convert private key to JWK: %w", err)
	}

	methodThumb, err := methodKey.Thumbprint(crypto.SHA256)
	if err != nil {
		return nil, fmt.Errorf("failed to compute JWK thumbprint: %w", err)
	}
	ownThumb, err := ownKey.Thumbprint(crypto.SHA256)
	if err != nil {
		return nil, fmt.Errorf("failed to compute JWK thumbprint: %w", err)
	}
	if string(methodThumb) != string(ownThumb) {
		return nil, fmt.Errorf("private key does not match verification method %q", method.ID)
	}

	alg, err := methodAlgorithm(methodKey, key.Public())
	if err != nil {
		return nil, err
	}
	if err := signing.CheckKeyAlgorithm(key.Public(), alg); err != nil {
		return nil, err
	}

	return &signing.Signer{
		Key:       key,
		Issuer:    doc.ID,
		KeyID:     fragment(method.ID),
		Algorithm: alg,
	}, nil
}

// selectMethod picks the verification method identified by keyID, or
// the document's only method when keyID is empty.
func selectMethod(doc *Document, keyID string) (*Method, error) {
	if len(doc.VerificationMethod) == 0 {
		return nil, fmt.Errorf("DID document %q has no verification methods", doc.ID)
	}

	if keyID == "" {
		if len(doc.VerificationMethod) > 1 {
			return nil, fmt.Errorf("DID document %q has multiple verification methods, a key id is required", doc.ID)
		}
		return &doc.VerificationMethod[0], nil
	}

	want := fragment(keyID)
	for i := range doc.VerificationMethod {
		m := &doc.VerificationMethod[i]
		if m.ID == keyID || fragment(m.ID) == want {
			return m, nil
		}
	}
	return nil, fmt.Errorf("DID document %q has no verification method with key id %q", doc.ID, keyID)
}

// fragment normalizes a verification method id or key id to its
// fragment form, with a leading '#'.
func fragment(id string) string {
	if i := strings.LastIndex(id, "#"); i >= 0 {
		return "#" + id[i+1:]
	}
	return "#" + id
}

// methodAlgorithm derives the signing algorithm for a verification
// method: the JWK's alg field when present, otherwise inferred from the
// key type.
func methodAlgorithm(methodKey jwk.Key, pub crypto.PublicKey) (cose.Algorithm, error) {
	if alg, ok := methodKey.Get(jwk.AlgorithmKey); ok {
		name := fmt.Sprintf("%v", alg)
		if name != "" {
			return signing.ParseAlgorithm(name)
		}
	}
	return signing.AlgorithmForKey(pub)
}
