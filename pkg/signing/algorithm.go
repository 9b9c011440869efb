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

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"fmt"

	"github.com/veraison/go-cose"
)

// UnsupportedAlgorithmError reports an algorithm that is unknown or
// incompatible with the supplied key type.
type UnsupportedAlgorithmError struct {
	Algorithm string
	Reason    string
}

func (e *UnsupportedAlgorithmError) Error() string {
	return fmt.Sprintf("unsupported algorithm %q: %s", e.Algorithm, e.Reason)
}

// ParseAlgorithm maps an algorithm name to its COSE algorithm.
// The name set is closed: ES256, ES384, ES512, PS256, PS384, PS512,
// and EdDSA. Anything else is an *UnsupportedAlgorithmError.
func ParseAlgorithm(name string) (cose.Algorithm, error) {
	switch name {
	case "ES256":
		return cose.AlgorithmES256, nil
	case "ES384":
		return cose.AlgorithmES384, nil
	case "ES512":
		return cose.AlgorithmES512, nil
	case "PS256":
		return cose.AlgorithmPS256, nil
	case "PS384":
		return cose.AlgorithmPS384, nil
	case "PS512":
		return cose.AlgorithmPS512, nil
	case "EdDSA":
		return cose.AlgorithmEdDSA, nil
	default:
		return 0, &UnsupportedAlgorithmError{Algorithm: name, Reason: "unknown algorithm name"}
	}
}

// AlgorithmForKey infers the default COSE algorithm from a public key:
// ES256/ES384/ES512 by ECDSA curve size, PS384 for RSA, EdDSA for
// Ed25519.
func AlgorithmForKey(pub crypto.PublicKey) (cose.Algorithm, error) {
	switch key := pub.(type) {
	case *ecdsa.PublicKey:
		switch key.Curve.Params().BitSize {
		case 256:
			return cose.AlgorithmES256, nil
		case 384:
			return cose.AlgorithmES384, nil
		case 521:
			return cose.AlgorithmES512, nil
		default:
			return 0, &UnsupportedAlgorithmError{
				Algorithm: "ECDSA",
				Reason:    fmt.Sprintf("unsupported curve size: %d bits", key.Curve.Params().BitSize),
			}
		}
	case *rsa.PublicKey:
		return cose.AlgorithmPS384, nil
	case ed25519.PublicKey:
		return cose.AlgorithmEdDSA, nil
	default:
		return 0, &UnsupportedAlgorithmError{
			Algorithm: fmt.Sprintf("%T", pub),
			Reason:    "unsupported key type",
		}
	}
}

// CheckKeyAlgorithm verifies that an explicitly requested algorithm is
// usable with the key type. ES* requires an ECDSA key on the matching
// curve, PS* requires RSA, and EdDSA requires Ed25519.
func CheckKeyAlgorithm(pub crypto.PublicKey, alg cose.Algorithm) error {
	switch alg {
	case cose.AlgorithmES256, cose.AlgorithmES384, cose.AlgorithmES512:
		key, ok := pub.(*ecdsa.PublicKey)
		if !ok {
			return &UnsupportedAlgorithmError{Algorithm: alg.String(),
				Reason: fmt.Sprintf("requires an ECDSA key, have %T", pub)}
		}
		want := map[cose.Algorithm]int{
			cose.AlgorithmES256: 256,
			cose.AlgorithmES384: 384,
			cose.AlgorithmES512: 521,
		}[alg]
		if key.Curve.Params().BitSize != want {
			return &UnsupportedAlgorithmError{Algorithm: alg.String(),
				Reason: fmt.Sprintf("requires a %d-bit curve, have %d bits", want, key.Curve.Params().BitSize)}
		}
		return nil
	case cose.AlgorithmPS256, cose.AlgorithmPS384, cose.AlgorithmPS512:
		if _, ok := pub.(*rsa.PublicKey); !ok {
			return &UnsupportedAlgorithmError{Algorithm: alg.String(),
				Reason: fmt.Sprintf("requires an RSA key, have %T", pub)}
		}
		return nil
	case cose.AlgorithmEdDSA:
		if _, ok := pub.(ed25519.PublicKey); !ok {
			return &UnsupportedAlgorithmError{Algorithm: alg.String(),
				Reason: fmt.Sprintf("requires an Ed25519 key, have %T", pub)}
		}
		return nil
	default:
		return &UnsupportedAlgorithmError{Algorithm: alg.String(), Reason: "unknown algorithm"}
	}
}
