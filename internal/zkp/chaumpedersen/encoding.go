package chaumpedersen

import (
	"fmt"
	"math/big"

	"github.com/dmitrijs2005/zkpauth/internal/common"
)

// ElementSize is the length in bytes of p's big-endian encoding.
func (p *Params) ElementSize() int {
	return (p.P.BitLen() + 7) / 8
}

// ExponentSize is the length in bytes of q's big-endian encoding.
func (p *Params) ExponentSize() int {
	return (p.Q.BitLen() + 7) / 8
}

// DecodeElement parses a big-endian group element. Encodings longer than p,
// and values that are zero mod p, are malformed.
func (p *Params) DecodeElement(b []byte) (*big.Int, error) {
	if len(b) == 0 || len(b) > p.ElementSize() {
		return nil, fmt.Errorf("group element of %d bytes: %w", len(b), common.ErrorMalformedInput)
	}
	v := new(big.Int).SetBytes(b)
	v.Mod(v, p.P)
	if v.Sign() == 0 {
		return nil, fmt.Errorf("group element is zero: %w", common.ErrorMalformedInput)
	}
	return v, nil
}

// DecodeExponent parses a big-endian exponent and reduces it mod q. An empty
// slice decodes as zero; encodings longer than q are malformed.
func (p *Params) DecodeExponent(b []byte) (*big.Int, error) {
	if len(b) > p.ExponentSize() {
		return nil, fmt.Errorf("exponent of %d bytes: %w", len(b), common.ErrorMalformedInput)
	}
	v := new(big.Int).SetBytes(b)
	return v.Mod(v, p.Q), nil
}

// Encode returns the minimal big-endian encoding of v. Zero encodes as a
// single zero byte.
func Encode(v *big.Int) []byte {
	if v.Sign() == 0 {
		return []byte{0}
	}
	return v.Bytes()
}
