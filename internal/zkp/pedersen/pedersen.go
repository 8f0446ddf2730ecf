// Package pedersen implements Pedersen commitments over the Ristretto255
// prime-order group.
//
// A commitment to value m with blinding r is C = m*G + r*H, where nobody
// knows the discrete log of H with respect to G. The commitment hides m and
// binds the committer to (m, r).
package pedersen

import (
	"crypto/sha512"
	"fmt"

	"github.com/dmitrijs2005/zkpauth/internal/common"
	"github.com/gtank/ristretto255"
	"golang.org/x/crypto/sha3"
)

// ElementSize is the length of a canonical Ristretto255 encoding.
const ElementSize = 32

const uniformSize = 64

// Params holds the two commitment generators.
type Params struct {
	G *ristretto255.Element
	H *ristretto255.Element
}

// Default returns G = the Ristretto255 base point and H = the point obtained
// by hashing the encoding of G to the group with SHA3-512.
func Default() *Params {
	var one [32]byte
	one[0] = 1
	s := ristretto255.NewScalar()
	if err := s.Decode(one[:]); err != nil {
		panic(err)
	}
	g := ristretto255.NewElement().ScalarBaseMult(s)
	return &Params{
		G: g,
		H: HashToElement(g.Encode(nil)),
	}
}

// HashToScalar maps arbitrary bytes to a scalar by reducing their SHA-512
// digest.
func HashToScalar(b []byte) *ristretto255.Scalar {
	sum := sha512.Sum512(b)
	return ristretto255.NewScalar().FromUniformBytes(sum[:])
}

// HashToElement maps arbitrary bytes to a group element through SHA3-512 and
// the Ristretto255 one-way map.
func HashToElement(b []byte) *ristretto255.Element {
	sum := sha3.Sum512(b)
	return ristretto255.NewElement().FromUniformBytes(sum[:])
}

// RandomScalar draws a uniform scalar from src.
func RandomScalar(src common.Source) (*ristretto255.Scalar, error) {
	buf := make([]byte, uniformSize)
	defer common.WipeByteArray(buf)
	if _, err := src.Read(buf); err != nil {
		return nil, fmt.Errorf("read randomness: %w", err)
	}
	return ristretto255.NewScalar().FromUniformBytes(buf), nil
}

// CommitWith returns value*G + blinding*H.
func (p *Params) CommitWith(value, blinding *ristretto255.Scalar) *ristretto255.Element {
	return ristretto255.NewElement().MultiScalarMult(
		[]*ristretto255.Scalar{value, blinding},
		[]*ristretto255.Element{p.G, p.H},
	)
}

// Commit commits to value under a fresh random blinding factor.
func (p *Params) Commit(value *ristretto255.Scalar, src common.Source) (*ristretto255.Element, *ristretto255.Scalar, error) {
	blinding, err := RandomScalar(src)
	if err != nil {
		return nil, nil, err
	}
	return p.CommitWith(value, blinding), blinding, nil
}

// VerifyCommitment reports whether commitment opens to (blinding, value).
func (p *Params) VerifyCommitment(commitment *ristretto255.Element, blinding, value *ristretto255.Scalar) bool {
	if commitment == nil || blinding == nil || value == nil {
		return false
	}
	return p.CommitWith(value, blinding).Equal(commitment) == 1
}

// DecodeCommitment parses a canonical compressed Ristretto255 encoding.
func DecodeCommitment(b []byte) (*ristretto255.Element, error) {
	if len(b) != ElementSize {
		return nil, fmt.Errorf("commitment of %d bytes: %w", len(b), common.ErrorMalformedInput)
	}
	e := ristretto255.NewElement()
	if err := e.Decode(b); err != nil {
		return nil, fmt.Errorf("commitment is not canonical: %w", common.ErrorMalformedInput)
	}
	return e, nil
}
