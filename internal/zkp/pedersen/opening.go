package pedersen

import (
	"fmt"

	"github.com/dmitrijs2005/zkpauth/internal/common"
)

// blindingMaterialSize is the number of random bytes hashed into a blinding
// factor.
const blindingMaterialSize = 32

// Opening is what a prover keeps after committing to a secret: the compressed
// commitment it sends first, and the raw blinding and value bytes it reveals
// later. The verifier hashes Blinding and Value with HashToScalar.
type Opening struct {
	Commitment []byte
	Blinding   []byte
	Value      []byte
}

// NewOpening commits to secret. Both the secret and fresh blinding material
// are mapped through HashToScalar, the same way the verifier maps them.
func (p *Params) NewOpening(secret []byte, src common.Source) (*Opening, error) {
	material := make([]byte, blindingMaterialSize)
	if _, err := src.Read(material); err != nil {
		return nil, fmt.Errorf("read blinding material: %w", err)
	}
	value := append([]byte(nil), secret...)

	c := p.CommitWith(HashToScalar(value), HashToScalar(material))
	return &Opening{
		Commitment: c.Encode(nil),
		Blinding:   material,
		Value:      value,
	}, nil
}

// Open checks raw opening bytes against a decoded commitment.
func (p *Params) Open(commitment []byte, blinding, value []byte) (bool, error) {
	c, err := DecodeCommitment(commitment)
	if err != nil {
		return false, err
	}
	return p.VerifyCommitment(c, HashToScalar(blinding), HashToScalar(value)), nil
}
