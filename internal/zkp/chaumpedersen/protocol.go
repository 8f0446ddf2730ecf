package chaumpedersen

import (
	"math/big"

	"github.com/dmitrijs2005/zkpauth/internal/common"
)

// ComputePublicPair returns y1 = g^x mod p and y2 = h^x mod p.
func (p *Params) ComputePublicPair(x *big.Int) (*big.Int, *big.Int) {
	e := p.reduceExp(x)
	y1 := new(big.Int).Exp(p.G, e, p.P)
	y2 := new(big.Int).Exp(p.H, e, p.P)
	return y1, y2
}

// ComputeResponse returns s in [0, q) with s = k - c*x (mod q).
//
// k - c*x is negative whenever c*x > k, so the result is normalised as
// ((k - c*x) mod q + q) mod q.
func (p *Params) ComputeResponse(k, c, x *big.Int) *big.Int {
	s := new(big.Int).Mul(c, x)
	s.Sub(k, s)
	s.Rem(s, p.Q)
	s.Add(s, p.Q)
	return s.Rem(s, p.Q)
}

// Verify checks r1 = g^s * y1^c and r2 = h^s * y2^c (mod p). Group elements
// are reduced mod p and exponents mod q first; an element that reduces to
// zero never verifies.
func (p *Params) Verify(c, s, r1, r2, y1, y2 *big.Int) bool {
	if c == nil || s == nil || r1 == nil || r2 == nil || y1 == nil || y2 == nil {
		return false
	}
	c = p.reduceExp(c)
	s = p.reduceExp(s)

	elems := make([]*big.Int, 0, 4)
	for _, v := range []*big.Int{r1, r2, y1, y2} {
		e := p.reduceElem(v)
		if e.Sign() == 0 {
			return false
		}
		elems = append(elems, e)
	}
	r1, r2, y1, y2 = elems[0], elems[1], elems[2], elems[3]

	return p.check(p.G, y1, r1, c, s) && p.check(p.H, y2, r2, c, s)
}

// check reports whether r == base^s * y^c mod p.
func (p *Params) check(base, y, r, c, s *big.Int) bool {
	lhs := new(big.Int).Exp(base, s, p.P)
	rhs := new(big.Int).Exp(y, c, p.P)
	lhs.Mul(lhs, rhs).Mod(lhs, p.P)
	return lhs.Cmp(r) == 0
}

// Commitment returns the prover's first message r1 = g^k, r2 = h^k.
func (p *Params) Commitment(k *big.Int) (*big.Int, *big.Int) {
	return p.ComputePublicPair(k)
}

// RandomExponent draws a uniform value in [0, q).
func (p *Params) RandomExponent(src common.Source) (*big.Int, error) {
	return src.Below(p.Q)
}

// RandomChallenge draws the verifier's challenge c in [0, q).
func (p *Params) RandomChallenge(src common.Source) (*big.Int, error) {
	return src.Below(p.Q)
}

func (p *Params) reduceExp(v *big.Int) *big.Int {
	return new(big.Int).Mod(v, p.Q)
}

func (p *Params) reduceElem(v *big.Int) *big.Int {
	return new(big.Int).Mod(v, p.P)
}
