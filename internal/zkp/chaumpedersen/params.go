// Package chaumpedersen implements the Chaum-Pedersen proof of equality of
// discrete logarithms over a prime-order subgroup of Z/pZ.
//
// The prover holds a secret x with y1 = g^x and y2 = h^x (mod p). For each
// round it sends r1 = g^k, r2 = h^k, receives a random challenge c and answers
// with s = k - c*x (mod q). The verifier accepts iff r1 = g^s * y1^c and
// r2 = h^s * y2^c (mod p).
package chaumpedersen

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

// Params are the public group parameters. g and h must both have order q
// modulo p; this package does not check it.
type Params struct {
	P *big.Int
	Q *big.Int
	G *big.Int
	H *big.Int
}

// Preset names accepted by Preset.
const (
	PresetToy          = "toy"
	PresetRFC5114_1024 = "rfc5114-1024-160"
	PresetRFC5114_2048 = "rfc5114-2048-256"
)

// rfc5114SecondGenExp is the exponent used to derive the second generator.
const rfc5114SecondGenExp = "266FEA1E5C41564B777E69"

const (
	rfc5114P1024 = "" +
		"B10B8F96A080E01DDE92DE5EAE5D54EC52C99FBCFB06A3C69A6A9DCA52D23B61" +
		"6073E28675A23D189838EF1E2EE652C013ECB4AEA906112324975C3CD49B83BF" +
		"ACCBDD7D90C4BD7098488E9C219A73724EFFD6FAE5644738FAA31A4FF55BCCC0" +
		"A151AF5F0DC8B4BD45BF37DF365C1A65E68CFDA76D4DA708DF1FB2BC2E4A4371"
	rfc5114G1024 = "" +
		"A4D1CBD5C3FD34126765A442EFB99905F8104DD258AC507FD6406CFF14266D31" +
		"266FEA1E5C41564B777E690F5504F213160217B4B01B886A5E91547F9E2749F4" +
		"D7FBD7D3B9A92EE1909D0D2263F80A76A6A24C087A091F531DBF0A0169B6A28A" +
		"D662A4D18E73AFA32D779D5918D08BC8858F4DCEF97C2A24855E6EEB22B3B2E5"
	rfc5114Q1024 = "F518AA8781A8DF278ABA4E7D64B7CB9D49462353"

	rfc5114P2048 = "" +
		"87A8E61DB4B6663CFFBBD19C651959998CEEF608660DD0F25D2CEED4435E3B00" +
		"E00DF8F1D61957D4FAF7DF4561B2AA3016C3D91134096FAA3BF4296D830E9A7C" +
		"209E0C6497517ABD5A8A9D306BCF67ED91F9E6725B4758C022E0B1EF4275BF7B" +
		"6C5BFC11D45F9088B941F54EB1E59BB8BC39A0BF12307F5C4FDB70C581B23F76" +
		"B63ACAE1CAA6B7902D52526735488A0EF13C6D9A51BFA4AB3AD8347796524D8E" +
		"F6A167B5A41825D967E144E5140564251CCACB83E6B486F6B3CA3F7971506026" +
		"C0B857F689962856DED4010ABD0BE621C3A3960A54E710C375F26375D7014103" +
		"A4B54330C198AF126116D2276E11715F693877FAD7EF09CADB094AE91E1A1597"
	rfc5114G2048 = "" +
		"3FB32C9B73134D0B2E77506660EDBD484CA7B18F21EF205407F4793A1A0BA125" +
		"10DBC15077BE463FFF4FED4AAC0BB555BE3A6C1B0C6B47B1BC3773BF7E8C6F62" +
		"901228F8C28CBB18A55AE31341000A650196F931C77A57F2DDF463E5E9EC144B" +
		"777DE62AAAB8A8628AC376D282D6ED3864E67982428EBC831D14348F6F2F9193" +
		"B5045AF2767164E1DFC967C1FB3F2E55A4BD1BFFE83B9C80D052B985D182EA0A" +
		"DB2A3B7313D3FE14C8484B1E052588B9B7D2BBD2DF016199ECD06E1557CD0915" +
		"B3353BBB64E0EC377FD028370DF92B52C7891428CDC67EB6184B523D1DB246C3" +
		"2F63078490F00EF8D647D148D47954515E2327CFEF98C582664B4C0F6CC41659"
	rfc5114Q2048 = "8CF83642A709A097B447997640129DA299B1A47D1EB3750BA308B0FE64F5FBD3"
)

// ToyParams returns the small textbook group p=23, q=11, g=4, h=9.
// It is only suitable for tests and demonstrations.
func ToyParams() *Params {
	return &Params{
		P: big.NewInt(23),
		Q: big.NewInt(11),
		G: big.NewInt(4),
		H: big.NewInt(9),
	}
}

// Preset returns one of the named parameter sets. The RFC 5114 groups use the
// published p, q and g; h is derived as g^i mod p for a fixed exponent i.
func Preset(name string) (*Params, error) {
	switch strings.ToLower(name) {
	case PresetToy:
		return ToyParams(), nil
	case PresetRFC5114_1024:
		return fromRFC5114(rfc5114P1024, rfc5114Q1024, rfc5114G1024)
	case PresetRFC5114_2048:
		return fromRFC5114(rfc5114P2048, rfc5114Q2048, rfc5114G2048)
	default:
		return nil, fmt.Errorf("unknown group preset %q", name)
	}
}

func fromRFC5114(p, q, g string) (*Params, error) {
	params, err := ParseHex(p, q, g, "")
	if err != nil {
		return nil, err
	}
	i, _ := new(big.Int).SetString(rfc5114SecondGenExp, 16)
	params.H = new(big.Int).Exp(params.G, i, params.P)
	return params, nil
}

// ParseHex builds Params from hexadecimal strings. An empty h is left nil so
// callers can derive it.
func ParseHex(p, q, g, h string) (*Params, error) {
	params := &Params{}
	for _, f := range []struct {
		name string
		in   string
		out  **big.Int
	}{
		{"p", p, &params.P},
		{"q", q, &params.Q},
		{"g", g, &params.G},
		{"h", h, &params.H},
	} {
		if f.in == "" {
			if f.name == "h" {
				continue
			}
			return nil, fmt.Errorf("group parameter %s is empty", f.name)
		}
		v, ok := new(big.Int).SetString(strings.TrimPrefix(f.in, "0x"), 16)
		if !ok || v.Sign() <= 0 {
			return nil, fmt.Errorf("group parameter %s is not a positive hex integer", f.name)
		}
		*f.out = v
	}
	return params, nil
}

// Fingerprint identifies the parameter set. Public pairs computed under one
// set are meaningless under another.
func (p *Params) Fingerprint() string {
	h := sha256.New()
	for _, v := range []*big.Int{p.P, p.Q, p.G, p.H} {
		b := v.Bytes()
		h.Write([]byte{byte(len(b) >> 8), byte(len(b))})
		h.Write(b)
	}
	return hex.EncodeToString(h.Sum(nil)[:16])
}
