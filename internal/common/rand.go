package common

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"math/big"
)

// Source produces the randomness consumed by the proof engines and the
// authenticator: challenges, blinding factors and opaque tokens.
type Source interface {
	// Below returns a uniformly random integer in [0, max).
	Below(max *big.Int) (*big.Int, error)
	// Token returns an unguessable hex string backed by TokenSize random bytes.
	Token() (string, error)
	// Read fills b with random bytes.
	Read(b []byte) (int, error)
}

type cryptoSource struct{}

// CryptoSource is the Source backed by crypto/rand.
var CryptoSource Source = cryptoSource{}

func (cryptoSource) Below(max *big.Int) (*big.Int, error) {
	if max == nil || max.Sign() <= 0 {
		return nil, errors.New("random bound must be positive")
	}
	return rand.Int(rand.Reader, max)
}

func (cryptoSource) Token() (string, error) {
	return MakeRandHexString(TokenSize)
}

func (cryptoSource) Read(b []byte) (int, error) {
	return rand.Read(b)
}

// MakeRandHexString generates a random hexadecimal string of the given size.
// The final string is twice as long as size.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// WipeByteArray overwrites b with zeros. Nil slices are ignored.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
