package pedersen

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	"github.com/dmitrijs2005/zkpauth/internal/common"
	"github.com/gtank/ristretto255"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSource struct{}

func (failingSource) Below(*big.Int) (*big.Int, error) { return nil, errors.New("boom") }
func (failingSource) Token() (string, error)           { return "", errors.New("boom") }
func (failingSource) Read([]byte) (int, error)         { return 0, errors.New("boom") }

func TestDefault_Generators(t *testing.T) {
	p := Default()
	q := Default()

	assert.Equal(t, 1, p.G.Equal(q.G))
	assert.Equal(t, 1, p.H.Equal(q.H))
	assert.Equal(t, 0, p.G.Equal(p.H))
	assert.Equal(t, 1, p.H.Equal(HashToElement(p.G.Encode(nil))))
	assert.Equal(t, 0, p.G.Equal(ristretto255.NewElement()), "G is not the identity")
}

func TestCommit_VerifyCompleteness(t *testing.T) {
	p := Default()
	value := HashToScalar([]byte("correct horse battery staple"))

	c, r, err := p.Commit(value, common.CryptoSource)
	require.NoError(t, err)
	assert.True(t, p.VerifyCommitment(c, r, value))

	other := HashToScalar([]byte("wrong"))
	assert.False(t, p.VerifyCommitment(c, r, other), "different value")
	assert.False(t, p.VerifyCommitment(c, other, value), "different blinding")
	assert.False(t, p.VerifyCommitment(nil, r, value))
}

func TestCommit_FreshBlinding(t *testing.T) {
	p := Default()
	value := HashToScalar([]byte("v"))

	c1, _, err := p.Commit(value, common.CryptoSource)
	require.NoError(t, err)
	c2, _, err := p.Commit(value, common.CryptoSource)
	require.NoError(t, err)

	assert.Equal(t, 0, c1.Equal(c2))
}

func TestCommit_SourceError(t *testing.T) {
	_, _, err := Default().Commit(HashToScalar(nil), failingSource{})
	assert.Error(t, err)

	_, err = Default().NewOpening([]byte("s"), failingSource{})
	assert.Error(t, err)
}

func TestHashToScalar(t *testing.T) {
	a := HashToScalar([]byte("a"))
	assert.Equal(t, 1, a.Equal(HashToScalar([]byte("a"))))
	assert.Equal(t, 0, a.Equal(HashToScalar([]byte("b"))))

	long := bytes.Repeat([]byte{7}, 4096)
	assert.NotNil(t, HashToScalar(long))
	assert.NotNil(t, HashToScalar(nil))
}

func TestDecodeCommitment(t *testing.T) {
	p := Default()
	c := p.CommitWith(HashToScalar([]byte("m")), HashToScalar([]byte("r")))

	got, err := DecodeCommitment(c.Encode(nil))
	require.NoError(t, err)
	assert.Equal(t, 1, got.Equal(c))

	tests := map[string][]byte{
		"empty":         nil,
		"short":         make([]byte, 31),
		"long":          make([]byte, 33),
		"non-canonical": bytes.Repeat([]byte{0xff}, 32),
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeCommitment(in)
			assert.ErrorIs(t, err, common.ErrorMalformedInput)
		})
	}
}

func TestNewOpening_Open(t *testing.T) {
	p := Default()
	secret := []byte("s3cret")

	o, err := p.NewOpening(secret, common.CryptoSource)
	require.NoError(t, err)
	assert.Len(t, o.Commitment, ElementSize)
	assert.Equal(t, secret, o.Value)

	ok, err := p.Open(o.Commitment, o.Blinding, o.Value)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.Open(o.Commitment, o.Blinding, []byte("s3cret!"))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = p.Open(o.Commitment, o.Value, o.Blinding)
	require.NoError(t, err)
	assert.False(t, ok, "swapped opening")

	_, err = p.Open(o.Commitment[:10], o.Blinding, o.Value)
	assert.ErrorIs(t, err, common.ErrorMalformedInput)
}
