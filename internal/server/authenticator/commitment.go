package authenticator

import (
	"fmt"

	"github.com/dmitrijs2005/zkpauth/internal/common"
	"github.com/dmitrijs2005/zkpauth/internal/zkp/pedersen"
	"github.com/gtank/ristretto255"
)

// SubmitCommitment stores the compressed commitment for userID and opens a
// commitment round. The commitment must be a canonical Ristretto255 encoding.
func (a *Authenticator) SubmitCommitment(userID string, commitment []byte) (string, error) {
	point, err := pedersen.DecodeCommitment(commitment)
	if err != nil {
		return "", err
	}

	return a.openRound(userID, EllipticCurveCommitment, func(rec *record) {
		rec.commitment = point
		rec.r1, rec.r2, rec.challenge = nil, nil, nil
	})
}

// OpenCommitment checks the opening (blinding, value) of the round authID.
// Both inputs are arbitrary byte strings mapped to scalars with
// pedersen.HashToScalar.
func (a *Authenticator) OpenCommitment(authID string, blinding, value []byte) (string, error) {
	var (
		userID string
		point  *ristretto255.Element
		spent  bool
	)
	err := a.lookupRound(authID, EllipticCurveCommitment, func(b *binding, rec *record) {
		userID, spent = b.userID, b.spent
		point = rec.commitment
	})
	if err != nil {
		return "", err
	}

	if !a.curve.VerifyCommitment(point, pedersen.HashToScalar(blinding), pedersen.HashToScalar(value)) {
		return "", fmt.Errorf("commitment opening: %w", common.ErrorPermissionDenied)
	}
	if spent {
		return "", common.ErrorUnauthenticated
	}
	return a.completeRound(authID, userID)
}
