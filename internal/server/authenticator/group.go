package authenticator

import (
	"fmt"
	"math/big"

	"github.com/dmitrijs2005/zkpauth/internal/common"
	"github.com/dmitrijs2005/zkpauth/internal/zkp/chaumpedersen"
)

// CreateChallenge records the prover's commitments r1, r2 for userID, draws a
// random challenge c in [0, q) and opens a group round. It returns the new
// auth_id and the big-endian encoding of c.
func (a *Authenticator) CreateChallenge(userID string, r1, r2 []byte) (string, []byte, error) {
	e1, err := a.group.DecodeElement(r1)
	if err != nil {
		return "", nil, fmt.Errorf("r1: %w", err)
	}
	e2, err := a.group.DecodeElement(r2)
	if err != nil {
		return "", nil, fmt.Errorf("r2: %w", err)
	}

	c, err := a.group.RandomChallenge(a.src)
	if err != nil {
		return "", nil, fmt.Errorf("draw challenge: %w: %v", common.ErrorInternal, err)
	}

	authID, err := a.openRound(userID, GroupDiscreteLog, func(rec *record) {
		rec.r1, rec.r2, rec.challenge = e1, e2, c
		rec.commitment = nil
	})
	if err != nil {
		return "", nil, err
	}
	return authID, chaumpedersen.Encode(c), nil
}

// VerifyAnswer checks the response s for the round authID and issues a
// session on success.
//
// The equation is checked before the single-use rule, so a wrong answer on a
// spent auth_id is still ErrorVerificationFailed while a replayed correct
// answer is ErrorUnauthenticated.
func (a *Authenticator) VerifyAnswer(authID string, s []byte) (string, error) {
	resp, err := a.group.DecodeExponent(s)
	if err != nil {
		return "", fmt.Errorf("s: %w", err)
	}

	var (
		userID            string
		c, r1, r2, y1, y2 *big.Int
		spent             bool
	)
	err = a.lookupRound(authID, GroupDiscreteLog, func(b *binding, rec *record) {
		userID, spent = b.userID, b.spent
		c, r1, r2 = rec.challenge, rec.r1, rec.r2
		y1, y2 = rec.y1, rec.y2
	})
	if err != nil {
		return "", err
	}

	if !a.group.Verify(c, resp, r1, r2, y1, y2) {
		return "", common.ErrorVerificationFailed
	}
	if spent {
		return "", common.ErrorUnauthenticated
	}
	return a.completeRound(authID, userID)
}
