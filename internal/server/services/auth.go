// Package services contains server-side business logic. AuthService wraps
// the in-memory authenticator with durable registration storage and metrics;
// it is what the transport calls.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/zkpauth/internal/common"
	"github.com/dmitrijs2005/zkpauth/internal/dbx"
	"github.com/dmitrijs2005/zkpauth/internal/server/authenticator"
	"github.com/dmitrijs2005/zkpauth/internal/server/metrics"
	"github.com/dmitrijs2005/zkpauth/internal/server/models"
	"github.com/dmitrijs2005/zkpauth/internal/server/repositories/repomanager"
)

// AuthService runs both proof flows. Registrations are persisted when a
// database is configured; everything else lives in memory.
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	auth        *authenticator.Authenticator
	groupID     string

	// registerMu keeps the database and the in-memory store agreeing on
	// which pair won when the same user registers concurrently.
	registerMu sync.Mutex
}

// NewAuthService constructs an AuthService. db and m may be nil, in which
// case registrations are kept in memory only.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, a *authenticator.Authenticator) *AuthService {
	return &AuthService{
		db:          db,
		repomanager: m,
		auth:        a,
		groupID:     a.Group().Fingerprint(),
	}
}

func (s *AuthService) persistent() bool {
	return s.db != nil && s.repomanager != nil
}

// Register stores the public pair (y1, y2) for user. Re-registering is a
// no-op that keeps the original pair. With a database configured the pair is
// persisted first; a storage failure leaves no in-memory record behind.
func (s *AuthService) Register(ctx context.Context, user string, y1, y2 []byte) error {
	if !s.persistent() {
		created, err := s.auth.Register(user, y1, y2)
		if err != nil {
			return err
		}
		s.recordRegistration(created)
		return nil
	}

	if err := s.auth.ValidateRegistration(user, y1, y2); err != nil {
		return err
	}

	s.registerMu.Lock()
	defer s.registerMu.Unlock()

	repo := s.repomanager.Registrations(s.db)
	reg := &models.Registration{UserID: user, GroupID: s.groupID, Y1: y1, Y2: y2}
	if _, err := repo.Create(ctx, reg); err != nil {
		return fmt.Errorf("persist registration: %w: %v", common.ErrorInternal, err)
	}

	created, err := s.auth.Register(user, y1, y2)
	if err != nil {
		return err
	}
	s.recordRegistration(created)
	return nil
}

func (s *AuthService) recordRegistration(created bool) {
	metrics.RecordRegistration(created)
	s.updateGauges()
}

// CreateChallenge opens a group proof round and returns (auth_id, c).
func (s *AuthService) CreateChallenge(ctx context.Context, user string, r1, r2 []byte) (string, []byte, error) {
	authID, c, err := s.auth.CreateChallenge(user, r1, r2)
	if err != nil {
		return "", nil, err
	}
	metrics.RecordRound(metrics.ProofGroup)
	s.updateGauges()
	return authID, c, nil
}

// VerifyAnswer checks the group proof response s and returns a session id.
func (s *AuthService) VerifyAnswer(ctx context.Context, authID string, resp []byte) (string, error) {
	session, err := s.auth.VerifyAnswer(authID, resp)
	metrics.RecordVerification(metrics.ProofGroup, outcome(err))
	return session, err
}

// SubmitCommitment opens a commitment round and returns its auth_id.
func (s *AuthService) SubmitCommitment(ctx context.Context, user string, commitment []byte) (string, error) {
	authID, err := s.auth.SubmitCommitment(user, commitment)
	if err != nil {
		return "", err
	}
	metrics.RecordRound(metrics.ProofCommitment)
	s.updateGauges()
	return authID, nil
}

// OpenCommitment checks the opening (r, m) and returns a session id.
func (s *AuthService) OpenCommitment(ctx context.Context, authID string, r, m []byte) (string, error) {
	session, err := s.auth.OpenCommitment(authID, r, m)
	metrics.RecordVerification(metrics.ProofCommitment, outcome(err))
	return session, err
}

// Restore loads persisted registrations for the current group into memory
// and returns how many users were added.
func (s *AuthService) Restore(ctx context.Context) (int, error) {
	if !s.persistent() {
		return 0, nil
	}

	var regs []models.Registration
	err := dbx.WithReadTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		regs, err = s.repomanager.Registrations(tx).ListByGroup(ctx, s.groupID)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("load registrations: %w", err)
	}

	in := make([]authenticator.Registration, 0, len(regs))
	for _, r := range regs {
		in = append(in, authenticator.Registration{UserID: r.UserID, Y1: r.Y1, Y2: r.Y2})
	}
	n, err := s.auth.Restore(in)
	s.updateGauges()
	return n, err
}

// RunSweeper removes expired auth_ids every interval until ctx is done.
func (s *AuthService) RunSweeper(ctx context.Context, interval time.Duration) {
	s.auth.Run(ctx, interval, func(removed int) {
		metrics.RecordExpired(removed)
		s.updateGauges()
	})
}

func (s *AuthService) updateGauges() {
	st := s.auth.Stats()
	metrics.SetStoreSizes(st.Users, st.Bindings)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, common.ErrorVerificationFailed), errors.Is(err, common.ErrorPermissionDenied):
		return metrics.OutcomeRejected
	case errors.Is(err, common.ErrorUnauthenticated):
		return metrics.OutcomeUnauthenticated
	case errors.Is(err, common.ErrorNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, common.ErrorMalformedInput):
		return metrics.OutcomeMalformed
	default:
		return metrics.OutcomeError
	}
}
