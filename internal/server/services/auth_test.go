package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/zkpauth/internal/common"
	"github.com/dmitrijs2005/zkpauth/internal/server/authenticator"
	"github.com/dmitrijs2005/zkpauth/internal/server/metrics"
	"github.com/dmitrijs2005/zkpauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/zkpauth/internal/zkp/chaumpedersen"
	"github.com/dmitrijs2005/zkpauth/internal/zkp/pedersen"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

type fixedChallenge struct {
	common.Source
	c *big.Int
}

func (f fixedChallenge) Below(*big.Int) (*big.Int, error) { return f.c, nil }

func newAuthenticator(t *testing.T) *authenticator.Authenticator {
	t.Helper()
	a, err := authenticator.New(authenticator.Options{
		Group:  chaumpedersen.ToyParams(),
		Source: fixedChallenge{Source: common.CryptoSource, c: big.NewInt(2)},
	})
	require.NoError(t, err)
	return a
}

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func verifications(system, outcome string) float64 {
	return testutil.ToFloat64(metrics.VerificationsTotal.WithLabelValues(system, outcome))
}

// --- tests ---

func TestAuthService_GroupFlowInMemory(t *testing.T) {
	s := NewAuthService(nil, nil, newAuthenticator(t))
	ctx := context.Background()

	okBefore := verifications(metrics.ProofGroup, metrics.OutcomeSuccess)
	rejBefore := verifications(metrics.ProofGroup, metrics.OutcomeRejected)

	require.NoError(t, s.Register(ctx, "alice", []byte{18}, []byte{16}))

	authID, c, err := s.CreateChallenge(ctx, "alice", []byte{3}, []byte{6})
	require.NoError(t, err)
	assert.Equal(t, []byte{2}, c)

	_, err = s.VerifyAnswer(ctx, authID, []byte{1})
	assert.ErrorIs(t, err, common.ErrorVerificationFailed)

	session, err := s.VerifyAnswer(ctx, authID, []byte{9})
	require.NoError(t, err)
	assert.NotEmpty(t, session)

	assert.Equal(t, okBefore+1, verifications(metrics.ProofGroup, metrics.OutcomeSuccess))
	assert.Equal(t, rejBefore+1, verifications(metrics.ProofGroup, metrics.OutcomeRejected))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Users))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AuthIDs))

	n, err := s.Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "nothing to restore without a database")
}

func TestAuthService_CommitmentFlow(t *testing.T) {
	s := NewAuthService(nil, nil, newAuthenticator(t))
	ctx := context.Background()
	require.NoError(t, s.Register(ctx, "alice", []byte{18}, []byte{16}))

	o, err := pedersen.Default().NewOpening([]byte("pw"), common.CryptoSource)
	require.NoError(t, err)

	_, err = s.SubmitCommitment(ctx, "bob", o.Commitment)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	authID, err := s.SubmitCommitment(ctx, "alice", o.Commitment)
	require.NoError(t, err)

	_, err = s.OpenCommitment(ctx, authID, o.Blinding, []byte("nope"))
	assert.ErrorIs(t, err, common.ErrorPermissionDenied)

	session, err := s.OpenCommitment(ctx, authID, o.Blinding, o.Value)
	require.NoError(t, err)
	assert.NotEmpty(t, session)
}

func TestAuthService_ErrorsPassThrough(t *testing.T) {
	s := NewAuthService(nil, nil, newAuthenticator(t))
	ctx := context.Background()

	err := s.Register(ctx, "alice", nil, []byte{1})
	assert.ErrorIs(t, err, common.ErrorMalformedInput)

	_, _, err = s.CreateChallenge(ctx, "bob", []byte{3}, []byte{6})
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = s.VerifyAnswer(ctx, "missing", []byte{1})
	assert.ErrorIs(t, err, common.ErrorUnauthenticated)
}

func TestAuthService_RegisterPersists(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	a := newAuthenticator(t)
	s := NewAuthService(db, repomanager.NewPostgresRepositoryManager(), a)

	mock.ExpectExec(`INSERT INTO registrations`).
		WithArgs("alice", a.Group().Fingerprint(), []byte{18}, []byte{16}).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Register(context.Background(), "alice", []byte{18}, []byte{16}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthService_RegisterStorageError(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	s := NewAuthService(db, repomanager.NewPostgresRepositoryManager(), newAuthenticator(t))

	mock.ExpectExec(`INSERT INTO registrations`).WillReturnError(errors.New("db down"))

	err := s.Register(context.Background(), "alice", []byte{18}, []byte{16})
	assert.ErrorIs(t, err, common.ErrorInternal)

	_, _, err = s.CreateChallenge(context.Background(), "alice", []byte{3}, []byte{6})
	assert.ErrorIs(t, err, common.ErrorNotFound, "failed registration must not be usable")
	assert.Equal(t, 0, s.auth.Stats().Users)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthService_RegisterRetryAfterStorageError(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	a := newAuthenticator(t)
	s := NewAuthService(db, repomanager.NewPostgresRepositoryManager(), a)

	mock.ExpectExec(`INSERT INTO registrations`).WillReturnError(errors.New("db down"))
	mock.ExpectExec(`INSERT INTO registrations`).
		WithArgs("alice", a.Group().Fingerprint(), []byte{18}, []byte{16}).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ctx := context.Background()
	require.Error(t, s.Register(ctx, "alice", []byte{18}, []byte{16}))
	require.NoError(t, s.Register(ctx, "alice", []byte{18}, []byte{16}))

	_, _, err := s.CreateChallenge(ctx, "alice", []byte{3}, []byte{6})
	assert.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthService_RegisterMalformedSkipsStorage(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	s := NewAuthService(db, repomanager.NewPostgresRepositoryManager(), newAuthenticator(t))

	err := s.Register(context.Background(), "alice", nil, []byte{16})
	assert.ErrorIs(t, err, common.ErrorMalformedInput)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthService_Restore(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	a := newAuthenticator(t)
	s := NewAuthService(db, repomanager.NewPostgresRepositoryManager(), a)

	rows := sqlmock.NewRows([]string{"user_id", "group_id", "y1", "y2", "created_at"}).
		AddRow("alice", a.Group().Fingerprint(), []byte{18}, []byte{16}, time.Now()).
		AddRow("bob", a.Group().Fingerprint(), []byte{2}, []byte{3}, time.Now())

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT user_id, group_id, y1, y2, created_at FROM registrations`).
		WithArgs(a.Group().Fingerprint()).
		WillReturnRows(rows)
	mock.ExpectCommit()

	n, err := s.Restore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, a.Stats().Users)
	require.NoError(t, mock.ExpectationsWereMet())

	authID, _, err := s.CreateChallenge(context.Background(), "alice", []byte{3}, []byte{6})
	require.NoError(t, err)
	_, err = s.VerifyAnswer(context.Background(), authID, []byte{9})
	assert.NoError(t, err, "restored public pair verifies")
}

func TestAuthService_RestoreError(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	s := NewAuthService(db, repomanager.NewPostgresRepositoryManager(), newAuthenticator(t))

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT user_id`).WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	_, err := s.Restore(context.Background())
	assert.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthService_RunSweeper(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	clock := func() time.Time { return now }
	a, err := authenticator.New(authenticator.Options{
		Group:     chaumpedersen.ToyParams(),
		AuthIDTTL: time.Second,
		Now:       clock,
	})
	require.NoError(t, err)
	s := NewAuthService(nil, nil, a)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	done := make(chan struct{})
	go func() {
		s.RunSweeper(ctx, time.Millisecond)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, metrics.OutcomeSuccess},
		{common.ErrorVerificationFailed, metrics.OutcomeRejected},
		{fmt.Errorf("x: %w", common.ErrorPermissionDenied), metrics.OutcomeRejected},
		{common.ErrorUnauthenticated, metrics.OutcomeUnauthenticated},
		{common.ErrorNotFound, metrics.OutcomeNotFound},
		{common.ErrorMalformedInput, metrics.OutcomeMalformed},
		{errors.New("other"), metrics.OutcomeError},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, outcome(tc.err))
	}
}
