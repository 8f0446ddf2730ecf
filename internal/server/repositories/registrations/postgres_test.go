package registrations

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/zkpauth/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

const insertQuery = `(?s)^INSERT\s+INTO\s+registrations\s*\(user_id,\s*group_id,\s*y1,\s*y2\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*ON\s+CONFLICT\s*\(group_id,\s*user_id\)\s*DO\s+NOTHING\s*$`

const selectQuery = `(?s)^SELECT\s+user_id,\s*group_id,\s*y1,\s*y2,\s*created_at\s+FROM\s+registrations\s+WHERE\s+group_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at,\s*user_id\s*$`

func TestCreate_Inserted(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(insertQuery).
		WithArgs("alice", "g1", []byte{18}, []byte{16}).
		WillReturnResult(sqlmock.NewResult(0, 1))

	inserted, err := repo.Create(context.Background(), &models.Registration{UserID: "alice", GroupID: "g1", Y1: []byte{18}, Y2: []byte{16}})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if !inserted {
		t.Fatal("expected a row to be inserted")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_Conflict(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(insertQuery).
		WithArgs("alice", "g1", []byte{2}, []byte{3}).
		WillReturnResult(sqlmock.NewResult(0, 0))

	inserted, err := repo.Create(context.Background(), &models.Registration{UserID: "alice", GroupID: "g1", Y1: []byte{2}, Y2: []byte{3}})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if inserted {
		t.Fatal("conflicting registration must not be inserted")
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(insertQuery).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.Registration{UserID: "alice", GroupID: "g1", Y1: []byte{1}, Y2: []byte{1}})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestCreate_RowsAffectedError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(insertQuery).WillReturnResult(sqlmock.NewErrorResult(errors.New("no count")))

	_, err := repo.Create(context.Background(), &models.Registration{UserID: "alice", GroupID: "g1", Y1: []byte{1}, Y2: []byte{1}})
	if err == nil {
		t.Fatal("expected error from RowsAffected")
	}
}

func TestListByGroup(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"user_id", "group_id", "y1", "y2", "created_at"}).
		AddRow("alice", "g1", []byte{18}, []byte{16}, ts).
		AddRow("bob", "g1", []byte{2}, []byte{3}, ts)
	mock.ExpectQuery(selectQuery).WithArgs("g1").WillReturnRows(rows)

	got, err := repo.ListByGroup(context.Background(), "g1")
	if err != nil {
		t.Fatalf("ListByGroup error: %v", err)
	}
	if len(got) != 2 || got[0].UserID != "alice" || got[1].UserID != "bob" {
		t.Fatalf("unexpected registrations: %+v", got)
	}
	if !got[0].CreatedAt.Equal(ts) {
		t.Fatalf("created_at mismatch: %v", got[0].CreatedAt)
	}
}

func TestListByGroup_Errors(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectQuery).WithArgs("g1").WillReturnError(errors.New("boom"))
	if _, err := repo.ListByGroup(context.Background(), "g1"); err == nil {
		t.Fatal("expected query error")
	}

	rows := sqlmock.NewRows([]string{"user_id", "group_id", "y1", "y2", "created_at"}).
		AddRow("alice", "g1", []byte{18}, []byte{16}, time.Now()).
		RowError(0, errors.New("row broken"))
	mock.ExpectQuery(selectQuery).WithArgs("g1").WillReturnRows(rows)
	if _, err := repo.ListByGroup(context.Background(), "g1"); err == nil {
		t.Fatal("expected row error")
	}
}
