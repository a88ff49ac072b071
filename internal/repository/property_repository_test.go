package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/estately/estately/internal/domain"
	"github.com/estately/estately/internal/infrastructure/logger"
)

func newPropertyRepoMock(t *testing.T) (*PostgresPropertyRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPostgresPropertyRepository(db, logger.NewLogger("error")), mock
}

func TestDeleteWithDependentRecordsIsConflict(t *testing.T) {
	repo, mock := newPropertyRepoMock(t)

	mock.ExpectExec("DELETE FROM properties WHERE id =").
		WithArgs("prop-1").
		WillReturnError(&pq.Error{Code: "23503", Message: "violates foreign key constraint"})

	err := repo.Delete(context.Background(), "prop-1")
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("error = %v, want ErrConflict", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDeleteMissingPropertyIsNotFound(t *testing.T) {
	repo, mock := newPropertyRepoMock(t)

	mock.ExpectExec("DELETE FROM properties WHERE id =").
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "ghost")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDeleteRemovesProperty(t *testing.T) {
	repo, mock := newPropertyRepoMock(t)

	mock.ExpectExec("DELETE FROM properties WHERE id =").
		WithArgs("prop-2").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), "prop-2"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
