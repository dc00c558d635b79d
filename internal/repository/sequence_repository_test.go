package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/milfin/milfin-api/internal/models"
)

func newMockSequenceRepository(t *testing.T) (SequenceRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewSequenceRepository(gormDB), mock, mockDB
}

func TestSequenceRepository_NextValue(t *testing.T) {
	t.Run("reserves the next value via upsert", func(t *testing.T) {
		repo, mock, mockDB := newMockSequenceRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`(?s)INSERT INTO document_sequences.*ON CONFLICT \(scope, year\).*RETURNING value`).
			WithArgs(models.SequenceScopeOrder, 2026).
			WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(7))

		value, err := repo.NextValue(context.Background(), models.SequenceScopeOrder, 2026)
		assert.NoError(t, err)
		assert.Equal(t, 7, value)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("propagates database errors", func(t *testing.T) {
		repo, mock, mockDB := newMockSequenceRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`INSERT INTO document_sequences`).
			WillReturnError(sql.ErrConnDone)

		_, err := repo.NextValue(context.Background(), models.SequenceScopeDebt, 2026)
		assert.Error(t, err)
	})
}

func TestSequenceRepository_NextDocumentNumber(t *testing.T) {
	repo, mock, mockDB := newMockSequenceRepository(t)
	defer mockDB.Close()

	mock.ExpectQuery(`INSERT INTO document_sequences`).
		WithArgs(models.SequenceScopeAllocation, 2026).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(12))

	number, err := repo.NextDocumentNumber(context.Background(), models.SequenceScopeAllocation, 2026)
	assert.NoError(t, err)
	assert.Equal(t, "ALO-2026-012", number)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFormatDocumentNumber(t *testing.T) {
	assert.Equal(t, "ORD-2026-001", models.FormatDocumentNumber(models.SequenceScopeOrder, 2026, 1))
	assert.Equal(t, "PLN-2025-120", models.FormatDocumentNumber(models.SequenceScopePlan, 2025, 120))
}
