package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stockledger/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newMockStockItemRepo opens the repository over sqlmock with the postgres
// dialect so the generated SQL, including row locks, can be asserted.
func newMockStockItemRepo(t *testing.T) (*GormStockItemRepository, sqlmock.Sqlmock, *testutil.MockDB) {
	t.Helper()
	mockDB := testutil.NewMockDB(t)
	return NewGormStockItemRepository(mockDB.DB), mockDB.Mock, mockDB
}

func TestGormStockItemRepository_FindByIDForUpdateLocksRow(t *testing.T) {
	repo, mock, mockDB := newMockStockItemRepo(t)
	defer mockDB.Close()

	id := uuid.New()
	mock.ExpectQuery(`SELECT \* FROM "stock_items" WHERE id = \$1 ORDER BY "stock_items"."id" LIMIT .* FOR UPDATE`).
		WithArgs(id, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByIDForUpdate(context.Background(), id)

	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStockItemRepository_FindByIDDoesNotLock(t *testing.T) {
	repo, mock, mockDB := newMockStockItemRepo(t)
	defer mockDB.Close()

	id := uuid.New()
	mock.ExpectQuery(`SELECT \* FROM "stock_items" WHERE id = \$1 ORDER BY "stock_items"."id" LIMIT [^ ]+$`).
		WithArgs(id, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByID(context.Background(), id)

	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStockItemRepository_Delete(t *testing.T) {
	t.Run("removes locations before the item", func(t *testing.T) {
		repo, mock, mockDB := newMockStockItemRepo(t)
		defer mockDB.Close()

		id := uuid.New()
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "location_entries" WHERE stock_item_id = \$1`).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(`DELETE FROM "stock_items" WHERE id = \$1`).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.Delete(context.Background(), id))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing item rolls back", func(t *testing.T) {
		repo, mock, mockDB := newMockStockItemRepo(t)
		defer mockDB.Close()

		id := uuid.New()
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "location_entries"`).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM "stock_items"`).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.Delete(context.Background(), id)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("driver errors surface unchanged", func(t *testing.T) {
		repo, mock, mockDB := newMockStockItemRepo(t)
		defer mockDB.Close()

		boom := errors.New("connection reset")
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "location_entries"`).WillReturnError(boom)
		mock.ExpectRollback()

		err := repo.Delete(context.Background(), uuid.New())
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
