package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestCreateWithPaymentCommitsBothRows(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRentalRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT film_id FROM inventory").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"film_id"}).AddRow(3))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"open"}).AddRow(false))
	mock.ExpectQuery("SELECT rental_rate FROM film").
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"rental_rate"}).AddRow(4.99))
	mock.ExpectExec("INSERT INTO rental").
		WithArgs(sqlmock.AnyArg(), uint64(7), uint64(1), uint64(2), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(101, 1))
	mock.ExpectExec("INSERT INTO payment").
		WithArgs(uint64(1), uint64(2), int64(101), 4.99, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(202, 1))
	mock.ExpectCommit()

	receipt, err := repo.CreateWithPayment(context.Background(), 7, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(101), receipt.RentalID)
	assert.Equal(t, uint64(202), receipt.PaymentID)
	assert.Equal(t, uint64(7), receipt.InventoryID)
	assert.InDelta(t, 4.99, receipt.Amount, 0.001)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithPaymentRollsBackOnPaymentFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRentalRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT film_id FROM inventory").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"film_id"}).AddRow(3))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"open"}).AddRow(false))
	mock.ExpectQuery("SELECT rental_rate FROM film").
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"rental_rate"}).AddRow(4.99))
	mock.ExpectExec("INSERT INTO rental").
		WithArgs(sqlmock.AnyArg(), uint64(7), uint64(1), uint64(2), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(101, 1))
	mock.ExpectExec("INSERT INTO payment").
		WillReturnError(errors.New("payment table gone"))
	mock.ExpectRollback()

	receipt, err := repo.CreateWithPayment(context.Background(), 7, 1, 2)
	require.Error(t, err)
	assert.Nil(t, receipt)
	assert.NoError(t, mock.ExpectationsWereMet(), "a failed payment insert must roll back the rental row")
}

func TestCreateWithPaymentUnavailable(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRentalRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT film_id FROM inventory").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"film_id"}).AddRow(3))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"open"}).AddRow(true))
	mock.ExpectRollback()

	_, err := repo.CreateWithPayment(context.Background(), 7, 1, 2)
	assert.ErrorIs(t, err, ErrInventoryUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet(), "no rental or payment row may be written for an unavailable copy")
}

func TestCreateWithPaymentUnknownInventory(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRentalRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT film_id FROM inventory").
		WithArgs(uint64(999)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.CreateWithPayment(context.Background(), 999, 1, 2)
	assert.ErrorIs(t, err, ErrInventoryNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReturnStampsReturnDate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRentalRepo(db)

	mock.ExpectExec("UPDATE rental SET return_date").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	returnedAt, err := repo.Return(context.Background(), 9)
	require.NoError(t, err)
	assert.False(t, returnedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReturnUnknownRental(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRentalRepo(db)

	mock.ExpectExec("UPDATE rental SET return_date").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), uint64(999)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.Return(context.Background(), 999)
	assert.ErrorIs(t, err, ErrRentalNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
