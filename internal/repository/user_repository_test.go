package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepoCreateMapsDuplicates(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserRepo(db)
	nu := NewUser{Name: "Asha", Email: " Asha@Example.com ", Phone: "9812345678", PasswordHash: "x"}

	mock.ExpectExec("INSERT INTO users").
		WithArgs("Asha", "asha@example.com", "9812345678", "x", "CUSTOMER").
		WillReturnResult(sqlmock.NewResult(7, 1))
	id, err := repo.Create(context.Background(), nu)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), id)

	mock.ExpectExec("INSERT INTO users").WillReturnError(&mysql.MySQLError{
		Number: 1062, Message: "Duplicate entry 'asha@example.com' for key 'users.uq_users_email'"})
	_, err = repo.Create(context.Background(), nu)
	assert.ErrorIs(t, err, ErrEmailExists)

	mock.ExpectExec("INSERT INTO users").WillReturnError(&mysql.MySQLError{
		Number: 1062, Message: "Duplicate entry '9812345678' for key 'users.uq_users_phone'"})
	_, err = repo.Create(context.Background(), nu)
	assert.ErrorIs(t, err, ErrPhoneExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoTakenBy(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT email, phone FROM users").
		WithArgs("asha@example.com", "9812345678", uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"email", "phone"}).AddRow("other@example.com", "9812345678"))

	emailTaken, phoneTaken, err := NewUserRepo(db).TakenBy(context.Background(), "asha@example.com", "9812345678", 3)
	require.NoError(t, err)
	assert.False(t, emailTaken)
	assert.True(t, phoneTaken)
}

func TestVenueRepoDeleteWithBookings(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("DELETE FROM venues").WithArgs(uint64(3)).
		WillReturnError(&mysql.MySQLError{Number: 1451, Message: "Cannot delete or update a parent row"})
	assert.ErrorIs(t, NewVenueRepo(db).Delete(context.Background(), 3), ErrConflict)
}

func TestVenueRepoListPages(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(23))
	mock.ExpectQuery("SELECT (.+) FROM venues ORDER BY id LIMIT").WithArgs(10, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "image", "capacity", "created_at", "updated_at"}))

	venues, total, err := NewVenueRepo(db).List(context.Background(), 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 23, total)
	assert.Empty(t, venues)
	assert.NoError(t, mock.ExpectationsWereMet())
}
