package repository

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"soundcrate/model"
)

func newMockUserRepo(t *testing.T) (UserRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	return NewMySQLUserRepository(db), mock, func() { db.Close() }
}

func TestCreateUserMapsDuplicateEntry(t *testing.T) {
	repo, mock, closeDB := newMockUserRepo(t)
	defer closeDB()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).
		WithArgs("user@example.com", "hash").
		WillReturnError(errors.New("Error 1062: Duplicate entry 'user@example.com' for key 'users.email'"))

	_, err := repo.CreateUser(&model.User{Email: "user@example.com", PasswordHash: "hash"})
	if !errors.Is(err, ErrDuplicateUser) {
		t.Errorf("err = %v, want ErrDuplicateUser", err)
	}
}

func TestGetUserByEmailNotFound(t *testing.T) {
	repo, mock, closeDB := newMockUserRepo(t)
	defer closeDB()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, email, password_hash, created_at FROM users WHERE email = ?`)).
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "created_at"}))

	user, err := repo.GetUserByEmail("nobody@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if user != nil {
		t.Errorf("user = %+v, want nil for missing row", user)
	}
}

func TestGetUserByEmail(t *testing.T) {
	repo, mock, closeDB := newMockUserRepo(t)
	defer closeDB()

	created := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, email, password_hash, created_at FROM users WHERE email = ?`)).
		WithArgs("user@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "created_at"}).
			AddRow(int64(42), "user@example.com", "hash", created))

	user, err := repo.GetUserByEmail("user@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if user.ID != 42 || user.Email != "user@example.com" {
		t.Errorf("user = %+v", user)
	}
}
