package services

import (
	"context"
	"regexp"
	"testing"

	"campusbus/internal/domain"
	"campusbus/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestGetOtherUserRequiresAdmin(t *testing.T) {
	db, mock := newMock(t)
	svc := UserService{DB: db}

	student := domain.RequestContext{UserID: 8, Role: domain.RoleStudent}
	if _, err := svc.Get(context.Background(), student, 7); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = ?")).WithArgs(7).WillReturnRows(userRow(t, "pw1234", false, true))
	admin := domain.RequestContext{UserID: 1, Role: domain.RoleAdmin}
	u, err := svc.Get(context.Background(), admin, 7)
	if err != nil || u.ID != 7 {
		t.Fatalf("admin get = %+v, %v", u, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateProfileOnlyTouchesGivenFields(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET phone_number = ?, updated_at = ? WHERE id = ?")).
		WithArgs("0812", fixedNow, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = ?")).WithArgs(7).WillReturnRows(userRow(t, "pw1234", false, true))

	phone := " 0812 "
	_, err := UserService{DB: db, Now: fixedClock}.UpdateProfile(context.Background(), 7, models.ProfileUpdate{PhoneNumber: &phone})
	if err != nil {
		t.Fatalf("update error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateProfileRejectsLongPhone(t *testing.T) {
	db, _ := newMock(t)
	phone := "0812345678901234567"
	_, err := UserService{DB: db}.UpdateProfile(context.Background(), 7, models.ProfileUpdate{PhoneNumber: &phone})
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
