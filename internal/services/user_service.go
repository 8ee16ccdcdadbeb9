package services

import (
	"context"
	"database/sql"
	"time"

	"campusbus/internal/domain"
	"campusbus/internal/domain/models"
	"campusbus/internal/repositories"
	"campusbus/internal/utils"
)

type UserService struct {
	DB  *sql.DB
	Now func() time.Time
}

// Get returns the user; callers other than the user or an admin see NotFound.
func (s UserService) Get(ctx context.Context, rc domain.RequestContext, id int64) (models.User, error) {
	if int64(rc.UserID) != id && !rc.IsAdmin() {
		return models.User{}, domain.NotFoundError{Resource: "user"}
	}
	u, err := repositories.UserRepository{DB: dbOrDefault(s.DB)}.GetByID(ctx, id)
	if err != nil {
		return models.User{}, lookupErr(err, "user")
	}
	return u, nil
}

func (s UserService) UpdateProfile(ctx context.Context, userID int64, upd models.ProfileUpdate) (models.User, error) {
	if upd.PhoneNumber != nil {
		p := utils.NormalizePhone(*upd.PhoneNumber)
		if len(p) > 15 {
			return models.User{}, domain.ValidationError{Field: "phone_number", Msg: "must be at most 15 characters"}
		}
		upd.PhoneNumber = &p
	}
	if upd.StudentID != nil && len(*upd.StudentID) > 20 {
		return models.User{}, domain.ValidationError{Field: "student_id", Msg: "must be at most 20 characters"}
	}
	users := repositories.UserRepository{DB: dbOrDefault(s.DB)}
	if err := users.UpdateProfile(ctx, userID, upd, nowOrDefault(s.Now)); err != nil {
		return models.User{}, writeErr(err, "user")
	}
	u, err := users.GetByID(ctx, userID)
	if err != nil {
		return models.User{}, lookupErr(err, "user")
	}
	return u, nil
}
