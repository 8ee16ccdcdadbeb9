package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"campusbus/internal/domain"
	"campusbus/internal/domain/models"
	"campusbus/internal/repositories"
	"campusbus/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

var errBadCredentials = domain.UnauthorizedError{Msg: "invalid email/username or password"}

// AuthService issues and verifies HS256 bearer tokens.
type AuthService struct {
	DB         *sql.DB
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Now        func() time.Time
	RequestID  string
}

type TokenPair struct {
	Access  string
	Refresh string
	User    models.User
}

// Claims is what the auth middleware needs from a validated token.
type Claims struct {
	UserID int64
	Role   string
}

func (s AuthService) now() time.Time { return nowOrDefault(s.Now) }

func (s AuthService) sign(u models.User, typ string, ttl time.Duration) (string, error) {
	if len(s.Secret) == 0 {
		return "", domain.InternalError{Msg: "jwt secret not configured"}
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": u.ID,
		"role":    u.Role(),
		"type":    typ,
		"iat":     s.now().Unix(),
		"exp":     s.now().Add(ttl).Unix(),
	})
	return token.SignedString(s.Secret)
}

func (s AuthService) issue(u models.User) (TokenPair, error) {
	access, err := s.sign(u, tokenTypeAccess, s.AccessTTL)
	if err != nil {
		return TokenPair{}, domain.Internal(err)
	}
	refresh, err := s.sign(u, tokenTypeRefresh, s.RefreshTTL)
	if err != nil {
		return TokenPair{}, domain.Internal(err)
	}
	return TokenPair{Access: access, Refresh: refresh, User: u}, nil
}

// Register creates a student account. A blank username defaults to the email.
func (s AuthService) Register(ctx context.Context, in models.RegisterInput) (models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = utils.FirstNonEmpty(in.Username, in.Email)
	in.FirstName = utils.NormalizeSpace(in.FirstName)
	in.LastName = utils.NormalizeSpace(in.LastName)
	in.StudentID = strings.TrimSpace(in.StudentID)
	in.PhoneNumber = utils.NormalizePhone(in.PhoneNumber)
	if err := validateInput(in); err != nil {
		return models.User{}, err
	}
	if in.ConfirmPassword != "" && in.ConfirmPassword != in.Password {
		return models.User{}, domain.ValidationError{Field: "confirm_password", Msg: "passwords do not match"}
	}

	users := repositories.UserRepository{DB: dbOrDefault(s.DB)}
	exists, err := users.ExistsByEmailOrUsername(ctx, in.Email, in.Username)
	if err != nil {
		return models.User{}, domain.InternalError{Err: err}
	}
	if exists {
		return models.User{}, domain.ConflictError{Resource: "user", Msg: "email or username already registered"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, domain.InternalError{Msg: "failed to hash password", Err: err}
	}
	now := s.now()
	u := models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		StudentID:    in.StudentID,
		PhoneNumber:  in.PhoneNumber,
		IsStudent:    true,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := users.Insert(ctx, &u); err != nil {
		return models.User{}, writeErr(err, "user")
	}
	utils.LogEvent(s.RequestID, "auth", "register", fmt.Sprintf("user_id=%d", u.ID))
	return u, nil
}

// Login accepts either email or username. Unknown users and wrong passwords
// get the same error.
func (s AuthService) Login(ctx context.Context, login, password string) (TokenPair, error) {
	if strings.TrimSpace(login) == "" || password == "" {
		return TokenPair{}, domain.ValidationError{Field: "email", Msg: "email and password are required"}
	}
	u, err := repositories.UserRepository{DB: dbOrDefault(s.DB)}.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return TokenPair{}, errBadCredentials
		}
		return TokenPair{}, domain.InternalError{Err: err}
	}
	if !u.IsActive {
		return TokenPair{}, domain.UnauthorizedError{Msg: "account is disabled"}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return TokenPair{}, errBadCredentials
	}
	utils.LogEvent(s.RequestID, "auth", "login", fmt.Sprintf("user_id=%d", u.ID))
	return s.issue(u)
}

// Refresh exchanges a valid refresh token for a new pair. The user is
// reloaded so role changes and deactivation take effect.
func (s AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	c, err := s.parse(refreshToken, tokenTypeRefresh)
	if err != nil {
		return TokenPair{}, err
	}
	u, err := repositories.UserRepository{DB: dbOrDefault(s.DB)}.GetByID(ctx, c.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return TokenPair{}, domain.UnauthorizedError{Msg: "invalid token"}
		}
		return TokenPair{}, domain.InternalError{Err: err}
	}
	if !u.IsActive {
		return TokenPair{}, domain.UnauthorizedError{Msg: "account is disabled"}
	}
	return s.issue(u)
}

func (s AuthService) ParseAccessToken(raw string) (Claims, error) {
	return s.parse(raw, tokenTypeAccess)
}

func (s AuthService) parse(raw, wantType string) (Claims, error) {
	if strings.TrimSpace(raw) == "" {
		return Claims{}, domain.UnauthorizedError{Msg: "missing token"}
	}
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		return s.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return Claims{}, domain.UnauthorizedError{Msg: "invalid token"}
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, domain.UnauthorizedError{Msg: "invalid token"}
	}
	if typ, _ := mc["type"].(string); typ != wantType {
		return Claims{}, domain.UnauthorizedError{Msg: "invalid token type"}
	}
	// numbers decode as float64 from MapClaims
	id, ok := mc["user_id"].(float64)
	if !ok || id <= 0 {
		return Claims{}, domain.UnauthorizedError{Msg: "invalid token"}
	}
	role, _ := mc["role"].(string)
	return Claims{UserID: int64(id), Role: role}, nil
}
