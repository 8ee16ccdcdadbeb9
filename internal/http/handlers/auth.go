package handlers

import (
	"net/http"
	"strings"

	intconfig "campusbus/internal/config"
	"campusbus/internal/domain/models"
	"campusbus/internal/http/middleware"
	"campusbus/internal/services"

	"github.com/gin-gonic/gin"
)

var authCfg = services.AuthService{Secret: []byte("super-secret-key-change-me")}

// ConfigureAuth sets the signing secret and token lifetimes from env.
func ConfigureAuth(env intconfig.Env) {
	authCfg = services.AuthService{
		Secret:     []byte(env.JWTSecret),
		AccessTTL:  env.JWTAccessTTL,
		RefreshTTL: env.JWTRefreshTTL,
	}
}

func authService(c *gin.Context) services.AuthService {
	svc := authCfg
	svc.RequestID = middleware.GetRequestID(c)
	return svc
}

// AccessTokenParser adapts access-token validation for middleware.Auth.
func AccessTokenParser() middleware.TokenParser {
	return func(token string) (int64, string, error) {
		claims, err := authCfg.ParseAccessToken(token)
		if err != nil {
			return 0, "", err
		}
		return claims.UserID, claims.Role, nil
	}
}

// registerRequest accepts both the camelCase names the web client sends and
// the snake_case ones.
type registerRequest struct {
	Username        Stringish `json:"username"`
	Email           Stringish `json:"email"`
	Password        string    `json:"password"`
	ConfirmPassword string    `json:"confirm_password"`
	ConfirmCamel    string    `json:"confirmPassword"`

	FirstName      Stringish `json:"first_name"`
	FirstNameCamel Stringish `json:"firstName"`
	LastName       Stringish `json:"last_name"`
	LastNameCamel  Stringish `json:"lastName"`

	StudentID      Stringish `json:"student_id"`
	StudentIDCamel Stringish `json:"studentId"`
	Phone          Stringish `json:"phone_number"`
	PhoneCamel     Stringish `json:"phoneNumber"`
	PhoneAlt       Stringish `json:"phone"`
}

// POST /api/auth/register
func Register(c *gin.Context) {
	var req registerRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	confirm := req.ConfirmPassword
	if confirm == "" {
		confirm = req.ConfirmCamel
	}
	in := models.RegisterInput{
		Username:        req.Username.String(),
		Email:           req.Email.String(),
		Password:        req.Password,
		ConfirmPassword: confirm,
		FirstName:       firstSet(req.FirstName, req.FirstNameCamel).String(),
		LastName:        firstSet(req.LastName, req.LastNameCamel).String(),
		StudentID:       firstSet(req.StudentID, req.StudentIDCamel).String(),
		PhoneNumber:     firstSet(req.Phone, req.PhoneCamel, req.PhoneAlt).String(),
	}

	u, err := authService(c).Register(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "registration successful", "user": toUser(u)})
}

type loginRequest struct {
	Email    Stringish `json:"email"`
	Username Stringish `json:"username"`
	Password string    `json:"password"`
}

// POST /api/auth/login
func Login(c *gin.Context) {
	var req loginRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	login := firstSet(req.Email, req.Username).String()
	pair, err := authService(c).Login(c.Request.Context(), login, req.Password)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTokens(pair))
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// POST /api/auth/refresh
func Refresh(c *gin.Context) {
	var req refreshRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if strings.TrimSpace(req.Refresh) == "" {
		respondError(c, http.StatusBadRequest, "validation_error", "refresh token is required", gin.H{"field": "refresh"})
		return
	}

	pair, err := authService(c).Refresh(c.Request.Context(), strings.TrimSpace(req.Refresh))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTokens(pair))
}
