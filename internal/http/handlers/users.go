package handlers

import (
	"net/http"

	"campusbus/internal/domain/models"
	"campusbus/internal/http/middleware"
	"campusbus/internal/services"

	"github.com/gin-gonic/gin"
)

// GET /api/users/me
func Me(c *gin.Context) {
	rc := requestContext(c)
	u, err := services.UserService{}.Get(c.Request.Context(), rc, int64(rc.UserID))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUser(u))
}

// GET /api/users/:id
func GetUser(c *gin.Context) {
	id, ok := idParam(c, "id", "user")
	if !ok {
		return
	}
	u, err := services.UserService{}.Get(c.Request.Context(), requestContext(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUser(u))
}

// profileRequest uses pointers so absent keys leave the column alone.
type profileRequest struct {
	FirstName      *string `json:"first_name"`
	FirstNameCamel *string `json:"firstName"`
	LastName       *string `json:"last_name"`
	LastNameCamel  *string `json:"lastName"`
	PhoneNumber    *string `json:"phone_number"`
	PhoneCamel     *string `json:"phoneNumber"`
	StudentID      *string `json:"student_id"`
	StudentIDCamel *string `json:"studentId"`
}

func firstPtr(vals ...*string) *string {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

// PUT /api/users/me
func UpdateMe(c *gin.Context) {
	var req profileRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	upd := models.ProfileUpdate{
		FirstName:   firstPtr(req.FirstName, req.FirstNameCamel),
		LastName:    firstPtr(req.LastName, req.LastNameCamel),
		PhoneNumber: firstPtr(req.PhoneNumber, req.PhoneCamel),
		StudentID:   firstPtr(req.StudentID, req.StudentIDCamel),
	}
	u, err := services.UserService{}.UpdateProfile(c.Request.Context(), middleware.UserID(c), upd)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUser(u))
}
