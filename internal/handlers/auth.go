package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chachabrian/ridehail-backend/internal/middleware"
	"github.com/chachabrian/ridehail-backend/internal/services"
)

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RegisterInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone"`
}

// Register is the public rider sign-up
func Register(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input RegisterInput
		if !bindJSON(c, &input) {
			return
		}

		session, err := auth.RegisterRider(c.Request.Context(), services.RegisterInput(input))
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, session)
	}
}

// Login signs in riders and admins
func Login(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input LoginInput
		if !bindJSON(c, &input) {
			return
		}

		session, err := auth.Login(c.Request.Context(), input.Email, input.Password)
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, session)
	}
}

func DriverLogin(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input LoginInput
		if !bindJSON(c, &input) {
			return
		}

		session, err := auth.DriverLogin(c.Request.Context(), input.Email, input.Password)
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, session)
	}
}
