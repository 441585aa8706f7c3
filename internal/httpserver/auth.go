package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	usersvc "github.com/SUHAIBCHEMBAN/autozen/internal/service/user"
)

type loginRequest struct {
	Identifier string `json:"identifier"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

func registerHandler(auth AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in usersvc.RegisterInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		user, err := auth.Register(c.Request.Context(), in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"user": user})
	}
}

func loginHandler(auth AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		identifier := req.Identifier
		if identifier == "" {
			identifier = req.Email
		}
		user, token, err := auth.Login(c.Request.Context(), identifier, req.Password)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"token":     token,
			"expiresIn": auth.TokenTTLSeconds(),
			"user":      user,
		})
	}
}

func logoutHandler(auth AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := auth.Logout(c.Request.Context(), bearerToken(c)); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "logged out"})
	}
}

func meHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": currentUser(c)})
	}
}
