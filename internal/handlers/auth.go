package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskboard-api/internal/constants"
	"github.com/yukikurage/taskboard-api/internal/dto"
	apierrors "github.com/yukikurage/taskboard-api/internal/errors"
	"github.com/yukikurage/taskboard-api/internal/middleware"
	"github.com/yukikurage/taskboard-api/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register creates an account with its contact and returns a token.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingFailed(c, err)
		return
	}

	result, err := h.authService.Register(c.Request.Context(), services.RegisterInput{
		Email:            req.Email,
		Name:             req.Name,
		Password:         req.Password,
		RepeatedPassword: req.RepeatedPassword,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if !startSession(c, result) {
		return
	}
	c.JSON(http.StatusCreated, dto.ToAuthResponse(result, true))
}

// Login authenticates a user and initializes the session. Responds 201.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingFailed(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), services.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if !startSession(c, result) {
		return
	}
	c.JSON(http.StatusCreated, dto.ToAuthResponse(result, true))
}

// Guest logs in as the shared guest account. 201 when the account or its
// token was created by this call.
func (h *AuthHandler) Guest(c *gin.Context) {
	result, err := h.authService.GuestLogin(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if !startSession(c, result) {
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	c.JSON(status, dto.ToAuthResponse(result, false))
}

// Logout revokes the caller's token and removes the session.
func (h *AuthHandler) Logout(c *gin.Context) {
	if userID, ok := middleware.GetUserID(c); ok {
		if err := h.authService.Logout(c.Request.Context(), userID); err != nil {
			respondServiceError(c, err)
			return
		}
	}

	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to logout")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// Status reports whether the request is authenticated.
func (h *AuthHandler) Status(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusOK, dto.AuthStatusResponse{Authenticated: false})
		return
	}

	c.JSON(http.StatusOK, dto.AuthStatusResponse{
		Authenticated: true,
		Username:      user.Username,
	})
}

func startSession(c *gin.Context, result *services.AuthResult) bool {
	session := sessions.Default(c)
	session.Set(constants.ContextKeyUserID, result.User.ID)
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return false
	}
	return true
}
