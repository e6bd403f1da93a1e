package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskboard-api/internal/constants"
	apierrors "github.com/yukikurage/taskboard-api/internal/errors"
	"github.com/yukikurage/taskboard-api/internal/models"
	"github.com/yukikurage/taskboard-api/internal/services"
)

// Authenticator resolves request credentials to users
type Authenticator interface {
	Authenticate(ctx context.Context, key string) (*models.User, error)
	GetUser(ctx context.Context, id uint64) (*models.User, error)
}

// RequireAuth authenticates the request with an "Authorization: Token <key>"
// header, falling back to the session cookie
func RequireAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := resolveUser(c, auth)
		if err != nil {
			if errors.Is(err, services.ErrInvalidToken) {
				apierrors.Unauthorized(c, "Invalid token.")
				return
			}
			apierrors.InternalError(c, "")
			return
		}
		if user == nil {
			apierrors.Unauthorized(c, "")
			return
		}

		c.Next()
	}
}

// OptionalAuth stores the user in the context when the request carries valid
// credentials and never rejects it
func OptionalAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, _ = resolveUser(c, auth)
		c.Next()
	}
}

func resolveUser(c *gin.Context, auth Authenticator) (*models.User, error) {
	if key, ok := tokenFromHeader(c); ok {
		user, err := auth.Authenticate(c.Request.Context(), key)
		if err != nil {
			return nil, err
		}
		setUser(c, user)
		c.Set(constants.ContextKeyToken, key)
		return user, nil
	}

	session := sessions.Default(c)
	id, ok := sessionUserID(session.Get(constants.ContextKeyUserID))
	if !ok {
		return nil, nil
	}

	user, err := auth.GetUser(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, nil
	}

	setUser(c, user)
	return user, nil
}

func tokenFromHeader(c *gin.Context) (string, bool) {
	scheme, key, found := strings.Cut(strings.TrimSpace(c.GetHeader("Authorization")), " ")
	if !found || !strings.EqualFold(scheme, constants.AuthHeaderScheme) {
		return "", false
	}
	key = strings.TrimSpace(key)
	return key, key != ""
}

func setUser(c *gin.Context, user *models.User) {
	c.Set(constants.ContextKeyUserID, user.ID)
	c.Set(constants.ContextKeyUser, user)
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}
	return sessionUserID(userID)
}

// GetCurrentUser retrieves the authenticated user from context
func GetCurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok && user != nil
}

func sessionUserID(userID any) (uint64, bool) {
	switch v := userID.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}
