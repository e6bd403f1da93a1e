package middleware

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskboard-api/internal/constants"
	apierrors "github.com/yukikurage/taskboard-api/internal/errors"
	"github.com/yukikurage/taskboard-api/internal/models"
	"github.com/yukikurage/taskboard-api/internal/policy/contactpolicy"
	"github.com/yukikurage/taskboard-api/internal/services"
)

// ContactFinder loads visible contacts
type ContactFinder interface {
	GetContact(ctx context.Context, id string) (*models.Contact, error)
}

// LoadContact loads the contact named by the :id parameter. Contacts hidden
// from listings are reported as not found.
func LoadContact(contacts ContactFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		contact, err := contacts.GetContact(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, services.ErrContactNotFound) {
				apierrors.NotFound(c, "")
				return
			}
			apierrors.InternalError(c, "")
			return
		}

		c.Set(constants.ContextKeyContact, contact)
		c.Next()
	}
}

// RequireContactAccess applies the contact access policy to the loaded
// contact. Reads are always allowed.
func RequireContactAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetCurrentUser(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			return
		}

		contact, ok := GetContact(c)
		if !ok {
			apierrors.InternalError(c, "Contact not loaded")
			return
		}

		if !contactpolicy.CanAccess(user, contact, c.Request.Method) {
			apierrors.Forbidden(c, "")
			return
		}

		c.Next()
	}
}

// GetContact retrieves the contact set by LoadContact
func GetContact(c *gin.Context) (*models.Contact, bool) {
	value, exists := c.Get(constants.ContextKeyContact)
	if !exists {
		return nil, false
	}
	contact, ok := value.(*models.Contact)
	return contact, ok
}
