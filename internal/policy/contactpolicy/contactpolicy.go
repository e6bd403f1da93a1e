// Package contactpolicy decides who may change a contact.
//
// Authorization rules:
//   - Reads are always allowed once the route has authenticated the caller
//   - The account holder linked to a contact may change it
//   - Unlinked contacts may be changed by any authenticated user except the guest
package contactpolicy

import (
	"net/http"

	"github.com/yukikurage/taskboard-api/internal/models"
)

// CanMutate reports whether actor may update or delete contact. A nil actor
// is unauthenticated.
func CanMutate(actor *models.User, contact *models.Contact) bool {
	if actor == nil || contact == nil {
		return false
	}

	if contact.UserID != nil {
		return *contact.UserID == actor.ID
	}

	return !actor.IsGuest()
}

// CanAccess applies CanMutate to unsafe methods and allows safe ones.
func CanAccess(actor *models.User, contact *models.Contact, method string) bool {
	if IsSafeMethod(method) {
		return true
	}
	return CanMutate(actor, contact)
}

// IsSafeMethod reports whether method is read-only.
func IsSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
