package dto

import (
	"github.com/yukikurage/taskboard-api/internal/models"
	"github.com/yukikurage/taskboard-api/internal/services"
	"github.com/yukikurage/taskboard-api/internal/utils"
)

// ContactDTO represents a contact in API responses
type ContactDTO struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Phone           *string `json:"phone"`
	Initials        *string `json:"initials"`
	Avatar          *string `json:"avatar"`
	IsAccountLinked bool    `json:"is_account_linked"`
}

// ContactRequest is the body of contact create, replace and patch requests.
// Absent fields are nil; is_account_linked is not writable.
type ContactRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Initials *string `json:"initials"`
	Avatar   *string `json:"avatar"`
}

// ContactListResponse represents a paginated list of contacts
type ContactListResponse struct {
	Contacts   []ContactDTO             `json:"contacts"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToContactDTO converts a Contact model to ContactDTO
func ToContactDTO(contact models.Contact) ContactDTO {
	return ContactDTO{
		ID:              contact.ID,
		Name:            contact.Name,
		Email:           contact.Email,
		Phone:           contact.Phone,
		Initials:        contact.Initials,
		Avatar:          contact.Avatar,
		IsAccountLinked: contact.IsAccountLinked,
	}
}

// ToContactListResponse converts a page of contacts
func ToContactListResponse(contacts []models.Contact, params utils.PaginationParams, total int64) ContactListResponse {
	items := make([]ContactDTO, len(contacts))
	for i, contact := range contacts {
		items[i] = ToContactDTO(contact)
	}
	return ContactListResponse{
		Contacts: items,
		Pagination: utils.NewPaginationResponse(params, total),
	}
}

// Input converts the request into service input
func (r ContactRequest) Input() services.ContactInput {
	return services.ContactInput{
		Name:     r.Name,
		Email:    r.Email,
		Phone:    r.Phone,
		Initials: r.Initials,
		Avatar:   r.Avatar,
	}
}
