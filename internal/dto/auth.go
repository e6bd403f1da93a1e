package dto

import (
	"github.com/yukikurage/taskboard-api/internal/models"
	"github.com/yukikurage/taskboard-api/internal/services"
)

// LoginRequest is the body of a login request
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest is the body of a registration request. Field checks live
// in the service so every failing rule is reported together.
type RegisterRequest struct {
	Email            string `json:"email"`
	Name             string `json:"name"`
	Password         string `json:"password"`
	RepeatedPassword string `json:"repeated_password"`
}

// AuthResponse echoes the authenticated account. ID is the linked contact.
type AuthResponse struct {
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Token    string  `json:"token"`
	ID       *string `json:"id"`
	Name     *string `json:"name,omitempty"`
}

// AuthStatusResponse reports whether the request carries valid credentials
type AuthStatusResponse struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
}

// ProfileRequest is the body of a profile update
type ProfileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email" binding:"omitempty,max=254"`
}

// ProfileDTO represents the current account with its contact
type ProfileDTO struct {
	ID        uint64      `json:"id"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Contact   *ContactDTO `json:"contact"`
}

// ToAuthResponse builds the login/registration response. The guest
// response leaves out the name.
func ToAuthResponse(result *services.AuthResult, includeName bool) AuthResponse {
	resp := AuthResponse{
		Username: result.User.Username,
		Email:    result.User.Email,
		Token:    result.Token.Key,
	}
	if result.Contact != nil {
		resp.ID = &result.Contact.ID
	}
	if includeName {
		name := result.User.FirstName + " " + result.User.LastName
		resp.Name = &name
	}
	return resp
}

// ToProfileDTO converts a user and its optional contact
func ToProfileDTO(user models.User, contact *models.Contact) ProfileDTO {
	profile := ProfileDTO{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
	if contact != nil {
		c := ToContactDTO(*contact)
		profile.Contact = &c
	}
	return profile
}
