package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/taskboard-api/internal/constants"
	"github.com/yukikurage/taskboard-api/internal/contactsync"
	"github.com/yukikurage/taskboard-api/internal/models"
	"github.com/yukikurage/taskboard-api/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService handles authentication related business logic.
type AuthService struct {
	store         repository.Store
	sync          *contactsync.Syncer
	log           *zap.Logger
	guestPassword string
}

// NewAuthService creates a new AuthService.
func NewAuthService(store repository.Store, sync *contactsync.Syncer, log *zap.Logger, guestPassword string) *AuthService {
	return &AuthService{
		store:         store,
		sync:          sync,
		log:           log,
		guestPassword: guestPassword,
	}
}

// AuthResult is returned by every successful authentication.
type AuthResult struct {
	User    *models.User
	Token   *models.Token
	Contact *models.Contact
	// Created reports whether the user or its token was created by the call.
	Created bool
}

// RegisterInput represents the information needed to create an account.
type RegisterInput struct {
	Email            string
	Name             string
	Password         string
	RepeatedPassword string
}

// Register validates input, creates the account with its contact and issues
// a token, all in one transaction.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email := normalizeEmail(input.Email)

	verr := &ValidationError{}
	switch {
	case email == "":
		verr.Add("email", msgRequired)
	case !validEmail(email):
		verr.Add("email", msgInvalidEmail)
	case !checkLength(verr, "email", email, maxUsernameLength):
	default:
		taken, err := s.store.Users().EmailTaken(ctx, email, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if taken {
			verr.Add("email", msgEmailExists)
		}
	}

	for _, msg := range ValidatePassword(input.Password) {
		verr.Add("password", msg)
	}
	first, last := registrationName(input.Name)
	if checkLength(verr, "name", first, maxPersonNameLength) {
		checkLength(verr, "name", last, maxPersonNameLength)
	}
	if input.Password != input.RepeatedPassword {
		verr.Add(NonFieldErrors, "Passwords do not match.")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	login := strings.ToLower(email)
	user := &models.User{
		Username:     login,
		Email:        login,
		FirstName:    first,
		LastName:     last,
		PasswordHash: string(hashedPassword),
		IsActive:     true,
	}

	result := &AuthResult{User: user, Created: true}
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Users().Create(ctx, user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return NewValidationError("email", msgEmailExists)
			}
			return fmt.Errorf("failed to create user: %w", err)
		}

		contact, err := s.sync.AccountCreated(ctx, tx, user)
		if err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return NewValidationError("email", msgEmailExists)
			}
			return fmt.Errorf("failed to create contact: %w", err)
		}
		result.Contact = contact

		token, _, err := tx.Tokens().GetOrCreate(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("failed to issue token: %w", err)
		}
		result.Token = token
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("user registered", zap.Uint64("user_id", user.ID), zap.String("username", user.Username))
	return result, nil
}

// registrationName takes the first word as first name and the second word,
// if any, as last name.
func registrationName(name string) (first, last string) {
	parts := strings.Fields(name)
	if len(parts) > 0 {
		first = parts[0]
	}
	if len(parts) > 1 {
		last = parts[1]
	}
	return first, last
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Username string
	Password string
}

// Login verifies credentials and returns the user with its token.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.store.Users().FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, created, err := s.store.Tokens().GetOrCreate(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	contact, err := s.linkedContact(ctx, s.store, user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Token: token, Contact: contact, Created: created}, nil
}

// GuestLogin returns the shared guest account, creating it on first use. The
// guest row is locked for the duration of the transaction and the token is
// issued inside it, so concurrent first logins cannot create two guests.
func (s *AuthService) GuestLogin(ctx context.Context) (*AuthResult, error) {
	result, err := s.guestLogin(ctx)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Another request created the guest between our lookup and insert.
		s.log.Info("guest account created concurrently, retrying")
		result, err = s.guestLogin(ctx)
	}
	return result, err
}

func (s *AuthService) guestLogin(ctx context.Context) (*AuthResult, error) {
	result := &AuthResult{}
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		user, err := tx.Users().FindByUsernameForUpdate(ctx, constants.GuestUsername)
		switch {
		case err == nil:
		case errors.Is(err, gorm.ErrRecordNotFound):
			user, err = s.createGuest(ctx, tx)
			if err != nil {
				return err
			}
			result.Created = true
		default:
			return fmt.Errorf("failed to find guest user: %w", err)
		}
		result.User = user

		token, created, err := tx.Tokens().GetOrCreate(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("failed to issue token: %w", err)
		}
		result.Token = token
		result.Created = result.Created || created

		contact, err := s.linkedContact(ctx, tx, user)
		if err != nil {
			return err
		}
		result.Contact = contact
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (s *AuthService) createGuest(ctx context.Context, tx repository.Store) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(s.guestPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Username:     constants.GuestUsername,
		Email:        constants.GuestEmail,
		FirstName:    constants.GuestFirstName,
		LastName:     constants.GuestLastName,
		PasswordHash: string(hashedPassword),
		IsActive:     true,
	}
	if err := tx.Users().Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create guest user: %w", err)
	}

	if _, err := s.sync.AccountCreated(ctx, tx, user); err != nil {
		return nil, fmt.Errorf("failed to create guest contact: %w", err)
	}

	s.log.Info("guest account created", zap.Uint64("user_id", user.ID))
	return user, nil
}

// Logout revokes the user's token.
func (s *AuthService) Logout(ctx context.Context, userID uint64) error {
	if err := s.store.Tokens().DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// Authenticate resolves an API token to its active user.
func (s *AuthService) Authenticate(ctx context.Context, key string) (*models.User, error) {
	token, err := s.store.Tokens().FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to find token: %w", err)
	}

	user, err := s.GetUser(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInvalidToken
	}
	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

func (s *AuthService) linkedContact(ctx context.Context, store repository.Store, user *models.User) (*models.Contact, error) {
	contact, err := store.Contacts().FindByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Warn("account has no linked contact", zap.Uint64("user_id", user.ID))
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find contact: %w", err)
	}
	return contact, nil
}
