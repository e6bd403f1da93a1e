package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/taskboard-api/internal/contactsync"
	"github.com/yukikurage/taskboard-api/internal/models"
	"github.com/yukikurage/taskboard-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AccountService manages the authenticated user's own account.
type AccountService struct {
	store repository.Store
	sync  *contactsync.Syncer
	log   *zap.Logger
}

// NewAccountService creates a new AccountService.
func NewAccountService(store repository.Store, sync *contactsync.Syncer, log *zap.Logger) *AccountService {
	return &AccountService{store: store, sync: sync, log: log}
}

// ProfileInput holds the profile fields a user may change. Nil fields are
// left untouched.
type ProfileInput struct {
	FirstName *string
	LastName  *string
	Email     *string
}

// Profile returns the user's linked contact, or nil when there is none.
func (s *AccountService) Profile(ctx context.Context, user *models.User) (*models.Contact, error) {
	contact, err := s.store.Contacts().FindByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find contact: %w", err)
	}
	return contact, nil
}

// UpdateProfile changes the user's name or email and mirrors the change onto
// the linked contact.
func (s *AccountService) UpdateProfile(ctx context.Context, user *models.User, input ProfileInput) (*models.User, error) {
	verr := &ValidationError{}

	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		switch {
		case email == "":
			verr.Add("email", msgBlank)
		case !validEmail(email):
			verr.Add("email", msgInvalidEmail)
		case !checkLength(verr, "email", email, maxEmailLength):
		case !strings.EqualFold(email, user.Email):
			if err := s.checkEmailAvailable(ctx, user, email, verr); err != nil {
				return nil, err
			}
		}
		input.Email = &email
	}
	if input.FirstName != nil {
		checkLength(verr, "first_name", strings.TrimSpace(*input.FirstName), maxPersonNameLength)
	}
	if input.LastName != nil {
		checkLength(verr, "last_name", strings.TrimSpace(*input.LastName), maxPersonNameLength)
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		user.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		user.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.Email != nil {
		user.Email = *input.Email
	}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Users().Update(ctx, user); err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		s.sync.AccountUpdated(ctx, tx, user)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (s *AccountService) checkEmailAvailable(ctx context.Context, user *models.User, email string, verr *ValidationError) error {
	taken, err := s.store.Users().EmailTaken(ctx, email, user.ID)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		verr.Add("email", msgEmailExists)
		return nil
	}

	var ownContactID string
	if contact, err := s.store.Contacts().FindByUserID(ctx, user.ID); err == nil {
		ownContactID = contact.ID
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to find contact: %w", err)
	}

	taken, err = s.store.Contacts().EmailTaken(ctx, email, ownContactID)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		verr.Add("email", msgContactExists)
	}
	return nil
}

// Delete removes the user's account. The linked contact stays and is
// unlinked.
func (s *AccountService) Delete(ctx context.Context, user *models.User) error {
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		s.sync.AccountDeleting(ctx, tx, user)
		if err := tx.Users().Delete(ctx, user.ID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("account deleted", zap.Uint64("user_id", user.ID), zap.String("username", user.Username))
	return nil
}
