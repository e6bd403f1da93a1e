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
	"github.com/yukikurage/taskboard-api/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HiddenContactOwners are usernames whose contacts never appear in contact
// listings or lookups.
var HiddenContactOwners = []string{constants.GuestUsername, constants.AdminUsername}

// ContactService handles contact business logic.
type ContactService struct {
	store repository.Store
	sync  *contactsync.Syncer
	log   *zap.Logger
}

// NewContactService creates a new ContactService.
func NewContactService(store repository.Store, sync *contactsync.Syncer, log *zap.Logger) *ContactService {
	return &ContactService{store: store, sync: sync, log: log}
}

// ContactInput holds writable contact fields. Nil fields are absent from the
// request.
type ContactInput struct {
	Name     *string
	Email    *string
	Phone    *string
	Initials *string
	Avatar   *string
}

// ListContacts returns visible contacts ordered by name.
func (s *ContactService) ListContacts(ctx context.Context, page, pageSize int) ([]models.Contact, int64, error) {
	contacts, total, err := s.store.Contacts().List(ctx, repository.ContactFilter{
		ExcludeUsernames: HiddenContactOwners,
		Page:             page,
		PageSize:         pageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list contacts: %w", err)
	}
	return contacts, total, nil
}

// GetContact returns a visible contact.
func (s *ContactService) GetContact(ctx context.Context, id string) (*models.Contact, error) {
	contact, err := s.store.Contacts().FindVisibleByID(ctx, id, HiddenContactOwners)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("failed to find contact: %w", err)
	}
	return contact, nil
}

// CreateContact creates an unlinked contact and derives its initials and
// avatar.
func (s *ContactService) CreateContact(ctx context.Context, input ContactInput) (*models.Contact, error) {
	contact := &models.Contact{}
	if _, err := s.apply(ctx, contact, input, false); err != nil {
		return nil, err
	}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Contacts().Create(ctx, contact); err != nil {
			return translateContactError(err)
		}
		s.sync.ContactSaved(ctx, tx, contact, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return contact, nil
}

// UpdateContact writes input onto contact. A partial update only touches the
// fields present in input; a full update requires name and email.
func (s *ContactService) UpdateContact(ctx context.Context, contact *models.Contact, input ContactInput, partial bool) (*models.Contact, error) {
	previousEmail := contact.Email
	fields, err := s.apply(ctx, contact, input, partial)
	if err != nil {
		return nil, err
	}

	if contact.UserID != nil && !strings.EqualFold(previousEmail, contact.Email) {
		taken, err := s.store.Users().EmailTaken(ctx, contact.Email, *contact.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if taken {
			return nil, NewValidationError("email", msgEmailExists)
		}
	}

	if len(fields) == 0 {
		return contact, nil
	}

	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Contacts().Update(ctx, contact, fields); err != nil {
			return translateContactError(err)
		}
		s.sync.ContactSaved(ctx, tx, contact, fields)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return contact, nil
}

// DeleteContact deletes contact. Deleting a contact linked to an account also
// deletes that account.
func (s *ContactService) DeleteContact(ctx context.Context, contact *models.Contact) error {
	return s.store.Transaction(ctx, func(tx repository.Store) error {
		s.sync.ContactDeleting(ctx, tx, contact)
		if err := tx.Contacts().Delete(ctx, contact.ID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrContactNotFound
			}
			return fmt.Errorf("failed to delete contact: %w", err)
		}
		return nil
	})
}

// apply validates input and copies it onto contact, returning the columns
// that were set.
func (s *ContactService) apply(ctx context.Context, contact *models.Contact, input ContactInput, partial bool) ([]string, error) {
	verr := &ValidationError{}
	var fields []string

	if input.Name != nil {
		name := utils.StripTags(*input.Name)
		if name == "" {
			verr.Add("name", msgBlank)
		} else if checkLength(verr, "name", name, maxNameLength) {
			contact.Name = name
			fields = append(fields, models.ContactFieldName)
		}
	} else if !partial {
		verr.Add("name", msgRequired)
	}

	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		switch {
		case email == "":
			verr.Add("email", msgBlank)
		case !validEmail(email):
			verr.Add("email", msgInvalidEmail)
		case !checkLength(verr, "email", email, maxEmailLength):
		default:
			taken, err := s.store.Contacts().EmailTaken(ctx, email, contact.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to check email: %w", err)
			}
			if taken {
				verr.Add("email", msgContactExists)
			} else {
				contact.Email = email
				fields = append(fields, models.ContactFieldEmail)
			}
		}
	} else if !partial {
		verr.Add("email", msgRequired)
	}

	var phone, initials *string
	if input.Phone != nil {
		phone = optionalText(*input.Phone)
		checkLength(verr, "phone", stringOrEmpty(phone), maxPhoneLength)
	}
	if input.Initials != nil {
		initials = optionalText(*input.Initials)
		checkLength(verr, "initials", stringOrEmpty(initials), maxInitialsLength)
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if input.Phone != nil {
		contact.Phone = phone
		fields = append(fields, models.ContactFieldPhone)
	}
	if input.Initials != nil {
		contact.Initials = initials
		fields = append(fields, models.ContactFieldInitials)
	}
	if input.Avatar != nil {
		avatar := *input.Avatar
		contact.Avatar = &avatar
		fields = append(fields, models.ContactFieldAvatar)
	}

	return fields, nil
}

func optionalText(s string) *string {
	cleaned := utils.StripTags(s)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}

func translateContactError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return NewValidationError("email", msgContactExists)
	}
	return fmt.Errorf("failed to save contact: %w", err)
}
