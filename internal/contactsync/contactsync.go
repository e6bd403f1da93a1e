// Package contactsync keeps accounts and their contact records consistent.
//
// The service layer calls a Syncer explicitly after (or before) the write it
// belongs to, passing the Store of the surrounding transaction. Every step runs
// in its own nested transaction, so a failed best-effort step is rolled back
// to a savepoint and the caller's transaction carries on.
package contactsync

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/yukikurage/taskboard-api/internal/avatar"
	"github.com/yukikurage/taskboard-api/internal/constants"
	"github.com/yukikurage/taskboard-api/internal/models"
	"github.com/yukikurage/taskboard-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	opAccountCreated  = "account.created"
	opAccountUpdated  = "account.updated"
	opAccountDeleting = "account.deleting"
	opContactSaved    = "contact.saved"
	opContactDeleting = "contact.deleting"
)

// Syncer propagates account changes to contacts and back.
type Syncer struct {
	log     *zap.Logger
	avatars *avatar.Generator
}

// New creates a Syncer. A nil generator picks avatar colors at random.
func New(log *zap.Logger, avatars *avatar.Generator) *Syncer {
	if avatars == nil {
		avatars = avatar.NewGenerator(nil)
	}
	return &Syncer{log: log, avatars: avatars}
}

func (s *Syncer) enter(ctx context.Context, op, id string) (context.Context, bool) {
	ctx, ok := enter(ctx, op, id)
	if !ok {
		s.log.Debug("skipping re-entrant contact sync", zap.String("op", op), zap.String("id", id))
	}
	return ctx, ok
}

func userKey(id uint64) string {
	return strconv.FormatUint(id, 10)
}

// AccountCreated links the contact carrying the account's email to the new
// account, or creates one. Errors are returned so registration can roll back.
func (s *Syncer) AccountCreated(ctx context.Context, store repository.Store, user *models.User) (*models.Contact, error) {
	ctx, ok := s.enter(ctx, opAccountCreated, userKey(user.ID))
	if !ok {
		return nil, nil
	}

	name := user.FullName()
	if name == "" {
		name = user.Username
	}
	initials := avatar.Initials(name)
	svg := s.avatars.Generate(name)

	var contact *models.Contact
	err := store.Transaction(ctx, func(tx repository.Store) error {
		existing, err := tx.Contacts().FindByEmail(ctx, user.Email)
		switch {
		case err == nil:
			if existing.UserID != nil && *existing.UserID != user.ID {
				s.log.Warn("relinking contact to new account",
					zap.String("contact_id", existing.ID),
					zap.Uint64("previous_user_id", *existing.UserID),
					zap.Uint64("user_id", user.ID),
				)
			}
			existing.Name = name
			existing.Initials = &initials
			existing.Avatar = &svg
			existing.UserID = &user.ID
			existing.IsAccountLinked = true
			if err := tx.Contacts().Update(ctx, existing, []string{
				models.ContactFieldName,
				models.ContactFieldInitials,
				models.ContactFieldAvatar,
				models.ContactFieldUserID,
				models.ContactFieldIsAccountLinked,
			}); err != nil {
				return fmt.Errorf("failed to link contact: %w", err)
			}
			contact = existing
			return nil

		case errors.Is(err, gorm.ErrRecordNotFound):
			phone := constants.PlaceholderPhone
			created := &models.Contact{
				Name:            name,
				Email:           user.Email,
				Phone:           &phone,
				Initials:        &initials,
				Avatar:          &svg,
				UserID:          &user.ID,
				IsAccountLinked: true,
			}
			if err := tx.Contacts().Create(ctx, created); err != nil {
				return fmt.Errorf("failed to create contact: %w", err)
			}
			contact = created
			return nil

		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}

	return contact, nil
}

// AccountUpdated copies the account's email and name onto its linked contact.
// Only changed columns are written. The avatar is regenerated when the
// initials change or the stored avatar is blank; otherwise the contact keeps
// its avatar. Failures are logged and swallowed.
func (s *Syncer) AccountUpdated(ctx context.Context, store repository.Store, user *models.User) {
	ctx, ok := s.enter(ctx, opAccountUpdated, userKey(user.ID))
	if !ok {
		return
	}

	err := store.Transaction(ctx, func(tx repository.Store) error {
		contact, err := tx.Contacts().FindByUserID(ctx, user.ID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		name := user.FullName()
		initials := avatar.Initials(name)

		changes := map[string]any{}
		if contact.Email != user.Email {
			changes[models.ContactFieldEmail] = user.Email
		}
		if contact.Name != name {
			changes[models.ContactFieldName] = name
		}
		if models.StringValue(contact.Initials) != initials {
			changes[models.ContactFieldInitials] = initials
			changes[models.ContactFieldAvatar] = s.avatars.Generate(name)
		} else if isBlank(contact.Avatar) {
			changes[models.ContactFieldAvatar] = s.avatars.Generate(name)
		}

		if len(changes) == 0 {
			return nil
		}
		changes["updated_at"] = time.Now()

		_, err = tx.Contacts().UpdateColumns(ctx, contact.ID, changes)
		return err
	})
	if err != nil {
		s.log.Error("failed to sync account to contact", zap.Uint64("user_id", user.ID), zap.Error(err))
	}
}

// AccountDeleting unlinks the account's contact before the account is
// removed. It never fails; problems are logged.
func (s *Syncer) AccountDeleting(ctx context.Context, store repository.Store, user *models.User) {
	ctx, ok := s.enter(ctx, opAccountDeleting, userKey(user.ID))
	if !ok {
		return
	}

	err := store.Transaction(ctx, func(tx repository.Store) error {
		contact, err := tx.Contacts().FindByUserID(ctx, user.ID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Info("no contact linked to deleted account", zap.Uint64("user_id", user.ID))
			return nil
		}
		if err != nil {
			return err
		}

		_, err = tx.Contacts().UpdateColumns(ctx, contact.ID, unlinkColumns())
		return err
	})
	if err != nil {
		s.log.Error("failed to unlink contact from account", zap.Uint64("user_id", user.ID), zap.Error(err))
	}
}

// ContactSaved refreshes derived initials and avatar after a contact write
// and pushes name and email changes back to a linked account. fields lists
// the columns the write touched; empty means all of them. Failures are logged
// and swallowed.
func (s *Syncer) ContactSaved(ctx context.Context, store repository.Store, contact *models.Contact, fields []string) {
	ctx, ok := s.enter(ctx, opContactSaved, contact.ID)
	if !ok {
		return
	}

	if touches(fields, models.ContactFieldName, models.ContactFieldInitials, models.ContactFieldAvatar) {
		s.refreshInitials(ctx, store, contact, fields)
	}

	if contact.UserID != nil && len(fields) > 0 && touches(fields, models.ContactFieldName, models.ContactFieldEmail) {
		s.pushToAccount(ctx, store, contact)
	}
}

func (s *Syncer) refreshInitials(ctx context.Context, store repository.Store, contact *models.Contact, fields []string) {
	initials := avatar.Initials(contact.Name)

	changes := map[string]any{}
	if initials != models.StringValue(contact.Initials) {
		changes[models.ContactFieldInitials] = initials
		changes[models.ContactFieldAvatar] = s.avatars.Generate(contact.Name)
	} else if isBlank(contact.Avatar) && !slices.Contains(fields, models.ContactFieldAvatar) {
		changes[models.ContactFieldAvatar] = s.avatars.Generate(contact.Name)
	}
	if len(changes) == 0 {
		return
	}

	var rows int64
	err := store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		rows, err = tx.Contacts().UpdateColumns(ctx, contact.ID, changes)
		return err
	})
	if err != nil {
		s.log.Error("failed to refresh contact initials", zap.String("contact_id", contact.ID), zap.Error(err))
		return
	}
	if rows == 0 {
		s.log.Debug("contact vanished before initials refresh", zap.String("contact_id", contact.ID))
		return
	}

	if v, ok := changes[models.ContactFieldInitials].(string); ok {
		contact.Initials = &v
	}
	if v, ok := changes[models.ContactFieldAvatar].(string); ok {
		contact.Avatar = &v
	}
}

func (s *Syncer) pushToAccount(ctx context.Context, store repository.Store, contact *models.Contact) {
	first, last := SplitName(contact.Name)
	userID := *contact.UserID

	err := store.Transaction(ctx, func(tx repository.Store) error {
		user, err := tx.Users().FindByID(ctx, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Warn("contact links to a missing account",
				zap.String("contact_id", contact.ID),
				zap.Uint64("user_id", userID),
			)
			return nil
		}
		if err != nil {
			return err
		}

		changes := map[string]any{}
		if user.Email != contact.Email {
			changes["email"] = contact.Email
		}
		if user.FirstName != first {
			changes["first_name"] = first
		}
		if user.LastName != last {
			changes["last_name"] = last
		}
		if len(changes) == 0 {
			return nil
		}
		changes["updated_at"] = time.Now()

		_, err = tx.Users().UpdateColumns(ctx, userID, changes)
		return err
	})
	if err != nil {
		s.log.Error("failed to sync contact to account",
			zap.String("contact_id", contact.ID),
			zap.Uint64("user_id", userID),
			zap.Error(err),
		)
	}
}

// ContactDeleting removes the account linked to a contact that is about to
// be deleted. The contact is detached from the account first. It never
// fails; problems are logged.
func (s *Syncer) ContactDeleting(ctx context.Context, store repository.Store, contact *models.Contact) {
	ctx, ok := s.enter(ctx, opContactDeleting, contact.ID)
	if !ok || !contact.IsAccountLinked {
		return
	}

	if contact.UserID == nil {
		s.log.Warn("contact marked as linked has no account", zap.String("contact_id", contact.ID))
		return
	}
	userID := *contact.UserID

	err := store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := tx.Contacts().UpdateColumns(ctx, contact.ID, unlinkColumns()); err != nil {
			return err
		}

		user, err := tx.Users().FindByID(ctx, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Warn("linked account not found while deleting contact",
				zap.String("contact_id", contact.ID),
				zap.Uint64("user_id", userID),
			)
			return nil
		}
		if err != nil {
			return err
		}

		s.log.Warn("deleting account linked to deleted contact",
			zap.String("contact_id", contact.ID),
			zap.Uint64("user_id", user.ID),
			zap.String("username", user.Username),
		)
		s.AccountDeleting(ctx, tx, user)
		return tx.Users().Delete(ctx, user.ID)
	})
	if err != nil {
		s.log.Error("failed to delete account linked to contact",
			zap.String("contact_id", contact.ID),
			zap.Uint64("user_id", userID),
			zap.Error(err),
		)
		return
	}

	contact.UserID = nil
	contact.IsAccountLinked = false
}

// SplitName splits a display name into a first name and the remainder.
func SplitName(name string) (first, last string) {
	first, last, _ = strings.Cut(strings.TrimSpace(name), " ")
	return first, strings.TrimSpace(last)
}

func unlinkColumns() map[string]any {
	return map[string]any{
		models.ContactFieldUserID:          nil,
		models.ContactFieldIsAccountLinked: false,
		"updated_at":                       time.Now(),
	}
}

// touches reports whether a write of fields may have changed any of names.
// An empty field set means the whole row was written.
func touches(fields []string, names ...string) bool {
	if len(fields) == 0 {
		return true
	}
	for _, name := range names {
		if slices.Contains(fields, name) {
			return true
		}
	}
	return false
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
