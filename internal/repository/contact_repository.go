package repository

import (
	"context"

	"github.com/yukikurage/taskboard-api/internal/database"
	"github.com/yukikurage/taskboard-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormContactRepository is a GORM implementation of ContactRepository
type GormContactRepository struct {
	db *gorm.DB
}

// NewContactRepository creates a new ContactRepository
func NewContactRepository(db *gorm.DB) ContactRepository {
	return &GormContactRepository{db: db}
}

// Create creates a new contact
func (r *GormContactRepository) Create(ctx context.Context, contact *models.Contact) error {
	return r.db.WithContext(ctx).Create(contact).Error
}

// FindByID finds a contact by ID
func (r *GormContactRepository) FindByID(ctx context.Context, id string) (*models.Contact, error) {
	var contact models.Contact
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&contact).Error; err != nil {
		return nil, err
	}
	return &contact, nil
}

// FindVisibleByID finds a contact by ID, hiding contacts linked to the
// excluded usernames
func (r *GormContactRepository) FindVisibleByID(ctx context.Context, id string, excludeUsernames []string) (*models.Contact, error) {
	var contact models.Contact
	query := r.visible(r.db.WithContext(ctx).Model(&models.Contact{}), excludeUsernames)
	if err := query.Select("contacts.*").Where("contacts.id = ?", id).First(&contact).Error; err != nil {
		return nil, err
	}
	return &contact, nil
}

// FindByEmail finds a contact by email, ignoring case
func (r *GormContactRepository) FindByEmail(ctx context.Context, email string) (*models.Contact, error) {
	var contact models.Contact
	if err := r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&contact).Error; err != nil {
		return nil, err
	}
	return &contact, nil
}

// FindByUserID finds the contact linked to a user
func (r *GormContactRepository) FindByUserID(ctx context.Context, userID uint64) (*models.Contact, error) {
	var contact models.Contact
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&contact).Error; err != nil {
		return nil, err
	}
	return &contact, nil
}

// List retrieves contacts ordered by name
func (r *GormContactRepository) List(ctx context.Context, filter ContactFilter) ([]models.Contact, int64, error) {
	var contacts []models.Contact

	query := r.visible(r.db.WithContext(ctx).Model(&models.Contact{}), filter.ExcludeUsernames)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Select("contacts.*").Order("contacts.name ASC").Order("contacts.id ASC").
		Scopes(database.Paginate(filter.Page, filter.PageSize))

	if err := listQuery.Find(&contacts).Error; err != nil {
		return nil, 0, err
	}

	return contacts, total, nil
}

func (r *GormContactRepository) visible(query *gorm.DB, excludeUsernames []string) *gorm.DB {
	if len(excludeUsernames) == 0 {
		return query
	}
	return query.
		Joins("LEFT JOIN users ON users.id = contacts.user_id").
		Where("users.id IS NULL OR users.username NOT IN ?", excludeUsernames)
}

// EmailTaken reports whether a contact other than excludeID uses email
func (r *GormContactRepository) EmailTaken(ctx context.Context, email string, excludeID string) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.Contact{}).Where("LOWER(email) = LOWER(?)", email)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ExistingIDs returns which of ids exist
func (r *GormContactRepository) ExistingIDs(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return []string{}, nil
	}

	var found []string
	if err := r.db.WithContext(ctx).Model(&models.Contact{}).
		Where("id IN ?", ids).
		Pluck("id", &found).Error; err != nil {
		return nil, err
	}
	return found, nil
}

// Update writes the named fields of contact, or every column when fields is empty
func (r *GormContactRepository) Update(ctx context.Context, contact *models.Contact, fields []string) error {
	db := r.db.WithContext(ctx)
	if len(fields) == 0 {
		return db.Omit(clause.Associations).Save(contact).Error
	}

	columns := append(append([]string{}, fields...), "updated_at")
	return db.Model(contact).Select(columns).Updates(contact).Error
}

// UpdateColumns writes the given columns directly
func (r *GormContactRepository) UpdateColumns(ctx context.Context, id string, values map[string]any) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Contact{}).Where("id = ?", id).UpdateColumns(values)
	return result.RowsAffected, result.Error
}

// Delete removes a contact and its task assignments in a transaction
func (r *GormContactRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("contact_id = ?", id).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&models.Contact{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
