package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskboard-api/internal/avatar"
	"github.com/yukikurage/taskboard-api/internal/contactsync"
	"github.com/yukikurage/taskboard-api/internal/models"
	"github.com/yukikurage/taskboard-api/internal/repository"
	"github.com/yukikurage/taskboard-api/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	ctx    context.Context
	db     *gorm.DB
	store  repository.Store
	syncer *contactsync.Syncer
	log    *zap.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	log := zap.NewNop()
	return &fixture{
		ctx:    context.Background(),
		db:     db,
		store:  repository.NewStore(db),
		syncer: contactsync.New(log, avatar.NewGenerator(func(int) int { return 0 })),
		log:    log,
	}
}

func (f *fixture) createContact(t *testing.T, name, email string) *models.Contact {
	t.Helper()
	contact := &models.Contact{Name: name, Email: email}
	require.NoError(t, f.store.Contacts().Create(f.ctx, contact))
	return contact
}

func (f *fixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

func requireValidation(t *testing.T, err error) *ValidationError {
	t.Helper()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	return verr
}

// longEmail returns a syntactically valid address with the given number of
// 50 character domain labels.
func longEmail(labels int) string {
	parts := make([]string, 0, labels+1)
	for i := 0; i < labels; i++ {
		parts = append(parts, strings.Repeat(string(rune('b'+i)), 50))
	}
	parts = append(parts, "com")
	return strings.Repeat("a", 60) + "@" + strings.Join(parts, ".")
}
