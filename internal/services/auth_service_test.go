package services

import (
	"context"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskboard-api/internal/constants"
	"github.com/yukikurage/taskboard-api/internal/contactsync"
	"github.com/yukikurage/taskboard-api/internal/models"
	"github.com/yukikurage/taskboard-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newAuthService(f *fixture) *AuthService {
	return NewAuthService(f.store, f.syncer, f.log, "guest")
}

func validRegistration() RegisterInput {
	return RegisterInput{
		Email:            "John.Doe@Example.com",
		Name:             "John Doe",
		Password:         "Test@1234",
		RepeatedPassword: "Test@1234",
	}
}

func TestAuthService_Register(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f)

	result, err := svc.Register(f.ctx, validRegistration())
	require.NoError(t, err)

	assert.Equal(t, "john.doe@example.com", result.User.Username)
	assert.Equal(t, "john.doe@example.com", result.User.Email)
	assert.Equal(t, "John", result.User.FirstName)
	assert.Equal(t, "Doe", result.User.LastName)
	assert.Len(t, result.Token.Key, 40)
	assert.True(t, result.Created)

	require.NotNil(t, result.Contact)
	assert.Equal(t, "JD", models.StringValue(result.Contact.Initials))
	assert.Contains(t, models.StringValue(result.Contact.Avatar), "JD")
	assert.Equal(t, constants.PlaceholderPhone, models.StringValue(result.Contact.Phone))
	assert.True(t, result.Contact.IsAccountLinked)
	assert.EqualValues(t, 1, f.count(t, &models.Contact{}))
}

func TestAuthService_Register_LinksContactWithDifferentEmailCase(t *testing.T) {
	f := newFixture(t)
	contacts := NewContactService(f.store, f.syncer, f.log)
	existing, err := contacts.CreateContact(f.ctx, ContactInput{Name: ptr("John Doe"), Email: ptr("John@Example.com")})
	require.NoError(t, err)

	input := validRegistration()
	input.Email = "John@Example.com"
	result, err := newAuthService(f).Register(f.ctx, input)
	require.NoError(t, err)

	assert.Equal(t, existing.ID, result.Contact.ID)
	assert.True(t, result.Contact.IsAccountLinked)
	assert.EqualValues(t, 1, f.count(t, &models.Contact{}))
}

func TestAuthService_Register_RejectsOverlongFields(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f)

	input := validRegistration()
	input.Email = longEmail(2)
	input.Name = strings.Repeat("b", 151) + " Doe"
	_, err := svc.Register(f.ctx, input)

	verr := requireValidation(t, err)
	assert.Equal(t, []string{"Ensure this field has no more than 150 characters."}, verr.Fields["email"])
	assert.Equal(t, []string{"Ensure this field has no more than 150 characters."}, verr.Fields["name"])
	assert.EqualValues(t, 0, f.count(t, &models.User{}))
}

func TestAuthService_Register_ReportsFirstPasswordRule(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f)

	input := validRegistration()
	input.Password = "password1"
	input.RepeatedPassword = "password1"

	_, err := svc.Register(f.ctx, input)
	verr := requireValidation(t, err)

	assert.Equal(t, "Password must contain at least one uppercase letter.", verr.Message())
	assert.Equal(t, []string{
		"Password must contain at least one uppercase letter.",
		"Password must contain at least one special character.",
	}, verr.Fields["password"])
	assert.Zero(t, f.count(t, &models.User{}))
}

func TestAuthService_Register_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RegisterInput)
		field  string
		msg    string
	}{
		{"missing email", func(in *RegisterInput) { in.Email = " " }, "email", msgRequired},
		{"bad email", func(in *RegisterInput) { in.Email = "not-an-email" }, "email", msgInvalidEmail},
		{"mismatch", func(in *RegisterInput) { in.RepeatedPassword = "Mismatch@1234" }, NonFieldErrors, "Passwords do not match."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			input := validRegistration()
			tt.mutate(&input)

			_, err := newAuthService(f).Register(f.ctx, input)
			verr := requireValidation(t, err)
			assert.Equal(t, []string{tt.msg}, verr.Fields[tt.field])
		})
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f)

	_, err := svc.Register(f.ctx, validRegistration())
	require.NoError(t, err)

	_, err = svc.Register(f.ctx, validRegistration())
	verr := requireValidation(t, err)
	assert.Equal(t, []string{msgEmailExists}, verr.Fields["email"])
	assert.EqualValues(t, 1, f.count(t, &models.User{}))
	assert.EqualValues(t, 1, f.count(t, &models.Contact{}))
}

func TestAuthService_Register_LinksExistingContact(t *testing.T) {
	f := newFixture(t)
	existing := f.createContact(t, "Johnny", "john.doe@example.com")

	input := validRegistration()
	input.Email = "john.doe@example.com"
	result, err := newAuthService(f).Register(f.ctx, input)
	require.NoError(t, err)

	assert.Equal(t, existing.ID, result.Contact.ID)
	assert.Equal(t, "John Doe", result.Contact.Name)
	assert.EqualValues(t, 1, f.count(t, &models.Contact{}))
}

func TestAuthService_Login(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f)
	registered, err := svc.Register(f.ctx, validRegistration())
	require.NoError(t, err)

	result, err := svc.Login(f.ctx, LoginInput{Username: "john.doe@example.com", Password: "Test@1234"})
	require.NoError(t, err)
	assert.Equal(t, registered.Token.Key, result.Token.Key)
	assert.False(t, result.Created)
	assert.Equal(t, registered.Contact.ID, result.Contact.ID)

	_, err = svc.Login(f.ctx, LoginInput{Username: "john.doe@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(f.ctx, LoginInput{Username: "nobody", Password: "Test@1234"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_GuestLogin_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f)

	first, err := svc.GuestLogin(f.ctx)
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, constants.GuestUsername, first.User.Username)
	assert.Equal(t, constants.GuestEmail, first.User.Email)
	require.NotNil(t, first.Contact)
	assert.Equal(t, "GU", models.StringValue(first.Contact.Initials))

	second, err := svc.GuestLogin(f.ctx)
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Equal(t, first.Token.Key, second.Token.Key)

	assert.EqualValues(t, 1, f.count(t, &models.User{}))
	assert.EqualValues(t, 1, f.count(t, &models.Contact{}))

	_, err = svc.Login(f.ctx, LoginInput{Username: constants.GuestUsername, Password: "guest"})
	assert.NoError(t, err)
}

func TestAuthService_GuestLogin_ReissuesRevokedToken(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f)

	first, err := svc.GuestLogin(f.ctx)
	require.NoError(t, err)
	require.NoError(t, svc.Logout(f.ctx, first.User.ID))

	second, err := svc.GuestLogin(f.ctx)
	require.NoError(t, err)
	assert.True(t, second.Created)
	assert.NotEqual(t, first.Token.Key, second.Token.Key)
}

func TestAuthService_GuestLogin_LocksGuestRow(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE username = .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "is_active"}).
			AddRow(5, constants.GuestUsername, constants.GuestEmail, true))
	mock.ExpectQuery(`SELECT \* FROM "tokens" WHERE user_id = `).
		WillReturnRows(sqlmock.NewRows([]string{"key", "user_id"}).AddRow("abc", 5))
	mock.ExpectQuery(`SELECT \* FROM "contacts" WHERE user_id = `).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).AddRow("c-1", "Guest User", constants.GuestEmail))
	mock.ExpectCommit()

	log := zap.NewNop()
	svc := NewAuthService(repository.NewStore(db), contactsync.New(log, nil), log, "guest")

	result, err := svc.GuestLogin(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Created)
	assert.Equal(t, "abc", result.Token.Key)
	assert.Equal(t, "c-1", result.Contact.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthService_AuthenticateAndLogout(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f)
	registered, err := svc.Register(f.ctx, validRegistration())
	require.NoError(t, err)

	user, err := svc.Authenticate(f.ctx, registered.Token.Key)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, user.ID)

	require.NoError(t, svc.Logout(f.ctx, user.ID))
	_, err = svc.Authenticate(f.ctx, registered.Token.Key)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.GetUser(f.ctx, 4242)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRegistrationName(t *testing.T) {
	first, last := registrationName("Anna Maria Berg")
	assert.Equal(t, "Anna", first)
	assert.Equal(t, "Maria", last)

	first, last = registrationName("")
	assert.Empty(t, first)
	assert.Empty(t, last)
}
