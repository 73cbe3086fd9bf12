package users

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/nfrund/propdesk/internal/auth"
	"github.com/nfrund/propdesk/internal/domain"
	"github.com/nfrund/propdesk/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockEmailSender struct {
	mock.Mock
}

func (m *mockEmailSender) Send(to, subject, htmlBody string) error {
	return m.Called(to, subject, htmlBody).Error(0)
}

var tempPassword = regexp.MustCompile(`<strong>([0-9a-f]{16})</strong>`)

func newTestService(t *testing.T) (*Service, *domain.Repositories, *mockEmailSender) {
	t.Helper()
	repos := testutils.NewRepositories(t)
	mailer := new(mockEmailSender)
	return NewService(repos.Users, mailer, nil, "http://localhost:5173/"), repos, mailer
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("generated password is emailed", func(t *testing.T) {
		svc, repos, mailer := newTestService(t)
		var body string
		mailer.On("Send", "ana@example.com", "Welcome to PropDesk", mock.Anything).
			Run(func(args mock.Arguments) { body = args.String(2) }).
			Return(nil).Once()

		user, err := svc.Create(ctx, CreateInput{Name: " Ana López ", Email: "Ana@Example.com", Role: domain.RoleAgent})
		require.NoError(t, err)
		mailer.AssertExpectations(t)

		assert.Equal(t, "Ana López", user.Name)
		assert.Equal(t, "ana@example.com", user.Email)
		assert.True(t, user.Active)
		assert.Contains(t, body, "http://localhost:5173/login")

		m := tempPassword.FindStringSubmatch(body)
		require.Len(t, m, 2, "welcome email should carry the temporary password")
		stored, err := repos.Users.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, auth.CheckPassword(stored.PasswordHash, m[1]))
	})

	t.Run("explicit password is not emailed", func(t *testing.T) {
		svc, _, mailer := newTestService(t)
		mailer.On("Send", "bo@example.com", "Welcome to PropDesk", mock.MatchedBy(func(body string) bool {
			return !tempPassword.MatchString(body)
		})).Return(nil).Once()

		inactive := false
		user, err := svc.Create(ctx, CreateInput{Name: "Bo", Email: "bo@example.com", Role: domain.RoleAdmin, Password: "s3cret-pass", Active: &inactive})
		require.NoError(t, err)
		assert.False(t, user.Active)
		mailer.AssertExpectations(t)
	})

	t.Run("validation errors are merged", func(t *testing.T) {
		svc, _, mailer := newTestService(t)

		_, err := svc.Create(ctx, CreateInput{Name: "", Email: "nope", Role: "owner", Password: "short"})
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "name")
		assert.Contains(t, verr.Fields, "email")
		assert.Contains(t, verr.Fields, "role")
		assert.Contains(t, verr.Fields, "password")
		mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("duplicate email ignores case", func(t *testing.T) {
		svc, repos, mailer := newTestService(t)
		existing := testutils.CreateUser(t, repos.Users, domain.RoleAgent)

		_, err := svc.Create(ctx, CreateInput{Name: "Dup", Email: "  " + existing.Email, Role: domain.RoleAgent, Password: "password123"})
		assert.ErrorIs(t, err, domain.ErrAlreadyExists)
		mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("mail failure does not fail creation", func(t *testing.T) {
		svc, _, mailer := newTestService(t)
		mailer.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down")).Once()

		_, err := svc.Create(ctx, CreateInput{Name: "Cy", Email: "cy@example.com", Role: domain.RoleAgent})
		assert.NoError(t, err)
	})
}

func TestService_UpdateAndDelete(t *testing.T) {
	svc, repos, mailer := newTestService(t)
	admin := testutils.CreateUser(t, repos.Users, domain.RoleAdmin)
	agent := testutils.CreateUser(t, repos.Users, domain.RoleAgent)
	other := testutils.CreateUser(t, repos.Users, domain.RoleAgent)
	ctx := domain.WithActor(context.Background(), admin)

	t.Run("partial update", func(t *testing.T) {
		name, role := "Agent Renamed", domain.RoleAdmin
		updated, err := svc.Update(ctx, agent.ID, UpdateInput{Name: &name, Role: &role})
		require.NoError(t, err)
		assert.Equal(t, "Agent Renamed", updated.Name)
		assert.Equal(t, domain.RoleAdmin, updated.Role)
		assert.Equal(t, agent.Email, updated.Email)
	})

	t.Run("email taken by another user", func(t *testing.T) {
		email := other.Email
		_, err := svc.Update(ctx, agent.ID, UpdateInput{Email: &email})
		assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	})

	t.Run("keeping own email", func(t *testing.T) {
		email := agent.Email
		_, err := svc.Update(ctx, agent.ID, UpdateInput{Email: &email})
		assert.NoError(t, err)
	})

	t.Run("cannot deactivate self", func(t *testing.T) {
		inactive := false
		_, err := svc.Update(ctx, admin.ID, UpdateInput{Active: &inactive})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("cannot delete self", func(t *testing.T) {
		assert.ErrorIs(t, svc.Delete(ctx, admin.ID), domain.ErrForbidden)
	})

	t.Run("delete other", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, other.ID))
		_, err := svc.Get(ctx, other.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.ErrorIs(t, svc.Delete(ctx, other.ID), domain.ErrNotFound)
	})

	mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_SetPassword(t *testing.T) {
	svc, repos, mailer := newTestService(t)
	user := testutils.CreateUser(t, repos.Users, domain.RoleAgent)
	ctx := context.Background()

	mailer.On("Send", user.Email, "Your password was changed", mock.Anything).Return(nil).Twice()

	require.NoError(t, svc.SetPassword(ctx, user.ID, "brand-new-pass"))
	stored, err := repos.Users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(stored.PasswordHash, "brand-new-pass"))

	require.NoError(t, svc.SetPassword(ctx, user.ID, ""))
	stored, err = repos.Users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, auth.CheckPassword(stored.PasswordHash, "brand-new-pass"))

	assert.ErrorIs(t, svc.SetPassword(ctx, user.ID, "short"), domain.ErrValidation)
	mailer.AssertExpectations(t)
}
