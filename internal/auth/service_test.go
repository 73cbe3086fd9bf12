package auth_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/nfrund/propdesk/internal/auth"
	"github.com/nfrund/propdesk/internal/domain"
	"github.com/nfrund/propdesk/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serviceFixture struct {
	svc    *auth.Service
	repos  *domain.Repositories
	mailer *testutils.RecordingSender
}

func newServiceFixture(t *testing.T) serviceFixture {
	t.Helper()
	repos := testutils.NewRepositories(t)
	tokens, err := auth.NewTokens(testSecret, time.Hour)
	require.NoError(t, err)
	mailer := &testutils.RecordingSender{}
	return serviceFixture{
		svc:    auth.NewService(repos.Users, tokens, mailer, "https://admin.example.com/"),
		repos:  repos,
		mailer: mailer,
	}
}

var tokenInLink = regexp.MustCompile(`reset-password\?token=([0-9a-f]+)`)

func TestService_Login(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	user := testutils.CreateUser(t, f.repos.Users, domain.RoleAgent)

	t.Run("valid credentials", func(t *testing.T) {
		session, err := f.svc.Login(ctx, "  "+user.Email, testutils.DefaultPassword)
		require.NoError(t, err)
		assert.NotEmpty(t, session.Token)
		assert.Equal(t, user.ID, session.User.ID)

		authed, err := f.svc.Authenticate(ctx, session.Token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, authed.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.svc.Login(ctx, user.Email, "nope-nope")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := f.svc.Login(ctx, "ghost@example.com", testutils.DefaultPassword)
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("disabled account", func(t *testing.T) {
		session, err := f.svc.Login(ctx, user.Email, testutils.DefaultPassword)
		require.NoError(t, err)

		user.Active = false
		_, err = f.repos.Users.Update(ctx, user)
		require.NoError(t, err)

		_, err = f.svc.Login(ctx, user.Email, testutils.DefaultPassword)
		assert.ErrorIs(t, err, domain.ErrForbidden)

		// Tokens issued before the account was disabled stop working.
		_, err = f.svc.Authenticate(ctx, session.Token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
}

func TestService_PasswordReset(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	user := testutils.CreateUser(t, f.repos.Users, domain.RoleAgent)

	require.NoError(t, f.svc.ForgotPassword(ctx, user.Email))

	sent := f.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, user.Email, sent[0].To)
	assert.Contains(t, sent[0].Body, "https://admin.example.com/reset-password?token=")
	m := tokenInLink.FindStringSubmatch(sent[0].Body)
	require.Len(t, m, 2)
	token := m[1]

	stored, err := f.repos.Users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ResetTokenExpires)
	assert.WithinDuration(t, time.Now().Add(auth.ResetTokenTTL), *stored.ResetTokenExpires, time.Minute)

	err = f.svc.ResetPassword(ctx, token, "short")
	assert.ErrorIs(t, err, domain.ErrValidation)

	require.NoError(t, f.svc.ResetPassword(ctx, token, "brand-new-password"))

	_, err = f.svc.Login(ctx, user.Email, "brand-new-password")
	assert.NoError(t, err)
	_, err = f.svc.Login(ctx, user.Email, testutils.DefaultPassword)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	// The token is single use.
	err = f.svc.ResetPassword(ctx, token, "another-password")
	assert.ErrorIs(t, err, domain.ErrInvalidResetToken)
}

func TestService_ResetPasswordRejectsExpiredToken(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	user := testutils.CreateUser(t, f.repos.Users, domain.RoleAgent)

	past := time.Now().Add(-time.Minute).UTC()
	user.ResetToken = "expired-token"
	user.ResetTokenExpires = &past
	_, err := f.repos.Users.Update(ctx, user)
	require.NoError(t, err)

	err = f.svc.ResetPassword(ctx, "expired-token", "brand-new-password")
	assert.ErrorIs(t, err, domain.ErrInvalidResetToken)

	assert.ErrorIs(t, f.svc.ResetPassword(ctx, "  ", "brand-new-password"), domain.ErrInvalidResetToken)
}

func TestService_ForgotPasswordHidesUnknownEmail(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	assert.NoError(t, f.svc.ForgotPassword(ctx, "ghost@example.com"))
	assert.Empty(t, f.mailer.Sent())
}

func TestService_ForgotPasswordSurvivesMailFailure(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	user := testutils.CreateUser(t, f.repos.Users, domain.RoleAdmin)
	f.mailer.Err = errors.New("smtp down")

	require.NoError(t, f.svc.ForgotPassword(ctx, user.Email))

	stored, err := f.repos.Users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.ResetToken)
}
