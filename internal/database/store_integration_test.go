package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/nfrund/propdesk/internal/domain"
	"github.com/nfrund/propdesk/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupSurreal connects to the SurrealDB instance configured in .env.test.
func setupSurreal(t *testing.T) *domain.Repositories {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	cfg := testutils.ConfigForTests(t)
	if cfg.GetDBURL() == "" {
		t.Skip("SURREAL_URL not configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	repos, err := Open(ctx, cfg)
	require.NoError(t, err, "failed to connect to test database")
	t.Cleanup(func() { _ = repos.Close(context.Background()) })
	return repos
}

func TestSurrealUserStore_CRUD(t *testing.T) {
	repos := setupSurreal(t)
	ctx := context.Background()

	email := fmt.Sprintf("crud-%d@example.com", time.Now().UnixNano())
	created, err := repos.Users.Create(ctx, &domain.User{Name: "CRUD User", Email: email, Role: domain.RoleAgent, Active: true, PasswordHash: "h"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Users.Delete(ctx, created.ID) })
	require.NotEmpty(t, created.ID)

	byEmail, err := repos.Users.FindByEmail(ctx, "  "+email)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
	assert.Equal(t, "h", byEmail.PasswordHash)

	_, err = repos.Users.Create(ctx, &domain.User{Name: "Dup", Email: email, Role: domain.RoleAgent})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	created.Name = "Renamed"
	updated, err := repos.Users.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)

	require.NoError(t, repos.Users.Delete(ctx, created.ID))
	_, err = repos.Users.FindByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSurrealFavoriteStore_AddIsIdempotent(t *testing.T) {
	repos := setupSurreal(t)
	ctx := context.Background()
	user := fmt.Sprintf("u-%d", time.Now().UnixNano())

	require.NoError(t, repos.Favorites.Add(ctx, user, "p1"))
	require.NoError(t, repos.Favorites.Add(ctx, user, "p1"))
	t.Cleanup(func() { _ = repos.Favorites.Remove(ctx, user, "p1") })

	ids, err := repos.Favorites.ListPropertyIDs(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, ids)

	ok, err := repos.Favorites.Exists(ctx, user, "p1")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, repos.Favorites.Remove(ctx, user, "p1"))
	ok, err = repos.Favorites.Exists(ctx, user, "p1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSurrealServiceTypeStore_NameIsCaseInsensitive(t *testing.T) {
	repos := setupSurreal(t)
	ctx := context.Background()
	name := fmt.Sprintf("Notario %d", time.Now().UnixNano())

	st, err := repos.ServiceTypes.Create(ctx, &domain.ServiceType{Name: name})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.ServiceTypes.Delete(ctx, st.ID) })

	found, err := repos.ServiceTypes.FindByName(ctx, " "+name+" ")
	require.NoError(t, err)
	assert.Equal(t, st.ID, found.ID)

	_, err = repos.ServiceTypes.Create(ctx, &domain.ServiceType{Name: name})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}
