package database

import (
	"context"
	"testing"

	"github.com/nfrund/propdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

func TestRecordID(t *testing.T) {
	rid, err := recordID("property", "property:abc")
	require.NoError(t, err)
	assert.Equal(t, models.NewRecordID("property", "abc"), rid)

	rid, err = recordID("property", " abc ")
	require.NoError(t, err)
	assert.Equal(t, "abc", recordKey(&rid))

	_, err = recordID("property", "  ")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Equal(t, "", recordKey(nil))
}

func TestPropertyStore_ListBuildsFilteredQuery(t *testing.T) {
	rows := &mockExecutor[propertyRow]{rows: []propertyRow{{Title: "Casa"}}}
	counts := &mockExecutor[countRow]{rows: []countRow{{Total: 7}}}
	store := &PropertyStore{client: newMockClient(t, rows), counter: newMockClient(t, counts)}

	minPrice := 1000.0
	featured := true
	items, total, err := store.List(context.Background(), domain.PropertyFilter{
		Type:     domain.PropertyHouse,
		City:     " Mérida ",
		MinPrice: &minPrice,
		Featured: &featured,
		Sort:     domain.SortPriceAsc,
		Page:     domain.Page{Number: 2, Size: 10},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)
	require.Len(t, items, 1)
	assert.Equal(t, "Casa", items[0].Title)

	require.Len(t, counts.calls, 1)
	assert.Contains(t, counts.calls[0].query, "GROUP ALL")
	assert.Contains(t, counts.calls[0].query, "type = $type AND string::lowercase(city) = $city AND price >= $min_price AND featured = $featured")

	require.Len(t, rows.calls, 1)
	q := rows.calls[0]
	assert.Contains(t, q.query, "ORDER BY price ASC")
	assert.Contains(t, q.query, "LIMIT $limit START $start")
	assert.Equal(t, "mérida", q.params["city"])
	assert.Equal(t, 10, q.params["limit"])
	assert.Equal(t, 10, q.params["start"])
}

func TestPropertyStore_EmptyIDsShortCircuits(t *testing.T) {
	rows := &mockExecutor[propertyRow]{}
	counts := &mockExecutor[countRow]{}
	store := &PropertyStore{client: newMockClient(t, rows), counter: newMockClient(t, counts)}

	items, total, err := store.List(context.Background(), domain.PropertyFilter{IDs: []string{}})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, total)
	assert.Empty(t, rows.calls)
	assert.Empty(t, counts.calls)
}

func TestPropertyStore_UnpagedHasNoLimit(t *testing.T) {
	rows := &mockExecutor[propertyRow]{}
	counts := &mockExecutor[countRow]{}
	store := &PropertyStore{client: newMockClient(t, rows), counter: newMockClient(t, counts)}

	_, total, err := store.List(context.Background(), domain.PropertyFilter{})
	require.NoError(t, err)
	assert.Zero(t, total, "empty count result means zero")
	require.Len(t, rows.calls, 1)
	assert.NotContains(t, rows.calls[0].query, "LIMIT")
	assert.Equal(t, "SELECT * FROM property ORDER BY created_at DESC", rows.calls[0].query)
}

func TestUserRow_RoundTripKeepsSecrets(t *testing.T) {
	u := &domain.User{Name: "Ana", Email: "ana@example.com", Role: domain.RoleAgent, PasswordHash: "hash", ResetToken: "tok"}
	row := userToRow(u)
	id := models.NewRecordID("user", "u1")
	row.ID = &id

	back := row.toDomain()
	assert.Equal(t, "u1", back.ID)
	assert.Equal(t, "hash", back.PasswordHash)
	assert.Equal(t, "tok", back.ResetToken)
	assert.Nil(t, back.ResetTokenExpires)
}

func TestServiceTypeRow_StoresLowercaseKey(t *testing.T) {
	row := serviceTypeToRow(&domain.ServiceType{Name: "  Notario Público "})
	assert.Equal(t, "notario público", row.NameKey)
}
