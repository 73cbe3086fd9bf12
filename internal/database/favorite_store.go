package database

import (
	"context"
	"time"

	"github.com/nfrund/propdesk/internal/domain"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

var _ domain.FavoriteRepository = (*FavoriteStore)(nil)

type favoriteRow struct {
	ID         *models.RecordID      `json:"id,omitempty"`
	UserID     string                `json:"user_id"`
	PropertyID string                `json:"property_id"`
	CreatedAt  models.CustomDateTime `json:"created_at"`
}

// FavoriteStore implements domain.FavoriteRepository. Each favorite is keyed
// by the [user, property] pair so a second Add is a no-op.
type FavoriteStore struct {
	client Client[favoriteRow]
}

// NewFavoriteStore creates a new FavoriteStore.
func NewFavoriteStore(conn DBConnection) (*FavoriteStore, error) {
	c, err := NewClient[favoriteRow](conn)
	if err != nil {
		return nil, err
	}
	return &FavoriteStore{client: c}, nil
}

func favoriteID(userID, propertyID string) models.RecordID {
	return models.NewRecordID(favoriteTable, []any{userID, propertyID})
}

func (s *FavoriteStore) Add(ctx context.Context, userID, propertyID string) error {
	data := map[string]any{
		"id":          favoriteID(userID, propertyID),
		"user_id":     userID,
		"property_id": propertyID,
		"created_at":  toDateTime(time.Now()),
	}
	return s.client.Execute(ctx, "INSERT IGNORE INTO favorite $data", map[string]any{"data": data})
}

func (s *FavoriteStore) Remove(ctx context.Context, userID, propertyID string) error {
	return s.client.Execute(ctx, "DELETE $rid", map[string]any{"rid": favoriteID(userID, propertyID)})
}

func (s *FavoriteStore) Exists(ctx context.Context, userID, propertyID string) (bool, error) {
	row, err := s.client.QueryOne(ctx, "SELECT * FROM $rid", map[string]any{"rid": favoriteID(userID, propertyID)})
	if err != nil {
		return false, err
	}
	return row != nil, nil
}

func (s *FavoriteStore) ListPropertyIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.client.Query(ctx, "SELECT * FROM favorite WHERE user_id = $user ORDER BY created_at DESC", map[string]any{"user": userID})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.PropertyID)
	}
	return ids, nil
}

func (s *FavoriteStore) RemoveProperty(ctx context.Context, propertyID string) error {
	return s.client.Execute(ctx, "DELETE favorite WHERE property_id = $property", map[string]any{"property": propertyID})
}
