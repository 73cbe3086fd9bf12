package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nfrund/propdesk/internal/domain"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// Table names.
const (
	userTable         = "user"
	developmentTable  = "development"
	serviceTypeTable  = "service_type"
	professionalTable = "professional"
	propertyTable     = "property"
	favoriteTable     = "favorite"
	fileTable         = "file"
)

// newRecordID allocates a fresh record id in table.
func newRecordID(table string) (models.RecordID, string) {
	key := uuid.NewString()
	return models.NewRecordID(table, key), key
}

// recordID addresses an existing record by the string key exposed in the API.
func recordID(table, key string) (models.RecordID, error) {
	key = strings.TrimSpace(key)
	// Accept both "abc" and "table:abc".
	key = strings.TrimPrefix(key, table+":")
	if key == "" {
		return models.RecordID{}, NewDBError(domain.ErrNotFound, "empty "+table+" id")
	}
	return models.NewRecordID(table, key), nil
}

// recordKey turns a stored record id back into the API identifier.
func recordKey(rid *models.RecordID) string {
	if rid == nil {
		return ""
	}
	return fmt.Sprint(rid.ID)
}

func toDateTime(t time.Time) models.CustomDateTime {
	return models.CustomDateTime{Time: t.UTC()}
}

func toDateTimePtr(t *time.Time) *models.CustomDateTime {
	if t == nil {
		return nil
	}
	dt := toDateTime(*t)
	return &dt
}

func fromDateTimePtr(dt *models.CustomDateTime) *time.Time {
	if dt == nil || dt.Time.IsZero() {
		return nil
	}
	t := dt.Time.UTC()
	return &t
}

// countRow is the shape of `SELECT count() AS total ... GROUP ALL`.
type countRow struct {
	Total int64 `json:"total"`
}

// where accumulates SurrealQL conditions and their bound parameters.
type where struct {
	clauses []string
	params  map[string]any
}

func newWhere() *where {
	return &where{params: map[string]any{}}
}

func (w *where) add(clause string, name string, value any) {
	w.clauses = append(w.clauses, clause)
	if name != "" {
		w.params[name] = value
	}
}

func (w *where) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// count runs a count over table with the accumulated conditions.
func (w *where) count(ctx context.Context, c Client[countRow], table string) (int64, error) {
	rows, err := c.Query(ctx, "SELECT count() AS total FROM "+table+w.String()+" GROUP ALL", w.params)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

// pageClause renders LIMIT/START for p and binds the parameters; an unpaged
// request renders nothing.
func (w *where) pageClause(p domain.Page) string {
	if p.Unpaged() {
		return ""
	}
	w.params["limit"] = p.Size
	w.params["start"] = p.Offset()
	return " LIMIT $limit START $start"
}

// newCounter builds the client used for count queries.
func newCounter(conn DBConnection) (Client[countRow], error) {
	return NewClient[countRow](conn)
}

func toLowerTrim(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func nonNilImages(in []domain.Image) []domain.Image {
	if in == nil {
		return []domain.Image{}
	}
	return in
}
