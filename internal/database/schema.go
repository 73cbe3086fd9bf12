package database

import (
	"context"
	"log/slog"
)

// schema lists the statements Migrate applies. Tables stay schemaless; the
// indexes carry the uniqueness rules the stores rely on.
var schema = []string{
	"DEFINE TABLE IF NOT EXISTS user SCHEMALESS",
	"DEFINE INDEX IF NOT EXISTS user_email ON TABLE user FIELDS email UNIQUE",
	"DEFINE INDEX IF NOT EXISTS user_reset_token ON TABLE user FIELDS reset_token",
	"DEFINE TABLE IF NOT EXISTS development SCHEMALESS",
	"DEFINE INDEX IF NOT EXISTS development_type ON TABLE development FIELDS type",
	"DEFINE TABLE IF NOT EXISTS service_type SCHEMALESS",
	"DEFINE INDEX IF NOT EXISTS service_type_name ON TABLE service_type FIELDS name_key UNIQUE",
	"DEFINE TABLE IF NOT EXISTS professional SCHEMALESS",
	"DEFINE TABLE IF NOT EXISTS property SCHEMALESS",
	"DEFINE INDEX IF NOT EXISTS property_development ON TABLE property FIELDS development_id",
	"DEFINE TABLE IF NOT EXISTS favorite SCHEMALESS",
	"DEFINE INDEX IF NOT EXISTS favorite_user ON TABLE favorite FIELDS user_id",
	"DEFINE INDEX IF NOT EXISTS favorite_property ON TABLE favorite FIELDS property_id",
	"DEFINE TABLE IF NOT EXISTS file SCHEMALESS",
	"DEFINE INDEX IF NOT EXISTS file_owner ON TABLE file FIELDS owner_type, owner_id",
}

// Migrate defines the tables and indexes. It is safe to run on every start.
func Migrate(ctx context.Context, conn DBConnection) error {
	c, err := NewClient[any](conn)
	if err != nil {
		return err
	}
	for _, stmt := range schema {
		if err := c.Execute(ctx, stmt, nil); err != nil {
			return WrapError(err, "schema migration failed")
		}
	}
	slog.InfoContext(ctx, "SurrealDB schema applied", "event", "db_migrate", "statements", len(schema))
	return nil
}
