// Package sqlstore implements the domain repositories with gorm on Postgres
// or SQLite.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nfrund/propdesk/internal/config"
	"github.com/nfrund/propdesk/internal/domain"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the SQL database selected by DB_DRIVER.
func Open(cfg config.Provider) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.GetDBDriver() {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.GetSQLDSN())
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.GetSQLDSN())
	default:
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", cfg.GetDBDriver())
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger: logger.New(
			slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn),
			logger.Config{
				SlowThreshold:             200 * time.Millisecond,
				LogLevel:                  logger.Warn,
				IgnoreRecordNotFoundError: true,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", cfg.GetDBDriver(), err)
	}

	if cfg.GetDBDriver() == config.DriverSQLite && strings.Contains(cfg.GetSQLDSN(), ":memory:") {
		// Every pooled connection would otherwise see its own empty database.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(allModels()...); err != nil {
		return fmt.Errorf("sqlstore: migrate: %w", err)
	}
	return nil
}

// OpenRepositories opens the database, migrates it and returns the repositories.
func OpenRepositories(ctx context.Context, cfg config.Provider) (*domain.Repositories, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db.WithContext(ctx)); err != nil {
		closeDB(db)
		return nil, err
	}
	slog.InfoContext(ctx, "SQL database ready", "event", "db_migrate", "driver", cfg.GetDBDriver())
	return NewRepositories(db, cfg.GetDBQueryTimeout(), cfg.GetDBExecuteTimeout()), nil
}

// NewRepositories wraps an open gorm handle.
func NewRepositories(db *gorm.DB, queryTimeout, executeTimeout time.Duration) *domain.Repositories {
	b := base{db: db, queryTimeout: queryTimeout, executeTimeout: executeTimeout}
	return &domain.Repositories{
		Users:         &UserStore{b},
		Developments:  &DevelopmentStore{b},
		ServiceTypes:  &ServiceTypeStore{b},
		Professionals: &ProfessionalStore{b},
		Properties:    &PropertyStore{b},
		Favorites:     &FavoriteStore{b},
		Files:         &FileStore{b},
		Ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		Close: func(context.Context) error {
			return closeDB(db)
		},
	}
}

func closeDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// base carries the handle and the per-operation timeouts shared by the stores.
type base struct {
	db             *gorm.DB
	queryTimeout   time.Duration
	executeTimeout time.Duration
}

func (b base) read(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	return b.session(ctx, b.queryTimeout)
}

func (b base) write(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	return b.session(ctx, b.executeTimeout)
}

func (b base) session(ctx context.Context, timeout time.Duration) (*gorm.DB, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout <= 0 {
		ctx, cancel := context.WithCancel(ctx)
		return b.db.WithContext(ctx), cancel
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return b.db.WithContext(ctx), cancel
}

// translate maps gorm and driver errors onto the domain sentinels.
func translate(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return fmt.Errorf("%s: %w", op, domain.ErrAlreadyExists)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

// paginate applies LIMIT/OFFSET unless the page is unpaged.
func paginate(p domain.Page) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if p.Unpaged() {
			return db
		}
		return db.Limit(p.Size).Offset(p.Offset())
	}
}

func likePattern(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
	return "%" + s + "%"
}

func lowerTrim(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
