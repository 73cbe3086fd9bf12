package database

import (
	"context"
	"fmt"

	"github.com/nfrund/propdesk/internal/config"
	"github.com/nfrund/propdesk/internal/domain"
)

// Open connects to SurrealDB, applies the schema and returns every
// repository backed by the connection. Close on the result ends monitoring
// and the socket.
func Open(ctx context.Context, cfg config.Provider) (*domain.Repositories, error) {
	conn := NewConnection(cfg)
	if err := conn.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect to surrealdb: %w", err)
	}
	conn.StartMonitoring()

	if err := Migrate(ctx, conn); err != nil {
		_ = conn.Close(ctx)
		return nil, err
	}

	repos, err := NewRepositories(conn)
	if err != nil {
		_ = conn.Close(ctx)
		return nil, err
	}
	return repos, nil
}

// NewRepositories builds the stores on an established connection.
func NewRepositories(conn DBConnection) (*domain.Repositories, error) {
	users, err := NewUserStore(conn)
	if err != nil {
		return nil, err
	}
	developments, err := NewDevelopmentStore(conn)
	if err != nil {
		return nil, err
	}
	serviceTypes, err := NewServiceTypeStore(conn)
	if err != nil {
		return nil, err
	}
	professionals, err := NewProfessionalStore(conn)
	if err != nil {
		return nil, err
	}
	properties, err := NewPropertyStore(conn)
	if err != nil {
		return nil, err
	}
	favorites, err := NewFavoriteStore(conn)
	if err != nil {
		return nil, err
	}
	files, err := NewFileStore(conn)
	if err != nil {
		return nil, err
	}

	return &domain.Repositories{
		Users:         users,
		Developments:  developments,
		ServiceTypes:  serviceTypes,
		Professionals: professionals,
		Properties:    properties,
		Favorites:     favorites,
		Files:         files,
		Ping:          conn.Ping,
		Close:         conn.Close,
	}, nil
}
