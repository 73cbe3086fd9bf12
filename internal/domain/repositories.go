package domain

import "context"

// Repositories groups every storage contract the application needs. Each
// database backend returns one of these so services never see the driver.
type Repositories struct {
	Users         UserRepository
	Developments  DevelopmentRepository
	ServiceTypes  ServiceTypeRepository
	Professionals ProfessionalRepository
	Properties    PropertyRepository
	Favorites     FavoriteRepository
	Files         FileRepository

	// Ping reports whether the backend is reachable.
	Ping func(ctx context.Context) error
	// Close releases the backend's connections.
	Close func(ctx context.Context) error
}
