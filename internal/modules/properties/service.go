package properties

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"strings"

	"github.com/nfrund/propdesk/internal/domain"
	"github.com/nfrund/propdesk/internal/middleware"
	"github.com/nfrund/propdesk/internal/pubsub"
	"github.com/nfrund/propdesk/internal/search"
	"github.com/nfrund/propdesk/internal/storage"
)

const entityName = "property"

// Input is the editable part of a property.
type Input struct {
	Title         string
	Description   string
	Type          domain.PropertyType
	Operation     domain.Operation
	Status        domain.PropertyStatus
	Price         float64
	Currency      string
	Address       string
	Neighborhood  string
	City          string
	State         string
	Bedrooms      int
	Bathrooms     float64
	ParkingSpaces int
	BuiltArea     float64
	LotArea       float64
	Features      []string
	DevelopmentID string
	AgentID       string
	Featured      bool
}

// Query is a property listing request.
type Query struct {
	Filter domain.PropertyFilter
	// Search ranks the filtered listing and drops what does not match.
	Search string
	// FavoritesOnly restricts the listing to the current user's favorites.
	FavoritesOnly bool
}

// Item is a listed property as seen by one user.
type Item struct {
	*domain.Property
	Score      float64 `json:"score"`
	IsFavorite bool    `json:"is_favorite"`
}

// Service manages property listings and favorites.
type Service struct {
	properties   domain.PropertyRepository
	developments domain.DevelopmentRepository
	users        domain.UserRepository
	favorites    domain.FavoriteRepository
	uploader     *storage.Uploader
	publisher    pubsub.Publisher
}

// NewService creates a new property service.
func NewService(repos *domain.Repositories, uploader *storage.Uploader, publisher pubsub.Publisher) *Service {
	return &Service{
		properties:   repos.Properties,
		developments: repos.Developments,
		users:        repos.Users,
		favorites:    repos.Favorites,
		uploader:     uploader,
		publisher:    publisher,
	}
}

// List returns one page of properties for userID. With a search, the
// filtered listing is ranked and the default order becomes relevance.
func (s *Service) List(ctx context.Context, userID string, q Query) ([]Item, int64, error) {
	filter := q.Filter
	page := filter.Page.Normalize()
	filter.City = strings.TrimSpace(filter.City)
	query := strings.TrimSpace(q.Search)

	favs, err := s.favoriteSet(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	if q.FavoritesOnly {
		filter.IDs = make([]string, 0, len(favs))
		for id := range favs {
			filter.IDs = append(filter.IDs, id)
		}
	}

	if len(search.Keywords(query)) == 0 {
		if filter.Sort == domain.SortRelevance {
			filter.Sort = domain.SortNewest
		}
		filter.Page = page
		items, total, err := s.properties.List(ctx, filter)
		if err != nil {
			return nil, 0, err
		}
		out := make([]Item, len(items))
		for i, p := range items {
			_, fav := favs[p.ID]
			out[i] = Item{Property: p, IsFavorite: fav}
		}
		return out, total, nil
	}

	sortBy := filter.Sort
	if sortBy == "" {
		sortBy = domain.SortRelevance
	}
	if sortBy == domain.SortRelevance {
		filter.Sort = domain.SortNewest
	}
	filter.Page = domain.Page{}
	candidates, _, err := s.properties.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	ranked := search.Rank(Documents(candidates), query)
	if sortBy != domain.SortRelevance {
		ranked = inListingOrder(candidates, ranked)
	}

	out := make([]Item, 0, len(ranked))
	for _, r := range domain.Slice(ranked, page) {
		_, fav := favs[r.Item.ID]
		out = append(out, Item{Property: r.Item.Property, Score: r.Score, IsFavorite: fav})
	}
	middleware.FromContext(ctx).Debug("Ranked property search",
		slog.String("query", query),
		slog.Int("candidates", len(candidates)),
		slog.Int("matches", len(ranked)))
	return out, int64(len(ranked)), nil
}

// inListingOrder puts ranked results back into the order the repository
// returned them in.
func inListingOrder(listing []*domain.Property, ranked []search.Result[Document]) []search.Result[Document] {
	byID := make(map[string]search.Result[Document], len(ranked))
	for _, r := range ranked {
		byID[r.Item.ID] = r
	}
	out := make([]search.Result[Document], 0, len(ranked))
	for _, p := range listing {
		if r, ok := byID[p.ID]; ok {
			out = append(out, r)
		}
	}
	return out
}

func (s *Service) favoriteSet(ctx context.Context, userID string) (map[string]struct{}, error) {
	set := map[string]struct{}{}
	if userID == "" {
		return set, nil
	}
	ids, err := s.favorites.ListPropertyIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// Get returns a property as seen by userID.
func (s *Service) Get(ctx context.Context, userID, id string) (Item, error) {
	p, err := s.properties.FindByID(ctx, id)
	if err != nil {
		return Item{}, err
	}
	fav := false
	if userID != "" {
		if fav, err = s.favorites.Exists(ctx, userID, id); err != nil {
			return Item{}, err
		}
	}
	return Item{Property: p, IsFavorite: fav}, nil
}

// Create stores a new listing. The agent defaults to the current user.
func (s *Service) Create(ctx context.Context, in Input) (*domain.Property, error) {
	if strings.TrimSpace(in.AgentID) == "" {
		in.AgentID = domain.ActorID(ctx)
	}
	p := &domain.Property{Images: []domain.Image{}}
	if err := s.apply(ctx, p, in); err != nil {
		return nil, err
	}

	created, err := s.properties.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	middleware.FromContext(ctx).Info("Property created", slog.String("property_id", created.ID))
	pubsub.Announce(ctx, s.publisher, entityName, domain.ActionCreated, created.ID, created.Title)
	return created, nil
}

// Update replaces the data of a listing. Images are kept.
func (s *Service) Update(ctx context.Context, id string, in Input) (*domain.Property, error) {
	p, err := s.properties.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.AgentID) == "" {
		in.AgentID = p.AgentID
	}
	if err := s.apply(ctx, p, in); err != nil {
		return nil, err
	}

	updated, err := s.properties.Update(ctx, p)
	if err != nil {
		return nil, err
	}
	pubsub.Announce(ctx, s.publisher, entityName, domain.ActionUpdated, updated.ID, updated.Title)
	return updated, nil
}

// Delete removes a listing, its favorites and its images.
func (s *Service) Delete(ctx context.Context, id string) error {
	logger := middleware.FromContext(ctx)

	p, err := s.properties.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.properties.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.favorites.RemoveProperty(ctx, id); err != nil {
		logger.Error("Failed to remove favorites of deleted property", slog.String("property_id", id), slog.String("error", err.Error()))
	}
	if err := s.uploader.RemoveOwned(ctx, domain.OwnerProperty, id); err != nil {
		logger.Error("Failed to remove property images", slog.String("property_id", id), slog.String("error", err.Error()))
	}
	pubsub.Announce(ctx, s.publisher, entityName, domain.ActionDeleted, id, p.Title)
	return nil
}

// AddFavorite marks a property as a favorite of userID. Repeating it is harmless.
func (s *Service) AddFavorite(ctx context.Context, userID, propertyID string) error {
	if _, err := s.properties.FindByID(ctx, propertyID); err != nil {
		return err
	}
	return s.favorites.Add(ctx, userID, propertyID)
}

// RemoveFavorite unmarks a property.
func (s *Service) RemoveFavorite(ctx context.Context, userID, propertyID string) error {
	return s.favorites.Remove(ctx, userID, propertyID)
}

// Favorites returns the favorites of userID, most recently added first.
func (s *Service) Favorites(ctx context.Context, userID string, page domain.Page) ([]Item, int64, error) {
	page = page.Normalize()
	ids, err := s.favorites.ListPropertyIDs(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	items, _, err := s.properties.List(ctx, domain.PropertyFilter{IDs: ids})
	if err != nil {
		return nil, 0, err
	}

	byID := make(map[string]*domain.Property, len(items))
	for _, p := range items {
		byID[p.ID] = p
	}
	ordered := make([]Item, 0, len(items))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, Item{Property: p, IsFavorite: true})
		}
	}
	return domain.Slice(ordered, page), int64(len(ordered)), nil
}

// AddImage stores an uploaded image and appends it to the gallery.
func (s *Service) AddImage(ctx context.Context, id string, fh *multipart.FileHeader) (*domain.Property, error) {
	p, err := s.properties.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	file, err := s.uploader.SaveMultipart(ctx, domain.OwnerProperty, id, fh)
	if err != nil {
		return nil, err
	}
	p.Images = append(p.Images, storage.ImageOf(file))

	updated, err := s.properties.Update(ctx, p)
	if err != nil {
		if rmErr := s.uploader.Remove(ctx, file.ID); rmErr != nil {
			middleware.FromContext(ctx).Error("Failed to roll back image upload",
				slog.String("file_id", file.ID), slog.String("error", rmErr.Error()))
		}
		return nil, err
	}
	pubsub.Announce(ctx, s.publisher, entityName, domain.ActionUpdated, updated.ID, updated.Title)
	return updated, nil
}

// RemoveImage drops an image from the gallery and deletes the file.
func (s *Service) RemoveImage(ctx context.Context, id, fileID string) (*domain.Property, error) {
	p, err := s.properties.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	images, found := domain.RemoveImage(p.Images, fileID)
	if !found {
		return nil, fmt.Errorf("image %s: %w", fileID, domain.ErrNotFound)
	}
	p.Images = images

	updated, err := s.properties.Update(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := s.uploader.Remove(ctx, fileID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		middleware.FromContext(ctx).Error("Failed to delete property image",
			slog.String("file_id", fileID), slog.String("error", err.Error()))
	}
	pubsub.Announce(ctx, s.publisher, entityName, domain.ActionUpdated, updated.ID, updated.Title)
	return updated, nil
}

// apply copies the input into p and validates the result together with the
// referenced development and agent.
func (s *Service) apply(ctx context.Context, p *domain.Property, in Input) error {
	p.Title = strings.TrimSpace(in.Title)
	p.Description = strings.TrimSpace(in.Description)
	p.Type = in.Type
	p.Operation = in.Operation
	p.Status = in.Status
	if p.Status == "" {
		p.Status = domain.PropertyAvailable
	}
	p.Price = in.Price
	p.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	p.Address = strings.TrimSpace(in.Address)
	p.Neighborhood = strings.TrimSpace(in.Neighborhood)
	p.City = strings.TrimSpace(in.City)
	p.State = strings.TrimSpace(in.State)
	p.Bedrooms = in.Bedrooms
	p.Bathrooms = in.Bathrooms
	p.ParkingSpaces = in.ParkingSpaces
	p.BuiltArea = in.BuiltArea
	p.LotArea = in.LotArea
	p.Features = cleanFeatures(in.Features)
	p.DevelopmentID = strings.TrimSpace(in.DevelopmentID)
	p.AgentID = strings.TrimSpace(in.AgentID)
	p.Featured = in.Featured

	verr := &domain.ValidationError{}
	if err := p.Validate(); err != nil {
		var fieldErrs *domain.ValidationError
		if !errors.As(err, &fieldErrs) {
			return err
		}
		verr.Merge(fieldErrs)
	}
	if p.DevelopmentID != "" {
		if err := exists(ctx, s.developments.FindByID, p.DevelopmentID); err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				return err
			}
			verr.Merge(domain.FieldError("development_id", "does not match any development"))
		}
	}
	if p.AgentID != "" {
		if err := exists(ctx, s.users.FindByID, p.AgentID); err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				return err
			}
			verr.Merge(domain.FieldError("agent_id", "does not match any user"))
		}
	}
	return verr.OrNil()
}

func exists[T any](ctx context.Context, find func(context.Context, string) (T, error), id string) error {
	_, err := find(ctx, id)
	return err
}

func cleanFeatures(items []string) []string {
	out := make([]string, 0, len(items))
	seen := map[string]struct{}{}
	for _, item := range items {
		item = strings.TrimSpace(item)
		key := strings.ToLower(item)
		if item == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}
