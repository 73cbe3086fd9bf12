package properties_test

import (
	"net/http"
	"testing"

	"github.com/nfrund/propdesk/internal/domain"
	"github.com/nfrund/propdesk/internal/handlers"
	"github.com/nfrund/propdesk/internal/modules/properties"
	"github.com/nfrund/propdesk/internal/testutils/apitest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listing(t *testing.T, app *apitest.App, query, token string) handlers.ListResponse[properties.Item] {
	t.Helper()
	rec := app.Do(t, http.MethodGet, "/api/properties"+query, nil, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return apitest.Decode[handlers.ListResponse[properties.Item]](t, rec)
}

func ids(items []properties.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestPropertiesAPI(t *testing.T) {
	app := apitest.New(t)
	app.Boot(t, properties.New())
	agent, token := app.Login(t, domain.RoleAgent)
	_, otherToken := app.Login(t, domain.RoleAgent)

	dev, err := app.Repos.Developments.Create(t.Context(), &domain.Development{
		Name: "Lomas del Bosque", Type: domain.DevelopmentLots, Status: domain.DevelopmentPresale,
		Developer: "Inmobiliaria Sur", Description: "Terrenos", Address: "Km 12", City: "Tlajomulco", State: "Jalisco",
		Currency: domain.CurrencyMXN, PriceFrom: 600000, PriceTo: 1500000,
		Amenities: []string{}, Images: []domain.Image{},
	})
	require.NoError(t, err)

	create := func(t *testing.T, body map[string]any) domain.Property {
		t.Helper()
		rec := app.Do(t, http.MethodPost, "/api/properties", body, token)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		return apitest.Decode[domain.Property](t, rec)
	}

	polanco := create(t, map[string]any{
		"title": "Casa en Polanco", "type": "house", "operation": "sale", "price": 8500000, "currency": "mxn",
		"neighborhood": "Polanco", "city": "Ciudad de México", "state": "CDMX", "bedrooms": 4, "bathrooms": 3.5,
		"features": []string{"Jardín", " Alberca ", "jardín"},
	})
	rental := create(t, map[string]any{
		"title": "Departamento con vista", "type": "apartment", "operation": "rent", "price": 25000, "currency": "MXN",
		"neighborhood": "Providencia", "city": "Guadalajara", "state": "Jalisco", "bedrooms": 2, "bathrooms": 1,
	})
	lot := create(t, map[string]any{
		"title": "Terreno campestre", "type": "lot", "operation": "sale", "price": 900000, "currency": "MXN",
		"city": "Tlajomulco", "state": "Jalisco", "development_id": dev.ID,
	})
	house := create(t, map[string]any{
		"title": "Casa amplia", "type": "house", "operation": "sale", "price": 3000000, "currency": "MXN",
		"neighborhood": "Providencia", "city": "Guadalajara", "state": "Jalisco", "bedrooms": 3, "bathrooms": 2,
	})

	t.Run("create defaults", func(t *testing.T) {
		assert.Equal(t, domain.PropertyAvailable, polanco.Status)
		assert.Equal(t, "MXN", polanco.Currency)
		assert.Equal(t, agent.ID, polanco.AgentID)
		assert.Equal(t, []string{"Jardín", "Alberca"}, polanco.Features)
	})

	t.Run("create invalid", func(t *testing.T) {
		rec := app.Do(t, http.MethodPost, "/api/properties", map[string]any{
			"title": "Castillo", "type": "castle", "operation": "sale", "price": 0, "currency": "MXN",
			"city": "León", "development_id": "missing",
		}, token)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		fields := apitest.Decode[handlers.ErrorResponse](t, rec).Fields
		assert.Contains(t, fields, "type")
		assert.Contains(t, fields, "price")
		assert.Contains(t, fields, "development_id")
	})

	t.Run("filters", func(t *testing.T) {
		list := listing(t, app, "?type=lot", token)
		assert.Equal(t, []string{lot.ID}, ids(list.Items))

		list = listing(t, app, "?operation=sale&min_price=1000000", token)
		assert.ElementsMatch(t, []string{polanco.ID, house.ID}, ids(list.Items))

		list = listing(t, app, "?development_id="+dev.ID, token)
		assert.Equal(t, []string{lot.ID}, ids(list.Items))

		list = listing(t, app, "?sort=price_asc&page_size=2", token)
		assert.Equal(t, []string{rental.ID, lot.ID}, ids(list.Items))
		assert.Equal(t, int64(4), list.Total)
		assert.Equal(t, 2, list.TotalPages)
	})

	t.Run("invalid filters", func(t *testing.T) {
		rec := app.Do(t, http.MethodGet, "/api/properties?min_price=abc&type=castle&sort=random", nil, token)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		fields := apitest.Decode[handlers.ErrorResponse](t, rec).Fields
		assert.Contains(t, fields, "min_price")
		assert.Contains(t, fields, "type")
		assert.Contains(t, fields, "sort")
	})

	t.Run("search ranks by relevance", func(t *testing.T) {
		list := listing(t, app, "?search=casa+providencia", token)
		assert.Equal(t, []string{house.ID, polanco.ID, rental.ID}, ids(list.Items))
		assert.Equal(t, int64(3), list.Total)
		assert.Greater(t, list.Items[0].Score, list.Items[1].Score)
	})

	t.Run("search keeps an explicit sort", func(t *testing.T) {
		list := listing(t, app, "?search=casa+providencia&sort=price_asc", token)
		assert.Equal(t, []string{rental.ID, house.ID, polanco.ID}, ids(list.Items))
	})

	t.Run("search tolerates accents and typos", func(t *testing.T) {
		list := listing(t, app, "?search=JARDIN", token)
		assert.Equal(t, []string{polanco.ID}, ids(list.Items))

		list = listing(t, app, "?search=polanko", token)
		assert.Equal(t, []string{polanco.ID}, ids(list.Items))
	})

	t.Run("search combines with filters and pages", func(t *testing.T) {
		list := listing(t, app, "?search=casa&city=guadalajara", token)
		assert.Equal(t, []string{house.ID}, ids(list.Items))

		list = listing(t, app, "?search=casa+providencia&page=2&page_size=2", token)
		assert.Equal(t, []string{rental.ID}, ids(list.Items))
		assert.Equal(t, int64(3), list.Total)
	})

	t.Run("search without matches", func(t *testing.T) {
		list := listing(t, app, "?search=castillo", token)
		assert.Empty(t, list.Items)
		assert.Zero(t, list.Total)
	})

	t.Run("favorites", func(t *testing.T) {
		rec := app.Do(t, http.MethodPost, "/api/properties/"+polanco.ID+"/favorite", nil, token)
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
		rec = app.Do(t, http.MethodPost, "/api/properties/"+polanco.ID+"/favorite", nil, token)
		require.Equal(t, http.StatusNoContent, rec.Code)
		rec = app.Do(t, http.MethodPost, "/api/properties/missing/favorite", nil, token)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		list := listing(t, app, "?favorites=true", token)
		require.Equal(t, []string{polanco.ID}, ids(list.Items))
		assert.True(t, list.Items[0].IsFavorite)

		for _, it := range listing(t, app, "", otherToken).Items {
			assert.False(t, it.IsFavorite)
		}
		assert.Empty(t, listing(t, app, "?favorites=true", otherToken).Items)

		rec = app.Do(t, http.MethodGet, "/api/properties/"+polanco.ID, nil, token)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, apitest.Decode[properties.Item](t, rec).IsFavorite)

		rec = app.Do(t, http.MethodGet, "/api/favorites", nil, token)
		require.Equal(t, http.StatusOK, rec.Code)
		favs := apitest.Decode[handlers.ListResponse[properties.Item]](t, rec)
		assert.Equal(t, []string{polanco.ID}, ids(favs.Items))

		rec = app.Do(t, http.MethodDelete, "/api/properties/"+polanco.ID+"/favorite", nil, token)
		require.Equal(t, http.StatusNoContent, rec.Code)
		rec = app.Do(t, http.MethodGet, "/api/favorites", nil, token)
		assert.Empty(t, apitest.Decode[handlers.ListResponse[properties.Item]](t, rec).Items)
	})

	t.Run("update", func(t *testing.T) {
		rec := app.Do(t, http.MethodPut, "/api/properties/"+rental.ID, map[string]any{
			"title": "Departamento con vista", "type": "apartment", "operation": "rent", "status": "rented",
			"price": 27000, "currency": "MXN", "city": "Guadalajara",
		}, token)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		updated := apitest.Decode[domain.Property](t, rec)
		assert.Equal(t, domain.PropertyRented, updated.Status)
		assert.Equal(t, 27000.0, updated.Price)
		assert.Empty(t, updated.Neighborhood)
	})

	t.Run("images and delete", func(t *testing.T) {
		rec := app.Upload(t, "/api/properties/"+lot.ID+"/images", "image", "vista.png", apitest.PNG, token)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		withImage := apitest.Decode[domain.Property](t, rec)
		require.Len(t, withImage.Images, 1)

		rec = app.Do(t, http.MethodPost, "/api/properties/"+lot.ID+"/favorite", nil, otherToken)
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = app.Do(t, http.MethodDelete, "/api/properties/"+lot.ID, nil, token)
		require.Equal(t, http.StatusNoContent, rec.Code)

		_, err := app.Repos.Files.FindByID(t.Context(), withImage.Images[0].FileID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		rec = app.Do(t, http.MethodGet, "/api/favorites", nil, otherToken)
		assert.Empty(t, apitest.Decode[handlers.ListResponse[properties.Item]](t, rec).Items)
	})
}
