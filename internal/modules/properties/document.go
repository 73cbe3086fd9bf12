package properties

import (
	"strings"

	"github.com/nfrund/propdesk/internal/domain"
	"github.com/nfrund/propdesk/internal/search"
)

// Document adapts a property to the search ranking.
type Document struct {
	*domain.Property
}

// SearchFields returns the weighted text of the listing.
func (d Document) SearchFields() []search.Field {
	p := d.Property
	return []search.Field{
		{Name: "title", Text: p.Title, Weight: search.WeightTitle},
		{Name: "neighborhood", Text: p.Neighborhood, Weight: search.WeightNeighborhood},
		{Name: "city", Text: p.City, Weight: search.WeightCity},
		{Name: "type", Text: p.Type.Label(), Weight: search.WeightType},
		{Name: "address", Text: p.Address, Weight: search.WeightAddress},
		{Name: "state", Text: p.State, Weight: search.WeightState},
		{Name: "features", Text: strings.Join(p.Features, " "), Weight: search.WeightFeatures},
		{Name: "description", Text: p.Description, Weight: search.WeightDescription},
	}
}

// Documents wraps a slice of properties.
func Documents(items []*domain.Property) []Document {
	out := make([]Document, len(items))
	for i, p := range items {
		out[i] = Document{p}
	}
	return out
}
