package developments

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/nfrund/propdesk/internal/domain"
)

// Step is one page of the development capture wizard.
type Step string

const (
	StepGeneral   Step = "general"
	StepLocation  Step = "location"
	StepBuilding  Step = "building"
	StepHouses    Step = "houses"
	StepLots      Step = "lots"
	StepPricing   Step = "pricing"
	StepAmenities Step = "amenities"
	StepMedia     Step = "media"
)

// DateLayout is the format of Form.DeliveryDate.
const DateLayout = "2006-01-02"

// ErrUnknownStep is returned for a step that does not apply to the form's type.
var ErrUnknownStep = errors.New("unknown step")

var stepsByType = map[domain.DevelopmentType][]Step{
	domain.DevelopmentResidentialBuilding: {StepGeneral, StepLocation, StepBuilding, StepPricing, StepAmenities, StepMedia},
	domain.DevelopmentGatedCommunity:      {StepGeneral, StepLocation, StepHouses, StepPricing, StepAmenities, StepMedia},
	domain.DevelopmentLots:                {StepGeneral, StepLocation, StepLots, StepPricing, StepMedia},
	domain.DevelopmentCommercial:          {StepGeneral, StepLocation, StepBuilding, StepPricing, StepMedia},
	domain.DevelopmentMixedUse:            {StepGeneral, StepLocation, StepBuilding, StepPricing, StepAmenities, StepMedia},
}

type stepInfo struct {
	title  string
	fields []string
}

var stepCatalog = map[Step]stepInfo{
	StepGeneral:   {"General information", []string{"name", "developer", "description", "type", "status"}},
	StepLocation:  {"Location", []string{"address", "city", "state", "postal_code", "latitude", "longitude"}},
	StepBuilding:  {"Building", []string{"towers", "floors", "total_units"}},
	StepHouses:    {"Houses", []string{"total_units", "house_models"}},
	StepLots:      {"Lots", []string{"total_lots", "lot_area_min", "lot_area_max"}},
	StepPricing:   {"Pricing", []string{"currency", "price_from", "price_to"}},
	StepAmenities: {"Amenities", []string{"amenities"}},
	StepMedia:     {"Media", []string{"video_url", "brochure_url", "delivery_date"}},
}

// StepDefinition describes a wizard step to the frontend.
type StepDefinition struct {
	Step   Step     `json:"step"`
	Title  string   `json:"title"`
	Fields []string `json:"fields"`
}

// FieldErrors maps a form field to its message. Empty means valid.
type FieldErrors map[string]string

// Form is the wizard's working copy of a development.
type Form struct {
	Name        string                   `json:"name"`
	Developer   string                   `json:"developer"`
	Description string                   `json:"description"`
	Type        domain.DevelopmentType   `json:"type"`
	Status      domain.DevelopmentStatus `json:"status"`

	Address    string   `json:"address"`
	City       string   `json:"city"`
	State      string   `json:"state"`
	PostalCode string   `json:"postal_code"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`

	Towers      int     `json:"towers"`
	Floors      int     `json:"floors"`
	TotalUnits  int     `json:"total_units"`
	HouseModels int     `json:"house_models"`
	TotalLots   int     `json:"total_lots"`
	LotAreaMin  float64 `json:"lot_area_min"`
	LotAreaMax  float64 `json:"lot_area_max"`

	Currency  string  `json:"currency"`
	PriceFrom float64 `json:"price_from"`
	PriceTo   float64 `json:"price_to"`

	Amenities []string `json:"amenities"`

	VideoURL     string `json:"video_url"`
	BrochureURL  string `json:"brochure_url"`
	DeliveryDate string `json:"delivery_date"`
}

// Steps returns the ordered steps for a development type. An unknown or empty
// type only has the general step, where the type is chosen.
func Steps(t domain.DevelopmentType) []Step {
	steps, ok := stepsByType[t]
	if !ok {
		return []Step{StepGeneral}
	}
	return append([]Step(nil), steps...)
}

// StepDefinitions returns the steps of t with their titles and fields.
func StepDefinitions(t domain.DevelopmentType) []StepDefinition {
	steps := Steps(t)
	out := make([]StepDefinition, 0, len(steps))
	for _, s := range steps {
		info := stepCatalog[s]
		out = append(out, StepDefinition{Step: s, Title: info.title, Fields: append([]string(nil), info.fields...)})
	}
	return out
}

// HasStep reports whether step applies to type t.
func HasStep(t domain.DevelopmentType, step Step) bool {
	return indexOf(Steps(t), step) >= 0
}

// Next returns the step after step, or false on the last one.
func Next(t domain.DevelopmentType, step Step) (Step, bool) {
	steps := Steps(t)
	i := indexOf(steps, step)
	if i < 0 || i == len(steps)-1 {
		return "", false
	}
	return steps[i+1], true
}

// Previous returns the step before step, or false on the first one.
func Previous(t domain.DevelopmentType, step Step) (Step, bool) {
	steps := Steps(t)
	i := indexOf(steps, step)
	if i <= 0 {
		return "", false
	}
	return steps[i-1], true
}

func indexOf(steps []Step, step Step) int {
	for i, s := range steps {
		if s == step {
			return i
		}
	}
	return -1
}

// ValidateStep checks the fields of one step.
func ValidateStep(f Form, step Step) (FieldErrors, error) {
	if !HasStep(f.Type, step) {
		return nil, ErrUnknownStep
	}
	errs := FieldErrors{}
	switch step {
	case StepGeneral:
		required(errs, "name", f.Name)
		required(errs, "developer", f.Developer)
		required(errs, "description", f.Description)
		if f.Type == "" {
			errs["type"] = "is required"
		} else if !f.Type.Valid() {
			errs["type"] = "must be one of: " + joinTypes()
		}
		if f.Status != "" && !f.Status.Valid() {
			errs["status"] = "must be one of: planning, presale, construction, delivered"
		}
	case StepLocation:
		required(errs, "address", f.Address)
		required(errs, "city", f.City)
		required(errs, "state", f.State)
		if f.Latitude != nil && (math.IsNaN(*f.Latitude) || *f.Latitude < -90 || *f.Latitude > 90) {
			errs["latitude"] = "must be between -90 and 90"
		}
		if f.Longitude != nil && (math.IsNaN(*f.Longitude) || *f.Longitude < -180 || *f.Longitude > 180) {
			errs["longitude"] = "must be between -180 and 180"
		}
		if (f.Latitude == nil) != (f.Longitude == nil) {
			if f.Latitude == nil {
				errs["latitude"] = "is required when longitude is set"
			} else {
				errs["longitude"] = "is required when latitude is set"
			}
		}
	case StepBuilding:
		positiveInt(errs, "towers", f.Towers)
		positiveInt(errs, "floors", f.Floors)
		positiveInt(errs, "total_units", f.TotalUnits)
	case StepHouses:
		positiveInt(errs, "total_units", f.TotalUnits)
		positiveInt(errs, "house_models", f.HouseModels)
	case StepLots:
		positiveInt(errs, "total_lots", f.TotalLots)
		positive(errs, "lot_area_min", f.LotAreaMin)
		positive(errs, "lot_area_max", f.LotAreaMax)
		if _, bad := errs["lot_area_max"]; !bad && f.LotAreaMin > 0 && f.LotAreaMax < f.LotAreaMin {
			errs["lot_area_max"] = "must be greater than or equal to lot_area_min"
		}
	case StepPricing:
		if c := strings.ToUpper(strings.TrimSpace(f.Currency)); c != domain.CurrencyMXN && c != domain.CurrencyUSD {
			errs["currency"] = "must be one of: MXN, USD"
		}
		positive(errs, "price_from", f.PriceFrom)
		positive(errs, "price_to", f.PriceTo)
		if _, bad := errs["price_to"]; !bad && f.PriceFrom > 0 && f.PriceTo < f.PriceFrom {
			errs["price_to"] = "must be greater than or equal to price_from"
		}
	case StepAmenities:
		if len(cleanList(f.Amenities)) == 0 {
			errs["amenities"] = "must include at least one amenity"
		}
	case StepMedia:
		httpURL(errs, "video_url", f.VideoURL)
		httpURL(errs, "brochure_url", f.BrochureURL)
		if d := strings.TrimSpace(f.DeliveryDate); d != "" {
			if _, err := time.Parse(DateLayout, d); err != nil {
				errs["delivery_date"] = "must be a date in YYYY-MM-DD format"
			}
		}
	}
	return errs, nil
}

// Validate runs every step that applies to the form's type.
func Validate(f Form) FieldErrors {
	all := FieldErrors{}
	for _, step := range Steps(f.Type) {
		errs, _ := ValidateStep(f, step)
		for k, v := range errs {
			if _, exists := all[k]; !exists {
				all[k] = v
			}
		}
	}
	return all
}

// BuildPayload converts a validated form into a development. Fields of steps
// that do not apply to the type are zeroed.
func BuildPayload(f Form) *domain.Development {
	d := &domain.Development{
		Name:        strings.TrimSpace(f.Name),
		Type:        f.Type,
		Status:      f.Status,
		Developer:   strings.TrimSpace(f.Developer),
		Description: strings.TrimSpace(f.Description),
		Address:     strings.TrimSpace(f.Address),
		City:        strings.TrimSpace(f.City),
		State:       strings.TrimSpace(f.State),
		PostalCode:  strings.TrimSpace(f.PostalCode),
		Latitude:    f.Latitude,
		Longitude:   f.Longitude,
		Currency:    strings.ToUpper(strings.TrimSpace(f.Currency)),
		PriceFrom:   f.PriceFrom,
		PriceTo:     f.PriceTo,
		Amenities:   []string{},
		VideoURL:    strings.TrimSpace(f.VideoURL),
		BrochureURL: strings.TrimSpace(f.BrochureURL),
		Images:      []domain.Image{},
	}
	if d.Status == "" {
		d.Status = domain.DevelopmentPlanning
	}

	steps := Steps(f.Type)
	has := func(s Step) bool { return indexOf(steps, s) >= 0 }
	if has(StepBuilding) {
		d.Towers, d.Floors = f.Towers, f.Floors
	}
	if has(StepBuilding) || has(StepHouses) {
		d.TotalUnits = f.TotalUnits
	}
	if has(StepHouses) {
		d.HouseModels = f.HouseModels
	}
	if has(StepLots) {
		d.TotalLots, d.LotAreaMin, d.LotAreaMax = f.TotalLots, f.LotAreaMin, f.LotAreaMax
	}
	if has(StepAmenities) {
		d.Amenities = cleanList(f.Amenities)
	}
	if date, err := time.Parse(DateLayout, strings.TrimSpace(f.DeliveryDate)); err == nil {
		date = date.UTC()
		d.DeliveryDate = &date
	}
	return d
}

// FormFromDevelopment fills a form for editing an existing development.
func FormFromDevelopment(d *domain.Development) Form {
	f := Form{
		Name:        d.Name,
		Developer:   d.Developer,
		Description: d.Description,
		Type:        d.Type,
		Status:      d.Status,
		Address:     d.Address,
		City:        d.City,
		State:       d.State,
		PostalCode:  d.PostalCode,
		Latitude:    d.Latitude,
		Longitude:   d.Longitude,
		Towers:      d.Towers,
		Floors:      d.Floors,
		TotalUnits:  d.TotalUnits,
		HouseModels: d.HouseModels,
		TotalLots:   d.TotalLots,
		LotAreaMin:  d.LotAreaMin,
		LotAreaMax:  d.LotAreaMax,
		Currency:    d.Currency,
		PriceFrom:   d.PriceFrom,
		PriceTo:     d.PriceTo,
		Amenities:   append([]string{}, d.Amenities...),
		VideoURL:    d.VideoURL,
		BrochureURL: d.BrochureURL,
	}
	if d.DeliveryDate != nil {
		f.DeliveryDate = d.DeliveryDate.Format(DateLayout)
	}
	return f
}

func required(errs FieldErrors, field, value string) {
	if strings.TrimSpace(value) == "" {
		errs[field] = "is required"
	}
}

func positiveInt(errs FieldErrors, field string, v int) {
	if v <= 0 {
		errs[field] = "must be greater than 0"
	}
}

func positive(errs FieldErrors, field string, v float64) {
	if math.IsNaN(v) || v <= 0 {
		errs[field] = "must be greater than 0"
	}
}

func httpURL(errs FieldErrors, field, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	if err := domain.Validator().Var(value, "http_url"); err != nil {
		errs[field] = "must be a valid http or https URL"
	}
}

// cleanList trims entries and drops blanks and repeats.
func cleanList(items []string) []string {
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

func joinTypes() string {
	names := make([]string, len(domain.DevelopmentTypes))
	for i, t := range domain.DevelopmentTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
