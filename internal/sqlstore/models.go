package sqlstore

import (
	"time"

	"github.com/nfrund/propdesk/internal/domain"
)

func allModels() []any {
	return []any{
		&userModel{},
		&developmentModel{},
		&serviceTypeModel{},
		&professionalModel{},
		&propertyModel{},
		&favoriteModel{},
		&fileModel{},
	}
}

type userModel struct {
	ID                string `gorm:"primaryKey;size:36"`
	Name              string `gorm:"size:120;not null"`
	Email             string `gorm:"size:254;not null;uniqueIndex"`
	Role              string `gorm:"size:16;not null;index"`
	Phone             string `gorm:"size:30"`
	Active            bool   `gorm:"not null"`
	PasswordHash      string `gorm:"size:100"`
	ResetToken        string `gorm:"size:128;index"`
	ResetTokenExpires *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (userModel) TableName() string { return "users" }

func userFromDomain(u *domain.User) userModel {
	return userModel{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		Role:              string(u.Role),
		Phone:             u.Phone,
		Active:            u.Active,
		PasswordHash:      u.PasswordHash,
		ResetToken:        u.ResetToken,
		ResetTokenExpires: u.ResetTokenExpires,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

func (m *userModel) toDomain() *domain.User {
	return &domain.User{
		ID:                m.ID,
		Name:              m.Name,
		Email:             m.Email,
		Role:              domain.Role(m.Role),
		Phone:             m.Phone,
		Active:            m.Active,
		PasswordHash:      m.PasswordHash,
		ResetToken:        m.ResetToken,
		ResetTokenExpires: m.ResetTokenExpires,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

type developmentModel struct {
	ID           string   `gorm:"primaryKey;size:36"`
	Name         string   `gorm:"size:200;not null"`
	Type         string   `gorm:"size:32;not null;index"`
	Status       string   `gorm:"size:32;not null;index"`
	Developer    string   `gorm:"size:200"`
	Description  string   `gorm:"type:text"`
	Address      string   `gorm:"size:300"`
	City         string   `gorm:"size:120;index"`
	State        string   `gorm:"size:120"`
	PostalCode   string   `gorm:"size:12"`
	Latitude     *float64 `gorm:"default:null"`
	Longitude    *float64 `gorm:"default:null"`
	Towers       int
	Floors       int
	TotalUnits   int
	HouseModels  int
	TotalLots    int
	LotAreaMin   float64
	LotAreaMax   float64
	Currency     string `gorm:"size:3"`
	PriceFrom    float64
	PriceTo      float64
	Amenities    []string `gorm:"serializer:json;type:text"`
	DeliveryDate *time.Time
	VideoURL     string         `gorm:"size:500"`
	BrochureURL  string         `gorm:"size:500"`
	Images       []domain.Image `gorm:"serializer:json;type:text"`
	CreatedAt    time.Time      `gorm:"index"`
	UpdatedAt    time.Time
}

func (developmentModel) TableName() string { return "developments" }

func developmentFromDomain(d *domain.Development) developmentModel {
	return developmentModel{
		ID:           d.ID,
		Name:         d.Name,
		Type:         string(d.Type),
		Status:       string(d.Status),
		Developer:    d.Developer,
		Description:  d.Description,
		Address:      d.Address,
		City:         d.City,
		State:        d.State,
		PostalCode:   d.PostalCode,
		Latitude:     d.Latitude,
		Longitude:    d.Longitude,
		Towers:       d.Towers,
		Floors:       d.Floors,
		TotalUnits:   d.TotalUnits,
		HouseModels:  d.HouseModels,
		TotalLots:    d.TotalLots,
		LotAreaMin:   d.LotAreaMin,
		LotAreaMax:   d.LotAreaMax,
		Currency:     d.Currency,
		PriceFrom:    d.PriceFrom,
		PriceTo:      d.PriceTo,
		Amenities:    orEmpty(d.Amenities),
		DeliveryDate: d.DeliveryDate,
		VideoURL:     d.VideoURL,
		BrochureURL:  d.BrochureURL,
		Images:       orEmpty(d.Images),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func (m *developmentModel) toDomain() *domain.Development {
	return &domain.Development{
		ID:           m.ID,
		Name:         m.Name,
		Type:         domain.DevelopmentType(m.Type),
		Status:       domain.DevelopmentStatus(m.Status),
		Developer:    m.Developer,
		Description:  m.Description,
		Address:      m.Address,
		City:         m.City,
		State:        m.State,
		PostalCode:   m.PostalCode,
		Latitude:     m.Latitude,
		Longitude:    m.Longitude,
		Towers:       m.Towers,
		Floors:       m.Floors,
		TotalUnits:   m.TotalUnits,
		HouseModels:  m.HouseModels,
		TotalLots:    m.TotalLots,
		LotAreaMin:   m.LotAreaMin,
		LotAreaMax:   m.LotAreaMax,
		Currency:     m.Currency,
		PriceFrom:    m.PriceFrom,
		PriceTo:      m.PriceTo,
		Amenities:    orEmpty(m.Amenities),
		DeliveryDate: m.DeliveryDate,
		VideoURL:     m.VideoURL,
		BrochureURL:  m.BrochureURL,
		Images:       orEmpty(m.Images),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

type serviceTypeModel struct {
	ID          string `gorm:"primaryKey;size:36"`
	Name        string `gorm:"size:120;not null"`
	NameKey     string `gorm:"size:120;not null;uniqueIndex"`
	Description string `gorm:"size:1000"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (serviceTypeModel) TableName() string { return "service_types" }

func (m *serviceTypeModel) toDomain() *domain.ServiceType {
	return &domain.ServiceType{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

type professionalModel struct {
	ID             string   `gorm:"primaryKey;size:36"`
	Name           string   `gorm:"size:200;not null"`
	Email          string   `gorm:"size:254"`
	Phone          string   `gorm:"size:30"`
	Company        string   `gorm:"size:200"`
	City           string   `gorm:"size:120"`
	Website        string   `gorm:"size:500"`
	Description    string   `gorm:"type:text"`
	ServiceTypeIDs []string `gorm:"serializer:json;type:text"`
	PhotoURL       string   `gorm:"size:500"`
	PhotoFileID    string   `gorm:"size:36"`
	Active         bool     `gorm:"not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (professionalModel) TableName() string { return "professionals" }

func professionalFromDomain(p *domain.Professional) professionalModel {
	return professionalModel{
		ID:             p.ID,
		Name:           p.Name,
		Email:          p.Email,
		Phone:          p.Phone,
		Company:        p.Company,
		City:           p.City,
		Website:        p.Website,
		Description:    p.Description,
		ServiceTypeIDs: orEmpty(p.ServiceTypeIDs),
		PhotoURL:       p.PhotoURL,
		PhotoFileID:    p.PhotoFileID,
		Active:         p.Active,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func (m *professionalModel) toDomain() *domain.Professional {
	return &domain.Professional{
		ID:             m.ID,
		Name:           m.Name,
		Email:          m.Email,
		Phone:          m.Phone,
		Company:        m.Company,
		City:           m.City,
		Website:        m.Website,
		Description:    m.Description,
		ServiceTypeIDs: orEmpty(m.ServiceTypeIDs),
		PhotoURL:       m.PhotoURL,
		PhotoFileID:    m.PhotoFileID,
		Active:         m.Active,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

type propertyModel struct {
	ID            string  `gorm:"primaryKey;size:36"`
	Title         string  `gorm:"size:200;not null"`
	Description   string  `gorm:"type:text"`
	Type          string  `gorm:"size:32;not null;index"`
	Operation     string  `gorm:"size:16;not null;index"`
	Status        string  `gorm:"size:16;not null;index"`
	Price         float64 `gorm:"index"`
	Currency      string  `gorm:"size:3"`
	Address       string  `gorm:"size:300"`
	Neighborhood  string  `gorm:"size:120"`
	City          string  `gorm:"size:120;index"`
	State         string  `gorm:"size:120"`
	Bedrooms      int
	Bathrooms     float64
	ParkingSpaces int
	BuiltArea     float64
	LotArea       float64
	Features      []string       `gorm:"serializer:json;type:text"`
	Images        []domain.Image `gorm:"serializer:json;type:text"`
	DevelopmentID string         `gorm:"size:36;index"`
	AgentID       string         `gorm:"size:36"`
	Featured      bool
	CreatedAt     time.Time `gorm:"index"`
	UpdatedAt     time.Time
}

func (propertyModel) TableName() string { return "properties" }

func propertyFromDomain(p *domain.Property) propertyModel {
	return propertyModel{
		ID:            p.ID,
		Title:         p.Title,
		Description:   p.Description,
		Type:          string(p.Type),
		Operation:     string(p.Operation),
		Status:        string(p.Status),
		Price:         p.Price,
		Currency:      p.Currency,
		Address:       p.Address,
		Neighborhood:  p.Neighborhood,
		City:          p.City,
		State:         p.State,
		Bedrooms:      p.Bedrooms,
		Bathrooms:     p.Bathrooms,
		ParkingSpaces: p.ParkingSpaces,
		BuiltArea:     p.BuiltArea,
		LotArea:       p.LotArea,
		Features:      orEmpty(p.Features),
		Images:        orEmpty(p.Images),
		DevelopmentID: p.DevelopmentID,
		AgentID:       p.AgentID,
		Featured:      p.Featured,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func (m *propertyModel) toDomain() *domain.Property {
	return &domain.Property{
		ID:            m.ID,
		Title:         m.Title,
		Description:   m.Description,
		Type:          domain.PropertyType(m.Type),
		Operation:     domain.Operation(m.Operation),
		Status:        domain.PropertyStatus(m.Status),
		Price:         m.Price,
		Currency:      m.Currency,
		Address:       m.Address,
		Neighborhood:  m.Neighborhood,
		City:          m.City,
		State:         m.State,
		Bedrooms:      m.Bedrooms,
		Bathrooms:     m.Bathrooms,
		ParkingSpaces: m.ParkingSpaces,
		BuiltArea:     m.BuiltArea,
		LotArea:       m.LotArea,
		Features:      orEmpty(m.Features),
		Images:        orEmpty(m.Images),
		DevelopmentID: m.DevelopmentID,
		AgentID:       m.AgentID,
		Featured:      m.Featured,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

type favoriteModel struct {
	UserID     string `gorm:"primaryKey;size:36"`
	PropertyID string `gorm:"primaryKey;size:36;index"`
	CreatedAt  time.Time
}

func (favoriteModel) TableName() string { return "favorites" }

type fileModel struct {
	ID          string `gorm:"primaryKey;size:36"`
	OwnerType   string `gorm:"size:16;not null;index:idx_files_owner"`
	OwnerID     string `gorm:"size:36;not null;index:idx_files_owner"`
	Filename    string `gorm:"size:255;not null"`
	MIMEType    string `gorm:"size:100;not null"`
	Size        int64
	StoragePath string `gorm:"size:500;not null"`
	CreatedAt   time.Time
}

func (fileModel) TableName() string { return "files" }

func (m *fileModel) toDomain() *domain.File {
	return &domain.File{
		ID:          m.ID,
		OwnerType:   domain.OwnerType(m.OwnerType),
		OwnerID:     m.OwnerID,
		Filename:    m.Filename,
		MIMEType:    m.MIMEType,
		Size:        m.Size,
		StoragePath: m.StoragePath,
		CreatedAt:   m.CreatedAt,
	}
}

func orEmpty[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
