package testutils

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/nfrund/propdesk/internal/auth"
	"github.com/nfrund/propdesk/internal/domain"
)

// DefaultPassword is the password given to users created by CreateUser.
const DefaultPassword = "password123"

var userSeq atomic.Int64

// CreateUser stores an active user with the given role and DefaultPassword.
func CreateUser(t *testing.T, users domain.UserRepository, role domain.Role) *domain.User {
	t.Helper()

	hash, err := auth.HashPassword(DefaultPassword)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	n := userSeq.Add(1)
	u, err := users.Create(context.Background(), &domain.User{
		Name:         fmt.Sprintf("Test %s %d", role, n),
		Email:        fmt.Sprintf("%s-%d@example.com", role, n),
		Role:         role,
		Active:       true,
		PasswordHash: hash,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// SentEmail is one message captured by RecordingSender.
type SentEmail struct {
	To      string
	Subject string
	Body    string
}

// RecordingSender is a domain.EmailSender that keeps messages in memory.
type RecordingSender struct {
	mu   sync.Mutex
	sent []SentEmail
	Err  error
}

func (s *RecordingSender) Send(to, subject, htmlBody string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.sent = append(s.sent, SentEmail{To: to, Subject: subject, Body: htmlBody})
	return nil
}

// Sent returns a copy of the captured messages.
func (s *RecordingSender) Sent() []SentEmail {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SentEmail(nil), s.sent...)
}

// CreateProperty stores an available sale listing in Guadalajara. mutate,
// when given, adjusts the record before it is saved.
func CreateProperty(t *testing.T, props domain.PropertyRepository, mutate func(*domain.Property)) *domain.Property {
	t.Helper()

	p := &domain.Property{
		Title:     fmt.Sprintf("Casa de prueba %d", userSeq.Add(1)),
		Type:      domain.PropertyHouse,
		Operation: domain.OperationSale,
		Status:    domain.PropertyAvailable,
		Price:     2_500_000,
		Currency:  domain.CurrencyMXN,
		City:      "Guadalajara",
		State:     "Jalisco",
		Bedrooms:  3,
		Bathrooms: 2,
		Features:  []string{},
		Images:    []domain.Image{},
	}
	if mutate != nil {
		mutate(p)
	}
	created, err := props.Create(context.Background(), p)
	if err != nil {
		t.Fatalf("create property: %v", err)
	}
	return created
}
