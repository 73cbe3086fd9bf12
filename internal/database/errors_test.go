package database

import (
	"errors"
	"testing"

	"github.com/nfrund/propdesk/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestDBError_IsAndUnwrap(t *testing.T) {
	err := NewDBError(ErrNotFound, "select operation failed")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(err, domain.ErrNotFound), "store errors must satisfy the domain sentinel")
	assert.False(t, errors.Is(err, ErrAlreadyExists))
	assert.Equal(t, ErrNotFound, errors.Unwrap(err))
}

func TestDBError_MessageHidesParamValues(t *testing.T) {
	err := NewDBError(ErrQueryFailed, "query failed").
		WithQuery("SELECT * FROM user WHERE password_hash = $hash").
		WithParams(map[string]any{"hash": "super-secret"})

	msg := err.Error()
	assert.Contains(t, msg, "Query: SELECT * FROM user")
	assert.Contains(t, msg, "Params: hash")
	assert.NotContains(t, msg, "super-secret")
}

func TestWrapError(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, WrapError(nil, "ctx"))
	})

	t.Run("prefixes existing DBError context", func(t *testing.T) {
		base := NewDBError(ErrNotFound, "record not found")
		wrapped := WrapError(base, "select operation failed")
		assert.Contains(t, wrapped.Error(), "select operation failed: record not found")
		assert.True(t, errors.Is(wrapped, ErrNotFound))
	})

	t.Run("wraps plain errors", func(t *testing.T) {
		plain := errors.New("boom")
		wrapped := WrapError(plain, "create operation failed")
		assert.ErrorIs(t, wrapped, plain)
	})
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"unique index", errors.New("Database index `user_email` already contains 'a@b.c'"), ErrAlreadyExists},
		{"record exists", errors.New("Database record `user:1` already exists"), ErrAlreadyExists},
		{"other failure", errors.New("Parse error: unexpected token"), ErrQueryFailed},
		{"already classified", NewDBError(ErrNotConnected, "database not connected"), ErrNotConnected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, classifyError(tt.err), tt.target)
		})
	}
	assert.Nil(t, classifyError(nil))
}
