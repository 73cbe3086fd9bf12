package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/surrealdb/surrealdb.go"
)

func TestTransient(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{context.DeadlineExceeded, true},
		{fmt.Errorf("query: %w", io.EOF), true},
		{io.ErrUnexpectedEOF, true},
		{errors.New("dial tcp: connection refused"), true},
		{errors.New("write: Broken Pipe"), true},
		{errors.New("Parse error"), false},
		{ErrAlreadyExists, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, transient(tt.err), "%v", tt.err)
	}
}

func TestSafeURL(t *testing.T) {
	assert.Equal(t, "ws://root:xxxxx@localhost:8000/rpc", safeURL("ws://root:secret@localhost:8000/rpc"))
	assert.Equal(t, "ws://localhost:8000/rpc", safeURL("ws://localhost:8000/rpc"))
	assert.Equal(t, "invalid-url", safeURL("://bad"))
}

func TestConnection_NotConnected(t *testing.T) {
	conn := NewConnection(nil)

	err := conn.WithConnection(context.Background(), func(*surrealdb.DB) error { return nil })
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.False(t, conn.IsHealthy())
	assert.ErrorIs(t, conn.Ping(context.Background()), ErrNotConnected)
	assert.NoError(t, conn.Close(context.Background()))
	assert.NoError(t, conn.Close(context.Background()), "close is idempotent")
}
