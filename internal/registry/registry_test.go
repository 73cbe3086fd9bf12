package registry

import (
	"testing"

	"github.com/nfrund/propdesk/internal/config"
	"github.com/stretchr/testify/assert"
)

type greeter interface{ Greet() string }

type spanishGreeter struct{}

func (spanishGreeter) Greet() string { return "hola" }

func TestRegistry(t *testing.T) {
	cfg := &config.Config{ServerAddr: ":9999"}
	reg := New(cfg)
	assert.Equal(t, ":9999", reg.Config().GetServerAddr())

	key := Key[greeter]("test.greeter")

	_, ok := Get(reg, key)
	assert.False(t, ok)
	assert.Panics(t, func() { MustGet(reg, key) })

	Set[greeter](reg, key, spanishGreeter{})
	g, ok := Get(reg, key)
	assert.True(t, ok)
	assert.Equal(t, "hola", g.Greet())
	assert.Equal(t, "hola", MustGet(reg, key).Greet())

	// Same name, different type.
	_, ok = Get(reg, Key[string]("test.greeter"))
	assert.False(t, ok)

	Set(reg, Key[int]("a.first"), 1)
	assert.Equal(t, []string{"a.first", "test.greeter"}, reg.Names())
}
