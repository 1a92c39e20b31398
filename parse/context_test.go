package parse

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContext_PutAndGet(t *testing.T) {
	ctx := NewContext()

	assert.False(t, ctx.Has("player"))
	assert.Nil(t, ctx.GetAll("player"))

	ctx.PutOne("player", "alice")
	ctx.PutOne("player", "bob")
	ctx.PutOne("count", 3)

	assert.True(t, ctx.Has("player"))
	assert.Equal(t, []interface{}{"alice", "bob"}, ctx.GetAll("player"))
	assert.Equal(t, []string{"player", "count"}, ctx.Keys(), "keys keep insertion order")
}

func TestContext_One(t *testing.T) {
	ctx := NewContext()
	ctx.PutOne("count", 3)

	value, ok := ctx.One("count")
	assert.True(t, ok)
	assert.Equal(t, 3, value)

	_, ok = ctx.One("missing")
	assert.False(t, ok)

	ctx.PutOne("count", 4)
	_, ok = ctx.One("count")
	assert.False(t, ok, "a key with several values has no single value")
}

func TestContext_RequireOne(t *testing.T) {
	ctx := NewContext()

	_, err := ctx.RequireOne("missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	ctx.PutOne("mode", "fast")
	value, err := ctx.RequireOne("mode")
	require.NoError(t, err)
	assert.Equal(t, "fast", value)

	ctx.PutOne("mode", "slow")
	_, err = ctx.RequireOne("mode")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTooMany))
}

func TestContext_StringAndBool(t *testing.T) {
	ctx := NewContext()
	ctx.PutOne("name", "alice")
	ctx.PutOne("count", 7)
	ctx.PutOne("verbose", true)

	name, err := ctx.String("name")
	require.NoError(t, err)
	assert.Equal(t, "alice", name)

	count, err := ctx.String("count")
	require.NoError(t, err)
	assert.Equal(t, "7", count, "non-string values render through Sprint")

	verbose, err := ctx.Bool("verbose")
	require.NoError(t, err)
	assert.True(t, verbose)

	_, err = ctx.Bool("name")
	assert.Error(t, err)
}

func TestContext_SnapshotRestore(t *testing.T) {
	ctx := NewContext()
	ctx.PutOne("a", 1)
	state := ctx.Snapshot()

	ctx.PutOne("a", 2)
	ctx.PutOne("b", 3)
	assert.Equal(t, []interface{}{1, 2}, ctx.GetAll("a"))

	ctx.Restore(state)
	assert.Equal(t, []interface{}{1}, ctx.GetAll("a"))
	assert.False(t, ctx.Has("b"))

	// The snapshot stays valid after a restore and after further changes.
	ctx.PutOne("c", 4)
	ctx.Restore(state)
	assert.Equal(t, []string{"a"}, ctx.Keys())
}
