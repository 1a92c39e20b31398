package parse

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCursor(t *testing.T, raw string) *Cursor {
	t.Helper()
	tokens, err := QuotedTokenizer().Tokenize(raw, false)
	require.NoError(t, err)

	return NewCursor(raw, tokens)
}

func TestCursor_NextAndPeek(t *testing.T) {
	c := newTestCursor(t, "a b c")

	assert.Equal(t, -1, c.Index())
	assert.True(t, c.HasNext())

	peeked, err := c.Peek()
	require.NoError(t, err)
	assert.Equal(t, "a", peeked)
	assert.Equal(t, -1, c.Index(), "peek must not advance")

	for _, want := range []string{"a", "b", "c"} {
		got, err := c.Next()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	assert.False(t, c.HasNext())
	_, err = c.Next()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExhausted))
	_, err = c.Peek()
	assert.True(t, errors.Is(err, ErrExhausted))
}

func TestCursor_NextIfPresent(t *testing.T) {
	c := newTestCursor(t, "only")

	value, ok := c.NextIfPresent()
	assert.True(t, ok)
	assert.Equal(t, "only", value)

	_, ok = c.NextIfPresent()
	assert.False(t, ok)
	assert.Equal(t, 0, c.Index(), "a failed NextIfPresent must not move the cursor")
}

func TestCursor_Offset(t *testing.T) {
	c := newTestCursor(t, "ab cd")

	assert.Equal(t, 0, c.Offset())
	_, _ = c.Next()
	assert.Equal(t, 3, c.Offset())
	_, _ = c.Next()
	assert.Equal(t, len("ab cd"), c.Offset(), "exhausted cursor points past the input")
}

func TestCursor_SnapshotApply(t *testing.T) {
	c := newTestCursor(t, "a b c")
	_, _ = c.Next()
	state := c.Snapshot()
	_, _ = c.Next()
	_, _ = c.Next()
	assert.False(t, c.HasNext())

	c.Apply(state, false)
	assert.Equal(t, 0, c.Index())
	next, err := c.Next()
	require.NoError(t, err)
	assert.Equal(t, "b", next)
}

func TestCursor_ApplyRestoreTokens(t *testing.T) {
	c := newTestCursor(t, "a b")
	state := c.Snapshot()
	_, _ = c.Next()
	c.Insert("x")

	// Index-only restore keeps the inserted token.
	c.Apply(state, false)
	assert.Equal(t, 3, c.Len())

	// Full restore discards it.
	c.Apply(state, true)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, -1, c.Index())
}

func TestCursor_Insert(t *testing.T) {
	c := newTestCursor(t, "--flag=5 rest")
	_, _ = c.Next()
	c.Insert("5")

	next, err := c.Next()
	require.NoError(t, err)
	assert.Equal(t, "5", next)

	tokens := c.Tokens()
	require.Len(t, tokens, 3)
	assert.Equal(t, tokens[0].End, tokens[1].Start, "synthetic token sits right after the current one")
	assert.Equal(t, tokens[1].Start, tokens[1].End, "synthetic token is zero width")

	next, err = c.Next()
	require.NoError(t, err)
	assert.Equal(t, "rest", next)
}

func TestCursor_RemoveRange(t *testing.T) {
	consume := func(c *Cursor, n int) Snapshot {
		var state Snapshot
		for i := 0; i < n; i++ {
			_, err := c.Next()
			require.NoError(t, err)
			state = c.Snapshot()
		}
		return state
	}

	t.Run("index past the range shifts left", func(t *testing.T) {
		c := newTestCursor(t, "t0 t1 t2 t3 t4 t5")
		consume(c, 2)
		_, _ = c.Next() // t2
		from := c.Snapshot()
		_, _ = c.Next() // t3
		to := c.Snapshot()
		consume(c, 2) // t4, t5
		require.Equal(t, 5, c.Index())

		c.RemoveRange(from, to)
		assert.Equal(t, 3, c.Index())
		assert.Equal(t, 4, c.Len())
	})

	t.Run("index inside the range pins before it", func(t *testing.T) {
		c := newTestCursor(t, "t0 t1 t2 t3")
		consume(c, 2)
		from := c.Snapshot() // index 1... consumed through t1
		_, _ = c.Next()      // t2, index 2
		to := c.Snapshot()

		c.RemoveRange(from, to)
		assert.Equal(t, 0, c.Index())
		assert.Equal(t, 2, c.Len())

		next, err := c.Next()
		require.NoError(t, err)
		assert.Equal(t, "t3", next)
	})

	t.Run("remaining stream skips the removed tokens", func(t *testing.T) {
		c := newTestCursor(t, "--all body tail")
		_, _ = c.Next() // --all
		flagState := c.Snapshot()
		c.RemoveRange(flagState, c.Snapshot())

		assert.Equal(t, -1, c.Index())
		var rest []string
		for c.HasNext() {
			v, err := c.Next()
			require.NoError(t, err)
			rest = append(rest, v)
		}
		assert.Equal(t, []string{"body", "tail"}, rest)
	})
}

func TestCursor_NewErrorPosition(t *testing.T) {
	c := newTestCursor(t, "warp home")
	_, _ = c.Next()

	parseErr := c.NewError("bad destination")
	assert.Equal(t, "warp home", parseErr.Source)
	assert.Equal(t, 5, parseErr.Offset)
	assert.Equal(t, "bad destination", parseErr.Message)

	formatted := c.NewErrorf("bad destination %q", "home")
	assert.Equal(t, `bad destination "home"`, formatted.Message)
}
