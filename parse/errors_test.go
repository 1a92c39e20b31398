package parse

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_WrapAndUnwrap(t *testing.T) {
	err := NewError("warp x", 5, "bad destination").Wrap(ErrExhausted)

	assert.Equal(t, "bad destination", err.Error())
	assert.True(t, errors.Is(err, ErrExhausted))

	var parseErr *Error
	require.True(t, errors.As(error(err), &parseErr))
	assert.Equal(t, 5, parseErr.Offset)
}

func TestError_WithUsage(t *testing.T) {
	original := NewError("warp x", 5, "bad destination")
	annotated := original.WithUsage("<destination>")

	assert.Equal(t, "<destination>", annotated.Usage)
	assert.Empty(t, original.Usage, "the original error stays untouched")
	assert.Equal(t, original.Message, annotated.Message)
}

func TestError_AnnotatedPosition(t *testing.T) {
	err := NewError("warp hom", 5, "bad destination")

	assert.Equal(t, "warp hom\n     ^", err.AnnotatedPosition())
}

func TestError_AnnotatedPositionAtEnd(t *testing.T) {
	err := NewError("warp", 4, "not enough arguments")
	assert.Equal(t, "warp\n    ^", err.AnnotatedPosition())

	// An offset past the input clamps to the end.
	err = NewError("warp", 99, "not enough arguments")
	assert.Equal(t, "warp\n    ^", err.AnnotatedPosition())
}

func TestError_AnnotatedPositionElidesLongInput(t *testing.T) {
	source := strings.Repeat("a", 200) + "XYZ" + strings.Repeat("b", 200)
	err := NewError(source, 200, "bad token")

	rendered := err.AnnotatedPositionWidth(80)
	lines := strings.Split(rendered, "\n")
	require.Len(t, lines, 2)

	assert.True(t, strings.HasPrefix(lines[0], "..."))
	assert.True(t, strings.HasSuffix(lines[0], "..."))
	assert.LessOrEqual(t, len(lines[0]), 80+6, "window plus elision markers")

	// The caret must sit under the character the offset names.
	caret := strings.Index(lines[1], "^")
	require.GreaterOrEqual(t, caret, 0)
	assert.Equal(t, byte('X'), lines[0][caret])
}

func TestError_AnnotatedPositionWindowAtStart(t *testing.T) {
	source := "short prefix " + strings.Repeat("x", 200)
	err := NewError(source, 6, "bad token")

	rendered := err.AnnotatedPositionWidth(40)
	lines := strings.Split(rendered, "\n")
	require.Len(t, lines, 2)

	assert.False(t, strings.HasPrefix(lines[0], "..."), "window pinned to the start needs no left marker")
	assert.True(t, strings.HasSuffix(lines[0], "..."))
	caret := strings.Index(lines[1], "^")
	assert.Equal(t, 6, caret)
}

func TestError_AnnotatedPositionMinimumWidth(t *testing.T) {
	source := strings.Repeat("z", 50)
	err := NewError(source, 25, "bad token")

	// Absurdly small widths are clamped instead of panicking.
	rendered := err.AnnotatedPositionWidth(1)
	assert.Contains(t, rendered, "^")
}
