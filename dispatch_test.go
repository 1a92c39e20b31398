package dispatch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/napalu/dispatch/parse"
)

// testSource records every message sent to it.
type testSource struct {
	messages []string
}

func (s *testSource) SendMessage(message string) {
	s.messages = append(s.messages, message)
}

// parseLine runs element against a freshly tokenized line and returns the
// populated context.
func parseLine(t *testing.T, element Element, line string) (*parse.Context, error) {
	t.Helper()
	tokens, err := parse.QuotedTokenizer().Tokenize(line, false)
	require.NoError(t, err)
	args := parse.NewCursor(line, tokens)
	ctx := parse.NewContext()
	parseErr := element.Parse(&testSource{}, args, ctx)

	return ctx, parseErr
}

// completeLine runs element's completions against a partially typed line,
// tokenized the way CommandSpec tokenizes for suggestions.
func completeLine(t *testing.T, element Element, line string) []string {
	t.Helper()
	tokens, err := parse.QuotedStringTokenizer{}.Tokenize(line, true)
	require.NoError(t, err)
	args := parse.NewCursor(line, tokens)

	return element.Complete(&testSource{}, args, parse.NewContext())
}
