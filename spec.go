package dispatch

import (
	"errors"
	"strings"

	"github.com/napalu/dispatch/parse"
)

// CommandSpec ties an argument grammar to an executor callback plus
// description metadata. It satisfies Handler and is the usual thing to
// register with a Dispatcher. The element tree is built once and reused
// across parses.
type CommandSpec struct {
	args        Element
	executor    Executor
	description string
	extended    string
	permission  PermissionFunc
	tokenizer   parse.Tokenizer
}

// ConfigureSpecFunc adjusts a CommandSpec during construction.
type ConfigureSpecFunc func(s *CommandSpec)

// Arguments sets the argument grammar; several elements are wrapped in a
// sequence.
func Arguments(elements ...Element) ConfigureSpecFunc {
	return func(s *CommandSpec) {
		switch len(elements) {
		case 0:
			s.args = None()
		case 1:
			s.args = elements[0]
		default:
			s.args = Seq(elements...)
		}
	}
}

// WithExecutor sets the callback run once arguments parse successfully.
func WithExecutor(executor Executor) ConfigureSpecFunc {
	return func(s *CommandSpec) {
		s.executor = executor
	}
}

// Description sets the one-line description.
func Description(description string) ConfigureSpecFunc {
	return func(s *CommandSpec) {
		s.description = description
	}
}

// ExtendedDescription sets the detailed help text.
func ExtendedDescription(extended string) ConfigureSpecFunc {
	return func(s *CommandSpec) {
		s.extended = extended
	}
}

// Permission sets the hook deciding whether a source may run the command.
func Permission(permission PermissionFunc) ConfigureSpecFunc {
	return func(s *CommandSpec) {
		s.permission = permission
	}
}

// InputTokenizer overrides the tokenizer used to split argument lines.
func InputTokenizer(tokenizer parse.Tokenizer) ConfigureSpecFunc {
	return func(s *CommandSpec) {
		s.tokenizer = tokenizer
	}
}

// NewSpec creates a CommandSpec. Without configuration it accepts no
// arguments and has no executor.
func NewSpec(configure ...ConfigureSpecFunc) *CommandSpec {
	s := &CommandSpec{
		args: None(),
		// Trailing whitespace is preserved as an empty trailing token so
		// completion can tell a finished word from one still being typed.
		tokenizer: parse.QuotedStringTokenizer{},
	}
	for _, config := range configure {
		config(s)
	}

	return s
}

// populate parses the full argument line into ctx and rejects leftover
// input.
func (s *CommandSpec) populate(src Source, args *parse.Cursor, ctx *parse.Context) error {
	if err := s.args.Parse(src, args, ctx); err != nil {
		return err
	}
	if args.HasNext() {
		return args.NewError("too many arguments")
	}

	return nil
}

// completeArgs produces completion candidates against a partially
// consumed cursor.
func (s *CommandSpec) completeArgs(src Source, args *parse.Cursor, ctx *parse.Context) []string {
	return s.args.Complete(src, args, ctx)
}

// Execute runs the executor against an already populated context.
func (s *CommandSpec) Execute(src Source, ctx *parse.Context) (ExecutionResult, error) {
	if s.executor == nil {
		return Empty(), ErrNoExecutor
	}

	return s.executor(src, ctx)
}

// trimTrailingMarker drops the zero-width empty token the default
// tokenizer appends after trailing whitespace. The marker only carries
// meaning for completion; in a parse it would be rejected as leftover
// input. A quoted empty argument ("") spans its quotes and is kept.
func trimTrailingMarker(tokens []parse.Token) []parse.Token {
	if n := len(tokens); n > 0 && tokens[n-1].Value == "" && tokens[n-1].Start == tokens[n-1].End {
		return tokens[:n-1]
	}

	return tokens
}

// Process implements Handler: it checks permission, tokenizes and parses
// arguments, and runs the executor. Parse and tokenize errors come back
// with the command's usage string attached.
func (s *CommandSpec) Process(src Source, arguments string) (ExecutionResult, error) {
	if s.permission != nil && !s.permission(src) {
		return Empty(), ErrPermissionDenied
	}
	tokens, err := s.tokenizer.Tokenize(arguments, false)
	if err != nil {
		return Empty(), s.attachUsage(src, err)
	}
	args := parse.NewCursor(arguments, trimTrailingMarker(tokens))
	ctx := parse.NewContext()
	if err := s.populate(src, args, ctx); err != nil {
		return Empty(), s.attachUsage(src, err)
	}

	return s.Execute(src, ctx)
}

func (s *CommandSpec) attachUsage(src Source, err error) error {
	var parseErr *parse.Error
	if errors.As(err, &parseErr) && parseErr.Usage == "" {
		if usage := s.Usage(src); usage != "" {
			return parseErr.WithUsage(usage)
		}
	}

	return err
}

// Suggestions implements Handler using lenient tokenization, so malformed
// partial input degrades to "no suggestions" instead of failing.
func (s *CommandSpec) Suggestions(src Source, arguments string) ([]string, error) {
	tokens, err := s.tokenizer.Tokenize(arguments, true)
	if err != nil {
		return nil, nil
	}
	args := parse.NewCursor(arguments, tokens)
	ctx := parse.NewContext()

	return s.completeArgs(src, args, ctx), nil
}

// ShortDescription implements Handler.
func (s *CommandSpec) ShortDescription(src Source) string {
	return s.description
}

// Help implements Handler: the description followed by the extended help.
func (s *CommandSpec) Help(src Source) string {
	var parts []string
	if s.description != "" {
		parts = append(parts, s.description)
	}
	if s.extended != "" {
		parts = append(parts, s.extended)
	}

	return strings.Join(parts, "\n\n")
}

// Usage implements Handler.
func (s *CommandSpec) Usage(src Source) string {
	return s.args.Usage(src)
}
