package dispatch

import (
	"strings"

	"github.com/napalu/dispatch/parse"
)

// literalElement matches a fixed sequence of expected tokens
// case-insensitively and binds a fixed value rather than the matched text.
type literalElement struct {
	element
	expected []string
	value    interface{}
}

// Literal returns an element matching the expected tokens token-for-token,
// case-insensitively. On success value is bound under key; pass a "" key
// or a nil value to bind nothing.
func Literal(key string, value interface{}, expected ...string) Element {
	return &literalElement{element: element{key: key}, expected: expected, value: value}
}

func (l *literalElement) Parse(src Source, args *parse.Cursor, ctx *parse.Context) error {
	for _, expect := range l.expected {
		arg, err := args.Next()
		if err != nil {
			return err
		}
		if !strings.EqualFold(arg, expect) {
			return args.NewErrorf("argument %q did not match expected next argument %q", arg, expect)
		}
	}
	if l.key != "" && l.value != nil {
		ctx.PutOne(l.key, l.value)
	}

	return nil
}

func (l *literalElement) Complete(src Source, args *parse.Cursor, ctx *parse.Context) []string {
	for _, expect := range l.expected {
		arg, ok := args.NextIfPresent()
		if !ok {
			break
		}
		if args.HasNext() {
			if !strings.EqualFold(arg, expect) {
				break
			}
		} else if hasPrefixFold(expect, arg) {
			return []string{expect}
		}
	}

	return nil
}

func (l *literalElement) Usage(src Source) string {
	return strings.Join(l.expected, " ")
}
