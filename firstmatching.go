package dispatch

import (
	"strings"

	"github.com/napalu/dispatch/parse"
)

// firstMatchingElement is ordered alternation: children are tried in order
// from a shared snapshot and the first successful parse wins. List order
// is significant - it determines precedence when several children could
// match - and when every child fails the last observed error is returned.
type firstMatchingElement struct {
	element
	elements []Element
}

// FirstOf returns a structural element trying each alternative in order.
func FirstOf(elements ...Element) Element {
	return &firstMatchingElement{elements: elements}
}

func (f *firstMatchingElement) Parse(src Source, args *parse.Cursor, ctx *parse.Context) error {
	var lastErr error
	for _, e := range f.elements {
		argsState := args.Snapshot()
		ctxState := ctx.Snapshot()
		if err := e.Parse(src, args, ctx); err != nil {
			args.Apply(argsState, true)
			ctx.Restore(ctxState)
			lastErr = err
			continue
		}
		return nil
	}
	if lastErr == nil {
		lastErr = args.NewError("no alternatives to parse")
	}

	return lastErr
}

func (f *firstMatchingElement) Complete(src Source, args *parse.Cursor, ctx *parse.Context) []string {
	var completions []string
	for _, e := range f.elements {
		argsState := args.Snapshot()
		ctxState := ctx.Snapshot()
		completions = appendUnique(completions, e.Complete(src, args, ctx)...)
		args.Apply(argsState, true)
		ctx.Restore(ctxState)
	}

	return completions
}

func (f *firstMatchingElement) Usage(src Source) string {
	parts := make([]string, 0, len(f.elements))
	for _, e := range f.elements {
		if u := e.Usage(src); u != "" {
			parts = append(parts, u)
		}
	}

	return strings.Join(parts, "|")
}
