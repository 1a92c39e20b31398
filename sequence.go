package dispatch

import (
	"strings"

	"github.com/napalu/dispatch/parse"
)

// sequenceElement parses its children in order; a failure in any child
// propagates immediately, with no sequence-level recovery.
type sequenceElement struct {
	element
	elements []Element
}

// Seq returns a structural element parsing the given elements in order.
func Seq(elements ...Element) Element {
	return &sequenceElement{elements: elements}
}

func (s *sequenceElement) Parse(src Source, args *parse.Cursor, ctx *parse.Context) error {
	for _, e := range s.elements {
		if err := e.Parse(src, args, ctx); err != nil {
			return err
		}
	}

	return nil
}

// Complete simulates parsing each child in turn so the cursor presented to
// the next child's completions matches what Parse would see. A child which
// fails to parse gets to offer its completions instead.
func (s *sequenceElement) Complete(src Source, args *parse.Cursor, ctx *parse.Context) []string {
	var completions []string
	for _, e := range s.elements {
		argsState := args.Snapshot()
		ctxState := ctx.Snapshot()
		if err := e.Parse(src, args, ctx); err != nil {
			args.Apply(argsState, true)
			ctx.Restore(ctxState)
			completions = appendUnique(completions, e.Complete(src, args, ctx)...)
			break
		}
		if !args.HasNext() {
			endState := args.Snapshot()
			args.Apply(argsState, true)
			completions = appendUnique(completions, e.Complete(src, args, ctx)...)
			args.Apply(endState, true)
			break
		}
	}

	return completions
}

func (s *sequenceElement) Usage(src Source) string {
	parts := make([]string, 0, len(s.elements))
	for _, e := range s.elements {
		if u := e.Usage(src); u != "" {
			parts = append(parts, u)
		}
	}

	return strings.Join(parts, " ")
}
