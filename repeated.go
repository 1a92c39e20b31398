package dispatch

import (
	"fmt"

	"github.com/napalu/dispatch/parse"
)

// repeatedElement parses its child exactly times times, sequentially, with
// no partial-success recovery.
type repeatedElement struct {
	element
	inner Element
	times int
}

// Repeat returns a structural element parsing inner exactly times times.
func Repeat(inner Element, times int) Element {
	return &repeatedElement{inner: inner, times: times}
}

func (r *repeatedElement) Parse(src Source, args *parse.Cursor, ctx *parse.Context) error {
	for i := 0; i < r.times; i++ {
		if err := r.inner.Parse(src, args, ctx); err != nil {
			return err
		}
	}

	return nil
}

func (r *repeatedElement) Complete(src Source, args *parse.Cursor, ctx *parse.Context) []string {
	for i := 0; i < r.times; i++ {
		argsState := args.Snapshot()
		if err := r.inner.Parse(src, args, ctx); err != nil {
			args.Apply(argsState, true)
			return r.inner.Complete(src, args, ctx)
		}
	}

	return nil
}

func (r *repeatedElement) Usage(src Source) string {
	return fmt.Sprintf("%d*%s", r.times, r.inner.Usage(src))
}

// allRemainingElement parses its child repeatedly until the cursor is
// exhausted.
type allRemainingElement struct {
	element
	inner Element
}

// AllRemaining returns a structural element parsing inner until no input
// remains.
func AllRemaining(inner Element) Element {
	return &allRemainingElement{inner: inner}
}

func (a *allRemainingElement) Parse(src Source, args *parse.Cursor, ctx *parse.Context) error {
	for args.HasNext() {
		if err := a.inner.Parse(src, args, ctx); err != nil {
			return err
		}
	}

	return nil
}

func (a *allRemainingElement) Complete(src Source, args *parse.Cursor, ctx *parse.Context) []string {
	for args.HasNext() {
		argsState := args.Snapshot()
		if err := a.inner.Parse(src, args, ctx); err != nil {
			args.Apply(argsState, true)
			return a.inner.Complete(src, args, ctx)
		}
	}

	return nil
}

func (a *allRemainingElement) Usage(src Source) string {
	return a.inner.Usage(src) + "..."
}
