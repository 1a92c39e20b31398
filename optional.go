package dispatch

import "github.com/napalu/dispatch/parse"

// optionalElement wraps a child which may legitimately be absent. Two
// distinct recovery behaviors exist and are deliberately kept separate:
//
// A strong optional (Optional) propagates the child's failure unless more
// input remains after the failure point - the heuristic being "there is
// more to parse, so this token was not meant for us". This is
// order-sensitive: a genuine error in the optional argument is masked
// whenever unrelated trailing tokens happen to follow it. The behavior is
// kept as-is; see OptionalWeak for the swallowing variant.
//
// A weak optional (OptionalWeak) always swallows the child's failure and
// rewinds.
type optionalElement struct {
	element
	inner Element
	value interface{}
	weak  bool
}

// Optional returns a strong optional wrapping inner.
func Optional(inner Element) Element {
	return &optionalElement{element: element{key: inner.Key()}, inner: inner}
}

// OptionalWithDefault returns a strong optional which binds value under
// the child's key when no input remains.
func OptionalWithDefault(inner Element, value interface{}) Element {
	return &optionalElement{element: element{key: inner.Key()}, inner: inner, value: value}
}

// OptionalWeak returns a weak optional wrapping inner.
func OptionalWeak(inner Element) Element {
	return &optionalElement{element: element{key: inner.Key()}, inner: inner, weak: true}
}

// OptionalWeakWithDefault returns a weak optional which binds value under
// the child's key when no input remains.
func OptionalWeakWithDefault(inner Element, value interface{}) Element {
	return &optionalElement{element: element{key: inner.Key()}, inner: inner, value: value, weak: true}
}

func (o *optionalElement) Parse(src Source, args *parse.Cursor, ctx *parse.Context) error {
	if !args.HasNext() {
		if o.inner.Key() != "" && o.value != nil {
			ctx.PutOne(o.inner.Key(), o.value)
		}
		return nil
	}
	argsState := args.Snapshot()
	ctxState := ctx.Snapshot()
	if err := o.inner.Parse(src, args, ctx); err != nil {
		if o.weak || args.HasNext() {
			args.Apply(argsState, false)
			ctx.Restore(ctxState)
			if o.inner.Key() != "" && o.value != nil {
				ctx.PutOne(o.inner.Key(), o.value)
			}
			return nil
		}
		return err
	}

	return nil
}

func (o *optionalElement) Complete(src Source, args *parse.Cursor, ctx *parse.Context) []string {
	return o.inner.Complete(src, args, ctx)
}

func (o *optionalElement) Usage(src Source) string {
	return "[" + o.inner.Usage(src) + "]"
}
