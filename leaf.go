package dispatch

import (
	"time"

	"github.com/napalu/dispatch/parse"
	"github.com/napalu/dispatch/util"
)

// leafElement parses exactly as many tokens as its parseValue closure
// consumes and binds the produced value under its key.
type leafElement struct {
	element
	parseValue func(src Source, args *parse.Cursor) (interface{}, error)
}

// Leaf returns a value element driven by a parse-one-value closure. The
// closure's return value is bound under key unless the key is "" or the
// value nil.
func Leaf(key string, parseValue func(src Source, args *parse.Cursor) (interface{}, error)) Element {
	return &leafElement{element: element{key: key}, parseValue: parseValue}
}

func (l *leafElement) Parse(src Source, args *parse.Cursor, ctx *parse.Context) error {
	value, err := l.parseValue(src, args)
	if err != nil {
		return err
	}
	if l.key != "" && value != nil {
		ctx.PutOne(l.key, value)
	}

	return nil
}

func (l *leafElement) Complete(src Source, args *parse.Cursor, ctx *parse.Context) []string {
	return nil
}

func (l *leafElement) Usage(src Source) string {
	return "<" + usageName(l.key) + ">"
}

// None returns a structural element which accepts no arguments and binds
// nothing.
func None() Element {
	return noneElement{}
}

type noneElement struct {
	element
}

func (noneElement) Parse(src Source, args *parse.Cursor, ctx *parse.Context) error {
	return nil
}

func (noneElement) Complete(src Source, args *parse.Cursor, ctx *parse.Context) []string {
	return nil
}

func (noneElement) Usage(src Source) string {
	return ""
}

// String returns an element consuming one token as a string value.
func String(key string) Element {
	return Leaf(key, func(src Source, args *parse.Cursor) (interface{}, error) {
		return args.Next()
	})
}

// RemainingJoined returns an element consuming every remaining token and
// binding the corresponding slice of the raw input, preserving the exact
// spacing and quoting the user typed. Fails when nothing remains.
func RemainingJoined(key string) Element {
	return Leaf(key, func(src Source, args *parse.Cursor) (interface{}, error) {
		if !args.HasNext() {
			return nil, args.NewError("not enough arguments").Wrap(parse.ErrExhausted)
		}
		offset := args.Offset()
		for args.HasNext() {
			if _, err := args.Next(); err != nil {
				return nil, err
			}
		}

		return args.Raw()[offset:], nil
	})
}

// Int returns an element consuming one token as an int value.
func Int(key string) Element {
	return convertingLeaf(key, func() interface{} { return new(int) })
}

// Float returns an element consuming one token as a float64 value.
func Float(key string) Element {
	return convertingLeaf(key, func() interface{} { return new(float64) })
}

// Bool returns an element consuming one token as a bool value.
func Bool(key string) Element {
	return convertingLeaf(key, func() interface{} { return new(bool) })
}

// Duration returns an element consuming one token as a time.Duration value.
func Duration(key string) Element {
	return convertingLeaf(key, func() interface{} { return new(time.Duration) })
}

// Time returns an element consuming one token as a time.Time value, using
// flexible date parsing.
func Time(key string) Element {
	return convertingLeaf(key, func() interface{} { return new(time.Time) })
}

// convertingLeaf parses one token through util.ConvertString into the
// pointer produced by newTarget and binds the pointed-to value.
func convertingLeaf(key string, newTarget func() interface{}) Element {
	return Leaf(key, func(src Source, args *parse.Cursor) (interface{}, error) {
		offset := args.Offset()
		value, err := args.Next()
		if err != nil {
			return nil, err
		}
		target := newTarget()
		if err := util.ConvertString(value, target, key); err != nil {
			return nil, parse.NewErrorf(args.Raw(), offset, "invalid value %q for <%s>: %v", value, usageName(key), err)
		}

		return dereference(target), nil
	})
}

func dereference(target interface{}) interface{} {
	switch t := target.(type) {
	case *int:
		return *t
	case *float64:
		return *t
	case *bool:
		return *t
	case *time.Duration:
		return *t
	case *time.Time:
		return *t
	case *string:
		return *t
	default:
		return target
	}
}
