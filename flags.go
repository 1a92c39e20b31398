package dispatch

import (
	"strings"

	"github.com/napalu/dispatch/parse"
)

// flagsElement scans tokens from the current position for -x short
// clusters and --name long flags, parses each recognized flag with its
// bound element, and excises the flag's tokens from the stream so the
// wrapped positional element never sees them. When anchorFlags is set,
// the first non-flag token terminates scanning; otherwise scanning
// continues over the whole remainder.
type flagsElement struct {
	element
	groups       []flagGroup
	shortFlags   map[string]Element
	longFlags    map[string]Element
	shortNames   []string
	longNames    []string
	unknownShort UnknownFlagBehavior
	unknownLong  UnknownFlagBehavior
	anchorFlags  bool
	child        Element
}

// flagGroup ties the declared names of one flag to its bound element for
// usage rendering.
type flagGroup struct {
	names []string
	elem  Element
}

// markTrueElement binds true under its key without consuming input. Bound
// to plain boolean flags.
type markTrueElement struct {
	element
}

func (m *markTrueElement) Parse(src Source, args *parse.Cursor, ctx *parse.Context) error {
	ctx.PutOne(m.key, true)
	return nil
}

func (m *markTrueElement) Complete(src Source, args *parse.Cursor, ctx *parse.Context) []string {
	return nil
}

func (m *markTrueElement) Usage(src Source) string {
	return ""
}

// FlagsBuilder assembles a flags sub-grammar. Flag specs use a leading
// "-" to declare a long flag name; a spec without it declares one short
// flag per character. The first declared name becomes the binding key for
// the whole group.
type FlagsBuilder struct {
	groups       []flagGroup
	shortFlags   map[string]Element
	longFlags    map[string]Element
	shortNames   []string
	longNames    []string
	unknownShort UnknownFlagBehavior
	unknownLong  UnknownFlagBehavior
	anchorFlags  bool
}

// Flags returns a builder for a flags sub-grammar.
func Flags() *FlagsBuilder {
	return &FlagsBuilder{
		shortFlags:   map[string]Element{},
		longFlags:    map[string]Element{},
		unknownShort: UnknownFlagError,
		unknownLong:  UnknownFlagError,
	}
}

// Flag declares a boolean flag under the given specs, bound to true when
// present.
func (b *FlagsBuilder) Flag(specs ...string) *FlagsBuilder {
	return b.bind(nil, specs)
}

// ValueFlag declares a value-bearing flag: when the flag is seen, value
// parses the tokens following it.
func (b *FlagsBuilder) ValueFlag(value Element, specs ...string) *FlagsBuilder {
	return b.bind(value, specs)
}

func (b *FlagsBuilder) bind(value Element, specs []string) *FlagsBuilder {
	var elem Element
	var names []string
	register := func(name string, long bool) {
		if elem == nil {
			if value != nil {
				elem = value
			} else {
				elem = &markTrueElement{element: element{key: name}}
			}
		}
		names = append(names, name)
		if long {
			key := strings.ToLower(name)
			if _, exists := b.longFlags[key]; !exists {
				b.longNames = append(b.longNames, key)
			}
			b.longFlags[key] = elem
		} else {
			if _, exists := b.shortFlags[name]; !exists {
				b.shortNames = append(b.shortNames, name)
			}
			b.shortFlags[name] = elem
		}
	}
	for _, spec := range specs {
		if strings.HasPrefix(spec, "-") {
			register(spec[1:], true)
		} else {
			for _, r := range spec {
				register(string(r), false)
			}
		}
	}
	if elem != nil {
		b.groups = append(b.groups, flagGroup{names: names, elem: elem})
	}

	return b
}

// SetUnknownShortFlagBehavior sets the policy applied to unrecognized
// short flags.
func (b *FlagsBuilder) SetUnknownShortFlagBehavior(behavior UnknownFlagBehavior) *FlagsBuilder {
	b.unknownShort = behavior
	return b
}

// SetUnknownLongFlagBehavior sets the policy applied to unrecognized long
// flags.
func (b *FlagsBuilder) SetUnknownLongFlagBehavior(behavior UnknownFlagBehavior) *FlagsBuilder {
	b.unknownLong = behavior
	return b
}

// SetAnchorFlags restricts flag recognition to the contiguous run of flag
// tokens at the current cursor position.
func (b *FlagsBuilder) SetAnchorFlags(anchor bool) *FlagsBuilder {
	b.anchorFlags = anchor
	return b
}

// BuildWith wraps the positional element child with this flags
// sub-grammar.
func (b *FlagsBuilder) BuildWith(child Element) Element {
	return &flagsElement{
		groups:       b.groups,
		shortFlags:   b.shortFlags,
		longFlags:    b.longFlags,
		shortNames:   b.shortNames,
		longNames:    b.longNames,
		unknownShort: b.unknownShort,
		unknownLong:  b.unknownLong,
		anchorFlags:  b.anchorFlags,
		child:        child,
	}
}

func (f *flagsElement) Parse(src Source, args *parse.Cursor, ctx *parse.Context) error {
	state := args.Snapshot()
	for args.HasNext() {
		offset := args.Offset()
		arg, err := args.Next()
		if err != nil {
			return err
		}
		if strings.HasPrefix(arg, "-") {
			flagState := args.Snapshot()
			var remove bool
			if strings.HasPrefix(arg, "--") {
				remove, err = f.parseLongFlag(src, arg[2:], offset, args, ctx)
			} else {
				remove, err = f.parseShortFlags(src, arg[1:], offset, args, ctx)
			}
			if err != nil {
				return err
			}
			if remove {
				args.RemoveRange(flagState, args.Snapshot())
			}
		} else if f.anchorFlags {
			break
		}
	}
	// Rewind to the scan start but keep the token removals.
	args.Apply(state, false)
	if f.child != nil {
		return f.child.Parse(src, args, ctx)
	}

	return nil
}

func (f *flagsElement) parseLongFlag(src Source, longFlag string, offset int, args *parse.Cursor, ctx *parse.Context) (bool, error) {
	if name, value, found := strings.Cut(longFlag, "="); found {
		elem := f.longFlags[strings.ToLower(name)]
		if elem == nil {
			switch f.unknownLong {
			case UnknownFlagError:
				return false, parse.NewErrorf(args.Raw(), offset, "unknown long flag --%s specified", name)
			case UnknownFlagAcceptNonValue, UnknownFlagAcceptValue:
				ctx.PutOne(name, value)
				return true, nil
			case UnknownFlagIgnore:
				return false, nil
			}
		}
		args.Insert(value)
		if err := elem.Parse(src, args, ctx); err != nil {
			return false, err
		}
		return true, nil
	}

	elem := f.longFlags[strings.ToLower(longFlag)]
	if elem == nil {
		switch f.unknownLong {
		case UnknownFlagError:
			return false, parse.NewErrorf(args.Raw(), offset, "unknown long flag --%s specified", longFlag)
		case UnknownFlagAcceptNonValue:
			ctx.PutOne(longFlag, true)
			return true, nil
		case UnknownFlagAcceptValue:
			value, err := args.Next()
			if err != nil {
				return false, err
			}
			ctx.PutOne(longFlag, value)
			return true, nil
		case UnknownFlagIgnore:
			return false, nil
		}
	}
	if err := elem.Parse(src, args, ctx); err != nil {
		return false, err
	}

	return true, nil
}

func (f *flagsElement) parseShortFlags(src Source, cluster string, offset int, args *parse.Cursor, ctx *parse.Context) (bool, error) {
	for i, r := range cluster {
		name := strings.ToLower(string(r))
		elem := f.shortFlags[name]
		if elem == nil {
			switch f.unknownShort {
			case UnknownFlagIgnore:
				if i == 0 {
					return false, nil
				}
				// Once part of the cluster has been recognized the
				// remainder can no longer be handed back whole.
				return false, parse.NewErrorf(args.Raw(), offset, "unknown short flag -%s specified", name)
			case UnknownFlagError:
				return false, parse.NewErrorf(args.Raw(), offset, "unknown short flag -%s specified", name)
			case UnknownFlagAcceptNonValue:
				ctx.PutOne(name, true)
			case UnknownFlagAcceptValue:
				value, err := args.Next()
				if err != nil {
					return false, err
				}
				ctx.PutOne(name, value)
			}
			continue
		}
		if err := elem.Parse(src, args, ctx); err != nil {
			return false, err
		}
	}

	return true, nil
}

func (f *flagsElement) Complete(src Source, args *parse.Cursor, ctx *parse.Context) []string {
	// A half-typed trailing word must not be completed as if it were a
	// flag name.
	if !args.HasNext() && !strings.HasSuffix(args.Raw(), " ") {
		return nil
	}
	state := args.Snapshot()
	for {
		arg, ok := args.NextIfPresent()
		if !ok {
			break
		}
		if strings.HasPrefix(arg, "-") {
			flagState := args.Snapshot()
			var completions []string
			var handled bool
			if strings.HasPrefix(arg, "--") {
				completions, handled = f.completeLongFlag(src, arg[2:], args, ctx)
			} else {
				completions, handled = f.completeShortFlags(src, arg[1:], args, ctx)
			}
			if handled {
				return completions
			}
			args.RemoveRange(flagState, args.Snapshot())
		} else if f.anchorFlags {
			break
		}
	}
	args.Apply(state, false)
	if f.child != nil {
		return f.child.Complete(src, args, ctx)
	}

	return nil
}

func (f *flagsElement) completeLongFlag(src Source, longFlag string, args *parse.Cursor, ctx *parse.Context) ([]string, bool) {
	if name, value, found := strings.Cut(longFlag, "="); found {
		elem := f.longFlags[strings.ToLower(name)]
		if elem == nil {
			// The whole flag is typed out, move on to the remainder.
			ctx.PutOne(name, value)
			return nil, false
		}
		args.Insert(value)
		position := args.Snapshot()
		if err := elem.Parse(src, args, ctx); err != nil {
			args.Apply(position, true)
			var completions []string
			for _, c := range elem.Complete(src, args, ctx) {
				completions = appendUnique(completions, "--"+name+"="+c)
			}
			return completions, true
		}
		return nil, false
	}

	elem := f.longFlags[strings.ToLower(longFlag)]
	if elem == nil || !args.HasNext() {
		var completions []string
		for _, flagName := range f.longNames {
			if hasPrefixFold(flagName, longFlag) {
				completions = appendUnique(completions, "--"+flagName)
			}
		}
		return completions, true
	}
	state := args.Snapshot()
	complete := false
	if err := elem.Parse(src, args, ctx); err != nil {
		complete = true
	}
	if !args.HasNext() {
		complete = true
	}
	if complete {
		args.Apply(state, true)
		return elem.Complete(src, args, ctx), true
	}

	return nil, false
}

func (f *flagsElement) completeShortFlags(src Source, cluster string, args *parse.Cursor, ctx *parse.Context) ([]string, bool) {
	for i, r := range cluster {
		name := strings.ToLower(string(r))
		elem := f.shortFlags[name]
		if elem == nil {
			if i == 0 && f.unknownShort == UnknownFlagAcceptValue {
				args.NextIfPresent()
				return nil, false
			}
			continue
		}
		state := args.Snapshot()
		if err := elem.Parse(src, args, ctx); err != nil {
			args.Apply(state, true)
			return elem.Complete(src, args, ctx), true
		}
	}

	return nil, false
}

func (f *flagsElement) Usage(src Source) string {
	var parts []string
	for _, g := range f.groups {
		names := make([]string, 0, len(g.names))
		for _, n := range g.names {
			if len(n) == 1 {
				names = append(names, "-"+n)
			} else {
				names = append(names, "--"+n)
			}
		}
		part := strings.Join(names, "|")
		if _, plain := g.elem.(*markTrueElement); !plain {
			if u := g.elem.Usage(src); u != "" {
				part += " " + u
			}
		}
		parts = append(parts, "["+part+"]")
	}
	if f.child != nil {
		if u := f.child.Usage(src); u != "" {
			parts = append(parts, u)
		}
	}

	return strings.Join(parts, " ")
}
