package dispatch

import (
	"errors"
	"strings"

	"github.com/napalu/dispatch/parse"
)

// SubCommandElement folds command routing into the grammar: it is a
// grammar element, a registry and an executor at once, so "this command
// has sub-commands" is expressed by composing it into a parent's element
// tree. The element owns its nested dispatcher; parsed mappings reach the
// executor only through the context, never through back-pointers.
type SubCommandElement struct {
	element
	dispatcher       *Dispatcher
	fallbackExecutor Executor
	fallback         Element
	fallbackOnFail   bool
}

// SubCommands creates a sub-command element storing the resolved mapping
// under key.
func SubCommands(key string, configure ...ConfigureDispatcherFunc) *SubCommandElement {
	return &SubCommandElement{
		element:    element{key: key},
		dispatcher: NewDispatcher(configure...),
	}
}

// WithFallback installs the behavior used when no sub-command matches:
// fallback (optional) parses the input instead and executor runs against
// the result. When fallbackOnFail is set, a sub-command that matches but
// fails to parse is also rewound into the fallback, swallowing the child
// error.
func (s *SubCommandElement) WithFallback(executor Executor, fallback Element, fallbackOnFail bool) *SubCommandElement {
	s.fallbackExecutor = executor
	s.fallback = fallback
	s.fallbackOnFail = fallbackOnFail

	return s
}

// Register adds a child command under the element's dispatcher.
func (s *SubCommandElement) Register(owner Owner, handler Handler, aliases []string, filter AliasFilter) (*Mapping, error) {
	return s.dispatcher.Register(owner, handler, aliases, filter)
}

// Dispatcher exposes the nested dispatcher for introspection.
func (s *SubCommandElement) Dispatcher() *Dispatcher {
	return s.dispatcher
}

func (s *SubCommandElement) argsKey() string {
	return s.key + "_args"
}

func (s *SubCommandElement) Parse(src Source, args *parse.Cursor, ctx *parse.Context) error {
	if s.fallbackExecutor != nil && !args.HasNext() {
		if s.fallback != nil {
			if err := s.fallback.Parse(src, args, ctx); err != nil {
				return err
			}
		}
		ctx.PutOne(s.key, s.fallbackExecutor)
		return nil
	}

	state := args.Snapshot()
	alias, err := args.Next()
	if err != nil {
		return err
	}
	mapping, lookupErr := s.dispatcher.Get(alias, src)
	if lookupErr != nil {
		if s.fallbackExecutor == nil {
			return args.NewErrorf("input command %q was not a valid subcommand", alias)
		}
		args.Apply(state, false)
		if s.fallback != nil {
			if err := s.fallback.Parse(src, args, ctx); err != nil {
				return err
			}
		}
		ctx.PutOne(s.key, s.fallbackExecutor)
		return nil
	}

	ctxState := ctx.Snapshot()
	if childErr := s.parseChild(src, mapping, args, ctx); childErr != nil {
		if s.fallbackOnFail && s.fallback != nil {
			args.Apply(state, false)
			ctx.Restore(ctxState)
			if err := s.fallback.Parse(src, args, ctx); err != nil {
				return err
			}
			ctx.PutOne(s.key, s.fallbackExecutor)
			return nil
		}
		// Prefix the child alias onto the usage string so nested usage
		// messages compose across levels.
		var parseErr *parse.Error
		if errors.As(childErr, &parseErr) {
			usage := parseErr.Usage
			if usage == "" {
				usage = mapping.Handler().Usage(src)
			}
			return parseErr.WithUsage(strings.TrimSpace(alias + " " + usage))
		}
		return childErr
	}
	ctx.PutOne(s.key, mapping)

	return nil
}

// parseChild delegates parsing to the resolved child. A CommandSpec child
// parses into the shared context; any other handler gets the remaining
// raw input recorded for later delivery to its Process.
func (s *SubCommandElement) parseChild(src Source, mapping *Mapping, args *parse.Cursor, ctx *parse.Context) error {
	if spec, ok := mapping.Handler().(*CommandSpec); ok {
		return spec.populate(src, args, ctx)
	}
	if args.HasNext() {
		offset := args.Offset()
		for args.HasNext() {
			if _, err := args.Next(); err != nil {
				return err
			}
		}
		ctx.PutOne(s.argsKey(), args.Raw()[offset:])
	}

	return nil
}

// Execute implements the executor side: it picks up whatever Parse stored
// under the element's key - a resolved mapping or the fallback executor -
// and runs it.
func (s *SubCommandElement) Execute(src Source, ctx *parse.Context) (ExecutionResult, error) {
	value, ok := ctx.One(s.key)
	if !ok {
		if s.fallbackExecutor != nil {
			return s.fallbackExecutor(src, ctx)
		}
		return Empty(), ErrNoExecutor
	}
	switch target := value.(type) {
	case *Mapping:
		if spec, isSpec := target.Handler().(*CommandSpec); isSpec {
			return spec.Execute(src, ctx)
		}
		raw := ""
		if v, present := ctx.One(s.argsKey()); present {
			raw, _ = v.(string)
		}
		return target.Handler().Process(src, raw)
	case Executor:
		return target(src, ctx)
	default:
		return Empty(), ErrNoExecutor
	}
}

func (s *SubCommandElement) Complete(src Source, args *parse.Cursor, ctx *parse.Context) []string {
	var completions []string
	if s.fallback != nil {
		state := args.Snapshot()
		completions = appendUnique(completions, s.fallback.Complete(src, args, ctx)...)
		args.Apply(state, true)
	}

	alias, ok := args.NextIfPresent()
	if !ok {
		return appendUnique(completions, s.childAliases("")...)
	}
	if !args.HasNext() {
		return appendUnique(completions, s.childAliases(alias)...)
	}

	mapping, err := s.dispatcher.Get(alias, src)
	if err != nil {
		return completions
	}
	if spec, isSpec := mapping.Handler().(*CommandSpec); isSpec {
		return appendUnique(completions, spec.completeArgs(src, args, ctx)...)
	}
	raw := args.Raw()[args.Offset():]
	suggested, _ := mapping.Handler().Suggestions(src, raw)

	return appendUnique(completions, suggested...)
}

func (s *SubCommandElement) childAliases(prefix string) []string {
	var aliases []string
	for _, alias := range s.dispatcher.Aliases() {
		if hasPrefixFold(alias, prefix) {
			aliases = append(aliases, alias)
		}
	}

	return aliases
}

func (s *SubCommandElement) Usage(src Source) string {
	usage := s.dispatcher.Usage(src)
	if s.fallbackExecutor != nil && s.fallback != nil {
		if fallbackUsage := s.fallback.Usage(src); fallbackUsage != "" {
			if usage == "" {
				return fallbackUsage
			}
			return fallbackUsage + "|" + usage
		}
	}

	return usage
}
