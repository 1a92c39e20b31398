package dispatch

import (
	"errors"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/napalu/dispatch/parse"
)

// Source identifies the originator of a command invocation. It is treated
// as an opaque identity by the engine; the only capability required is the
// ability to receive text messages (errors, usage hints, help).
type Source interface {
	SendMessage(message string)
}

// ExecutionResult is a plain record of execution counters returned by a
// command handler.
type ExecutionResult struct {
	SuccessCount int
}

// Success returns a result counting one successful execution.
func Success() ExecutionResult {
	return ExecutionResult{SuccessCount: 1}
}

// Empty returns a result counting nothing.
func Empty() ExecutionResult {
	return ExecutionResult{}
}

// Executor is the callback invoked with the populated parse context once a
// command's arguments have been parsed successfully.
type Executor func(src Source, ctx *parse.Context) (ExecutionResult, error)

// Handler is the capability set a registered command must provide. A
// Dispatcher satisfies Handler itself, which is what allows arbitrary
// nesting of command hierarchies.
type Handler interface {
	// Process parses and executes arguments (the input line with the
	// alias already stripped).
	Process(src Source, arguments string) (ExecutionResult, error)
	// Suggestions returns completion candidates for partially typed
	// arguments.
	Suggestions(src Source, arguments string) ([]string, error)
	// ShortDescription returns a one-line description, or "".
	ShortDescription(src Source) string
	// Help returns a detailed help text, or "".
	Help(src Source) string
	// Usage returns a usage fragment describing the accepted arguments.
	Usage(src Source) string
}

// PermissionFunc reports whether a source may execute a command.
type PermissionFunc func(src Source) bool

// AliasFilter is given the normalized, collision-pruned alias list during
// registration and may return the subset to actually register. Returning
// an empty list fails the registration.
type AliasFilter func(aliases []string) []string

// Disambiguator selects one mapping when an alias resolves ambiguously.
// candidates is non-empty and in registration order.
type Disambiguator func(src Source, alias string, candidates []*Mapping) *Mapping

// NameConversionFunc converts a binding key to the label shown in usage
// strings.
type NameConversionFunc func(string) string

// Built-in conversion strategies
var (
	// ToKebabCase converts a key to kebab case "my-arg-name"
	ToKebabCase = func(s string) string {
		return strcase.ToKebab(s)
	}

	// ToSnakeCase converts a key to snake case "my_arg_name"
	ToSnakeCase = func(s string) string {
		return strcase.ToSnake(s)
	}

	// ToLowerCamel converts a key to lower camel case "myArgName"
	ToLowerCamel = func(s string) string {
		return strcase.ToLowerCamel(s)
	}

	// ToLowerCase converts a key to lower case "myargname"
	ToLowerCase = func(s string) string {
		return strings.ToLower(s)
	}

	DefaultUsageNameConverter = ToLowerCamel
)

// UnknownFlagBehavior controls how the flags sub-grammar treats a flag
// token no element is bound to.
type UnknownFlagBehavior int

const (
	// UnknownFlagError fails the parse.
	UnknownFlagError UnknownFlagBehavior = iota
	// UnknownFlagAcceptNonValue records true under the flag's literal name.
	UnknownFlagAcceptNonValue
	// UnknownFlagAcceptValue consumes the next token as the flag's value.
	UnknownFlagAcceptValue
	// UnknownFlagIgnore leaves the token untouched for the positional
	// grammar to see.
	UnknownFlagIgnore
)

var (
	ErrCommandNotFound  = errors.New("command not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNoExecutor       = errors.New("no executor registered")
	ErrNoAliases        = errors.New("no aliases left to register")
	ErrAliasOwned       = errors.New("alias already registered to owner")
	ErrMappingNotFound  = errors.New("mapping not found")
)

const (
	// FmtErrorWithString is the standard sentinel-wrapping format.
	FmtErrorWithString = "%w: %s"
)
