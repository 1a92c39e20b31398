package dispatch

import (
	"regexp"
	"sort"
	"strings"

	"github.com/napalu/dispatch/parse"
)

// patternChoiceElement reads exactly one token and resolves it against a
// dynamic candidate set. An exact case-insensitive match takes priority
// over pattern matching, so candidate names containing regex
// metacharacters stay reachable. Otherwise the token is compiled as a
// case-insensitive starts-with pattern and every matching candidate's
// value is bound, which is what makes prefix-style multi-matches work.
type patternChoiceElement struct {
	element
	candidates func() []string
	value      func(candidate string) interface{}
}

// PatternChoice returns an element resolving one token against the
// candidate keys produced by candidates, mapping each matched key through
// value.
func PatternChoice(key string, candidates func() []string, value func(candidate string) interface{}) Element {
	return &patternChoiceElement{element: element{key: key}, candidates: candidates, value: value}
}

// Choices returns a pattern-choice element over a fixed key-to-value map.
func Choices(key string, choices map[string]interface{}) Element {
	keys := make([]string, 0, len(choices))
	for k := range choices {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return PatternChoice(key,
		func() []string { return keys },
		func(candidate string) interface{} { return choices[candidate] })
}

func (p *patternChoiceElement) Parse(src Source, args *parse.Cursor, ctx *parse.Context) error {
	offset := args.Offset()
	arg, err := args.Next()
	if err != nil {
		return err
	}
	candidates := p.candidates()

	// Exact match wins before any pattern interpretation.
	for _, candidate := range candidates {
		if strings.EqualFold(candidate, arg) {
			p.put(ctx, candidate)
			return nil
		}
	}

	pattern, err := regexp.Compile("(?i)^" + arg)
	if err != nil {
		return parse.NewErrorf(args.Raw(), offset, "invalid input %q for <%s>", arg, usageName(p.key))
	}
	matched := false
	for _, candidate := range candidates {
		if pattern.MatchString(candidate) {
			p.put(ctx, candidate)
			matched = true
		}
	}
	if !matched {
		return parse.NewErrorf(args.Raw(), offset, "argument %q was not a valid choice", arg)
	}

	return nil
}

func (p *patternChoiceElement) put(ctx *parse.Context, candidate string) {
	if p.key == "" {
		return
	}
	if v := p.value(candidate); v != nil {
		ctx.PutOne(p.key, v)
	}
}

func (p *patternChoiceElement) Complete(src Source, args *parse.Cursor, ctx *parse.Context) []string {
	prefix, _ := args.NextIfPresent()
	var completions []string
	for _, candidate := range p.candidates() {
		if hasPrefixFold(candidate, prefix) {
			completions = appendUnique(completions, candidate)
		}
	}

	return completions
}

func (p *patternChoiceElement) Usage(src Source) string {
	candidates := p.candidates()
	if len(candidates) > 0 && len(candidates) <= 5 {
		return strings.Join(candidates, "|")
	}

	return "<" + usageName(p.key) + ">"
}
