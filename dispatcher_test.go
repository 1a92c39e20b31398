package dispatch

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/napalu/dispatch/parse"
)

func echoSpec(key string) *CommandSpec {
	return NewSpec(
		Arguments(String(key)),
		WithExecutor(func(src Source, ctx *parse.Context) (ExecutionResult, error) {
			value, err := ctx.String(key)
			if err != nil {
				return Empty(), err
			}
			src.SendMessage(value)
			return Success(), nil
		}),
	)
}

func TestDispatcher_RegisterAndProcess(t *testing.T) {
	d := NewDispatcher()
	owner := NewOwner("core")

	mapping, err := d.Register(owner, echoSpec("word"), []string{"echo", "say"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "echo", mapping.Primary())
	assert.Equal(t, []string{"core:echo", "core:say", "echo", "say"}, mapping.Aliases())

	src := &testSource{}
	result, err := d.Process(src, "say hello")
	require.NoError(t, err)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, []string{"hello"}, src.messages)

	_, err = d.Process(src, "shout hello")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCommandNotFound))
}

func TestDispatcher_AliasNormalization(t *testing.T) {
	warnings := &bytes.Buffer{}
	d := NewDispatcher(WithWriters(warnings, nil))
	owner := NewOwner("core")

	mapping, err := d.Register(owner, echoSpec("word"), []string{"Echo Loud"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "echoloud", mapping.Primary())
	assert.True(t, d.Contains("echoloud"))
	assert.Contains(t, warnings.String(), "lower-cased")
	assert.Contains(t, warnings.String(), "contained spaces")
}

func TestDispatcher_OwnerCannotReclaimAlias(t *testing.T) {
	d := NewDispatcher()
	owner := NewOwner("core")

	_, err := d.Register(owner, echoSpec("word"), []string{"echo"}, nil)
	require.NoError(t, err)

	// The duplicate alias is pruned; with nothing left the registration
	// fails.
	_, err = d.Register(owner, echoSpec("word"), []string{"echo"}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAliasOwned))

	// A different owner may claim the same alias.
	_, err = d.Register(NewOwner("warp"), echoSpec("word"), []string{"echo"}, nil)
	assert.NoError(t, err)
}

func TestDispatcher_AliasFilter(t *testing.T) {
	d := NewDispatcher()
	owner := NewOwner("core")

	mapping, err := d.Register(owner, echoSpec("word"), []string{"echo", "say"},
		func(aliases []string) []string { return []string{"say"} })
	require.NoError(t, err)
	assert.Equal(t, "say", mapping.Primary())
	assert.False(t, d.Contains("echo"))

	// A filter returning nothing fails the registration.
	_, err = d.Register(owner, echoSpec("word"), []string{"echo"},
		func(aliases []string) []string { return nil })
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoAliases))

	// Aliases invented by the filter are discarded.
	_, err = d.Register(owner, echoSpec("word"), []string{"shout"},
		func(aliases []string) []string { return []string{"invented"} })
	assert.True(t, errors.Is(err, ErrNoAliases))
}

func TestDispatcher_Disambiguation(t *testing.T) {
	d := NewDispatcher()
	core := NewOwner("core")
	warp := NewOwner("warp")

	coreSpec := echoSpec("word")
	warpSpec := echoSpec("word")
	_, err := d.Register(core, coreSpec, []string{"tp"}, nil)
	require.NoError(t, err)
	_, err = d.Register(warp, warpSpec, []string{"tp"}, nil)
	require.NoError(t, err)

	src := &testSource{}

	// Both primaries equal the alias; registration order breaks the tie.
	mapping, err := d.Get("tp", src)
	require.NoError(t, err)
	assert.Same(t, coreSpec, mapping.Handler().(*CommandSpec))

	// The namespaced forms resolve unambiguously.
	mapping, err = d.Get("warp:tp", src)
	require.NoError(t, err)
	assert.Same(t, warpSpec, mapping.Handler().(*CommandSpec))

	mapping, err = d.Get("core:tp", src)
	require.NoError(t, err)
	assert.Same(t, coreSpec, mapping.Handler().(*CommandSpec))
}

func TestDispatcher_CustomDisambiguator(t *testing.T) {
	picked := 0
	d := NewDispatcher(WithDisambiguator(func(src Source, alias string, candidates []*Mapping) *Mapping {
		picked = len(candidates)
		return candidates[len(candidates)-1]
	}))
	_, err := d.Register(NewOwner("a"), echoSpec("word"), []string{"tp"}, nil)
	require.NoError(t, err)
	last, err := d.Register(NewOwner("b"), echoSpec("word"), []string{"tp"}, nil)
	require.NoError(t, err)

	mapping, err := d.Get("tp", &testSource{})
	require.NoError(t, err)
	assert.Equal(t, 2, picked)
	assert.Same(t, last, mapping)
}

func TestDispatcher_Remove(t *testing.T) {
	d := NewDispatcher()
	owner := NewOwner("core")
	mapping, err := d.Register(owner, echoSpec("word"), []string{"echo", "say"}, nil)
	require.NoError(t, err)

	removed := d.Remove("echo")
	require.Len(t, removed, 1)
	assert.Same(t, mapping, removed[0])

	// Removing one alias detaches the whole mapping, namespaced forms
	// included.
	assert.False(t, d.Contains("say"))
	assert.False(t, d.Contains("core:echo"))
	assert.Empty(t, d.Mappings())

	assert.Nil(t, d.Remove("echo"), "a second removal finds nothing")
}

func TestDispatcher_RemoveMapping(t *testing.T) {
	d := NewDispatcher()
	mapping, err := d.Register(NewOwner("core"), echoSpec("word"), []string{"echo"}, nil)
	require.NoError(t, err)

	require.NoError(t, d.RemoveMapping(mapping))
	assert.False(t, d.Contains("echo"))

	err = d.RemoveMapping(mapping)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMappingNotFound))
}

func TestDispatcher_RemoveOwner(t *testing.T) {
	d := NewDispatcher()
	core := NewOwner("core")
	warp := NewOwner("warp")
	_, err := d.Register(core, echoSpec("word"), []string{"echo"}, nil)
	require.NoError(t, err)
	_, err = d.Register(core, echoSpec("word"), []string{"tp"}, nil)
	require.NoError(t, err)
	_, err = d.Register(warp, echoSpec("word"), []string{"tp"}, nil)
	require.NoError(t, err)

	removed := d.RemoveOwner(core)
	assert.Len(t, removed, 2)
	assert.False(t, d.Contains("echo"))
	assert.True(t, d.Contains("tp"), "the other owner's mapping survives")
	assert.Len(t, d.OwnedBy(warp), 1)
	assert.Empty(t, d.OwnedBy(core))
}

func TestDispatcher_Suggestions(t *testing.T) {
	d := NewDispatcher()
	_, err := d.Register(NewOwner("core"), echoSpec("word"), []string{"echo"}, nil)
	require.NoError(t, err)
	spec := NewSpec(Arguments(Choices("mode", map[string]interface{}{"fast": 1, "slow": 2})))
	_, err = d.Register(NewOwner("core"), spec, []string{"engine"}, nil)
	require.NoError(t, err)

	src := &testSource{}

	suggestions, err := d.Suggestions(src, "e")
	require.NoError(t, err)
	assert.Equal(t, []string{"echo", "engine"}, suggestions)

	suggestions, err = d.Suggestions(src, "core:e")
	require.NoError(t, err)
	assert.Equal(t, []string{"core:echo", "core:engine"}, suggestions)

	// After the first space the resolved command takes over.
	suggestions, err = d.Suggestions(src, "engine fa")
	require.NoError(t, err)
	assert.Equal(t, []string{"fast"}, suggestions)

	suggestions, err = d.Suggestions(src, "nosuch fa")
	require.NoError(t, err)
	assert.Nil(t, suggestions, "an unknown alias yields no suggestions, not an error")
}

func TestDispatcher_ExecuteReportsParseErrors(t *testing.T) {
	d := NewDispatcher()
	spec := NewSpec(
		Arguments(Int("count")),
		WithExecutor(func(src Source, ctx *parse.Context) (ExecutionResult, error) {
			return Success(), nil
		}),
	)
	_, err := d.Register(NewOwner("core"), spec, []string{"repeat"}, nil)
	require.NoError(t, err)

	src := &testSource{}
	result := d.Execute(src, "repeat many")
	assert.Equal(t, 0, result.SuccessCount)
	require.GreaterOrEqual(t, len(src.messages), 3)
	assert.Contains(t, src.messages[0], `"many"`)
	assert.Contains(t, src.messages[1], "^", "the position annotation is rendered")
	assert.Equal(t, "Usage: /repeat <count>", src.messages[2])
}

func TestDispatcher_ExecuteReportsLookupAndPermission(t *testing.T) {
	d := NewDispatcher()
	denied := NewSpec(Permission(func(src Source) bool { return false }))
	_, err := d.Register(NewOwner("core"), denied, []string{"admin"}, nil)
	require.NoError(t, err)

	src := &testSource{}
	d.Execute(src, "nosuch")
	require.Len(t, src.messages, 1)
	assert.Equal(t, "no such command: nosuch", src.messages[0])

	src = &testSource{}
	d.Execute(src, "admin")
	require.Len(t, src.messages, 1)
	assert.Equal(t, "you do not have permission to use this command", src.messages[0])
}

func TestDispatcher_ExecuteContainsPanics(t *testing.T) {
	errs := &bytes.Buffer{}
	d := NewDispatcher(WithWriters(nil, errs))
	spec := NewSpec(WithExecutor(func(src Source, ctx *parse.Context) (ExecutionResult, error) {
		panic("boom")
	}))
	_, err := d.Register(NewOwner("core"), spec, []string{"explode"}, nil)
	require.NoError(t, err)

	src := &testSource{}
	result := d.Execute(src, "explode")
	assert.Equal(t, 0, result.SuccessCount)
	require.Len(t, src.messages, 1)
	assert.Contains(t, src.messages[0], "an internal error occurred while executing explode")
	assert.Contains(t, src.messages[0], "boom")
	assert.Contains(t, errs.String(), "boom")
}

func TestDispatcher_HelpWalksNestedDispatchers(t *testing.T) {
	sub := NewDispatcher()
	_, err := sub.Register(NewOwner("core"), NewSpec(Description("sets a warp")), []string{"set"}, nil)
	require.NoError(t, err)

	d := NewDispatcher()
	_, err = d.Register(NewOwner("core"), NewSpec(Description("teleports you")), []string{"tp"}, nil)
	require.NoError(t, err)
	_, err = d.Register(NewOwner("core"), sub, []string{"warp"}, nil)
	require.NoError(t, err)

	help := d.Help(&testSource{})
	lines := strings.Split(help, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "/tp - teleports you", lines[0])
	assert.Equal(t, "/warp", lines[1])
	assert.Equal(t, "/warp set - sets a warp", lines[2])
}

func TestDispatcher_Usage(t *testing.T) {
	d := NewDispatcher()
	_, err := d.Register(NewOwner("core"), echoSpec("word"), []string{"echo"}, nil)
	require.NoError(t, err)
	_, err = d.Register(NewOwner("core"), echoSpec("word"), []string{"tp"}, nil)
	require.NoError(t, err)

	assert.Equal(t, "echo|tp", d.Usage(&testSource{}))
}

func TestOwner_GeneratedID(t *testing.T) {
	a := NewOwner("")
	b := NewOwner("")
	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, "core", NewOwner("core").String())
}
