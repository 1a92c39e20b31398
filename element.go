package dispatch

import (
	"strings"

	"github.com/napalu/dispatch/parse"
)

// Element is one node of an argument grammar. Elements are immutable once
// built and reused across parses; all per-invocation state lives in the
// cursor and the context.
//
// Parse consumes zero or more tokens and populates the context under the
// element's key (structural elements recurse into children instead), or
// fails with a positioned *parse.Error. The cursor is left in a consistent
// failed-partial or fully-advanced state - callers snapshot before calling
// if they intend to backtrack.
//
// Complete produces candidate next tokens for a partially consumed cursor.
// It never fails: parse errors met while probing a branch are swallowed
// and converted into that branch's completions.
//
// Usage renders a human-readable usage fragment; it never touches the
// cursor.
type Element interface {
	Key() string
	Parse(src Source, args *parse.Cursor, ctx *parse.Context) error
	Complete(src Source, args *parse.Cursor, ctx *parse.Context) []string
	Usage(src Source) string
}

// element carries the binding key shared by all variants. A "" key marks a
// structural element which stores nothing itself.
type element struct {
	key string
}

func (e element) Key() string {
	return e.key
}

func usageName(key string) string {
	if DefaultUsageNameConverter == nil {
		return key
	}

	return DefaultUsageNameConverter(key)
}

// hasPrefixFold reports whether s begins with prefix under simple case
// folding.
func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// appendUnique appends values to dst, preserving order and dropping
// entries already present.
func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		seen := false
		for _, existing := range dst {
			if existing == v {
				seen = true
				break
			}
		}
		if !seen {
			dst = append(dst, v)
		}
	}

	return dst
}
