// Copyright 2021-2024, Florent Heyworth. All rights reserved.
// Use of this source code is governed by the MIT licensee
// which can be found in the LICENSE file.

// Package dispatch provides a composable command-line argument grammar and
// dispatch engine: raw input lines are tokenized, parsed against a
// declaratively composed tree of argument elements, and routed to the
// handler registered under the leading alias.
//
// The grammar is built from a closed set of elements - literals, value
// leaves, sequences, optionals, repetitions, alternations, pattern/choice
// matchers, a flags sub-grammar and a sub-command element - each of which
// knows how to parse input, produce completion candidates for partially
// typed input, and render a usage fragment. Parsing uses explicit
// backtracking: combinators snapshot the cursor and parse context before
// trying an alternative and restore both on failure, so every backtrack
// point is visible in the code rather than hidden in control flow.
//
// Dispatchers map aliases to command mappings, disambiguate colliding
// aliases across owners, and are themselves handlers, so command
// hierarchies nest to arbitrary depth. All registry mutation is serialized
// internally; parsing and completion are synchronous and single-threaded
// per invocation.
package dispatch
