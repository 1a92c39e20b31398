package dispatch

import (
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"sort"
	"strings"
	"sync"

	"github.com/ef-ds/deque"
	orderedmap "github.com/wk8/go-ordered-map"

	"github.com/napalu/dispatch/i18n"
	"github.com/napalu/dispatch/parse"
	"github.com/napalu/dispatch/util"
)

// Dispatcher routes command lines to the handlers registered under their
// leading alias. One alias may be claimed by several owners; lookups
// resolve such collisions through the configured Disambiguator, and the
// owner-namespaced form "ownerId:alias" always resolves unambiguously.
//
// A Dispatcher is itself a Handler, so dispatchers nest to arbitrary
// depth. Registration, removal and lookup are internally serialized;
// everything else is the caller's concern.
type Dispatcher struct {
	mu            sync.RWMutex
	commands      *orderedmap.OrderedMap // alias string -> []*Mapping
	owners        *orderedmap.OrderedMap // owner id string -> []*Mapping
	disambiguator Disambiguator
	bundle        *i18n.Bundle
	warnWriter    io.Writer
	errWriter     io.Writer
}

// ConfigureDispatcherFunc adjusts a Dispatcher during construction.
type ConfigureDispatcherFunc func(d *Dispatcher)

// WithDisambiguator sets the policy used to resolve ambiguous aliases.
func WithDisambiguator(disambiguator Disambiguator) ConfigureDispatcherFunc {
	return func(d *Dispatcher) {
		d.disambiguator = disambiguator
	}
}

// WithWriters sets the writers warnings and internal errors are emitted
// to. Defaults to io.Discard and os.Stderr-like behavior is up to the
// caller.
func WithWriters(warn, err io.Writer) ConfigureDispatcherFunc {
	return func(d *Dispatcher) {
		if warn != nil {
			d.warnWriter = warn
		}
		if err != nil {
			d.errWriter = err
		}
	}
}

// WithBundle sets the message bundle used for user-facing messages.
func WithBundle(bundle *i18n.Bundle) ConfigureDispatcherFunc {
	return func(d *Dispatcher) {
		if bundle != nil {
			d.bundle = bundle
		}
	}
}

// NewDispatcher creates an empty Dispatcher with the default
// disambiguator.
func NewDispatcher(configure ...ConfigureDispatcherFunc) *Dispatcher {
	d := &Dispatcher{
		commands:      orderedmap.New(),
		owners:        orderedmap.New(),
		disambiguator: DefaultDisambiguator,
		bundle:        i18n.Default(),
		warnWriter:    io.Discard,
		errWriter:     io.Discard,
	}
	for _, config := range configure {
		config(d)
	}

	return d
}

// DefaultDisambiguator returns the first candidate whose primary alias
// case-insensitively equals the looked-up alias, else the first candidate
// in registration order.
func DefaultDisambiguator(src Source, alias string, candidates []*Mapping) *Mapping {
	for _, candidate := range candidates {
		if strings.EqualFold(candidate.Primary(), alias) {
			return candidate
		}
	}

	return candidates[0]
}

// Register associates handler with the given aliases on behalf of owner.
// Aliases are lower-cased and embedded spaces stripped (both with a
// warning). Aliases the owner already holds are pruned, and the optional
// filter is then given the surviving list and may return the subset to
// actually register; an empty result fails the registration. Every
// surviving alias is registered both bare and as "ownerId:alias".
func (d *Dispatcher) Register(owner Owner, handler Handler, aliases []string, filter AliasFilter) (*Mapping, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	normalized := make([]string, 0, len(aliases))
	seen := map[string]struct{}{}
	for _, alias := range aliases {
		clean := d.normalizeAlias(alias)
		if clean == "" {
			continue
		}
		if _, dup := seen[clean]; dup {
			continue
		}
		seen[clean] = struct{}{}
		normalized = append(normalized, clean)
	}

	owned := d.ownedAliases(owner)
	surviving := make([]string, 0, len(normalized))
	for _, alias := range normalized {
		if _, taken := owned[alias]; taken {
			fmt.Fprintf(d.warnWriter, "alias %q already registered to owner %q, skipping\n", alias, owner.ID())
			continue
		}
		surviving = append(surviving, alias)
	}
	if len(surviving) == 0 {
		if len(normalized) > 0 {
			return nil, fmt.Errorf(FmtErrorWithString, ErrAliasOwned, strings.Join(normalized, ", "))
		}
		return nil, ErrNoAliases
	}

	if filter != nil {
		filtered := filter(append([]string(nil), surviving...))
		allowed := map[string]struct{}{}
		for _, alias := range surviving {
			allowed[alias] = struct{}{}
		}
		surviving = surviving[:0]
		for _, alias := range filtered {
			if _, ok := allowed[alias]; ok {
				surviving = append(surviving, alias)
			}
		}
		if len(surviving) == 0 {
			return nil, ErrNoAliases
		}
	}

	ownerPrefix := strings.ToLower(owner.ID()) + ":"
	all := make([]string, 0, len(surviving)*2)
	for _, alias := range surviving {
		all = append(all, alias, ownerPrefix+alias)
	}
	mapping := newMapping(owner, surviving[0], all, handler)
	for _, alias := range all {
		d.addAlias(alias, mapping)
	}
	d.addOwned(owner, mapping)

	return mapping, nil
}

func (d *Dispatcher) normalizeAlias(alias string) string {
	clean := strings.ToLower(alias)
	if clean != alias {
		fmt.Fprintf(d.warnWriter, "alias %q lower-cased to %q\n", alias, clean)
	}
	if strings.Contains(clean, " ") {
		stripped := strings.ReplaceAll(clean, " ", "")
		fmt.Fprintf(d.warnWriter, "alias %q contained spaces, registered as %q\n", clean, stripped)
		clean = stripped
	}

	return clean
}

func (d *Dispatcher) ownedAliases(owner Owner) map[string]struct{} {
	owned := map[string]struct{}{}
	if v, ok := d.owners.Get(owner.ID()); ok {
		for _, mapping := range v.([]*Mapping) {
			for _, alias := range mapping.Aliases() {
				owned[alias] = struct{}{}
			}
		}
	}

	return owned
}

func (d *Dispatcher) addAlias(alias string, mapping *Mapping) {
	var mappings []*Mapping
	if v, ok := d.commands.Get(alias); ok {
		mappings = v.([]*Mapping)
	}
	d.commands.Set(alias, append(mappings, mapping))
}

func (d *Dispatcher) addOwned(owner Owner, mapping *Mapping) {
	var mappings []*Mapping
	if v, ok := d.owners.Get(owner.ID()); ok {
		mappings = v.([]*Mapping)
	}
	d.owners.Set(owner.ID(), append(mappings, mapping))
}

// Remove drops every mapping registered under alias. Returns the removed
// mappings.
func (d *Dispatcher) Remove(alias string) []*Mapping {
	d.mu.Lock()
	defer d.mu.Unlock()

	clean := strings.ToLower(alias)
	v, ok := d.commands.Get(clean)
	if !ok {
		return nil
	}
	removed := v.([]*Mapping)
	for _, mapping := range removed {
		d.detach(mapping)
	}

	return removed
}

// RemoveMapping drops one specific mapping from every alias it is
// registered under.
func (d *Dispatcher) RemoveMapping(mapping *Mapping) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if v, ok := d.owners.Get(mapping.Owner().ID()); ok {
		for _, m := range v.([]*Mapping) {
			if m == mapping {
				d.detach(mapping)
				return nil
			}
		}
	}

	return fmt.Errorf(FmtErrorWithString, ErrMappingNotFound, mapping.Primary())
}

// RemoveOwner drops every mapping registered by owner. Returns the removed
// mappings.
func (d *Dispatcher) RemoveOwner(owner Owner) []*Mapping {
	d.mu.Lock()
	defer d.mu.Unlock()

	v, ok := d.owners.Get(owner.ID())
	if !ok {
		return nil
	}
	removed := append([]*Mapping(nil), v.([]*Mapping)...)
	for _, mapping := range removed {
		d.detach(mapping)
	}

	return removed
}

// detach unlinks mapping from the alias and owner indexes. Callers hold
// the write lock.
func (d *Dispatcher) detach(mapping *Mapping) {
	for _, alias := range mapping.Aliases() {
		v, ok := d.commands.Get(alias)
		if !ok {
			continue
		}
		mappings := v.([]*Mapping)
		kept := mappings[:0]
		for _, m := range mappings {
			if m != mapping {
				kept = append(kept, m)
			}
		}
		if len(kept) == 0 {
			d.commands.Delete(alias)
		} else {
			d.commands.Set(alias, kept)
		}
	}
	if v, ok := d.owners.Get(mapping.Owner().ID()); ok {
		mappings := v.([]*Mapping)
		kept := mappings[:0]
		for _, m := range mappings {
			if m != mapping {
				kept = append(kept, m)
			}
		}
		if len(kept) == 0 {
			d.owners.Delete(mapping.Owner().ID())
		} else {
			d.owners.Set(mapping.Owner().ID(), kept)
		}
	}
}

// Get resolves alias to a mapping. When several mappings share the alias
// the configured disambiguator picks one.
func (d *Dispatcher) Get(alias string, src Source) (*Mapping, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	clean := strings.ToLower(alias)
	v, ok := d.commands.Get(clean)
	if !ok {
		return nil, fmt.Errorf(FmtErrorWithString, ErrCommandNotFound, alias)
	}
	candidates := v.([]*Mapping)
	if len(candidates) == 1 {
		return candidates[0], nil
	}
	disambiguator := d.disambiguator
	if disambiguator == nil {
		disambiguator = DefaultDisambiguator
	}
	if mapping := disambiguator(src, clean, candidates); mapping != nil {
		return mapping, nil
	}

	return nil, fmt.Errorf(FmtErrorWithString, ErrCommandNotFound, alias)
}

// Contains reports whether any mapping is registered under alias.
func (d *Dispatcher) Contains(alias string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.commands.Get(strings.ToLower(alias))

	return ok
}

// Aliases returns every registered alias, sorted, including namespaced
// forms.
func (d *Dispatcher) Aliases() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	aliases := make([]string, 0, d.commands.Len())
	for pair := d.commands.Oldest(); pair != nil; pair = pair.Next() {
		aliases = append(aliases, pair.Key.(string))
	}
	sort.Strings(aliases)

	return aliases
}

// Mappings returns the registered mappings, unique, in registration order.
func (d *Dispatcher) Mappings() []*Mapping {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.mappingsLocked()
}

func (d *Dispatcher) mappingsLocked() []*Mapping {
	var mappings []*Mapping
	seen := map[*Mapping]struct{}{}
	for pair := d.owners.Oldest(); pair != nil; pair = pair.Next() {
		for _, mapping := range pair.Value.([]*Mapping) {
			if _, dup := seen[mapping]; dup {
				continue
			}
			seen[mapping] = struct{}{}
			mappings = append(mappings, mapping)
		}
	}

	return mappings
}

// OwnedBy returns the mappings registered by owner, in registration order.
func (d *Dispatcher) OwnedBy(owner Owner) []*Mapping {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if v, ok := d.owners.Get(owner.ID()); ok {
		return append([]*Mapping(nil), v.([]*Mapping)...)
	}

	return nil
}

// splitLine separates the leading alias from the rest of the input line.
func splitLine(line string) (alias, rest string) {
	if idx := strings.IndexByte(line, ' '); idx >= 0 {
		return line[:idx], line[idx+1:]
	}

	return line, ""
}

// Process resolves the leading token of arguments and delegates the rest
// of the line to the resolved handler. Errors are returned to the caller;
// use Execute for the message-emitting outer surface.
func (d *Dispatcher) Process(src Source, arguments string) (ExecutionResult, error) {
	alias, rest := splitLine(arguments)
	mapping, err := d.Get(alias, src)
	if err != nil {
		return Empty(), err
	}

	return mapping.Handler().Process(src, rest)
}

// Execute processes a full input line and reports every failure to the
// source as a formatted message: parse errors render a ^-annotated
// position plus a usage line when one is attached, permission and lookup
// failures render a plain message, and anything else is treated as a
// handler bug whose stack trace is shown and logged, never propagated.
func (d *Dispatcher) Execute(src Source, line string) ExecutionResult {
	alias, _ := splitLine(line)
	result, err := d.processProtected(src, line)
	if err == nil {
		return result
	}

	var parseErr *parse.Error
	switch {
	case errors.As(err, &parseErr):
		src.SendMessage(parseErr.Error())
		src.SendMessage(parseErr.AnnotatedPositionWidth(util.TerminalWidth(d.errWriter)))
		if parseErr.Usage != "" {
			src.SendMessage(d.bundle.T(i18n.KeyCommandUsage, alias, parseErr.Usage))
		}
	case errors.Is(err, ErrPermissionDenied):
		src.SendMessage(d.bundle.T(i18n.KeyPermissionDenied))
	case errors.Is(err, ErrCommandNotFound):
		src.SendMessage(d.bundle.T(i18n.KeyCommandNotFound, alias))
	default:
		message := d.bundle.T(i18n.KeyInternalError, alias)
		src.SendMessage(message + "\n" + err.Error())
		fmt.Fprintf(d.errWriter, "%s: %v\n", message, err)
	}

	return Empty()
}

// processProtected runs Process with panic containment: a panicking
// handler is converted into an error carrying its stack trace.
func (d *Dispatcher) processProtected(src Source, line string) (result ExecutionResult, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("handler panic: %v\n%s", recovered, debug.Stack())
		}
	}()

	return d.Process(src, line)
}

// Suggestions produces completion candidates for a partially typed line.
// Until the first space is typed, every registered alias matching the
// prefix is offered (including namespaced forms, not deduplicated by
// owner); afterwards the resolved handler takes over.
func (d *Dispatcher) Suggestions(src Source, arguments string) ([]string, error) {
	if !strings.Contains(arguments, " ") {
		prefix := strings.ToLower(arguments)
		var suggestions []string
		for _, alias := range d.Aliases() {
			if hasPrefixFold(alias, prefix) {
				suggestions = append(suggestions, alias)
			}
		}
		return suggestions, nil
	}

	alias, rest := splitLine(arguments)
	mapping, err := d.Get(alias, src)
	if err != nil {
		return nil, nil
	}

	return mapping.Handler().Suggestions(src, rest)
}

// ShortDescription implements Handler; a dispatcher has no description of
// its own.
func (d *Dispatcher) ShortDescription(src Source) string {
	return ""
}

// Help renders one line per reachable command, walking nested dispatchers
// breadth-first.
func (d *Dispatcher) Help(src Source) string {
	type level struct {
		prefix     string
		dispatcher *Dispatcher
	}
	var lines []string
	worklist := deque.New()
	worklist.PushBack(level{dispatcher: d})
	for worklist.Len() > 0 {
		v, _ := worklist.PopFront()
		current := v.(level)
		for _, mapping := range current.dispatcher.Mappings() {
			label := mapping.Primary()
			if current.prefix != "" {
				label = current.prefix + " " + label
			}
			line := "/" + label
			if desc := mapping.Handler().ShortDescription(src); desc != "" {
				line += " - " + desc
			}
			lines = append(lines, line)
			if sub, ok := mapping.Handler().(*Dispatcher); ok {
				worklist.PushBack(level{prefix: label, dispatcher: sub})
			}
		}
	}

	return strings.Join(lines, "\n")
}

// Usage renders the alternation of all primary aliases.
func (d *Dispatcher) Usage(src Source) string {
	seen := map[string]struct{}{}
	var primaries []string
	for _, mapping := range d.Mappings() {
		if _, dup := seen[mapping.Primary()]; dup {
			continue
		}
		seen[mapping.Primary()] = struct{}{}
		primaries = append(primaries, mapping.Primary())
	}

	return strings.Join(primaries, "|")
}
