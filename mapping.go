package dispatch

import (
	"sort"

	"github.com/google/uuid"
)

// Owner is the opaque identity a mapping is registered under. It only
// serves to namespace aliases as "ownerId:alias", to stop one owner from
// claiming the same alias twice, and to attribute mappings back to their
// registrant.
type Owner struct {
	id string
}

// NewOwner creates an owner identity. An empty id is replaced with a
// generated unique one.
func NewOwner(id string) Owner {
	if id == "" {
		id = uuid.NewString()
	}

	return Owner{id: id}
}

// ID returns the owner identifier.
func (o Owner) ID() string {
	return o.id
}

func (o Owner) String() string {
	return o.id
}

// Mapping is an immutable association between a set of aliases and a
// handler. The alias set always contains the primary alias and the
// owner-namespaced forms.
type Mapping struct {
	primary string
	aliases map[string]struct{}
	handler Handler
	owner   Owner
}

func newMapping(owner Owner, primary string, aliases []string, handler Handler) *Mapping {
	set := make(map[string]struct{}, len(aliases))
	for _, alias := range aliases {
		set[alias] = struct{}{}
	}
	set[primary] = struct{}{}

	return &Mapping{primary: primary, aliases: set, handler: handler, owner: owner}
}

// Primary returns the primary alias.
func (m *Mapping) Primary() string {
	return m.primary
}

// Aliases returns all aliases of the mapping, sorted, including the
// primary alias and the owner-namespaced forms.
func (m *Mapping) Aliases() []string {
	aliases := make([]string, 0, len(m.aliases))
	for alias := range m.aliases {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)

	return aliases
}

// HasAlias reports whether the mapping is registered under alias.
func (m *Mapping) HasAlias(alias string) bool {
	_, ok := m.aliases[alias]

	return ok
}

// Handler returns the handler the mapping routes to.
func (m *Mapping) Handler() Handler {
	return m.handler
}

// Owner returns the identity the mapping was registered by.
func (m *Mapping) Owner() Owner {
	return m.owner
}
