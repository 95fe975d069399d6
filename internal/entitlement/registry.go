package entitlement

import (
	"fmt"
	"sort"
	"strings"

	"github.com/verdala/va-client/internal/messages"
)

// NotFoundError reports requested service names that match no entitlement.
// Names preserves the order the caller requested them in.
type NotFoundError struct {
	Names []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf(messages.EntitlementNotFoundFmt, strings.Join(e.Names, ", "))
}

// MessageCode returns the machine-readable code for this error.
func (e *NotFoundError) MessageCode() string {
	return messages.CodeEntitlementNotFound
}

// Registry is the fixed catalog of entitlements. Membership never changes
// after construction; lookups are case-sensitive exact matches against each
// entitlement's valid names.
type Registry struct {
	ents   []*Entitlement
	byName map[string]*Entitlement
}

// NewRegistry builds the registry from the built-in catalog.
func NewRegistry() *Registry {
	reg, err := NewRegistryFrom(catalog())
	if err != nil {
		// The built-in catalog is validated by tests; a failure here is a
		// programming error, not a runtime condition.
		panic(err)
	}
	return reg
}

// NewRegistryFrom builds a registry from an explicit declaration list. It
// rejects duplicate names/aliases and dependency references to unknown
// services.
func NewRegistryFrom(ents []*Entitlement) (*Registry, error) {
	byName := make(map[string]*Entitlement, len(ents))
	for _, ent := range ents {
		for _, name := range ent.ValidNames() {
			if _, ok := byName[name]; ok {
				return nil, fmt.Errorf("duplicate entitlement name %q", name)
			}
			byName[name] = ent
		}
	}
	for _, ent := range ents {
		for _, dep := range ent.Required {
			if _, ok := byName[dep]; !ok {
				return nil, fmt.Errorf("entitlement %q requires unknown service %q", ent.Name, dep)
			}
		}
		for _, dep := range ent.Dependents {
			if _, ok := byName[dep]; !ok {
				return nil, fmt.Errorf("entitlement %q lists unknown dependent %q", ent.Name, dep)
			}
		}
	}
	return &Registry{ents: ents, byName: byName}, nil
}

// ByName returns the entitlement claiming name among its valid names.
func (r *Registry) ByName(name string) (*Entitlement, error) {
	if ent, ok := r.byName[name]; ok {
		return ent, nil
	}
	return nil, &NotFoundError{Names: []string{name}}
}

// All returns the entitlements in declaration order.
func (r *Registry) All() []*Entitlement {
	return r.ents
}

// ValidServices returns the sorted service names suitable for display. Beta
// services are excluded unless allowBeta is set. With allNames, aliases are
// included instead of presentation names.
func (r *Registry) ValidServices(allowBeta bool, allNames bool) []string {
	var names []string
	for _, ent := range r.ents {
		if ent.Beta && !allowBeta {
			continue
		}
		if allNames {
			names = append(names, ent.ValidNames()...)
		} else {
			names = append(names, ent.PresentationName)
		}
	}
	sort.Strings(names)
	return names
}
