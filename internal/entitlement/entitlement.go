package entitlement

// Entitlement describes one Verdala Advantage service: its identity, beta
// status, and its position in the service dependency graph. Entitlements are
// immutable; the full set is fixed at build time in catalog.go.
type Entitlement struct {
	// Name is the canonical service name.
	Name string
	// PresentationName is the display form shown to users.
	PresentationName string
	// Aliases are additional names that resolve to this entitlement.
	Aliases []string
	// Description is a one-line summary for status output.
	Description string
	// Beta marks services not yet generally available. Beta services are
	// excluded from resolution unless the caller explicitly allows them.
	Beta bool
	// Required names the services that must be enabled before this one.
	Required []string
	// Dependents names the services that must be disabled before this one
	// can be disabled.
	Dependents []string
}

// ValidNames returns the canonical name followed by any aliases.
func (e *Entitlement) ValidNames() []string {
	names := make([]string, 0, 1+len(e.Aliases))
	names = append(names, e.Name)
	names = append(names, e.Aliases...)
	return names
}

// HasName reports whether name matches the canonical name or an alias.
// Matching is case-sensitive and exact.
func (e *Entitlement) HasName(name string) bool {
	if name == e.Name {
		return true
	}
	for _, alias := range e.Aliases {
		if name == alias {
			return true
		}
	}
	return false
}
