package entitlement

// Resolution classifies a set of requested service names against the
// registry. Found, NotFound, and BetaRejected partition the deduplicated
// request: every requested name lands in exactly one list.
type Resolution struct {
	// Found holds the canonical names of resolved entitlements in enable
	// dependency order (prerequisites first).
	Found []string
	// NotFound holds requested names matching no entitlement, in request
	// order.
	NotFound []string
	// BetaRejected holds requested names that resolved to beta-only
	// entitlements when beta was not allowed, in request order.
	BetaRejected []string
}

// Resolve matches the requested names against the registry. Requests are
// deduplicated first; a name appearing twice is classified once. Aliases
// resolve to their canonical name, so two spellings of the same service
// produce a single Found entry.
func (r *Registry) Resolve(names []string, allowBeta bool) (Resolution, error) {
	var res Resolution
	seen := make(map[string]bool, len(names))
	foundSet := make(map[string]bool, len(names))

	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		ent, err := r.ByName(name)
		if err != nil {
			res.NotFound = append(res.NotFound, name)
			continue
		}
		if ent.Beta && !allowBeta {
			res.BetaRejected = append(res.BetaRejected, name)
			continue
		}
		foundSet[ent.Name] = true
	}

	if len(foundSet) > 0 {
		order, err := r.EnableOrder()
		if err != nil {
			return Resolution{}, err
		}
		for _, name := range order {
			if foundSet[name] {
				res.Found = append(res.Found, name)
			}
		}
	}
	return res, nil
}

// IsAnyBeta reports whether any resolvable name refers to a beta-only
// entitlement. Unresolvable names are skipped; they are reported later by
// Resolve rather than here.
func (r *Registry) IsAnyBeta(names []string) bool {
	for _, name := range names {
		ent, err := r.ByName(name)
		if err != nil {
			continue
		}
		if ent.Beta {
			return true
		}
	}
	return false
}
