package entitlement

import (
	"fmt"

	"github.com/verdala/va-client/internal/messages"
)

// CycleError reports a dependency cycle in the entitlement graph. Name is a
// member of the cycle.
type CycleError struct {
	Name string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("entitlement dependency cycle involving %q", e.Name)
}

// MessageCode returns the machine-readable code for this error.
func (e *CycleError) MessageCode() string {
	return messages.CodeDependencyCycle
}

// EnableOrder returns every entitlement name ordered so that each service
// appears after all services it requires. Ties break by declaration order.
func (r *Registry) EnableOrder() ([]string, error) {
	return r.sortByDependency(func(ent *Entitlement) []string { return ent.Required })
}

// DisableOrder returns every entitlement name ordered so that each service
// appears after all services that depend on it. Ties break by declaration
// order.
func (r *Registry) DisableOrder() ([]string, error) {
	return r.sortByDependency(func(ent *Entitlement) []string { return ent.Dependents })
}

// sortByDependency is a depth-first post-order topological sort over the
// edge set selected by edges. It is iterative: each stack frame tracks how
// many children have been pushed so a node is emitted only after all its
// children. An in-progress set detects cycles instead of recursing forever.
func (r *Registry) sortByDependency(edges func(*Entitlement) []string) ([]string, error) {
	type frame struct {
		ent  *Entitlement
		next int
	}

	order := make([]string, 0, len(r.ents))
	visited := make(map[string]bool, len(r.ents))
	inProgress := make(map[string]bool, len(r.ents))

	for _, root := range r.ents {
		if visited[root.Name] {
			continue
		}
		stack := []frame{{ent: root}}
		inProgress[root.Name] = true
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			deps := edges(top.ent)
			if top.next < len(deps) {
				depName := deps[top.next]
				top.next++
				dep := r.byName[depName]
				if visited[dep.Name] {
					continue
				}
				if inProgress[dep.Name] {
					return nil, &CycleError{Name: dep.Name}
				}
				inProgress[dep.Name] = true
				stack = append(stack, frame{ent: dep})
				continue
			}
			order = append(order, top.ent.Name)
			visited[top.ent.Name] = true
			delete(inProgress, top.ent.Name)
			stack = stack[:len(stack)-1]
		}
	}
	return order, nil
}
