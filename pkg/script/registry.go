package script

import (
	"fmt"
	"sort"
	"sync"

	"github.com/chazu/contour/pkg/sketch"
)

// Rule constructs an entity from a parsed command. The generic syntax, the
// layer clause and the parameter tail are handled by the caller; a rule only
// interprets the positional arguments, resolving label references through r.
type Rule func(cmd sketch.Command, r *Resolver) (sketch.Entity, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Rule)
)

// Register adds the rule for an entity type name. The registry is
// append-only: registering a name twice panics.
func Register(typeName string, rule Rule) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[typeName]; dup {
		panic(fmt.Sprintf("script: rule for %q registered twice", typeName))
	}
	registry[typeName] = rule
}

// Lookup returns the rule registered for typeName.
func Lookup(typeName string) (Rule, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	r, ok := registry[typeName]
	return r, ok
}

// Types returns the registered type names, sorted.
func Types() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
