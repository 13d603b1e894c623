package core

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registry   = make(map[string]RuleSetDefinition)
	registryMu sync.RWMutex
)

// Register adds a rule set definition to the registry.
// Panics if the name is already registered or the rules do not compile.
func Register(def RuleSetDefinition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Name]; exists {
		panic(fmt.Sprintf("rule set already registered: %s", def.Name))
	}

	// Fail at init time rather than when the first session is created
	MustCompileRules(def)

	registry[def.Name] = def
}

// Get returns a rule set definition by name.
// Returns false if not found.
func Get(name string) (RuleSetDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[name]
	return def, ok
}

// All returns all registered definitions sorted by name.
func All() []RuleSetDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]RuleSetDefinition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result
}

// Names returns the registered rule set names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RuleSetCount returns the number of registered rule sets.
func RuleSetCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all registered rule sets.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]RuleSetDefinition)
}
