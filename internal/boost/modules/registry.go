// Package modules holds the static module registry and the small set of
// reference modules shipped to exercise it. Go has no safe equivalent of
// the source's importlib-based folder scanning (§4.3 of SPEC_FULL.md), so
// modules register themselves at init() time instead, the same static
// "Register(name, impl)" shape the teacher uses for its own tool registry.
package modules

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/harborlabs/boost/internal/boost/session"
)

var (
	mu       sync.RWMutex
	registry = map[string]session.Module{}
)

// Register adds mod under name. Re-registering the same name is a
// programmer error and panics (mirrors the tool registry's policy).
func Register(name string, mod session.Module) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := registry[name]; exists {
		panic(fmt.Errorf("modules: %q already registered", name))
	}
	registry[name] = mod
}

// Get looks up a module by name.
func Get(name string) (session.Module, bool) {
	mu.RLock()
	defer mu.RUnlock()
	m, ok := registry[name]
	return m, ok
}

// List returns every registered module name, sorted.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ResolveByPrefix finds the module whose IDPrefix matches the leading
// hyphen-separated token of a synthetic model id, mirroring the source's
// "substring match at the first hyphen" mapper translation.
func ResolveByPrefix(prefix string) (string, session.Module, bool) {
	mu.RLock()
	defer mu.RUnlock()
	for name, m := range registry {
		if m.IDPrefix() == prefix {
			return name, m, true
		}
	}
	return "", nil, false
}

// SplitSyntheticModel splits a synthetic model id "<prefix>-<backend-id>"
// on its first hyphen and checks the leading token against known module
// prefixes. Unknown prefix means "pass-through backend model": the id is
// returned unchanged and ok is false.
func SplitSyntheticModel(id string) (moduleName string, backendID string, mod session.Module, ok bool) {
	idx := strings.Index(id, "-")
	if idx < 0 {
		return "", id, nil, false
	}
	prefix, rest := id[:idx], id[idx+1:]
	name, m, found := ResolveByPrefix(prefix)
	if !found {
		return "", id, nil, false
	}
	return name, rest, m, true
}
