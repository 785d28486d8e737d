// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package devdax

import (
	"sort"
	"sync"

	"github.com/mitchellh/copystructure"
)

// RequirementKey is the registry key device-dax requirements are stored
// under.
const RequirementKey = "devdax"

// Registry is a table of requirements declared by tests, keyed by test
// identifier and requirement kind. Values and metadata are deep copied on
// the way in and out so a declaration can never be changed after it has
// been registered.
//
// Registry is safe for concurrent use.
type Registry struct {
	l       sync.RWMutex
	entries map[string]map[string]registryEntry
}

type registryEntry struct {
	value any
	meta  map[string]any
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]map[string]registryEntry),
	}
}

// Add registers value and its metadata for the test under key, replacing
// any earlier registration. Nothing is validated until the requirement is
// used. Values must be plain data that copystructure can copy.
func (r *Registry) Add(testID, key string, value any, meta map[string]any) {
	entry := registryEntry{
		value: deepCopy(value),
		meta:  deepCopyMeta(meta),
	}

	r.l.Lock()
	defer r.l.Unlock()

	byKey, ok := r.entries[testID]
	if !ok {
		byKey = make(map[string]registryEntry)
		r.entries[testID] = byKey
	}
	byKey[key] = entry
}

// Get returns the value and metadata registered for the test under key. If
// nothing was registered def and a nil map are returned.
func (r *Registry) Get(testID, key string, def any) (any, map[string]any) {
	r.l.RLock()
	entry, ok := r.entries[testID][key]
	r.l.RUnlock()

	if !ok {
		return def, nil
	}

	return deepCopy(entry.value), deepCopyMeta(entry.meta)
}

func deepCopy(v any) any {
	if v == nil {
		return nil
	}
	return copystructure.Must(copystructure.Copy(v))
}

func deepCopyMeta(meta map[string]any) map[string]any {
	if meta == nil {
		return nil
	}
	return deepCopy(meta).(map[string]any)
}

// Tests returns the identifiers of every test with a registration, sorted.
func (r *Registry) Tests() []string {
	r.l.RLock()
	defer r.l.RUnlock()

	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// RegisterOption configures a device-dax registration.
type RegisterOption func(meta map[string]any)

// WithMeta attaches a metadata key/value pair to the registration.
func WithMeta(key string, value any) RegisterOption {
	return func(meta map[string]any) {
		meta[key] = value
	}
}

// RequireDevDax registers the device-dax requirements of a test.
func RequireDevDax(reg *Registry, testID string, reqs []Requirement, opts ...RegisterOption) {
	var meta map[string]any
	if len(opts) > 0 {
		meta = make(map[string]any, len(opts))
		for _, opt := range opts {
			opt(meta)
		}
	}

	declared := make([]Requirement, 0, len(reqs))
	for _, req := range reqs {
		declared = append(declared, req.Copy())
	}
	reg.Add(testID, RequirementKey, declared, meta)
}

// Requirements returns the device-dax requirements registered for a test
// along with their metadata. A test without a registration yields nil.
func Requirements(reg *Registry, testID string) ([]Requirement, map[string]any) {
	value, meta := reg.Get(testID, RequirementKey, nil)
	reqs, _ := value.([]Requirement)
	return reqs, meta
}
