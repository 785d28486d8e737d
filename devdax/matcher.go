// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package devdax

import (
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-set/v3"
)

// Matcher assigns configured devices to declared requirements.
//
// Within one ordering of the requirements each requirement greedily takes
// the first compatible device not yet claimed. Greedy choices depend on the
// order: an early, loosely constrained requirement can take the only device
// a later requirement could use. The matcher therefore tries every ordering
// and returns the first one under which all requirements are assigned. The
// cost is O(R! * R * D) for R requirements and D devices, which is only
// acceptable for the handful of devices a test machine carries.
type Matcher struct {
	inspector Inspector
	logger    hclog.Logger
}

// NewMatcher returns a Matcher that reads device properties from inspector.
func NewMatcher(logger hclog.Logger, inspector Inspector) *Matcher {
	return &Matcher{
		inspector: inspector,
		logger:    logger.Named("matcher"),
	}
}

// Match tries to bind a distinct device from configured to every
// requirement. On success the bindings are returned in the order the
// requirements were assigned, which is the first successful ordering in
// lexicographic order. If no ordering succeeds Match returns false.
//
// Neither argument is modified. Duplicate paths in configured are treated as
// separate devices.
//
// Every ordering of the requirements may be tried, so matching costs
// O(R!·R·D) for R requirements and D devices. Tests are expected to declare
// only a handful of devices; no bound is enforced here.
func (m *Matcher) Match(configured []string, required []Requirement) ([]*Binding, bool) {
	attempt := 0
	for order := range permutations(len(required)) {
		attempt++
		if bindings, ok := m.tryOrder(configured, required, order); ok {
			m.logger.Debug("found device assignment", "attempt", attempt, "assignment", bindings)
			return bindings, true
		}
	}

	m.logger.Debug("no device assignment possible", "attempts", attempt,
		"requirements", len(required), "devices", len(configured))
	return nil, false
}

func (m *Matcher) tryOrder(configured []string, required []Requirement, order []int) ([]*Binding, bool) {
	claimed := set.New[int](len(configured))
	bindings := make([]*Binding, 0, len(order))

	for _, i := range order {
		b := NewBinding(required[i])
		for slot, path := range configured {
			if claimed.Contains(slot) {
				continue
			}
			if b.TryAssign(m.inspector, path) {
				claimed.Insert(slot)
				break
			}
		}

		if !b.Assigned {
			// at least one requirement cannot be assigned to any remaining
			// device, try another ordering
			m.logger.Trace("requirement cannot be assigned", "requirement", b.Name(), "order", order)
			return nil, false
		}
		bindings = append(bindings, b)
	}

	return bindings, true
}
