// Copyright 2026 Ian Lewis
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package scoring implements the per-rule scoring table described in
// spec.md §4.9: a map from feature key (or the "default" sentinel) to
// (score, weight, count), with an online mean/error update and a
// weighted-sum rollup. It also implements the tab-separated persistence
// format of spec.md §6.
package scoring

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ianlewis/pyramids/pyerr"
)

// FeatureKey is a value-typed tuple identifying a scoring feature, per
// spec.md §4.9: ("head spelling", (category, token)), ("head
// properties", (category, property)), ("body category", (head, comp)),
// ("body category sequence", (head, cat_i, cat_j)), or the sentinel
// Default.
type FeatureKey struct {
	Kind  string
	Parts []string
}

// Default is the sentinel feature key present in every Table.
var Default = FeatureKey{Kind: "default"}

// String returns a stable, unique representation of k suitable as a map
// key and for persistence (spec §6's repr(feature_key)).
func (k FeatureKey) String() string {
	if len(k.Parts) == 0 {
		return k.Kind
	}

	return k.Kind + "(" + strings.Join(k.Parts, ",") + ")"
}

// Entry is a single scoring-table record: a score and weight in [0,1]
// plus an observation count.
type Entry struct {
	Score  float64
	Weight float64
	Count  int
}

// defaultEntry is the bootstrap value for the sentinel Default feature
// and for any feature not yet observed (spec §4.9).
var defaultEntry = Entry{Score: 0.5, Weight: 0.001, Count: 0}

// Table is a rule's scoring table: feature key -> Entry, always
// containing the Default entry. Table is safe for concurrent reads; the
// caller must serialize calls to Adjust against each other and against
// concurrent reads per rule (spec §5).
type Table struct {
	mu      sync.RWMutex
	entries map[string]Entry
	shadow  map[string]FeatureKey
}

// NewTable returns a Table containing only the Default entry.
func NewTable() *Table {
	return &Table{
		entries: map[string]Entry{Default.String(): defaultEntry},
		shadow:  map[string]FeatureKey{Default.String(): Default},
	}
}

// Get returns the entry for k, and whether it was present.
func (t *Table) Get(k FeatureKey) (Entry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e, ok := t.entries[k.String()]

	return e, ok
}

// Default returns the table's default entry.
func (t *Table) Default() Entry {
	e, _ := t.Get(Default)

	return e
}

// Set installs e under k's key directly, bypassing the online-update
// formula. Used by Store.Load to restore persisted entries.
func (t *Table) Set(k FeatureKey, e Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ks := k.String()
	t.entries[ks] = e
	t.shadow[ks] = k
}

// Keys returns every feature key currently stored, including Default.
// Order is unspecified.
func (t *Table) Keys() []FeatureKey {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]FeatureKey, 0, len(t.entries))
	// The string form is the only thing persisted/iterated; store the
	// parsed kind/parts alongside it so round-tripping Keys() needs no
	// re-parsing. We keep a shadow map instead of re-deriving from the
	// string form, which would be lossy for parts containing commas.
	for k := range t.shadow {
		out = append(out, k)
	}

	return out
}

// CalculateWeighted implements spec §4.9's calculate_weighted_score: the
// weighted sum over the Default entry plus every key in features that
// exists in the table. Returns (Σ score·weight, Σ weight).
func (t *Table) CalculateWeighted(features []FeatureKey) (score, weight float64) {
	d := t.Default()
	score = d.Score * d.Weight
	weight = d.Weight

	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, f := range features {
		if e, ok := t.entries[f.String()]; ok {
			score += e.Score * e.Weight
			weight += e.Weight
		}
	}

	return score, weight
}

// Adjust implements spec §4.9's adjust_score for a single rule: for
// Default and every key in features, perform the online update
//
//	count  += 1
//	score  += (target-score)/count
//	err     = (target-score)^2
//	weight += ((1-err)-weight)/count
//
// If a feature is absent it is initialized from Default with count=2
// before the update is applied (spec §4.9). target must be in [0,1] or
// ErrScoreOutOfRange is returned (wrapped per rule/feature by the
// caller, which knows the rule's identity); ruleName is used only to
// produce a self-describing error.
func (t *Table) Adjust(ruleName string, features []FeatureKey, target float64) error {
	if target < 0 || target > 1 {
		return pyerr.WrapScore(ruleName, "", pyerr.ErrScoreOutOfRange)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	keys := append([]FeatureKey{Default}, features...)
	for _, k := range keys {
		ks := k.String()

		e, ok := t.entries[ks]
		if !ok {
			d := t.entries[Default.String()]
			e = Entry{Score: d.Score, Weight: d.Weight, Count: 2}
		}

		e.Count++
		e.Score += (target - e.Score) / float64(e.Count)
		errSq := (target - e.Score) * (target - e.Score)
		e.Weight += ((1 - errSq) - e.Weight) / float64(e.Count)

		if e.Score < 0 {
			e.Score = 0
		} else if e.Score > 1 {
			e.Score = 1
		}

		if e.Weight < 0 {
			e.Weight = 0
		} else if e.Weight > 1 {
			e.Weight = 1
		}

		t.entries[ks] = e
		t.shadow[ks] = k
	}

	return nil
}

// String satisfies fmt.Stringer for diagnostics.
func (t *Table) String() string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return fmt.Sprintf("Table(%d entries)", len(t.entries))
}
