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

// Package chart implements the forward/backward category index of spec
// §4.4: given a NodeSet realized during a parse, register it so that
// later rule firings can efficiently ask "what ends at/starts from this
// boundary and is subsumed by this category query".
//
// Chart satisfies rules.ChartView structurally (MaxEnd/ForwardMatches/
// BackwardMatches); this package does not import rules, so rules and
// chart never import each other.
package chart

import (
	"sort"

	"github.com/ianlewis/pyramids/category"
	"github.com/ianlewis/pyramids/forest"
)

// byName is a single chart side's (start-or-end -> name -> NodeSets)
// nested index, mirroring the "map of maps of sets" shape of a packed
// shared-forest search tree, keyed here by (position, category name)
// rather than by symbol identity, since lookups must subsume on
// properties, not match by pointer.
type byName map[int]map[string][]*forest.NodeSet

func (idx byName) add(pos int, name string, ns *forest.NodeSet) {
	byPos, ok := idx[pos]
	if !ok {
		byPos = make(map[string][]*forest.NodeSet)
		idx[pos] = byPos
	}

	byPos[name] = append(byPos[name], ns)
}

// matches returns every NodeSet indexed at pos whose category is
// subsumed by query. A wildcard query iterates every name bucket at pos;
// otherwise only the matching name bucket is consulted.
func (idx byName) matches(pos int, query category.Category) []*forest.NodeSet {
	byPos, ok := idx[pos]
	if !ok {
		return nil
	}

	var names []string

	if query.IsWildcard() {
		names = make([]string, 0, len(byPos))
		for name := range byPos {
			names = append(names, name)
		}

		sort.Strings(names)
	} else {
		names = []string{query.Name}
	}

	var out []*forest.NodeSet

	for _, name := range names {
		for _, ns := range byPos[name] {
			if category.Subsumes(query, ns.Category) {
				out = append(out, ns)
			}
		}
	}

	return out
}

// Chart is the dynamic-programming index over realized NodeSets (spec
// §3, §4.4). It does not own NodeSet storage; that lives in the
// forest.Arena a ParserState constructs it alongside.
type Chart struct {
	forward  byName
	backward byName
	seen     map[forest.Handle]bool
	maxEnd   int
}

// New returns an empty Chart.
func New() *Chart {
	return &Chart{
		forward:  make(byName),
		backward: make(byName),
		seen:     make(map[forest.Handle]bool),
	}
}

// Add registers ns into both indices (spec §4.4's add(node)). Returns
// false if this exact NodeSet handle was already registered (the
// scheduler calls Add once per processed pop; a NodeSet popped more than
// once, or already present from an earlier firing, is a no-op here).
func (c *Chart) Add(ns *forest.NodeSet) bool {
	if c.seen[ns.Handle()] {
		return false
	}

	c.seen[ns.Handle()] = true

	c.forward.add(ns.Start, ns.Category.Name, ns)
	c.backward.add(ns.End, ns.Category.Name, ns)

	if ns.End > c.maxEnd {
		c.maxEnd = ns.End
	}

	return true
}

// MaxEnd returns the largest end position realized in the chart so far.
func (c *Chart) MaxEnd() int {
	return c.maxEnd
}

// ForwardMatches returns every NodeSet starting at start whose category
// is subsumed by query (spec §4.4's iter_forward_matches).
func (c *Chart) ForwardMatches(start int, query category.Category) []*forest.NodeSet {
	return c.forward.matches(start, query)
}

// BackwardMatches returns every NodeSet ending at end whose category is
// subsumed by query (spec §4.4's iter_backward_matches).
func (c *Chart) BackwardMatches(end int, query category.Category) []*forest.NodeSet {
	return c.backward.matches(end, query)
}
