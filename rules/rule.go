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

// Package rules implements the rule variants of spec.md §3/§4.3-§4.6: leaf
// rules (set, suffix, case), branch rules (sequence, conjunction), and the
// subtree-match predicates conjunction rules are built from.
// Property-inheritance rules live in package properties.
//
// rules depends on forest (to build ParseNodes/NodeSets when a branch rule
// fires) but declares its own ChartView/Queue/State interfaces rather than
// importing a chart package directly, so that chart and rules never import
// each other; chart.Chart satisfies ChartView structurally.
package rules

import (
	"sort"

	"github.com/ianlewis/pyramids/category"
	"github.com/ianlewis/pyramids/forest"
	"github.com/ianlewis/pyramids/scoring"
)

// Rule is the common contract every rule variant satisfies; it is exactly
// forest.RuleRef, restated here so callers outside forest don't need to
// import forest just to name the type a model's rule sets hold.
type Rule interface {
	forest.RuleRef
}

// LeafRule matches individual tokens (spec §4.3).
type LeafRule interface {
	Rule
	Category() category.Category
	Matches(token string) bool
}

// LinkType is a labeled relation between a branch rule's head and one of
// its non-head components, directed by LeftArrow/RightArrow (spec
// Glossary: "Link type").
type LinkType struct {
	Label      string
	LeftArrow  bool
	RightArrow bool
}

// ChartView is the subset of chart.Chart's behavior a branch rule needs to
// enumerate matches (spec §4.4, §4.5, §4.6).
type ChartView interface {
	// MaxEnd is the largest end position realized in the chart so far;
	// used to prune enumeration that cannot possibly fit (spec §4.5's
	// "can't possibly find a match since it would have to fall off the
	// edge").
	MaxEnd() int

	// ForwardMatches returns every NodeSet at (start, concreteCategory,
	// end) such that query subsumes concreteCategory, for any end.
	ForwardMatches(start int, query category.Category) []*forest.NodeSet

	// BackwardMatches is ForwardMatches' mirror image, anchored at end
	// and varying start.
	BackwardMatches(end int, query category.Category) []*forest.NodeSet
}

// Queue is the subset of the scheduler's priority queue a branch rule
// needs: pushing a freshly built candidate ParseNode for later processing
// (spec §4.7).
type Queue interface {
	Push(node *forest.ParseNode)
}

// Properties is the subset of the property-inheritance engine (and the
// model's any/all-promoted property sets) a branch rule needs (spec §4.2,
// §4.5, §4.6).
type Properties interface {
	Extend(c category.Category) category.Category
	AnyPromoted() []string
	AllPromoted() []string
}

// State bundles everything a branch rule needs to enumerate matches and
// enqueue candidates when it fires.
type State interface {
	Chart() ChartView
	Arena() *forest.Arena
	Queue() Queue
	Properties() Properties
}

// BranchRule builds larger spans out of already-realized NodeSets (spec
// §4.5, §4.6).
type BranchRule interface {
	Rule

	// Fire is called once per NodeSet popped off the scheduler's queue
	// (spec §4.7 step 5); it enumerates matches involving newNodeSet and
	// pushes any resulting candidates onto state.Queue().
	Fire(state State, newNodeSet *forest.NodeSet)

	// LinkTypes returns the per-gap link-type set at linkSetIndex, used
	// by semantic graph extraction (spec §4.12).
	LinkTypes(linkSetIndex int) []LinkType
}

// base gives every rule variant its own scoring table, satisfying the
// Table() half of forest.RuleRef.
type base struct {
	table *scoring.Table
}

func newBase() base {
	return base{table: scoring.NewTable()}
}

func (b base) Table() *scoring.Table {
	return b.table
}

// sortedPositive returns c's positive properties in sorted order, for
// deterministic feature-key emission.
func sortedPositive(c category.Category) []string {
	out := make([]string, 0, len(c.Positive))
	for p := range c.Positive {
		out = append(out, p)
	}

	sort.Strings(out)

	return out
}

// leafFeatureKeys implements spec §4.9's leaf-rule feature emission:
// ("head spelling", (category_name, token)) plus ("head properties",
// (category_name, p)) for each positive property p.
func leafFeatureKeys(cat category.Category, token string) []scoring.FeatureKey {
	keys := make([]scoring.FeatureKey, 0, 1+len(cat.Positive))
	keys = append(keys, scoring.FeatureKey{Kind: "head spelling", Parts: []string{cat.Name, token}})

	for _, p := range sortedPositive(cat) {
		keys = append(keys, scoring.FeatureKey{Kind: "head properties", Parts: []string{cat.Name, p}})
	}

	return keys
}

// branchFeatureKeys implements spec §4.9's branch-rule feature emission:
// head spelling/properties of the result, plus a "body category" entry per
// component and a "body category sequence" entry per ordered component
// pair.
func branchFeatureKeys(headCat category.Category, headToken string, componentCats []category.Category) []scoring.FeatureKey {
	keys := make([]scoring.FeatureKey, 0, 1+len(headCat.Positive)+len(componentCats)+len(componentCats)*len(componentCats)/2)
	keys = append(keys, scoring.FeatureKey{Kind: "head spelling", Parts: []string{headCat.Name, headToken}})

	for _, p := range sortedPositive(headCat) {
		keys = append(keys, scoring.FeatureKey{Kind: "head properties", Parts: []string{headCat.Name, p}})
	}

	for _, c := range componentCats {
		keys = append(keys, scoring.FeatureKey{Kind: "body category", Parts: []string{headCat.Name, c.String()}})
	}

	for i := 0; i < len(componentCats); i++ {
		for j := i + 1; j < len(componentCats); j++ {
			keys = append(keys, scoring.FeatureKey{
				Kind:  "body category sequence",
				Parts: []string{headCat.Name, componentCats[i].String(), componentCats[j].String()},
			})
		}
	}

	return keys
}

func componentCategories(node *forest.ParseNode) []category.Category {
	cats := make([]category.Category, len(node.Components))
	for i := range node.Components {
		cats[i] = node.Component(i).Category
	}

	return cats
}
