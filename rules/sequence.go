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

package rules

import (
	"sort"
	"strings"

	"github.com/ianlewis/pyramids/category"
	"github.com/ianlewis/pyramids/forest"
	"github.com/ianlewis/pyramids/pyerr"
	"github.com/ianlewis/pyramids/scoring"
)

// SequenceRule derives a branch category from an ordered run of
// subcategory alternation sets (spec §4.5), grounded on
// pyramids/rules/sequence.py's SequenceRule.
type SequenceRule struct {
	base

	Cat             category.Category
	SubcategorySets [][]category.Category
	HeadIndex       int
	LinkTypeSets    [][]LinkType

	references  map[string]bool
	hasWildcard bool
}

// NewSequenceRule validates and builds a SequenceRule. There must be
// strictly fewer link-type sets than subcategory sets, since link types
// describe the gaps between consecutive subcategories (spec §7).
func NewSequenceRule(cat category.Category, subcategorySets [][]category.Category, headIndex int, linkTypeSets [][]LinkType) (*SequenceRule, error) {
	if len(subcategorySets) == 0 {
		return nil, pyerr.WrapModel(cat.String(), "subcategory_sets", pyerr.ErrEmptySubcategories)
	}

	if headIndex < 0 || headIndex >= len(subcategorySets) {
		return nil, pyerr.WrapModel(cat.String(), "head_index", pyerr.ErrHeadIndexOutOfRange)
	}

	if len(linkTypeSets) >= len(subcategorySets) {
		return nil, pyerr.WrapModel(cat.String(), "link_type_sets", pyerr.ErrTooManyLinkSets)
	}

	refs := map[string]bool{}
	hasWildcard := false

	for _, set := range subcategorySets {
		for _, c := range set {
			refs[c.Name] = true

			if c.IsWildcard() {
				hasWildcard = true
			}
		}
	}

	return &SequenceRule{
		base:            newBase(),
		Cat:             cat,
		SubcategorySets: subcategorySets,
		HeadIndex:       headIndex,
		LinkTypeSets:    linkTypeSets,
		references:      refs,
		hasWildcard:     hasWildcard,
	}, nil
}

func (r *SequenceRule) Category() category.Category { return r.Cat }

func (r *SequenceRule) LinkTypes(linkSetIndex int) []LinkType {
	if linkSetIndex < 0 || linkSetIndex >= len(r.LinkTypeSets) {
		return nil
	}

	return r.LinkTypeSets[linkSetIndex]
}

func (r *SequenceRule) String() string {
	var b strings.Builder

	b.WriteString(r.Cat.String())
	b.WriteString(":")

	for index, set := range r.SubcategorySets {
		b.WriteString(" ")

		if index == r.HeadIndex {
			b.WriteString("*")
		}

		names := make([]string, len(set))
		for i, c := range set {
			names[i] = c.String()
		}

		sort.Strings(names)
		b.WriteString(strings.Join(names, "|"))

		if index < len(r.LinkTypeSets) {
			links := append([]LinkType(nil), r.LinkTypeSets[index]...)
			sort.Slice(links, func(i, j int) bool { return links[i].Label < links[j].Label })

			for _, lt := range links {
				b.WriteString(" ")

				if lt.LeftArrow {
					b.WriteString("<")
				}

				b.WriteString(lt.Label)

				if lt.RightArrow {
					b.WriteString(">")
				}
			}
		}
	}

	return b.String()
}

func (r *SequenceRule) FeatureKeys(node *forest.ParseNode) []scoring.FeatureKey {
	return branchFeatureKeys(node.Category, node.HeadToken(), componentCategories(node))
}

// GetCategory derives a branch's result category from its subtree
// categories (spec §4.5's get_category): start from the head subtree's
// category, rewriting its name onto the rule's category when the rule's
// category is a wildcard; then apply the model's any/all-promoted
// property propagation before promoting the rule's category with the
// result.
func (r *SequenceRule) GetCategory(props Properties, subtreeCats []category.Category) category.Category {
	head := subtreeCats[r.HeadIndex]

	base := r.Cat
	if r.Cat.IsWildcard() {
		base = category.New(head.Name, positiveSlice(r.Cat), negativeSlice(r.Cat))
	}

	positive, negative := promotedProperties(props, head, subtreeCats)

	return category.Promote(base, setSlice(positive), setSlice(negative))
}

// IsNonRecursive implements spec §4.5's non-recursion predicate,
// preventing unit-cycle infinite derivations: a sequence of length >1 is
// always safe; a unit sequence is only safe if the result differs from (is
// not subsumed by, or strictly extends) the head's category.
func (r *SequenceRule) IsNonRecursive(resultCategory, headCategory category.Category) bool {
	return len(r.SubcategorySets) > 1 ||
		!category.Subsumes(headCategory, resultCategory) ||
		properSuperset(resultCategory.Positive, headCategory.Positive) ||
		properSuperset(resultCategory.Negative, headCategory.Negative)
}

// Fire implements spec §4.5: when newNodeSet's category matches a
// subcategory at some index, enumerate every forward/backward half
// surrounding it and assemble full candidate sequences.
func (r *SequenceRule) Fire(state State, newNodeSet *forest.NodeSet) {
	if !r.hasWildcard && !r.references[newNodeSet.Category.Name] {
		return
	}

	for index, set := range r.SubcategorySets {
		matched := false

		for _, subcat := range set {
			if category.Subsumes(subcat, newNodeSet.Category) {
				matched = true

				break
			}
		}

		if matched {
			r.findMatches(state, index, newNodeSet)
		}
	}
}

func (r *SequenceRule) findMatches(state State, index int, newNodeSet *forest.NodeSet) {
	// Forward halves are checked first because they're less likely; if
	// none exist, there's no need to enumerate backward halves at all.
	forwardHalves := r.iterForwardHalves(state.Chart(), index+1, newNodeSet.End)
	if len(forwardHalves) == 0 {
		return
	}

	backwardHalves := r.iterBackwardHalves(state.Chart(), index-1, newNodeSet.Start)

	for _, backward := range backwardHalves {
		for _, forward := range forwardHalves {
			subtrees := make([]*forest.NodeSet, 0, len(backward)+1+len(forward))
			subtrees = append(subtrees, backward...)
			subtrees = append(subtrees, newNodeSet)
			subtrees = append(subtrees, forward...)

			cats := make([]category.Category, len(subtrees))
			for i, s := range subtrees {
				cats[i] = s.Category
			}

			derived := r.GetCategory(state.Properties(), cats)
			if !r.IsNonRecursive(derived, subtrees[r.HeadIndex].Category) {
				continue
			}

			handles := make([]forest.Handle, len(subtrees))
			for i, s := range subtrees {
				handles[i] = s.Handle()
			}

			res := state.Arena().Add(r, r.HeadIndex, derived, subtrees[0].Start, subtrees[len(subtrees)-1].End, handles, "")
			if res.Added() && res.Node != nil {
				state.Queue().Push(res.Node)
			}
		}
	}
}

// iterForwardHalves enumerates every way to extend subcategorySets[index:]
// forward from start, returning, for each way, the ordered list of
// NodeSets it consumed.
func (r *SequenceRule) iterForwardHalves(chart ChartView, index, start int) [][]*forest.NodeSet {
	if len(r.SubcategorySets)-index > chart.MaxEnd()-start {
		return nil
	}

	if index >= len(r.SubcategorySets) {
		return [][]*forest.NodeSet{{}}
	}

	var out [][]*forest.NodeSet

	for _, subcat := range r.SubcategorySets[index] {
		for _, ns := range chart.ForwardMatches(start, subcat) {
			for _, tail := range r.iterForwardHalves(chart, index+1, ns.End) {
				combined := make([]*forest.NodeSet, 0, 1+len(tail))
				combined = append(combined, ns)
				combined = append(combined, tail...)
				out = append(out, combined)
			}
		}
	}

	return out
}

// iterBackwardHalves mirrors iterForwardHalves, anchored at end and
// walking subcategorySets[index] down to 0.
func (r *SequenceRule) iterBackwardHalves(chart ChartView, index, end int) [][]*forest.NodeSet {
	if index > end {
		return nil
	}

	if index < 0 {
		return [][]*forest.NodeSet{{}}
	}

	var out [][]*forest.NodeSet

	for _, subcat := range r.SubcategorySets[index] {
		for _, ns := range chart.BackwardMatches(end, subcat) {
			for _, tail := range r.iterBackwardHalves(chart, index-1, ns.Start) {
				combined := make([]*forest.NodeSet, 0, len(tail)+1)
				combined = append(combined, tail...)
				combined = append(combined, ns)
				out = append(out, combined)
			}
		}
	}

	return out
}
