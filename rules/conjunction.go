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
	"github.com/ianlewis/pyramids/scoring"
)

// Fixed properties a ConjunctionRule's derived category always carries
// (spec §4.6).
const (
	PropConjunction = "conjunction"
	PropCompound    = "compound"
	PropSimple      = "simple"
	PropSingle      = "single"
)

// PropertyRule conditionally assigns properties based on whether every one
// of its Predicates matches (spec §4.6's "property rules"): for each
// (prop, wantPositive) pair in Assignments, prop is added positively iff
// wantPositive equals the predicate conjunction's result, else negatively.
type PropertyRule struct {
	Assignments map[string]bool
	Predicates  []Predicate
}

// ConjunctionRule recognizes (leadup*, conjunction, followup) spans (spec
// §3/§4.6), grounded on pyramids/rules/conjunction.py.
type ConjunctionRule struct {
	base

	Cat                   category.Category
	LeadupCategories      []category.Category
	ConjunctionCategories []category.Category
	FollowupCategories    []category.Category
	LeadupLinkTypes       []LinkType
	FollowupLinkTypes     []LinkType
	Single                bool
	Compound              bool
	MatchRules            [][]Predicate
	PropertyRules         []PropertyRule

	references  map[string]bool
	hasWildcard bool
}

// NewConjunctionRule builds a ConjunctionRule. A nil leadupCategories
// forces Single; Compound only applies when leadups are possible at all.
func NewConjunctionRule(
	cat category.Category,
	matchRules [][]Predicate,
	propertyRules []PropertyRule,
	leadupCategories, conjunctionCategories, followupCategories []category.Category,
	leadupLinkTypes, followupLinkTypes []LinkType,
	single, compound bool,
) *ConjunctionRule {
	hasLeadup := len(leadupCategories) > 0

	refs := map[string]bool{}
	hasWildcard := false

	for _, set := range [][]category.Category{leadupCategories, conjunctionCategories, followupCategories} {
		for _, c := range set {
			refs[c.Name] = true

			if c.IsWildcard() {
				hasWildcard = true
			}
		}
	}

	return &ConjunctionRule{
		base:                  newBase(),
		Cat:                   cat,
		LeadupCategories:      leadupCategories,
		ConjunctionCategories: conjunctionCategories,
		FollowupCategories:    followupCategories,
		LeadupLinkTypes:       leadupLinkTypes,
		FollowupLinkTypes:     followupLinkTypes,
		Single:                single || !hasLeadup,
		Compound:              compound && hasLeadup,
		MatchRules:            matchRules,
		PropertyRules:         propertyRules,
		references:            refs,
		hasWildcard:           hasWildcard,
	}
}

func (r *ConjunctionRule) Category() category.Category { return r.Cat }

// LinkTypes returns FollowupLinkTypes for every gap: linkSetIndex is not
// consulted, and LeadupLinkTypes are never returned.
func (r *ConjunctionRule) LinkTypes(linkSetIndex int) []LinkType {
	_ = linkSetIndex

	return r.FollowupLinkTypes
}

func (r *ConjunctionRule) String() string {
	var b strings.Builder

	b.WriteString(r.Cat.String())
	b.WriteString(":")

	for _, conj := range r.MatchRules {
		parts := make([]string, len(conj))
		for i, p := range conj {
			parts[i] = p.String()
		}

		b.WriteString(" [" + strings.Join(parts, " ") + "]")
	}

	leadupPrefix := ""

	switch {
	case r.Compound:
		leadupPrefix = "+"
	case r.Single:
		leadupPrefix = "-"
	}

	writeSet := func(prefix string, set []category.Category) {
		names := make([]string, len(set))
		for i, c := range set {
			names[i] = c.String()
		}

		sort.Strings(names)
		b.WriteString(" " + prefix + strings.Join(names, "|"))
	}

	writeSet(leadupPrefix, r.LeadupCategories)
	writeSet("*", r.ConjunctionCategories)
	writeSet("", r.FollowupCategories)

	return b.String()
}

func (r *ConjunctionRule) FeatureKeys(node *forest.ParseNode) []scoring.FeatureKey {
	return branchFeatureKeys(node.Category, node.HeadToken(), componentCategories(node))
}

// GetCategory implements spec §4.6's derivation: intersect the non-head
// (leadup + followup) subtrees' shared properties, apply any/all
// promotion across every subtree, add the fixed conjunction/simple/
// compound/single properties, then apply property rules.
func (r *ConjunctionRule) GetCategory(props Properties, subtreeCats []category.Category, headIndex int) category.Category {
	last := subtreeCats[len(subtreeCats)-1]

	base := r.Cat
	if r.Cat.IsWildcard() {
		base = category.New(last.Name, positiveSlice(r.Cat), negativeSlice(r.Cat))
	}

	positive := cloneSet(last.Positive)
	negative := cloneSet(last.Negative)

	for i := 0; i < len(subtreeCats)-2; i++ {
		positive = intersectSet(positive, subtreeCats[i].Positive)
		negative = intersectSet(negative, subtreeCats[i].Negative)
	}

	positive, negative = applyPromotions(props, positive, negative, subtreeCats)

	positive[PropConjunction] = true
	delete(negative, PropConjunction)

	switch {
	case len(subtreeCats) > 3:
		positive[PropCompound] = true
		delete(negative, PropCompound)
		negative[PropSimple] = true
		delete(positive, PropSimple)
		negative[PropSingle] = true
		delete(positive, PropSingle)
	case len(subtreeCats) < 3:
		negative[PropSimple] = true
		delete(positive, PropSimple)
		negative[PropCompound] = true
		delete(positive, PropCompound)
		positive[PropSingle] = true
		delete(negative, PropSingle)
	default:
		negative[PropCompound] = true
		delete(positive, PropCompound)
		positive[PropSimple] = true
		delete(negative, PropSimple)
		negative[PropSingle] = true
		delete(positive, PropSingle)
	}

	for _, pr := range r.PropertyRules {
		matched := true

		for _, pred := range pr.Predicates {
			if !pred.Match(subtreeCats, headIndex) {
				matched = false

				break
			}
		}

		for prop, wantPositive := range pr.Assignments {
			if wantPositive == matched {
				positive[prop] = true
				delete(negative, prop)
			} else {
				negative[prop] = true
				delete(positive, prop)
			}
		}
	}

	return category.Promote(base, setSlice(positive), setSlice(negative))
}

// IsNonRecursive is always true: a conjunction phrase always spans at
// least two subtrees (leadup/conjunction/followup can never collapse to
// one), so the unit-cycle concern sequence rules guard against cannot
// arise here (spec §4.6).
func (r *ConjunctionRule) IsNonRecursive(_, _ category.Category) bool {
	return true
}

// canMatch reports whether any of the rule's match-rule conjunctions is
// satisfied (spec §4.6's "disjunction of conjunctions of subtree
// predicates"). No match rules at all means the assembly always
// qualifies.
func (r *ConjunctionRule) canMatch(subtreeCats []category.Category, headIndex int) bool {
	if len(r.MatchRules) == 0 {
		return true
	}

	for _, conj := range r.MatchRules {
		matched := true

		for _, pred := range conj {
			if !pred.Match(subtreeCats, headIndex) {
				matched = false

				break
			}
		}

		if matched {
			return true
		}
	}

	return false
}

// conjunction automaton states, mirroring ConjunctionRule._iter_*_halves.
const (
	stateLeadup     = -1
	stateConjunction = 0
	stateFollowup    = 1
)

// Fire implements spec §4.6: when newNodeSet's category matches a leadup,
// conjunction, or followup alternative, enumerate every assembly the
// automaton allows around it.
func (r *ConjunctionRule) Fire(state State, newNodeSet *forest.NodeSet) {
	if !r.hasWildcard && !r.references[newNodeSet.Category.Name] {
		return
	}

	for _, entry := range []struct {
		automState int
		set        []category.Category
	}{
		{stateLeadup, r.LeadupCategories},
		{stateConjunction, r.ConjunctionCategories},
		{stateFollowup, r.FollowupCategories},
	} {
		for _, subcat := range entry.set {
			if category.Subsumes(subcat, newNodeSet.Category) {
				r.findMatches(state, entry.automState, newNodeSet)

				break
			}
		}
	}
}

func (r *ConjunctionRule) findMatches(state State, automState int, newNodeSet *forest.NodeSet) {
	forwardHalves := r.iterForwardHalves(state.Chart(), automState, newNodeSet.Start)
	if len(forwardHalves) == 0 {
		return
	}

	switch automState {
	case stateLeadup:
		for _, fwd := range forwardHalves {
			r.tryAssemble(state, fwd)
		}

		if r.Compound {
			for _, bwd := range r.iterBackwardHalves(state.Chart(), stateLeadup, newNodeSet.Start) {
				for _, fwd := range forwardHalves {
					r.tryAssemble(state, concatNodeSets(bwd, fwd))
				}
			}
		}
	case stateConjunction:
		if r.Single {
			for _, fwd := range forwardHalves {
				r.tryAssemble(state, fwd)
			}
		}

		for _, bwd := range r.iterBackwardHalves(state.Chart(), stateLeadup, newNodeSet.Start) {
			for _, fwd := range forwardHalves {
				r.tryAssemble(state, concatNodeSets(bwd, fwd))
			}
		}
	case stateFollowup:
		for _, bwd := range r.iterBackwardHalves(state.Chart(), stateConjunction, newNodeSet.Start) {
			for _, fwd := range forwardHalves {
				r.tryAssemble(state, concatNodeSets(bwd, fwd))
			}
		}
	}
}

func (r *ConjunctionRule) tryAssemble(state State, subtrees []*forest.NodeSet) {
	if len(subtrees) < 2 {
		return
	}

	headIndex := len(subtrees) - 2

	cats := make([]category.Category, len(subtrees))
	for i, s := range subtrees {
		cats[i] = s.Category
	}

	if !r.canMatch(cats, headIndex) {
		return
	}

	derived := r.GetCategory(state.Properties(), cats, headIndex)

	handles := make([]forest.Handle, len(subtrees))
	for i, s := range subtrees {
		handles[i] = s.Handle()
	}

	res := state.Arena().Add(r, headIndex, derived, subtrees[0].Start, subtrees[len(subtrees)-1].End, handles, "")
	if res.Added() && res.Node != nil {
		state.Queue().Push(res.Node)
	}
}

func (r *ConjunctionRule) forwardMatchesAny(chart ChartView, start int, set []category.Category) []*forest.NodeSet {
	seen := map[forest.Handle]bool{}

	var out []*forest.NodeSet

	for _, cat := range set {
		for _, ns := range chart.ForwardMatches(start, cat) {
			if !seen[ns.Handle()] {
				seen[ns.Handle()] = true
				out = append(out, ns)
			}
		}
	}

	return out
}

func (r *ConjunctionRule) backwardMatchesAny(chart ChartView, end int, set []category.Category) []*forest.NodeSet {
	seen := map[forest.Handle]bool{}

	var out []*forest.NodeSet

	for _, cat := range set {
		for _, ns := range chart.BackwardMatches(end, cat) {
			if !seen[ns.Handle()] {
				seen[ns.Handle()] = true
				out = append(out, ns)
			}
		}
	}

	return out
}

func (r *ConjunctionRule) iterForwardHalves(chart ChartView, automState, start int) [][]*forest.NodeSet {
	var out [][]*forest.NodeSet

	switch automState {
	case stateLeadup:
		for _, ns := range r.forwardMatchesAny(chart, start, r.LeadupCategories) {
			for _, tail := range r.iterForwardHalves(chart, stateConjunction, ns.End) {
				out = append(out, concatNodeSets([]*forest.NodeSet{ns}, tail))
			}

			if r.Compound {
				for _, tail := range r.iterForwardHalves(chart, stateLeadup, ns.End) {
					out = append(out, concatNodeSets([]*forest.NodeSet{ns}, tail))
				}
			}
		}
	case stateConjunction:
		for _, ns := range r.forwardMatchesAny(chart, start, r.ConjunctionCategories) {
			for _, tail := range r.iterForwardHalves(chart, stateFollowup, ns.End) {
				out = append(out, concatNodeSets([]*forest.NodeSet{ns}, tail))
			}
		}
	case stateFollowup:
		for _, ns := range r.forwardMatchesAny(chart, start, r.FollowupCategories) {
			out = append(out, []*forest.NodeSet{ns})
		}
	}

	return out
}

func (r *ConjunctionRule) iterBackwardHalves(chart ChartView, automState, end int) [][]*forest.NodeSet {
	var out [][]*forest.NodeSet

	switch automState {
	case stateLeadup:
		for _, ns := range r.backwardMatchesAny(chart, end, r.LeadupCategories) {
			if r.Compound {
				for _, tail := range r.iterBackwardHalves(chart, stateLeadup, ns.Start) {
					out = append(out, concatNodeSets(tail, []*forest.NodeSet{ns}))
				}
			}

			out = append(out, []*forest.NodeSet{ns})
		}
	case stateConjunction:
		for _, ns := range r.backwardMatchesAny(chart, end, r.ConjunctionCategories) {
			for _, tail := range r.iterBackwardHalves(chart, stateLeadup, ns.Start) {
				out = append(out, concatNodeSets(tail, []*forest.NodeSet{ns}))
			}

			if r.Single {
				out = append(out, []*forest.NodeSet{ns})
			}
		}
	}

	return out
}

func concatNodeSets(a, b []*forest.NodeSet) []*forest.NodeSet {
	out := make([]*forest.NodeSet, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)

	return out
}
