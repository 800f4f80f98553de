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

// Package generation implements spec.md §4.11: given a semantic graph,
// produce candidate surface trees whose own graph extraction (package
// graph) would yield it back.
//
// Grounded on original_source/pyramids/generation.py's
// GenerationAlgorithm._generate/get_component_candidates: per graph node,
// recursively generate subtrees for every node it links to, seed leaf
// candidates from the model's leaf rules, then repeatedly combine
// candidates via sequence rules until no new tree is produced, triaging
// every combination into results (covers the node's graph neighborhood
// and, at the root, fits the graph's root category), backups (covers the
// neighborhood but doesn't fit the root category), or emergency (anything
// at all).
//
// Only *rules.SequenceRule branch rules participate in combination.
// original_source/pyramids/model.py's Model._rules_by_link_type is built
// "only for SequenceRules, not ConjunctionRules" (its own comment), and
// original_source/pyramids/generation.py's get_component_candidates has a
// standing TODO recording that the ConjunctionRule path raises
// AttributeError (no link_type_sets attribute) before it can ever run --
// conjunction-driven generation is a gap in the algorithm this package is
// ported from, not something this port can route around without inventing
// semantics the original never had.
package generation

import (
	"strconv"
	"strings"

	"github.com/ianlewis/pyramids/category"
	"github.com/ianlewis/pyramids/graph"
	"github.com/ianlewis/pyramids/model"
	"github.com/ianlewis/pyramids/rules"
)

// Tree is one candidate surface tree: a leaf (Components == nil) or a
// sequence-rule application over its components, headed at a graph node.
// Mirrors original_source/pyramids/trees.py's BuildTreeNode.
type Tree struct {
	Rule         rules.Rule
	Category     category.Category
	HeadSpelling string
	HeadIndex    int
	Components   []Tree
}

// IsLeaf reports whether t is a leaf tree.
func (t Tree) IsLeaf() bool {
	return t.Components == nil
}

// Key returns a value that is equal for two Trees iff BuildTreeNode's
// __eq__/__hash__ would consider them equal: same rule, category, head,
// and components in order.
func (t Tree) Key() string {
	var b strings.Builder

	b.WriteString(t.Rule.String())
	b.WriteByte('|')
	b.WriteString(t.Category.String())
	b.WriteByte('|')
	b.WriteString(t.HeadSpelling)
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(t.HeadIndex))

	for _, c := range t.Components {
		b.WriteByte('|')
		b.WriteString(c.Key())
	}

	return b.String()
}

// NodeCoverage returns the set of graph node indices spanned by t: just
// HeadIndex for a leaf, the union of every component's coverage for a
// branch.
func (t Tree) NodeCoverage() map[int]bool {
	if t.IsLeaf() {
		return map[int]bool{t.HeadIndex: true}
	}

	cov := map[int]bool{}

	for _, c := range t.Components {
		for idx := range c.NodeCoverage() {
			cov[idx] = true
		}
	}

	return cov
}

// Generate implements spec §4.11 for the whole graph: the candidate
// surface trees for g's root node.
func Generate(m *model.Model, g graph.ParseGraph) []Tree {
	slt := sequenceLinkTypes(m)

	return generateNode(m, g, slt, g.Root)
}

// generateNode is GenerationAlgorithm._generate: generate subtrees for
// every node head links to, seed head's own leaf candidates, then grow
// them by sequence-rule combination until nothing new appears.
func generateNode(m *model.Model, g graph.ParseGraph, slt map[string]bool, head int) []Tree {
	headSpelling := g.Tokens[head].Spelling
	headCategory := g.Tokens[head].Category

	subnodes := g.GetSinks(head)

	subtrees := map[int][]Tree{}
	for _, sink := range subnodes {
		subtrees[sink] = generateNode(m, g, slt, sink)
	}

	headLeaves := leafCandidates(m, headSpelling, headCategory, head)
	subtrees[head] = headLeaves

	var results, backups, emergency []Tree

	resultsSeen := map[string]bool{}
	backupSeen := map[string]bool{}
	emergencySeen := map[string]bool{}

	addResult := func(t Tree) {
		k := t.Key()
		if !resultsSeen[k] {
			resultsSeen[k] = true
			results = append(results, t)
		}
	}

	addBackup := func(t Tree) {
		k := t.Key()
		if !backupSeen[k] {
			backupSeen[k] = true
			backups = append(backups, t)
		}
	}

	addEmergency := func(t Tree) {
		k := t.Key()
		if !emergencySeen[k] {
			emergencySeen[k] = true
			emergency = append(emergency, t)
		}
	}

	if len(subnodes) == 0 {
		if head == g.Root {
			for _, t := range headLeaves {
				if category.Subsumes(g.RootCategory(), t.Category) {
					addResult(t)
				} else {
					addBackup(t)
				}
			}
		} else {
			for _, t := range headLeaves {
				addResult(t)
			}
		}
	}

	queueSeen := map[string]bool{}
	queue := make([]Tree, 0, len(headLeaves))

	for _, t := range headLeaves {
		queue = append(queue, t)
		queueSeen[t.Key()] = true
	}

	for len(queue) > 0 {
		headTree := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		for _, newTree := range combine(m, g, slt, head, headCategory, subnodes, subtrees, headTree) {
			k := newTree.Key()
			if resultsSeen[k] {
				continue
			}

			coverage := newTree.NodeCoverage()
			if coversAll(coverage, subnodes) {
				if newTree.HeadIndex != g.Root || category.Subsumes(g.RootCategory(), newTree.Category) {
					addResult(newTree)
				} else {
					addBackup(newTree)
				}
			}

			addEmergency(newTree)

			if !queueSeen[k] {
				queueSeen[k] = true
				queue = append(queue, newTree)
			}
		}
	}

	switch {
	case len(results) > 0:
		return results
	case len(backups) > 0:
		return backups
	default:
		return emergency
	}
}

// leafCandidates returns the primary leaf-rule matches for spelling whose
// (case-promoted, property-inheritance-extended) category is subsumed by
// nodeCategory, falling back to secondary leaf rules if no primary rule
// matches (spec §4.3's primary/secondary split, §4.11's leaf seeding).
func leafCandidates(m *model.Model, spelling string, nodeCategory category.Category, headIndex int) []Tree {
	if out := leafCandidatesFrom(m, m.PrimaryLeafRules, spelling, nodeCategory, headIndex); len(out) > 0 {
		return out
	}

	return leafCandidatesFrom(m, m.SecondaryLeafRules, spelling, nodeCategory, headIndex)
}

func leafCandidatesFrom(
	m *model.Model,
	leafRules []rules.LeafRule,
	spelling string,
	nodeCategory category.Category,
	headIndex int,
) []Tree {
	positive, negative := rules.DiscoverCaseProperties(spelling)

	var out []Tree

	for _, lr := range leafRules {
		if !lr.Matches(spelling) {
			continue
		}

		cat := category.Promote(lr.Category(), positive, negative)
		cat = m.Extend(cat)

		if !category.Subsumes(nodeCategory, cat) {
			continue
		}

		out = append(out, Tree{Rule: lr, Category: cat, HeadSpelling: spelling, HeadIndex: headIndex})
	}

	return out
}

// combine is GenerationAlgorithm._generate's per-rule body: for every
// sequence rule whose head subcategory set admits headTree, gather
// component candidates for every other gap and emit one new Tree per
// admissible combination.
func combine(
	m *model.Model,
	g graph.ParseGraph,
	slt map[string]bool,
	head int,
	headCategory category.Category,
	subnodes []int,
	subtrees map[int][]Tree,
	headTree Tree,
) []Tree {
	var out []Tree

	for _, r := range m.BranchRules {
		seq, ok := r.(*rules.SequenceRule)
		if !ok {
			continue
		}

		if !headFits(seq, headTree.Category) {
			continue
		}

		possible := make([][]Tree, len(seq.LinkTypeSets))

		ok = true

		for gap := range seq.LinkTypeSets {
			incoming, outgoing := gapRequirements(seq, gap)

			candidates := componentCandidates(g, slt, headCategory, head, gap, incoming, outgoing, seq, subnodes, subtrees)
			if len(candidates) == 0 {
				ok = false

				break
			}

			possible[gap] = candidates
		}

		if !ok {
			continue
		}

		full := make([][]Tree, 0, len(possible)+1)
		full = append(full, possible[:seq.HeadIndex]...)
		full = append(full, []Tree{headTree})
		full = append(full, possible[seq.HeadIndex:]...)

		for _, combo := range cartesianProduct(full) {
			if overlapsCoverage(combo) {
				continue
			}

			cats := make([]category.Category, len(combo))
			for i, c := range combo {
				cats[i] = c.Category
			}

			derived := seq.GetCategory(m, cats)

			if !seq.IsNonRecursive(derived, headTree.Category) {
				continue
			}

			out = append(out, Tree{
				Rule:         seq,
				Category:     derived,
				HeadSpelling: headTree.HeadSpelling,
				HeadIndex:    headTree.HeadIndex,
				Components:   combo,
			})
		}
	}

	return out
}

func headFits(seq *rules.SequenceRule, cat category.Category) bool {
	for _, sub := range seq.SubcategorySets[seq.HeadIndex] {
		if category.Subsumes(sub, cat) {
			return true
		}
	}

	return false
}

// gapRequirements computes the incoming/outgoing link-type labels
// required at gap, derived from seq.LinkTypeSets[gap] and the gap's
// position relative to seq.HeadIndex exactly as graph.Extract's own
// per-gap loop does, so a link type required here is satisfied by exactly
// the link graph.Extract would have produced.
func gapRequirements(seq *rules.SequenceRule, gap int) (incoming, outgoing map[string]bool) {
	incoming = map[string]bool{}
	outgoing = map[string]bool{}

	for _, lt := range seq.LinkTypeSets[gap] {
		before := gap < seq.HeadIndex

		if (lt.RightArrow && before) || (lt.LeftArrow && !before) {
			incoming[lt.Label] = true
		}

		if (lt.LeftArrow && before) || (lt.RightArrow && !before) {
			outgoing[lt.Label] = true
		}
	}

	return incoming, outgoing
}

// componentCandidates is get_component_candidates' SequenceRule branch:
// narrow subnodes down to those satisfying every required incoming/
// outgoing link type at head, then collect every subtree at a surviving
// candidate whose category is subsumed by one of seq's subcategory-set
// entries at the gap's resolved position.
func componentCandidates(
	g graph.ParseGraph,
	slt map[string]bool,
	headCategory category.Category,
	head, gap int,
	incoming, outgoing map[string]bool,
	seq *rules.SequenceRule,
	subnodes []int,
	subtrees map[int][]Tree,
) []Tree {
	candidateSet := map[int]bool{}
	for _, n := range subnodes {
		candidateSet[n] = true
	}

	for label := range incoming {
		if !slt[label] {
			continue
		}

		allowed := map[int]bool{}

		for _, src := range g.GetSources(head) {
			if hasLabel(g.GetLabels(src, head), label) {
				allowed[src] = true
			}
		}

		candidateSet = intersectSets(candidateSet, allowed)
		if len(candidateSet) == 0 {
			return nil
		}
	}

	for label := range outgoing {
		if !slt[label] {
			continue
		}

		allowed := map[int]bool{}

		for _, sink := range g.GetSinks(head) {
			if hasLabel(g.GetLabels(head, sink), label) {
				allowed[sink] = true
			}
		}

		candidateSet = intersectSets(candidateSet, allowed)
		if len(candidateSet) == 0 {
			return nil
		}
	}

	catIndex := gap
	if gap >= seq.HeadIndex {
		catIndex++
	}

	var out []Tree

	for candidate := range candidateSet {
		for _, subtree := range subtrees[candidate] {
			for _, want := range seq.SubcategorySets[catIndex] {
				if category.Subsumes(want, subtree.Category) {
					out = append(out, subtree)

					break
				}
			}
		}
	}

	return out
}

func hasLabel(labels []string, label string) bool {
	for _, l := range labels {
		if l == label {
			return true
		}
	}

	return false
}

func intersectSets(a, b map[int]bool) map[int]bool {
	out := map[int]bool{}
	for k := range a {
		if b[k] {
			out[k] = true
		}
	}

	return out
}

func coversAll(coverage map[int]bool, subnodes []int) bool {
	for _, n := range subnodes {
		if !coverage[n] {
			return false
		}
	}

	return true
}

func overlapsCoverage(combo []Tree) bool {
	covered := map[int]bool{}

	for _, c := range combo {
		for idx := range c.NodeCoverage() {
			if covered[idx] {
				return true
			}

			covered[idx] = true
		}
	}

	return false
}

// cartesianProduct returns every combination obtained by picking exactly
// one element from each list in lists, in list order.
func cartesianProduct(lists [][]Tree) [][]Tree {
	if len(lists) == 0 {
		return [][]Tree{{}}
	}

	rest := cartesianProduct(lists[1:])

	out := make([][]Tree, 0, len(lists[0])*len(rest))

	for _, item := range lists[0] {
		for _, tail := range rest {
			combo := make([]Tree, 0, 1+len(tail))
			combo = append(combo, item)
			combo = append(combo, tail...)
			out = append(out, combo)
		}
	}

	return out
}

// sequenceLinkTypes is Model._rules_by_link_type's gate, narrowed to a
// plain set of labels: original_source/pyramids/model.py builds its index
// "only for SequenceRules, not ConjunctionRules" (its own comment), and
// get_component_candidates only ever consults it to skip a required link
// type that no sequence rule could have produced in the first place.
func sequenceLinkTypes(m *model.Model) map[string]bool {
	out := map[string]bool{}

	for _, r := range m.BranchRules {
		seq, ok := r.(*rules.SequenceRule)
		if !ok {
			continue
		}

		for _, set := range seq.LinkTypeSets {
			for _, lt := range set {
				out[lt.Label] = true
			}
		}
	}

	return out
}
