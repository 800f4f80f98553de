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

// Package graph implements spec.md §4.12: extracting a directed labeled
// semantic graph from a disambiguated forest.Parse.
//
// Grounded on original_source/pyramids/graphs.py's ParseGraph/
// ParseGraphBuilder (the graph's own shape: a dense token list plus a
// source->sink->{label} adjacency map and a per-head-token phrase-category
// stack) and original_source/pyramids/trees.py's ParseTreeNode._visit (the
// depth-first, best-first traversal that drives the builder, including its
// need-source redirect and "_of"-suffix inversion rules for link
// endpoints).
package graph

import (
	"sort"
	"strings"

	"github.com/ianlewis/pyramids/category"
	"github.com/ianlewis/pyramids/forest"
	"github.com/ianlewis/pyramids/rules"
	"github.com/ianlewis/pyramids/token"
)

// Token is one node of a ParseGraph: a leaf of the parse tree that
// produced it, carrying both its dense graph position and its original
// token-sequence index.
type Token struct {
	Index      int
	Spelling   string
	Category   category.Category
	Start, End int
}

// PhraseEntry records one phrase that closed with a given token as its
// head: the phrase's result category, and the (source, sink) link pairs
// recorded while the phrase was open. Entry 0 for any token is always its
// own leaf category with no links — the base of the stack.
type PhraseEntry struct {
	Category category.Category
	Links    [][2]int
}

// ParseGraph is spec §4.12's output: a directed, labeled, potentially
// cyclic graph over token positions with one designated root (spec §6:
// "root index, token list, adjacency map source -> sink -> {label}, and
// per-phrase categories").
type ParseGraph struct {
	Root         int
	Tokens       []Token
	links        []map[int]map[string]bool
	reverseLinks []map[int]map[string]bool
	phrases      [][]PhraseEntry
}

// RootCategory returns the outermost phrase category recorded for the
// root token — the category of the sentence as a whole.
func (g ParseGraph) RootCategory() category.Category {
	stack := g.phrases[g.Root]

	return stack[len(stack)-1].Category
}

// GetSinks returns every token index that source has an outgoing link to.
func (g ParseGraph) GetSinks(source int) []int {
	out := make([]int, 0, len(g.links[source]))
	for sink := range g.links[source] {
		out = append(out, sink)
	}

	sort.Ints(out)

	return out
}

// GetSources returns every token index that has an outgoing link to sink.
func (g ParseGraph) GetSources(sink int) []int {
	out := make([]int, 0, len(g.reverseLinks[sink]))
	for source := range g.reverseLinks[sink] {
		out = append(out, source)
	}

	sort.Ints(out)

	return out
}

// GetLabels returns the labels on the link from source to sink, if any.
func (g ParseGraph) GetLabels(source, sink int) []string {
	labels := g.links[source][sink]
	if len(labels) == 0 {
		return nil
	}

	out := make([]string, 0, len(labels))
	for l := range labels {
		out = append(out, l)
	}

	sort.Strings(out)

	return out
}

// GetPhraseTokens returns every token reachable from head by following
// outgoing links, including head itself, ordered by index — the token
// span governed by the phrase headed at head.
func (g ParseGraph) GetPhraseTokens(head int) []Token {
	seen := map[int]bool{}
	g.collectPhraseTokens(head, seen)

	indices := make([]int, 0, len(seen))
	for idx := range seen {
		indices = append(indices, idx)
	}

	sort.Ints(indices)

	out := make([]Token, len(indices))
	for i, idx := range indices {
		out[i] = g.Tokens[idx]
	}

	return out
}

func (g ParseGraph) collectPhraseTokens(head int, seen map[int]bool) {
	if seen[head] {
		return
	}

	seen[head] = true

	for _, sink := range g.GetSinks(head) {
		g.collectPhraseTokens(sink, seen)
	}
}

// builder accumulates a single ParseGraph while a tree is visited,
// mirroring ParseGraphBuilder's running state.
type builder struct {
	root     int
	haveRoot bool

	tokens   []Token
	links    []map[int]map[string]bool
	phrases  [][]PhraseEntry
	indexMap map[int]int

	stack []phraseFrame
}

type phraseFrame struct {
	headExternal int
	category     category.Category
	links        [][2]int
}

func newBuilder() *builder {
	return &builder{indexMap: map[int]int{}}
}

func (b *builder) handleRoot() {
	b.root = len(b.tokens)
	b.haveRoot = true
}

func (b *builder) handleToken(spelling string, cat category.Category, externalIndex, start, end int) int {
	if idx, ok := b.indexMap[externalIndex]; ok {
		return idx
	}

	idx := len(b.tokens)
	b.indexMap[externalIndex] = idx
	b.tokens = append(b.tokens, Token{Index: externalIndex, Spelling: spelling, Category: cat, Start: start, End: end})
	b.links = append(b.links, map[int]map[string]bool{})
	b.phrases = append(b.phrases, []PhraseEntry{{Category: cat}})

	return idx
}

func (b *builder) handleLink(sourceIdx, sinkIdx int, label string) {
	if b.links[sourceIdx][sinkIdx] == nil {
		b.links[sourceIdx][sinkIdx] = map[string]bool{}
	}

	b.links[sourceIdx][sinkIdx][label] = true

	if len(b.stack) > 0 {
		top := &b.stack[len(b.stack)-1]
		top.links = append(top.links, [2]int{sourceIdx, sinkIdx})
	}
}

func (b *builder) handlePhraseStart(cat category.Category, headExternal int) {
	b.stack = append(b.stack, phraseFrame{headExternal: headExternal, category: cat})
}

func (b *builder) handlePhraseEnd() {
	n := len(b.stack)
	frame := b.stack[n-1]
	b.stack = b.stack[:n-1]

	headIdx := b.indexMap[frame.headExternal]
	b.phrases[headIdx] = append(b.phrases[headIdx], PhraseEntry{Category: frame.category, Links: frame.links})
}

func (b *builder) finish() ParseGraph {
	n := len(b.tokens)

	reverse := make([]map[int]map[string]bool, n)
	for i := range reverse {
		reverse[i] = map[int]map[string]bool{}
	}

	for source, sinks := range b.links {
		for sink, labels := range sinks {
			reverse[sink][source] = labels
		}
	}

	g := ParseGraph{
		Root:         b.root,
		Tokens:       append([]Token(nil), b.tokens...),
		links:        append([]map[int]map[string]bool(nil), b.links...),
		reverseLinks: reverse,
		phrases:      append([][]PhraseEntry(nil), b.phrases...),
	}

	*b = *newBuilder()

	return g
}

// Extract implements spec §4.12: for each tree in p (assumed pairwise
// non-overlapping, i.e. already run through disambiguate.Disambiguate or
// Enumerate), traverse it depth-first, best-first and return the
// resulting ParseGraph. Trees are visited in the same order trees.py's
// Parse.visit does: by (start ascending, end descending, score
// descending, weight descending), so ties resolve deterministically.
func Extract(p forest.Parse) []ParseGraph {
	trees := append([]forest.ParseTree(nil), p.Trees...)
	sortTreesForVisit(trees)

	graphs := make([]ParseGraph, 0, len(trees))

	for _, t := range trees {
		b := newBuilder()
		visitNode(b, p.Tokens, t.Node(), true)
		graphs = append(graphs, b.finish())
	}

	return graphs
}

func sortTreesForVisit(trees []forest.ParseTree) {
	sort.Slice(trees, func(i, j int) bool {
		a, b := trees[i], trees[j]
		if a.Start() != b.Start() {
			return a.Start() < b.Start()
		}

		if a.End() != b.End() {
			return a.End() > b.End()
		}

		as, aw := a.Score()
		bs, bw := b.Score()

		if as != bs {
			return as > bs
		}

		return aw > bw
	})
}

// visitNode mirrors ParseTreeNode._visit: it drives b with this node's
// leaves/phrases and returns the set of token indices (per need-source
// property name) whose need is still unsatisfied once n is fully
// visited, for the enclosing phrase to pick up.
func visitNode(b *builder, tokens token.Sequence, n *forest.ParseNode, isRoot bool) map[string][]int {
	if n.IsLeaf() {
		if isRoot {
			b.handleRoot()
		}

		tok := tokens.At(n.Start)
		idx := b.handleToken(n.Spelling, n.Category, n.Start, tok.Start, tok.End)

		needSources := map[string][]int{}

		for _, prop := range sortedPositive(n.Category) {
			if name, ok := needName(prop); ok {
				needSources[name] = []int{idx}
			}
		}

		return needSources
	}

	headComp := n.Component(n.HeadIndex).Best()
	headStart := headTokenIndex(headComp)

	b.handlePhraseStart(n.Category, headStart)

	nodes := make([]int, len(n.Components))
	needSources := map[string][]int{}

	var headNeedSources map[string][]int

	for i := range n.Components {
		comp := n.Component(i).Best()

		childNeed := visitNode(b, tokens, comp, isRoot && i == n.HeadIndex)

		nodes[i] = b.indexMap[headTokenIndex(comp)]

		for name, idxs := range childNeed {
			needSources[name] = append(needSources[name], idxs...)
		}

		if i == n.HeadIndex {
			headNeedSources = childNeed
		}
	}

	headIdx := b.indexMap[headStart]

	for gap := 0; gap < len(n.Components)-1; gap++ {
		var leftSide, rightSide int
		if gap < n.HeadIndex {
			leftSide, rightSide = nodes[gap], headIdx
		} else {
			leftSide, rightSide = headIdx, nodes[gap+1]
		}

		for _, lt := range linkTypesFor(n.Rule, gap) {
			lower := strings.ToLower(lt.Label)

			if lt.LeftArrow {
				emitLink(b, needSources, headNeedSources, lower, lt.Label, leftSide, rightSide, true)
			}

			if lt.RightArrow {
				emitLink(b, needSources, headNeedSources, lower, lt.Label, leftSide, rightSide, false)
			}
		}
	}

	b.handlePhraseEnd()

	parentNeed := map[string][]int{}

	for _, prop := range sortedPositive(n.Category) {
		name, ok := needName(prop)
		if !ok {
			continue
		}

		if idxs, ok := needSources[name]; ok {
			parentNeed[name] = idxs
		} else {
			parentNeed[name] = []int{headIdx}
		}
	}

	return parentNeed
}

// emitLink ports the four-way branch in trees.py's _visit link loop: a
// need-source redirect when the head itself declared the need, an
// inverted redirect for "_of"-suffixed labels, and a direct link
// otherwise. forLeft selects whether this call is resolving the link's
// left-arrow or right-arrow side (the two sides differ in which of
// leftSide/rightSide plays source vs. sink in the direct case).
func emitLink(
	b *builder,
	needSources, headNeedSources map[string][]int,
	lowerLabel, label string,
	leftSide, rightSide int,
	forLeft bool,
) {
	if _, ok := headNeedSources[lowerLabel]; ok {
		for _, src := range needSources[lowerLabel] {
			if forLeft {
				b.handleLink(src, leftSide, label)
			} else {
				b.handleLink(src, rightSide, label)
			}
		}

		return
	}

	if base, ok := strings.CutSuffix(lowerLabel, "_of"); ok {
		if _, ok := headNeedSources[base]; ok {
			for _, dst := range needSources[base] {
				if forLeft {
					b.handleLink(leftSide, dst, label)
				} else {
					b.handleLink(rightSide, dst, label)
				}
			}

			return
		}
	}

	if forLeft {
		b.handleLink(rightSide, leftSide, label)
	} else {
		b.handleLink(leftSide, rightSide, label)
	}
}

// headTokenIndex descends a node's head-component chain down to its
// leaf, returning that leaf's token-sequence position — mirroring
// ParseNode.HeadToken but returning the index instead of the spelling.
func headTokenIndex(n *forest.ParseNode) int {
	if n.IsLeaf() {
		return n.Start
	}

	return headTokenIndex(n.HeadComponent().Best())
}

// linkTypesFor returns r's per-gap link types at the given gap index, or
// nil if r isn't a branch rule (leaves never reach this call: a leaf node
// has no components, so the gap loop above never runs for one).
func linkTypesFor(r forest.RuleRef, gap int) []rules.LinkType {
	br, ok := r.(rules.BranchRule)
	if !ok {
		return nil
	}

	return br.LinkTypes(gap)
}

// needName reports whether prop is a "needs_X" or "takes_X" property and,
// if so, returns X.
func needName(prop string) (string, bool) {
	switch {
	case strings.HasPrefix(prop, "needs_"):
		return prop[len("needs_"):], true
	case strings.HasPrefix(prop, "takes_"):
		return prop[len("takes_"):], true
	default:
		return "", false
	}
}

func sortedPositive(c category.Category) []string {
	out := make([]string, 0, len(c.Positive))
	for p := range c.Positive {
		out = append(out, p)
	}

	sort.Strings(out)

	return out
}
