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

package forest

import "github.com/ianlewis/pyramids/category"

// Arena owns every ParseNode and NodeSet created during a single parse.
// Nodes are addressed by Handle, never by pointer, so the whole forest
// can be freed by discarding the Arena (spec §9's "a single arena per
// ParserState bounds lifetime cleanly"). An Arena is not safe for
// concurrent use; one ParserState owns one Arena (spec §5).
type Arena struct {
	nodes    []*ParseNode
	nodeSets []*NodeSet

	// index is keyed by (start, name, category string, end) to find an
	// existing NodeSet in O(1), mirroring the chart's own indexing
	// (spec §4.4) at the forest level so NodeSet identity stays unique
	// across the whole arena regardless of which chart bucket looked it
	// up from.
	index map[nodeSetKey]Handle
}

type nodeSetKey struct {
	start, end int
	name       string
	catKey     string
}

// NewArena returns an empty Arena. Handle 0 is reserved as "no node".
func NewArena() *Arena {
	return &Arena{
		nodes:    make([]*ParseNode, 1),
		nodeSets: make([]*NodeSet, 1),
		index:    make(map[nodeSetKey]Handle),
	}
}

// Node dereferences a ParseNode handle.
func (a *Arena) Node(h Handle) *ParseNode {
	return a.nodes[h]
}

// NodeSet dereferences a NodeSet handle.
func (a *Arena) NodeSet(h Handle) *NodeSet {
	return a.nodeSets[h]
}

// FindNodeSet returns the existing NodeSet at (start, cat, end), if any.
func (a *Arena) FindNodeSet(start int, cat category.Category, end int) (*NodeSet, bool) {
	h, ok := a.index[nodeSetKey{start: start, end: end, name: cat.Name, catKey: cat.Key()}]
	if !ok {
		return nil, false
	}

	return a.nodeSets[h], true
}

// nodeSetFor returns the NodeSet at (start, cat, end), creating it if
// absent.
func (a *Arena) nodeSetFor(start int, cat category.Category, end int) *NodeSet {
	if ns, ok := a.FindNodeSet(start, cat, end); ok {
		return ns
	}

	h := Handle(len(a.nodeSets))
	ns := &NodeSet{handle: h, arena: a, Start: start, End: end, Category: cat}
	a.nodeSets = append(a.nodeSets, ns)
	a.index[nodeSetKey{start: start, end: end, name: cat.Name, catKey: cat.Key()}] = h

	return ns
}

// AddResult reports the outcome of Arena.Add.
type AddResult struct {
	NodeSet   *NodeSet
	Node      *ParseNode
	Created   bool // a brand-new NodeSet was created
	NewMember bool // a genuinely new member joined an existing NodeSet
}

// Added reports whether Add produced any observable change (spec §4.4's
// add(node) -> bool: "true iff a new NodeSet was created or a genuinely
// new member joined").
func (r AddResult) Added() bool {
	return r.Created || r.NewMember
}

// Add constructs a ParseNode from the given fields, inserts it into the
// NodeSet at (start, category, end) (creating the set if needed), and
// reports whether anything new was added.
func (a *Arena) Add(rule RuleRef, headIndex int, cat category.Category, start, end int, components []Handle, spelling string) AddResult {
	ns := a.nodeSetFor(start, cat, end)
	created := len(ns.members) == 0

	h := Handle(len(a.nodes))
	node := &ParseNode{
		handle:     h,
		arena:      a,
		Rule:       rule,
		HeadIndex:  headIndex,
		Category:   cat,
		Start:      start,
		End:        end,
		Components: append([]Handle(nil), components...),
		Spelling:   spelling,
	}
	a.nodes = append(a.nodes, node)

	newMember := ns.addMember(h)
	if !newMember {
		// Duplicate: the just-allocated node joined nothing, so drop it
		// from the arena, releasing its handle for the next Add.
		a.nodes = a.nodes[:h]

		return AddResult{NodeSet: ns, Created: false, NewMember: false}
	}

	for _, c := range components {
		a.nodeSets[c].parents = append(a.nodeSets[c].parents, h)
	}

	rescoreNode(a, h)

	return AddResult{NodeSet: ns, Node: node, Created: created, NewMember: true}
}
