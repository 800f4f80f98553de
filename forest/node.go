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

// Package forest implements the shared parse forest (spec.md §3, §9):
// arena-allocated ParseNodes grouped into NodeSets by (start, category,
// end), with weak upward parent links used only for score propagation.
//
// The arena/handle shape follows spec §9's redesign note directly, and
// the or-node/and-node split between NodeSet (alternatives) and ParseNode
// (a single derivation) is grounded on the SymbolNode/rhsNode split in
// npillmayer/gorgo's lr/sppf package (a shared packed parse forest for an
// Earley parser, retrieved as reference material): gorgo keys SymbolNode
// by (grammar symbol, span); we key NodeSet by (start, Category, end)
// since our categories carry property sets rather than being atomic
// grammar symbols (spec §4.1).
package forest

import (
	"strconv"
	"strings"

	"github.com/ianlewis/pyramids/category"
	"github.com/ianlewis/pyramids/scoring"
)

// RuleRef is the minimal view a ParseNode needs of the rule that
// produced it. rules.Rule implementations satisfy this without forest
// importing the rules package, avoiding an import cycle (rules needs to
// build ParseNodes/NodeSets when its branch rules fire).
type RuleRef interface {
	// String returns the rule's identity string, used both for display
	// and as the scoring-table persistence key (spec §6).
	String() string

	// Table returns the rule's scoring table.
	Table() *scoring.Table

	// FeatureKeys returns the feature keys node emits for scoring,
	// computed according to whether the owning rule is a leaf or branch
	// variant (spec §4.9).
	FeatureKeys(node *ParseNode) []scoring.FeatureKey
}

// Handle is an arena-local reference to a ParseNode or NodeSet. The zero
// Handle never refers to a real node (arenas start indexing at 1).
type Handle int

// ParseNode is a single derivation: the application of one rule, rooted
// at HeadIndex among Components, producing Category over [Start, End).
// Invariants (spec §3): End = Start+1 for leaves; for branches,
// Components are contiguous and Start/End are derived from the first and
// last component.
type ParseNode struct {
	handle     Handle
	arena      *Arena
	Rule       RuleRef
	HeadIndex  int
	Category   category.Category
	Start, End int
	Components []Handle // NodeSet handles, empty for leaves
	Spelling   string   // leaf surface form, empty for branches

	// parents are weak back-references to owning NodeSets, used only to
	// propagate score recalculation upward (spec §3, §4.9).
	parents []Handle

	// cached score/weight, recomputed by forest's scoring rollup.
	totalScore  float64
	totalWeight float64
	depth       float64
}

// Handle returns n's arena handle.
func (n *ParseNode) Handle() Handle { return n.handle }

// NodeSet returns the equivalence class n belongs to: the NodeSet at
// n's own (start, category, end). The scheduler uses this to register a
// popped node's owning set into the chart (spec §4.7's process_node step
// 2).
func (n *ParseNode) NodeSet() *NodeSet {
	ns, ok := n.arena.FindNodeSet(n.Start, n.Category, n.End)
	if !ok {
		return nil
	}

	return ns
}

// HeadComponent returns the NodeSet at n's head position, or nil for a
// leaf node (no components).
func (n *ParseNode) HeadComponent() *NodeSet {
	if len(n.Components) == 0 {
		return nil
	}

	return n.arena.NodeSet(n.Components[n.HeadIndex])
}

// Component returns the NodeSet at position i.
func (n *ParseNode) Component(i int) *NodeSet {
	return n.arena.NodeSet(n.Components[i])
}

// IsLeaf reports whether n is a leaf derivation (no components).
func (n *ParseNode) IsLeaf() bool {
	return len(n.Components) == 0
}

// HeadToken returns the spelling of the leaf at the bottom of n's head
// chain: n itself if n is a leaf, else the head token of its head
// component's best derivation. Branch rules use this to emit the
// "head spelling" scoring feature (spec §4.9).
func (n *ParseNode) HeadToken() string {
	if n.IsLeaf() {
		return n.Spelling
	}

	head := n.HeadComponent().Best()
	if head == nil {
		return ""
	}

	return head.HeadToken()
}

// equivKey mirrors spec §3's node equality: value-equal by (rule,
// head_index, category, start, end, components). Used to dedup within a
// NodeSet (chart dedup property, spec §8).
func (n *ParseNode) equivKey() nodeKey {
	comps := make([]Handle, len(n.Components))
	copy(comps, n.Components)

	return nodeKey{
		rule:      n.Rule.String(),
		headIndex: n.HeadIndex,
		category:  n.Category.String(),
		start:     n.Start,
		end:       n.End,
		comps:     handleSliceKey(comps),
	}
}

type nodeKey struct {
	rule      string
	headIndex int
	category  string
	start, end int
	comps     string
}

func handleSliceKey(hs []Handle) string {
	parts := make([]string, len(hs))
	for i, h := range hs {
		parts[i] = strconv.Itoa(int(h))
	}

	return strings.Join(parts, ",")
}
