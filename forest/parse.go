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

import "github.com/ianlewis/pyramids/token"

// ParseTree is a rooted NodeSet viewed as a tree via its best-scoring
// member at each level (spec §3).
type ParseTree struct {
	Root  *NodeSet
	Arena *Arena
}

// Node returns the tree's top derivation: Root's best member.
func (t ParseTree) Node() *ParseNode {
	return t.Root.Best()
}

// Start and End return the tree's span.
func (t ParseTree) Start() int { return t.Root.Start }
func (t ParseTree) End() int   { return t.Root.End }

// Score reports the rolled-up score and confidence of the tree's best
// derivation.
func (t ParseTree) Score() (score, weight float64) {
	n := t.Node()
	if n == nil {
		return 0, 0
	}

	return n.Score(), n.Weight()
}

// Parse is an immutable snapshot of a parser's forest: the token
// sequence plus every top-level ParseTree (spec §3): NodeSets that have
// not been consumed as a component of any larger node at snapshot time.
type Parse struct {
	Tokens token.Sequence
	Trees  []ParseTree
	Arena  *Arena

	// TimedOut reports whether the driver that produced this Parse
	// stopped because its deadline expired rather than because the
	// queue was exhausted (spec §5, §7).
	TimedOut bool
}

// TotalGapSize returns N minus the number of tokens covered by Trees,
// counting overlaps only once — callers constructing a Parse from
// pairwise non-overlapping trees (a disambiguation, spec §4.10) can rely
// on a simpler sum; this generalized version is safe for arbitrary
// (possibly overlapping) snapshots too.
func (p Parse) TotalGapSize() int {
	n := p.Tokens.Len()
	covered := make([]bool, n)

	for _, tr := range p.Trees {
		for i := tr.Start(); i < tr.End(); i++ {
			covered[i] = true
		}
	}

	gaps := 0

	for _, c := range covered {
		if !c {
			gaps++
		}
	}

	return gaps
}
