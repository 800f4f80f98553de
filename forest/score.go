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

import "math"

// Score implements spec §4.9's reported node score: total_score /
// log2(1 + depth).
func (n *ParseNode) Score() float64 {
	if n.depth <= 0 {
		return n.totalScore
	}

	return n.totalScore / math.Log2(1+n.depth)
}

// Weight returns n's accumulated confidence (total_weight).
func (n *ParseNode) Weight() float64 {
	return n.totalWeight
}

// Depth returns n's weight-weighted derivation depth, per spec §4.9.
func (n *ParseNode) Depth() float64 {
	return n.depth
}

// rescoreNode recomputes h's totalScore/totalWeight/depth per spec §4.9's
// node-level aggregation: for a leaf, depth=1 and weight is the rule's
// own weight sum; for a branch, score/weight accumulate across the best
// member of each component, and depth is the weight-weighted average of
// the components' best depths, plus one.
func rescoreNode(a *Arena, h Handle) {
	node := a.Node(h)

	ruleScore, ruleWeight := node.Rule.Table().CalculateWeighted(node.Rule.FeatureKeys(node))

	if node.IsLeaf() {
		node.totalScore = ruleScore
		node.totalWeight = ruleWeight
		node.depth = 1

		return
	}

	totalScore := ruleScore
	totalWeight := ruleWeight

	var weightedDepth float64

	for _, ch := range node.Components {
		best := a.NodeSet(ch).Best()
		if best == nil {
			continue
		}

		totalScore += best.totalScore
		totalWeight += best.totalWeight
		weightedDepth += best.depth * best.totalWeight
	}

	node.totalScore = totalScore
	node.totalWeight = totalWeight

	if totalWeight > 0 {
		node.depth = weightedDepth/totalWeight + 1
	} else {
		node.depth = 1
	}
}

// betterScore reports whether a should replace b as a NodeSet's best
// member.
func betterScore(a, b *ParseNode) bool {
	return a.Score() > b.Score()
}

// recomputeBest re-selects ns's best member by Score(), after one or
// more members' scores have changed.
func recomputeBest(ns *NodeSet) {
	var (
		bestH     Handle
		bestScore float64
		has       bool
	)

	for _, m := range ns.members {
		node := ns.arena.Node(m)

		if !has || node.Score() > bestScore {
			bestH = m
			bestScore = node.Score()
			has = true
		}
	}

	ns.best = bestH
}

// AdjustScore implements spec §4.9's adjust_score, entered at node h:
// update h's rule's table toward target for every feature h emits (and
// the default), recursively update each component's currently-best
// member's rule along the best-scoring path, then propagate the
// recomputed score upward through every ancestor NodeSet/ParseNode,
// updating "best" pointers as they change.
func AdjustScore(a *Arena, h Handle, target float64) error {
	node := a.Node(h)

	if err := node.Rule.Table().Adjust(node.Rule.String(), node.Rule.FeatureKeys(node), target); err != nil {
		return err
	}

	for _, ch := range node.Components {
		if best := a.NodeSet(ch).Best(); best != nil {
			if err := AdjustScore(a, best.handle, target); err != nil {
				return err
			}
		}
	}

	rescoreNode(a, h)
	propagateUp(a, h)

	return nil
}

// propagateUp recomputes score/best along every ancestor chain above h.
func propagateUp(a *Arena, h Handle) {
	node := a.Node(h)

	for _, parentSet := range node.parents {
		ns := a.NodeSet(parentSet)
		recomputeBest(ns)

		for _, parentNode := range ns.parents {
			rescoreNode(a, parentNode)
			propagateUp(a, parentNode)
		}
	}
}
