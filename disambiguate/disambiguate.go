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

// Package disambiguate implements spec.md §4.10: picking, ranking, and
// enumerating sets of pairwise non-overlapping ParseTrees ("a
// disambiguation") out of an ambiguous forest.Parse.
//
// Grounded on original_source/pyramids/trees.py's Parse.disambiguate
// (greedy) and Parse._iter_disambiguation_tails/iter_disambiguations
// (exhaustive, rank-ordered enumeration).
package disambiguate

import (
	"time"

	"github.com/ianlewis/pyramids/forest"
)

// Rank orders disambiguations lexicographically by (gap size, piece
// count, -score, -weight); smaller is better (spec §4.10).
type Rank struct {
	GapSize int
	Pieces  int
	Score   float64
	Weight  float64
}

// Less reports whether r ranks strictly better than other.
func (r Rank) Less(other Rank) bool {
	if r.GapSize != other.GapSize {
		return r.GapSize < other.GapSize
	}

	if r.Pieces != other.Pieces {
		return r.Pieces < other.Pieces
	}

	if r.Score != other.Score {
		return r.Score > other.Score
	}

	return r.Weight > other.Weight
}

// RankOf computes p's Rank: total_gap_size from p.TotalGapSize, piece
// count from len(p.Trees), and the aggregate score/weight as the sum of
// each tree's rolled-up score divided by the sum of each tree's weight
// (spec §4.9's Parse-level rollup).
func RankOf(p forest.Parse) Rank {
	var totalScore, totalWeight float64

	for _, t := range p.Trees {
		score, weight := t.Score()
		totalScore += score
		totalWeight += weight
	}

	score := 0.0
	if totalWeight > 0 {
		score = totalScore / totalWeight
	}

	return Rank{GapSize: p.TotalGapSize(), Pieces: len(p.Trees), Score: score, Weight: totalWeight}
}

// overlaps reports whether two trees' spans intersect (spec §4.10: "A
// disambiguation is a Parse whose trees are pairwise non-overlapping"),
// mirroring ParseTree.is_ambiguous_with.
func overlaps(a, b forest.ParseTree) bool {
	return (a.Start() <= b.Start() && b.Start() < a.End()) || (b.Start() <= a.Start() && a.Start() < b.End())
}

// Disambiguate implements spec §4.10's greedy, single-result algorithm:
// walk trees in descending score order, keeping each one that does not
// overlap an already-kept tree.
func Disambiguate(p forest.Parse) forest.Parse {
	if len(p.Trees) <= 1 {
		return p
	}

	trees := append([]forest.ParseTree(nil), p.Trees...)

	sortByScoreDesc(trees)

	var kept []forest.ParseTree

	for _, t := range trees {
		conflict := false

		for _, k := range kept {
			if overlaps(t, k) {
				conflict = true

				break
			}
		}

		if !conflict {
			kept = append(kept, t)
		}
	}

	return forest.Parse{Tokens: p.Tokens, Trees: kept, Arena: p.Arena, TimedOut: p.TimedOut}
}

func sortByScoreDesc(trees []forest.ParseTree) {
	// Insertion sort is fine here: the tree counts a single parse
	// realistically produces are small, and this keeps the comparator
	// simple to read.
	for i := 1; i < len(trees); i++ {
		for j := i; j > 0 && lessScore(trees[j-1], trees[j]); j-- {
			trees[j-1], trees[j] = trees[j], trees[j-1]
		}
	}
}

// lessScore reports whether a should sort after b (a has a strictly
// lower score), so a descending sort can reuse it directly.
func lessScore(a, b forest.ParseTree) bool {
	as, _ := a.Score()
	bs, _ := b.Score()

	return as < bs
}

// minDisambiguationSize is floor(N / max_tree_width), the minimum piece
// count any non-overlapping covering sequence could achieve.
func minDisambiguationSize(n, maxTreeWidth int) int {
	if maxTreeWidth <= 0 {
		return 0
	}

	return n / maxTreeWidth
}

func maxTreeWidth(trees []forest.ParseTree) int {
	max := 0
	for _, t := range trees {
		if w := t.End() - t.Start(); w > max {
			max = w
		}
	}

	return max
}

// Enumerate implements spec §4.10's exhaustive enumeration: walk
// increasing (gaps, pieces) pairs starting at
// (p.TotalGapSize(), minDisambiguationSize), yielding every non-
// overlapping covering sequence at the first pair that produces any,
// then stopping. Returns the resulting Parses and whether the walk
// aborted early due to deadline.
func Enumerate(p forest.Parse, deadline time.Time) ([]forest.Parse, bool) {
	n := p.Tokens.Len()
	minGaps := p.TotalGapSize()
	minPieces := minDisambiguationSize(n, maxTreeWidth(p.Trees))

	for gaps := minGaps; gaps <= n; gaps++ {
		for pieces := minPieces; pieces <= n; pieces++ {
			tails, timedOut := iterTails(p.Trees, n, 0, n, gaps, pieces, deadline)
			if timedOut {
				return nil, true
			}

			if len(tails) > 0 {
				out := make([]forest.Parse, len(tails))
				for i, tail := range tails {
					out[i] = forest.Parse{Tokens: p.Tokens, Trees: tail, Arena: p.Arena, TimedOut: p.TimedOut}
				}

				return out, false
			}
		}
	}

	return nil, false
}

// iterTails mirrors _iter_disambiguation_tails: a depth-first walk that
// picks, at each token index, either a tree starting there (consuming a
// piece) or treats the index as a gap (consuming a gap), within the
// [index, maxIndex) window opened by an overlapping-tree resolution one
// level up. n is the total token count the walk terminates against.
func iterTails(
	trees []forest.ParseTree,
	n, index, maxIndex, gaps, pieces int,
	deadline time.Time,
) ([][]forest.ParseTree, bool) {
	if !deadline.IsZero() && !time.Now().Before(deadline) {
		return nil, true
	}

	if index >= n {
		if gaps == 0 && pieces == 0 {
			return [][]forest.ParseTree{{}}, false
		}

		return nil, false
	}

	if index >= maxIndex || pieces <= 0 {
		return nil, false
	}

	var out [][]forest.ParseTree

	nearestEnd := -1

	for _, t := range trees {
		if t.Start() != index {
			continue
		}

		if nearestEnd < 0 || t.End() < nearestEnd {
			nearestEnd = t.End()
		}

		tails, timedOut := iterTails(trees, n, t.End(), maxIndex, gaps, pieces-1, deadline)
		if timedOut {
			return nil, true
		}

		for _, tail := range tails {
			combined := make([]forest.ParseTree, 0, 1+len(tail))
			combined = append(combined, t)
			combined = append(combined, tail...)
			out = append(out, combined)
		}
	}

	if nearestEnd < 0 {
		if gaps > 0 {
			tails, timedOut := iterTails(trees, n, index+1, maxIndex, gaps-1, pieces, deadline)
			if timedOut {
				return nil, true
			}

			out = append(out, tails...)
		}

		return out, false
	}

	for overlapIndex := index + 1; overlapIndex < nearestEnd; overlapIndex++ {
		tails, timedOut := iterTails(trees, n, overlapIndex, nearestEnd, gaps, pieces, deadline)
		if timedOut {
			return nil, true
		}

		out = append(out, tails...)
	}

	return out, false
}
