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

package disambiguate

import (
	"testing"
	"time"

	"github.com/ianlewis/pyramids/category"
	"github.com/ianlewis/pyramids/forest"
	"github.com/ianlewis/pyramids/scoring"
	"github.com/ianlewis/pyramids/token"
)

// fakeRule is a minimal forest.RuleRef for disambiguate-level tests.
type fakeRule struct {
	name  string
	table *scoring.Table
}

func newFakeRule(name string, score float64) *fakeRule {
	r := &fakeRule{name: name, table: scoring.NewTable()}
	r.table.Set(scoring.Default, scoring.Entry{Score: score, Weight: 1, Count: 1})

	return r
}

func (r *fakeRule) String() string        { return r.name }
func (r *fakeRule) Table() *scoring.Table { return r.table }
func (r *fakeRule) FeatureKeys(_ *forest.ParseNode) []scoring.FeatureKey {
	return nil
}

// addTree builds a single-leaf ParseTree over [start, end) scored by
// score, sharing arena a.
func addTree(a *forest.Arena, score float64, start, end int) forest.ParseTree {
	rule := newFakeRule("leaf", score)
	cat := category.New("X", nil, nil)

	res := a.Add(rule, 0, cat, start, end, nil, "tok")

	return forest.ParseTree{Root: res.NodeSet, Arena: a}
}

func tokens(n int) token.Sequence {
	var s token.Sequence
	for i := 0; i < n; i++ {
		s = s.Append(token.Token{Spelling: "w", Start: i, End: i + 1})
	}

	return s
}

func TestDisambiguateGreedyPicksHigherScoreFirst(t *testing.T) {
	t.Parallel()

	a := forest.NewArena()

	low := addTree(a, 0.2, 0, 2)
	high := addTree(a, 0.9, 1, 3)

	p := forest.Parse{Tokens: tokens(3), Trees: []forest.ParseTree{low, high}, Arena: a}

	got := Disambiguate(p)

	if len(got.Trees) != 1 {
		t.Fatalf("len(Trees) = %d, want 1 (low and high overlap)", len(got.Trees))
	}

	if got.Trees[0].Start() != high.Start() || got.Trees[0].End() != high.End() {
		t.Errorf("kept tree = %+v, want the higher-scoring one over [1,3)", got.Trees[0])
	}
}

func TestDisambiguateKeepsNonOverlappingTrees(t *testing.T) {
	t.Parallel()

	a := forest.NewArena()

	left := addTree(a, 0.5, 0, 2)
	right := addTree(a, 0.9, 2, 4)

	p := forest.Parse{Tokens: tokens(4), Trees: []forest.ParseTree{left, right}, Arena: a}

	got := Disambiguate(p)

	if len(got.Trees) != 2 {
		t.Fatalf("len(Trees) = %d, want 2 (disjoint spans)", len(got.Trees))
	}
}

func TestRankOfOrdersByGapsThenPiecesThenScore(t *testing.T) {
	t.Parallel()

	a := forest.NewArena()
	full := addTree(a, 0.5, 0, 3)

	fullCoverage := forest.Parse{Tokens: tokens(3), Trees: []forest.ParseTree{full}, Arena: a}

	a2 := forest.NewArena()
	partial := addTree(a2, 0.9, 0, 2)
	gappy := forest.Parse{Tokens: tokens(3), Trees: []forest.ParseTree{partial}, Arena: a2}

	fullRank := RankOf(fullCoverage)
	gappyRank := RankOf(gappy)

	if !fullRank.Less(gappyRank) {
		t.Errorf("full coverage (gaps=%d) should outrank a gappy parse (gaps=%d) regardless of score",
			fullRank.GapSize, gappyRank.GapSize)
	}
}

func TestEnumerateReturnsNonOverlappingResultsAtAConsistentGapLevel(t *testing.T) {
	t.Parallel()

	a := forest.NewArena()

	// Two non-overlapping trees exactly cover both tokens.
	first := addTree(a, 0.6, 0, 1)
	second := addTree(a, 0.6, 1, 2)

	p := forest.Parse{Tokens: tokens(2), Trees: []forest.ParseTree{first, second}, Arena: a}

	results, timedOut := Enumerate(p, time.Time{})
	if timedOut {
		t.Fatalf("Enumerate timed out unexpectedly")
	}

	if len(results) == 0 {
		t.Fatalf("Enumerate returned no disambiguations")
	}

	gapSize := results[0].TotalGapSize()

	for _, r := range results {
		if r.TotalGapSize() != gapSize {
			t.Errorf("result %+v has gap size %d, want every result at the same (minimal) level %d",
				r.Trees, r.TotalGapSize(), gapSize)
		}

		for i := 0; i < len(r.Trees); i++ {
			for j := i + 1; j < len(r.Trees); j++ {
				if overlaps(r.Trees[i], r.Trees[j]) {
					t.Errorf("result %+v contains overlapping trees", r.Trees)
				}
			}
		}
	}

	if gapSize != 0 {
		t.Errorf("gap size = %d, want 0 (first+second exactly cover both tokens)", gapSize)
	}
}
