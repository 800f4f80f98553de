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

import (
	"testing"

	"github.com/ianlewis/pyramids/category"
	"github.com/ianlewis/pyramids/scoring"
)

// fakeRule is a minimal RuleRef for forest-level tests, independent of
// the rules package (which itself depends on forest).
type fakeRule struct {
	name    string
	table   *scoring.Table
	feature scoring.FeatureKey
}

func newFakeRule(name string) *fakeRule {
	return &fakeRule{name: name, table: scoring.NewTable(), feature: scoring.FeatureKey{Kind: "head spelling", Parts: []string{name}}}
}

func (r *fakeRule) String() string        { return r.name }
func (r *fakeRule) Table() *scoring.Table { return r.table }
func (r *fakeRule) FeatureKeys(_ *ParseNode) []scoring.FeatureKey {
	return []scoring.FeatureKey{r.feature}
}

func TestArenaAddDedup(t *testing.T) {
	t.Parallel()

	a := NewArena()
	rule := newFakeRule("det-set")
	noun := category.New("det", nil, nil)

	r1 := a.Add(rule, 0, noun, 0, 1, nil, "the")
	if !r1.Added() || !r1.Created {
		t.Fatalf("first Add: got %+v, want Created", r1)
	}

	r2 := a.Add(rule, 0, noun, 0, 1, nil, "the")
	if r2.Added() {
		t.Errorf("duplicate Add reported as added: %+v", r2)
	}

	if len(r1.NodeSet.Members()) != 1 {
		t.Errorf("expected exactly one member after dedup, got %d", len(r1.NodeSet.Members()))
	}
}

func TestArenaAddDistinctDerivationsAccrete(t *testing.T) {
	t.Parallel()

	a := NewArena()
	ruleA := newFakeRule("rule-a")
	ruleB := newFakeRule("rule-b")
	cat := category.New("NP", nil, nil)

	a.Add(ruleA, 0, cat, 0, 2, nil, "")
	res := a.Add(ruleB, 0, cat, 0, 2, nil, "")

	if !res.NewMember {
		t.Fatalf("expected a distinct rule to join as a new member")
	}

	if len(res.NodeSet.Members()) != 2 {
		t.Errorf("expected 2 members, got %d", len(res.NodeSet.Members()))
	}
}

func TestBranchNodeContiguity(t *testing.T) {
	t.Parallel()

	a := NewArena()
	detRule := newFakeRule("det-set")
	nounRule := newFakeRule("noun-set")
	npRule := newFakeRule("np-seq")

	det := a.Add(detRule, 0, category.New("det", nil, nil), 0, 1, nil, "the")
	noun := a.Add(nounRule, 0, category.New("noun", nil, nil), 1, 2, nil, "cat")

	np := a.Add(npRule, 1, category.New("NP", nil, nil), 0, 2,
		[]Handle{det.NodeSet.Handle(), noun.NodeSet.Handle()}, "")

	node := np.Node
	if node.Start != 0 || node.End != 2 {
		t.Fatalf("branch span = [%d,%d), want [0,2)", node.Start, node.End)
	}

	for i := 0; i < len(node.Components)-1; i++ {
		if node.Component(i).End != node.Component(i+1).Start {
			t.Errorf("components not contiguous at %d: %d != %d", i, node.Component(i).End, node.Component(i+1).Start)
		}
	}

	if node.HeadComponent().Category.Name != "noun" {
		t.Errorf("head component = %q, want noun", node.HeadComponent().Category.Name)
	}
}

func TestAdjustScoreMonotone(t *testing.T) {
	t.Parallel()

	a := NewArena()
	leafRule := newFakeRule("leaf-rule")

	res := a.Add(leafRule, 0, category.New("noun", nil, nil), 0, 1, nil, "cat")

	var prev float64 = -1

	for i := 0; i < 10; i++ {
		if err := AdjustScore(a, res.Node.Handle(), 1.0); err != nil {
			t.Fatalf("AdjustScore: %v", err)
		}

		got := a.Node(res.Node.Handle()).Score()
		if got < prev {
			t.Fatalf("score decreased: %v < %v", got, prev)
		}

		prev = got
	}
}

func TestNodeSetBestFollowsHigherScoringMember(t *testing.T) {
	t.Parallel()

	a := NewArena()
	weak := newFakeRule("weak-rule")
	strong := newFakeRule("strong-rule")
	cat := category.New("NP", nil, nil)

	w := a.Add(weak, 0, cat, 0, 2, nil, "")
	s := a.Add(strong, 0, cat, 0, 2, nil, "")

	for i := 0; i < 20; i++ {
		if err := AdjustScore(a, s.Node.Handle(), 1.0); err != nil {
			t.Fatalf("AdjustScore: %v", err)
		}

		if err := AdjustScore(a, w.Node.Handle(), 0.0); err != nil {
			t.Fatalf("AdjustScore: %v", err)
		}
	}

	if w.NodeSet.Best().Rule.String() != "strong-rule" {
		t.Errorf("Best() = %q, want strong-rule", w.NodeSet.Best().Rule.String())
	}
}
