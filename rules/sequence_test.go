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
	"errors"
	"testing"

	"github.com/ianlewis/pyramids/category"
	"github.com/ianlewis/pyramids/pyerr"
)

func TestNewSequenceRuleRejectsTooManyLinkSets(t *testing.T) {
	t.Parallel()

	det := category.New("det", nil, nil)
	noun := category.New("noun", nil, nil)

	_, err := NewSequenceRule(
		category.New("NP", nil, nil),
		[][]category.Category{{det}, {noun}},
		1,
		[][]LinkType{{{Label: "a"}}, {{Label: "b"}}},
	)
	if !errors.Is(err, pyerr.ErrTooManyLinkSets) {
		t.Fatalf("NewSequenceRule error = %v, want ErrTooManyLinkSets", err)
	}
}

// TestSequenceRuleFiresDeterminerNoun builds the spec §8 scenario 4
// end-to-end at the rules-package level: det + noun -> NP.
func TestSequenceRuleFiresDeterminerNoun(t *testing.T) {
	t.Parallel()

	det := category.New("det", nil, nil)
	noun := category.New("noun", nil, nil)

	seq, err := NewSequenceRule(category.New("NP", nil, nil), [][]category.Category{{det}, {noun}}, 1, nil)
	if err != nil {
		t.Fatalf("NewSequenceRule: %v", err)
	}

	s := newFakeState()

	detSet := NewSetRule(det, []string{"the"})
	nounSet := NewSetRule(noun, []string{"cat"})

	detNS := s.addLeaf(detSet, det, 0, 1, "the")
	nounNS := s.addLeaf(nounSet, noun, 1, 2, "cat")

	seq.Fire(s, detNS)
	seq.Fire(s, nounNS)

	if len(s.queue.pushed) != 1 {
		t.Fatalf("pushed %d candidates, want 1", len(s.queue.pushed))
	}

	node := s.queue.pushed[0]
	if node.Category.Name != "NP" || node.Start != 0 || node.End != 2 {
		t.Fatalf("candidate = %+v, want NP over [0,2)", node)
	}

	if node.HeadIndex != 1 || node.Component(1).Category.Name != "noun" {
		t.Errorf("head index/category wrong: %+v", node)
	}
}

func TestSequenceRuleIsNonRecursiveUnitCycle(t *testing.T) {
	t.Parallel()

	np := category.New("NP", nil, nil)

	seq, err := NewSequenceRule(np, [][]category.Category{{np}}, 0, nil)
	if err != nil {
		t.Fatalf("NewSequenceRule: %v", err)
	}

	// A unit rule whose result is exactly subsumed by its own head must be
	// rejected as recursive.
	if seq.IsNonRecursive(np, np) {
		t.Errorf("IsNonRecursive(NP, NP) for a unit sequence = true, want false")
	}

	extended := category.Promote(np, []string{"extra"}, nil)
	if !seq.IsNonRecursive(extended, np) {
		t.Errorf("IsNonRecursive(extended, NP) = false, want true (strictly extends head)")
	}
}

func TestSequenceRuleGetCategoryAnyAllPromotion(t *testing.T) {
	t.Parallel()

	head := category.New("noun", []string{"plural"}, nil)
	other := category.New("det", []string{"definite"}, nil)

	seq, err := NewSequenceRule(category.New("_", nil, nil), [][]category.Category{{other}, {head}}, 1, nil)
	if err != nil {
		t.Fatalf("NewSequenceRule: %v", err)
	}

	props := &fakeProperties{any: []string{"definite"}}

	derived := seq.GetCategory(props, []category.Category{other, head})

	if derived.Name != "noun" {
		t.Errorf("derived name = %q, want noun (wildcard rewrite to head name)", derived.Name)
	}

	if !derived.Positive["definite"] {
		t.Errorf("derived = %v, want any-promoted %q carried positively", derived, "definite")
	}

	if !derived.Positive["plural"] {
		t.Errorf("derived should retain head's own positive property %q", "plural")
	}
}
