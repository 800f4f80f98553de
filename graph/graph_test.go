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

package graph

import (
	"testing"

	"github.com/ianlewis/pyramids/category"
	"github.com/ianlewis/pyramids/forest"
	"github.com/ianlewis/pyramids/rules"
	"github.com/ianlewis/pyramids/scoring"
	"github.com/ianlewis/pyramids/token"
)

// fakeLeafRule is a minimal forest.RuleRef standing in for a leaf rule;
// graph.Extract never inspects leaf rules beyond their identity.
type fakeLeafRule struct{ name string }

func (r *fakeLeafRule) String() string        { return r.name }
func (r *fakeLeafRule) Table() *scoring.Table { return scoring.NewTable() }
func (r *fakeLeafRule) FeatureKeys(_ *forest.ParseNode) []scoring.FeatureKey {
	return nil
}

// fakeBranchRule is a minimal rules.BranchRule standing in for a branch
// rule; only LinkTypes matters here, since graph.Extract walks an
// already-built forest rather than firing rules itself.
type fakeBranchRule struct {
	name      string
	linkTypes map[int][]rules.LinkType
}

func (r *fakeBranchRule) String() string        { return r.name }
func (r *fakeBranchRule) Table() *scoring.Table { return scoring.NewTable() }
func (r *fakeBranchRule) FeatureKeys(_ *forest.ParseNode) []scoring.FeatureKey {
	return nil
}
func (r *fakeBranchRule) Fire(_ rules.State, _ *forest.NodeSet) {}
func (r *fakeBranchRule) LinkTypes(linkSetIndex int) []rules.LinkType {
	return r.linkTypes[linkSetIndex]
}

func tokSeq(spellings ...string) token.Sequence {
	var s token.Sequence
	for i, sp := range spellings {
		s = s.Append(token.Token{Spelling: sp, Start: i, End: i + 1})
	}

	return s
}

func addLeaf(a *forest.Arena, name string, cat category.Category, pos int, spelling string) *forest.NodeSet {
	res := a.Add(&fakeLeafRule{name: name}, 0, cat, pos, pos+1, nil, spelling)

	return res.NodeSet
}

func addBranch(
	a *forest.Arena,
	name string,
	cat category.Category,
	headIndex int,
	start, end int,
	linkTypes map[int][]rules.LinkType,
	components ...*forest.NodeSet,
) *forest.NodeSet {
	handles := make([]forest.Handle, len(components))
	for i, c := range components {
		handles[i] = c.Handle()
	}

	rule := &fakeBranchRule{name: name, linkTypes: linkTypes}
	res := a.Add(rule, headIndex, cat, start, end, handles, "")

	return res.NodeSet
}

func TestExtractDirectLinkFromSequenceRule(t *testing.T) {
	t.Parallel()

	a := forest.NewArena()

	det := addLeaf(a, "det", category.New("Det", nil, nil), 0, "the")
	noun := addLeaf(a, "noun", category.New("N", nil, nil), 1, "cat")
	verb := addLeaf(a, "verb", category.New("V", nil, nil), 2, "sleeps")

	np := addBranch(a, "NP", category.New("NP", nil, nil), 1, 0, 2,
		map[int][]rules.LinkType{0: {{Label: "det", LeftArrow: true}}},
		det, noun)

	s := addBranch(a, "S", category.New("S", nil, nil), 1, 0, 3,
		map[int][]rules.LinkType{0: {{Label: "subj", RightArrow: true}}},
		np, verb)

	p := forest.Parse{
		Tokens: tokSeq("the", "cat", "sleeps"),
		Trees:  []forest.ParseTree{{Root: s, Arena: a}},
		Arena:  a,
	}

	graphs := Extract(p)
	if len(graphs) != 1 {
		t.Fatalf("len(graphs) = %d, want 1", len(graphs))
	}

	g := graphs[0]

	if len(g.Tokens) != 3 {
		t.Fatalf("len(Tokens) = %d, want 3", len(g.Tokens))
	}

	if g.Tokens[g.Root].Spelling != "sleeps" {
		t.Errorf("root token = %q, want %q", g.Tokens[g.Root].Spelling, "sleeps")
	}

	nounIdx, verbIdx, detIdx := -1, -1, -1

	for i, tok := range g.Tokens {
		switch tok.Spelling {
		case "cat":
			nounIdx = i
		case "sleeps":
			verbIdx = i
		case "the":
			detIdx = i
		}
	}

	if labels := g.GetLabels(nounIdx, detIdx); len(labels) != 1 || labels[0] != "det" {
		t.Errorf("GetLabels(noun, det) = %v, want [det]", labels)
	}

	if labels := g.GetLabels(nounIdx, verbIdx); len(labels) != 1 || labels[0] != "subj" {
		t.Errorf("GetLabels(noun, verb) = %v, want [subj]", labels)
	}

	if g.RootCategory().Name != "S" {
		t.Errorf("RootCategory = %v, want S", g.RootCategory())
	}
}

// TestExtractNeedSourceRedirectAndOfSuffix builds a three-level tree
// where the node that actually declares a needs_obj property (subA) sits
// one level below the phrase that exposes the need upward (phraseH),
// and checks that links labeled with the need's name — and with its
// "_of"-suffixed inverse — are redirected to subA rather than attached at
// the naive head-token position (subB).
func TestExtractNeedSourceRedirectAndOfSuffix(t *testing.T) {
	t.Parallel()

	a := forest.NewArena()

	objFiller := addLeaf(a, "filler", category.New("NP", nil, nil), 0, "something")
	subA := addLeaf(a, "subA", category.New("V", []string{"needs_obj"}, nil), 1, "give")
	subB := addLeaf(a, "subB", category.New("Aux", nil, nil), 2, "to")
	tailFiller := addLeaf(a, "tail", category.New("NP", nil, nil), 3, "someone")

	// phraseH re-asserts needs_obj on its own category (as property
	// inheritance would, were this a real grammar) and heads at subB,
	// so its need_sources (merged from subA and subB) differs from its
	// own head-token index (subB's).
	phraseH := addBranch(a, "H", category.New("VP", []string{"needs_obj"}, nil), 1, 1, 3, nil, subA, subB)

	outer := addBranch(a, "Outer", category.New("S", nil, nil), 1, 0, 4,
		map[int][]rules.LinkType{
			0: {{Label: "obj", LeftArrow: true}},
			1: {{Label: "obj_of", RightArrow: true}},
		},
		objFiller, phraseH, tailFiller)

	p := forest.Parse{
		Tokens: tokSeq("something", "give", "to", "someone"),
		Trees:  []forest.ParseTree{{Root: outer, Arena: a}},
		Arena:  a,
	}

	graphs := Extract(p)
	if len(graphs) != 1 {
		t.Fatalf("len(graphs) = %d, want 1", len(graphs))
	}

	g := graphs[0]

	idx := map[string]int{}
	for i, tok := range g.Tokens {
		idx[tok.Spelling] = i
	}

	if labels := g.GetLabels(idx["give"], idx["something"]); len(labels) != 1 || labels[0] != "obj" {
		t.Errorf("GetLabels(give, something) = %v, want [obj] (redirected to the need-declaring node)", labels)
	}

	if labels := g.GetLabels(idx["to"], idx["something"]); len(labels) != 0 {
		t.Errorf("GetLabels(to, something) = %v, want none: the link must redirect past the naive head token", labels)
	}

	if labels := g.GetLabels(idx["someone"], idx["give"]); len(labels) != 1 || labels[0] != "obj_of" {
		t.Errorf("GetLabels(someone, give) = %v, want [obj_of] (inverted need-source redirect)", labels)
	}
}
