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

package pyramids_test

import (
	"context"
	"strings"
	"testing"

	"github.com/ianlewis/pyramids"
	"github.com/ianlewis/pyramids/category"
	"github.com/ianlewis/pyramids/internal/demotoken"
	"github.com/ianlewis/pyramids/model"
	"github.com/ianlewis/pyramids/rules"
)

// newSentenceModel builds the same small "Det N V" -> "NP" -> "S" grammar
// used across this file's scenarios: a toy but complete grammar exercising
// both leaf and sequence branch rules end to end (spec §8's scenarios 1-5).
func newSentenceModel(t *testing.T) *model.Model {
	t.Helper()

	detCat := category.New("Det", nil, nil)
	nounCat := category.New("N", nil, nil)
	verbCat := category.New("V", nil, nil)
	npCat := category.New("NP", nil, nil)
	sCat := category.New("S", nil, nil)

	detRule := rules.NewSetRule(detCat, []string{"the", "a"})
	nounRule := rules.NewSetRule(nounCat, []string{"cat", "dog"})
	verbRule := rules.NewSetRule(verbCat, []string{"sleeps", "barks"})

	npRule, err := rules.NewSequenceRule(
		npCat,
		[][]category.Category{{detCat}, {nounCat}},
		1,
		[][]rules.LinkType{{{Label: "det", LeftArrow: true}}},
	)
	if err != nil {
		t.Fatalf("NewSequenceRule(NP): %v", err)
	}

	sRule, err := rules.NewSequenceRule(
		sCat,
		[][]category.Category{{npCat}, {verbCat}},
		1,
		[][]rules.LinkType{{{Label: "subj", LeftArrow: true}}},
	)
	if err != nil {
		t.Fatalf("NewSequenceRule(S): %v", err)
	}

	return model.New(
		[]rules.LeafRule{detRule, nounRule, verbRule},
		nil,
		[]rules.BranchRule{npRule, sRule},
		nil, nil, nil,
	)
}

func TestParseEmptyInputProducesNoTrees(t *testing.T) {
	t.Parallel()

	p := pyramids.New(newSentenceModel(t))

	result, err := p.Parse(context.Background(), demotoken.New(strings.NewReader("")), pyramids.ParseOptions{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if len(result.Trees) != 0 {
		t.Errorf("len(Trees) = %d, want 0 for empty input", len(result.Trees))
	}

	if result.Tokens.Len() != 0 {
		t.Errorf("Tokens.Len() = %d, want 0", result.Tokens.Len())
	}
}

func TestParseUnrecognizedTokenProducesNoTreesButRecordsTheToken(t *testing.T) {
	t.Parallel()

	p := pyramids.New(newSentenceModel(t))

	result, err := p.Parse(context.Background(), demotoken.New(strings.NewReader("xyzzy")), pyramids.ParseOptions{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if result.Tokens.Len() != 1 {
		t.Fatalf("Tokens.Len() = %d, want 1", result.Tokens.Len())
	}

	if len(result.Trees) != 0 {
		t.Errorf("len(Trees) = %d, want 0: no rule matches %q", len(result.Trees), "xyzzy")
	}
}

func TestParseSingleLeafMatch(t *testing.T) {
	t.Parallel()

	p := pyramids.New(newSentenceModel(t))

	result, err := p.Parse(context.Background(), demotoken.New(strings.NewReader("cat")), pyramids.ParseOptions{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if len(result.Trees) != 1 {
		t.Fatalf("len(Trees) = %d, want 1", len(result.Trees))
	}

	if result.Trees[0].Node().Category.Name != "N" {
		t.Errorf("category = %v, want N", result.Trees[0].Node().Category)
	}
}

func TestParseSequenceRuleCoversFullSentence(t *testing.T) {
	t.Parallel()

	p := pyramids.New(newSentenceModel(t))

	result, err := p.Parse(context.Background(), demotoken.New(strings.NewReader("the cat sleeps")), pyramids.ParseOptions{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	found := false

	for _, tr := range result.Trees {
		if tr.Start() == 0 && tr.End() == result.Tokens.Len() && tr.Node().Category.Name == "S" {
			found = true
		}
	}

	if !found {
		t.Fatalf("Trees %+v contain no full-sentence S tree", result.Trees)
	}
}

func TestParseDisambiguateAndExtractGraphRoundTripsThroughGenerate(t *testing.T) {
	t.Parallel()

	p := pyramids.New(newSentenceModel(t))

	result, err := p.Parse(context.Background(), demotoken.New(strings.NewReader("the cat sleeps")), pyramids.ParseOptions{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	disambiguated := p.Disambiguate(*result)
	if len(disambiguated.Trees) == 0 {
		t.Fatalf("Disambiguate returned no trees")
	}

	graphs := p.Graphs(disambiguated)
	if len(graphs) == 0 {
		t.Fatalf("Graphs returned nothing")
	}

	var sentenceGraph = graphs[0]

	for _, g := range graphs {
		if g.RootCategory().Name == "S" {
			sentenceGraph = g
		}
	}

	if sentenceGraph.RootCategory().Name != "S" {
		t.Fatalf("no extracted graph has root category S (got %v)", sentenceGraph.RootCategory())
	}

	generated := p.Generate(sentenceGraph)
	if len(generated) == 0 {
		t.Fatalf("Generate returned no trees for the extracted graph")
	}

	foundS := false

	for _, tr := range generated {
		if tr.Category.Name == "S" {
			foundS = true
		}
	}

	if !foundS {
		t.Errorf("Generate(%+v) = %+v, want at least one S-category tree", sentenceGraph, generated)
	}
}

func TestParseAmbiguityRanksFullCoverageOverPartial(t *testing.T) {
	t.Parallel()

	p := pyramids.New(newSentenceModel(t))

	result, err := p.Parse(context.Background(), demotoken.New(strings.NewReader("the dog barks")), pyramids.ParseOptions{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	best := p.Disambiguate(*result)

	if best.TotalGapSize() != 0 {
		t.Errorf("TotalGapSize() = %d, want 0: the grammar fully covers this sentence", best.TotalGapSize())
	}
}

func TestParseManyRunsIndependentParsesConcurrently(t *testing.T) {
	t.Parallel()

	p := pyramids.New(newSentenceModel(t))

	inputs := []pyramids.Input{
		{Tokenizer: demotoken.New(strings.NewReader("the cat sleeps"))},
		{Tokenizer: demotoken.New(strings.NewReader("a dog barks"))},
		{Tokenizer: demotoken.New(strings.NewReader(""))},
	}

	results, err := p.ParseMany(context.Background(), inputs)
	if err != nil {
		t.Fatalf("ParseMany: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}

	if len(results[2].Trees) != 0 {
		t.Errorf("results[2] (empty input) has %d trees, want 0", len(results[2].Trees))
	}

	for i, r := range results[:2] {
		if len(r.Trees) == 0 {
			t.Errorf("results[%d] has no trees", i)
		}
	}
}
