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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ianlewis/pyramids/category"
)

func TestDiscoverCasePropertiesVariants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		token    string
		positive []string
	}{
		{"123", []string{PropCaseFree}},
		{"cat", []string{PropLowerCase}},
		{"CAT", []string{PropUpperCase}},
		{"Cat", []string{PropTitleCase, PropMixedCase}},
		{"caT", []string{PropMixedCase}},
	}

	for _, tt := range tests {
		positive, negative := DiscoverCaseProperties(tt.token)

		if diff := cmp.Diff(tt.positive, positive, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
			t.Errorf("DiscoverCaseProperties(%q) positive mismatch (-want +got):\n%s", tt.token, diff)
		}

		for _, p := range tt.positive {
			for _, n := range negative {
				if p == n {
					t.Errorf("DiscoverCaseProperties(%q): %q is both positive and negative", tt.token, p)
				}
			}
		}

		if len(positive)+len(negative) != len(allCaseProperties) {
			t.Errorf("DiscoverCaseProperties(%q): positive+negative = %d, want %d", tt.token, len(positive)+len(negative), len(allCaseProperties))
		}
	}
}

func TestSetRuleMatchesCaseInsensitive(t *testing.T) {
	t.Parallel()

	r := NewSetRule(category.New("noun", nil, nil), []string{"Cat", "DOG"})

	for _, tok := range []string{"cat", "Cat", "CAT", "dog", "Dog"} {
		if !r.Matches(tok) {
			t.Errorf("Matches(%q) = false, want true", tok)
		}
	}

	if r.Matches("bird") {
		t.Errorf("Matches(%q) = true, want false", "bird")
	}
}

func TestSuffixRulePositiveAndExclusion(t *testing.T) {
	t.Parallel()

	pos := NewSuffixRule(category.New("verb", nil, nil), []string{"ing"}, true)
	if !pos.Matches("running") {
		t.Errorf("positive suffix rule should match %q", "running")
	}

	if pos.Matches("ring") { // len("ring") == 4, suffix len 3 + 1 == 4, not strictly greater
		t.Errorf("positive suffix rule should not match %q (too short)", "ring")
	}

	neg := NewSuffixRule(category.New("verb", nil, nil), []string{"ing"}, false)
	if neg.Matches("running") {
		t.Errorf("negative suffix rule should reject %q", "running")
	}

	if !neg.Matches("jump") {
		t.Errorf("negative suffix rule should accept %q", "jump")
	}
}

func TestCaseRuleMatchesDiscoveredCase(t *testing.T) {
	t.Parallel()

	r := NewCaseRule(category.New("proper-noun", nil, nil), PropTitleCase)

	if !r.Matches("London") {
		t.Errorf("CaseRule(title_case) should match %q", "London")
	}

	if r.Matches("london") {
		t.Errorf("CaseRule(title_case) should not match %q", "london")
	}
}
