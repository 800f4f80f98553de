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
	"sort"
	"strings"
	"unicode"

	"github.com/ianlewis/pyramids/category"
	"github.com/ianlewis/pyramids/forest"
	"github.com/ianlewis/pyramids/scoring"
)

// Discovered-case properties (spec §4.3).
const (
	PropCaseFree  = "case_free"
	PropLowerCase = "lower_case"
	PropUpperCase = "upper_case"
	PropTitleCase = "title_case"
	PropMixedCase = "mixed_case"
)

var allCaseProperties = []string{PropCaseFree, PropLowerCase, PropUpperCase, PropTitleCase, PropMixedCase}

// DiscoverCaseProperties computes the positive/negative case properties a
// surface form exhibits (spec §4.3): case_free if upper- and lower-casing
// the token are identical, lower_case if the token is already lowercase,
// otherwise upper_case and/or title_case (the latter also implies
// mixed_case); mixed_case alone if none of the others apply.
func DiscoverCaseProperties(token string) (positive, negative []string) {
	upper := strings.ToUpper(token)
	lower := strings.ToLower(token)

	pos := map[string]bool{}

	switch {
	case upper == lower:
		pos[PropCaseFree] = true
	case token == lower:
		pos[PropLowerCase] = true
	default:
		if token == upper {
			pos[PropUpperCase] = true
		}

		if token == titleCase(token) {
			pos[PropTitleCase] = true
			pos[PropMixedCase] = true
		}
	}

	if len(pos) == 0 {
		pos[PropMixedCase] = true
	}

	for _, p := range allCaseProperties {
		if !pos[p] {
			negative = append(negative, p)
		}
	}

	for p := range pos {
		positive = append(positive, p)
	}

	sort.Strings(positive)
	sort.Strings(negative)

	return positive, negative
}

// titleCase mirrors Python's str.title(): each letter run's first rune is
// upper-cased, the rest lower-cased.
func titleCase(s string) string {
	var b strings.Builder

	prevLetter := false

	for _, r := range s {
		switch {
		case !unicode.IsLetter(r):
			b.WriteRune(r)
			prevLetter = false
		case prevLetter:
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(unicode.ToUpper(r))
			prevLetter = true
		}
	}

	return b.String()
}

// SetRule matches tokens (lowercased) against a fixed vocabulary (spec
// §3's "SetRule (leaf)").
type SetRule struct {
	base

	Cat    category.Category
	Tokens map[string]bool
}

// NewSetRule builds a SetRule over tokens, lowercasing and interning them
// into a membership set.
func NewSetRule(cat category.Category, tokens []string) *SetRule {
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[strings.ToLower(t)] = true
	}

	return &SetRule{base: newBase(), Cat: cat, Tokens: set}
}

func (r *SetRule) Category() category.Category { return r.Cat }

func (r *SetRule) Matches(token string) bool {
	return r.Tokens[strings.ToLower(token)]
}

func (r *SetRule) String() string {
	return r.Cat.String() + ".ctg"
}

func (r *SetRule) FeatureKeys(node *forest.ParseNode) []scoring.FeatureKey {
	return leafFeatureKeys(node.Category, node.Spelling)
}

// SuffixRule matches tokens by a suffix set and polarity (spec §4.3): a
// token matches positively when it ends with a listed suffix and is
// strictly longer than suffix+1 character; SuffixRule with Positive=false
// inverts this into an exclusion test.
type SuffixRule struct {
	base

	Cat      category.Category
	Suffixes map[string]bool
	Positive bool
}

// NewSuffixRule builds a SuffixRule over suffixes, lowercased.
func NewSuffixRule(cat category.Category, suffixes []string, positive bool) *SuffixRule {
	set := make(map[string]bool, len(suffixes))
	for _, s := range suffixes {
		set[strings.ToLower(s)] = true
	}

	return &SuffixRule{base: newBase(), Cat: cat, Suffixes: set, Positive: positive}
}

func (r *SuffixRule) Category() category.Category { return r.Cat }

func (r *SuffixRule) Matches(token string) bool {
	lower := strings.ToLower(token)

	for suf := range r.Suffixes {
		if len(lower) > len(suf)+1 && strings.HasSuffix(lower, suf) {
			return r.Positive
		}
	}

	return !r.Positive
}

func (r *SuffixRule) String() string {
	sign := "-"
	if r.Positive {
		sign = "+"
	}

	suffixes := make([]string, 0, len(r.Suffixes))
	for s := range r.Suffixes {
		suffixes = append(suffixes, s)
	}

	sort.Strings(suffixes)

	return r.Cat.String() + ": " + sign + " " + strings.Join(suffixes, " -")
}

func (r *SuffixRule) FeatureKeys(node *forest.ParseNode) []scoring.FeatureKey {
	return leafFeatureKeys(node.Category, node.Spelling)
}

// CaseRule matches tokens solely by their discovered case property (spec
// §3's "CaseRule (leaf)").
type CaseRule struct {
	base

	Cat  category.Category
	Case string
}

// NewCaseRule builds a CaseRule for one of the five discovered-case
// properties.
func NewCaseRule(cat category.Category, caseProp string) *CaseRule {
	return &CaseRule{base: newBase(), Cat: cat, Case: caseProp}
}

func (r *CaseRule) Category() category.Category { return r.Cat }

func (r *CaseRule) Matches(token string) bool {
	positive, _ := DiscoverCaseProperties(token)
	for _, p := range positive {
		if p == r.Case {
			return true
		}
	}

	return false
}

func (r *CaseRule) String() string {
	return r.Case + "->" + r.Cat.String()
}

func (r *CaseRule) FeatureKeys(node *forest.ParseNode) []scoring.FeatureKey {
	return leafFeatureKeys(node.Category, node.Spelling)
}
