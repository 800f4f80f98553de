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

import "github.com/ianlewis/pyramids/category"

// Predicate is a subtree match predicate (spec §4.6): it evaluates on the
// ordered list of a conjunction candidate's subtree categories and its
// head index.
type Predicate interface {
	Match(subtreeCats []category.Category, headIndex int) bool
	String() string
}

// propertyFilter is the property-filter test shared by every predicate
// variant: a category matches a filter when it carries every one of the
// filter's positive properties, and none of the filter's negative
// properties are positively true on it.
type propertyFilter struct {
	name     string
	positive map[string]bool
	negative map[string]bool
}

func (f propertyFilter) String() string {
	return category.New(f.name, setSlice(f.positive), setSlice(f.negative)).String()
}

func (f propertyFilter) matches(cat category.Category) bool {
	for p := range f.positive {
		if !cat.Positive[p] {
			return false
		}
	}

	for n := range f.negative {
		if cat.Positive[n] {
			return false
		}
	}

	return true
}

// HeadMatch requires the head subtree itself to satisfy the filter.
type HeadMatch struct{ propertyFilter }

// NewHeadMatch builds a "head(...)" predicate.
func NewHeadMatch(positive, negative []string) *HeadMatch {
	return &HeadMatch{propertyFilter{name: "head", positive: toSet(positive), negative: toSet(negative)}}
}

func (p *HeadMatch) Match(subtreeCats []category.Category, headIndex int) bool {
	return p.matches(subtreeCats[headIndex])
}

// AnyTermMatch requires at least one non-head subtree to satisfy the
// filter.
type AnyTermMatch struct{ propertyFilter }

// NewAnyTermMatch builds an "any_term(...)" predicate.
func NewAnyTermMatch(positive, negative []string) *AnyTermMatch {
	return &AnyTermMatch{propertyFilter{name: "any_term", positive: toSet(positive), negative: toSet(negative)}}
}

func (p *AnyTermMatch) Match(subtreeCats []category.Category, headIndex int) bool {
	for i, c := range subtreeCats {
		if i == headIndex {
			continue
		}

		if p.matches(c) {
			return true
		}
	}

	return false
}

// AllTermsMatch requires every non-head subtree to satisfy the filter.
type AllTermsMatch struct{ propertyFilter }

// NewAllTermsMatch builds an "all_terms(...)" predicate.
func NewAllTermsMatch(positive, negative []string) *AllTermsMatch {
	return &AllTermsMatch{propertyFilter{name: "all_terms", positive: toSet(positive), negative: toSet(negative)}}
}

func (p *AllTermsMatch) Match(subtreeCats []category.Category, headIndex int) bool {
	for i, c := range subtreeCats {
		if i == headIndex {
			continue
		}

		if !p.matches(c) {
			return false
		}
	}

	return true
}

// OneTermMatch requires exactly one non-head subtree to satisfy the
// filter.
type OneTermMatch struct{ propertyFilter }

// NewOneTermMatch builds a "one_term(...)" predicate.
func NewOneTermMatch(positive, negative []string) *OneTermMatch {
	return &OneTermMatch{propertyFilter{name: "one_term", positive: toSet(positive), negative: toSet(negative)}}
}

func (p *OneTermMatch) Match(subtreeCats []category.Category, headIndex int) bool {
	found := false

	for i, c := range subtreeCats {
		if i == headIndex {
			continue
		}

		if p.matches(c) {
			if found {
				return false
			}

			found = true
		}
	}

	return found
}

// LastTermMatch requires the final subtree to satisfy the filter.
type LastTermMatch struct{ propertyFilter }

// NewLastTermMatch builds a "last_term(...)" predicate.
func NewLastTermMatch(positive, negative []string) *LastTermMatch {
	return &LastTermMatch{propertyFilter{name: "last_term", positive: toSet(positive), negative: toSet(negative)}}
}

func (p *LastTermMatch) Match(subtreeCats []category.Category, headIndex int) bool {
	return p.matches(subtreeCats[len(subtreeCats)-1])
}

// CompoundMatch requires every subtree strictly before the immediate
// predecessor of the head to satisfy the filter (the leadup chain of a
// compound conjunction, excluding the leadup immediately touching the
// conjunction word).
type CompoundMatch struct{ propertyFilter }

// NewCompoundMatch builds a "compound(...)" predicate.
func NewCompoundMatch(positive, negative []string) *CompoundMatch {
	return &CompoundMatch{propertyFilter{name: "compound", positive: toSet(positive), negative: toSet(negative)}}
}

func (p *CompoundMatch) Match(subtreeCats []category.Category, headIndex int) bool {
	for i := 0; i < headIndex-1; i++ {
		if !p.matches(subtreeCats[i]) {
			return false
		}
	}

	return true
}

func toSet(props []string) map[string]bool {
	out := make(map[string]bool, len(props))
	for _, p := range props {
		out[p] = true
	}

	return out
}
