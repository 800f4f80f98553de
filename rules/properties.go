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

	"github.com/ianlewis/pyramids/category"
)

func positiveSlice(c category.Category) []string { return setSlice(c.Positive) }
func negativeSlice(c category.Category) []string { return setSlice(c.Negative) }

func setSlice(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}

	sort.Strings(out)

	return out
}

// properSuperset reports whether a is a strict superset of b.
func properSuperset(a, b map[string]bool) bool {
	if len(a) <= len(b) {
		return false
	}

	for k := range b {
		if !a[k] {
			return false
		}
	}

	return true
}

// cloneSet returns a shallow copy of a property set.
func cloneSet(set map[string]bool) map[string]bool {
	out := make(map[string]bool, len(set))
	for k := range set {
		out[k] = true
	}

	return out
}

// intersectSet returns the members present in both a and b.
func intersectSet(a, b map[string]bool) map[string]bool {
	out := map[string]bool{}

	for k := range a {
		if b[k] {
			out[k] = true
		}
	}

	return out
}

// promotedProperties implements the shared half of spec §4.5/§4.6's
// get_category: seeded from (head) starting property sets, apply the
// model's any-promoted and all-promoted property sets across every
// subtree category.
//
// any-promoted: a property is added positively if any subtree has it
// positively; otherwise it is added negatively only if every subtree has
// it negatively.
//
// all-promoted: a property is added negatively if any subtree has it
// negatively; otherwise it is added positively only if every subtree has
// it positively.
func promotedProperties(props Properties, head category.Category, subtreeCats []category.Category) (positive, negative map[string]bool) {
	return applyPromotions(props, cloneSet(head.Positive), cloneSet(head.Negative), subtreeCats)
}

// applyPromotions applies the any/all-promoted property rules on top of
// an already-seeded (positive, negative) pair, consulting every entry in
// subtreeCats.
func applyPromotions(props Properties, positive, negative map[string]bool, subtreeCats []category.Category) (map[string]bool, map[string]bool) {
	for _, prop := range props.AnyPromoted() {
		anyPositive := false

		for _, st := range subtreeCats {
			if st.Positive[prop] {
				anyPositive = true

				break
			}
		}

		if anyPositive {
			positive[prop] = true
			delete(negative, prop)

			continue
		}

		if positive[prop] {
			continue
		}

		allNegative := true

		for _, st := range subtreeCats {
			if !st.Negative[prop] {
				allNegative = false

				break
			}
		}

		if allNegative {
			negative[prop] = true
		}
	}

	for _, prop := range props.AllPromoted() {
		anyNegative := false

		for _, st := range subtreeCats {
			if st.Negative[prop] {
				anyNegative = true

				break
			}
		}

		if anyNegative {
			negative[prop] = true
			delete(positive, prop)

			continue
		}

		if negative[prop] {
			continue
		}

		allPositive := true

		for _, st := range subtreeCats {
			if !st.Positive[prop] {
				allPositive = false

				break
			}
		}

		if allPositive {
			positive[prop] = true
		}
	}

	return positive, negative
}
