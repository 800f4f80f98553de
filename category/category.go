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

// Package category implements the category algebra: names, positive and
// negative property sets, subsumption, and the wildcard category.
package category

import (
	"sort"
	"strings"
)

// Wildcard is the special category name that matches any concrete name.
const Wildcard = "_"

// Category is a grammatical type: a name plus disjoint positive and
// negative property sets. Categories are immutable and value-equal once
// constructed through New or Promote.
type Category struct {
	Name     string
	Positive map[string]bool
	Negative map[string]bool
}

// New returns a Category with the given name and property sets. The
// supplied slices are copied; positive properties always win over
// negative ones when both are present for the same property.
func New(name string, positive, negative []string) Category {
	pos := make(map[string]bool, len(positive))
	for _, p := range positive {
		pos[p] = true
	}

	neg := make(map[string]bool, len(negative))
	for _, n := range negative {
		if !pos[n] {
			neg[n] = true
		}
	}

	return Category{Name: name, Positive: pos, Negative: neg}
}

// IsWildcard reports whether c's name is the wildcard name.
func (c Category) IsWildcard() bool {
	return c.Name == Wildcard
}

// HasPositive reports whether c has the given property positively.
func (c Category) HasPositive(prop string) bool {
	return c.Positive[prop]
}

// HasNegative reports whether c has the given property negatively.
func (c Category) HasNegative(prop string) bool {
	return c.Negative[prop]
}

// Subsumes reports whether outer subsumes inner ("inner is-in outer"):
// outer's constraints are no stricter than inner's, so outer matches
// wherever inner matches.
//
//	(outer.Name == _ || outer.Name == inner.Name) &&
//	outer.Positive ⊆ inner.Positive && outer.Negative ⊆ inner.Negative
func Subsumes(outer, inner Category) bool {
	if outer.Name != Wildcard && outer.Name != inner.Name {
		return false
	}

	for p := range outer.Positive {
		if !inner.Positive[p] {
			return false
		}
	}

	for n := range outer.Negative {
		if !inner.Negative[n] {
			return false
		}
	}

	return true
}

// Promote returns a new Category with addPositive unioned into Positive
// and addNegative unioned into Negative, less anything already (or newly)
// positive. The name is unchanged.
func Promote(c Category, addPositive, addNegative []string) Category {
	pos := make(map[string]bool, len(c.Positive)+len(addPositive))
	for p := range c.Positive {
		pos[p] = true
	}

	for _, p := range addPositive {
		pos[p] = true
	}

	neg := make(map[string]bool, len(c.Negative)+len(addNegative))
	for n := range c.Negative {
		neg[n] = true
	}

	for _, n := range addNegative {
		neg[n] = true
	}

	for p := range pos {
		delete(neg, p)
	}

	return Category{Name: c.Name, Positive: pos, Negative: neg}
}

// WithName returns a copy of c with its name replaced. Used to rewrite a
// wildcard rule category to a concrete head name (spec §4.5's
// get_category).
func WithName(c Category, name string) Category {
	return Category{Name: name, Positive: c.Positive, Negative: c.Negative}
}

// Equal reports whether c and other have the same name and property sets.
func Equal(c, other Category) bool {
	if c.Name != other.Name {
		return false
	}

	if len(c.Positive) != len(other.Positive) || len(c.Negative) != len(other.Negative) {
		return false
	}

	for p := range c.Positive {
		if !other.Positive[p] {
			return false
		}
	}

	for n := range c.Negative {
		if !other.Negative[n] {
			return false
		}
	}

	return true
}

// String returns the canonical string form name(+p1,+p2,-n1), with
// properties sorted, so that equal categories have equal string forms.
// This form doubles as the map key used to dedup categories and, via
// Rule.String, as the scoring-table identity key (SPEC_FULL.md §6).
func (c Category) String() string {
	var bldr strings.Builder

	bldr.WriteString(c.Name)
	bldr.WriteByte('(')

	props := make([]string, 0, len(c.Positive)+len(c.Negative))

	for p := range c.Positive {
		props = append(props, "+"+p)
	}

	for n := range c.Negative {
		props = append(props, "-"+n)
	}

	sort.Strings(props)

	for i, p := range props {
		if i > 0 {
			bldr.WriteByte(',')
		}

		bldr.WriteString(p)
	}

	bldr.WriteByte(')')

	return bldr.String()
}

// Key returns the string form, exposed separately from String so callers
// that only need a map key don't need to document a Stringer dependency.
func (c Category) Key() string {
	return c.String()
}
