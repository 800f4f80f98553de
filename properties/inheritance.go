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

// Package properties implements the property-inheritance closure (spec
// §4.2): a fixed-point iteration that applies InheritanceRules to a
// category until no further properties are added.
package properties

import "github.com/ianlewis/pyramids/category"

// Rule is a property-inheritance rule: whenever its antecedent pattern
// subsumes a category, its positive/negative additions are unioned in.
// Conditions may reference negative properties but effects may only add
// properties (spec §4.2).
type Rule struct {
	Antecedent  category.Category
	AddPositive []string
	AddNegative []string
}

// Engine holds the fixed set of inheritance rules used by Extend. It is
// immutable after construction and safe to share across parses (spec §5).
type Engine struct {
	rules []Rule
}

// NewEngine returns an Engine that applies the given rules, in order,
// each iteration.
func NewEngine(rules []Rule) *Engine {
	cp := make([]Rule, len(rules))
	copy(cp, rules)

	return &Engine{rules: cp}
}

// Extend returns extend_properties(c): the fixed point reached by
// repeatedly unioning in every rule whose antecedent subsumes c, then
// subtracting positive from negative so positive wins conflicts. Because
// additions are drawn from a finite universe of property names and both
// sets only grow, this terminates in at most |universe| iterations (spec
// §4.2, §9).
func (e *Engine) Extend(c category.Category) category.Category {
	for {
		changed := false

		for _, r := range e.rules {
			if !category.Subsumes(r.Antecedent, c) {
				continue
			}

			pos := category.Promote(category.Category{Name: c.Name, Positive: c.Positive}, r.AddPositive, nil)
			neg := category.Promote(category.Category{Name: c.Name, Negative: c.Negative}, nil, r.AddNegative)

			next := category.Category{Name: c.Name, Positive: pos.Positive, Negative: neg.Negative}
			if !category.Equal(next, c) {
				c = next
				changed = true
			}
		}

		if !changed {
			return category.Promote(c, nil, nil)
		}
	}
}
