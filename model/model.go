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

// Package model bundles the rule sets and property-promotion
// configuration that a parse is built against (spec §6's "Model: sets of
// rules ... referenced by immutable handles"). A Model is immutable once
// built and safe to share across concurrently running parses (spec §5);
// each parse gets its own scheduler.ParserState over the same Model.
package model

import (
	"sort"

	"github.com/ianlewis/pyramids/category"
	"github.com/ianlewis/pyramids/properties"
	"github.com/ianlewis/pyramids/rules"
)

var _ rules.Properties = (*Model)(nil)

// Model is the immutable rule configuration a ParserState fires against,
// grounded on original_source/pyramids/parsing.py's Parser (primary/
// secondary leaf rules, branch rules, any/all-promoted property sets,
// property-inheritance rules).
type Model struct {
	PrimaryLeafRules   []rules.LeafRule
	SecondaryLeafRules []rules.LeafRule
	BranchRules        []rules.BranchRule

	anyPromoted []string
	allPromoted []string
	engine      *properties.Engine
}

// New assembles a Model. anyPromoted/allPromoted are the property names
// eligible for any-/all-promotion in SequenceRule.GetCategory and
// ConjunctionRule.GetCategory (spec §4.5, §4.6); inheritanceRules feed
// the property-inheritance closure (spec §4.2).
func New(
	primaryLeafRules, secondaryLeafRules []rules.LeafRule,
	branchRules []rules.BranchRule,
	anyPromoted, allPromoted []string,
	inheritanceRules []properties.Rule,
) *Model {
	any := append([]string(nil), anyPromoted...)
	all := append([]string(nil), allPromoted...)
	sort.Strings(any)
	sort.Strings(all)

	return &Model{
		PrimaryLeafRules:   append([]rules.LeafRule(nil), primaryLeafRules...),
		SecondaryLeafRules: append([]rules.LeafRule(nil), secondaryLeafRules...),
		BranchRules:        append([]rules.BranchRule(nil), branchRules...),
		anyPromoted:        any,
		allPromoted:        all,
		engine:             properties.NewEngine(inheritanceRules),
	}
}

// Extend implements rules.Properties, delegating to the property-
// inheritance engine (spec §4.2).
func (m *Model) Extend(c category.Category) category.Category {
	return m.engine.Extend(c)
}

// AnyPromoted implements rules.Properties (spec §4.5, §4.6).
func (m *Model) AnyPromoted() []string { return m.anyPromoted }

// AllPromoted implements rules.Properties (spec §4.5, §4.6).
func (m *Model) AllPromoted() []string { return m.allPromoted }
