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

// Package pyerr defines the error taxonomy described in spec.md §7:
// fatal model-construction errors and score-update domain-contract
// violations. Both wrap a fixed sentinel so callers can use errors.Is;
// both carry enough context (a rule identity, a field name) to diagnose
// without parsing the message string.
package pyerr

import (
	"errors"
	"fmt"
)

// Model-construction sentinel errors (spec §7): ill-formed rules,
// reported at model build time and fatal to that model.
var (
	ErrTooManyLinkSets     = errors.New("more link-type sets than subcategory gaps")
	ErrHeadNotMiddle       = errors.New("conjunction rule head is not the middle subtree for a 3-subcategory rule")
	ErrEmptySubcategories  = errors.New("rule has no subcategory alternation sets")
	ErrHeadIndexOutOfRange = errors.New("head index out of range for subcategory sets")
	ErrConflictingFlags    = errors.New("conjunction rule cannot be both single and require a leadup")
)

// Score-update domain sentinel errors (spec §7): a programming-contract
// violation, fatal to the call but never to the process.
var (
	ErrScoreOutOfRange  = errors.New("target score outside [0,1]")
	ErrNegativeCount    = errors.New("count must be >= 0")
	ErrInvalidFeatureKey = errors.New("invalid feature key")
)

// ModelError reports a fatal rule-construction failure, naming the rule
// (by its string form) and the field that violated a construction
// invariant.
type ModelError struct {
	Rule  string
	Field string
	Err   error
}

// Error implements the error interface.
func (e *ModelError) Error() string {
	return fmt.Sprintf("rule %q: field %s: %s", e.Rule, e.Field, e.Err)
}

// Unwrap exposes the wrapped sentinel for errors.Is/errors.As.
func (e *ModelError) Unwrap() error {
	return e.Err
}

// WrapModel wraps err (expected to be one of the sentinels above) as a
// ModelError naming rule and field.
func WrapModel(rule, field string, err error) error {
	if err == nil {
		return nil
	}

	return &ModelError{Rule: rule, Field: field, Err: err}
}

// ScoreError reports a score-update domain-contract violation (spec §7):
// non-fatal to the process, fatal to the individual adjust_score call.
type ScoreError struct {
	Rule    string
	Feature string
	Err     error
}

// Error implements the error interface.
func (e *ScoreError) Error() string {
	if e.Feature == "" {
		return fmt.Sprintf("rule %q: %s", e.Rule, e.Err)
	}

	return fmt.Sprintf("rule %q: feature %q: %s", e.Rule, e.Feature, e.Err)
}

// Unwrap exposes the wrapped sentinel for errors.Is/errors.As.
func (e *ScoreError) Unwrap() error {
	return e.Err
}

// WrapScore wraps err as a ScoreError naming rule and feature.
func WrapScore(rule, feature string, err error) error {
	if err == nil {
		return nil
	}

	return &ScoreError{Rule: rule, Feature: feature, Err: err}
}
