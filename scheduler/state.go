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

// Package scheduler implements spec §4.7: the priority-set insertion
// queue and the process_node/process_all/process_necessary driving loop
// that turns queued candidates into chart members and, transitively,
// into newly-fired branch-rule candidates.
//
// ParserState satisfies rules.State structurally, so scheduler depends on
// rules, chart, and forest, but neither rules nor chart import scheduler.
package scheduler

import (
	"sort"
	"time"

	"github.com/ianlewis/pyramids/chart"
	"github.com/ianlewis/pyramids/forest"
	"github.com/ianlewis/pyramids/rules"
)

// ParserState holds everything a single parse accumulates: the arena, the
// chart built over it, the insertion queue, the current root set, and a
// reference to the model's branch rules and property-promotion rules
// (spec §3's ParserState).
type ParserState struct {
	arena       *forest.Arena
	chrt        *chart.Chart
	queue       *priorityQueue
	props       rules.Properties
	branchRules []rules.BranchRule

	roots      map[forest.Handle]bool // currently-root NodeSet handles
	rootsAdded map[forest.Handle]bool // NodeSets ever registered as root
	tokenCount int
}

// New returns a fresh ParserState. branchRules is fired, in order, every
// time a NodeSet is newly registered in the chart (spec §4.7 step 5).
func New(props rules.Properties, branchRules []rules.BranchRule) *ParserState {
	return &ParserState{
		arena:       forest.NewArena(),
		chrt:        chart.New(),
		queue:       newPriorityQueue(),
		props:       props,
		branchRules: branchRules,
		roots:       make(map[forest.Handle]bool),
		rootsAdded:  make(map[forest.Handle]bool),
	}
}

// Chart, Arena, Queue, and Properties satisfy rules.State.
func (s *ParserState) Chart() rules.ChartView       { return s.chrt }
func (s *ParserState) Arena() *forest.Arena         { return s.arena }
func (s *ParserState) Queue() rules.Queue           { return s.queue }
func (s *ParserState) Properties() rules.Properties { return s.props }

// NoteToken records that one more token has been appended to the token
// sequence, for IsCovered's whole-span check. Called once per token by
// the parsing driver's AddToken.
func (s *ParserState) NoteToken() { s.tokenCount++ }

// TokenCount returns the number of tokens added so far.
func (s *ParserState) TokenCount() int { return s.tokenCount }

// HasPending reports whether the insertion queue still holds candidates.
func (s *ParserState) HasPending() bool { return s.queue.Len() > 0 }

// IsCovered reports whether some root NodeSet spans the entire token
// sequence realized so far (spec §4.7/§4.8's fast-parse early exit).
func (s *ParserState) IsCovered() bool {
	for h := range s.roots {
		ns := s.arena.NodeSet(h)
		if ns.End-ns.Start >= s.tokenCount {
			return true
		}
	}

	return false
}

// Roots returns every current root NodeSet (spec §3's "set of root
// NodeSets"), sorted by (start, end, category name) for deterministic
// snapshotting into a Parse.
func (s *ParserState) Roots() []*forest.NodeSet {
	out := make([]*forest.NodeSet, 0, len(s.roots))
	for h := range s.roots {
		out = append(out, s.arena.NodeSet(h))
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}

		if out[i].End != out[j].End {
			return out[i].End < out[j].End
		}

		return out[i].Category.Name < out[j].Category.Name
	})

	return out
}

func withinDeadline(deadline time.Time) bool {
	return deadline.IsZero() || time.Now().Before(deadline)
}

// ProcessNode implements spec §4.7's process_node: pop the next
// candidate, register its owning NodeSet in the chart (dropping it if
// that adds nothing new), retire its components from the root set,
// register its own NodeSet as a root if it has never been one, then fire
// every branch rule against that NodeSet. Returns true if the queue is
// non-empty afterward.
func (s *ParserState) ProcessNode(deadline time.Time) bool {
	for s.queue.Len() > 0 && withinDeadline(deadline) {
		node := s.queue.pop()

		ns := node.NodeSet()
		if !s.chrt.Add(ns) {
			continue
		}

		if !node.IsLeaf() {
			for _, c := range node.Components {
				delete(s.roots, c)
			}
		}

		if !s.rootsAdded[ns.Handle()] {
			s.rootsAdded[ns.Handle()] = true
			s.roots[ns.Handle()] = true
		}

		for _, br := range s.branchRules {
			br.Fire(s, ns)
		}

		break
	}

	return s.queue.Len() > 0
}

// ProcessAll implements spec §4.7's process_all: drain the queue or run
// out the deadline.
func (s *ParserState) ProcessAll(deadline time.Time) {
	for s.ProcessNode(deadline) && withinDeadline(deadline) {
	}
}

// ProcessNecessary implements spec §4.7's process_necessary: stop as
// soon as some root NodeSet covers the whole input, or the queue/deadline
// runs out first.
func (s *ParserState) ProcessNecessary(deadline time.Time) {
	for !s.IsCovered() && s.ProcessNode(deadline) && withinDeadline(deadline) {
	}
}
