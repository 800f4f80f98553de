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
	"github.com/ianlewis/pyramids/category"
	"github.com/ianlewis/pyramids/forest"
)

// fakeChart is a minimal ChartView backed by a flat list of NodeSets, used
// to test branch-rule firing without a real chart package (rules must not
// import chart).
type fakeChart struct {
	sets []*forest.NodeSet
}

func (c *fakeChart) add(ns *forest.NodeSet) { c.sets = append(c.sets, ns) }

func (c *fakeChart) MaxEnd() int {
	max := 0
	for _, ns := range c.sets {
		if ns.End > max {
			max = ns.End
		}
	}

	return max
}

func (c *fakeChart) ForwardMatches(start int, query category.Category) []*forest.NodeSet {
	var out []*forest.NodeSet

	for _, ns := range c.sets {
		if ns.Start == start && category.Subsumes(query, ns.Category) {
			out = append(out, ns)
		}
	}

	return out
}

func (c *fakeChart) BackwardMatches(end int, query category.Category) []*forest.NodeSet {
	var out []*forest.NodeSet

	for _, ns := range c.sets {
		if ns.End == end && category.Subsumes(query, ns.Category) {
			out = append(out, ns)
		}
	}

	return out
}

// fakeQueue records every pushed node.
type fakeQueue struct {
	pushed []*forest.ParseNode
}

func (q *fakeQueue) Push(n *forest.ParseNode) { q.pushed = append(q.pushed, n) }

// fakeProperties is a no-op Properties (no any/all-promoted properties).
type fakeProperties struct {
	any, all []string
}

func (p *fakeProperties) Extend(c category.Category) category.Category { return c }
func (p *fakeProperties) AnyPromoted() []string                        { return p.any }
func (p *fakeProperties) AllPromoted() []string                        { return p.all }

// fakeState wires a fakeChart/fakeQueue/fakeProperties/forest.Arena
// together to satisfy State for tests.
type fakeState struct {
	chart *fakeChart
	arena *forest.Arena
	queue *fakeQueue
	props *fakeProperties
}

func newFakeState() *fakeState {
	return &fakeState{
		chart: &fakeChart{},
		arena: forest.NewArena(),
		queue: &fakeQueue{},
		props: &fakeProperties{},
	}
}

func (s *fakeState) Chart() ChartView       { return s.chart }
func (s *fakeState) Arena() *forest.Arena   { return s.arena }
func (s *fakeState) Queue() Queue           { return s.queue }
func (s *fakeState) Properties() Properties { return s.props }

// addLeaf adds a leaf NodeSet directly to both the arena and the fake
// chart, as the parsing driver's AddToken would.
func (s *fakeState) addLeaf(rule LeafRule, cat category.Category, start, end int, spelling string) *forest.NodeSet {
	res := s.arena.Add(rule, 0, cat, start, end, nil, spelling)
	s.chart.add(res.NodeSet)

	return res.NodeSet
}
