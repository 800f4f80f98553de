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

package forest

import "github.com/ianlewis/pyramids/category"

// NodeSet is an equivalence class of ParseNodes sharing (start, end,
// category) — spec §3. Members accrete as rules fire; a NodeSet is never
// destroyed during a parse.
type NodeSet struct {
	handle Handle
	arena  *Arena

	Start, End int
	Category   category.Category

	members []Handle // ParseNode handles
	best    Handle    // member with the highest rolled-up score

	// parents are weak back-references to ParseNodes that include this
	// NodeSet as a component, used for upward score propagation.
	parents []Handle
}

// Handle returns s's arena handle.
func (s *NodeSet) Handle() Handle { return s.handle }

// Members returns every ParseNode in the set, in insertion order.
func (s *NodeSet) Members() []*ParseNode {
	out := make([]*ParseNode, len(s.members))
	for i, h := range s.members {
		out[i] = s.arena.Node(h)
	}

	return out
}

// Best returns the currently best-scoring member.
func (s *NodeSet) Best() *ParseNode {
	if s.best == 0 {
		return nil
	}

	return s.arena.Node(s.best)
}

// Parents returns the ParseNodes that have this NodeSet as a component.
func (s *NodeSet) Parents() []*ParseNode {
	out := make([]*ParseNode, len(s.parents))
	for i, h := range s.parents {
		out[i] = s.arena.Node(h)
	}

	return out
}

// addMember inserts node's handle if no equivalent member is already
// present (spec §8's chart-dedup property). Returns true if a genuinely
// new member joined.
func (s *NodeSet) addMember(h Handle) bool {
	node := s.arena.Node(h)
	key := node.equivKey()

	for _, existing := range s.members {
		if s.arena.Node(existing).equivKey() == key {
			return false
		}
	}

	s.members = append(s.members, h)
	node.parents = append(node.parents, s.handle)

	if s.best == 0 {
		s.best = h
	} else {
		rescoreNode(s.arena, h)

		if betterScore(s.arena.Node(h), s.arena.Node(s.best)) {
			s.best = h
		}
	}

	return true
}
