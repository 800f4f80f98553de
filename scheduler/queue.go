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

package scheduler

import (
	"container/heap"

	"github.com/ianlewis/pyramids/forest"
)

// queueItem is one candidate sitting in the priority queue, along with
// the priority key computed at push time (spec §4.7: "a min-heap keyed
// by (same_rule_count_already_queued - score, -confidence)"). The key is
// frozen at push time, not recomputed on pop, mirroring the source
// system's own heap semantics.
type queueItem struct {
	node    *forest.ParseNode
	key1    float64 // same_rule_count - score
	key2    float64 // -confidence
	counter int     // stable FIFO tiebreak
}

// nodeHeap is the container/heap.Interface backing priorityQueue.
type nodeHeap []*queueItem

func (h nodeHeap) Len() int { return len(h) }

func (h nodeHeap) Less(i, j int) bool {
	if h[i].key1 != h[j].key1 {
		return h[i].key1 < h[j].key1
	}

	if h[i].key2 != h[j].key2 {
		return h[i].key2 < h[j].key2
	}

	return h[i].counter < h[j].counter
}

func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *nodeHeap) Push(x any) { *h = append(*h, x.(*queueItem)) } //nolint:forcetypeassert

func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]

	return item
}

// priorityQueue is spec §4.7's insertion_queue: a priority set combining
// a min-heap with a membership set so pushing an already-queued node is
// a no-op. Satisfies rules.Queue via Push.
type priorityQueue struct {
	heap    nodeHeap
	seen    map[forest.Handle]bool
	counter int
}

func newPriorityQueue() *priorityQueue {
	return &priorityQueue{seen: make(map[forest.Handle]bool)}
}

func (q *priorityQueue) Len() int { return len(q.heap) }

// Push implements rules.Queue. same_rule_count is computed by scanning
// the nodes currently queued, exactly as the source system's insertion
// key does, "to force highly-recursive rules to take a back seat to
// those that are well-behaved."
func (q *priorityQueue) Push(node *forest.ParseNode) {
	if q.seen[node.Handle()] {
		return
	}

	q.seen[node.Handle()] = true

	sameRuleCount := 0

	for _, item := range q.heap {
		if item.node.Rule == node.Rule {
			sameRuleCount++
		}
	}

	item := &queueItem{
		node:    node,
		key1:    float64(sameRuleCount) - node.Score(),
		key2:    -node.Weight(),
		counter: q.counter,
	}
	q.counter++

	heap.Push(&q.heap, item)
}

// pop removes and returns the highest-priority (smallest-key) node.
func (q *priorityQueue) pop() *forest.ParseNode {
	item := heap.Pop(&q.heap).(*queueItem) //nolint:forcetypeassert
	delete(q.seen, item.node.Handle())

	return item.node
}
