/******************************************************************************************[Heap.h]
Copyright (c) 2003-2006, Niklas Een, Niklas Sorensson
Copyright (c) 2007-2010, Niklas Sorensson

Permission is hereby granted, free of charge, to any person obtaining a copy of this software and
associated documentation files (the "Software"), to deal in the Software without restriction,
including without limitation the rights to use, copy, modify, merge, publish, distribute,
sublicense, and/or sell copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all copies or
substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR IMPLIED, INCLUDING BUT
NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND
NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM,
DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT
OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
**************************************************************************************************/

package nodequeue

import "github.com/opticore/bbsearch/domain"

// BestBound is the reference Queue: a binary heap (no decrease-key) ordered by
// (LowerBound, Estimate), structurally the same percolateUp/percolateDown
// heap a SAT solver uses to keep its most-active variable at the root, here
// keyed on bound quality instead of activity.
type BestBound struct {
	content []OpenNode
	upCount, downCount map[int]int
}

// NewBestBound builds an empty queue.
func NewBestBound() *BestBound {
	return &BestBound{upCount: map[int]int{}, downCount: map[int]int{}}
}

func (q *BestBound) less(i, j int) bool {
	if q.content[i].LowerBound != q.content[j].LowerBound {
		return q.content[i].LowerBound < q.content[j].LowerBound
	}
	return q.content[i].Estimate < q.content[j].Estimate
}

func left(i int) int   { return i*2 + 1 }
func right(i int) int  { return (i + 1) * 2 }
func parent(i int) int { return (i - 1) >> 1 }

func (q *BestBound) percolateUp(i int) {
	x := q.content[i]
	p := parent(i)
	for i != 0 && q.lessThan(x, q.content[p]) {
		q.content[i] = q.content[p]
		i = p
		p = parent(p)
	}
	q.content[i] = x
}

func (q *BestBound) lessThan(a, b OpenNode) bool {
	if a.LowerBound != b.LowerBound {
		return a.LowerBound < b.LowerBound
	}
	return a.Estimate < b.Estimate
}

func (q *BestBound) percolateDown(i int) {
	x := q.content[i]
	for left(i) < len(q.content) {
		child := left(i)
		if right(i) < len(q.content) && q.lessThan(q.content[right(i)], q.content[left(i)]) {
			child = right(i)
		}
		if !q.lessThan(q.content[child], x) {
			break
		}
		q.content[i] = q.content[child]
		i = child
	}
	q.content[i] = x
}

func (q *BestBound) EmplaceNode(n OpenNode) {
	q.content = append(q.content, n)
	q.percolateUp(len(q.content) - 1)
	if last := lastChange(n.DomChgStack); last != nil {
		if last.Side == domain.Lower {
			q.upCount[last.Column]++
		} else {
			q.downCount[last.Column]++
		}
	}
}

func lastChange(changes []domain.Change) *domain.Change {
	if len(changes) == 0 {
		return nil
	}
	return &changes[len(changes)-1]
}

func (q *BestBound) NumNodesUp(col int) int   { return q.upCount[col] }
func (q *BestBound) NumNodesDown(col int) int { return q.downCount[col] }

func (q *BestBound) Pop() (OpenNode, bool) {
	if len(q.content) == 0 {
		return OpenNode{}, false
	}
	top := q.content[0]
	last := len(q.content) - 1
	q.content[0] = q.content[last]
	q.content = q.content[:last]
	if len(q.content) > 0 {
		q.percolateDown(0)
	}
	if last := lastChange(top.DomChgStack); last != nil {
		if last.Side == domain.Lower {
			q.upCount[last.Column]--
		} else {
			q.downCount[last.Column]--
		}
	}
	return top, true
}

func (q *BestBound) Len() int { return len(q.content) }
