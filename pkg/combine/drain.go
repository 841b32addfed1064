package combine

import (
	"container/heap"

	"github.com/combinedb/combine/internal/adapter/reducer"
	"github.com/combinedb/combine/internal/adapter/schema"
	"github.com/combinedb/combine/pkg/model"
	"github.com/combinedb/combine/pkg/port"
)

// Iterator yields the final reduced documents in ascending key order.
// It is single-pass: one iterator exists per session and it cannot be
// restarted. Next returns (nil, nil) once the sequence is exhausted;
// after any error no further documents are yielded and already yielded
// documents must not be treated as a safe resumption point.
type Iterator struct {
	// fast path: fully in-memory accumulator snapshot
	mem []*model.Document
	pos int

	// merge path: one cursor per spill segment
	merging bool
	h       sourceHeap
	release func() error
	root    *schema.Node

	done bool
	err  error
}

// source is one sorted input of the k-way merge.
type source struct {
	cursor port.Cursor
	index  int
	head   *model.Document
}

func (it *Iterator) Next() (*model.Document, error) {
	if it.err != nil {
		return nil, it.err
	}
	if it.done {
		return nil, nil
	}

	if !it.merging {
		if it.pos >= len(it.mem) {
			it.finish()
			return nil, nil
		}
		doc := it.mem[it.pos]
		it.pos++
		return doc, nil
	}

	if it.h.Len() == 0 {
		it.finish()
		return nil, nil
	}

	// The heap orders by (key, segment index), so the first pop is
	// the globally smallest key from the oldest segment holding it.
	min := heap.Pop(&it.h).(*source)
	out := min.head

	// Documents for the same key split across segments reduce here,
	// pairwise in ascending segment order.
	for it.h.Len() > 0 && it.h[0].head.Key.Compare(out.Key) == 0 {
		tie := heap.Pop(&it.h).(*source)
		reduced, err := reducer.Apply(it.root, "", out.Value, tie.head.Value)
		if err != nil {
			return nil, it.fail(err)
		}
		out = &model.Document{Key: out.Key, Value: reduced}
		if err := it.push(tie); err != nil {
			return nil, it.fail(err)
		}
	}
	if err := it.push(min); err != nil {
		return nil, it.fail(err)
	}

	return out, nil
}

// push advances the source past its consumed head and re-enters it
// into the heap while documents remain.
func (it *Iterator) push(s *source) error {
	if err := s.cursor.Advance(); err != nil {
		return err
	}
	head, err := s.cursor.Peek()
	if err != nil {
		return err
	}
	if head != nil {
		s.head = head
		heap.Push(&it.h, s)
	}
	return nil
}

func (it *Iterator) fail(err error) error {
	it.err = err
	it.releaseOnce()
	return err
}

func (it *Iterator) finish() {
	it.done = true
	it.releaseOnce()
}

// Close ends the merge early, releasing the underlying segment read.
// It is idempotent and called by Session.Close.
func (it *Iterator) Close() error {
	if !it.done && it.err == nil {
		it.done = true
	}
	return it.releaseOnce()
}

func (it *Iterator) releaseOnce() error {
	if it.release == nil {
		return nil
	}
	release := it.release
	it.release = nil
	return release()
}

type sourceHeap []*source

func (h sourceHeap) Len() int { return len(h) }

func (h sourceHeap) Less(i, j int) bool {
	if c := h[i].head.Key.Compare(h[j].head.Key); c != 0 {
		return c < 0
	}
	return h[i].index < h[j].index
}

func (h sourceHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *sourceHeap) Push(x interface{}) {
	*h = append(*h, x.(*source))
}

func (h *sourceHeap) Pop() interface{} {
	old := *h
	n := len(old)
	s := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return s
}
