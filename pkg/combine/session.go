// Package combine implements the group-and-reduce core: documents
// validated against an annotated schema are grouped by extracted key,
// collapsed per key under the schema's reduction strategies within a
// bounded memory budget, and drained in ascending key order.
package combine

import (
	"container/heap"
	"fmt"
	"os"

	"github.com/combinedb/combine/internal/adapter/bbolt_engine"
	"github.com/combinedb/combine/internal/adapter/reducer"
	"github.com/combinedb/combine/internal/adapter/schema"
	"github.com/combinedb/combine/pkg/model"
	"github.com/combinedb/combine/pkg/port"
)

// DefaultMemoryBudget is the soft accumulator bound used when the
// config leaves MemoryBudget zero.
const DefaultMemoryBudget = 1 << 26

// Config carries the explicit per-session configuration. Sessions
// share no process-wide state.
type Config struct {
	// Schema is the fully-resolved JSON Schema, with reduce
	// annotations, that every document of the session must satisfy.
	Schema []byte
	// Key lists the JSON pointers forming the composite key.
	Key []string
	// MemoryBudget is the soft accumulator bound in bytes.
	// Zero selects DefaultMemoryBudget.
	MemoryBudget int64
	// SpillDir receives the session-private spill file.
	// Empty selects os.TempDir().
	SpillDir string
}

// Session is one complete group-and-reduce pass over a document
// stream. Add calls must be serialized by the caller; independent
// sessions may run fully in parallel.
type Session struct {
	schema   *schema.Schema
	key      []model.Pointer
	budget   int64
	spillDir string

	acc     *accumulator
	spill   port.SpillEngine
	iter    *Iterator
	failed  error
	drained bool
	closed  bool
}

// NewSession parses and checks the schema and key configuration.
// No document is processed if an error is returned.
func NewSession(cfg Config) (*Session, error) {
	sch, err := schema.Parse(cfg.Schema)
	if err != nil {
		return nil, err
	}

	if len(cfg.Key) == 0 {
		return nil, &port.SchemaError{Reason: "at least one key pointer is required"}
	}
	key := make([]model.Pointer, len(cfg.Key))
	for i, s := range cfg.Key {
		p, err := model.ParsePointer(s)
		if err != nil {
			return nil, &port.SchemaError{Reason: fmt.Sprintf("invalid key pointer %q: %v", s, err)}
		}
		key[i] = p
	}

	budget := cfg.MemoryBudget
	if budget == 0 {
		budget = DefaultMemoryBudget
	}
	spillDir := cfg.SpillDir
	if spillDir == "" {
		spillDir = os.TempDir()
	}

	return &Session{
		schema:   sch,
		key:      key,
		budget:   budget,
		spillDir: spillDir,
		acc:      newAccumulator(),
	}, nil
}

// Add validates doc, extracts its key and reduces it into the
// accumulator, spilling a sorted segment once the memory budget is
// exceeded. A validation or reduction error leaves the accumulator
// unchanged. A spill failure is fatal: the session latches it and
// every further add and drain returns it.
func (s *Session) Add(doc interface{}) error {
	if s.closed {
		return port.ErrSessionClosed
	}
	if s.drained {
		return port.ErrSessionDrained
	}
	if s.failed != nil {
		return s.failed
	}

	doc = model.Normalize(doc)
	if err := s.schema.Validate(doc); err != nil {
		return err
	}

	key := model.ExtractKey(doc, s.key)
	kb, err := key.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode key: %w", err)
	}

	if e, ok := s.acc.entries[string(kb)]; ok {
		reduced, err := reducer.Apply(s.schema.Root(), "", e.doc, doc)
		if err != nil {
			return err
		}
		s.acc.size += estimateSize(reduced) - estimateSize(e.doc)
		e.doc = reduced
	} else {
		s.acc.entries[string(kb)] = &entry{key: key, doc: doc}
		s.acc.size += estimateSize(key) + estimateSize(doc) + entryOverhead
	}

	if s.acc.size > s.budget {
		return s.spillAll()
	}
	return nil
}

// spillAll serializes the entire accumulator, sorted by key, into one
// new immutable segment and clears the in-memory state. A failure
// latches the session as failed.
func (s *Session) spillAll() error {
	if len(s.acc.entries) == 0 {
		return nil
	}
	if s.spill == nil {
		sp, err := bbolt_engine.Open(s.spillDir)
		if err != nil {
			s.failed = err
			return err
		}
		s.spill = sp
	}
	if err := s.spill.WriteSegment(s.acc.sortedDocs()); err != nil {
		s.failed = err
		return err
	}
	s.acc.reset()
	return nil
}

// Drain finalizes ingestion and returns the session's single merge
// iterator. If nothing was ever spilled the accumulator drains
// directly; otherwise remaining entries spill as a final segment and
// all segments merge-reduce uniformly.
func (s *Session) Drain() (*Iterator, error) {
	if s.closed {
		return nil, port.ErrSessionClosed
	}
	if s.drained {
		return nil, port.ErrSessionDrained
	}
	if s.failed != nil {
		return nil, s.failed
	}
	s.drained = true

	if s.spill == nil {
		s.iter = &Iterator{mem: s.acc.sortedDocs()}
		s.acc.reset()
		return s.iter, nil
	}

	if err := s.spillAll(); err != nil {
		return nil, err
	}

	cursors, release, err := s.spill.SegmentCursors()
	if err != nil {
		s.failed = err
		return nil, err
	}

	h := make(sourceHeap, 0, len(cursors))
	for i, cur := range cursors {
		head, err := cur.Peek()
		if err != nil {
			release() // nolint: errcheck
			s.failed = err
			return nil, err
		}
		if head != nil {
			h = append(h, &source{cursor: cur, index: i, head: head})
		}
	}
	heap.Init(&h)

	s.iter = &Iterator{
		merging: true,
		h:       h,
		release: release,
		root:    s.schema.Root(),
	}
	return s.iter, nil
}

// Close discards all accumulated state and removes spill storage.
// It is idempotent and safe on every success and failure path.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var err error
	if s.iter != nil {
		err = s.iter.Close()
	}
	if s.spill != nil {
		if cerr := s.spill.Close(); err == nil {
			err = cerr
		}
		s.spill = nil
	}
	s.acc = nil
	return err
}
