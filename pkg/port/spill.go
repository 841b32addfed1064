package port

import "github.com/combinedb/combine/pkg/model"

// Cursor walks one sorted combine source in ascending key order.
type Cursor interface {
	// Peek returns the document under the cursor without advancing,
	// or nil once the source is exhausted.
	Peek() (*model.Document, error)
	// Advance moves the cursor to the next document.
	Advance() error
}

// SpillEngine persists immutable, key-sorted segments of accumulator
// state. Storage is private to one session and is removed on Close.
type SpillEngine interface {
	// WriteSegment persists docs, already sorted ascending by key,
	// as one new immutable segment.
	WriteSegment(docs []*model.Document) error

	// Segments returns the number of segments written so far.
	Segments() int

	// SegmentCursors opens one cursor per written segment, oldest
	// segment first. The release func ends the underlying read and
	// must be called once the cursors are no longer used.
	SegmentCursors() ([]Cursor, func() error, error)

	// Close releases all spill storage. It is idempotent.
	Close() error
}
