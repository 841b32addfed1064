package bbolt_engine

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	uuid "github.com/satori/go.uuid"
	"go.etcd.io/bbolt"

	"github.com/combinedb/combine/pkg/model"
	"github.com/combinedb/combine/pkg/port"
)

var _ port.SpillEngine = (*Spill)(nil)

// Spill stores the spill segments of one combine session in a
// session-private bbolt file. Each segment is one bucket whose
// big-endian sequence keys replay the segment in sorted key order.
type Spill struct {
	path     string
	db       *bbolt.DB
	segments int
}

// Open creates the session's spill file under dir.
func Open(dir string) (*Spill, error) {
	path := filepath.Join(dir, fmt.Sprintf("combine-%s.spill", uuid.NewV4()))
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, &port.IOError{Op: fmt.Sprintf("open %q", path), Err: err}
	}
	return &Spill{
		path: path,
		db:   db,
	}, nil
}

func (s *Spill) String() string {
	return fmt.Sprintf("<Spill path=%q segments=%d>", s.path, s.segments)
}

func segmentBucket(n int) []byte {
	return []byte(fmt.Sprintf("segment-%08d", n))
}

func (s *Spill) WriteSegment(docs []*model.Document) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucket(segmentBucket(s.segments))
		if err != nil {
			return err
		}

		var seq [8]byte
		for i, doc := range docs {
			binary.BigEndian.PutUint64(seq[:], uint64(i))
			value, err := encMode.Marshal(segmentRecord{Key: doc.Key, Doc: doc.Value})
			if err != nil {
				return err
			}
			if err := bucket.Put(seq[:], value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return &port.IOError{Op: fmt.Sprintf("write segment %d", s.segments), Err: err}
	}

	s.segments++
	return nil
}

func (s *Spill) Segments() int {
	return s.segments
}

// SegmentCursors opens one cursor per segment over a single read
// transaction. The release func ends that transaction.
func (s *Spill) SegmentCursors() ([]port.Cursor, func() error, error) {
	tx, err := s.db.Begin(false)
	if err != nil {
		return nil, nil, &port.IOError{Op: "read", Err: err}
	}

	cursors := make([]port.Cursor, s.segments)
	for i := range cursors {
		bucket := tx.Bucket(segmentBucket(i))
		if bucket == nil {
			tx.Rollback() // nolint: errcheck
			return nil, nil, &port.IOError{Op: "read", Err: fmt.Errorf("segment %d is missing", i)}
		}
		cursors[i] = &segmentCursor{cursor: bucket.Cursor()}
	}

	return cursors, tx.Rollback, nil
}

// Close releases the spill file. Idempotent; segments never outlive
// their session.
func (s *Spill) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil

	if rmErr := os.Remove(s.path); err == nil {
		err = rmErr
	}
	return err
}
