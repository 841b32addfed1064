package bbolt_engine

import (
	"go.etcd.io/bbolt"

	"github.com/combinedb/combine/pkg/model"
	"github.com/combinedb/combine/pkg/port"
)

var _ port.Cursor = (*segmentCursor)(nil)

// segmentCursor replays one immutable spill segment in written, i.e.
// sorted key, order.
type segmentCursor struct {
	cursor  *bbolt.Cursor
	started bool
	head    *model.Document
}

func (c *segmentCursor) Peek() (*model.Document, error) {
	if !c.started {
		c.started = true
		_, value := c.cursor.First()
		if err := c.decode(value); err != nil {
			return nil, err
		}
	}
	return c.head, nil
}

func (c *segmentCursor) Advance() error {
	if _, err := c.Peek(); err != nil {
		return err
	}
	_, value := c.cursor.Next()
	return c.decode(value)
}

func (c *segmentCursor) decode(value []byte) error {
	if value == nil {
		c.head = nil
		return nil
	}

	var rec segmentRecord
	if err := decMode.Unmarshal(value, &rec); err != nil {
		c.head = nil
		return &port.IOError{Op: "read segment record", Err: err}
	}
	c.head = &model.Document{Key: rec.Key, Value: rec.Doc}
	return nil
}
