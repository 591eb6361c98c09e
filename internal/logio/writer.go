package logio

import (
	"github.com/allmad/blockdev/internal/bdev"
	"github.com/chzyer/logex"
)

var ErrLogFull = logex.Define("log reached the end of the device")

type Writer struct {
	dev bdev.ByteDev
	geo bdev.Geometry

	head   int64 // byte offset of the next write
	erased int64 // blocks erased in this pass, counting from 0
}

// NewWriter reads the geometry once and keeps it for the session.
func NewWriter(dev bdev.ByteDev) (*Writer, error) {
	geo, err := bdev.ReadGeometry(dev)
	if err != nil {
		return nil, logex.Trace(err)
	}
	return &Writer{dev: dev, geo: geo}, nil
}

// Offset is the byte offset the next record will land on.
func (w *Writer) Offset() int64 {
	return w.head
}

// Append writes one framed record and returns its byte offset.
func (w *Writer) Append(data []byte) (int64, error) {
	if len(data) > MaxRecordSize {
		return 0, ErrRecordTooLarge.Trace(len(data))
	}
	rec := encodeRecord(data)
	if w.head+int64(len(rec)) > w.geo.Size() {
		return 0, ErrLogFull.Trace(w.head, len(rec))
	}
	off := w.head
	if err := w.writeAt(rec, off); err != nil {
		return 0, logex.Trace(err)
	}
	w.head += int64(len(rec))
	return off, nil
}

// writeAt splits the buffer on block boundaries so every block can be
// erased exactly once, before the head first enters it. The writes
// themselves are extended-form and never trigger an erase on the
// device, that is the whole point of using this form.
func (w *Writer) writeAt(b []byte, off int64) error {
	for len(b) > 0 {
		num := off / w.geo.BlockSize
		blkOff := off % w.geo.BlockSize
		for w.erased <= num {
			if err := bdev.Erase(w.dev, w.erased); err != nil {
				return logex.Trace(err)
			}
			w.erased++
		}
		n := w.geo.BlockSize - blkOff
		if int64(len(b)) < n {
			n = int64(len(b))
		}
		if err := w.dev.WriteBlocksAt(num, blkOff, b[:n]); err != nil {
			return logex.Trace(err)
		}
		b = b[n:]
		off += n
	}
	return nil
}

func (w *Writer) Sync() error {
	return logex.Trace(bdev.Sync(w.dev))
}
