package logio

import (
	"io"

	"github.com/allmad/blockdev/internal/bdev"
	"github.com/chzyer/logex"
	"github.com/klauspost/crc32"
)

type Reader struct {
	dev bdev.ByteDev
	geo bdev.Geometry
	off int64
}

func NewReader(dev bdev.ByteDev) (*Reader, error) {
	geo, err := bdev.ReadGeometry(dev)
	if err != nil {
		return nil, logex.Trace(err)
	}
	return &Reader{dev: dev, geo: geo}, nil
}

func (r *Reader) Offset() int64 {
	return r.off
}

// Next returns the payload of the next record. io.EOF reports a clean
// end of the log: the device ran out or the header bytes were never
// written.
func (r *Reader) Next() ([]byte, error) {
	if r.off+HeaderSize > r.geo.Size() {
		return nil, io.EOF
	}
	hdr := make([]byte, HeaderSize)
	if err := r.readAt(hdr, r.off); err != nil {
		return nil, logex.Trace(err)
	}
	h, blank, err := parseHeader(hdr)
	if err != nil {
		return nil, logex.Trace(err)
	}
	if blank {
		return nil, io.EOF
	}
	if r.off+HeaderSize+int64(h.length) > r.geo.Size() {
		return nil, ErrRecordTooLarge.Trace(h.length)
	}

	data := make([]byte, h.length)
	if err := r.readAt(data, r.off+HeaderSize); err != nil {
		return nil, logex.Trace(err)
	}
	if crc32.ChecksumIEEE(data) != h.crc {
		return nil, ErrChecksumNotMatch.Trace(r.off)
	}
	r.off += HeaderSize + int64(h.length)
	return data, nil
}

// extended-form reads may span blocks, one call is enough
func (r *Reader) readAt(b []byte, off int64) error {
	num := off / r.geo.BlockSize
	blkOff := off % r.geo.BlockSize
	return logex.Trace(r.dev.ReadBlocksAt(num, blkOff, b))
}
