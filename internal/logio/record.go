// Package logio appends CRC-framed records to a block device through
// the extended addressing form. The writer owns the erase cycle: each
// block is erased once, right before the head first enters it, and all
// sub-block writes inside the block rely on the device never erasing
// implicitly.
package logio

import (
	"encoding/binary"
	"math"

	"github.com/chzyer/logex"
	"github.com/klauspost/crc32"
)

// in binary:
// +-------+--------+-----+------+
// | magic | length | crc | data |
// +-------+--------+-----+------+
// | 2     | 4      | 4   | ...  |
// +-------+--------+-----+------+
const (
	sizeMagic  = 2
	sizeLength = 4
	sizeCrc    = 4

	offsetLength = sizeMagic
	offsetCrc    = offsetLength + sizeLength

	HeaderSize    = sizeMagic + sizeLength + sizeCrc
	MaxRecordSize = math.MaxUint16
)

// distinct from both erased flash (0xFF) and a blank image (0x00)
var magicBytes = []byte{0x9b, 0x51}

var (
	ErrMagicNotMatch    = logex.Define("record magic not match")
	ErrChecksumNotMatch = logex.Define("record checksum not match")
	ErrRecordTooLarge   = logex.Define("record size exceed limit")
)

func encodeRecord(data []byte) []byte {
	buf := make([]byte, HeaderSize+len(data))
	copy(buf, magicBytes)
	binary.LittleEndian.PutUint32(buf[offsetLength:], uint32(len(data)))
	binary.LittleEndian.PutUint32(buf[offsetCrc:], crc32.ChecksumIEEE(data))
	copy(buf[HeaderSize:], data)
	return buf
}

type header struct {
	length uint32
	crc    uint32
}

// blank reports an end-of-log hole: the header sits in bytes the
// writer never touched, all-erased or all-zero.
func parseHeader(b []byte) (h header, blank bool, err error) {
	if b[0] == magicBytes[0] && b[1] == magicBytes[1] {
		h.length = binary.LittleEndian.Uint32(b[offsetLength:])
		h.crc = binary.LittleEndian.Uint32(b[offsetCrc:])
		if h.length > MaxRecordSize {
			return h, false, ErrRecordTooLarge.Trace(h.length)
		}
		return h, false, nil
	}
	if (b[0] == 0x00 && b[1] == 0x00) || (b[0] == 0xFF && b[1] == 0xFF) {
		return h, true, nil
	}
	return h, false, ErrMagicNotMatch.Trace(b[0], b[1])
}
