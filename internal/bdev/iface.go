// Package bdev defines the contract between a block-addressable
// filesystem layer and raw storage: two addressing forms and a
// multiplexed control channel.
package bdev

import (
	"strconv"

	"github.com/chzyer/logex"
)

// DefaultBlockSize is assumed when a device answers null to OpBlockSize.
const DefaultBlockSize = 512

var (
	ErrOutOfRange   = logex.Define("block address out of range")
	ErrBadOffset    = logex.Define("byte offset out of range")
	ErrUnaligned    = logex.Define("buffer is not a multiple of the block size")
	ErrNoBlockCount = logex.Define("device does not report a block count")
	ErrControlCode  = logex.Define("control op %v: error code %v")
)

type Op int32

// Ops 1-6 are reserved by the contract, higher values are
// implementation-defined. An implementation answers an op it does not
// recognize with a null result, never an error.
const (
	OpInit Op = iota + 1
	OpDeinit
	OpSync
	OpBlockCount
	OpBlockSize
	OpEraseBlock
)

func (o Op) String() string {
	switch o {
	case OpInit:
		return "init"
	case OpDeinit:
		return "deinit"
	case OpSync:
		return "sync"
	case OpBlockCount:
		return "blockcount"
	case OpBlockSize:
		return "blocksize"
	case OpEraseBlock:
		return "eraseblock"
	}
	return "op#" + strconv.Itoa(int(o))
}

// Result is the outcome of a control op: an integer or null. A null
// result is a success, it means the op has nothing to report.
type Result struct {
	Val   int64
	Valid bool
}

func Int(v int64) Result { return Result{Val: v, Valid: true} }

func Null() Result { return Result{} }

// Ioctler is the control channel every device carries regardless of
// which addressing form it implements.
type Ioctler interface {
	Ioctl(op Op, arg int64) (Result, error)
}

// BlockDev is the simple form: whole-block, block-aligned transfers.
// WriteBlocks erases the target blocks first on media that requires
// erase-before-write, the caller never erases.
type BlockDev interface {
	Ioctler
	ReadBlocks(num int64, b []byte) error
	WriteBlocks(num int64, b []byte) error
}

// ByteDev is the extended form: transfers start at a byte offset inside
// a block and may span into the blocks that follow. Writes never erase,
// not even at offset 0; the caller issues OpEraseBlock beforehand. The
// asymmetry against BlockDev.WriteBlocks is deliberate: extended-form
// callers run several sub-block writes inside one erase cycle.
type ByteDev interface {
	Ioctler
	ReadBlocksAt(num, off int64, b []byte) error
	WriteBlocksAt(num, off int64, b []byte) error
}

// -----------------------------------------------------------------------------

type Caps int

const (
	CapBlock Caps = 1 << iota
	CapByte
)

func (c Caps) Has(c2 Caps) bool {
	return c&c2 == c2
}

func (c Caps) String() string {
	switch {
	case c.Has(CapBlock | CapByte):
		return "block+byte"
	case c.Has(CapBlock):
		return "block"
	case c.Has(CapByte):
		return "byte"
	}
	return "none"
}

// DetectCaps reports which addressing forms a device implements. The
// filesystem layer runs this once at mount time, the capability is a
// property of the implementation and is not negotiated per call.
func DetectCaps(d Ioctler) Caps {
	var c Caps
	if _, ok := d.(BlockDev); ok {
		c |= CapBlock
	}
	if _, ok := d.(ByteDev); ok {
		c |= CapByte
	}
	return c
}
