package bdev

import "github.com/chzyer/logex"

// Geometry is the shape a device reported via OpBlockCount/OpBlockSize.
// Both values are fixed for the session: consumers read them once at
// mount time and never re-query per operation.
type Geometry struct {
	BlockSize  int64
	BlockCount int64
}

func ReadGeometry(d Ioctler) (Geometry, error) {
	count, err := BlockCount(d)
	if err != nil {
		return Geometry{}, logex.Trace(err)
	}
	size, err := BlockSize(d)
	if err != nil {
		return Geometry{}, logex.Trace(err)
	}
	return Geometry{BlockSize: size, BlockCount: count}, nil
}

// Size is the device size in bytes.
func (g Geometry) Size() int64 {
	return g.BlockSize * g.BlockCount
}

// CheckBlocks validates a simple-form transfer of n bytes at block num.
func (g Geometry) CheckBlocks(num int64, n int) error {
	if n%int(g.BlockSize) != 0 {
		return ErrUnaligned.Trace(n, g.BlockSize)
	}
	if num < 0 || num+int64(n)/g.BlockSize > g.BlockCount {
		return ErrOutOfRange.Trace(num, n)
	}
	return nil
}

// CheckSpan validates an extended-form transfer of n bytes starting at
// byte off inside block num. The span may run into following blocks but
// must not run off the device.
func (g Geometry) CheckSpan(num, off int64, n int) error {
	if off < 0 || off >= g.BlockSize {
		return ErrBadOffset.Trace(off)
	}
	if num < 0 || num >= g.BlockCount {
		return ErrOutOfRange.Trace(num)
	}
	if num*g.BlockSize+off+int64(n) > g.Size() {
		return ErrOutOfRange.Trace(num, off, n)
	}
	return nil
}
