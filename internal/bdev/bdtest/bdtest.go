// Package bdtest checks a device implementation against the contract.
// Callers run `defer test.New(t)` and hand over a freshly constructed
// device of at least four blocks; the device is left dirty.
package bdtest

import (
	"github.com/allmad/blockdev/internal/bdev"
	"github.com/chzyer/test"
)

// Ioctl checks the control-channel rules every device must follow.
func Ioctl(d bdev.Ioctler) {
	{ // block count is the one required op
		ret, err := d.Ioctl(bdev.OpBlockCount, 0)
		test.Nil(err)
		test.True(ret.Valid)
		test.True(ret.Val > 0)
	}

	{ // block size answers an integer or null, null means 512
		ret, err := d.Ioctl(bdev.OpBlockSize, 0)
		test.Nil(err)
		size, err := bdev.BlockSize(d)
		test.Nil(err)
		if ret.Valid {
			test.Equal(size, ret.Val)
		} else {
			test.Equal(size, int64(bdev.DefaultBlockSize))
		}
	}

	{ // unknown ops answer null without an error
		ret, err := d.Ioctl(bdev.Op(1027), 42)
		test.Nil(err)
		test.True(!ret.Valid)
	}

	{ // geometry is immutable for the session
		g1, err := bdev.ReadGeometry(d)
		test.Nil(err)
		g2, err := bdev.ReadGeometry(d)
		test.Nil(err)
		test.Equal(g1, g2)
	}
}

// BlockDev checks the simple form: block-aligned round-trips and the
// bounds taxonomy.
func BlockDev(d bdev.BlockDev) {
	g, err := bdev.ReadGeometry(d)
	test.Nil(err)
	test.Nil(bdev.Init(d))
	bs := int(g.BlockSize)

	{ // whole-block round-trip over two blocks
		buf := test.SeqBytes(2 * bs)
		test.Nil(d.WriteBlocks(0, buf))
		got := make([]byte, 2*bs)
		test.Nil(d.ReadBlocks(0, got))
		test.EqualBytes(got, buf)
	}

	{ // round-trip at the last block
		buf := test.RandBytes(bs)
		test.Nil(d.WriteBlocks(g.BlockCount-1, buf))
		got := make([]byte, bs)
		test.Nil(d.ReadBlocks(g.BlockCount-1, got))
		test.EqualBytes(got, buf)
	}

	{ // a write replaces old contents entirely, erase is the
		// device's problem, never the caller's
		old := make([]byte, bs)
		for i := range old {
			old[i] = 0x0F
		}
		test.Nil(d.WriteBlocks(1, old))
		next := make([]byte, bs)
		for i := range next {
			next[i] = 0xF0
		}
		test.Nil(d.WriteBlocks(1, next))
		got := make([]byte, bs)
		test.Nil(d.ReadBlocks(1, got))
		// old AND next would be all-zero
		test.EqualBytes(got, next)
	}

	{ // out-of-range spans fail, no wrap, no clip
		buf := make([]byte, bs)
		test.Equal(d.ReadBlocks(g.BlockCount, buf), bdev.ErrOutOfRange)
		test.Equal(d.WriteBlocks(g.BlockCount, buf), bdev.ErrOutOfRange)
		buf2 := make([]byte, 2*bs)
		test.Equal(d.ReadBlocks(g.BlockCount-1, buf2), bdev.ErrOutOfRange)
		test.Equal(d.WriteBlocks(-1, buf), bdev.ErrOutOfRange)
	}

	{ // partial blocks are not a simple-form transfer
		buf := make([]byte, bs+1)
		test.Equal(d.ReadBlocks(0, buf), bdev.ErrUnaligned)
		test.Equal(d.WriteBlocks(0, buf), bdev.ErrUnaligned)
	}
}

// ByteDev checks the extended form: sub-block writes inside one erase
// cycle never disturb their neighbors.
func ByteDev(d bdev.ByteDev) {
	g, err := bdev.ReadGeometry(d)
	test.Nil(err)
	test.Nil(bdev.Init(d))
	bs := g.BlockSize

	test.Nil(bdev.Erase(d, 1))

	o1, o2 := int64(8), bs/2
	w1 := test.RandBytes(16)
	test.Nil(d.WriteBlocksAt(1, o1, w1))

	snap := make([]byte, bs)
	test.Nil(d.ReadBlocksAt(1, 0, snap))
	test.EqualBytes(snap[o1:o1+16], w1)

	w2 := test.RandBytes(16)
	test.Nil(d.WriteBlocksAt(1, o2, w2))

	got := make([]byte, bs)
	test.Nil(d.ReadBlocksAt(1, 0, got))
	test.EqualBytes(got[o2:o2+16], w2)
	// everything outside [o2, o2+16) kept the snapshot: the second
	// write did not re-erase the block
	test.EqualBytes(got[:o2], snap[:o2])
	test.EqualBytes(got[o2+16:], snap[o2+16:])

	{ // a span may cross into the next block
		test.Nil(bdev.Erase(d, 2))
		test.Nil(bdev.Erase(d, 3))
		buf := test.SeqBytes(int(bs))
		test.Nil(d.WriteBlocksAt(2, bs/2, buf))
		got := make([]byte, bs)
		test.Nil(d.ReadBlocksAt(2, bs/2, got))
		test.EqualBytes(got, buf)
	}

	{ // bounds taxonomy
		buf := make([]byte, 8)
		test.Equal(d.ReadBlocksAt(0, bs, buf), bdev.ErrBadOffset)
		test.Equal(d.WriteBlocksAt(0, -1, buf), bdev.ErrBadOffset)
		test.Equal(d.ReadBlocksAt(g.BlockCount, 0, buf), bdev.ErrOutOfRange)
		big := make([]byte, bs)
		test.Equal(d.WriteBlocksAt(g.BlockCount-1, 1, big), bdev.ErrOutOfRange)
	}
}
