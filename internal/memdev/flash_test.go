package memdev

import (
	"testing"

	"github.com/allmad/blockdev/internal/bdev"
	"github.com/allmad/blockdev/internal/bdev/bdtest"
	"github.com/chzyer/test"
	"github.com/klauspost/crc32"
)

func TestFlashConformance(t *testing.T) {
	defer test.New(t)

	cfg := &Config{BlockSize: 512, BlockCount: 16}
	bdtest.Ioctl(NewFlash(cfg))
	bdtest.BlockDev(NewFlash(cfg))
	bdtest.ByteDev(NewFlash(cfg))
}

func TestFlashErasedState(t *testing.T) {
	defer test.New(t)

	d := NewFlash(&Config{BlockSize: 512, BlockCount: 4})
	buf := make([]byte, 512)
	test.Nil(d.ReadBlocks(0, buf))
	for _, b := range buf {
		test.Equal(b, byte(Erased))
	}
}

func TestFlashSimpleWriteErases(t *testing.T) {
	defer test.New(t)

	d := NewFlash(&Config{BlockSize: 512, BlockCount: 4})

	old := make([]byte, 512)
	for i := range old {
		old[i] = 0x0F
	}
	test.Nil(d.WriteBlocks(2, old))

	// without the implicit erase this would read 0x0F AND 0xF0 = 0x00
	next := make([]byte, 512)
	for i := range next {
		next[i] = 0xF0
	}
	test.Nil(d.WriteBlocks(2, next))

	got := make([]byte, 512)
	test.Nil(d.ReadBlocks(2, got))
	test.EqualBytes(got, next)
}

func TestFlashExtendedWriteNeverErases(t *testing.T) {
	defer test.New(t)

	d := NewFlash(&Config{BlockSize: 512, BlockCount: 4})
	test.Nil(bdev.Erase(d, 0))

	w1 := test.RandBytes(32)
	test.Nil(d.WriteBlocksAt(0, 0, w1))

	// offset 0 is not a license to erase
	w2 := test.RandBytes(32)
	test.Nil(d.WriteBlocksAt(0, 0, w2))

	got := make([]byte, 32)
	test.Nil(d.ReadBlocksAt(0, 0, got))
	for i := range got {
		test.Equal(got[i], w1[i]&w2[i])
	}

	// the rest of the block is still erased
	rest := make([]byte, 512-32)
	test.Nil(d.ReadBlocksAt(0, 32, rest))
	for _, b := range rest {
		test.Equal(b, byte(Erased))
	}
}

func TestFlashEraseBlock(t *testing.T) {
	defer test.New(t)

	d := NewFlash(&Config{BlockSize: 512, BlockCount: 4})

	zero := make([]byte, 1024)
	test.Nil(d.WriteBlocks(1, zero))
	test.Nil(bdev.Erase(d, 1))

	// only block 1 went back to the erased state
	got := make([]byte, 512)
	test.Nil(d.ReadBlocks(1, got))
	for _, b := range got {
		test.Equal(b, byte(Erased))
	}
	test.Nil(d.ReadBlocks(2, got))
	for _, b := range got {
		test.Equal(b, byte(0))
	}

	test.NotNil(bdev.Erase(d, 4))
}

func TestFlashBlockCRC(t *testing.T) {
	defer test.New(t)

	d := NewFlash(&Config{BlockSize: 512, BlockCount: 4})
	buf := test.RandBytes(512)
	test.Nil(d.WriteBlocks(3, buf))

	ret, err := d.Ioctl(OpBlockCRC, 3)
	test.Nil(err)
	test.True(ret.Valid)
	test.Equal(uint32(ret.Val), crc32.ChecksumIEEE(buf))

	ret, err = d.Ioctl(OpBlockCRC, 99)
	test.Nil(err)
	test.Equal(ret.Val, int64(codeBadArg))
}
