package memdev

import (
	"testing"

	"github.com/allmad/blockdev/internal/bdev"
	"github.com/allmad/blockdev/internal/bdev/bdtest"
	"github.com/chzyer/test"
)

func TestMemConformance(t *testing.T) {
	defer test.New(t)

	cfg := &Config{BlockSize: 512, BlockCount: 16}
	bdtest.Ioctl(New(cfg))
	bdtest.BlockDev(New(cfg))
	bdtest.ByteDev(New(cfg))
}

func TestMemHiddenBlockSize(t *testing.T) {
	defer test.New(t)

	d := New(&Config{BlockCount: 16})
	test.Equal(d.Geometry().BlockSize, int64(bdev.DefaultBlockSize))

	ret, err := d.Ioctl(bdev.OpBlockSize, 0)
	test.Nil(err)
	test.True(!ret.Valid)

	// the consumer falls back to the default on its own
	size, err := bdev.BlockSize(d)
	test.Nil(err)
	test.Equal(size, int64(bdev.DefaultBlockSize))

	bdtest.Ioctl(d)
}

func TestMemEraseIntercept(t *testing.T) {
	defer test.New(t)

	d := New(&Config{BlockSize: 512, BlockCount: 4})

	// RAM does not need the erase cycle: the op reports success and
	// the data stays put
	buf := test.SeqBytes(512)
	test.Nil(d.WriteBlocks(1, buf))
	test.Nil(bdev.Erase(d, 1))
	got := make([]byte, 512)
	test.Nil(d.ReadBlocks(1, got))
	test.EqualBytes(got, buf)

	// a bad block address is still an error code
	test.NotNil(bdev.Erase(d, 4))
	test.NotNil(bdev.Erase(d, -1))
}

func TestMemLifecycle(t *testing.T) {
	defer test.New(t)

	d := New(&Config{BlockSize: 512, BlockCount: 4})
	test.True(!d.State().After(bdev.StateInitialized))

	// reads before OpInit are allowed, the device brings itself up
	buf := make([]byte, 512)
	test.Nil(d.ReadBlocks(0, buf))
	test.True(d.State().After(bdev.StateInitialized))

	test.Nil(bdev.Shutdown(d))
	test.True(d.State().After(bdev.StateShutdown))
}
