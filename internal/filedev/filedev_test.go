package filedev

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/allmad/blockdev/internal/bdev"
	"github.com/allmad/blockdev/internal/bdev/bdtest"
	"github.com/chzyer/test"
)

func TestFileConformance(t *testing.T) {
	defer test.New(t)
	test.CleanTmp()

	newDev := func(name string) *File {
		root := test.Root()
		test.Nil(os.MkdirAll(root, 0755))
		d, err := Create(filepath.Join(root, name), 512, 16)
		test.Nil(err)
		return d
	}

	bdtest.Ioctl(newDev("i.img"))
	bdtest.BlockDev(newDev("b.img"))
	bdtest.ByteDev(newDev("e.img"))
}

func TestFileGeometryFromSize(t *testing.T) {
	defer test.New(t)
	test.CleanTmp()

	fpath := filepath.Join(test.Root(), "geom.img")
	test.Nil(os.MkdirAll(filepath.Dir(fpath), 0755))

	d, err := Create(fpath, 512, 64)
	test.Nil(err)
	test.Equal(d.Geometry(), bdev.Geometry{BlockSize: 512, BlockCount: 64})
	test.Nil(bdev.Shutdown(d))

	// geometry is derived from the image size on open
	d2, err := Open(fpath, nil)
	test.Nil(err)
	test.Equal(d2.Geometry(), bdev.Geometry{BlockSize: 512, BlockCount: 64})
	test.Nil(bdev.Shutdown(d2))

	// same image seen through a bigger block size
	d3, err := Open(fpath, &Config{BlockSize: 4096})
	test.Nil(err)
	test.Equal(d3.Geometry().BlockCount, int64(8))
	test.Nil(bdev.Shutdown(d3))
}

func TestFileBadImageSize(t *testing.T) {
	defer test.New(t)
	test.CleanTmp()

	fpath := filepath.Join(test.Root(), "odd.img")
	test.Nil(os.MkdirAll(filepath.Dir(fpath), 0755))
	test.Nil(os.WriteFile(fpath, make([]byte, 1000), 0644))

	_, err := Open(fpath, nil)
	test.Equal(err, ErrBadImageSize)
}

func TestFilePersistence(t *testing.T) {
	defer test.New(t)
	test.CleanTmp()

	fpath := filepath.Join(test.Root(), "persist.img")
	test.Nil(os.MkdirAll(filepath.Dir(fpath), 0755))

	d, err := Create(fpath, 512, 8)
	test.Nil(err)
	buf := test.SeqBytes(1024)
	test.Nil(d.WriteBlocks(2, buf))
	test.Nil(bdev.Sync(d))
	test.Nil(bdev.Shutdown(d))

	d2, err := Open(fpath, nil)
	test.Nil(err)
	got := make([]byte, 1024)
	test.Nil(d2.ReadBlocks(2, got))
	test.EqualBytes(got, buf)
	test.Nil(bdev.Shutdown(d2))
}

func TestFileShutdown(t *testing.T) {
	defer test.New(t)
	test.CleanTmp()

	root := test.Root()
	test.Nil(os.MkdirAll(root, 0755))
	d, err := Create(filepath.Join(root, "down.img"), 512, 8)
	test.Nil(err)
	test.Nil(bdev.Shutdown(d))

	// the fd is gone, access is an error now
	buf := make([]byte, 512)
	test.Equal(d.ReadBlocks(0, buf), ErrClosed)
	test.Equal(d.WriteBlocks(0, buf), ErrClosed)

	// shutting down twice stays quiet
	test.Nil(bdev.Shutdown(d))
}
