// Package filedev backs a block device by an image file on the host
// filesystem, geometry derived from the file size.
package filedev

import (
	"os"

	"github.com/allmad/blockdev/internal/bdev"
	"github.com/chzyer/logex"
)

var (
	ErrBadImageSize = logex.Define("image size %v is not a multiple of the block size %v")
	ErrClosed       = logex.Define("device is shut down")
	ErrShortIO      = logex.Define("short read/write")
)

// nonzero control codes
const (
	codeIO     = 5  // EIO
	codeBadArg = 22 // EINVAL
)

type Config struct {
	BlockSize int64 // 0: bdev.DefaultBlockSize
}

var (
	_ bdev.BlockDev = new(File)
	_ bdev.ByteDev  = new(File)
)

type File struct {
	fd    *os.File
	geo   bdev.Geometry
	state bdev.State
}

// Create makes a zero-filled image of blockCount blocks.
func Create(path string, blockSize, blockCount int64) (*File, error) {
	if blockSize == 0 {
		blockSize = bdev.DefaultBlockSize
	}
	fd, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, logex.Trace(err)
	}
	if err := fd.Truncate(blockSize * blockCount); err != nil {
		fd.Close()
		return nil, logex.Trace(err)
	}
	return &File{
		fd:  fd,
		geo: bdev.Geometry{BlockSize: blockSize, BlockCount: blockCount},
	}, nil
}

func Open(path string, cfg *Config) (*File, error) {
	blockSize := int64(bdev.DefaultBlockSize)
	if cfg != nil && cfg.BlockSize != 0 {
		blockSize = cfg.BlockSize
	}
	fd, err := os.OpenFile(path, os.O_RDWR, 0644)
	if err != nil {
		return nil, logex.Trace(err)
	}
	fi, err := fd.Stat()
	if err != nil {
		fd.Close()
		return nil, logex.Trace(err)
	}
	if fi.Size()%blockSize != 0 {
		fd.Close()
		return nil, ErrBadImageSize.Format(fi.Size(), blockSize)
	}
	return &File{
		fd: fd,
		geo: bdev.Geometry{
			BlockSize:  blockSize,
			BlockCount: fi.Size() / blockSize,
		},
	}, nil
}

func (d *File) Geometry() bdev.Geometry { return d.geo }

func (d *File) State() *bdev.State { return &d.state }

func (d *File) touch() error {
	if d.state.After(bdev.StateShutdown) {
		return ErrClosed.Trace()
	}
	d.state.Set(bdev.StateInitialized)
	return nil
}

func (d *File) ReadBlocks(num int64, b []byte) error {
	if err := d.geo.CheckBlocks(num, len(b)); err != nil {
		return logex.Trace(err)
	}
	return d.readAt(b, num*d.geo.BlockSize)
}

func (d *File) WriteBlocks(num int64, b []byte) error {
	if err := d.geo.CheckBlocks(num, len(b)); err != nil {
		return logex.Trace(err)
	}
	return d.writeAt(b, num*d.geo.BlockSize)
}

func (d *File) ReadBlocksAt(num, off int64, b []byte) error {
	if err := d.geo.CheckSpan(num, off, len(b)); err != nil {
		return logex.Trace(err)
	}
	return d.readAt(b, num*d.geo.BlockSize+off)
}

func (d *File) WriteBlocksAt(num, off int64, b []byte) error {
	if err := d.geo.CheckSpan(num, off, len(b)); err != nil {
		return logex.Trace(err)
	}
	return d.writeAt(b, num*d.geo.BlockSize+off)
}

func (d *File) readAt(b []byte, off int64) error {
	if err := d.touch(); err != nil {
		return logex.Trace(err)
	}
	n, err := d.fd.ReadAt(b, off)
	if err != nil {
		return logex.Trace(err)
	}
	if n != len(b) {
		return ErrShortIO.Trace(n, len(b))
	}
	return nil
}

func (d *File) writeAt(b []byte, off int64) error {
	if err := d.touch(); err != nil {
		return logex.Trace(err)
	}
	n, err := d.fd.WriteAt(b, off)
	if err != nil {
		return logex.Trace(err)
	}
	if n != len(b) {
		return ErrShortIO.Trace(n, len(b))
	}
	return nil
}

func (d *File) Ioctl(op bdev.Op, arg int64) (bdev.Result, error) {
	switch op {
	case bdev.OpInit:
		d.state.Set(bdev.StateInitialized)
		return bdev.Int(0), nil
	case bdev.OpDeinit:
		// tolerate a shutdown with no prior access
		d.state.Set(bdev.StateInitialized)
		if d.state.Set(bdev.StateShutdown) {
			if err := d.fd.Close(); err != nil {
				logex.Error(err)
				return bdev.Int(codeIO), nil
			}
		}
		return bdev.Int(0), nil
	case bdev.OpSync:
		if err := d.fd.Sync(); err != nil {
			logex.Error(err)
			return bdev.Int(codeIO), nil
		}
		return bdev.Int(0), nil
	case bdev.OpBlockCount:
		return bdev.Int(d.geo.BlockCount), nil
	case bdev.OpBlockSize:
		return bdev.Int(d.geo.BlockSize), nil
	case bdev.OpEraseBlock:
		// plain medium, nothing to erase
		if arg < 0 || arg >= d.geo.BlockCount {
			return bdev.Int(codeBadArg), nil
		}
		return bdev.Int(0), nil
	}
	return bdev.Null(), nil
}
