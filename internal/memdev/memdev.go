// Package memdev provides RAM-backed reference block devices. Mem is a
// plain overwrite medium, Flash emulates erase-before-write media.
// Both implement the simple and the extended addressing forms.
package memdev

import (
	"github.com/allmad/blockdev/internal/bdev"
	"github.com/chzyer/logex"
)

// nonzero control codes, interpreted by the caller as platform errors
const (
	codeBadArg = 22 // EINVAL
)

type Config struct {
	// BlockSize of 0 keeps the default (512) and makes the device
	// answer null to OpBlockSize, the way drivers that never
	// configured a size behave.
	BlockSize  int64
	BlockCount int64
}

func (c *Config) geometry() bdev.Geometry {
	size := c.BlockSize
	if size == 0 {
		size = bdev.DefaultBlockSize
	}
	return bdev.Geometry{BlockSize: size, BlockCount: c.BlockCount}
}

var (
	_ bdev.BlockDev = new(Mem)
	_ bdev.ByteDev  = new(Mem)
)

type Mem struct {
	geo        bdev.Geometry
	sizeHidden bool
	state      bdev.State
	data       []byte
}

func New(cfg *Config) *Mem {
	geo := cfg.geometry()
	return &Mem{
		geo:        geo,
		sizeHidden: cfg.BlockSize == 0,
		data:       make([]byte, geo.Size()),
	}
}

func (d *Mem) Geometry() bdev.Geometry { return d.geo }

func (d *Mem) State() *bdev.State { return &d.state }

// most drivers initialize themselves on first access rather than
// insisting on an explicit OpInit
func (d *Mem) touch() {
	d.state.Set(bdev.StateInitialized)
}

func (d *Mem) ReadBlocks(num int64, b []byte) error {
	if err := d.geo.CheckBlocks(num, len(b)); err != nil {
		return logex.Trace(err)
	}
	d.touch()
	copy(b, d.data[num*d.geo.BlockSize:])
	return nil
}

func (d *Mem) WriteBlocks(num int64, b []byte) error {
	if err := d.geo.CheckBlocks(num, len(b)); err != nil {
		return logex.Trace(err)
	}
	d.touch()
	copy(d.data[num*d.geo.BlockSize:], b)
	return nil
}

func (d *Mem) ReadBlocksAt(num, off int64, b []byte) error {
	if err := d.geo.CheckSpan(num, off, len(b)); err != nil {
		return logex.Trace(err)
	}
	d.touch()
	copy(b, d.data[num*d.geo.BlockSize+off:])
	return nil
}

func (d *Mem) WriteBlocksAt(num, off int64, b []byte) error {
	if err := d.geo.CheckSpan(num, off, len(b)); err != nil {
		return logex.Trace(err)
	}
	d.touch()
	copy(d.data[num*d.geo.BlockSize+off:], b)
	return nil
}

func (d *Mem) Ioctl(op bdev.Op, arg int64) (bdev.Result, error) {
	switch op {
	case bdev.OpInit:
		d.state.Set(bdev.StateInitialized)
		return bdev.Int(0), nil
	case bdev.OpDeinit:
		d.state.Set(bdev.StateInitialized)
		d.state.Set(bdev.StateShutdown)
		return bdev.Int(0), nil
	case bdev.OpSync:
		return bdev.Int(0), nil
	case bdev.OpBlockCount:
		return bdev.Int(d.geo.BlockCount), nil
	case bdev.OpBlockSize:
		if d.sizeHidden {
			return bdev.Null(), nil
		}
		return bdev.Int(d.geo.BlockSize), nil
	case bdev.OpEraseBlock:
		// RAM needs no erase cycle: intercept and report success,
		// overwrite semantics take care of the rest.
		if arg < 0 || arg >= d.geo.BlockCount {
			return bdev.Int(codeBadArg), nil
		}
		return bdev.Int(0), nil
	}
	return bdev.Null(), nil
}
