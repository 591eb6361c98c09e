package memdev

import (
	"github.com/allmad/blockdev/internal/bdev"
	"github.com/chzyer/logex"
	"github.com/klauspost/crc32"
)

// Erased is the byte value of erased flash.
const Erased = 0xFF

// OpBlockCRC is an implementation-defined control op of Flash: it
// answers the CRC-32 (IEEE) of the block given as arg. Reserved ops
// stop at 6, higher values belong to the implementation.
const OpBlockCRC bdev.Op = 16

var (
	_ bdev.BlockDev = new(Flash)
	_ bdev.ByteDev  = new(Flash)
)

// Flash emulates erase-before-write media: erased bytes read Erased and
// a write can only clear bits. WriteBlocks erases the target span
// first; WriteBlocksAt never does, even at offset 0, so a caller can
// lay several sub-block writes into one erase cycle.
type Flash struct {
	geo   bdev.Geometry
	state bdev.State
	data  []byte
}

func NewFlash(cfg *Config) *Flash {
	geo := cfg.geometry()
	data := make([]byte, geo.Size())
	for i := range data {
		data[i] = Erased
	}
	return &Flash{geo: geo, data: data}
}

func (d *Flash) Geometry() bdev.Geometry { return d.geo }

func (d *Flash) State() *bdev.State { return &d.state }

func (d *Flash) touch() {
	d.state.Set(bdev.StateInitialized)
}

func (d *Flash) eraseBlock(num int64) {
	blk := d.data[num*d.geo.BlockSize : (num+1)*d.geo.BlockSize]
	for i := range blk {
		blk[i] = Erased
	}
}

func (d *Flash) ReadBlocks(num int64, b []byte) error {
	if err := d.geo.CheckBlocks(num, len(b)); err != nil {
		return logex.Trace(err)
	}
	d.touch()
	copy(b, d.data[num*d.geo.BlockSize:])
	return nil
}

func (d *Flash) WriteBlocks(num int64, b []byte) error {
	if err := d.geo.CheckBlocks(num, len(b)); err != nil {
		return logex.Trace(err)
	}
	d.touch()
	span := int64(len(b)) / d.geo.BlockSize
	for i := int64(0); i < span; i++ {
		d.eraseBlock(num + i)
	}
	copy(d.data[num*d.geo.BlockSize:], b)
	return nil
}

func (d *Flash) ReadBlocksAt(num, off int64, b []byte) error {
	if err := d.geo.CheckSpan(num, off, len(b)); err != nil {
		return logex.Trace(err)
	}
	d.touch()
	copy(b, d.data[num*d.geo.BlockSize+off:])
	return nil
}

func (d *Flash) WriteBlocksAt(num, off int64, b []byte) error {
	if err := d.geo.CheckSpan(num, off, len(b)); err != nil {
		return logex.Trace(err)
	}
	d.touch()
	dst := d.data[num*d.geo.BlockSize+off:]
	for i := range b {
		dst[i] &= b[i]
	}
	return nil
}

func (d *Flash) Ioctl(op bdev.Op, arg int64) (bdev.Result, error) {
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
		return bdev.Int(d.geo.BlockSize), nil
	case bdev.OpEraseBlock:
		if arg < 0 || arg >= d.geo.BlockCount {
			return bdev.Int(codeBadArg), nil
		}
		d.touch()
		d.eraseBlock(arg)
		return bdev.Int(0), nil
	case OpBlockCRC:
		if arg < 0 || arg >= d.geo.BlockCount {
			return bdev.Int(codeBadArg), nil
		}
		blk := d.data[arg*d.geo.BlockSize : (arg+1)*d.geo.BlockSize]
		return bdev.Int(int64(crc32.ChecksumIEEE(blk))), nil
	}
	return bdev.Null(), nil
}
