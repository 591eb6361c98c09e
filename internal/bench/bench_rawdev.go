package bench

import (
	"crypto/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/allmad/blockdev/internal/bdev"
	"github.com/allmad/blockdev/internal/filedev"
	"github.com/allmad/blockdev/internal/memdev"
	"github.com/chzyer/flow"
)

// RawDev drives the simple form directly: sequential whole-block
// writes, then reads, wrapping over the device.
type RawDev struct {
	Fpath  string `desc:"image path" default:"/tmp/blockdev/bench/rawdev"`
	Mem    bool   `desc:"use a RAM device instead of a file"`
	BS     int64  `name:"bs" desc:"block size" default:"512"`
	Blocks int64  `name:"n" desc:"device block count" default:"8192"`
	Count  int    `desc:"ops per pass" default:"8192"`
}

func (r *RawDev) FlaglyDesc() string {
	return "benchmark raw block read/write"
}

func (r *RawDev) FlaglyHandle(f *flow.Flow) error {
	defer f.Close()

	var dev bdev.BlockDev
	if r.Mem {
		dev = memdev.New(&memdev.Config{BlockSize: r.BS, BlockCount: r.Blocks})
	} else {
		if err := os.MkdirAll(filepath.Dir(r.Fpath), 0755); err != nil {
			return err
		}
		fdev, err := filedev.Create(r.Fpath, r.BS, r.Blocks)
		if err != nil {
			return err
		}
		dev = fdev
	}
	if err := bdev.Init(dev); err != nil {
		return err
	}
	defer bdev.Shutdown(dev)

	g, err := bdev.ReadGeometry(dev)
	if err != nil {
		return err
	}

	buf := make([]byte, g.BlockSize)
	rand.Read(buf)
	total := int64(r.Count) * g.BlockSize

	now := time.Now()
	for i := 0; i < r.Count; i++ {
		num := int64(i) % g.BlockCount
		if err := dev.WriteBlocks(num, buf); err != nil {
			return err
		}
	}
	if err := bdev.Sync(dev); err != nil {
		return err
	}
	println("write:", Rate(total, time.Now().Sub(now)))

	now = time.Now()
	for i := 0; i < r.Count; i++ {
		num := int64(i) % g.BlockCount
		if err := dev.ReadBlocks(num, buf); err != nil {
			return err
		}
	}
	println("read: ", Rate(total, time.Now().Sub(now)))
	return nil
}
