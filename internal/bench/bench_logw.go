package bench

import (
	"crypto/rand"
	"time"

	"github.com/allmad/blockdev/internal/bdev"
	"github.com/allmad/blockdev/internal/logio"
	"github.com/allmad/blockdev/internal/memdev"
	"github.com/chzyer/flow"
)

// LogW appends framed records through the extended form on a
// flash-emulating device, the medium the erase asymmetry exists for.
type LogW struct {
	BS     int64 `name:"bs" desc:"block size" default:"4096"`
	Blocks int64 `name:"n" desc:"device block count" default:"8192"`
	Size   int   `desc:"record payload size" default:"200"`
	Count  int   `desc:"records to append" default:"8192"`
}

func (cfg *LogW) FlaglyDesc() string {
	return "benchmark log-structured appends"
}

func (cfg *LogW) FlaglyHandle(f *flow.Flow) error {
	defer f.Close()

	dev := memdev.NewFlash(&memdev.Config{BlockSize: cfg.BS, BlockCount: cfg.Blocks})
	if err := bdev.Init(dev); err != nil {
		return err
	}
	defer bdev.Shutdown(dev)

	w, err := logio.NewWriter(dev)
	if err != nil {
		return err
	}
	syncer := logio.NewSyncer(f, dev, 100*time.Millisecond)
	defer syncer.Close()

	buf := make([]byte, cfg.Size)
	rand.Read(buf)

	now := time.Now()
	for i := 0; i < cfg.Count; i++ {
		if _, err := w.Append(buf); err != nil {
			return err
		}
	}
	if err := w.Sync(); err != nil {
		return err
	}
	total := int64(cfg.Count) * int64(cfg.Size+logio.HeaderSize)
	println("append:", Rate(total, time.Now().Sub(now)))
	return nil
}
