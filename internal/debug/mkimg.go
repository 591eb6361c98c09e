package debug

import (
	"fmt"

	"github.com/allmad/blockdev/internal/bdev"
	"github.com/allmad/blockdev/internal/filedev"
	"github.com/chzyer/flow"
)

type Mkimg struct {
	Fpath  string `type:"[0]" desc:"image file"`
	BS     int64  `name:"bs" desc:"block size" default:"512"`
	Blocks int64  `name:"n" desc:"block count" default:"2048"`
}

func (cfg *Mkimg) FlaglyDesc() string {
	return "create a zero-filled image file"
}

func (cfg *Mkimg) FlaglyHandle(f *flow.Flow) error {
	defer f.Close()

	if cfg.Fpath == "" {
		return fmt.Errorf("error: image file is required")
	}
	dev, err := filedev.Create(cfg.Fpath, cfg.BS, cfg.Blocks)
	if err != nil {
		return err
	}
	if err := bdev.Shutdown(dev); err != nil {
		return err
	}
	g := dev.Geometry()
	fmt.Printf("%v: %v blocks of %v bytes\n", cfg.Fpath, g.BlockCount, g.BlockSize)
	return nil
}
