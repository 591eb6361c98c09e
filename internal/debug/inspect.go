// Package debug holds the image tooling: an interactive device
// inspector and image creation.
package debug

import (
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/allmad/blockdev/internal/bdev"
	"github.com/allmad/blockdev/internal/filedev"
	"github.com/allmad/blockdev/internal/memdev"
	"github.com/chzyer/flow"
	"github.com/chzyer/readline"
)

type Inspect struct {
	Fpath string `type:"[0]" desc:"image file"`
	BS    int64  `name:"bs" desc:"block size" default:"512"`
}

func (cfg *Inspect) FlaglyDesc() string {
	return "interactive block device inspector"
}

func (cfg *Inspect) FlaglyHandle(f *flow.Flow) error {
	defer f.Close()

	if cfg.Fpath == "" {
		return fmt.Errorf("error: image file is required")
	}
	dev, err := filedev.Open(cfg.Fpath, &filedev.Config{BlockSize: cfg.BS})
	if err != nil {
		return err
	}
	defer bdev.Shutdown(dev)

	if err := bdev.Init(dev); err != nil {
		return err
	}
	return cfg.handle(filepath.Base(cfg.Fpath), dev)
}

func (cfg *Inspect) handle(name string, dev *filedev.File) error {
	rl, err := readline.New(name + "> ")
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line := rl.Line()
		if line.CanBreak() {
			break
		} else if line.CanContinue() {
			continue
		}
		sp := strings.Fields(line.Line)
		if len(sp) == 0 {
			continue
		}
		switch sp[0] {
		case "geom":
			cfg.Geom(dev)
		case "caps":
			println(bdev.DetectCaps(dev).String())
		case "dump":
			cfg.Dump(dev, sp[1:])
		case "read":
			cfg.Read(dev, sp[1:])
		case "write":
			cfg.Write(dev, sp[1:])
		case "erase":
			cfg.Erase(dev, sp[1:])
		case "sync":
			if err := bdev.Sync(dev); err != nil {
				println(err.Error())
			}
		case "crc":
			cfg.Crc(dev, sp[1:])
		case "help":
			println("geom | caps | dump <blk> | read <blk> <off> <n> | write <blk> <off> <text> | erase <blk> | crc <blk> | sync | exit")
		case "exit", "quit":
			return nil
		default:
			println("unknown command:", line.Line)
		}
	}
	return nil
}

func (cfg *Inspect) Geom(dev *filedev.File) {
	g, err := bdev.ReadGeometry(dev)
	if err != nil {
		println(err.Error())
		return
	}
	fmt.Printf("block size: %v\nblock count: %v\nsize: %v\n",
		g.BlockSize, g.BlockCount, g.Size())
}

func (cfg *Inspect) Dump(dev *filedev.File, args []string) {
	if len(args) < 1 {
		println("usage: dump <blk>")
		return
	}
	num, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		println(err.Error())
		return
	}
	buf := make([]byte, dev.Geometry().BlockSize)
	if err := dev.ReadBlocks(num, buf); err != nil {
		println(err.Error())
		return
	}
	fmt.Println(hex.Dump(buf))
}

func (cfg *Inspect) Read(dev *filedev.File, args []string) {
	if len(args) < 3 {
		println("usage: read <blk> <off> <n>")
		return
	}
	num, err1 := strconv.ParseInt(args[0], 10, 64)
	off, err2 := strconv.ParseInt(args[1], 10, 64)
	n, err3 := strconv.Atoi(args[2])
	for _, err := range []error{err1, err2, err3} {
		if err != nil {
			println(err.Error())
			return
		}
	}
	buf := make([]byte, n)
	if err := dev.ReadBlocksAt(num, off, buf); err != nil {
		println(err.Error())
		return
	}
	fmt.Println(hex.Dump(buf))
}

func (cfg *Inspect) Write(dev *filedev.File, args []string) {
	if len(args) < 3 {
		println("usage: write <blk> <off> <text>")
		return
	}
	num, err1 := strconv.ParseInt(args[0], 10, 64)
	off, err2 := strconv.ParseInt(args[1], 10, 64)
	for _, err := range []error{err1, err2} {
		if err != nil {
			println(err.Error())
			return
		}
	}
	data := strings.Join(args[2:], " ")
	if err := dev.WriteBlocksAt(num, off, []byte(data)); err != nil {
		println(err.Error())
	}
}

func (cfg *Inspect) Erase(dev *filedev.File, args []string) {
	if len(args) < 1 {
		println("usage: erase <blk>")
		return
	}
	num, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		println(err.Error())
		return
	}
	if err := bdev.Erase(dev, num); err != nil {
		println(err.Error())
	}
}

// Crc asks the device for memdev.OpBlockCRC. The op is
// implementation-defined; a device that does not know it answers null
// and we report that instead of failing.
func (cfg *Inspect) Crc(dev bdev.Ioctler, args []string) {
	if len(args) < 1 {
		println("usage: crc <blk>")
		return
	}
	num, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		println(err.Error())
		return
	}
	ret, err := dev.Ioctl(memdev.OpBlockCRC, num)
	if err != nil {
		println(err.Error())
		return
	}
	if !ret.Valid {
		println("op not supported by this device")
		return
	}
	fmt.Printf("crc32: %08x\n", uint32(ret.Val))
}
