package main

import (
	"github.com/allmad/blockdev/internal/bench"
	"github.com/allmad/blockdev/internal/debug"
	"github.com/chzyer/flagly"
	"github.com/chzyer/flow"
	"github.com/chzyer/logex"
)

type Blockdev struct {
	Bench   *bench.Config  `flagly:"handler"`
	Mkimg   *debug.Mkimg   `flagly:"handler"`
	Inspect *debug.Inspect `flagly:"handler"`
}

func main() {
	bd := new(Blockdev)
	f := flow.New()

	flagly.Run(bd, f)

	if err := f.Wait(); err != nil {
		logex.Fatal(err)
	}
}
