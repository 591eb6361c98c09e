package logio

import (
	"time"

	"github.com/allmad/blockdev/internal/bdev"
	"github.com/chzyer/flow"
	"github.com/chzyer/logex"
)

// Syncer issues OpSync on a ticker and on demand. The device contract
// itself has no background behavior, serializing access stays the
// caller's job; Syncer is the single owner of the sync channel here.
type Syncer struct {
	flow     *flow.Flow
	dev      bdev.Ioctler
	interval time.Duration

	needSyncChan chan struct{}
}

func NewSyncer(f *flow.Flow, dev bdev.Ioctler, interval time.Duration) *Syncer {
	s := &Syncer{
		dev:          dev,
		interval:     interval,
		needSyncChan: make(chan struct{}, 1),
	}
	f.ForkTo(&s.flow, s.Close)
	go s.loop()
	return s
}

func (s *Syncer) loop() {
	s.flow.Add(1)
	defer s.flow.DoneAndClose()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-ticker.C:
			s.sync()
		case <-s.needSyncChan:
			s.sync()
		case <-s.flow.IsClose():
			break loop
		}
	}
}

// Notify requests a sync without blocking.
func (s *Syncer) Notify() {
	select {
	case s.needSyncChan <- struct{}{}:
	default:
	}
}

func (s *Syncer) sync() {
	if err := bdev.Sync(s.dev); err != nil {
		// sync failure is not fatal, the next tick retries
		logex.Error(err)
	}
}

func (s *Syncer) Close() {
	s.flow.Close()
	s.sync()
}
