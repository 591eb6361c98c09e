package bdev

import "sync/atomic"

// State tracks the implicit device lifecycle:
// uninitialized -> initialized -> shut down.
// The contract does not enforce the ordering; calling read/write before
// OpInit is allowed and devices here initialize themselves on first
// access. State only makes the current phase observable.
type State int32

const (
	StateInitialized State = iota + 1
	StateShutdown
)

func (s *State) Set(val State) bool {
	if val == 0 {
		return false
	}
	prev := int32(val - 1)
	return atomic.CompareAndSwapInt32((*int32)(s), prev, int32(val))
}

func (s *State) After(v State) bool {
	return atomic.LoadInt32((*int32)(s)) >= int32(v)
}
