package bdev

import "github.com/chzyer/logex"

// Typed wrappers around the control channel. Ops other than
// OpBlockCount/OpBlockSize answer with a 0/nonzero code, never a
// payload; a nonzero code is surfaced as ErrControlCode so callers can
// still retry or degrade (a failed sync is not fatal to them).

func Init(d Ioctler) error {
	return control(d, OpInit, 0)
}

func Shutdown(d Ioctler) error {
	return control(d, OpDeinit, 0)
}

func Sync(d Ioctler) error {
	return control(d, OpSync, 0)
}

func Erase(d Ioctler, num int64) error {
	return control(d, OpEraseBlock, num)
}

func control(d Ioctler, op Op, arg int64) error {
	ret, err := d.Ioctl(op, arg)
	if err != nil {
		return logex.Trace(err)
	}
	// a null result means the device has nothing to report, which is
	// a success: the channel stays additive for ops an older
	// implementation does not recognize.
	if ret.Valid && ret.Val != 0 {
		return ErrControlCode.Format(op, ret.Val)
	}
	return nil
}

// BlockCount is the one op every implementation must handle.
func BlockCount(d Ioctler) (int64, error) {
	ret, err := d.Ioctl(OpBlockCount, 0)
	if err != nil {
		return 0, logex.Trace(err)
	}
	if !ret.Valid {
		return 0, ErrNoBlockCount.Trace()
	}
	return ret.Val, nil
}

// BlockSize maps a null result to DefaultBlockSize.
func BlockSize(d Ioctler) (int64, error) {
	ret, err := d.Ioctl(OpBlockSize, 0)
	if err != nil {
		return 0, logex.Trace(err)
	}
	if !ret.Valid {
		return DefaultBlockSize, nil
	}
	return ret.Val, nil
}
