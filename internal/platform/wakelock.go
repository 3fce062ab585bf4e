package platform

import "errors"

// ErrWakeLockUnsupported indicates the screen cannot be kept awake here.
var ErrWakeLockUnsupported = errors.New("wake lock unsupported")

// WakeLock keeps the display awake while a training session runs.
type WakeLock interface {
	Acquire() error
	Release() error
}

// NewWakeLock returns a platform-specific wake lock.
func NewWakeLock(appName string) WakeLock {
	return newWakeLock(appName)
}

type unsupportedWakeLock struct{}

func (unsupportedWakeLock) Acquire() error {
	return ErrWakeLockUnsupported
}

func (unsupportedWakeLock) Release() error {
	return nil
}
