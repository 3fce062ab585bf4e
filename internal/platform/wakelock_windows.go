//go:build windows

package platform

import (
	"fmt"
	"runtime"
	"sync"
	"syscall"
)

const (
	esContinuous      = 0x80000000
	esSystemRequired  = 0x00000001
	esDisplayRequired = 0x00000002
)

// executionStateLock pins a goroutine to one OS thread, because
// SetThreadExecutionState applies to the calling thread only.
type executionStateLock struct {
	mu      sync.Mutex
	release chan struct{}
}

func newWakeLock(_ string) WakeLock {
	return &executionStateLock{}
}

func (lock *executionStateLock) Acquire() error {
	lock.mu.Lock()
	defer lock.mu.Unlock()
	if lock.release != nil {
		return nil
	}

	result := make(chan error, 1)
	release := make(chan struct{})
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		kernel32 := syscall.NewLazyDLL("kernel32.dll")
		setState := kernel32.NewProc("SetThreadExecutionState")
		previous, _, err := setState.Call(uintptr(esContinuous | esSystemRequired | esDisplayRequired))
		if previous == 0 {
			result <- fmt.Errorf("set thread execution state: %w", err)
			return
		}
		result <- nil

		<-release
		_, _, _ = setState.Call(uintptr(esContinuous))
	}()

	if err := <-result; err != nil {
		return fmt.Errorf("acquire wake lock: %w", err)
	}
	lock.release = release
	return nil
}

func (lock *executionStateLock) Release() error {
	lock.mu.Lock()
	defer lock.mu.Unlock()
	if lock.release == nil {
		return nil
	}
	close(lock.release)
	lock.release = nil
	return nil
}
