//go:build linux || darwin

package platform

import (
	"fmt"
	"os/exec"
	"sync"
)

// processWakeLock holds an inhibitor process for as long as the lock is held.
type processWakeLock struct {
	mu      sync.Mutex
	path    string
	args    []string
	command *exec.Cmd
}

func (lock *processWakeLock) Acquire() error {
	lock.mu.Lock()
	defer lock.mu.Unlock()
	if lock.command != nil {
		return nil
	}

	command := exec.Command(lock.path, lock.args...)
	if err := command.Start(); err != nil {
		return fmt.Errorf("acquire wake lock: %w", err)
	}
	lock.command = command
	go func() {
		_ = command.Wait()
	}()
	return nil
}

func (lock *processWakeLock) Release() error {
	lock.mu.Lock()
	defer lock.mu.Unlock()
	if lock.command == nil {
		return nil
	}

	command := lock.command
	lock.command = nil
	if command.Process == nil {
		return nil
	}
	if err := command.Process.Kill(); err != nil {
		return fmt.Errorf("release wake lock: %w", err)
	}
	return nil
}
