//go:build darwin

package platform

import "os/exec"

func newWakeLock(_ string) WakeLock {
	path, err := exec.LookPath("caffeinate")
	if err != nil {
		return unsupportedWakeLock{}
	}
	return &processWakeLock{path: path, args: []string{"-d", "-i"}}
}
