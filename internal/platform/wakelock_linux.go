//go:build linux

package platform

import (
	"fmt"
	"os/exec"
)

func newWakeLock(appName string) WakeLock {
	path, err := exec.LookPath("systemd-inhibit")
	if err != nil {
		return unsupportedWakeLock{}
	}
	return &processWakeLock{
		path: path,
		args: []string{
			"--what=idle:sleep",
			"--who=" + appName,
			fmt.Sprintf("--why=%s training in progress", appName),
			"--mode=block",
			"sleep", "infinity",
		},
	}
}
