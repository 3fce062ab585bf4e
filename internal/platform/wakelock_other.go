//go:build !linux && !darwin && !windows

package platform

func newWakeLock(_ string) WakeLock {
	return unsupportedWakeLock{}
}
