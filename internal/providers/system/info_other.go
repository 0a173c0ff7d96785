//go:build !linux

package system

import "errors"

func readHostStats() (hostStats, error) {
	return hostStats{}, errors.New("host stats not supported on this platform")
}
