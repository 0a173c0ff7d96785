//go:build linux

package system

import (
	"time"

	"golang.org/x/sys/unix"
)

func readHostStats() (hostStats, error) {
	var si unix.Sysinfo_t
	if err := unix.Sysinfo(&si); err != nil {
		return hostStats{}, err
	}

	unit := uint64(si.Unit)
	if unit == 0 {
		unit = 1
	}
	st := hostStats{
		uptime:   time.Duration(si.Uptime) * time.Second,
		memTotal: uint64(si.Totalram) * unit,
		memFree:  (uint64(si.Freeram) + uint64(si.Bufferram)) * unit,
	}
	for i := range st.load {
		st.load[i] = float64(si.Loads[i]) / 65536.0
	}

	var uts unix.Utsname
	if err := unix.Uname(&uts); err == nil {
		st.kernel = unix.ByteSliceToString(uts.Release[:])
	}
	return st, nil
}
