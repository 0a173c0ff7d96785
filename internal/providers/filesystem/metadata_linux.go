//go:build linux

package filesystem

import (
	"time"

	"golang.org/x/sys/unix"
)

func statOwnership(path string) (ownership, bool) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return ownership{}, false
	}
	return ownership{
		uid:      int(st.Uid),
		gid:      int(st.Gid),
		accessed: time.Unix(st.Atim.Unix()),
		changed:  time.Unix(st.Ctim.Unix()),
	}, true
}
