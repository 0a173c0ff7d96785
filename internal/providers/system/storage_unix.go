//go:build linux || darwin || freebsd

package system

import "golang.org/x/sys/unix"

func statfs(path string) (total, free uint64, err error) {
	var fs unix.Statfs_t
	if err := unix.Statfs(path, &fs); err != nil {
		return 0, 0, err
	}
	bsize := uint64(fs.Bsize)
	return uint64(fs.Blocks) * bsize, uint64(fs.Bavail) * bsize, nil
}
