//go:build linux

package sysprobe

import "syscall"

func statDiskUsage(path string) (DiskUsage, error) {
	var fs syscall.Statfs_t
	if err := syscall.Statfs(path, &fs); err != nil {
		return DiskUsage{}, err
	}
	bsize := uint64(fs.Frsize)
	total := fs.Blocks * bsize
	free := fs.Bfree * bsize
	return DiskUsage{
		Total: total,
		Used:  total - free,
		Avail: fs.Bavail * bsize,
	}, nil
}
