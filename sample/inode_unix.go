// Copyright © 2025 The Gomon Project.

//go:build unix

package sample

import (
	"golang.org/x/sys/unix"
)

// inode returns the inode number of a cgroup directory, which changes when
// a cgroup is removed and created again with the same path.
func inode(dir string) *uint64 {
	var st unix.Stat_t
	if err := unix.Stat(dir, &st); err != nil {
		return nil
	}
	ino := uint64(st.Ino)
	return &ino
}
