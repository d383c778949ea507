// Copyright © 2025 The Gomon Project.

//go:build unix

package message

import (
	"io/fs"
	"os"
	"syscall"
)

// chown gives a rotated output file the ownership of its predecessor.
func chown(f *os.File, info fs.FileInfo) {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		f.Chown(int(st.Uid), int(st.Gid))
	}
}
