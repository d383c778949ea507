// Copyright © 2025 The Gomon Project.

//go:build !unix

package message

import (
	"io/fs"
	"os"
)

func chown(*os.File, fs.FileInfo) {}
