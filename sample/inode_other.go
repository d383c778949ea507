// Copyright © 2025 The Gomon Project.

//go:build !unix

package sample

func inode(string) *uint64 {
	return nil
}
