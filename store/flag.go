// Copyright © 2025 The Gomon Project.

package store

import (
	"time"

	"github.com/zosmac/gocore"
)

var (
	// flags defines the command line flags.
	flags = struct {
		dir         string
		compression Compression
		retain      time.Duration
	}{
		compression: CompressionZstd,
		retain:      24 * time.Hour,
	}
)

type (
	// dirFlag is a command line flag type for the store's directory.
	dirFlag string

	// retainFlag is a command line flag type for the retention of samples.
	retainFlag time.Duration
)

// Set is a flag.Value interface method to enable dirFlag as a command line flag.
func (d *dirFlag) Set(s string) error {
	*d = dirFlag(s)
	return nil
}

// String is a flag.Value interface method to enable dirFlag as a command line flag.
func (d *dirFlag) String() string {
	return string(*d)
}

// Set is a flag.Value interface method to enable retainFlag as a command line flag.
func (r *retainFlag) Set(s string) error {
	d, err := time.ParseDuration(s)
	if err != nil {
		return gocore.Error("ParseDuration", err)
	}
	*r = retainFlag(d)
	return nil
}

// String is a flag.Value interface method to enable retainFlag as a command line flag.
func (r *retainFlag) String() string {
	return time.Duration(*r).String()
}

// Retain returns the age beyond which stored samples are pruned.
func Retain() time.Duration {
	return flags.retain
}

// OpenFlagged opens the store named by the -store flag, nil if none was.
func OpenFlagged() (*Store, error) {
	if flags.dir == "" {
		return nil, nil
	}
	return Open(flags.dir, flags.compression)
}

// init initializes the command line flags.
func init() {
	gocore.Flags.Var(
		(*dirFlag)(&flags.dir),
		"store",
		"[-store <directory>]",
		"Keep a history of samples in `directory` for replay",
	)
	gocore.Flags.Var(
		&flags.compression,
		"compress",
		"[-compress none|zstd|lz4]",
		"Compress stored samples with `algorithm`",
	)
	gocore.Flags.Var(
		(*retainFlag)(&flags.retain),
		"retain",
		"[-retain <age>]",
		"Prune stored samples older than `age`, specified in Go time.Duration string format",
	)
}
