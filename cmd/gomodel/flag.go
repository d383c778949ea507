// Copyright © 2025 The Gomon Project.

package main

import (
	"path/filepath"
	"time"

	"github.com/zosmac/gocore"
)

var (
	// flags defines the command line flags.
	flags = struct {
		dashboard bool
		cgroupfs  string
		replay    replayFlag
	}{}
)

type (
	// replayFlag is a command line flag type naming a stored sample by time.
	replayFlag struct {
		time time.Time // zero for the latest
		set  bool
	}

	// pathFlag is a command line flag type for a file system path.
	pathFlag string
)

// init initializes the command line flags.
func init() {
	gocore.Flags.Var(
		&flags.dashboard,
		"dashboard",
		"[-dashboard]",
		"Display the model in a terminal dashboard rather than encoding it to standard output",
	)
	gocore.Flags.Var(
		(*pathFlag)(&flags.cgroupfs),
		"cgroupfs",
		"[-cgroupfs <path>]",
		"Sample the cgroup2 hierarchy mounted at `path` (default /sys/fs/cgroup)",
	)
	gocore.Flags.Var(
		&flags.replay,
		"replay",
		"[-replay latest|<time>]",
		"Derive the model of the stored sample at or before `time`, in RFC3339 format, and exit",
	)
}

// Set is a flag.Value interface method to enable replayFlag as a command line flag.
func (r *replayFlag) Set(s string) error {
	r.set = true
	if s == "latest" {
		r.time = time.Time{}
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return gocore.Error("replay time", err)
	}
	r.time = t
	return nil
}

// String is a flag.Value interface method to enable replayFlag as a command line flag.
func (r *replayFlag) String() string {
	if !r.set {
		return ""
	}
	if r.time.IsZero() {
		return "latest"
	}
	return r.time.Format(time.RFC3339Nano)
}

// Set is a flag.Value interface method to enable pathFlag as a command line flag.
func (p *pathFlag) Set(s string) error {
	*p = pathFlag(filepath.Clean(s))
	return nil
}

// String is a flag.Value interface method to enable pathFlag as a command line flag.
func (p *pathFlag) String() string {
	return string(*p)
}
