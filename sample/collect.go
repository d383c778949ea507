// Copyright © 2025 The Gomon Project.

package sample

import (
	"bufio"
	"bytes"
	"os"
	"strconv"
	"strings"
)

var (
	// factor converts clock ticks (USER_HZ) to microseconds.
	factor uint64 = 10000
)

type (
	// Collector samples the kernel counters that models are derived from.
	Collector struct {
		cgroups cgroupfs
		proc    string // procfs mount point
		collector
	}

	// Option configures a Collector.
	Option func(*Collector)
)

// WithCgroupRoot sets the mount point of the cgroup v2 hierarchy.
func WithCgroupRoot(root string) Option {
	return func(c *Collector) {
		c.cgroups.root = root
	}
}

// WithProcRoot sets the mount point of procfs.
func WithProcRoot(root string) Option {
	return func(c *Collector) {
		c.proc = root
	}
}

// WithDevBlock sets the directory mapping block device numbers to names.
func WithDevBlock(dir string) Option {
	return func(c *Collector) {
		c.cgroups.devBlock = dir
	}
}

// CollectCgroups samples only the cgroup hierarchy.
func (c *Collector) CollectCgroups() CgroupSample {
	return *c.cgroups.read(c.cgroups.root)
}

// vmstat parses the "key value" lines of /proc/vmstat. Newer kernels split
// pgsteal and pgscan by reclaimer, which are summed.
func vmstat(path string) *Vmstat {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	kv := map[string]uint64{}
	sc := bufio.NewScanner(bytes.NewReader(buf))
	for sc.Scan() {
		k, v, ok := strings.Cut(sc.Text(), " ")
		if !ok {
			continue
		}
		n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			continue
		}
		if total, reclaimer, ok := strings.Cut(k, "_"); ok &&
			(total == "pgsteal" || total == "pgscan") &&
			reclaimer != "anon" && reclaimer != "file" && reclaimer != "direct_throttle" {
			kv[total] += n
			continue
		}
		kv[k] = n
	}
	return &Vmstat{
		Pgpgin:     value(kv, "pgpgin"),
		Pgpgout:    value(kv, "pgpgout"),
		Pswpin:     value(kv, "pswpin"),
		Pswpout:    value(kv, "pswpout"),
		Pgfault:    value(kv, "pgfault"),
		Pgmajfault: value(kv, "pgmajfault"),
		Pgsteal:    value(kv, "pgsteal"),
		Pgscan:     value(kv, "pgscan"),
	}
}
