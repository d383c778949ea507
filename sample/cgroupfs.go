// Copyright © 2025 The Gomon Project.

package sample

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// cgroupfs reads a cgroup v2 hierarchy.
type cgroupfs struct {
	root     string // mount point, e.g. /sys/fs/cgroup
	devBlock string // device number to name directory, e.g. /sys/dev/block
}

// read samples the cgroup at dir and its descendants. Interface files that
// are absent or unparseable leave their field nil.
func (fs cgroupfs) read(dir string) *CgroupSample {
	s := &CgroupSample{
		CPUStat:           fs.cpuStat(dir),
		IOStat:            fs.ioStat(dir),
		MemoryCurrent:     readUint(filepath.Join(dir, "memory.current")),
		MemorySwapCurrent: readUint(filepath.Join(dir, "memory.swap.current")),
		MemoryHigh:        readLimit(filepath.Join(dir, "memory.high")),
		MemoryStat:        memoryStat(dir),
		MemoryEvents:      memoryEvents(dir),
		Pressure:          pressure(dir),
		InodeNumber:       inode(dir),
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return s
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if s.Children == nil {
			s.Children = map[string]*CgroupSample{}
		}
		s.Children[entry.Name()] = fs.read(filepath.Join(dir, entry.Name()))
	}
	return s
}

// keyValues parses the "key value" lines of a flat keyed file.
func keyValues(path string) map[string]uint64 {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	kv := map[string]uint64{}
	sc := bufio.NewScanner(bytes.NewReader(buf))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) != 2 {
			continue
		}
		if v, err := strconv.ParseUint(fields[1], 10, 64); err == nil {
			kv[fields[0]] = v
		}
	}
	return kv
}

// value returns a pointer to the value of key, nil if absent.
func value(kv map[string]uint64, key string) *uint64 {
	if v, ok := kv[key]; ok {
		return &v
	}
	return nil
}

func readUint(path string) *uint64 {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	v, err := strconv.ParseUint(strings.TrimSpace(string(buf)), 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

// readLimit reads a limit file, where "max" means unlimited and reads as -1.
func readLimit(path string) *int64 {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	s := strings.TrimSpace(string(buf))
	if s == "max" {
		return Ptr[int64](-1)
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

func (cgroupfs) cpuStat(dir string) *CPUStat {
	kv := keyValues(filepath.Join(dir, "cpu.stat"))
	if kv == nil {
		return nil
	}
	return &CPUStat{
		UsageUsec:     value(kv, "usage_usec"),
		UserUsec:      value(kv, "user_usec"),
		SystemUsec:    value(kv, "system_usec"),
		NrPeriods:     value(kv, "nr_periods"),
		NrThrottled:   value(kv, "nr_throttled"),
		ThrottledUsec: value(kv, "throttled_usec"),
	}
}

// ioStat parses io.stat lines of the form "8:0 rbytes=1 wbytes=2 rios=3 wios=4 dbytes=5 dios=6".
// An empty file yields an empty map: the cgroup has done no IO.
func (fs cgroupfs) ioStat(dir string) map[string]IOStat {
	buf, err := os.ReadFile(filepath.Join(dir, "io.stat"))
	if err != nil {
		return nil
	}
	stats := map[string]IOStat{}
	sc := bufio.NewScanner(bytes.NewReader(buf))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		kv := map[string]uint64{}
		for _, f := range fields[1:] {
			k, v, ok := strings.Cut(f, "=")
			if !ok {
				continue
			}
			if n, err := strconv.ParseUint(v, 10, 64); err == nil {
				kv[k] = n
			}
		}
		stats[fs.deviceName(fields[0])] = IOStat{
			Rbytes: value(kv, "rbytes"),
			Wbytes: value(kv, "wbytes"),
			Rios:   value(kv, "rios"),
			Wios:   value(kv, "wios"),
			Dbytes: value(kv, "dbytes"),
			Dios:   value(kv, "dios"),
		}
	}
	return stats
}

// deviceName resolves "major:minor" to the block device's name, or returns it unchanged.
func (fs cgroupfs) deviceName(majmin string) string {
	if fs.devBlock == "" {
		return majmin
	}
	buf, err := os.ReadFile(filepath.Join(fs.devBlock, majmin, "uevent"))
	if err != nil {
		return majmin
	}
	sc := bufio.NewScanner(bytes.NewReader(buf))
	for sc.Scan() {
		if name, ok := strings.CutPrefix(sc.Text(), "DEVNAME="); ok && name != "" {
			return name
		}
	}
	return majmin
}

func memoryStat(dir string) *MemoryStat {
	kv := keyValues(filepath.Join(dir, "memory.stat"))
	if kv == nil {
		return nil
	}
	return &MemoryStat{
		Anon:                  value(kv, "anon"),
		File:                  value(kv, "file"),
		KernelStack:           value(kv, "kernel_stack"),
		Slab:                  value(kv, "slab"),
		Sock:                  value(kv, "sock"),
		Shmem:                 value(kv, "shmem"),
		FileMapped:            value(kv, "file_mapped"),
		FileDirty:             value(kv, "file_dirty"),
		FileWriteback:         value(kv, "file_writeback"),
		AnonTHP:               value(kv, "anon_thp"),
		InactiveAnon:          value(kv, "inactive_anon"),
		ActiveAnon:            value(kv, "active_anon"),
		InactiveFile:          value(kv, "inactive_file"),
		ActiveFile:            value(kv, "active_file"),
		Unevictable:           value(kv, "unevictable"),
		SlabReclaimable:       value(kv, "slab_reclaimable"),
		SlabUnreclaimable:     value(kv, "slab_unreclaimable"),
		Pgfault:               value(kv, "pgfault"),
		Pgmajfault:            value(kv, "pgmajfault"),
		WorkingsetRefault:     split(kv, "workingset_refault"),
		WorkingsetActivate:    split(kv, "workingset_activate"),
		WorkingsetNodereclaim: value(kv, "workingset_nodereclaim"),
		Pgrefill:              value(kv, "pgrefill"),
		Pgscan:                value(kv, "pgscan"),
		Pgsteal:               value(kv, "pgsteal"),
		Pgactivate:            value(kv, "pgactivate"),
		Pgdeactivate:          value(kv, "pgdeactivate"),
		Pglazyfree:            value(kv, "pglazyfree"),
		Pglazyfreed:           value(kv, "pglazyfreed"),
		THPFaultAlloc:         value(kv, "thp_fault_alloc"),
		THPCollapseAlloc:      value(kv, "thp_collapse_alloc"),
	}
}

// split reads key, or the sum of its _anon and _file counts on kernels that
// report them separately (5.9 and later).
func split(kv map[string]uint64, key string) *uint64 {
	if v := value(kv, key); v != nil {
		return v
	}
	anon, file := value(kv, key+"_anon"), value(kv, key+"_file")
	if anon == nil && file == nil {
		return nil
	}
	var sum uint64
	if anon != nil {
		sum += *anon
	}
	if file != nil {
		sum += *file
	}
	return &sum
}

func memoryEvents(dir string) *MemoryEvents {
	kv := keyValues(filepath.Join(dir, "memory.events"))
	if kv == nil {
		return nil
	}
	return &MemoryEvents{
		Low:     value(kv, "low"),
		High:    value(kv, "high"),
		Max:     value(kv, "max"),
		OOM:     value(kv, "oom"),
		OOMKill: value(kv, "oom_kill"),
	}
}

// pressure reads the cpu, io and memory pressure files. It is nil if none exist.
func pressure(dir string) *Pressure {
	var (
		p     Pressure
		found bool
	)
	for file, rp := range map[string]*ResourcePressure{
		"cpu.pressure":    &p.CPU,
		"io.pressure":     &p.IO,
		"memory.pressure": &p.Memory,
	} {
		if readPressure(filepath.Join(dir, file), rp) {
			found = true
		}
	}
	if !found {
		return nil
	}
	return &p
}

// readPressure parses lines of the form "some avg10=0.00 avg60=0.00 avg300=0.00 total=0".
func readPressure(path string, rp *ResourcePressure) bool {
	buf, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	sc := bufio.NewScanner(bytes.NewReader(buf))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		var pm *PressureMetrics
		switch fields[0] {
		case "some":
			pm = &rp.Some
		case "full":
			pm = &rp.Full
		default:
			continue
		}
		for _, f := range fields[1:] {
			k, v, ok := strings.Cut(f, "=")
			if !ok {
				continue
			}
			switch k {
			case "avg10", "avg60", "avg300":
				n, err := strconv.ParseFloat(v, 64)
				if err != nil {
					continue
				}
				switch k {
				case "avg10":
					pm.Avg10 = &n
				case "avg60":
					pm.Avg60 = &n
				case "avg300":
					pm.Avg300 = &n
				}
			case "total":
				if n, err := strconv.ParseUint(v, 10, 64); err == nil {
					pm.Total = &n
				}
			}
		}
	}
	return true
}
