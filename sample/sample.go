// Copyright © 2025 The Gomon Project.

package sample

import (
	"fmt"
	"time"
)

type (
	// Sample is one point in time snapshot of the raw kernel counters. Every
	// leaf is optional: a nil pointer or map means the kernel file was absent,
	// unreadable, or the feature is disabled.
	Sample struct {
		Timestamp time.Time     `json:"timestamp"`
		Cgroup    CgroupSample  `json:"cgroup"`
		Processes PidMap        `json:"processes,omitempty"`
		System    SystemSample  `json:"system"`
		Network   NetworkSample `json:"network"`
	}

	// CgroupSample holds the interface files of one cgroup and its children.
	CgroupSample struct {
		CPUStat           *CPUStat                 `json:"cpu_stat,omitempty"`
		IOStat            map[string]IOStat        `json:"io_stat"`
		MemoryCurrent     *uint64                  `json:"memory_current,omitempty"`
		MemorySwapCurrent *uint64                  `json:"memory_swap_current,omitempty"`
		MemoryHigh        *int64                   `json:"memory_high,omitempty"`
		MemoryStat        *MemoryStat              `json:"memory_stat,omitempty"`
		MemoryEvents      *MemoryEvents            `json:"memory_events,omitempty"`
		Pressure          *Pressure                `json:"pressure,omitempty"`
		InodeNumber       *uint64                  `json:"inode_number,omitempty"`
		Children          map[string]*CgroupSample `json:"children,omitempty"`
	}

	// CPUStat is cpu.stat, times in microseconds.
	CPUStat struct {
		UsageUsec     *uint64 `json:"usage_usec,omitempty"`
		UserUsec      *uint64 `json:"user_usec,omitempty"`
		SystemUsec    *uint64 `json:"system_usec,omitempty"`
		NrPeriods     *uint64 `json:"nr_periods,omitempty"`
		NrThrottled   *uint64 `json:"nr_throttled,omitempty"`
		ThrottledUsec *uint64 `json:"throttled_usec,omitempty"`
	}

	// IOStat is one device line of io.stat.
	IOStat struct {
		Rbytes *uint64 `json:"rbytes,omitempty"`
		Wbytes *uint64 `json:"wbytes,omitempty"`
		Rios   *uint64 `json:"rios,omitempty"`
		Wios   *uint64 `json:"wios,omitempty"`
		Dbytes *uint64 `json:"dbytes,omitempty"`
		Dios   *uint64 `json:"dios,omitempty"`
	}

	// MemoryStat is memory.stat, sizes in bytes, events as cumulative counts.
	MemoryStat struct {
		Anon                  *uint64 `json:"anon,omitempty"`
		File                  *uint64 `json:"file,omitempty"`
		KernelStack           *uint64 `json:"kernel_stack,omitempty"`
		Slab                  *uint64 `json:"slab,omitempty"`
		Sock                  *uint64 `json:"sock,omitempty"`
		Shmem                 *uint64 `json:"shmem,omitempty"`
		FileMapped            *uint64 `json:"file_mapped,omitempty"`
		FileDirty             *uint64 `json:"file_dirty,omitempty"`
		FileWriteback         *uint64 `json:"file_writeback,omitempty"`
		AnonTHP               *uint64 `json:"anon_thp,omitempty"`
		InactiveAnon          *uint64 `json:"inactive_anon,omitempty"`
		ActiveAnon            *uint64 `json:"active_anon,omitempty"`
		InactiveFile          *uint64 `json:"inactive_file,omitempty"`
		ActiveFile            *uint64 `json:"active_file,omitempty"`
		Unevictable           *uint64 `json:"unevictable,omitempty"`
		SlabReclaimable       *uint64 `json:"slab_reclaimable,omitempty"`
		SlabUnreclaimable     *uint64 `json:"slab_unreclaimable,omitempty"`
		Pgfault               *uint64 `json:"pgfault,omitempty"`
		Pgmajfault            *uint64 `json:"pgmajfault,omitempty"`
		WorkingsetRefault     *uint64 `json:"workingset_refault,omitempty"`
		WorkingsetActivate    *uint64 `json:"workingset_activate,omitempty"`
		WorkingsetNodereclaim *uint64 `json:"workingset_nodereclaim,omitempty"`
		Pgrefill              *uint64 `json:"pgrefill,omitempty"`
		Pgscan                *uint64 `json:"pgscan,omitempty"`
		Pgsteal               *uint64 `json:"pgsteal,omitempty"`
		Pgactivate            *uint64 `json:"pgactivate,omitempty"`
		Pgdeactivate          *uint64 `json:"pgdeactivate,omitempty"`
		Pglazyfree            *uint64 `json:"pglazyfree,omitempty"`
		Pglazyfreed           *uint64 `json:"pglazyfreed,omitempty"`
		THPFaultAlloc         *uint64 `json:"thp_fault_alloc,omitempty"`
		THPCollapseAlloc      *uint64 `json:"thp_collapse_alloc,omitempty"`
	}

	// MemoryEvents is memory.events.
	MemoryEvents struct {
		Low     *uint64 `json:"low,omitempty"`
		High    *uint64 `json:"high,omitempty"`
		Max     *uint64 `json:"max,omitempty"`
		OOM     *uint64 `json:"oom,omitempty"`
		OOMKill *uint64 `json:"oom_kill,omitempty"`
	}

	// PressureMetrics is one "some" or "full" line of a pressure file.
	PressureMetrics struct {
		Avg10  *float64 `json:"avg10,omitempty"`
		Avg60  *float64 `json:"avg60,omitempty"`
		Avg300 *float64 `json:"avg300,omitempty"`
		Total  *uint64  `json:"total,omitempty"`
	}

	// ResourcePressure is a pressure file.
	ResourcePressure struct {
		Some PressureMetrics `json:"some"`
		Full PressureMetrics `json:"full"`
	}

	// Pressure gathers cpu.pressure, io.pressure and memory.pressure.
	Pressure struct {
		CPU    ResourcePressure `json:"cpu"`
		IO     ResourcePressure `json:"io"`
		Memory ResourcePressure `json:"memory"`
	}

	// PidMap maps process ids to their sampled info.
	PidMap map[int32]*PidInfo

	// PidInfo is the sampled state of one process.
	PidInfo struct {
		Stat       PidStat  `json:"stat"`
		IO         PidIO    `json:"io"`
		Mem        PidMem   `json:"mem"`
		Cgroup     string   `json:"cgroup"`
		CmdlineVec []string `json:"cmdline_vec,omitempty"`
		ExePath    *string  `json:"exe_path,omitempty"`
	}

	// PidStat is /proc/<pid>/stat, cpu times converted to microseconds.
	PidStat struct {
		Pid         *int32    `json:"pid,omitempty"`
		Ppid        *int32    `json:"ppid,omitempty"`
		Comm        *string   `json:"comm,omitempty"`
		State       *PidState `json:"state,omitempty"`
		Minflt      *uint64   `json:"minflt,omitempty"`
		Majflt      *uint64   `json:"majflt,omitempty"`
		UserUsecs   *uint64   `json:"user_usecs,omitempty"`
		SystemUsecs *uint64   `json:"system_usecs,omitempty"`
		NumThreads  *uint64   `json:"num_threads,omitempty"`
		RunningSecs *uint64   `json:"running_secs,omitempty"`
		RssBytes    *uint64   `json:"rss_bytes,omitempty"`
	}

	// PidIO is /proc/<pid>/io.
	PidIO struct {
		Rbytes *uint64 `json:"rbytes,omitempty"`
		Wbytes *uint64 `json:"wbytes,omitempty"`
	}

	// PidMem is the memory section of /proc/<pid>/status, in bytes.
	PidMem struct {
		VMSize  *uint64 `json:"vm_size,omitempty"`
		Lock    *uint64 `json:"lock,omitempty"`
		Pin     *uint64 `json:"pin,omitempty"`
		Anon    *uint64 `json:"anon,omitempty"`
		File    *uint64 `json:"file,omitempty"`
		Shmem   *uint64 `json:"shmem,omitempty"`
		Pte     *uint64 `json:"pte,omitempty"`
		Swap    *uint64 `json:"swap,omitempty"`
		HugeTLB *uint64 `json:"huge_tlb,omitempty"`
	}

	// SystemSample holds the host wide counters.
	SystemSample struct {
		Hostname      string              `json:"hostname"`
		KernelVersion *string             `json:"kernel_version,omitempty"`
		Total         *CPUTimes           `json:"total,omitempty"`
		CPUs          []CPUTimes          `json:"cpus,omitempty"`
		Meminfo       *Meminfo            `json:"meminfo,omitempty"`
		Vmstat        *Vmstat             `json:"vmstat,omitempty"`
		Disks         map[string]DiskStat `json:"disks,omitempty"`
		LoadAvg       *LoadAvg            `json:"load_avg,omitempty"`
	}

	// CPUTimes are cumulative cpu times in microseconds.
	CPUTimes struct {
		User      *uint64 `json:"user,omitempty"`
		Nice      *uint64 `json:"nice,omitempty"`
		System    *uint64 `json:"system,omitempty"`
		Idle      *uint64 `json:"idle,omitempty"`
		Iowait    *uint64 `json:"iowait,omitempty"`
		Irq       *uint64 `json:"irq,omitempty"`
		Softirq   *uint64 `json:"softirq,omitempty"`
		Steal     *uint64 `json:"steal,omitempty"`
		Guest     *uint64 `json:"guest,omitempty"`
		GuestNice *uint64 `json:"guest_nice,omitempty"`
	}

	// Meminfo is /proc/meminfo, in bytes.
	Meminfo struct {
		Total     *uint64 `json:"total,omitempty"`
		Free      *uint64 `json:"free,omitempty"`
		Available *uint64 `json:"available,omitempty"`
		Buffers   *uint64 `json:"buffers,omitempty"`
		Cached    *uint64 `json:"cached,omitempty"`
		Active    *uint64 `json:"active,omitempty"`
		Inactive  *uint64 `json:"inactive,omitempty"`
		Dirty     *uint64 `json:"dirty,omitempty"`
		Slab      *uint64 `json:"slab,omitempty"`
		Shmem     *uint64 `json:"shmem,omitempty"`
		SwapTotal *uint64 `json:"swap_total,omitempty"`
		SwapFree  *uint64 `json:"swap_free,omitempty"`
	}

	// Vmstat is the subset of /proc/vmstat that is modelled.
	Vmstat struct {
		Pgpgin     *uint64 `json:"pgpgin,omitempty"`
		Pgpgout    *uint64 `json:"pgpgout,omitempty"`
		Pswpin     *uint64 `json:"pswpin,omitempty"`
		Pswpout    *uint64 `json:"pswpout,omitempty"`
		Pgfault    *uint64 `json:"pgfault,omitempty"`
		Pgmajfault *uint64 `json:"pgmajfault,omitempty"`
		Pgsteal    *uint64 `json:"pgsteal,omitempty"`
		Pgscan     *uint64 `json:"pgscan,omitempty"`
	}

	// DiskStat is one device of /proc/diskstats.
	DiskStat struct {
		ReadBytes   *uint64 `json:"read_bytes,omitempty"`
		WriteBytes  *uint64 `json:"write_bytes,omitempty"`
		ReadIOs     *uint64 `json:"read_ios,omitempty"`
		WriteIOs    *uint64 `json:"write_ios,omitempty"`
		ReadTimeMs  *uint64 `json:"read_time_ms,omitempty"`
		WriteTimeMs *uint64 `json:"write_time_ms,omitempty"`
	}

	// LoadAvg is /proc/loadavg.
	LoadAvg struct {
		Load1  *float64 `json:"load1,omitempty"`
		Load5  *float64 `json:"load5,omitempty"`
		Load15 *float64 `json:"load15,omitempty"`
	}

	// NetworkSample holds per interface counters.
	NetworkSample struct {
		Interfaces map[string]InterfaceStat `json:"interfaces,omitempty"`
	}

	// InterfaceStat is one interface of /proc/net/dev.
	InterfaceStat struct {
		RxBytes   *uint64 `json:"rx_bytes,omitempty"`
		TxBytes   *uint64 `json:"tx_bytes,omitempty"`
		RxPackets *uint64 `json:"rx_packets,omitempty"`
		TxPackets *uint64 `json:"tx_packets,omitempty"`
		RxErrors  *uint64 `json:"rx_errors,omitempty"`
		TxErrors  *uint64 `json:"tx_errors,omitempty"`
		RxDropped *uint64 `json:"rx_dropped,omitempty"`
		TxDropped *uint64 `json:"tx_dropped,omitempty"`
	}

	// PidState is a process' execution state.
	PidState int
)

const (
	StateRunning PidState = iota
	StateSleeping
	StateUninterruptibleSleep
	StateStopped
	StateTracingStopped
	StateZombie
	StateDead
	StateIdle
	StateParked
)

var (
	pidStates = [...]struct {
		code byte
		name string
	}{
		StateRunning:              {'R', "Running"},
		StateSleeping:             {'S', "Sleeping"},
		StateUninterruptibleSleep: {'D', "UninterruptibleSleep"},
		StateStopped:              {'T', "Stopped"},
		StateTracingStopped:       {'t', "TracingStopped"},
		StateZombie:               {'Z', "Zombie"},
		StateDead:                 {'X', "Dead"},
		StateIdle:                 {'I', "Idle"},
		StateParked:               {'P', "Parked"},
	}
)

// String returns the state's name.
func (s PidState) String() string {
	if s < 0 || int(s) >= len(pidStates) {
		return fmt.Sprintf("PidState(%d)", int(s))
	}
	return pidStates[s].name
}

// MarshalText encodes the state by name.
func (s PidState) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(pidStates) {
		return nil, fmt.Errorf("invalid process state %d", int(s))
	}
	return []byte(pidStates[s].name), nil
}

// UnmarshalText decodes a state name.
func (s *PidState) UnmarshalText(text []byte) error {
	for i, ps := range pidStates {
		if ps.name == string(text) {
			*s = PidState(i)
			return nil
		}
	}
	return fmt.Errorf("invalid process state %q", text)
}

// ParsePidState decodes the single character state of /proc/<pid>/stat.
func ParsePidState(code string) (PidState, bool) {
	if len(code) == 0 {
		return 0, false
	}
	for i, ps := range pidStates {
		if ps.code == code[0] {
			return PidState(i), true
		}
	}
	if code[0] == 'x' { // dead on kernels before 3.13
		return StateDead, true
	}
	return 0, false
}

// Ptr returns a pointer to v, for building optional sample values.
func Ptr[T any](v T) *T {
	return &v
}
