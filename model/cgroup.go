// Copyright © 2025 The Gomon Project.

package model

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/zosmac/gomodel/sample"
)

// RootCgroupName names the synthetic root of the cgroup tree.
const RootCgroupName = "<root>"

type (
	// CgroupLast pairs the previous tick's sample of a cgroup with the time elapsed since.
	CgroupLast struct {
		Sample  *sample.CgroupSample
		Elapsed time.Duration
	}

	// CgroupModel is the derived state of one cgroup and, recursively, its children.
	// Children are ordered by name, which is also their identity within the tree.
	CgroupModel struct {
		Name         string                   `json:"name"`
		FullPath     string                   `json:"full_path"`
		InodeNumber  *uint64                  `json:"inode_number,omitempty"`
		Level        int                      `json:"depth"`
		CPU          *CgroupCPUModel          `json:"cpu,omitempty"`
		Memory       *CgroupMemoryModel       `json:"memory,omitempty"`
		IO           map[string]CgroupIOModel `json:"io"`
		IOTotal      *CgroupIOModel           `json:"io_total,omitempty"`
		Pressure     *CgroupPressureModel     `json:"pressure,omitempty"`
		Children     []CgroupModel            `json:"children"`
		Count        int                      `json:"count"`
		RecreateFlag bool                     `json:"recreate_flag"`
	}

	// CgroupCPUModel is derived from cpu.stat.
	CgroupCPUModel struct {
		UsagePct          *float64 `json:"usage_pct,omitempty"`
		UserPct           *float64 `json:"user_pct,omitempty"`
		SystemPct         *float64 `json:"system_pct,omitempty"`
		NrPeriodsPerSec   *float64 `json:"nr_periods_per_sec,omitempty"`
		NrThrottledPerSec *float64 `json:"nr_throttled_per_sec,omitempty"`
		ThrottledPct      *float64 `json:"throttled_pct,omitempty"`
	}

	// CgroupIOModel is derived from one device of io.stat, or their total.
	CgroupIOModel struct {
		RbytesPerSec  *float64 `json:"rbytes_per_sec,omitempty"`
		WbytesPerSec  *float64 `json:"wbytes_per_sec,omitempty"`
		RiosPerSec    *float64 `json:"rios_per_sec,omitempty"`
		WiosPerSec    *float64 `json:"wios_per_sec,omitempty"`
		DbytesPerSec  *float64 `json:"dbytes_per_sec,omitempty"`
		DiosPerSec    *float64 `json:"dios_per_sec,omitempty"`
		RwbytesPerSec *float64 `json:"rwbytes_per_sec,omitempty"`
	}

	// CgroupMemoryModel holds memory gauges of the current sample and
	// memory.stat event rates.
	CgroupMemoryModel struct {
		Total                 *uint64 `json:"total,omitempty"`
		Swap                  *uint64 `json:"swap,omitempty"`
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
		MemoryHigh            *int64  `json:"memory_high,omitempty"`
		EventsLow             *uint64 `json:"events_low,omitempty"`
		EventsHigh            *uint64 `json:"events_high,omitempty"`
		EventsMax             *uint64 `json:"events_max,omitempty"`
		EventsOOM             *uint64 `json:"events_oom,omitempty"`
		EventsOOMKill         *uint64 `json:"events_oom_kill,omitempty"`
	}

	// CgroupPressureModel holds the kernel's 10 second pressure averages.
	CgroupPressureModel struct {
		CPUSomePct    *float64 `json:"cpu_some_pct,omitempty"`
		IOSomePct     *float64 `json:"io_some_pct,omitempty"`
		IOFullPct     *float64 `json:"io_full_pct,omitempty"`
		MemorySomePct *float64 `json:"memory_some_pct,omitempty"`
		MemoryFullPct *float64 `json:"memory_full_pct,omitempty"`
	}
)

// NewCgroupModel derives the model of a cgroup and its descendants from the
// current sample and, if available, the sample of the previous tick.
func NewCgroupModel(name, fullPath string, depth int, s *sample.CgroupSample, last *CgroupLast) *CgroupModel {
	m := &CgroupModel{
		Name:        name,
		FullPath:    fullPath,
		InodeNumber: s.InodeNumber,
		Level:       depth,
		Memory:      newCgroupMemoryModel(s, last),
	}

	if l := continuous(s, last); l != nil {
		if l.Sample.CPUStat != nil && s.CPUStat != nil {
			m.CPU = newCgroupCPUModel(l.Sample.CPUStat, s.CPUStat, l.Elapsed)
		}
		if l.Sample.IOStat != nil && s.IOStat != nil {
			m.IO = map[string]CgroupIOModel{}
			total := EmptyCgroupIO()
			for _, dev := range slices.Sorted(maps.Keys(s.IOStat)) {
				end := s.IOStat[dev]
				if begin, ok := l.Sample.IOStat[dev]; ok {
					io := newCgroupIOModel(&begin, &end, l.Elapsed)
					m.IO[dev] = io
					total = total.Add(io)
				}
			}
			m.IOTotal = &total
		}
	} else {
		m.RecreateFlag = last != nil
	}

	if s.Pressure != nil {
		m.Pressure = newCgroupPressureModel(s.Pressure)
	}

	m.Count = 1
	for _, name := range slices.Sorted(maps.Keys(s.Children)) {
		var childLast *CgroupLast
		if last != nil {
			if cl, ok := last.Sample.Children[name]; ok && cl != nil {
				childLast = &CgroupLast{Sample: cl, Elapsed: last.Elapsed}
			}
		}
		cs := s.Children[name]
		if cs == nil {
			cs = &sample.CgroupSample{}
		}
		child := NewCgroupModel(name, fullPath+"/"+name, depth+1, cs, childLast)
		m.Count += child.Count
		m.Children = append(m.Children, *child)
	}

	return m
}

// continuous returns last if it samples the same cgroup object as s. Inode
// numbers must both be present and equal, or both absent.
func continuous(s *sample.CgroupSample, last *CgroupLast) *CgroupLast {
	if last == nil {
		return nil
	}
	switch prev, cur := last.Sample.InodeNumber, s.InodeNumber; {
	case prev != nil && cur != nil && *prev == *cur:
		return last
	case prev == nil && cur == nil:
		return last
	}
	return nil
}

// AggrTopLevelVal replaces the memory of the root with the sum of its
// direct children's memory, as the root's own counters are not representative.
func (m *CgroupModel) AggrTopLevelVal() *CgroupModel {
	var memory *CgroupMemoryModel
	for i := range m.Children {
		memory = optAddMemory(memory, m.Children[i].Memory)
	}
	m.Memory = memory
	return m
}

// Depth of the cgroup below the root.
func (m *CgroupModel) Depth() int {
	return m.Level
}

// CompareCgroupByName orders cgroups by name, their identity among siblings.
func CompareCgroupByName(a, b *CgroupModel) int {
	return strings.Compare(a.Name, b.Name)
}

// Child returns the named child, or nil.
func (m *CgroupModel) Child(name string) *CgroupModel {
	i, ok := slices.BinarySearchFunc(m.Children, name, func(c CgroupModel, name string) int {
		return strings.Compare(c.Name, name)
	})
	if !ok {
		return nil
	}
	return &m.Children[i]
}

// Walk visits the tree depth first in name order. Returning false from fn
// skips the descendants of the cgroup visited.
func (m *CgroupModel) Walk(fn func(*CgroupModel) bool) {
	if !fn(m) {
		return
	}
	for i := range m.Children {
		m.Children[i].Walk(fn)
	}
}

// Find returns the cgroup at full path relative to m, e.g. "/system.slice/sshd.service".
func (m *CgroupModel) Find(path string) *CgroupModel {
	c := m
	for _, name := range strings.Split(strings.Trim(path, "/"), "/") {
		if name == "" {
			continue
		}
		if c = c.Child(name); c == nil {
			return nil
		}
	}
	return c
}

func newCgroupCPUModel(begin, end *sample.CPUStat, elapsed time.Duration) *CgroupCPUModel {
	return &CgroupCPUModel{
		UsagePct:          UsecPct(begin.UsageUsec, end.UsageUsec, elapsed),
		UserPct:           UsecPct(begin.UserUsec, end.UserUsec, elapsed),
		SystemPct:         UsecPct(begin.SystemUsec, end.SystemUsec, elapsed),
		NrPeriodsPerSec:   CountPerSec(begin.NrPeriods, end.NrPeriods, elapsed),
		NrThrottledPerSec: CountPerSec(begin.NrThrottled, end.NrThrottled, elapsed),
		ThrottledPct:      UsecPct(begin.ThrottledUsec, end.ThrottledUsec, elapsed),
	}
}

func newCgroupIOModel(begin, end *sample.IOStat, elapsed time.Duration) CgroupIOModel {
	r := CountPerSec(begin.Rbytes, end.Rbytes, elapsed)
	w := CountPerSec(begin.Wbytes, end.Wbytes, elapsed)
	return CgroupIOModel{
		RbytesPerSec:  r,
		WbytesPerSec:  w,
		RiosPerSec:    CountPerSec(begin.Rios, end.Rios, elapsed),
		WiosPerSec:    CountPerSec(begin.Wios, end.Wios, elapsed),
		DbytesPerSec:  CountPerSec(begin.Dbytes, end.Dbytes, elapsed),
		DiosPerSec:    CountPerSec(begin.Dios, end.Dios, elapsed),
		RwbytesPerSec: OptAdd(r, w),
	}
}

// EmptyCgroupIO is the IO of a cgroup that has none: every rate is zero, not absent.
func EmptyCgroupIO() CgroupIOModel {
	return CgroupIOModel{
		RbytesPerSec:  ptr(0.0),
		WbytesPerSec:  ptr(0.0),
		RiosPerSec:    ptr(0.0),
		WiosPerSec:    ptr(0.0),
		DbytesPerSec:  ptr(0.0),
		DiosPerSec:    ptr(0.0),
		RwbytesPerSec: ptr(0.0),
	}
}

// Add sums two IO models field by field.
func (m CgroupIOModel) Add(o CgroupIOModel) CgroupIOModel {
	return CgroupIOModel{
		RbytesPerSec:  OptAdd(m.RbytesPerSec, o.RbytesPerSec),
		WbytesPerSec:  OptAdd(m.WbytesPerSec, o.WbytesPerSec),
		RiosPerSec:    OptAdd(m.RiosPerSec, o.RiosPerSec),
		WiosPerSec:    OptAdd(m.WiosPerSec, o.WiosPerSec),
		DbytesPerSec:  OptAdd(m.DbytesPerSec, o.DbytesPerSec),
		DiosPerSec:    OptAdd(m.DiosPerSec, o.DiosPerSec),
		RwbytesPerSec: OptAdd(m.RwbytesPerSec, o.RwbytesPerSec),
	}
}

// newCgroupMemoryModel reads gauges from the current sample. Event rates pair
// memory.stat of the current and previous samples, regardless of whether the
// cgroup was recreated.
func newCgroupMemoryModel(s *sample.CgroupSample, last *CgroupLast) *CgroupMemoryModel {
	m := &CgroupMemoryModel{
		Total:      s.MemoryCurrent,
		Swap:       s.MemorySwapCurrent,
		MemoryHigh: s.MemoryHigh,
	}
	if e := s.MemoryEvents; e != nil {
		m.EventsLow = e.Low
		m.EventsHigh = e.High
		m.EventsMax = e.Max
		m.EventsOOM = e.OOM
		m.EventsOOMKill = e.OOMKill
	}
	stat := s.MemoryStat
	if stat == nil {
		return m
	}
	m.Anon = stat.Anon
	m.File = stat.File
	m.KernelStack = stat.KernelStack
	m.Slab = stat.Slab
	m.Sock = stat.Sock
	m.Shmem = stat.Shmem
	m.FileMapped = stat.FileMapped
	m.FileDirty = stat.FileDirty
	m.FileWriteback = stat.FileWriteback
	m.AnonTHP = stat.AnonTHP
	m.InactiveAnon = stat.InactiveAnon
	m.ActiveAnon = stat.ActiveAnon
	m.InactiveFile = stat.InactiveFile
	m.ActiveFile = stat.ActiveFile
	m.Unevictable = stat.Unevictable
	m.SlabReclaimable = stat.SlabReclaimable
	m.SlabUnreclaimable = stat.SlabUnreclaimable

	if last == nil || last.Sample.MemoryStat == nil {
		return m
	}
	prev, d := last.Sample.MemoryStat, last.Elapsed
	m.Pgfault = CountPerSecU64(prev.Pgfault, stat.Pgfault, d)
	m.Pgmajfault = CountPerSecU64(prev.Pgmajfault, stat.Pgmajfault, d)
	m.WorkingsetRefault = CountPerSecU64(prev.WorkingsetRefault, stat.WorkingsetRefault, d)
	m.WorkingsetActivate = CountPerSecU64(prev.WorkingsetActivate, stat.WorkingsetActivate, d)
	m.WorkingsetNodereclaim = CountPerSecU64(prev.WorkingsetNodereclaim, stat.WorkingsetNodereclaim, d)
	m.Pgrefill = CountPerSecU64(prev.Pgrefill, stat.Pgrefill, d)
	m.Pgscan = CountPerSecU64(prev.Pgscan, stat.Pgscan, d)
	m.Pgsteal = CountPerSecU64(prev.Pgsteal, stat.Pgsteal, d)
	m.Pgactivate = CountPerSecU64(prev.Pgactivate, stat.Pgactivate, d)
	m.Pgdeactivate = CountPerSecU64(prev.Pgdeactivate, stat.Pgdeactivate, d)
	m.Pglazyfree = CountPerSecU64(prev.Pglazyfree, stat.Pglazyfree, d)
	m.Pglazyfreed = CountPerSecU64(prev.Pglazyfreed, stat.Pglazyfreed, d)
	m.THPFaultAlloc = CountPerSecU64(prev.THPFaultAlloc, stat.THPFaultAlloc, d)
	m.THPCollapseAlloc = CountPerSecU64(prev.THPCollapseAlloc, stat.THPCollapseAlloc, d)
	return m
}

// Add sums two memory models field by field. A sum has no memory.high.
func (m CgroupMemoryModel) Add(o CgroupMemoryModel) CgroupMemoryModel {
	return CgroupMemoryModel{
		Total:                 OptAdd(m.Total, o.Total),
		Swap:                  OptAdd(m.Swap, o.Swap),
		Anon:                  OptAdd(m.Anon, o.Anon),
		File:                  OptAdd(m.File, o.File),
		KernelStack:           OptAdd(m.KernelStack, o.KernelStack),
		Slab:                  OptAdd(m.Slab, o.Slab),
		Sock:                  OptAdd(m.Sock, o.Sock),
		Shmem:                 OptAdd(m.Shmem, o.Shmem),
		FileMapped:            OptAdd(m.FileMapped, o.FileMapped),
		FileDirty:             OptAdd(m.FileDirty, o.FileDirty),
		FileWriteback:         OptAdd(m.FileWriteback, o.FileWriteback),
		AnonTHP:               OptAdd(m.AnonTHP, o.AnonTHP),
		InactiveAnon:          OptAdd(m.InactiveAnon, o.InactiveAnon),
		ActiveAnon:            OptAdd(m.ActiveAnon, o.ActiveAnon),
		InactiveFile:          OptAdd(m.InactiveFile, o.InactiveFile),
		ActiveFile:            OptAdd(m.ActiveFile, o.ActiveFile),
		Unevictable:           OptAdd(m.Unevictable, o.Unevictable),
		SlabReclaimable:       OptAdd(m.SlabReclaimable, o.SlabReclaimable),
		SlabUnreclaimable:     OptAdd(m.SlabUnreclaimable, o.SlabUnreclaimable),
		Pgfault:               OptAdd(m.Pgfault, o.Pgfault),
		Pgmajfault:            OptAdd(m.Pgmajfault, o.Pgmajfault),
		WorkingsetRefault:     OptAdd(m.WorkingsetRefault, o.WorkingsetRefault),
		WorkingsetActivate:    OptAdd(m.WorkingsetActivate, o.WorkingsetActivate),
		WorkingsetNodereclaim: OptAdd(m.WorkingsetNodereclaim, o.WorkingsetNodereclaim),
		Pgrefill:              OptAdd(m.Pgrefill, o.Pgrefill),
		Pgscan:                OptAdd(m.Pgscan, o.Pgscan),
		Pgsteal:               OptAdd(m.Pgsteal, o.Pgsteal),
		Pgactivate:            OptAdd(m.Pgactivate, o.Pgactivate),
		Pgdeactivate:          OptAdd(m.Pgdeactivate, o.Pgdeactivate),
		Pglazyfree:            OptAdd(m.Pglazyfree, o.Pglazyfree),
		Pglazyfreed:           OptAdd(m.Pglazyfreed, o.Pglazyfreed),
		THPFaultAlloc:         OptAdd(m.THPFaultAlloc, o.THPFaultAlloc),
		THPCollapseAlloc:      OptAdd(m.THPCollapseAlloc, o.THPCollapseAlloc),
		EventsLow:             OptAdd(m.EventsLow, o.EventsLow),
		EventsHigh:            OptAdd(m.EventsHigh, o.EventsHigh),
		EventsMax:             OptAdd(m.EventsMax, o.EventsMax),
		EventsOOM:             OptAdd(m.EventsOOM, o.EventsOOM),
		EventsOOMKill:         OptAdd(m.EventsOOMKill, o.EventsOOMKill),
	}
}

// optAddMemory is OptAdd lifted to memory models.
func optAddMemory(a, b *CgroupMemoryModel) *CgroupMemoryModel {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		c := *b
		return &c
	case b == nil:
		c := *a
		return &c
	}
	sum := a.Add(*b)
	return &sum
}

func newCgroupPressureModel(p *sample.Pressure) *CgroupPressureModel {
	return &CgroupPressureModel{
		CPUSomePct:    p.CPU.Some.Avg10,
		IOSomePct:     p.IO.Some.Avg10,
		IOFullPct:     p.IO.Full.Avg10,
		MemorySomePct: p.Memory.Some.Avg10,
		MemoryFullPct: p.Memory.Full.Avg10,
	}
}
