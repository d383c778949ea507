// Copyright © 2025 The Gomon Project.

package model

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/zosmac/gomodel/sample"
)

type (
	// SystemModel is the derived state of the host.
	SystemModel struct {
		Hostname      string                                 `json:"hostname"`
		KernelVersion *string                                `json:"kernel_version,omitempty"`
		Total         *SingleCPUModel                        `json:"total_cpu,omitempty"`
		CPUs          Vec[SingleCPUFieldID, *SingleCPUModel] `json:"cpus,omitempty"`
		Mem           *MemoryModel                           `json:"mem,omitempty"`
		Vm            *VmModel                               `json:"vm,omitempty"`
		Disks         map[string]SingleDiskModel             `json:"disks,omitempty"`
		Load1         *float64                               `json:"load1,omitempty"`
		Load5         *float64                               `json:"load5,omitempty"`
		Load15        *float64                               `json:"load15,omitempty"`
	}

	// SingleCPUModel is the share of one cpu's, or all cpus', time spent in each mode.
	SingleCPUModel struct {
		Idx          *uint32  `json:"idx,omitempty"`
		UsagePct     *float64 `json:"usage_pct,omitempty"`
		UserPct      *float64 `json:"user_pct,omitempty"`
		NicePct      *float64 `json:"nice_pct,omitempty"`
		SystemPct    *float64 `json:"system_pct,omitempty"`
		IdlePct      *float64 `json:"idle_pct,omitempty"`
		IowaitPct    *float64 `json:"iowait_pct,omitempty"`
		IrqPct       *float64 `json:"irq_pct,omitempty"`
		SoftirqPct   *float64 `json:"softirq_pct,omitempty"`
		StolenPct    *float64 `json:"stolen_pct,omitempty"`
		GuestPct     *float64 `json:"guest_pct,omitempty"`
		GuestNicePct *float64 `json:"guest_nice_pct,omitempty"`
	}

	// MemoryModel holds the /proc/meminfo gauges.
	MemoryModel struct {
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

	// VmModel holds /proc/vmstat paging rates.
	VmModel struct {
		PgpginPerSec     *float64 `json:"pgpgin_per_sec,omitempty"`
		PgpgoutPerSec    *float64 `json:"pgpgout_per_sec,omitempty"`
		PswpinPerSec     *float64 `json:"pswpin_per_sec,omitempty"`
		PswpoutPerSec    *float64 `json:"pswpout_per_sec,omitempty"`
		PgfaultPerSec    *float64 `json:"pgfault_per_sec,omitempty"`
		PgmajfaultPerSec *float64 `json:"pgmajfault_per_sec,omitempty"`
		PgstealPerSec    *float64 `json:"pgsteal_per_sec,omitempty"`
		PgscanPerSec     *float64 `json:"pgscan_per_sec,omitempty"`
	}

	// SingleDiskModel holds the rates of one block device.
	SingleDiskModel struct {
		Name                 *string  `json:"name,omitempty"`
		ReadBytesPerSec      *float64 `json:"read_bytes_per_sec,omitempty"`
		WriteBytesPerSec     *float64 `json:"write_bytes_per_sec,omitempty"`
		ReadIOsPerSec        *float64 `json:"read_ios_per_sec,omitempty"`
		WriteIOsPerSec       *float64 `json:"write_ios_per_sec,omitempty"`
		DiskTotalBytesPerSec *float64 `json:"disk_total_bytes_per_sec,omitempty"`
	}

	// SystemFieldID addresses a field of a SystemModel.
	SystemFieldID interface {
		FieldID
		systemFieldID()
	}

	// SystemLeaf enumerates the scalar fields of a SystemModel.
	SystemLeaf int

	// SystemCPU addresses a field of the all cpu total, path "cpu.<field>".
	SystemCPU struct{ ID SingleCPUFieldID }
	// SystemCPUs addresses a field of one cpu, path "cpus.<idx>.<field>".
	SystemCPUs struct{ ID IndexFieldID[SingleCPUFieldID] }
	// SystemMem addresses a field of the memory model, path "mem.<field>".
	SystemMem struct{ ID MemoryFieldID }
	// SystemVm addresses a field of the vm model, path "vm.<field>".
	SystemVm struct{ ID VmFieldID }

	// SingleCPUFieldID enumerates the fields of a SingleCPUModel.
	SingleCPUFieldID int
	// MemoryFieldID enumerates the fields of a MemoryModel.
	MemoryFieldID int
	// VmFieldID enumerates the fields of a VmModel.
	VmFieldID int
	// DiskFieldID enumerates the fields of a SingleDiskModel.
	DiskFieldID int
)

const (
	SystemHostname SystemLeaf = iota
	SystemKernelVersion
	SystemLoad1
	SystemLoad5
	SystemLoad15
)

const (
	CPUIdx SingleCPUFieldID = iota
	CPUUsagePct
	CPUUserPct
	CPUNicePct
	CPUSystemPct
	CPUIdlePct
	CPUIowaitPct
	CPUIrqPct
	CPUSoftirqPct
	CPUStolenPct
	CPUGuestPct
	CPUGuestNicePct
)

const (
	MemoryTotal MemoryFieldID = iota
	MemoryFree
	MemoryAvailable
	MemoryBuffers
	MemoryCached
	MemoryActive
	MemoryInactive
	MemoryDirty
	MemorySlab
	MemoryShmem
	MemorySwapTotal
	MemorySwapFree
)

const (
	VmPgpginPerSec VmFieldID = iota
	VmPgpgoutPerSec
	VmPswpinPerSec
	VmPswpoutPerSec
	VmPgfaultPerSec
	VmPgmajfaultPerSec
	VmPgstealPerSec
	VmPgscanPerSec
)

const (
	DiskName DiskFieldID = iota
	DiskReadBytesPerSec
	DiskWriteBytesPerSec
	DiskReadIOsPerSec
	DiskWriteIOsPerSec
	DiskTotalBytesPerSec
)

var (
	systemFields = accessors[SystemModel]{
		SystemHostname:      {"hostname", func(m *SystemModel) Field { return Str(m.Hostname) }},
		SystemKernelVersion: {"kernel_version", func(m *SystemModel) Field { return strField(m.KernelVersion) }},
		SystemLoad1:         {"load1", func(m *SystemModel) Field { return f64Field(m.Load1) }},
		SystemLoad5:         {"load5", func(m *SystemModel) Field { return f64Field(m.Load5) }},
		SystemLoad15:        {"load15", func(m *SystemModel) Field { return f64Field(m.Load15) }},
	}

	cpuFields = accessors[SingleCPUModel]{
		CPUIdx:          {"idx", func(m *SingleCPUModel) Field { return u32Field(m.Idx) }},
		CPUUsagePct:     {"usage_pct", func(m *SingleCPUModel) Field { return f64Field(m.UsagePct) }},
		CPUUserPct:      {"user_pct", func(m *SingleCPUModel) Field { return f64Field(m.UserPct) }},
		CPUNicePct:      {"nice_pct", func(m *SingleCPUModel) Field { return f64Field(m.NicePct) }},
		CPUSystemPct:    {"system_pct", func(m *SingleCPUModel) Field { return f64Field(m.SystemPct) }},
		CPUIdlePct:      {"idle_pct", func(m *SingleCPUModel) Field { return f64Field(m.IdlePct) }},
		CPUIowaitPct:    {"iowait_pct", func(m *SingleCPUModel) Field { return f64Field(m.IowaitPct) }},
		CPUIrqPct:       {"irq_pct", func(m *SingleCPUModel) Field { return f64Field(m.IrqPct) }},
		CPUSoftirqPct:   {"softirq_pct", func(m *SingleCPUModel) Field { return f64Field(m.SoftirqPct) }},
		CPUStolenPct:    {"stolen_pct", func(m *SingleCPUModel) Field { return f64Field(m.StolenPct) }},
		CPUGuestPct:     {"guest_pct", func(m *SingleCPUModel) Field { return f64Field(m.GuestPct) }},
		CPUGuestNicePct: {"guest_nice_pct", func(m *SingleCPUModel) Field { return f64Field(m.GuestNicePct) }},
	}

	memoryFields = accessors[MemoryModel]{
		MemoryTotal:     {"total", func(m *MemoryModel) Field { return u64Field(m.Total) }},
		MemoryFree:      {"free", func(m *MemoryModel) Field { return u64Field(m.Free) }},
		MemoryAvailable: {"available", func(m *MemoryModel) Field { return u64Field(m.Available) }},
		MemoryBuffers:   {"buffers", func(m *MemoryModel) Field { return u64Field(m.Buffers) }},
		MemoryCached:    {"cached", func(m *MemoryModel) Field { return u64Field(m.Cached) }},
		MemoryActive:    {"active", func(m *MemoryModel) Field { return u64Field(m.Active) }},
		MemoryInactive:  {"inactive", func(m *MemoryModel) Field { return u64Field(m.Inactive) }},
		MemoryDirty:     {"dirty", func(m *MemoryModel) Field { return u64Field(m.Dirty) }},
		MemorySlab:      {"slab", func(m *MemoryModel) Field { return u64Field(m.Slab) }},
		MemoryShmem:     {"shmem", func(m *MemoryModel) Field { return u64Field(m.Shmem) }},
		MemorySwapTotal: {"swap_total", func(m *MemoryModel) Field { return u64Field(m.SwapTotal) }},
		MemorySwapFree:  {"swap_free", func(m *MemoryModel) Field { return u64Field(m.SwapFree) }},
	}

	vmFields = accessors[VmModel]{
		VmPgpginPerSec:     {"pgpgin_per_sec", func(m *VmModel) Field { return f64Field(m.PgpginPerSec) }},
		VmPgpgoutPerSec:    {"pgpgout_per_sec", func(m *VmModel) Field { return f64Field(m.PgpgoutPerSec) }},
		VmPswpinPerSec:     {"pswpin_per_sec", func(m *VmModel) Field { return f64Field(m.PswpinPerSec) }},
		VmPswpoutPerSec:    {"pswpout_per_sec", func(m *VmModel) Field { return f64Field(m.PswpoutPerSec) }},
		VmPgfaultPerSec:    {"pgfault_per_sec", func(m *VmModel) Field { return f64Field(m.PgfaultPerSec) }},
		VmPgmajfaultPerSec: {"pgmajfault_per_sec", func(m *VmModel) Field { return f64Field(m.PgmajfaultPerSec) }},
		VmPgstealPerSec:    {"pgsteal_per_sec", func(m *VmModel) Field { return f64Field(m.PgstealPerSec) }},
		VmPgscanPerSec:     {"pgscan_per_sec", func(m *VmModel) Field { return f64Field(m.PgscanPerSec) }},
	}

	diskFields = accessors[SingleDiskModel]{
		DiskName:             {"name", func(m *SingleDiskModel) Field { return strField(m.Name) }},
		DiskReadBytesPerSec:  {"read_bytes_per_sec", func(m *SingleDiskModel) Field { return f64Field(m.ReadBytesPerSec) }},
		DiskWriteBytesPerSec: {"write_bytes_per_sec", func(m *SingleDiskModel) Field { return f64Field(m.WriteBytesPerSec) }},
		DiskReadIOsPerSec:    {"read_ios_per_sec", func(m *SingleDiskModel) Field { return f64Field(m.ReadIOsPerSec) }},
		DiskWriteIOsPerSec:   {"write_ios_per_sec", func(m *SingleDiskModel) Field { return f64Field(m.WriteIOsPerSec) }},
		DiskTotalBytesPerSec: {"disk_total_bytes_per_sec", func(m *SingleDiskModel) Field { return f64Field(m.DiskTotalBytesPerSec) }},
	}
)

// NewSystemModel derives the host model. Rates require the previous tick's sample.
func NewSystemModel(s *sample.SystemSample, last *sample.SystemSample, elapsed time.Duration) *SystemModel {
	m := &SystemModel{
		Hostname:      s.Hostname,
		KernelVersion: s.KernelVersion,
	}
	if l := s.LoadAvg; l != nil {
		m.Load1, m.Load5, m.Load15 = l.Load1, l.Load5, l.Load15
	}
	if s.Meminfo != nil {
		m.Mem = newMemoryModel(s.Meminfo)
	}

	if last != nil && last.Total != nil && s.Total != nil {
		m.Total = newSingleCPUModel(nil, last.Total, s.Total)
	}
	for i := range s.CPUs {
		cpu := &SingleCPUModel{Idx: ptr(uint32(i))}
		if last != nil && i < len(last.CPUs) {
			cpu = newSingleCPUModel(cpu.Idx, &last.CPUs[i], &s.CPUs[i])
		}
		m.CPUs = append(m.CPUs, cpu)
	}

	if last != nil && last.Vmstat != nil && s.Vmstat != nil {
		m.Vm = newVmModel(last.Vmstat, s.Vmstat, elapsed)
	}

	if s.Disks != nil {
		m.Disks = make(map[string]SingleDiskModel, len(s.Disks))
		for name, end := range s.Disks {
			d := SingleDiskModel{Name: ptr(name)}
			if last != nil {
				if begin, ok := last.Disks[name]; ok {
					d = newSingleDiskModel(name, &begin, &end, elapsed)
				}
			}
			m.Disks[name] = d
		}
	}
	return m
}

// newSingleCPUModel computes each mode's share of the change in total cpu time.
// Guest time is already accounted in user time and is not added to the total.
func newSingleCPUModel(idx *uint32, begin, end *sample.CPUTimes) *SingleCPUModel {
	diff := func(b, e *uint64) *float64 {
		if b == nil || e == nil {
			return nil
		}
		return ptr(float64(*e) - float64(*b))
	}
	user := diff(begin.User, end.User)
	nice := diff(begin.Nice, end.Nice)
	system := diff(begin.System, end.System)
	idle := diff(begin.Idle, end.Idle)
	iowait := diff(begin.Iowait, end.Iowait)
	irq := diff(begin.Irq, end.Irq)
	softirq := diff(begin.Softirq, end.Softirq)
	stolen := diff(begin.Steal, end.Steal)
	guest := diff(begin.Guest, end.Guest)
	guestNice := diff(begin.GuestNice, end.GuestNice)

	var total *float64
	for _, v := range []*float64{user, nice, system, idle, iowait, irq, softirq, stolen} {
		total = OptAdd(total, v)
	}
	var busy *float64
	if total != nil && idle != nil {
		busy = ptr(*total - *idle)
		if iowait != nil {
			*busy -= *iowait
		}
	}
	return &SingleCPUModel{
		Idx:          idx,
		UsagePct:     Ratio(busy, total),
		UserPct:      Ratio(user, total),
		NicePct:      Ratio(nice, total),
		SystemPct:    Ratio(system, total),
		IdlePct:      Ratio(idle, total),
		IowaitPct:    Ratio(iowait, total),
		IrqPct:       Ratio(irq, total),
		SoftirqPct:   Ratio(softirq, total),
		StolenPct:    Ratio(stolen, total),
		GuestPct:     Ratio(guest, total),
		GuestNicePct: Ratio(guestNice, total),
	}
}

func newMemoryModel(mi *sample.Meminfo) *MemoryModel {
	return &MemoryModel{
		Total:     mi.Total,
		Free:      mi.Free,
		Available: mi.Available,
		Buffers:   mi.Buffers,
		Cached:    mi.Cached,
		Active:    mi.Active,
		Inactive:  mi.Inactive,
		Dirty:     mi.Dirty,
		Slab:      mi.Slab,
		Shmem:     mi.Shmem,
		SwapTotal: mi.SwapTotal,
		SwapFree:  mi.SwapFree,
	}
}

func newVmModel(begin, end *sample.Vmstat, elapsed time.Duration) *VmModel {
	return &VmModel{
		PgpginPerSec:     CountPerSec(begin.Pgpgin, end.Pgpgin, elapsed),
		PgpgoutPerSec:    CountPerSec(begin.Pgpgout, end.Pgpgout, elapsed),
		PswpinPerSec:     CountPerSec(begin.Pswpin, end.Pswpin, elapsed),
		PswpoutPerSec:    CountPerSec(begin.Pswpout, end.Pswpout, elapsed),
		PgfaultPerSec:    CountPerSec(begin.Pgfault, end.Pgfault, elapsed),
		PgmajfaultPerSec: CountPerSec(begin.Pgmajfault, end.Pgmajfault, elapsed),
		PgstealPerSec:    CountPerSec(begin.Pgsteal, end.Pgsteal, elapsed),
		PgscanPerSec:     CountPerSec(begin.Pgscan, end.Pgscan, elapsed),
	}
}

func newSingleDiskModel(name string, begin, end *sample.DiskStat, elapsed time.Duration) SingleDiskModel {
	r := CountPerSec(begin.ReadBytes, end.ReadBytes, elapsed)
	w := CountPerSec(begin.WriteBytes, end.WriteBytes, elapsed)
	return SingleDiskModel{
		Name:                 ptr(name),
		ReadBytesPerSec:      r,
		WriteBytesPerSec:     w,
		ReadIOsPerSec:        CountPerSec(begin.ReadIOs, end.ReadIOs, elapsed),
		WriteIOsPerSec:       CountPerSec(begin.WriteIOs, end.WriteIOs, elapsed),
		DiskTotalBytesPerSec: OptAdd(r, w),
	}
}

// SortedDisks returns the disks ordered by the field, ties in name order.
func (m *SystemModel) SortedDisks(id DiskFieldID, reverse bool) []*SingleDiskModel {
	names := slices.Sorted(maps.Keys(m.Disks))
	ds := make([]*SingleDiskModel, len(names))
	for i, name := range names {
		d := m.Disks[name]
		ds[i] = &d
	}
	SortQueriables(ds, id, reverse)
	return ds
}

func (SystemLeaf) systemFieldID() {}
func (SystemCPU) systemFieldID()  {}
func (SystemCPUs) systemFieldID() {}
func (SystemMem) systemFieldID()  {}
func (SystemVm) systemFieldID()   {}

func (id SystemLeaf) String() string       { return systemFields.name(int(id)) }
func (id SystemCPU) String() string        { return "cpu." + id.ID.String() }
func (id SystemCPUs) String() string       { return "cpus." + id.ID.String() }
func (id SystemMem) String() string        { return "mem." + id.ID.String() }
func (id SystemVm) String() string         { return "vm." + id.ID.String() }
func (id SingleCPUFieldID) String() string { return cpuFields.name(int(id)) }
func (id MemoryFieldID) String() string    { return memoryFields.name(int(id)) }
func (id VmFieldID) String() string        { return vmFields.name(int(id)) }
func (id DiskFieldID) String() string      { return diskFields.name(int(id)) }

// Query returns the addressed field, nil if it or its sub-model is absent.
func (m *SystemModel) Query(id SystemFieldID) Field {
	if m == nil {
		return nil
	}
	switch id := id.(type) {
	case SystemLeaf:
		return systemFields.query(m, int(id))
	case SystemCPU:
		return m.Total.Query(id.ID)
	case SystemCPUs:
		return m.CPUs.Query(id.ID)
	case SystemMem:
		return m.Mem.Query(id.ID)
	case SystemVm:
		return m.Vm.Query(id.ID)
	}
	return nil
}

// Query returns the addressed field of a cpu model.
func (m *SingleCPUModel) Query(id SingleCPUFieldID) Field {
	return cpuFields.query(m, int(id))
}

// Query returns the addressed field of the memory model.
func (m *MemoryModel) Query(id MemoryFieldID) Field {
	return memoryFields.query(m, int(id))
}

// Query returns the addressed field of the vm model.
func (m *VmModel) Query(id VmFieldID) Field {
	return vmFields.query(m, int(id))
}

// Query returns the addressed field of a disk model.
func (m *SingleDiskModel) Query(id DiskFieldID) Field {
	return diskFields.query(m, int(id))
}

// ParseSingleCPUFieldID parses a cpu field name.
func ParseSingleCPUFieldID(s string) (SingleCPUFieldID, error) {
	return parseLeaf[SingleCPUFieldID](cpuFields, s)
}

// ParseDiskFieldID parses a disk field name.
func ParseDiskFieldID(s string) (DiskFieldID, error) {
	return parseLeaf[DiskFieldID](diskFields, s)
}

// ParseSystemFieldID parses a field path such as "load1", "cpu.user_pct",
// "cpus.3.idle_pct" or "vm.pgfault_per_sec".
func ParseSystemFieldID(s string) (SystemFieldID, error) {
	prefix, rest, ok := strings.Cut(s, ".")
	if !ok {
		id, err := parseLeaf[SystemLeaf](systemFields, s)
		if err != nil {
			return nil, err
		}
		return id, nil
	}
	var (
		id  SystemFieldID
		err error
	)
	switch prefix {
	case "cpu":
		var sub SingleCPUFieldID
		sub, err = ParseSingleCPUFieldID(rest)
		id = SystemCPU{sub}
	case "cpus":
		var sub IndexFieldID[SingleCPUFieldID]
		sub, err = ParseIndexFieldID(rest, ParseSingleCPUFieldID)
		id = SystemCPUs{sub}
	case "mem":
		var sub MemoryFieldID
		sub, err = parseLeaf[MemoryFieldID](memoryFields, rest)
		id = SystemMem{sub}
	case "vm":
		var sub VmFieldID
		sub, err = parseLeaf[VmFieldID](vmFields, rest)
		id = SystemVm{sub}
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidFieldID, s)
	}
	if err != nil {
		return nil, fmt.Errorf("system field %q: %w", s, err)
	}
	return id, nil
}

// SystemFieldIDs lists the field paths of a SystemModel. Per cpu fields are
// listed for cpus indices 0 to ncpu-1.
func SystemFieldIDs(ncpu int) []SystemFieldID {
	var ids []SystemFieldID
	ids = append(ids, prefixed(allLeaves[SystemLeaf](systemFields), func(l SystemLeaf) SystemFieldID { return l })...)
	cpus := allLeaves[SingleCPUFieldID](cpuFields)
	ids = append(ids, prefixed(cpus, func(l SingleCPUFieldID) SystemFieldID { return SystemCPU{l} })...)
	for i := range ncpu {
		ids = append(ids, prefixed(cpus, func(l SingleCPUFieldID) SystemFieldID {
			return SystemCPUs{IndexFieldID[SingleCPUFieldID]{Idx: i, Sub: l}}
		})...)
	}
	ids = append(ids, prefixed(allLeaves[MemoryFieldID](memoryFields), func(l MemoryFieldID) SystemFieldID { return SystemMem{l} })...)
	ids = append(ids, prefixed(allLeaves[VmFieldID](vmFields), func(l VmFieldID) SystemFieldID { return SystemVm{l} })...)
	return ids
}

// DiskFieldIDs lists the fields of a SingleDiskModel.
func DiskFieldIDs() []DiskFieldID {
	return allLeaves[DiskFieldID](diskFields)
}

// SingleCPUFieldIDs lists the fields of a SingleCPUModel.
func SingleCPUFieldIDs() []SingleCPUFieldID {
	return allLeaves[SingleCPUFieldID](cpuFields)
}

// MemoryFieldIDs lists the fields of a MemoryModel.
func MemoryFieldIDs() []MemoryFieldID {
	return allLeaves[MemoryFieldID](memoryFields)
}

// VmFieldIDs lists the fields of a VmModel.
func VmFieldIDs() []VmFieldID {
	return allLeaves[VmFieldID](vmFields)
}
