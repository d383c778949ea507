// Copyright © 2025 The Gomon Project.

package model

import (
	"fmt"
	"strings"
)

type (
	// CgroupFieldID addresses a field of a CgroupModel: a CgroupLeaf, or a
	// field of one of its CPU, memory, IO total or pressure sub-models.
	CgroupFieldID interface {
		FieldID
		cgroupFieldID()
	}

	// CgroupLeaf enumerates the scalar fields of a CgroupModel.
	CgroupLeaf int

	// CgroupCPU addresses a field of the cgroup's CPU model, path "cpu.<field>".
	CgroupCPU struct{ ID CgroupCPUFieldID }
	// CgroupMem addresses a field of the cgroup's memory model, path "mem.<field>".
	CgroupMem struct{ ID CgroupMemoryFieldID }
	// CgroupIO addresses a field of the cgroup's IO total, path "io.<field>".
	CgroupIO struct{ ID CgroupIOFieldID }
	// CgroupPressure addresses a field of the cgroup's pressure model, path "pressure.<field>".
	CgroupPressure struct{ ID CgroupPressureFieldID }

	// CgroupCPUFieldID enumerates the fields of a CgroupCPUModel.
	CgroupCPUFieldID int
	// CgroupIOFieldID enumerates the fields of a CgroupIOModel.
	CgroupIOFieldID int
	// CgroupMemoryFieldID enumerates the fields of a CgroupMemoryModel.
	CgroupMemoryFieldID int
	// CgroupPressureFieldID enumerates the fields of a CgroupPressureModel.
	CgroupPressureFieldID int
)

const (
	CgroupName CgroupLeaf = iota
	CgroupFullPath
	CgroupInodeNumber
)

const (
	CgroupCPUUsagePct CgroupCPUFieldID = iota
	CgroupCPUUserPct
	CgroupCPUSystemPct
	CgroupCPUNrPeriodsPerSec
	CgroupCPUNrThrottledPerSec
	CgroupCPUThrottledPct
)

const (
	CgroupIORbytesPerSec CgroupIOFieldID = iota
	CgroupIOWbytesPerSec
	CgroupIORiosPerSec
	CgroupIOWiosPerSec
	CgroupIODbytesPerSec
	CgroupIODiosPerSec
	CgroupIORwbytesPerSec
)

const (
	CgroupMemoryTotal CgroupMemoryFieldID = iota
	CgroupMemorySwap
	CgroupMemoryAnon
	CgroupMemoryFile
	CgroupMemoryKernelStack
	CgroupMemorySlab
	CgroupMemorySock
	CgroupMemoryShmem
	CgroupMemoryFileMapped
	CgroupMemoryFileDirty
	CgroupMemoryFileWriteback
	CgroupMemoryAnonTHP
	CgroupMemoryInactiveAnon
	CgroupMemoryActiveAnon
	CgroupMemoryInactiveFile
	CgroupMemoryActiveFile
	CgroupMemoryUnevictable
	CgroupMemorySlabReclaimable
	CgroupMemorySlabUnreclaimable
	CgroupMemoryPgfault
	CgroupMemoryPgmajfault
	CgroupMemoryWorkingsetRefault
	CgroupMemoryWorkingsetActivate
	CgroupMemoryWorkingsetNodereclaim
	CgroupMemoryPgrefill
	CgroupMemoryPgscan
	CgroupMemoryPgsteal
	CgroupMemoryPgactivate
	CgroupMemoryPgdeactivate
	CgroupMemoryPglazyfree
	CgroupMemoryPglazyfreed
	CgroupMemoryTHPFaultAlloc
	CgroupMemoryTHPCollapseAlloc
	CgroupMemoryHigh
	CgroupMemoryEventsLow
	CgroupMemoryEventsHigh
	CgroupMemoryEventsMax
	CgroupMemoryEventsOOM
	CgroupMemoryEventsOOMKill
)

const (
	CgroupPressureCPUSomePct CgroupPressureFieldID = iota
	CgroupPressureIOSomePct
	CgroupPressureIOFullPct
	CgroupPressureMemorySomePct
	CgroupPressureMemoryFullPct
)

var (
	cgroupFields = accessors[CgroupModel]{
		CgroupName:        {"name", func(m *CgroupModel) Field { return Str(m.Name) }},
		CgroupFullPath:    {"full_path", func(m *CgroupModel) Field { return Str(m.FullPath) }},
		CgroupInodeNumber: {"inode_number", func(m *CgroupModel) Field { return u64Field(m.InodeNumber) }},
	}

	cgroupCPUFields = accessors[CgroupCPUModel]{
		CgroupCPUUsagePct:          {"usage_pct", func(m *CgroupCPUModel) Field { return f64Field(m.UsagePct) }},
		CgroupCPUUserPct:           {"user_pct", func(m *CgroupCPUModel) Field { return f64Field(m.UserPct) }},
		CgroupCPUSystemPct:         {"system_pct", func(m *CgroupCPUModel) Field { return f64Field(m.SystemPct) }},
		CgroupCPUNrPeriodsPerSec:   {"nr_periods_per_sec", func(m *CgroupCPUModel) Field { return f64Field(m.NrPeriodsPerSec) }},
		CgroupCPUNrThrottledPerSec: {"nr_throttled_per_sec", func(m *CgroupCPUModel) Field { return f64Field(m.NrThrottledPerSec) }},
		CgroupCPUThrottledPct:      {"throttled_pct", func(m *CgroupCPUModel) Field { return f64Field(m.ThrottledPct) }},
	}

	cgroupIOFields = accessors[CgroupIOModel]{
		CgroupIORbytesPerSec:  {"rbytes_per_sec", func(m *CgroupIOModel) Field { return f64Field(m.RbytesPerSec) }},
		CgroupIOWbytesPerSec:  {"wbytes_per_sec", func(m *CgroupIOModel) Field { return f64Field(m.WbytesPerSec) }},
		CgroupIORiosPerSec:    {"rios_per_sec", func(m *CgroupIOModel) Field { return f64Field(m.RiosPerSec) }},
		CgroupIOWiosPerSec:    {"wios_per_sec", func(m *CgroupIOModel) Field { return f64Field(m.WiosPerSec) }},
		CgroupIODbytesPerSec:  {"dbytes_per_sec", func(m *CgroupIOModel) Field { return f64Field(m.DbytesPerSec) }},
		CgroupIODiosPerSec:    {"dios_per_sec", func(m *CgroupIOModel) Field { return f64Field(m.DiosPerSec) }},
		CgroupIORwbytesPerSec: {"rwbytes_per_sec", func(m *CgroupIOModel) Field { return f64Field(m.RwbytesPerSec) }},
	}

	cgroupMemoryFields = accessors[CgroupMemoryModel]{
		CgroupMemoryTotal:                 {"total", func(m *CgroupMemoryModel) Field { return u64Field(m.Total) }},
		CgroupMemorySwap:                  {"swap", func(m *CgroupMemoryModel) Field { return u64Field(m.Swap) }},
		CgroupMemoryAnon:                  {"anon", func(m *CgroupMemoryModel) Field { return u64Field(m.Anon) }},
		CgroupMemoryFile:                  {"file", func(m *CgroupMemoryModel) Field { return u64Field(m.File) }},
		CgroupMemoryKernelStack:           {"kernel_stack", func(m *CgroupMemoryModel) Field { return u64Field(m.KernelStack) }},
		CgroupMemorySlab:                  {"slab", func(m *CgroupMemoryModel) Field { return u64Field(m.Slab) }},
		CgroupMemorySock:                  {"sock", func(m *CgroupMemoryModel) Field { return u64Field(m.Sock) }},
		CgroupMemoryShmem:                 {"shmem", func(m *CgroupMemoryModel) Field { return u64Field(m.Shmem) }},
		CgroupMemoryFileMapped:            {"file_mapped", func(m *CgroupMemoryModel) Field { return u64Field(m.FileMapped) }},
		CgroupMemoryFileDirty:             {"file_dirty", func(m *CgroupMemoryModel) Field { return u64Field(m.FileDirty) }},
		CgroupMemoryFileWriteback:         {"file_writeback", func(m *CgroupMemoryModel) Field { return u64Field(m.FileWriteback) }},
		CgroupMemoryAnonTHP:               {"anon_thp", func(m *CgroupMemoryModel) Field { return u64Field(m.AnonTHP) }},
		CgroupMemoryInactiveAnon:          {"inactive_anon", func(m *CgroupMemoryModel) Field { return u64Field(m.InactiveAnon) }},
		CgroupMemoryActiveAnon:            {"active_anon", func(m *CgroupMemoryModel) Field { return u64Field(m.ActiveAnon) }},
		CgroupMemoryInactiveFile:          {"inactive_file", func(m *CgroupMemoryModel) Field { return u64Field(m.InactiveFile) }},
		CgroupMemoryActiveFile:            {"active_file", func(m *CgroupMemoryModel) Field { return u64Field(m.ActiveFile) }},
		CgroupMemoryUnevictable:           {"unevictable", func(m *CgroupMemoryModel) Field { return u64Field(m.Unevictable) }},
		CgroupMemorySlabReclaimable:       {"slab_reclaimable", func(m *CgroupMemoryModel) Field { return u64Field(m.SlabReclaimable) }},
		CgroupMemorySlabUnreclaimable:     {"slab_unreclaimable", func(m *CgroupMemoryModel) Field { return u64Field(m.SlabUnreclaimable) }},
		CgroupMemoryPgfault:               {"pgfault", func(m *CgroupMemoryModel) Field { return u64Field(m.Pgfault) }},
		CgroupMemoryPgmajfault:            {"pgmajfault", func(m *CgroupMemoryModel) Field { return u64Field(m.Pgmajfault) }},
		CgroupMemoryWorkingsetRefault:     {"workingset_refault", func(m *CgroupMemoryModel) Field { return u64Field(m.WorkingsetRefault) }},
		CgroupMemoryWorkingsetActivate:    {"workingset_activate", func(m *CgroupMemoryModel) Field { return u64Field(m.WorkingsetActivate) }},
		CgroupMemoryWorkingsetNodereclaim: {"workingset_nodereclaim", func(m *CgroupMemoryModel) Field { return u64Field(m.WorkingsetNodereclaim) }},
		CgroupMemoryPgrefill:              {"pgrefill", func(m *CgroupMemoryModel) Field { return u64Field(m.Pgrefill) }},
		CgroupMemoryPgscan:                {"pgscan", func(m *CgroupMemoryModel) Field { return u64Field(m.Pgscan) }},
		CgroupMemoryPgsteal:               {"pgsteal", func(m *CgroupMemoryModel) Field { return u64Field(m.Pgsteal) }},
		CgroupMemoryPgactivate:            {"pgactivate", func(m *CgroupMemoryModel) Field { return u64Field(m.Pgactivate) }},
		CgroupMemoryPgdeactivate:          {"pgdeactivate", func(m *CgroupMemoryModel) Field { return u64Field(m.Pgdeactivate) }},
		CgroupMemoryPglazyfree:            {"pglazyfree", func(m *CgroupMemoryModel) Field { return u64Field(m.Pglazyfree) }},
		CgroupMemoryPglazyfreed:           {"pglazyfreed", func(m *CgroupMemoryModel) Field { return u64Field(m.Pglazyfreed) }},
		CgroupMemoryTHPFaultAlloc:         {"thp_fault_alloc", func(m *CgroupMemoryModel) Field { return u64Field(m.THPFaultAlloc) }},
		CgroupMemoryTHPCollapseAlloc:      {"thp_collapse_alloc", func(m *CgroupMemoryModel) Field { return u64Field(m.THPCollapseAlloc) }},
		CgroupMemoryHigh:                  {"memory_high", func(m *CgroupMemoryModel) Field { return i64Field(m.MemoryHigh) }},
		CgroupMemoryEventsLow:             {"events_low", func(m *CgroupMemoryModel) Field { return u64Field(m.EventsLow) }},
		CgroupMemoryEventsHigh:            {"events_high", func(m *CgroupMemoryModel) Field { return u64Field(m.EventsHigh) }},
		CgroupMemoryEventsMax:             {"events_max", func(m *CgroupMemoryModel) Field { return u64Field(m.EventsMax) }},
		CgroupMemoryEventsOOM:             {"events_oom", func(m *CgroupMemoryModel) Field { return u64Field(m.EventsOOM) }},
		CgroupMemoryEventsOOMKill:         {"events_oom_kill", func(m *CgroupMemoryModel) Field { return u64Field(m.EventsOOMKill) }},
	}

	cgroupPressureFields = accessors[CgroupPressureModel]{
		CgroupPressureCPUSomePct:    {"cpu_some_pct", func(m *CgroupPressureModel) Field { return f64Field(m.CPUSomePct) }},
		CgroupPressureIOSomePct:     {"io_some_pct", func(m *CgroupPressureModel) Field { return f64Field(m.IOSomePct) }},
		CgroupPressureIOFullPct:     {"io_full_pct", func(m *CgroupPressureModel) Field { return f64Field(m.IOFullPct) }},
		CgroupPressureMemorySomePct: {"memory_some_pct", func(m *CgroupPressureModel) Field { return f64Field(m.MemorySomePct) }},
		CgroupPressureMemoryFullPct: {"memory_full_pct", func(m *CgroupPressureModel) Field { return f64Field(m.MemoryFullPct) }},
	}
)

func (CgroupLeaf) cgroupFieldID()     {}
func (CgroupCPU) cgroupFieldID()      {}
func (CgroupMem) cgroupFieldID()      {}
func (CgroupIO) cgroupFieldID()       {}
func (CgroupPressure) cgroupFieldID() {}

func (id CgroupLeaf) String() string            { return cgroupFields.name(int(id)) }
func (id CgroupCPU) String() string             { return "cpu." + id.ID.String() }
func (id CgroupMem) String() string             { return "mem." + id.ID.String() }
func (id CgroupIO) String() string              { return "io." + id.ID.String() }
func (id CgroupPressure) String() string        { return "pressure." + id.ID.String() }
func (id CgroupCPUFieldID) String() string      { return cgroupCPUFields.name(int(id)) }
func (id CgroupIOFieldID) String() string       { return cgroupIOFields.name(int(id)) }
func (id CgroupMemoryFieldID) String() string   { return cgroupMemoryFields.name(int(id)) }
func (id CgroupPressureFieldID) String() string { return cgroupPressureFields.name(int(id)) }

// Query returns the addressed field, nil if it or its sub-model is absent.
func (m *CgroupModel) Query(id CgroupFieldID) Field {
	if m == nil {
		return nil
	}
	switch id := id.(type) {
	case CgroupLeaf:
		return cgroupFields.query(m, int(id))
	case CgroupCPU:
		return m.CPU.Query(id.ID)
	case CgroupMem:
		return m.Memory.Query(id.ID)
	case CgroupIO:
		return m.IOTotal.Query(id.ID)
	case CgroupPressure:
		return m.Pressure.Query(id.ID)
	}
	return nil
}

// Query returns the addressed field of a CPU model.
func (m *CgroupCPUModel) Query(id CgroupCPUFieldID) Field {
	return cgroupCPUFields.query(m, int(id))
}

// Query returns the addressed field of an IO model.
func (m *CgroupIOModel) Query(id CgroupIOFieldID) Field {
	return cgroupIOFields.query(m, int(id))
}

// Query returns the addressed field of a memory model.
func (m *CgroupMemoryModel) Query(id CgroupMemoryFieldID) Field {
	return cgroupMemoryFields.query(m, int(id))
}

// Query returns the addressed field of a pressure model.
func (m *CgroupPressureModel) Query(id CgroupPressureFieldID) Field {
	return cgroupPressureFields.query(m, int(id))
}

// ParseCgroupFieldID parses a field path such as "name", "cpu.usage_pct" or "mem.anon".
func ParseCgroupFieldID(s string) (CgroupFieldID, error) {
	prefix, rest, ok := strings.Cut(s, ".")
	if !ok {
		id, err := parseLeaf[CgroupLeaf](cgroupFields, s)
		if err != nil {
			return nil, err
		}
		return id, nil
	}
	var (
		id  CgroupFieldID
		err error
	)
	switch prefix {
	case "cpu":
		var sub CgroupCPUFieldID
		sub, err = parseLeaf[CgroupCPUFieldID](cgroupCPUFields, rest)
		id = CgroupCPU{sub}
	case "mem":
		var sub CgroupMemoryFieldID
		sub, err = parseLeaf[CgroupMemoryFieldID](cgroupMemoryFields, rest)
		id = CgroupMem{sub}
	case "io":
		var sub CgroupIOFieldID
		sub, err = parseLeaf[CgroupIOFieldID](cgroupIOFields, rest)
		id = CgroupIO{sub}
	case "pressure":
		var sub CgroupPressureFieldID
		sub, err = parseLeaf[CgroupPressureFieldID](cgroupPressureFields, rest)
		id = CgroupPressure{sub}
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidFieldID, s)
	}
	if err != nil {
		return nil, fmt.Errorf("cgroup field %q: %w", s, err)
	}
	return id, nil
}

// CgroupFieldIDs lists every field path of a CgroupModel.
func CgroupFieldIDs() []CgroupFieldID {
	var ids []CgroupFieldID
	ids = append(ids, prefixed(allLeaves[CgroupLeaf](cgroupFields), func(l CgroupLeaf) CgroupFieldID { return l })...)
	ids = append(ids, prefixed(allLeaves[CgroupCPUFieldID](cgroupCPUFields), func(l CgroupCPUFieldID) CgroupFieldID { return CgroupCPU{l} })...)
	ids = append(ids, prefixed(allLeaves[CgroupMemoryFieldID](cgroupMemoryFields), func(l CgroupMemoryFieldID) CgroupFieldID { return CgroupMem{l} })...)
	ids = append(ids, prefixed(allLeaves[CgroupIOFieldID](cgroupIOFields), func(l CgroupIOFieldID) CgroupFieldID { return CgroupIO{l} })...)
	ids = append(ids, prefixed(allLeaves[CgroupPressureFieldID](cgroupPressureFields), func(l CgroupPressureFieldID) CgroupFieldID { return CgroupPressure{l} })...)
	return ids
}

// CgroupIOFieldIDs lists the fields of a per device IO model.
func CgroupIOFieldIDs() []CgroupIOFieldID {
	return allLeaves[CgroupIOFieldID](cgroupIOFields)
}
