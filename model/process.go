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
	// ProcessModel maps process ids to their derived state.
	ProcessModel struct {
		Processes map[int32]SingleProcessModel `json:"processes"`
	}

	// SingleProcessModel is the derived state of one process. The IO, memory
	// and CPU models are present only if the process was sampled last tick.
	SingleProcessModel struct {
		Pid        *int32              `json:"pid,omitempty"`
		Ppid       *int32              `json:"ppid,omitempty"`
		Comm       *string             `json:"comm,omitempty"`
		State      *sample.PidState    `json:"state,omitempty"`
		UptimeSecs *uint64             `json:"uptime_secs,omitempty"`
		Cgroup     *string             `json:"cgroup,omitempty"`
		IO         *ProcessIOModel     `json:"io,omitempty"`
		Mem        *ProcessMemoryModel `json:"mem,omitempty"`
		CPU        *ProcessCPUModel    `json:"cpu,omitempty"`
		Cmdline    *string             `json:"cmdline,omitempty"`
		ExePath    *string             `json:"exe_path,omitempty"`
	}

	// ProcessIOModel is derived from /proc/<pid>/io.
	ProcessIOModel struct {
		RbytesPerSec  *float64 `json:"rbytes_per_sec,omitempty"`
		WbytesPerSec  *float64 `json:"wbytes_per_sec,omitempty"`
		RwbytesPerSec *float64 `json:"rwbytes_per_sec,omitempty"`
	}

	// ProcessCPUModel is derived from the cpu times of /proc/<pid>/stat.
	ProcessCPUModel struct {
		UsagePct   *float64 `json:"usage_pct,omitempty"`
		UserPct    *float64 `json:"user_pct,omitempty"`
		SystemPct  *float64 `json:"system_pct,omitempty"`
		NumThreads *uint64  `json:"num_threads,omitempty"`
	}

	// ProcessMemoryModel holds fault rates and the current memory gauges.
	ProcessMemoryModel struct {
		MinorfaultsPerSec *float64 `json:"minorfaults_per_sec,omitempty"`
		MajorfaultsPerSec *float64 `json:"majorfaults_per_sec,omitempty"`
		RssBytes          *uint64  `json:"rss_bytes,omitempty"`
		VMSize            *uint64  `json:"vm_size,omitempty"`
		Lock              *uint64  `json:"lock,omitempty"`
		Pin               *uint64  `json:"pin,omitempty"`
		Anon              *uint64  `json:"anon,omitempty"`
		File              *uint64  `json:"file,omitempty"`
		Shmem             *uint64  `json:"shmem,omitempty"`
		Pte               *uint64  `json:"pte,omitempty"`
		Swap              *uint64  `json:"swap,omitempty"`
		HugeTLB           *uint64  `json:"huge_tlb,omitempty"`
	}

	// ProcessFieldID addresses a field of a SingleProcessModel.
	ProcessFieldID interface {
		FieldID
		processFieldID()
	}

	// ProcessLeaf enumerates the scalar fields of a SingleProcessModel.
	ProcessLeaf int

	// ProcessIO addresses a field of the process' IO model, path "io.<field>".
	ProcessIO struct{ ID ProcessIOFieldID }
	// ProcessMem addresses a field of the process' memory model, path "mem.<field>".
	ProcessMem struct{ ID ProcessMemoryFieldID }
	// ProcessCPU addresses a field of the process' CPU model, path "cpu.<field>".
	ProcessCPU struct{ ID ProcessCPUFieldID }

	// ProcessIOFieldID enumerates the fields of a ProcessIOModel.
	ProcessIOFieldID int
	// ProcessCPUFieldID enumerates the fields of a ProcessCPUModel.
	ProcessCPUFieldID int
	// ProcessMemoryFieldID enumerates the fields of a ProcessMemoryModel.
	ProcessMemoryFieldID int
)

const (
	ProcessPid ProcessLeaf = iota
	ProcessPpid
	ProcessComm
	ProcessState
	ProcessUptimeSecs
	ProcessCgroup
	ProcessCmdline
	ProcessExePath
)

const (
	ProcessIORbytesPerSec ProcessIOFieldID = iota
	ProcessIOWbytesPerSec
	ProcessIORwbytesPerSec
)

const (
	ProcessCPUUsagePct ProcessCPUFieldID = iota
	ProcessCPUUserPct
	ProcessCPUSystemPct
	ProcessCPUNumThreads
)

const (
	ProcessMemoryMinorfaultsPerSec ProcessMemoryFieldID = iota
	ProcessMemoryMajorfaultsPerSec
	ProcessMemoryRssBytes
	ProcessMemoryVMSize
	ProcessMemoryLock
	ProcessMemoryPin
	ProcessMemoryAnon
	ProcessMemoryFile
	ProcessMemoryShmem
	ProcessMemoryPte
	ProcessMemorySwap
	ProcessMemoryHugeTLB
)

var (
	processFields = accessors[SingleProcessModel]{
		ProcessPid:        {"pid", func(m *SingleProcessModel) Field { return i32Field(m.Pid) }},
		ProcessPpid:       {"ppid", func(m *SingleProcessModel) Field { return i32Field(m.Ppid) }},
		ProcessComm:       {"comm", func(m *SingleProcessModel) Field { return strField(m.Comm) }},
		ProcessState:      {"state", func(m *SingleProcessModel) Field { return stateField(m.State) }},
		ProcessUptimeSecs: {"uptime_secs", func(m *SingleProcessModel) Field { return u64Field(m.UptimeSecs) }},
		ProcessCgroup:     {"cgroup", func(m *SingleProcessModel) Field { return strField(m.Cgroup) }},
		ProcessCmdline:    {"cmdline", func(m *SingleProcessModel) Field { return strField(m.Cmdline) }},
		ProcessExePath:    {"exe_path", func(m *SingleProcessModel) Field { return strField(m.ExePath) }},
	}

	processIOFields = accessors[ProcessIOModel]{
		ProcessIORbytesPerSec:  {"rbytes_per_sec", func(m *ProcessIOModel) Field { return f64Field(m.RbytesPerSec) }},
		ProcessIOWbytesPerSec:  {"wbytes_per_sec", func(m *ProcessIOModel) Field { return f64Field(m.WbytesPerSec) }},
		ProcessIORwbytesPerSec: {"rwbytes_per_sec", func(m *ProcessIOModel) Field { return f64Field(m.RwbytesPerSec) }},
	}

	processCPUFields = accessors[ProcessCPUModel]{
		ProcessCPUUsagePct:   {"usage_pct", func(m *ProcessCPUModel) Field { return f64Field(m.UsagePct) }},
		ProcessCPUUserPct:    {"user_pct", func(m *ProcessCPUModel) Field { return f64Field(m.UserPct) }},
		ProcessCPUSystemPct:  {"system_pct", func(m *ProcessCPUModel) Field { return f64Field(m.SystemPct) }},
		ProcessCPUNumThreads: {"num_threads", func(m *ProcessCPUModel) Field { return u64Field(m.NumThreads) }},
	}

	processMemoryFields = accessors[ProcessMemoryModel]{
		ProcessMemoryMinorfaultsPerSec: {"minorfaults_per_sec", func(m *ProcessMemoryModel) Field { return f64Field(m.MinorfaultsPerSec) }},
		ProcessMemoryMajorfaultsPerSec: {"majorfaults_per_sec", func(m *ProcessMemoryModel) Field { return f64Field(m.MajorfaultsPerSec) }},
		ProcessMemoryRssBytes:          {"rss_bytes", func(m *ProcessMemoryModel) Field { return u64Field(m.RssBytes) }},
		ProcessMemoryVMSize:            {"vm_size", func(m *ProcessMemoryModel) Field { return u64Field(m.VMSize) }},
		ProcessMemoryLock:              {"lock", func(m *ProcessMemoryModel) Field { return u64Field(m.Lock) }},
		ProcessMemoryPin:               {"pin", func(m *ProcessMemoryModel) Field { return u64Field(m.Pin) }},
		ProcessMemoryAnon:              {"anon", func(m *ProcessMemoryModel) Field { return u64Field(m.Anon) }},
		ProcessMemoryFile:              {"file", func(m *ProcessMemoryModel) Field { return u64Field(m.File) }},
		ProcessMemoryShmem:             {"shmem", func(m *ProcessMemoryModel) Field { return u64Field(m.Shmem) }},
		ProcessMemoryPte:               {"pte", func(m *ProcessMemoryModel) Field { return u64Field(m.Pte) }},
		ProcessMemorySwap:              {"swap", func(m *ProcessMemoryModel) Field { return u64Field(m.Swap) }},
		ProcessMemoryHugeTLB:           {"huge_tlb", func(m *ProcessMemoryModel) Field { return u64Field(m.HugeTLB) }},
	}
)

// NewProcessModel derives a model for each sampled process, pairing it with
// the same pid of the previous tick's sample.
func NewProcessModel(s sample.PidMap, last sample.PidMap, elapsed time.Duration) ProcessModel {
	m := ProcessModel{Processes: make(map[int32]SingleProcessModel, len(s))}
	for pid, info := range s {
		if info == nil {
			continue
		}
		var prev *sample.PidInfo
		if last != nil {
			prev = last[pid]
		}
		m.Processes[pid] = newSingleProcessModel(info, prev, elapsed)
	}
	return m
}

func newSingleProcessModel(s, last *sample.PidInfo, elapsed time.Duration) SingleProcessModel {
	m := SingleProcessModel{
		Pid:     s.Stat.Pid,
		Ppid:    s.Stat.Ppid,
		Comm:    s.Stat.Comm,
		State:   s.Stat.State,
		Cgroup:  ptr(s.Cgroup),
		Cmdline: ptr("?"),
		ExePath: s.ExePath,
	}
	if s.Stat.RunningSecs != nil {
		m.UptimeSecs = ptr(*s.Stat.RunningSecs)
	}
	if s.CmdlineVec != nil {
		m.Cmdline = ptr(strings.Join(s.CmdlineVec, " "))
	}
	if last != nil {
		m.IO = newProcessIOModel(&last.IO, &s.IO, elapsed)
		m.Mem = newProcessMemoryModel(last, s, elapsed)
		m.CPU = newProcessCPUModel(&last.Stat, &s.Stat, elapsed)
	}
	return m
}

func newProcessIOModel(begin, end *sample.PidIO, elapsed time.Duration) *ProcessIOModel {
	r := CountPerSec(begin.Rbytes, end.Rbytes, elapsed)
	w := CountPerSec(begin.Wbytes, end.Wbytes, elapsed)
	var rw float64
	if r != nil {
		rw += *r
	}
	if w != nil {
		rw += *w
	}
	return &ProcessIOModel{
		RbytesPerSec:  r,
		WbytesPerSec:  w,
		RwbytesPerSec: &rw,
	}
}

func newProcessCPUModel(begin, end *sample.PidStat, elapsed time.Duration) *ProcessCPUModel {
	user := UsecPct(begin.UserUsecs, end.UserUsecs, elapsed)
	system := UsecPct(begin.SystemUsecs, end.SystemUsecs, elapsed)
	return &ProcessCPUModel{
		UsagePct:   OptAdd(user, system),
		UserPct:    user,
		SystemPct:  system,
		NumThreads: end.NumThreads,
	}
}

func newProcessMemoryModel(begin, end *sample.PidInfo, elapsed time.Duration) *ProcessMemoryModel {
	return &ProcessMemoryModel{
		MinorfaultsPerSec: CountPerSec(begin.Stat.Minflt, end.Stat.Minflt, elapsed),
		MajorfaultsPerSec: CountPerSec(begin.Stat.Majflt, end.Stat.Majflt, elapsed),
		RssBytes:          end.Stat.RssBytes,
		VMSize:            end.Mem.VMSize,
		Lock:              end.Mem.Lock,
		Pin:               end.Mem.Pin,
		Anon:              end.Mem.Anon,
		File:              end.Mem.File,
		Shmem:             end.Mem.Shmem,
		Pte:               end.Mem.Pte,
		Swap:              end.Mem.Swap,
		HugeTLB:           end.Mem.HugeTLB,
	}
}

// Sorted returns the processes ordered by the field, ties in pid order.
func (m ProcessModel) Sorted(id ProcessFieldID, reverse bool) []*SingleProcessModel {
	pids := slices.Sorted(maps.Keys(m.Processes))
	ps := make([]*SingleProcessModel, len(pids))
	for i, pid := range pids {
		p := m.Processes[pid]
		ps[i] = &p
	}
	SortQueriables(ps, id, reverse)
	return ps
}

func (ProcessLeaf) processFieldID() {}
func (ProcessIO) processFieldID()   {}
func (ProcessMem) processFieldID()  {}
func (ProcessCPU) processFieldID()  {}

func (id ProcessLeaf) String() string          { return processFields.name(int(id)) }
func (id ProcessIO) String() string            { return "io." + id.ID.String() }
func (id ProcessMem) String() string           { return "mem." + id.ID.String() }
func (id ProcessCPU) String() string           { return "cpu." + id.ID.String() }
func (id ProcessIOFieldID) String() string     { return processIOFields.name(int(id)) }
func (id ProcessCPUFieldID) String() string    { return processCPUFields.name(int(id)) }
func (id ProcessMemoryFieldID) String() string { return processMemoryFields.name(int(id)) }

// Query returns the addressed field, nil if it or its sub-model is absent.
func (m *SingleProcessModel) Query(id ProcessFieldID) Field {
	if m == nil {
		return nil
	}
	switch id := id.(type) {
	case ProcessLeaf:
		return processFields.query(m, int(id))
	case ProcessIO:
		return m.IO.Query(id.ID)
	case ProcessMem:
		return m.Mem.Query(id.ID)
	case ProcessCPU:
		return m.CPU.Query(id.ID)
	}
	return nil
}

// Query returns the addressed field of an IO model.
func (m *ProcessIOModel) Query(id ProcessIOFieldID) Field {
	return processIOFields.query(m, int(id))
}

// Query returns the addressed field of a CPU model.
func (m *ProcessCPUModel) Query(id ProcessCPUFieldID) Field {
	return processCPUFields.query(m, int(id))
}

// Query returns the addressed field of a memory model.
func (m *ProcessMemoryModel) Query(id ProcessMemoryFieldID) Field {
	return processMemoryFields.query(m, int(id))
}

// ParseProcessFieldID parses a field path such as "comm", "cpu.usage_pct" or "mem.rss_bytes".
func ParseProcessFieldID(s string) (ProcessFieldID, error) {
	prefix, rest, ok := strings.Cut(s, ".")
	if !ok {
		id, err := parseLeaf[ProcessLeaf](processFields, s)
		if err != nil {
			return nil, err
		}
		return id, nil
	}
	var (
		id  ProcessFieldID
		err error
	)
	switch prefix {
	case "io":
		var sub ProcessIOFieldID
		sub, err = parseLeaf[ProcessIOFieldID](processIOFields, rest)
		id = ProcessIO{sub}
	case "mem":
		var sub ProcessMemoryFieldID
		sub, err = parseLeaf[ProcessMemoryFieldID](processMemoryFields, rest)
		id = ProcessMem{sub}
	case "cpu":
		var sub ProcessCPUFieldID
		sub, err = parseLeaf[ProcessCPUFieldID](processCPUFields, rest)
		id = ProcessCPU{sub}
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidFieldID, s)
	}
	if err != nil {
		return nil, fmt.Errorf("process field %q: %w", s, err)
	}
	return id, nil
}

// ProcessFieldIDs lists every field path of a SingleProcessModel.
func ProcessFieldIDs() []ProcessFieldID {
	var ids []ProcessFieldID
	ids = append(ids, prefixed(allLeaves[ProcessLeaf](processFields), func(l ProcessLeaf) ProcessFieldID { return l })...)
	ids = append(ids, prefixed(allLeaves[ProcessIOFieldID](processIOFields), func(l ProcessIOFieldID) ProcessFieldID { return ProcessIO{l} })...)
	ids = append(ids, prefixed(allLeaves[ProcessMemoryFieldID](processMemoryFields), func(l ProcessMemoryFieldID) ProcessFieldID { return ProcessMem{l} })...)
	ids = append(ids, prefixed(allLeaves[ProcessCPUFieldID](processCPUFields), func(l ProcessCPUFieldID) ProcessFieldID { return ProcessCPU{l} })...)
	return ids
}
