// Copyright © 2025 The Gomon Project.

package sample

import (
	"context"
	"path/filepath"
	"time"

	"github.com/prometheus/procfs"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
	"github.com/zosmac/gocore"
)

// collector holds the linux specific state of a Collector.
type collector struct {
	procfs procfs.FS
}

// NewCollector creates a Collector for the local host.
func NewCollector(opts ...Option) (*Collector, error) {
	c := &Collector{
		cgroups: cgroupfs{
			root:     "/sys/fs/cgroup",
			devBlock: "/sys/dev/block",
		},
		proc: procfs.DefaultMountPoint,
	}
	for _, opt := range opts {
		opt(c)
	}
	fs, err := procfs.NewFS(c.proc)
	if err != nil {
		return nil, gocore.Error("procfs", err, map[string]string{
			"mount": c.proc,
		})
	}
	c.procfs = fs
	return c, nil
}

// Collect samples the cgroup hierarchy, the processes and the host counters.
// Counters that cannot be read are left absent.
func (c *Collector) Collect(ctx context.Context) (*Sample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := &Sample{
		Timestamp: time.Now(),
		Cgroup:    c.CollectCgroups(),
		Processes: c.processes(),
		System:    c.system(ctx),
		Network:   c.network(ctx),
	}
	return s, ctx.Err()
}

// processes samples every process in procfs.
func (c *Collector) processes() PidMap {
	procs, err := c.procfs.AllProcs()
	if err != nil {
		gocore.Error("AllProcs", err).Warn()
		return nil
	}
	pm := make(PidMap, len(procs))
	for _, p := range procs {
		stat, err := p.Stat()
		if err != nil {
			continue // process exited
		}
		pm[int32(p.PID)] = c.pidInfo(p, stat)
	}
	return pm
}

func (c *Collector) pidInfo(p procfs.Proc, stat procfs.ProcStat) *PidInfo {
	info := &PidInfo{
		Stat: PidStat{
			Pid:         Ptr(int32(stat.PID)),
			Ppid:        Ptr(int32(stat.PPID)),
			Comm:        Ptr(stat.Comm),
			Minflt:      Ptr(uint64(stat.MinFlt)),
			Majflt:      Ptr(uint64(stat.MajFlt)),
			UserUsecs:   Ptr(uint64(stat.UTime) * factor),
			SystemUsecs: Ptr(uint64(stat.STime) * factor),
			NumThreads:  Ptr(uint64(stat.NumThreads)),
			RssBytes:    Ptr(uint64(stat.ResidentMemory())),
		},
	}
	if state, ok := ParsePidState(stat.State); ok {
		info.Stat.State = &state
	}
	if start, err := stat.StartTime(); err == nil {
		if up := time.Since(time.Unix(int64(start), 0)); up >= 0 {
			info.Stat.RunningSecs = Ptr(uint64(up.Seconds()))
		}
	}
	if io, err := p.IO(); err == nil {
		info.IO = PidIO{
			Rbytes: Ptr(io.ReadBytes),
			Wbytes: Ptr(io.WriteBytes),
		}
	}
	if status, err := p.NewStatus(); err == nil {
		info.Mem = PidMem{
			VMSize:  Ptr(status.VmSize),
			Lock:    Ptr(status.VmLck),
			Pin:     Ptr(status.VmPin),
			Anon:    Ptr(status.RssAnon),
			File:    Ptr(status.RssFile),
			Shmem:   Ptr(status.RssShmem),
			Pte:     Ptr(status.VmPTE),
			Swap:    Ptr(status.VmSwap),
			HugeTLB: Ptr(status.HugetlbPages),
		}
	}
	if cgroups, err := p.Cgroups(); err == nil {
		for _, cg := range cgroups {
			if cg.HierarchyID == 0 { // the unified hierarchy
				info.Cgroup = cg.Path
				break
			}
		}
	}
	if args, err := p.CmdLine(); err == nil && len(args) > 0 {
		info.CmdlineVec = args
	}
	if exe, err := p.Executable(); err == nil {
		info.ExePath = &exe
	}
	return info
}

// system samples the host wide counters.
func (c *Collector) system(ctx context.Context) SystemSample {
	var s SystemSample

	if info, err := host.InfoWithContext(ctx); err == nil {
		s.Hostname = info.Hostname
		s.KernelVersion = Ptr(info.KernelVersion)
	} else {
		gocore.Error("host info", err).Warn()
	}

	if ts, err := cpu.TimesWithContext(ctx, false); err == nil && len(ts) > 0 {
		s.Total = cpuTimes(ts[0])
	}
	if ts, err := cpu.TimesWithContext(ctx, true); err == nil {
		for _, t := range ts {
			s.CPUs = append(s.CPUs, *cpuTimes(t))
		}
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		s.Meminfo = &Meminfo{
			Total:     Ptr(vm.Total),
			Free:      Ptr(vm.Free),
			Available: Ptr(vm.Available),
			Buffers:   Ptr(vm.Buffers),
			Cached:    Ptr(vm.Cached),
			Active:    Ptr(vm.Active),
			Inactive:  Ptr(vm.Inactive),
			Dirty:     Ptr(vm.Dirty),
			Slab:      Ptr(vm.Slab),
			Shmem:     Ptr(vm.Shared),
		}
		if sw, err := mem.SwapMemoryWithContext(ctx); err == nil {
			s.Meminfo.SwapTotal = Ptr(sw.Total)
			s.Meminfo.SwapFree = Ptr(sw.Free)
		}
	}

	s.Vmstat = vmstat(filepath.Join(c.proc, "vmstat"))

	if counters, err := disk.IOCountersWithContext(ctx); err == nil {
		s.Disks = make(map[string]DiskStat, len(counters))
		for name, d := range counters {
			s.Disks[name] = DiskStat{
				ReadBytes:   Ptr(d.ReadBytes),
				WriteBytes:  Ptr(d.WriteBytes),
				ReadIOs:     Ptr(d.ReadCount),
				WriteIOs:    Ptr(d.WriteCount),
				ReadTimeMs:  Ptr(d.ReadTime),
				WriteTimeMs: Ptr(d.WriteTime),
			}
		}
	}

	if avg, err := load.AvgWithContext(ctx); err == nil {
		s.LoadAvg = &LoadAvg{
			Load1:  Ptr(avg.Load1),
			Load5:  Ptr(avg.Load5),
			Load15: Ptr(avg.Load15),
		}
	}
	return s
}

// cpuTimes converts gopsutil's seconds to microseconds.
func cpuTimes(t cpu.TimesStat) *CPUTimes {
	usec := func(secs float64) *uint64 {
		return Ptr(uint64(secs * 1e6))
	}
	return &CPUTimes{
		User:      usec(t.User),
		Nice:      usec(t.Nice),
		System:    usec(t.System),
		Idle:      usec(t.Idle),
		Iowait:    usec(t.Iowait),
		Irq:       usec(t.Irq),
		Softirq:   usec(t.Softirq),
		Steal:     usec(t.Steal),
		Guest:     usec(t.Guest),
		GuestNice: usec(t.GuestNice),
	}
}

// network samples the per interface counters.
func (c *Collector) network(ctx context.Context) NetworkSample {
	counters, err := net.IOCountersWithContext(ctx, true)
	if err != nil {
		gocore.Error("net counters", err).Warn()
		return NetworkSample{}
	}
	s := NetworkSample{Interfaces: make(map[string]InterfaceStat, len(counters))}
	for _, n := range counters {
		s.Interfaces[n.Name] = InterfaceStat{
			RxBytes:   Ptr(n.BytesRecv),
			TxBytes:   Ptr(n.BytesSent),
			RxPackets: Ptr(n.PacketsRecv),
			TxPackets: Ptr(n.PacketsSent),
			RxErrors:  Ptr(n.Errin),
			TxErrors:  Ptr(n.Errout),
			RxDropped: Ptr(n.Dropin),
			TxDropped: Ptr(n.Dropout),
		}
	}
	return s
}
