// Copyright © 2025 The Gomon Project.

package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zosmac/gomodel/sample"
)

func pidInfo(pid int32, comm string, user, system, rbytes uint64) *sample.PidInfo {
	return &sample.PidInfo{
		Stat: sample.PidStat{
			Pid:         ptr(pid),
			Ppid:        ptr[int32](1),
			Comm:        ptr(comm),
			State:       ptr(sample.StateSleeping),
			UserUsecs:   ptr(user),
			SystemUsecs: ptr(system),
			NumThreads:  ptr[uint64](4),
			Minflt:      ptr(user),
			RunningSecs: ptr[uint64](60),
			RssBytes:    ptr[uint64](1 << 20),
		},
		IO:         sample.PidIO{Rbytes: ptr(rbytes)},
		Mem:        sample.PidMem{VMSize: ptr[uint64](1 << 30)},
		Cgroup:     "/system.slice/" + comm + ".service",
		CmdlineVec: []string{"/usr/sbin/" + comm, "-D"},
	}
}

func TestProcessModel(t *testing.T) {
	last := sample.PidMap{
		10: pidInfo(10, "sshd", 0, 0, 0),
		11: pidInfo(11, "crond", 0, 0, 0),
	}
	cur := sample.PidMap{
		10: pidInfo(10, "sshd", 250_000, 250_000, 4096),
		12: pidInfo(12, "bash", 100, 100, 100),
	}
	m := NewProcessModel(cur, last, time.Second)
	require.Len(t, m.Processes, 2)

	sshd := m.Processes[10]
	assert.Equal(t, I32(10), sshd.Query(ProcessPid))
	assert.Equal(t, Str("sshd"), sshd.Query(ProcessComm))
	assert.Equal(t, State(sample.StateSleeping), sshd.Query(ProcessState))
	assert.Equal(t, Str("/usr/sbin/sshd -D"), sshd.Query(ProcessCmdline))
	assert.Equal(t, Str("/system.slice/sshd.service"), sshd.Query(ProcessCgroup))
	assert.Equal(t, U64(60), sshd.Query(ProcessUptimeSecs))
	assert.Equal(t, F64(25), sshd.Query(ProcessCPU{ProcessCPUUserPct}))
	assert.Equal(t, F64(50), sshd.Query(ProcessCPU{ProcessCPUUsagePct}))
	assert.Equal(t, U64(4), sshd.Query(ProcessCPU{ProcessCPUNumThreads}))
	assert.Equal(t, F64(4096), sshd.Query(ProcessIO{ProcessIORbytesPerSec}))
	assert.Nil(t, sshd.Query(ProcessIO{ProcessIOWbytesPerSec}))
	assert.Equal(t, F64(4096), sshd.Query(ProcessIO{ProcessIORwbytesPerSec}), "absent write counts as zero")
	assert.Equal(t, U64(1<<20), sshd.Query(ProcessMem{ProcessMemoryRssBytes}))
	assert.Equal(t, U64(1<<30), sshd.Query(ProcessMem{ProcessMemoryVMSize}))
	assert.Equal(t, F64(250_000), sshd.Query(ProcessMem{ProcessMemoryMinorfaultsPerSec}))
	assert.Nil(t, sshd.Query(ProcessMem{ProcessMemorySwap}))

	bash := m.Processes[12]
	assert.Nil(t, bash.IO, "no previous sample of the pid")
	assert.Nil(t, bash.CPU)
	assert.Nil(t, bash.Mem)
	assert.Nil(t, bash.Query(ProcessCPU{ProcessCPUUsagePct}))
	assert.Equal(t, Str("bash"), bash.Query(ProcessComm))
}

func TestProcessCmdlineUnavailable(t *testing.T) {
	info := pidInfo(1, "kthreadd", 0, 0, 0)
	info.CmdlineVec = nil
	p := NewProcessModel(sample.PidMap{1: info}, nil, time.Second).Processes[1]
	assert.Equal(t, Str("?"), p.Query(ProcessCmdline))

	info.CmdlineVec = []string{}
	p = NewProcessModel(sample.PidMap{1: info}, nil, time.Second).Processes[1]
	assert.Equal(t, Str(""), p.Query(ProcessCmdline))
}

func TestProcessRwbytesBothAbsent(t *testing.T) {
	info := &sample.PidInfo{}
	p := NewProcessModel(sample.PidMap{1: info}, sample.PidMap{1: info}, time.Second).Processes[1]
	require.NotNil(t, p.IO)
	assert.Equal(t, F64(0), p.Query(ProcessIO{ProcessIORwbytesPerSec}))
	assert.Nil(t, p.Query(ProcessCPU{ProcessCPUUsagePct}))
	assert.Nil(t, p.Query(ProcessPid))
}

func TestProcessSorted(t *testing.T) {
	last := sample.PidMap{
		1: pidInfo(1, "a", 0, 0, 0),
		2: pidInfo(2, "b", 0, 0, 0),
		3: pidInfo(3, "c", 0, 0, 0),
	}
	cur := sample.PidMap{
		1: pidInfo(1, "a", 100, 0, 0),
		2: pidInfo(2, "b", 300, 0, 0),
		3: pidInfo(3, "c", 200, 0, 0),
		4: pidInfo(4, "d", 900, 0, 0),
	}
	m := NewProcessModel(cur, last, time.Second)

	pids := func(ps []*SingleProcessModel) []int32 {
		var ids []int32
		for _, p := range ps {
			ids = append(ids, *p.Pid)
		}
		return ids
	}
	assert.Equal(t, []int32{4, 1, 3, 2}, pids(m.Sorted(ProcessCPU{ProcessCPUUserPct}, false)))
	assert.Equal(t, []int32{2, 3, 1, 4}, pids(m.Sorted(ProcessCPU{ProcessCPUUserPct}, true)))
	assert.Equal(t, []int32{4, 3, 2, 1}, pids(m.Sorted(ProcessComm, true)))
}

func TestParseProcessFieldID(t *testing.T) {
	for _, id := range ProcessFieldIDs() {
		got, err := ParseProcessFieldID(id.String())
		require.NoError(t, err, id.String())
		assert.Equal(t, id, got)
	}
	assert.Len(t, ProcessFieldIDs(), 8+3+12+4)

	for _, in := range []string{"pids", "cpu.rss_bytes", "io.x.y", "net.rx"} {
		_, err := ParseProcessFieldID(in)
		assert.ErrorIs(t, err, ErrInvalidFieldID, in)
	}
}
