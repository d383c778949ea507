// Copyright © 2025 The Gomon Project.

package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zosmac/gomodel/sample"
)

func cpuTimes(user, system, idle uint64) sample.CPUTimes {
	return sample.CPUTimes{User: ptr(user), System: ptr(system), Idle: ptr(idle)}
}

func TestSystemModel(t *testing.T) {
	last := &sample.SystemSample{
		Hostname: "host",
		Total:    ptr(cpuTimes(0, 0, 0)),
		CPUs:     []sample.CPUTimes{cpuTimes(0, 0, 0), cpuTimes(0, 0, 0)},
		Vmstat:   &sample.Vmstat{Pgfault: ptr[uint64](1000)},
		Disks:    map[string]sample.DiskStat{"sda": {ReadBytes: ptr[uint64](0), WriteBytes: ptr[uint64](0)}},
	}
	cur := &sample.SystemSample{
		Hostname:      "host",
		KernelVersion: ptr("6.1.0"),
		Total:         ptr(cpuTimes(300, 100, 600)),
		CPUs:          []sample.CPUTimes{cpuTimes(200, 0, 300), cpuTimes(100, 100, 300)},
		Meminfo:       &sample.Meminfo{Total: ptr[uint64](8 << 30), Free: ptr[uint64](1 << 30)},
		Vmstat:        &sample.Vmstat{Pgfault: ptr[uint64](3000)},
		Disks: map[string]sample.DiskStat{
			"sda": {ReadBytes: ptr[uint64](4096), WriteBytes: ptr[uint64](2048)},
			"sdb": {ReadBytes: ptr[uint64](1)},
		},
		LoadAvg: &sample.LoadAvg{Load1: ptr(0.5), Load5: ptr(0.25), Load15: ptr(0.125)},
	}
	m := NewSystemModel(cur, last, 2*time.Second)

	assert.Equal(t, Str("host"), m.Query(SystemHostname))
	assert.Equal(t, Str("6.1.0"), m.Query(SystemKernelVersion))
	assert.Equal(t, F64(0.5), m.Query(SystemLoad1))
	assert.Equal(t, F64(30), m.Query(SystemCPU{CPUUserPct}))
	assert.Equal(t, F64(40), m.Query(SystemCPU{CPUUsagePct}))
	assert.Equal(t, F64(60), m.Query(SystemCPU{CPUIdlePct}))
	assert.Nil(t, m.Query(SystemCPU{CPUIdx}), "the total has no index")
	assert.Nil(t, m.Query(SystemCPU{CPUNicePct}))

	cpu1 := SystemCPUs{IndexFieldID[SingleCPUFieldID]{Idx: 1, Sub: CPUSystemPct}}
	assert.Equal(t, F64(20), m.Query(cpu1))
	assert.Equal(t, U32(1), m.Query(SystemCPUs{IndexFieldID[SingleCPUFieldID]{Idx: 1, Sub: CPUIdx}}))
	assert.Nil(t, m.Query(SystemCPUs{IndexFieldID[SingleCPUFieldID]{Idx: 2, Sub: CPUSystemPct}}))

	assert.Equal(t, U64(8<<30), m.Query(SystemMem{MemoryTotal}))
	assert.Nil(t, m.Query(SystemMem{MemoryCached}))
	assert.Equal(t, F64(1000), m.Query(SystemVm{VmPgfaultPerSec}))

	require.Len(t, m.Disks, 2)
	sda := m.Disks["sda"]
	assert.Equal(t, F64(3072), sda.Query(DiskTotalBytesPerSec))
	sdb := m.Disks["sdb"]
	assert.Equal(t, Str("sdb"), sdb.Query(DiskName))
	assert.Nil(t, sdb.Query(DiskReadBytesPerSec), "no previous sample of the disk")

	ds := m.SortedDisks(DiskReadBytesPerSec, true)
	require.Len(t, ds, 2)
	assert.Equal(t, "sda", *ds[0].Name)
}

func TestSystemModelFirstTick(t *testing.T) {
	cur := &sample.SystemSample{
		Hostname: "host",
		Total:    ptr(cpuTimes(1, 1, 1)),
		CPUs:     []sample.CPUTimes{cpuTimes(1, 1, 1)},
		Vmstat:   &sample.Vmstat{},
	}
	m := NewSystemModel(cur, nil, 0)
	assert.Nil(t, m.Total)
	assert.Nil(t, m.Vm)
	require.Len(t, m.CPUs, 1)
	assert.Equal(t, U32(0), m.CPUs[0].Query(CPUIdx))
	assert.Nil(t, m.CPUs[0].Query(CPUUsagePct))
}

func TestParseSystemFieldID(t *testing.T) {
	tests := []struct {
		in   string
		want SystemFieldID
	}{
		{"load15", SystemLoad15},
		{"cpu.iowait_pct", SystemCPU{CPUIowaitPct}},
		{"cpus.3.idle_pct", SystemCPUs{IndexFieldID[SingleCPUFieldID]{Idx: 3, Sub: CPUIdlePct}}},
		{"mem.swap_free", SystemMem{MemorySwapFree}},
		{"vm.pswpout_per_sec", SystemVm{VmPswpoutPerSec}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSystemFieldID(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}

	for _, in := range []string{"cpus.x.idle_pct", "cpus.-1.idle_pct", "cpus.1", "cpus.1.bogus", "disk.name"} {
		_, err := ParseSystemFieldID(in)
		assert.ErrorIs(t, err, ErrInvalidFieldID, in)
	}

	for _, id := range SystemFieldIDs(2) {
		got, err := ParseSystemFieldID(id.String())
		require.NoError(t, err, id.String())
		assert.Equal(t, id, got)
	}
}

func TestNetworkModel(t *testing.T) {
	last := &sample.NetworkSample{Interfaces: map[string]sample.InterfaceStat{
		"eth0": {RxBytes: ptr[uint64](1000), TxBytes: ptr[uint64](500), RxPackets: ptr[uint64](10)},
	}}
	cur := &sample.NetworkSample{Interfaces: map[string]sample.InterfaceStat{
		"eth0": {RxBytes: ptr[uint64](3000), TxBytes: ptr[uint64](1500), RxPackets: ptr[uint64](30)},
		"lo":   {RxBytes: ptr[uint64](5)},
	}}
	m := NewNetworkModel(cur, last, 2*time.Second)

	eth0 := m.Interfaces["eth0"]
	assert.Equal(t, F64(1000), eth0.Query(NetRxBytesPerSec))
	assert.Equal(t, F64(1500), eth0.Query(NetThroughputPerSec))
	assert.Equal(t, F64(10), eth0.Query(NetRxPacketsPerSec))
	assert.Nil(t, eth0.Query(NetTxPacketsPerSec))
	assert.Equal(t, U64(3000), eth0.Query(NetRxBytes))

	lo := m.Interfaces["lo"]
	assert.Nil(t, lo.Query(NetRxBytesPerSec))
	assert.Equal(t, U64(5), lo.Query(NetRxBytes))

	ns := m.Sorted(NetRxBytesPerSec, true)
	require.Len(t, ns, 2)
	assert.Equal(t, "eth0", ns[0].Interface)

	for _, id := range NetFieldIDs() {
		got, err := ParseNetFieldID(id.String())
		require.NoError(t, err)
		assert.Equal(t, id, got)
	}
}
