// Copyright © 2025 The Gomon Project.

package model

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zosmac/gomodel/sample"
)

//go:embed testdata/sample_model.json
var sampleModelJSON []byte

func decodeModel(t *testing.T, data []byte) *Model {
	t.Helper()
	d := json.NewDecoder(bytes.NewReader(data))
	d.DisallowUnknownFields()
	var m Model
	require.NoError(t, d.Decode(&m))
	return &m
}

func TestSampleModelRoundTrip(t *testing.T) {
	m := decodeModel(t, sampleModelJSON)

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, m, decodeModel(t, data))
}

func TestSampleModelConsistency(t *testing.T) {
	m := decodeModel(t, sampleModelJSON)

	assert.Equal(t, 5*time.Second, m.TimeElapsed)
	require.NotNil(t, m.Cgroup)
	assert.Equal(t, RootCgroupName, m.Cgroup.Name)
	checkCount(t, m.Cgroup)

	m.Cgroup.Walk(func(c *CgroupModel) bool {
		for i := range c.Children {
			assert.Equal(t, c.Depth()+1, c.Children[i].Depth())
			if i > 0 {
				assert.Negative(t, CompareCgroupByName(&c.Children[i-1], &c.Children[i]))
			}
		}
		return true
	})

	scope := m.Cgroup.Find("/init.scope")
	require.NotNil(t, scope)
	assert.NotNil(t, scope.IO)
	assert.Empty(t, scope.IO)
	assert.Equal(t, F64(0), scope.Query(CgroupIO{CgroupIORbytesPerSec}))

	slice := m.Cgroup.Find("/system.slice")
	require.NotNil(t, slice)
	assert.Nil(t, slice.IO)
	assert.Nil(t, slice.Query(CgroupIO{CgroupIORbytesPerSec}))

	sshd := m.Cgroup.Find("/system.slice/sshd.service")
	require.NotNil(t, sshd)
	assert.True(t, sshd.RecreateFlag)
	for _, id := range CgroupFieldIDs() {
		switch id.(type) {
		case CgroupCPU, CgroupIO, CgroupPressure:
			assert.Nil(t, sshd.Query(id), id.String())
		}
	}

	assert.Equal(t, U64(3145728000), m.Cgroup.Query(CgroupMem{CgroupMemoryTotal}))
	systemd, sshdProc := m.Process.Processes[1], m.Process.Processes[812]
	assert.Equal(t, State(sample.StateSleeping), systemd.Query(ProcessState))
	assert.Equal(t, Str("/sbin/init splash"), systemd.Query(ProcessCmdline))
	assert.Equal(t, Str("?"), sshdProc.Query(ProcessCmdline))
	assert.Nil(t, sshdProc.Query(ProcessCPU{ProcessCPUUsagePct}))
	assert.Equal(t, F64(15), m.System.Query(SystemCPUs{IndexFieldID[SingleCPUFieldID]{Idx: 0, Sub: CPUUserPct}}))
	eth0 := m.Network.Interfaces["eth0"]
	assert.Equal(t, F64(2048), eth0.Query(NetThroughputPerSec))
}

func testSample(inode, usage uint64, children map[string]*sample.CgroupSample) *sample.Sample {
	return &sample.Sample{
		Cgroup: sample.CgroupSample{
			Children: map[string]*sample.CgroupSample{
				"a": {
					InodeNumber: ptr(inode),
					CPUStat:     &sample.CPUStat{UsageUsec: ptr(usage)},
					Children:    children,
				},
			},
		},
		System: sample.SystemSample{Hostname: "test"},
	}
}

func TestModelCPUScenario(t *testing.T) {
	prev := testSample(5, 1_000_000, nil)
	cur := testSample(5, 2_000_000, nil)
	now := time.Date(2025, 3, 14, 0, 0, 1, 0, time.UTC)

	m := New(now, cur, &Last{Sample: prev, Elapsed: time.Second})
	assert.Equal(t, time.Second, m.TimeElapsed)
	assert.Equal(t, now, m.Timestamp)
	a := m.Cgroup.Find("/a")
	require.NotNil(t, a)
	got := a.Query(CgroupCPU{CgroupCPUUsagePct})
	require.NotNil(t, got)
	assert.InDelta(t, 100.0, MustFloat64(got), 1e-9)
	assert.False(t, a.RecreateFlag)
}

func TestModelRecreateScenario(t *testing.T) {
	prev := testSample(5, 1_000_000, nil)
	cur := testSample(7, 2_000_000, nil)

	m := New(time.Now(), cur, &Last{Sample: prev, Elapsed: time.Second})
	a := m.Cgroup.Find("/a")
	require.NotNil(t, a)
	assert.True(t, a.RecreateFlag)
	assert.Nil(t, a.CPU)
}

func TestModelRootAggregationScenario(t *testing.T) {
	s := &sample.Sample{Cgroup: sample.CgroupSample{Children: map[string]*sample.CgroupSample{
		"x": {MemoryCurrent: ptr[uint64](100)},
		"y": {MemoryCurrent: ptr[uint64](200)},
	}}}
	m := New(time.Now(), s, nil)
	assert.Equal(t, U64(300), m.Cgroup.Query(CgroupMem{CgroupMemoryTotal}))
	assert.Equal(t, time.Duration(0), m.TimeElapsed)
	assert.Equal(t, 3, m.Cgroup.Count)
	assert.Equal(t, "", m.Cgroup.FullPath)
	assert.Equal(t, 0, m.Cgroup.Depth())
}

func TestModelFirstTick(t *testing.T) {
	m := New(time.Now(), testSample(5, 10, nil), nil)
	a := m.Cgroup.Find("/a")
	require.NotNil(t, a)
	assert.False(t, a.RecreateFlag, "a first observation is not a recreation")
	assert.Nil(t, a.CPU)
	assert.NotNil(t, m.Process.Processes)
	assert.NotNil(t, m.Network.Interfaces)
	assert.Equal(t, Str("test"), m.System.Query(SystemHostname))
}
