// Copyright © 2025 The Gomon Project.

package view

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zosmac/gomodel/model"
	"github.com/zosmac/gomodel/sample"
)

func cgroup(name, path string, depth int, total *uint64, children ...model.CgroupModel) model.CgroupModel {
	return model.CgroupModel{
		Name:     name,
		FullPath: path,
		Level:    depth,
		Memory:   &model.CgroupMemoryModel{Total: total},
		Children: children,
	}
}

func testTree() *model.CgroupModel {
	root := cgroup(model.RootCgroupName, "", 0, nil,
		cgroup("a", "/a", 1, sample.Ptr[uint64](10),
			cgroup("a1", "/a/a1", 2, sample.Ptr[uint64](5)),
		),
		cgroup("b", "/b", 1, sample.Ptr[uint64](30)),
		cgroup("c", "/c", 1, nil),
	)
	return &root
}

func paths(rows []CgroupRow) []string {
	ps := make([]string, len(rows))
	for i, r := range rows {
		ps[i] = r.Cgroup.FullPath
	}
	return ps
}

func TestCgroupRows(t *testing.T) {
	memTotal := model.CgroupMem{ID: model.CgroupMemoryTotal}

	tests := []struct {
		name     string
		setup    func(*CgroupState)
		expected []string
	}{
		{
			name:     "name order",
			setup:    func(*CgroupState) {},
			expected: []string{"", "/a", "/a/a1", "/b", "/c"},
		},
		{
			name:     "sort largest first",
			setup:    func(s *CgroupState) { s.SetSortTag(memTotal) },
			expected: []string{"", "/b", "/a", "/a/a1", "/c"},
		},
		{
			name: "same tag toggles direction",
			setup: func(s *CgroupState) {
				s.SetSortTag(memTotal)
				s.SetSortTag(memTotal)
			},
			expected: []string{"", "/c", "/a", "/a/a1", "/b"},
		},
		{
			name:     "filter keeps ancestors",
			setup:    func(s *CgroupState) { s.SetFilter("a1") },
			expected: []string{"", "/a", "/a/a1"},
		},
		{
			name:     "collapse hides descendants",
			setup:    func(s *CgroupState) { s.ToggleCollapse("/a") },
			expected: []string{"", "/a", "/b", "/c"},
		},
		{
			name: "collapsed ancestor of filter match",
			setup: func(s *CgroupState) {
				s.ToggleCollapse("/a")
				s.SetFilter("a1")
			},
			expected: []string{"", "/a"},
		},
		{
			name:     "no match",
			setup:    func(s *CgroupState) { s.SetFilter("zzz") },
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewCgroupState()
			tt.setup(s)
			assert.Equal(t, tt.expected, paths(s.Rows(testTree())))
		})
	}
}

func TestCgroupRecreatedResetsCollapse(t *testing.T) {
	s := NewCgroupState()
	s.ToggleCollapse("/a")
	require.True(t, s.Collapsed("/a"))

	tree := testTree()
	tree.Children[0].RecreateFlag = true
	rows := s.Rows(tree)

	assert.False(t, s.Collapsed("/a"))
	assert.Equal(t, []string{"", "/a", "/a/a1", "/b", "/c"}, paths(rows))
	assert.False(t, rows[1].Collapsed)

	s.ToggleCollapse("/b")
	s.ToggleCollapse("/b")
	assert.False(t, s.Collapsed("/b"))
}

func TestCgroupSetSortString(t *testing.T) {
	s := NewCgroupState()
	assert.False(t, s.SetSortString("mem.bogus"))
	_, _, ok := s.SortTag()
	assert.False(t, ok)

	assert.True(t, s.SetSortString("mem.total"))
	tag, reverse, ok := s.SortTag()
	require.True(t, ok)
	assert.Equal(t, "mem.total", tag.String())
	assert.True(t, reverse)

	assert.True(t, s.SetSortString("name"))
	tag, reverse, _ = s.SortTag()
	assert.Equal(t, model.CgroupFieldID(model.CgroupName), tag)
	assert.True(t, reverse, "a new tag sorts in reverse")

	s.ClearSort()
	_, _, ok = s.SortTag()
	assert.False(t, ok)
	assert.Nil(t, s.Rows(nil))
}

func testProcesses() model.ProcessModel {
	proc := func(pid int32, comm, cmdline string, usage *float64) model.SingleProcessModel {
		return model.SingleProcessModel{
			Pid:     &pid,
			Comm:    &comm,
			Cmdline: &cmdline,
			CPU:     &model.ProcessCPUModel{UsagePct: usage},
		}
	}
	return model.ProcessModel{Processes: map[int32]model.SingleProcessModel{
		1:   proc(1, "systemd", "/sbin/init", sample.Ptr(0.5)),
		812: proc(812, "sshd", "sshd: /usr/sbin/sshd -D", sample.Ptr(2.0)),
		90:  proc(90, "kworker", "?", nil),
	}}
}

func pids(ps []*model.SingleProcessModel) []int32 {
	ids := make([]int32, len(ps))
	for i, p := range ps {
		ids[i] = *p.Pid
	}
	return ids
}

func TestProcessRows(t *testing.T) {
	var s ProcessState
	assert.Equal(t, []int32{1, 90, 812}, pids(s.Rows(testProcesses())))

	require.True(t, s.SetSortString("cpu.usage_pct"))
	assert.Equal(t, []int32{812, 1, 90}, pids(s.Rows(testProcesses())))

	s.SetSortTag(model.ProcessCPU{ID: model.ProcessCPUUsagePct})
	assert.Equal(t, []int32{90, 1, 812}, pids(s.Rows(testProcesses())))

	s.SetFilter("sbin")
	assert.Equal(t, "sbin", s.Filter())
	assert.Equal(t, []int32{1, 812}, pids(s.Rows(testProcesses())))

	s.SetFilter("kwork")
	assert.Equal(t, []int32{90}, pids(s.Rows(testProcesses())))

	assert.False(t, s.SetSortString("cpu"))
}

func testSystem() *model.SystemModel {
	return &model.SystemModel{
		Total: &model.SingleCPUModel{UsagePct: sample.Ptr(25.0)},
		CPUs: model.Vec[model.SingleCPUFieldID, *model.SingleCPUModel]{
			{Idx: sample.Ptr[uint32](0), UsagePct: sample.Ptr(10.0)},
			{Idx: sample.Ptr[uint32](1), UsagePct: sample.Ptr(40.0)},
		},
		Mem: &model.MemoryModel{Total: sample.Ptr[uint64](1024), SwapTotal: sample.Ptr[uint64](0)},
		Disks: map[string]model.SingleDiskModel{
			"sda":     {Name: sample.Ptr("sda"), ReadBytesPerSec: sample.Ptr(100.0)},
			"nvme0n1": {Name: sample.Ptr("nvme0n1"), ReadBytesPerSec: sample.Ptr(900.0)},
		},
	}
}

func keys(rows []CoreRow) []string {
	ks := make([]string, len(rows))
	for i, r := range rows {
		ks[i] = r.Key
	}
	return ks
}

func TestCoreTabs(t *testing.T) {
	var s CoreState

	_, err := s.TagFromTab("Slab", 0)
	assert.ErrorIs(t, err, ErrUnknownTab)
	_, err = s.Rows("Slab", testSystem())
	assert.ErrorIs(t, err, ErrUnknownTab)
	_, err = s.TagFromTab(TabDisk, 42)
	assert.ErrorIs(t, err, model.ErrInvalidFieldID)

	tag, err := s.TagFromTab(TabDisk, 1)
	require.NoError(t, err)
	assert.Equal(t, model.FieldID(model.DiskReadBytesPerSec), tag)

	tag, err = s.TagFromTab(TabCPU, 3)
	require.NoError(t, err)
	assert.Equal(t, model.FieldID(model.CPUIdx), tag)

	rows, err := s.Rows(TabCPU, testSystem())
	require.NoError(t, err)
	assert.Equal(t, []string{"total", "0", "1"}, keys(rows))
	assert.Equal(t, "40.00", rows[2].Cells[1])

	rows, err = s.Rows(TabMem, testSystem())
	require.NoError(t, err)
	require.Len(t, rows, len(model.MemoryFieldIDs()))
	assert.Equal(t, []string{"total", "1024"}, rows[0].Cells)
	assert.Equal(t, []string{"free", "?"}, rows[1].Cells)

	rows, err = s.Rows(TabVm, testSystem())
	require.NoError(t, err)
	assert.Equal(t, "?", rows[0].Cells[1], "vm absent")

	titles, err := s.Titles(TabDisk)
	require.NoError(t, err)
	assert.Equal(t, "name", titles[0])
}

func TestCoreFilterAndSort(t *testing.T) {
	var s CoreState

	assert.False(t, s.SetFilter(TabMem, 1, "swap"), "only the first column filters")
	require.True(t, s.SetFilter(TabMem, 0, "swap"))
	tab, _, text, ok := s.Filter()
	require.True(t, ok)
	assert.Equal(t, TabMem, tab)
	assert.Equal(t, "swap", text)

	rows, err := s.Rows(TabMem, testSystem())
	require.NoError(t, err)
	assert.Equal(t, []string{"swap_total", "swap_free"}, keys(rows))

	rows, err = s.Rows(TabDisk, testSystem())
	require.NoError(t, err)
	assert.Equal(t, []string{"nvme0n1", "sda"}, keys(rows), "filter applies to its own tab")

	assert.False(t, s.SetFilter("Slab", 0, "x"))
	require.True(t, s.SetFilter(TabMem, 0, ""))
	_, _, _, ok = s.Filter()
	assert.False(t, ok)

	assert.False(t, s.SetSortTagFromTab(TabCPU, 1))
	require.True(t, s.SetSortTagFromTab(TabDisk, 1))
	rows, err = s.Rows(TabDisk, testSystem())
	require.NoError(t, err)
	assert.Equal(t, []string{"nvme0n1", "sda"}, keys(rows))

	require.True(t, s.SetSortString("read_bytes_per_sec"))
	rows, err = s.Rows(TabDisk, testSystem())
	require.NoError(t, err)
	assert.Equal(t, []string{"sda", "nvme0n1"}, keys(rows), "same tag toggles to ascending")

	assert.False(t, s.SetSortString("bogus"))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "?", Format(nil))
	assert.Equal(t, "1.50", Format(model.F64(1.5)))
	assert.Equal(t, "42", Format(model.U64(42)))
	assert.Equal(t, "Sleeping", Format(model.State(sample.StateSleeping)))
}

func TestHolder(t *testing.T) {
	var h Holder
	assert.Nil(t, h.Load())

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			h.Swap(&model.Model{TimeElapsed: time.Duration(i + 1)})
		}()
		go func() {
			defer wg.Done()
			if m := h.Load(); m != nil {
				assert.NotZero(t, m.TimeElapsed)
			}
		}()
	}
	wg.Wait()

	m := &model.Model{}
	prev := h.Swap(m)
	assert.NotNil(t, prev)
	assert.Same(t, m, h.Load())
}
