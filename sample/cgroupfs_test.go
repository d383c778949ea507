// Copyright © 2025 The Gomon Project.

package sample

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestReadCgroupTree(t *testing.T) {
	root := t.TempDir()
	devBlock := t.TempDir()
	writeFiles(t, devBlock, map[string]string{
		"8:0/uevent": "MAJOR=8\nMINOR=0\nDEVNAME=sda\nDEVTYPE=disk\n",
	})
	writeFiles(t, root, map[string]string{
		"cpu.stat": "usage_usec 1000\nuser_usec 600\nsystem_usec 400\n",
		"system.slice/cpu.stat": "usage_usec 500\nuser_usec 300\nsystem_usec 200\n" +
			"nr_periods 10\nnr_throttled 2\nthrottled_usec 77\n",
		"system.slice/io.stat":             "8:0 rbytes=4096 wbytes=8192 rios=1 wios=2 dbytes=0 dios=0\n259:0 rbytes=1 wbytes=2 rios=3 wios=4 dbytes=5 dios=6\n",
		"system.slice/memory.current":      "123456\n",
		"system.slice/memory.swap.current": "0\n",
		"system.slice/memory.high":         "max\n",
		"system.slice/memory.stat":         "anon 100\nfile 200\npgfault 300\nworkingset_refault_anon 7\nworkingset_refault_file 9\n",
		"system.slice/memory.events":       "low 0\nhigh 1\nmax 2\noom 3\noom_kill 4\n",
		"system.slice/cpu.pressure":        "some avg10=1.50 avg60=0.75 avg300=0.10 total=12345\nfull avg10=0.00 avg60=0.00 avg300=0.00 total=0\n",
		"system.slice/io.pressure":         "some avg10=0.20 avg60=0.10 avg300=0.00 total=99\nfull avg10=0.10 avg60=0.00 avg300=0.00 total=50\n",
		"system.slice/sshd.service/io.stat":     "",
		"system.slice/sshd.service/memory.high": "1073741824\n",
		"user.slice/memory.current":             "garbage\n",
	})

	fs := cgroupfs{root: root, devBlock: devBlock}
	s := fs.read(root)

	require.NotNil(t, s.CPUStat)
	assert.Equal(t, uint64(1000), *s.CPUStat.UsageUsec)
	assert.Nil(t, s.CPUStat.NrPeriods)
	assert.Nil(t, s.IOStat, "no io.stat file")
	assert.NotNil(t, s.InodeNumber)
	require.Len(t, s.Children, 2)

	sys := s.Children["system.slice"]
	require.NotNil(t, sys)
	assert.Equal(t, uint64(77), *sys.CPUStat.ThrottledUsec)
	require.Len(t, sys.IOStat, 2)
	assert.Equal(t, uint64(8192), *sys.IOStat["sda"].Wbytes)
	assert.Equal(t, uint64(6), *sys.IOStat["259:0"].Dios, "unresolved device keeps its number")
	assert.Equal(t, uint64(123456), *sys.MemoryCurrent)
	assert.Equal(t, uint64(0), *sys.MemorySwapCurrent)
	assert.Equal(t, int64(-1), *sys.MemoryHigh)
	require.NotNil(t, sys.MemoryStat)
	assert.Equal(t, uint64(300), *sys.MemoryStat.Pgfault)
	assert.Equal(t, uint64(16), *sys.MemoryStat.WorkingsetRefault, "anon 7 + file 9")
	assert.Nil(t, sys.MemoryStat.Pgmajfault)
	assert.Equal(t, uint64(4), *sys.MemoryEvents.OOMKill)
	require.NotNil(t, sys.Pressure)
	assert.Equal(t, 1.5, *sys.Pressure.CPU.Some.Avg10)
	assert.Equal(t, uint64(12345), *sys.Pressure.CPU.Some.Total)
	assert.Equal(t, 0.1, *sys.Pressure.IO.Full.Avg10)
	assert.Nil(t, sys.Pressure.Memory.Some.Avg10)

	sshd := sys.Children["sshd.service"]
	require.NotNil(t, sshd)
	assert.NotNil(t, sshd.IOStat, "an empty io.stat means no IO")
	assert.Empty(t, sshd.IOStat)
	assert.Equal(t, int64(1073741824), *sshd.MemoryHigh)
	assert.Nil(t, sshd.CPUStat)
	assert.Nil(t, sshd.Pressure)
	assert.Nil(t, sshd.Children)

	user := s.Children["user.slice"]
	require.NotNil(t, user)
	assert.Nil(t, user.MemoryCurrent, "unparseable values are absent")
}

func TestWorkingsetCounters(t *testing.T) {
	tests := []struct {
		name         string
		stat         string
		wantRefault  *uint64
		wantActivate *uint64
	}{
		{
			name:         "split",
			stat:         "workingset_refault_anon 10\nworkingset_refault_file 90\nworkingset_activate_anon 1\nworkingset_activate_file 4\n",
			wantRefault:  Ptr[uint64](100),
			wantActivate: Ptr[uint64](5),
		},
		{
			name:         "unsplit",
			stat:         "workingset_refault 42\nworkingset_activate 3\n",
			wantRefault:  Ptr[uint64](42),
			wantActivate: Ptr[uint64](3),
		},
		{
			name:        "file only",
			stat:        "workingset_refault_file 8\n",
			wantRefault: Ptr[uint64](8),
		},
		{
			name: "absent",
			stat: "anon 1\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFiles(t, dir, map[string]string{"memory.stat": tt.stat})
			ms := memoryStat(dir)
			require.NotNil(t, ms)
			assert.Equal(t, tt.wantRefault, ms.WorkingsetRefault)
			assert.Equal(t, tt.wantActivate, ms.WorkingsetActivate)
		})
	}
}

func TestReadMissingCgroup(t *testing.T) {
	fs := cgroupfs{root: filepath.Join(t.TempDir(), "absent")}
	s := fs.read(fs.root)
	assert.Equal(t, &CgroupSample{}, s)
}

func TestVmstat(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"vmstat": "nr_free_pages 1000\npgpgin 10\npgpgout 20\npswpin 0\npswpout 1\n" +
			"pgfault 500\npgmajfault 5\n" +
			"pgsteal_kswapd 3\npgsteal_direct 4\npgsteal_khugepaged 0\npgsteal_anon 5\npgsteal_file 2\n" +
			"pgscan_kswapd 10\npgscan_direct 20\npgscan_anon 25\npgscan_file 5\n",
	})
	v := vmstat(filepath.Join(dir, "vmstat"))
	require.NotNil(t, v)
	assert.Equal(t, uint64(10), *v.Pgpgin)
	assert.Equal(t, uint64(500), *v.Pgfault)
	assert.Equal(t, uint64(7), *v.Pgsteal)
	assert.Equal(t, uint64(30), *v.Pgscan)

	assert.Nil(t, vmstat(filepath.Join(dir, "absent")))
}

func TestCollectCgroups(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a/b/memory.current": "42\n"})
	c := &Collector{}
	WithCgroupRoot(root)(c)
	WithDevBlock("")(c)

	s := c.CollectCgroups()
	require.Contains(t, s.Children, "a")
	require.Contains(t, s.Children["a"].Children, "b")
	assert.Equal(t, uint64(42), *s.Children["a"].Children["b"].MemoryCurrent)
}
