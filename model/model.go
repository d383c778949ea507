// Copyright © 2025 The Gomon Project.

package model

import (
	"time"

	"github.com/zosmac/gomodel/sample"
)

type (
	// Last pairs the previous tick's sample with the time elapsed since.
	Last struct {
		Sample  *sample.Sample
		Elapsed time.Duration
	}

	// Model is the derived state of the host for one tick.
	Model struct {
		Timestamp   time.Time     `json:"timestamp"`
		TimeElapsed time.Duration `json:"time_elapsed"`
		System      *SystemModel  `json:"system"`
		Cgroup      *CgroupModel  `json:"cgroup"`
		Process     ProcessModel  `json:"process"`
		Network     NetworkModel  `json:"network"`
	}
)

// New composes the system, cgroup, process and network models of a sample,
// deriving rates against last if present.
func New(timestamp time.Time, s *sample.Sample, last *Last) *Model {
	m := &Model{Timestamp: timestamp}

	var (
		prev    *sample.Sample
		elapsed time.Duration
	)
	if last != nil && last.Sample != nil {
		prev, elapsed = last.Sample, last.Elapsed
		m.TimeElapsed = elapsed
	}

	var (
		cgroupLast *CgroupLast
		procLast   sample.PidMap
		sysLast    *sample.SystemSample
		netLast    *sample.NetworkSample
	)
	if prev != nil {
		cgroupLast = &CgroupLast{Sample: &prev.Cgroup, Elapsed: elapsed}
		procLast = prev.Processes
		sysLast = &prev.System
		netLast = &prev.Network
	}

	m.System = NewSystemModel(&s.System, sysLast, elapsed)
	m.Cgroup = NewCgroupModel(RootCgroupName, "", 0, &s.Cgroup, cgroupLast).AggrTopLevelVal()
	m.Process = NewProcessModel(s.Processes, procLast, elapsed)
	m.Network = NewNetworkModel(&s.Network, netLast, elapsed)
	return m
}
