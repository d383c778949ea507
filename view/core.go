// Copyright © 2025 The Gomon Project.

package view

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zosmac/gomodel/model"
)

// Core view tabs.
const (
	TabCPU  = "CPU"
	TabMem  = "Mem"
	TabVm   = "Vm"
	TabDisk = "Disk"
)

var (
	// ErrUnknownTab reports a tab the core view does not have.
	ErrUnknownTab = errors.New("unknown tab")

	// CoreTabs lists the tabs of the core view in display order.
	CoreTabs = []string{TabCPU, TabMem, TabVm, TabDisk}
)

type (
	// CoreState is the state of the core view, whose tabs show the host's
	// cpus, memory, virtual memory and disks. Only the Disk tab is sortable.
	CoreState struct {
		sorting[model.DiskFieldID]
		filter *coreFilter
	}

	coreFilter struct {
		tab  string
		tag  model.FieldID
		text string
	}

	// CoreRow is one displayed row of a core view tab.
	CoreRow struct {
		Key   string
		Cells []string
	}
)

// TagFromTab maps a column of a tab to the field it displays. The Mem and Vm
// tabs list one field per row, so their columns map to the first field.
func (s *CoreState) TagFromTab(tab string, idx int) (model.FieldID, error) {
	switch tab {
	case TabCPU:
		return model.CPUIdx, nil
	case TabMem:
		return model.MemoryTotal, nil
	case TabVm:
		return model.VmPgpginPerSec, nil
	case TabDisk:
		ids := model.DiskFieldIDs()
		if idx < 0 || idx >= len(ids) {
			return nil, fmt.Errorf("%w: disk column %d", model.ErrInvalidFieldID, idx)
		}
		return ids[idx], nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownTab, tab)
}

// FilterSupported reports whether a column can be filtered. Only the first
// column, which names each row, can be.
func (s *CoreState) FilterSupported(tab string, idx int) bool {
	return idx == 0
}

// SetFilter shows only the rows of tab whose first column contains text.
// An empty text clears the filter. It reports false if the column cannot
// be filtered.
func (s *CoreState) SetFilter(tab string, idx int, text string) bool {
	if !s.FilterSupported(tab, idx) {
		return false
	}
	if text == "" {
		s.filter = nil
		return true
	}
	tag, err := s.TagFromTab(tab, idx)
	if err != nil {
		return false
	}
	s.filter = &coreFilter{tab: tab, tag: tag, text: text}
	return true
}

// Filter returns the filtered tab, its field and text, ok is false if unfiltered.
func (s *CoreState) Filter() (tab string, tag model.FieldID, text string, ok bool) {
	if s.filter == nil {
		return "", nil, "", false
	}
	return s.filter.tab, s.filter.tag, s.filter.text, true
}

// SetSortTagFromTab sorts by a column of tab, reporting false if the tab
// is not sortable.
func (s *CoreState) SetSortTagFromTab(tab string, idx int) bool {
	if tab != TabDisk {
		return false
	}
	tag, err := s.TagFromTab(tab, idx)
	if err != nil {
		return false
	}
	s.SetSortTag(tag.(model.DiskFieldID))
	return true
}

// SetSortString sorts the Disk tab by the named field, reporting false if
// the name is not a disk field.
func (s *CoreState) SetSortString(name string) bool {
	id, err := model.ParseDiskFieldID(name)
	if err != nil {
		return false
	}
	s.SetSortTag(id)
	return true
}

// Titles returns the column titles of a tab.
func (s *CoreState) Titles(tab string) ([]string, error) {
	switch tab {
	case TabCPU:
		return titles(model.SingleCPUFieldIDs()), nil
	case TabMem, TabVm:
		return []string{"field", "value"}, nil
	case TabDisk:
		return titles(model.DiskFieldIDs()), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownTab, tab)
}

// Rows returns the rows of a tab for the host model.
func (s *CoreState) Rows(tab string, m *model.SystemModel) ([]CoreRow, error) {
	if _, err := s.Titles(tab); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, nil
	}

	var rows []CoreRow
	switch tab {
	case TabCPU:
		if m.Total != nil {
			rows = append(rows, CoreRow{Key: "total", Cells: cells(m.Total, model.SingleCPUFieldIDs())})
			rows[0].Cells[0] = "total"
		}
		for _, c := range m.CPUs {
			row := cells(c, model.SingleCPUFieldIDs())
			rows = append(rows, CoreRow{Key: row[0], Cells: row})
		}
	case TabMem:
		for _, id := range model.MemoryFieldIDs() {
			rows = append(rows, CoreRow{Key: id.String(), Cells: []string{id.String(), Format(m.Mem.Query(id))}})
		}
	case TabVm:
		for _, id := range model.VmFieldIDs() {
			rows = append(rows, CoreRow{Key: id.String(), Cells: []string{id.String(), Format(m.Vm.Query(id))}})
		}
	case TabDisk:
		tag, reverse, ok := s.SortTag()
		if !ok {
			tag, reverse = model.DiskName, false
		}
		for _, d := range m.SortedDisks(tag, reverse) {
			row := cells(d, model.DiskFieldIDs())
			rows = append(rows, CoreRow{Key: row[0], Cells: row})
		}
	}

	if s.filter == nil || s.filter.tab != tab {
		return rows, nil
	}
	filtered := rows[:0]
	for _, row := range rows {
		if strings.Contains(row.Cells[0], s.filter.text) {
			filtered = append(filtered, row)
		}
	}
	return filtered, nil
}

func titles[F model.FieldID](ids []F) []string {
	ts := make([]string, len(ids))
	for i, id := range ids {
		ts[i] = id.String()
	}
	return ts
}

func cells[F model.FieldID, Q model.Queriable[F]](q Q, ids []F) []string {
	cs := make([]string, len(ids))
	for i, id := range ids {
		cs[i] = Format(q.Query(id))
	}
	return cs
}
