// Copyright © 2025 The Gomon Project.

package view

import (
	"strings"

	"github.com/zosmac/gomodel/model"
)

// ProcessState is the state of the process view.
type ProcessState struct {
	sorting[model.ProcessFieldID]
	filter string
}

// SetSortString sorts by the field at path, e.g. "cpu.usage_pct", reporting
// false if the path does not name a process field.
func (s *ProcessState) SetSortString(path string) bool {
	id, err := model.ParseProcessFieldID(path)
	if err != nil {
		return false
	}
	s.SetSortTag(id)
	return true
}

// SetFilter shows only processes whose command name or line contains text.
func (s *ProcessState) SetFilter(text string) {
	s.filter = text
}

// Filter returns the filter text.
func (s *ProcessState) Filter() string {
	return s.filter
}

// Rows returns the processes to display in sort order, pid order if unsorted.
func (s *ProcessState) Rows(m model.ProcessModel) []*model.SingleProcessModel {
	tag, reverse, ok := s.SortTag()
	if !ok {
		tag, reverse = model.ProcessPid, false
	}
	ps := m.Sorted(tag, reverse)
	if s.filter == "" {
		return ps
	}
	rows := ps[:0]
	for _, p := range ps {
		if contains(p.Comm, s.filter) || contains(p.Cmdline, s.filter) {
			rows = append(rows, p)
		}
	}
	return rows
}

func contains(s *string, substr string) bool {
	return s != nil && strings.Contains(*s, substr)
}
