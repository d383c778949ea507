// Copyright © 2025 The Gomon Project.

package view

import (
	"strings"

	"github.com/zosmac/gomodel/model"
)

type (
	// CgroupState is the state of the cgroup view.
	CgroupState struct {
		sorting[model.CgroupFieldID]
		filter    string
		collapsed map[string]bool
	}

	// CgroupRow is one displayed cgroup.
	CgroupRow struct {
		Cgroup    *model.CgroupModel
		Collapsed bool
	}
)

// NewCgroupState returns the view state, sorted by name with no filter.
func NewCgroupState() *CgroupState {
	return &CgroupState{collapsed: map[string]bool{}}
}

// SetSortString sorts by the field at path, e.g. "mem.total", reporting
// false if the path does not name a cgroup field.
func (s *CgroupState) SetSortString(path string) bool {
	id, err := model.ParseCgroupFieldID(path)
	if err != nil {
		return false
	}
	s.SetSortTag(id)
	return true
}

// SetFilter shows only cgroups whose full path contains text, and their
// ancestors. An empty text clears the filter.
func (s *CgroupState) SetFilter(text string) {
	s.filter = text
}

// Filter returns the filter text.
func (s *CgroupState) Filter() string {
	return s.filter
}

// ToggleCollapse hides or shows the descendants of the cgroup at path.
func (s *CgroupState) ToggleCollapse(path string) {
	if s.collapsed == nil {
		s.collapsed = map[string]bool{}
	}
	if s.collapsed[path] {
		delete(s.collapsed, path)
	} else {
		s.collapsed[path] = true
	}
}

// Collapsed reports whether the descendants of the cgroup at path are hidden.
func (s *CgroupState) Collapsed(path string) bool {
	return s.collapsed[path]
}

// Rows flattens the tree depth first, siblings in sort order. A cgroup
// recreated since the last tick is a new object at an old path, so its
// collapse state is reset.
func (s *CgroupState) Rows(root *model.CgroupModel) []CgroupRow {
	if root == nil {
		return nil
	}
	return s.appendRows(nil, root)
}

func (s *CgroupState) appendRows(rows []CgroupRow, m *model.CgroupModel) []CgroupRow {
	if m.RecreateFlag {
		delete(s.collapsed, m.FullPath)
	}
	collapsed := s.collapsed[m.FullPath]
	self := len(rows)
	rows = append(rows, CgroupRow{Cgroup: m, Collapsed: collapsed})

	children := make([]*model.CgroupModel, len(m.Children))
	for i := range m.Children {
		children[i] = &m.Children[i]
	}
	if tag, reverse, ok := s.SortTag(); ok {
		model.SortQueriables(children, tag, reverse)
	}
	n := len(rows)
	for _, c := range children {
		rows = s.appendRows(rows, c)
	}

	descendants := len(rows) > n
	if collapsed {
		rows = rows[:n]
	}
	if s.filter != "" && !descendants && !strings.Contains(m.FullPath, s.filter) {
		return rows[:self]
	}
	return rows
}
