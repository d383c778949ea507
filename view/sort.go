// Copyright © 2025 The Gomon Project.

package view

import (
	"strconv"

	"github.com/zosmac/gomodel/model"
)

// sorting records the field a view is sorted by and its direction.
type sorting[F model.FieldID] struct {
	tag     F
	set     bool
	reverse bool
}

// SetSortTag sorts by tag. Setting the current tag again toggles the
// direction, a new tag sorts in reverse (largest first).
func (s *sorting[F]) SetSortTag(tag F) {
	if s.set && any(s.tag) == any(tag) {
		s.reverse = !s.reverse
		return
	}
	s.tag, s.set, s.reverse = tag, true, true
}

// SetSort sorts by tag in the direction given.
func (s *sorting[F]) SetSort(tag F, reverse bool) {
	s.tag, s.set, s.reverse = tag, true, reverse
}

// SortTag returns the sort field and direction, ok is false if unsorted.
func (s *sorting[F]) SortTag() (tag F, reverse bool, ok bool) {
	return s.tag, s.reverse, s.set
}

// ClearSort restores the view's natural order.
func (s *sorting[F]) ClearSort() {
	var zero F
	s.tag, s.set, s.reverse = zero, false, false
}

// Format renders a field for display, "?" when absent.
func Format(f model.Field) string {
	switch v := f.(type) {
	case nil:
		return "?"
	case model.F64:
		return strconv.FormatFloat(float64(v), 'f', 2, 64)
	default:
		return f.String()
	}
}
