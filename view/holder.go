// Copyright © 2025 The Gomon Project.

package view

import (
	"sync"

	"github.com/zosmac/gomodel/model"
)

// Holder shares the current tick's model between a single writer and many readers.
// A model is complete when swapped in and never mutated after, so readers
// never observe a partially built tree.
type Holder struct {
	sync.RWMutex
	current *model.Model
}

// Swap replaces the current model, returning the previous.
func (h *Holder) Swap(m *model.Model) *model.Model {
	h.Lock()
	defer h.Unlock()
	prev := h.current
	h.current = m
	return prev
}

// Load returns the current model, nil before the first tick.
func (h *Holder) Load() *model.Model {
	h.RLock()
	defer h.RUnlock()
	return h.current
}
