// Copyright © 2025 The Gomon Project.

//go:build !linux

package sample

import (
	"context"

	"github.com/zosmac/gocore"
)

type collector struct{}

// NewCollector reports that sampling is only supported on linux.
func NewCollector(opts ...Option) (*Collector, error) {
	return nil, gocore.Unsupported()
}

// Collect reports that sampling is only supported on linux.
func (c *Collector) Collect(context.Context) (*Sample, error) {
	return nil, gocore.Unsupported()
}
