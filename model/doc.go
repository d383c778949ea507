// Copyright © 2025 The Gomon Project.

/*
Package model derives the resource models of the "gomodel" command from two
successive samples of kernel counters. The package provides:
  - a rate and delta engine that turns pairs of cumulative counters into percentages and per second rates
  - a builder of the cgroup tree that detects cgroups recreated between samples
  - process, system and network models
  - a field query system that addresses any field of a model by its dotted path, for sorting and filtering

Every derived value is optional: a nil pointer means the counter was absent
in either sample, or that the two samples are not comparable.
*/
package model
