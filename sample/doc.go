// Copyright © 2025 The Gomon Project.

/*
Package sample defines the point in time snapshot of kernel counters that the
models of the "gomodel" command are derived from, and the Collector that reads
it from cgroupfs, procfs and the host's counters.
*/
package sample
