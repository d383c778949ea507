// Copyright © 2025 The Gomon Project.

/*
Gomodel samples the local host's cgroup hierarchy, processes, cpus, memory,
disks and network interfaces, and derives a model of their resource usage.

Each sample interval the model is encoded to standard output, served to
Prometheus and over HTTP, and optionally kept in a history store for replay.

Usage:

	gomodel [flags]

The command line flags include:

	-sample <interval>        sampling interval, default 5s
	-port n                   HTTP server port, 0 to not serve, default 1234
	-cgroupfs <path>          cgroup2 mount, default /sys/fs/cgroup
	-format json|yaml         encoding of the exported models
	-pretty                   indent exported JSON
	-rotate <interval>        rotate the standard output file
	-store <directory>        keep a history of samples
	-compress none|zstd|lz4   compression of stored samples, default zstd
	-retain <duration>        age beyond which stored samples are pruned
	-replay latest|<time>     derive the model of a stored sample and exit
	-dashboard                show a terminal dashboard instead of encoding
	-document                 document the field paths of each model and exit
*/
package main
