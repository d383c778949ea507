// Copyright © 2025 The Gomon Project.

/*
Package serve runs the gomodel sample loop and its HTTP server.

Each tick of the -sample interval collects a sample, derives the model against
the previous sample and publishes it to the view holder, the history store and
the message stream.

The server, listening on localhost at -port, offers these endpoints:

	/metrics       Prometheus gauges of every numeric field of the current model
	/model         the current model as JSON, or with ?sort=<field path>[&reverse=true]
	               and ?filter=<text> the cgroup rows in display order
	/ws            a websocket that answers each message with the current model
	/debug/pprof   the Go profiler

If Prometheus is running on localhost:9090, the sample interval is synchronized
with its scrape interval for the gomodel job.
*/
package serve
