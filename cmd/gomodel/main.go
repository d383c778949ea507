// Copyright © 2025 The Gomon Project.

package main

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/zosmac/gocore"
	"github.com/zosmac/gomodel/dashboard"
	"github.com/zosmac/gomodel/message"
	"github.com/zosmac/gomodel/sample"
	"github.com/zosmac/gomodel/serve"
	"github.com/zosmac/gomodel/store"
	"github.com/zosmac/gomodel/view"
)

// main
func main() {
	gocore.Main(Main)
}

// Main called from gocore.Main.
func Main(ctx context.Context) error {
	if message.Document() {
		message.Documents(os.Stdout)
		return nil
	}

	st, err := store.OpenFlagged()
	if err != nil {
		return gocore.Error("store Open", err)
	}

	holder := &view.Holder{}

	if flags.replay.set {
		return replay(ctx, st, holder)
	}

	var opts []sample.Option
	if flags.cgroupfs != "" {
		opts = append(opts, sample.WithCgroupRoot(flags.cgroupfs))
	}
	collector, err := sample.NewCollector(opts...)
	if err != nil {
		return gocore.Error("collector", err)
	}

	// the dashboard owns the terminal
	export := !flags.dashboard
	if export {
		if err := message.Stream(ctx); err != nil {
			return gocore.Error("encoder", err)
		}
	}

	// fire up the http server
	serve.Serve(ctx, holder)

	executable, err := os.Executable()
	if err != nil {
		executable = os.Args[0]
	}
	gocore.Error("start", nil, map[string]string{
		"pid":        strconv.Itoa(os.Getpid()),
		"command":    strings.Join(os.Args, " "),
		"executable": executable,
		"version":    gocore.Version,
		"user":       gocore.Username(os.Getuid()),
	}).Info()

	loop := &serve.Loop{
		Sampler: collector,
		Holder:  holder,
		Store:   st,
		Retain:  store.Retain(),
		Export:  export,
	}

	if flags.dashboard {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		go loop.Measure(ctx)
		return gocore.Error("stop", dashboard.Run(ctx, holder), map[string]string{
			"command": os.Args[0],
		})
	}

	return gocore.Error("stop", loop.Measure(ctx), map[string]string{
		"command": os.Args[0],
	})
}

// replay derives the model of a stored sample and its predecessor, and
// displays or encodes it.
func replay(ctx context.Context, st *store.Store, holder *view.Holder) error {
	if st == nil {
		return gocore.Error("replay", errors.New("-replay requires -store"))
	}

	ts := flags.replay.time
	if ts.IsZero() {
		s, err := st.Latest()
		if err != nil {
			return gocore.Error("replay Latest", err, map[string]string{
				"store": st.Dir(),
			})
		}
		ts = s.Timestamp
	}

	m, err := st.Replay(ts)
	if err != nil {
		return gocore.Error("replay", err, map[string]string{
			"store": st.Dir(),
			"time":  ts.Format(time.RFC3339Nano),
		})
	}

	if flags.dashboard {
		holder.Swap(m)
		return dashboard.Run(ctx, holder)
	}
	return message.Export(os.Stdout, m)
}
