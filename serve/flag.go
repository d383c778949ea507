// Copyright © 2025 The Gomon Project.

package serve

import (
	"context"
	"errors"
	"time"

	"github.com/zosmac/gocore"
)

var (
	// flags defines the command line flags.
	flags = struct {
		port int
		interval
	}{
		port:     1234,
		interval: interval(5 * time.Second),
	}
)

// init initializes the command line flags.
func init() {
	gocore.Flags.Var(
		&flags.port,
		"port",
		"[-port n]",
		"Port number for the gomodel HTTP server, 0 to not serve",
	)

	if flags.interval < interval(time.Second) {
		flags.interval = interval(time.Second)
	}
	gocore.Flags.Var(
		&flags.interval,
		"sample",
		"[-sample <interval>]",
		"Sample kernel counters at `interval`, specified in Go time.Duration string format",
	)

	gocore.Flags.CommandDescription = `Models the resource usage of the local host,
	deriving rates and percentages of:
		• cgroups
		• processes
		• system cpu, memory and disks
		• network interfaces`
}

// interval is a command line flag type.
type interval time.Duration

// Set is a flag.Value interface method to enable interval as a command line flag.
func (i *interval) Set(s string) error {
	d, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	if d <= 0 {
		return errors.New("invalid sample interval")
	}
	*i = interval(d)
	return nil
}

// String is a flag.Value interface method to enable interval as a command line flag.
func (i *interval) String() string {
	return time.Duration(*i).String()
}

// alignTicker aligns the sample ticking to a multiple of the interval.
func (i interval) alignTicker(ctx context.Context) *time.Ticker {
	d := time.Duration(i)
	t := time.Now()
	select {
	case <-time.After(d - t.Sub(t.Truncate(d))):
	case <-ctx.Done():
	}
	return time.NewTicker(d)
}

// Interval returns the sample interval.
func Interval() time.Duration {
	return time.Duration(flags.interval)
}
