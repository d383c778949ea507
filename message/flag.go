// Copyright © 2025 The Gomon Project.

package message

import (
	"fmt"
	"time"

	"github.com/zosmac/gocore"
)

var (
	// flags defines the command line flags.
	flags = struct {
		document bool
		format   Format
		pretty   bool
		rotate
	}{
		format: FormatJSON,
		rotate: rotate{interval: 0 * time.Hour},
	}
)

type (
	// Format of the exported models.
	Format string

	// rotate is a command line flag type.
	rotate struct {
		interval time.Duration
		format   string
	}
)

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Set is a flag.Value interface method to enable Format as a command line flag.
func (f *Format) Set(s string) error {
	switch Format(s) {
	case FormatJSON, FormatYAML:
		*f = Format(s)
		return nil
	}
	return formatError(Format(s))
}

func formatError(f Format) error {
	return fmt.Errorf("unknown format %q, must be json or yaml", string(f))
}

// String is a flag.Value interface method to enable Format as a command line flag.
func (f *Format) String() string {
	return string(*f)
}

// Set is a flag.Value interface method to enable rotate as a command line flag.
func (r *rotate) Set(s string) error {
	d, err := time.ParseDuration(s)
	if err != nil {
		return gocore.Error("ParseDuration", err)
	}
	if d > 0 && d < time.Second {
		d = time.Second
	}
	r.interval = d
	r.format = "20060102" // day resolution
	if d < 24*time.Hour {
		r.format += "15" // hour resolution
	}
	if d < time.Hour {
		r.format += "04" // minute resolution
	}
	if d < time.Minute {
		r.format += "05" // second resolution
	}
	r.format += "Z"

	return nil
}

// String is a flag.Value interface method to enable rotate as a command line flag.
func (r *rotate) String() string {
	return r.interval.String()
}

// Document reports whether the -document flag was specified.
func Document() bool {
	return flags.document
}

// init initializes the command line flags.
func init() {
	gocore.Flags.Var(
		&flags.document,
		"document",
		"[-document]",
		"Document the field paths of each model and exit",
	)
	gocore.Flags.Var(
		&flags.format,
		"format",
		"[-format json|yaml]",
		"Export models in `format` json or yaml",
	)
	gocore.Flags.Var(
		&flags.pretty,
		"pretty",
		"[-pretty]",
		"Produce JSON output in human readable format",
	)

	flags.rotate.Set(flags.rotate.interval.String())
	gocore.Flags.Var(
		&flags.rotate,
		"rotate",
		"[-rotate <interval>]",
		"Rotate output file at `interval`, specified in Go time.Duration string format (default do not rotate)",
	)
}
