// Copyright © 2025 The Gomon Project.

package message

import (
	"fmt"
	"io"
	"strings"

	"github.com/zosmac/gomodel/model"
)

// field records the attributes of a field path for documenting.
type field struct {
	Name string
	Kind string
}

// sources lists the field paths of each model, in the order documented.
func sources() []struct {
	name   string
	fields []field
} {
	return []struct {
		name   string
		fields []field
	}{
		{"cgroup", fields(model.CgroupFieldIDs())},
		{"process", fields(model.ProcessFieldIDs())},
		{"system", fields(model.SystemFieldIDs(1))},
		{"disk", fields(model.DiskFieldIDs())},
		{"network", fields(model.NetFieldIDs())},
	}
}

func fields[F model.FieldID](ids []F) []field {
	fs := make([]field, len(ids))
	for i, id := range ids {
		fs[i] = field{Name: id.String(), Kind: kind(id.String())}
	}
	return fs
}

// kind classifies a field by the suffix of its name.
func kind(name string) string {
	switch {
	case strings.HasSuffix(name, "_pct"):
		return "percent"
	case strings.HasSuffix(name, "_per_sec"):
		return "rate"
	case strings.Contains(name, "avg"):
		return "percent"
	}
	return "value"
}

// Documents writes a table of the field paths that sort, filter and query
// each model.
func Documents(w io.Writer) {
	width := len("- fields ")
	for _, src := range sources() {
		for _, f := range src.fields {
			width = max(width, len(f.Name))
		}
	}
	kindWidth := len(" percent ")

	header := fmt.Sprintf("+-%s%s-+-%s%s-+\n",
		"- fields ", strings.Repeat("-", width-len("- fields ")),
		" kind ", strings.Repeat("-", kindWidth-len(" kind ")),
	)
	footer := fmt.Sprintf("+-%s-+-%s-+\n",
		strings.Repeat("-", width),
		strings.Repeat("-", kindWidth),
	)

	for _, src := range sources() {
		fmt.Fprintf(w, "Source: %s\n", src.name)
		fmt.Fprint(w, header)
		for _, f := range src.fields {
			fmt.Fprintf(w, "| %-*s | %-*s |\n", width, f.Name, kindWidth, f.Kind)
		}
		fmt.Fprintln(w, footer)
	}
}
