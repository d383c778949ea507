// Copyright © 2025 The Gomon Project.

/*
Gotree displays the cgroup hierarchy of the local host, or the subtree at the
path given as its argument, with the memory in use by each cgroup and the
processes in it. The deepest subtrees display first.

	gotree [path]
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/zosmac/gocore"
	"github.com/zosmac/gomodel/model"
	"github.com/zosmac/gomodel/sample"
	"github.com/zosmac/gomodel/view"
)

type (
	// pidTable maps cgroup paths to the processes in them.
	pidTable map[string][]*sample.PidInfo
)

func main() {
	path := "/"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	if err := run(path); err != nil {
		gocore.Error("gotree", err).Err()
		os.Exit(1)
	}
}

func run(path string) error {
	c, err := sample.NewCollector()
	if err != nil {
		return err
	}
	s, err := c.Collect(context.Background())
	if err != nil {
		return err
	}

	m := model.New(s.Timestamp, s, nil)
	cg := m.Cgroup.Find(path)
	if cg == nil {
		return gocore.Error("cgroup", errors.New("not found"), map[string]string{
			"path": path,
		})
	}

	tb := buildTable(s.Processes)
	var b strings.Builder
	display(&b, tb, cg, 0)
	_, err = os.Stdout.WriteString(b.String())
	return err
}

// buildTable groups the processes by cgroup, ordered by pid.
func buildTable(pids sample.PidMap) pidTable {
	tb := pidTable{}
	for _, info := range pids {
		if info == nil || info.Cgroup == "" {
			continue
		}
		path := strings.TrimSuffix(info.Cgroup, "/")
		tb[path] = append(tb[path], info)
	}
	for _, infos := range tb {
		slices.SortFunc(infos, func(a, b *sample.PidInfo) int {
			return int(pid(a)) - int(pid(b))
		})
	}
	return tb
}

func pid(info *sample.PidInfo) int32 {
	if info.Stat.Pid == nil {
		return 0
	}
	return *info.Stat.Pid
}

// display writes the cgroup and, indented, its processes and children.
func display(b *strings.Builder, tb pidTable, cg *model.CgroupModel, indent int) {
	mem := view.Format(cg.Query(model.CgroupMem{ID: model.CgroupMemoryTotal}))
	fmt.Fprintf(b, "%*s\033[36;40m%s\033[m  \033[34m%s\033[m\n", indent, "", cg.Name, mem)

	for _, info := range tb[cg.FullPath] {
		comm := ""
		if info.Stat.Comm != nil {
			comm = *info.Stat.Comm
		}
		id := strconv.Itoa(int(pid(info)))
		fmt.Fprintf(b, "%*s\033[35m%6s\033[m  %s\n", indent+3, "", id, comm)
	}

	children := make([]*model.CgroupModel, len(cg.Children))
	for i := range cg.Children {
		children[i] = &cg.Children[i]
	}
	slices.SortStableFunc(children, func(a, b *model.CgroupModel) int {
		return depthTree(b) - depthTree(a) // deepest first, then by name
	})
	for _, child := range children {
		display(b, tb, child, indent+3)
	}
}

// depthTree enables sort of deepest cgroup trees first.
func depthTree(cg *model.CgroupModel) int {
	depth := 0
	for i := range cg.Children {
		depth = max(depth, depthTree(&cg.Children[i])+1)
	}
	return depth
}
