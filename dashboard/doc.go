// Copyright © 2025 The Gomon Project.

/*
Package dashboard is a terminal view of the current model.

The views cycle with tab: the cgroup tree, indented by depth, the process
table and the core tabs of the host's cpus, memory, virtual memory and disks.

	s       sort by the next column
	r       reverse the sort
	/       filter, enter to apply, esc to cancel
	enter   collapse or expand the selected cgroup
	↑ ↓     select
	q       quit
*/
package dashboard
