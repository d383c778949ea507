// Copyright © 2025 The Gomon Project.

/*
Package view holds the presentation state of the "gomodel" command: the model
of the current tick shared between the sampler and its readers, and the sort,
filter and collapse state of the cgroup, process and core views that select
and order what is displayed.
*/
package view
