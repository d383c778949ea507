// Copyright © 2025 The Gomon Project.

package dashboard

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zosmac/gomodel/model"
	"github.com/zosmac/gomodel/view"
)

const (
	paneCgroup  = "Cgroup"
	paneProcess = "Process"
)

var (
	// panes lists the views in tab order.
	panes = append([]string{paneCgroup, paneProcess}, view.CoreTabs...)

	cgroupColumns = mustParse(model.ParseCgroupFieldID,
		"cpu.usage_pct",
		"cpu.throttled_pct",
		"mem.total",
		"mem.anon",
		"mem.file",
		"io.rwbytes_per_sec",
		"pressure.cpu_some_pct",
		"pressure.memory_full_pct",
	)

	processColumns = mustParse(model.ParseProcessFieldID,
		"pid",
		"comm",
		"state",
		"cpu.usage_pct",
		"cpu.num_threads",
		"mem.rss_bytes",
		"io.rwbytes_per_sec",
		"cgroup",
	)
)

// mustParse parses the field paths of a view's columns.
func mustParse[F model.FieldID](parse func(string) (F, error), paths ...string) []F {
	ids := make([]F, len(paths))
	for i, path := range paths {
		id, err := parse(path)
		if err != nil {
			panic(err)
		}
		ids[i] = id
	}
	return ids
}

type (
	// Model is the bubbletea model of the dashboard.
	Model struct {
		holder    *view.Holder
		pane      int
		cgroups   *view.CgroupState
		processes *view.ProcessState
		core      *view.CoreState
		sortCol   map[string]int
		cursor    int
		filtering bool
		input     string
		status    string
		width     int
		height    int
	}

	tickMsg struct{}
)

// New returns a dashboard of the models published to holder.
func New(holder *view.Holder) *Model {
	return &Model{
		holder:    holder,
		cgroups:   view.NewCgroupState(),
		processes: &view.ProcessState{},
		core:      &view.CoreState{},
		sortCol:   map[string]int{},
		width:     120,
		height:    40,
	}
}

// Run displays the dashboard until the user quits or ctx is cancelled.
func Run(ctx context.Context, holder *view.Holder) error {
	prog := tea.NewProgram(New(holder), tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		prog.Quit()
	}()
	_, err := prog.Run()
	return err
}

func tickCmd() tea.Cmd { return tea.Tick(time.Second, func(time.Time) tea.Msg { return tickMsg{} }) }

// Init starts the refresh ticks.
func (m *Model) Init() tea.Cmd { return tickCmd() }

// Update handles key presses, resizes and refresh ticks.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tickMsg:
		return m, tickCmd()
	case tea.KeyMsg:
		if m.filtering {
			m.editFilter(msg)
			return m, nil
		}
		m.status = ""
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.pane = (m.pane + 1) % len(panes)
			m.cursor = 0
		case "shift+tab":
			m.pane = (m.pane + len(panes) - 1) % len(panes)
			m.cursor = 0
		case "s":
			m.cycleSort()
		case "r":
			m.reverseSort()
		case "/":
			m.filtering = true
			m.input = m.filter()
		case "enter":
			if rows := m.cgroupRows(); panes[m.pane] == paneCgroup && m.cursor < len(rows) {
				m.cgroups.ToggleCollapse(rows[m.cursor].Cgroup.FullPath)
			}
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			m.cursor++
		}
	}
	return m, nil
}

// editFilter handles keys while the filter is entered.
func (m *Model) editFilter(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyEnter:
		m.filtering = false
		m.setFilter(m.input)
		m.cursor = 0
	case tea.KeyEsc:
		m.filtering = false
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
	case tea.KeyRunes, tea.KeySpace:
		m.input += string(msg.Runes)
	}
}

func (m *Model) filter() string {
	switch pane := panes[m.pane]; pane {
	case paneCgroup:
		return m.cgroups.Filter()
	case paneProcess:
		return m.processes.Filter()
	default:
		if tab, _, text, ok := m.core.Filter(); ok && tab == pane {
			return text
		}
	}
	return ""
}

func (m *Model) setFilter(text string) {
	switch pane := panes[m.pane]; pane {
	case paneCgroup:
		m.cgroups.SetFilter(text)
	case paneProcess:
		m.processes.SetFilter(text)
	default:
		m.core.SetFilter(pane, 0, text)
	}
}

// cycleSort sorts the current view by its next column.
func (m *Model) cycleSort() {
	pane := panes[m.pane]
	switch pane {
	case paneCgroup:
		i := m.sortCol[pane] % len(cgroupColumns)
		m.cgroups.SetSortTag(cgroupColumns[i])
		m.sortCol[pane] = i + 1
	case paneProcess:
		i := m.sortCol[pane] % len(processColumns)
		m.processes.SetSortTag(processColumns[i])
		m.sortCol[pane] = i + 1
	case view.TabDisk:
		i := m.sortCol[pane] % len(model.DiskFieldIDs())
		m.core.SetSortTagFromTab(pane, i)
		m.sortCol[pane] = i + 1
	default:
		m.status = pane + " is not sortable"
	}
}

func (m *Model) reverseSort() {
	switch panes[m.pane] {
	case paneCgroup:
		if tag, reverse, ok := m.cgroups.SortTag(); ok {
			m.cgroups.SetSort(tag, !reverse)
		}
	case paneProcess:
		if tag, reverse, ok := m.processes.SortTag(); ok {
			m.processes.SetSort(tag, !reverse)
		}
	case view.TabDisk:
		if tag, reverse, ok := m.core.SortTag(); ok {
			m.core.SetSort(tag, !reverse)
		}
	}
}

func (m *Model) cgroupRows() []view.CgroupRow {
	mdl := m.holder.Load()
	if mdl == nil {
		return nil
	}
	return m.cgroups.Rows(mdl.Cgroup)
}

// View renders the current view of the latest model.
func (m *Model) View() string {
	mdl := m.holder.Load()

	header := titleStyle.Render("gomodel")
	if mdl != nil {
		header += "  " + subtleStyle.Render(mdl.Timestamp.Format("Mon Jan 2 15:04:05 MST 2006"))
		if mdl.System != nil {
			header += "  " + subtleStyle.Render(mdl.System.Hostname)
		}
	}

	tabs := make([]string, len(panes))
	for i, p := range panes {
		if i == m.pane {
			tabs[i] = activeStyle.Render(p)
		} else {
			tabs[i] = inactiveStyle.Render(p)
		}
	}

	var body string
	if mdl == nil {
		body = subtleStyle.Render("waiting for the first sample…")
	} else {
		titles, rows := m.table(mdl)
		m.cursor = min(m.cursor, max(len(rows)-1, 0))
		first := 0
		if limit := m.height - 8; limit > 0 && len(rows) > limit {
			first = min(max(m.cursor-limit/2, 0), len(rows)-limit)
			rows = rows[first : first+limit]
		}
		body = table(titles, rows, m.cursor-first)
	}

	footer := subtleStyle.Render("tab view  s sort  r reverse  / filter  enter collapse  q quit")
	switch {
	case m.filtering:
		footer = "filter: " + m.input + "█"
	case m.status != "":
		footer = m.status
	case m.filter() != "":
		footer = subtleStyle.Render("filter: "+m.filter()) + "  " + footer
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.JoinHorizontal(lipgloss.Top, tabs...),
		body,
		footer,
	)
}

// table returns the header and rows of the current view.
func (m *Model) table(mdl *model.Model) ([]string, [][]string) {
	switch pane := panes[m.pane]; pane {
	case paneCgroup:
		tag, reverse, sorted := m.cgroups.SortTag()
		header := []string{"name"}
		for _, id := range cgroupColumns {
			header = append(header, title(id.String(), sorted && any(id) == any(tag), reverse))
		}
		var rows [][]string
		for _, row := range m.cgroups.Rows(mdl.Cgroup) {
			cells := []string{cgroupName(row, m.width/3)}
			for _, id := range cgroupColumns {
				cells = append(cells, view.Format(row.Cgroup.Query(id)))
			}
			rows = append(rows, cells)
		}
		return header, rows

	case paneProcess:
		tag, reverse, sorted := m.processes.SortTag()
		var header []string
		for _, id := range processColumns {
			header = append(header, title(id.String(), sorted && any(id) == any(tag), reverse))
		}
		var rows [][]string
		for _, p := range m.processes.Rows(mdl.Process) {
			var cells []string
			for _, id := range processColumns {
				cells = append(cells, truncate(view.Format(p.Query(id)), 32))
			}
			rows = append(rows, cells)
		}
		return header, rows

	default:
		header, err := m.core.Titles(pane)
		if err != nil {
			return []string{err.Error()}, nil
		}
		if pane == view.TabDisk {
			if tag, reverse, ok := m.core.SortTag(); ok {
				for i, id := range model.DiskFieldIDs() {
					header[i] = title(id.String(), any(id) == any(tag), reverse)
				}
			}
		}
		coreRows, err := m.core.Rows(pane, mdl.System)
		if err != nil {
			return []string{err.Error()}, nil
		}
		rows := make([][]string, len(coreRows))
		for i, row := range coreRows {
			rows[i] = row.Cells
		}
		return header, rows
	}
}

// title marks the sort column with its direction.
func title(name string, sorted, reverse bool) string {
	switch {
	case !sorted:
		return name
	case reverse:
		return name + " ↓"
	default:
		return name + " ↑"
	}
}

// cgroupName indents a cgroup by its depth and marks whether it is collapsed.
func cgroupName(row view.CgroupRow, width int) string {
	marker := "  "
	switch {
	case row.Collapsed:
		marker = "▸ "
	case len(row.Cgroup.Children) > 0:
		marker = "▾ "
	}
	name := strings.Repeat("  ", row.Cgroup.Depth()) + marker + row.Cgroup.Name
	if row.Cgroup.RecreateFlag {
		name += " *"
	}
	return truncate(name, width)
}

